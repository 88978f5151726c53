// Package render writes the flare CLI's read-side views — record
// summaries, stream statistics, dispatch snapshots, version info — in a
// user-selected format.
//
// Format selection:
//   - stdout is a TTY: default to table
//   - stdout is not a TTY: default to json
//   - --format always wins
//   - anything else is an error
//
// --no-color applies to table output only; the interactive record
// browser carries its own styling.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Format is an output format name.
type Format string

// Supported formats.
const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a format string. The empty string parses to the
// empty Format so the caller can apply its TTY-sensitive default.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "table":
		return FormatTable, nil
	case "yaml":
		return FormatYAML, nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("invalid format: %q (must be json, table, or yaml)", s)
	}
}

// Renderer writes one view per Render call in a fixed format.
type Renderer struct {
	format  Format
	noColor bool
	out     io.Writer
}

// NewRenderer creates a renderer from the command context, resolving
// the format default against stdout.
func NewRenderer(c *cli.Context) (*Renderer, error) {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return nil, err
	}

	if format == "" {
		if isTTY(os.Stdout) {
			format = FormatTable
		} else {
			format = FormatJSON
		}
	}

	return &Renderer{
		format:  format,
		noColor: c.Bool("no-color"),
		out:     os.Stdout,
	}, nil
}

// NewRendererWithWriter creates a renderer writing to out. Used by
// tests and anywhere stdout is not the destination.
func NewRendererWithWriter(format Format, noColor bool, out io.Writer) *Renderer {
	return &Renderer{
		format:  format,
		noColor: noColor,
		out:     out,
	}
}

// Render writes the view in the configured format. Slices become row
// tables, single structs and maps become key/value tables; json and
// yaml take the view as-is.
func (r *Renderer) Render(view any) error {
	switch r.format {
	case FormatJSON:
		return r.renderJSON(view)
	case FormatTable:
		return r.renderTable(view)
	case FormatYAML:
		return r.renderYAML(view)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

func (r *Renderer) renderJSON(view any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func (r *Renderer) renderYAML(view any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	return enc.Encode(view)
}

func (r *Renderer) renderTable(view any) error {
	v := reflect.ValueOf(view)
	if v.Kind() == reflect.Slice {
		return r.renderRows(v)
	}
	return r.renderKeyValues(view)
}

// renderRows writes a slice view as one header row plus one row per
// element, columns taken from the first element.
func (r *Renderer) renderRows(v reflect.Value) error {
	if v.Len() == 0 {
		fmt.Fprintln(r.out, "(no results)")
		return nil
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	columns := r.columnsOf(v.Index(0))
	fmt.Fprintln(w, strings.Join(columns, "\t"))

	for i := range v.Len() {
		fmt.Fprintln(w, strings.Join(r.rowOf(v.Index(i), columns), "\t"))
	}

	return nil
}

// renderKeyValues writes a single struct or map view as aligned
// key/value lines, one field per line.
func (r *Renderer) renderKeyValues(view any) error {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	v := reflect.ValueOf(view)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := range v.NumField() {
			fmt.Fprintf(w, "%s:\t%s\n", r.columnName(t.Field(i)), r.cell(v.Field(i)))
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			fmt.Fprintf(w, "%v:\t%s\n", iter.Key().Interface(), r.cell(iter.Value()))
		}
	default:
		fmt.Fprintf(w, "%v\n", view)
	}

	return nil
}

func (r *Renderer) columnsOf(v reflect.Value) []string {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	var columns []string
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := range t.NumField() {
			columns = append(columns, r.columnName(t.Field(i)))
		}
	case reflect.Map:
		for _, key := range v.MapKeys() {
			columns = append(columns, fmt.Sprintf("%v", key.Interface()))
		}
	}
	return columns
}

func (r *Renderer) rowOf(v reflect.Value, columns []string) []string {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	var row []string
	switch v.Kind() {
	case reflect.Struct:
		for i := range v.NumField() {
			row = append(row, r.cell(v.Field(i)))
		}
	case reflect.Map:
		for _, c := range columns {
			val := v.MapIndex(reflect.ValueOf(c))
			if val.IsValid() {
				row = append(row, r.cell(val))
			} else {
				row = append(row, "")
			}
		}
	}
	return row
}

// columnName prefers the json tag so table headers match the json
// rendering of the same view.
func (r *Renderer) columnName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		parts := strings.Split(tag, ",")
		if parts[0] != "" && parts[0] != "-" {
			return parts[0]
		}
	}
	return strings.ToLower(f.Name)
}

// cell formats one table cell. Nested collections collapse to a count
// so parameter maps and trace slices do not blow up row width.
func (r *Renderer) cell(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}

	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "[]"
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "{}"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	case reflect.Struct:
		if v.Type().String() == "time.Time" {
			return fmt.Sprintf("%v", v.Interface())
		}
		return "{...}"
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// isTTY reports whether f is a character device.
func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
