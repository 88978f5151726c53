package wire

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/pithecene-io/flare/types"
)

// Record kind discriminants. The three kinds are decoded into three
// distinct record types so that downstream consumers keep receiving the
// particular variant they expect.
const (
	KindFailure = "failure"
	KindMessage = "message"
	KindReport  = "report"
)

// SpecWire is the wire form of one parameter specification: the
// (form, type, key, value) 4-tuple from Parameters.Specifications.
type SpecWire struct {
	Form  string `msgpack:"form" json:"form"`
	Type  string `msgpack:"type" json:"type"`
	Key   string `msgpack:"key" json:"key"`
	Value any    `msgpack:"value" json:"value"`
}

// TraceWire is the wire form of one causal trace frame.
type TraceWire struct {
	Event types.EStruct `msgpack:"event" json:"event"`
	Specs []SpecWire    `msgpack:"parameters" json:"parameters"`
}

// RecordFrame is the payload of one frame: a complete diagnostic record
// with its kind discriminant and codec version.
type RecordFrame struct {
	// Kind discriminates failure, message, and report frames.
	Kind string `msgpack:"kind" json:"kind"`
	// Version is the frame codec contract version.
	Version string `msgpack:"contract_version" json:"contract_version"`
	// Event identifies what happened.
	Event types.EStruct `msgpack:"event" json:"event"`
	// Specs carries the record's parameter specifications. Entries
	// tagged (value, excluded) are never present.
	Specs []SpecWire `msgpack:"parameters" json:"parameters"`
	// Trace carries the causal trace frames in route order.
	Trace []TraceWire `msgpack:"trace" json:"trace"`
}

// EncodeFailure builds the wire frame for a failure record.
func EncodeFailure(f *types.Failure) *RecordFrame {
	return encodeRecord(KindFailure, f)
}

// EncodeMessage builds the wire frame for a message record.
func EncodeMessage(m *types.Message) *RecordFrame {
	return encodeRecord(KindMessage, m)
}

// EncodeReport builds the wire frame for a report record.
func EncodeReport(r *types.Report) *RecordFrame {
	return encodeRecord(KindReport, r)
}

func encodeRecord(kind string, rec types.Record) *RecordFrame {
	route := rec.Context().Route()
	trace := make([]TraceWire, 0, len(route))
	for _, fr := range route {
		trace = append(trace, TraceWire{
			Event: fr.Event,
			Specs: specsOf(fr.Parameters),
		})
	}

	return &RecordFrame{
		Kind:    kind,
		Version: types.WireVersion,
		Event:   rec.Event(),
		Specs:   specsOf(rec.Parameters()),
		Trace:   trace,
	}
}

// specsOf exports a parameter store for transmission. Excluded entries
// are local-only bookkeeping and are dropped here; set values are
// flattened to arrays since msgpack has no set shape.
func specsOf(p *types.Parameters) []SpecWire {
	if p == nil {
		return nil
	}
	specs := make([]SpecWire, 0, p.Len())
	for s := range p.Specifications() {
		if s.Form == types.FormValue && s.Type == types.TypeExcluded {
			continue
		}
		specs = append(specs, SpecWire{
			Form:  string(s.Form),
			Type:  s.Type,
			Key:   s.Key,
			Value: encodeValue(s.Value),
		})
	}
	return specs
}

func encodeValue(v any) any {
	switch c := v.(type) {
	case types.Set:
		members := make([]any, 0, len(c))
		for m := range c {
			members = append(members, m)
		}
		return members
	case *types.Parameters:
		// Nested stores travel as their own specification list.
		return specsOf(c)
	default:
		return v
	}
}

// Record rebuilds the typed record from a decoded frame. The parameter
// stores are reconstructed from the transmitted specifications without
// reclassification; the frame's descriptors are authoritative.
func (f *RecordFrame) Record() (types.Record, error) {
	params, err := buildParameters(f.Specs)
	if err != nil {
		return nil, err
	}

	frames := make([]types.Frame, 0, len(f.Trace))
	for _, tw := range f.Trace {
		tp, err := buildParameters(tw.Specs)
		if err != nil {
			return nil, err
		}
		frames = append(frames, types.Frame{Event: tw.Event, Parameters: tp})
	}
	trace := types.TraceFromFrames(frames)

	switch f.Kind {
	case KindFailure:
		return types.FailureFromParts(trace, f.Event, params), nil
	case KindMessage:
		return types.MessageFromParts(trace, f.Event, params), nil
	case KindReport:
		return types.ReportFromParts(trace, f.Event, params), nil
	default:
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("unknown record kind %q", f.Kind),
		}
	}
}

func buildParameters(specs []SpecWire) (*types.Parameters, error) {
	out := make([]types.Specification, 0, len(specs))
	for _, s := range specs {
		v, err := decodeValue(types.Form(s.Form), s.Type, s.Value)
		if err != nil {
			return nil, &FrameError{
				Kind: FrameErrorDecode,
				Msg:  fmt.Sprintf("parameter %q", s.Key),
				Err:  err,
			}
		}
		out = append(out, types.Specification{
			Form:  types.Form(s.Form),
			Type:  s.Type,
			Key:   s.Key,
			Value: v,
		})
	}
	return types.ParametersFromSpecifications(out), nil
}

// decodeValue restores the in-memory shape the descriptor promises:
// sets come back as types.Set, r-sequences as []string, nested
// parameter stores as *types.Parameters, and msgpack's integer widths
// are normalized so round-tripped scalars compare equal.
func decodeValue(form types.Form, typ string, v any) (any, error) {
	switch form {
	case types.FormVSet, types.FormRSet:
		members, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("set value arrived as %T, want array", v)
		}
		s := make(types.Set, len(members))
		for _, m := range members {
			s[normalizeScalar(m)] = struct{}{}
		}
		return s, nil

	case types.FormVSequence:
		seq, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("sequence value arrived as %T, want array", v)
		}
		out := make([]any, len(seq))
		for i, e := range seq {
			out[i] = normalizeScalar(e)
		}
		return out, nil

	case types.FormRSequence:
		seq, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("r-sequence value arrived as %T, want array", v)
		}
		out := make([]string, len(seq))
		for i, e := range seq {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("r-sequence element %d arrived as %T, want string", i, e)
			}
			out[i] = s
		}
		return out, nil

	case types.FormValue:
		if typ == types.TypeParameters {
			return decodeNested(v)
		}
		return normalizeScalar(v), nil

	default:
		// reference and representation values are strings already.
		return normalizeScalar(v), nil
	}
}

// decodeNested handles parameters-typed values, which arrive either as
// a plain map or as a nested specification list.
func decodeNested(v any) (any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case []any:
		specs := make([]SpecWire, 0, len(m))
		for _, e := range m {
			fields, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("nested specification arrived as %T, want map", e)
			}
			sw := SpecWire{}
			sw.Form, _ = fields["form"].(string)
			sw.Type, _ = fields["type"].(string)
			sw.Key, _ = fields["key"].(string)
			sw.Value = fields["value"]
			specs = append(specs, sw)
		}
		return buildParameters(specs)
	default:
		return nil, fmt.Errorf("parameters value arrived as %T", v)
	}
}

// normalizeScalar collapses the integer widths a msgpack decoder picks
// by magnitude back to int. Values outside the int range keep their
// decoded width rather than being truncated.
func normalizeScalar(v any) any {
	switch n := v.(type) {
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		if i, err := safecast.Conv[int](n); err == nil {
			return i
		}
		return n
	case uint:
		if i, err := safecast.Conv[int](n); err == nil {
			return i
		}
		return n
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		if i, err := safecast.Conv[int](n); err == nil {
			return i
		}
		return n
	case uint64:
		if i, err := safecast.Conv[int](n); err == nil {
			return i
		}
		return n
	case float32:
		return float64(n)
	default:
		return v
	}
}
