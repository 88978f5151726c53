package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/flare/cli/reader"
)

// BrowserModel is a Bubble Tea model that pages through decoded records:
// a list pane on the left, the selected record's detail on the right.
type BrowserModel struct {
	records  []reader.RecordView
	cursor   int
	width    int
	height   int
	quitting bool
}

// NewBrowserModel creates a browser over the given records.
func NewBrowserModel(records []reader.RecordView) BrowserModel {
	return BrowserModel{records: records}
}

// Init implements tea.Model.
func (m BrowserModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.records)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Home):
			m.cursor = 0
		case key.Matches(msg, keys.End):
			if len(m.records) > 0 {
				m.cursor = len(m.records) - 1
			}
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}
	if len(m.records) == 0 {
		return BoxStyle.Render("(no records)") + "\n" +
			HelpStyle.Render("Press q or Ctrl+C to quit")
	}

	list := m.renderList()
	detail := m.renderDetail(m.records[m.cursor])
	body := lipgloss.JoinHorizontal(lipgloss.Top, list, detail)

	help := HelpStyle.Render("↑/↓ select · g/G first/last · q quit")
	return body + "\n" + help
}

func (m BrowserModel) renderList() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Records (%d)", len(m.records))))
	b.WriteString("\n\n")

	for i, r := range m.records {
		line := fmt.Sprintf("%s %s", KindStyle(r.Kind).Render(fmt.Sprintf("%-7s", r.Kind)), r.Protocol)
		if i == m.cursor {
			line = SelectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return BoxStyle.Render(b.String())
}

func (m BrowserModel) renderDetail(r reader.RecordView) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Record Details"))
	b.WriteString("\n\n")

	rows := [][]string{
		{"Kind", r.Kind},
		{"Protocol", r.Protocol},
		{"Identifier", r.Identifier},
		{"Code", fmt.Sprintf("%d", r.Code)},
		{"Symbol", r.Symbol},
		{"Abstract", r.Abstract},
	}
	for _, row := range rows {
		label := LabelStyle.Render(row[0] + ":")
		value := row[1]
		if row[0] == "Kind" {
			value = KindStyle(r.Kind).Render(value)
		} else {
			value = ValueStyle.Render(value)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", label, value))
	}

	if len(r.Parameters) > 0 {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Parameters"))
		b.WriteString("\n")
		for _, p := range r.Parameters {
			b.WriteString(fmt.Sprintf("%s %s\n",
				LabelStyle.Render("  "+p.Key+":"),
				ValueStyle.Render(fmt.Sprintf("%v (%s/%s)", p.Value, p.Form, p.Type))))
		}
	}

	if len(r.Trace) > 0 {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Causal Trace"))
		b.WriteString("\n")
		for i, f := range r.Trace {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1,
				ValueStyle.Render(fmt.Sprintf("[%s#%s] %s", f.Protocol, f.Identifier, f.Symbol))))
		}
	}

	return BoxStyle.Render(b.String())
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
	Up   key.Binding
	Down key.Binding
	Home key.Binding
	End  key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous record"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next record"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "first record"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "last record"),
	),
}

// RunBrowser runs the record browser TUI.
func RunBrowser(records []reader.RecordView) error {
	p := tea.NewProgram(NewBrowserModel(records), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
