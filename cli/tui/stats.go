package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/flare/cli/reader"
)

// StatsModel is a Bubble Tea model for stream statistics.
type StatsModel struct {
	stats    *reader.StreamStats
	width    int
	height   int
	quitting bool
}

// NewStatsModel creates a stats model.
func NewStatsModel(stats *reader.StreamStats) StatsModel {
	return StatsModel{stats: stats}
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	boxes := []string{
		m.statBox("Records", m.stats.Records),
		m.statBox("Failures", m.stats.ByKind["failure"]),
		m.statBox("Messages", m.stats.ByKind["message"]),
		m.statBox("Reports", m.stats.ByKind["report"]),
		m.statBox("Decode Errors", m.stats.DecodeErrors),
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, boxes...)

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Stream Statistics"))
	b.WriteString("\n\n")
	b.WriteString(row)

	if len(m.stats.ByProtocol) > 0 {
		b.WriteString("\n\n")
		b.WriteString(TitleStyle.Render("By Protocol"))
		b.WriteString("\n")

		protocols := make([]string, 0, len(m.stats.ByProtocol))
		for p := range m.stats.ByProtocol {
			protocols = append(protocols, p)
		}
		sort.Strings(protocols)
		for _, p := range protocols {
			b.WriteString(fmt.Sprintf("%s %s\n",
				LabelStyle.Render(p+":"),
				ValueStyle.Render(fmt.Sprintf("%d", m.stats.ByProtocol[p]))))
		}
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return b.String() + "\n" + help
}

func (m StatsModel) statBox(label string, value int) string {
	content := StatValueStyle.Render(fmt.Sprintf("%d", value)) + "\n" +
		StatLabelStyle.Render(label)
	return StatBoxStyle.Render(content)
}

// RunStats runs the stream statistics TUI.
func RunStats(stats *reader.StreamStats) error {
	p := tea.NewProgram(NewStatsModel(stats), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
