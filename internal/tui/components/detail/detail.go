package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(20)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Row is one label/value line
type Row struct {
	Label string
	Value string
}

// Section is a titled block of rows followed by free-form lines
type Section struct {
	Heading string
	Rows    []Row
	Lines   []string
	Note    string
}

// R builds a row, formatting value with %v
func R(label string, value any) Row {
	return Row{Label: label, Value: fmt.Sprint(value)}
}

// Model is a scrollable read-only page
type Model struct {
	viewport viewport.Model
	sections []Section
	empty    string
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.sections) == 0 {
		return m.empty
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetSections replaces the page. empty is shown when there are no sections.
func (m *Model) SetSections(sections []Section, empty string) {
	m.sections = sections
	m.empty = empty
	m.Render()
}

func (m *Model) Render() {
	m.viewport.SetContent(Render(m.sections))
}

// Render draws sections without a viewport
func Render(sections []Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if s.Heading != "" {
			b.WriteString(headingStyle.Render(s.Heading))
			b.WriteString("\n")
		}
		for _, r := range s.Rows {
			if r.Value == "" {
				continue
			}
			b.WriteString(labelStyle.Render(r.Label))
			b.WriteString(valueStyle.Render(r.Value))
			b.WriteString("\n")
		}
		for _, l := range s.Lines {
			b.WriteString("  • ")
			b.WriteString(l)
			b.WriteString("\n")
		}
		if s.Note != "" {
			b.WriteString(noteStyle.Render(s.Note))
			b.WriteString("\n")
		}
	}
	return b.String()
}
