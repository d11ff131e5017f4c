package historylist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nutrisnap/internal/models"
)

type OpenEntryMsg struct {
	Entry models.HistoryEntry
}

type DeleteEntryMsg struct {
	ID int64
}

type Item struct {
	Entry models.HistoryEntry
}

func (i Item) Title() string {
	foods := strings.Join(i.Entry.FoodsDetected, ", ")
	if foods == "" {
		foods = "Analysed meal"
	}
	if len(foods) > 60 {
		foods = foods[:57] + "..."
	}
	return foods
}

func (i Item) Description() string {
	when := i.Entry.CreatedAt
	if t, err := time.Parse(time.RFC3339, when); err == nil {
		when = t.Local().Format("Jan 2 15:04")
	}
	return fmt.Sprintf("%s | %s | %.0f kcal | health %.0f/10", when, i.Entry.MealType, i.Entry.TotalCalories, i.Entry.HealthScore)
}

func (i Item) FilterValue() string { return strings.Join(i.Entry.FoodsDetected, " ") }

type KeyMap struct {
	Open   key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list  list.Model
	keys  KeyMap
	pages models.Pagination
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "History"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.Delete}
	}
	return Model{list: l, keys: keys}
}

func (m *Model) SetEntries(entries []models.HistoryEntry, pages models.Pagination) {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Entry: e}
	}
	m.list.SetItems(items)
	m.pages = pages
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Open):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return OpenEntryMsg(i) }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteEntryMsg{ID: i.Entry.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No analysed meals yet.\n  Use the camera from the dashboard to analyse one."
	}
	footer := ""
	if m.pages.Total > 0 {
		footer = fmt.Sprintf("\n  %d meals analysed", m.pages.Total)
	}
	return m.list.View() + footer
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
