package meallist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nutrisnap/internal/models"
)

type AddMealMsg struct{}

type DeleteMealMsg struct {
	ID   int64
	Name string
}

type Item struct {
	Meal models.Meal
}

func (i Item) Title() string {
	if i.Meal.Time != "" {
		return i.Meal.Time + "  " + i.Meal.Name
	}
	return i.Meal.Name
}

func (i Item) Description() string {
	return fmt.Sprintf("%s | %.0f kcal | P %.1fg C %.1fg F %.1fg",
		i.Meal.MealType, i.Meal.Calories, i.Meal.Protein, i.Meal.Carbs, i.Meal.Fat)
}

func (i Item) FilterValue() string { return i.Meal.Name }

type KeyMap struct {
	Add    key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add meal"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(meals []models.Meal, width, height int) Model {
	l := list.New(items(meals), list.NewDefaultDelegate(), width, height)
	l.Title = "Meals"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

func items(meals []models.Meal) []list.Item {
	out := make([]list.Item, len(meals))
	for i, m := range meals {
		out[i] = Item{Meal: m}
	}
	return out
}

func (m *Model) SetMeals(meals []models.Meal) {
	m.list.SetItems(items(meals))
}

func (m Model) Keys() KeyMap {
	return m.keys
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
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddMealMsg{} }
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteMealMsg{ID: i.Meal.ID, Name: i.Meal.Name} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No meals logged for this day.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
