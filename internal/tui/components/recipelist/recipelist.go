package recipelist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nutrisnap/internal/models"
)

type GenerateMsg struct{}

type OpenRecipeMsg struct {
	ID int64
}

type DeleteRecipeMsg struct {
	ID    int64
	Title string
}

type SaveOptionMsg struct {
	Index int
}

// RecipeItem is a saved recipe
type RecipeItem struct {
	Recipe models.Recipe
}

func (i RecipeItem) Title() string { return i.Recipe.Title }

func (i RecipeItem) Description() string {
	parts := []string{fmt.Sprintf("%.0f kcal", i.Recipe.Calories())}
	if t := i.Recipe.PrepTime + i.Recipe.CookTime; t > 0 {
		parts = append(parts, fmt.Sprintf("%d min", t))
	}
	if i.Recipe.Difficulty != "" {
		parts = append(parts, i.Recipe.Difficulty)
	}
	return strings.Join(parts, " | ")
}

func (i RecipeItem) FilterValue() string { return i.Recipe.Title }

// OptionItem is a freshly generated option that is not saved yet
type OptionItem struct {
	Index  int
	Option models.RecipeOption
}

func (i OptionItem) Title() string { return "✨ " + i.Option.Title + " (new)" }

func (i OptionItem) Description() string {
	desc := fmt.Sprintf("%.0f kcal | enter to save", i.Option.Nutrition.Calories)
	if i.Option.ImageURL == "" {
		desc += " | image pending"
	}
	return desc
}

func (i OptionItem) FilterValue() string { return i.Option.Title }

type KeyMap struct {
	Generate key.Binding
	Open     key.Binding
	Delete   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open/save"),
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

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Recipes"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Generate, keys.Open, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Generate, keys.Open, keys.Delete}
	}
	return Model{list: l, keys: keys}
}

// SetItems lists unsaved options first, then the saved collection
func (m *Model) SetItems(options []models.RecipeOption, recipes []models.Recipe) {
	items := make([]list.Item, 0, len(options)+len(recipes))
	for i, o := range options {
		items = append(items, OptionItem{Index: i, Option: o})
	}
	for _, r := range recipes {
		items = append(items, RecipeItem{Recipe: r})
	}
	m.list.SetItems(items)
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
		case key.Matches(msg, m.keys.Generate):
			return m, func() tea.Msg { return GenerateMsg{} }
		case key.Matches(msg, m.keys.Open):
			switch i := m.list.SelectedItem().(type) {
			case RecipeItem:
				return m, func() tea.Msg { return OpenRecipeMsg{ID: i.Recipe.ID} }
			case OptionItem:
				return m, func() tea.Msg { return SaveOptionMsg{Index: i.Index} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(RecipeItem); ok {
				return m, func() tea.Msg { return DeleteRecipeMsg{ID: i.Recipe.ID, Title: i.Recipe.Title} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  Your recipe book is empty.\n  Press 'g' to generate recipes from your ingredients."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
