package tui

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/nutrisnap/internal/app"
	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/router"
	"github.com/julianstephens/nutrisnap/internal/state"
	"github.com/julianstephens/nutrisnap/internal/storage"
	"github.com/julianstephens/nutrisnap/internal/tui/components/detail"
	"github.com/julianstephens/nutrisnap/internal/tui/components/historylist"
	"github.com/julianstephens/nutrisnap/internal/tui/components/meallist"
	"github.com/julianstephens/nutrisnap/internal/tui/components/recipelist"
)

// pickTarget is what a picked file is used for
type pickTarget int

const (
	pickNone pickTarget = iota
	pickAnalyze
	pickMealPhoto
	pickProfilePhoto
)

var imageTypes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// stateMsg means the store changed
type stateMsg struct{}

// opDoneMsg reports a finished background operation
type opDoneMsg struct {
	op   string
	err  error
	next func(m *Model) tea.Cmd
}

type Model struct {
	app     *app.App
	ctx     context.Context
	cancel  context.CancelFunc
	updates chan struct{}
	unsub   func()

	snap  state.State
	prefs storage.Preferences

	state     constants.SessionState
	keys      KeyMap
	help      help.Model
	spinner   spinner.Model
	picker    filepicker.Model
	pickFor   pickTarget
	form      *huh.Form
	formFor   state.Form
	drafts    *formDrafts
	confirm   string
	onConfirm func() tea.Cmd
	tipsShown bool

	meals   meallist.Model
	recipes recipelist.Model
	history historylist.Model
	page    detail.Model

	quitting bool
	width    int
	height   int
}

func NewModel(a *app.App) Model {
	ctx, cancel := context.WithCancel(context.Background())

	updates := make(chan struct{}, 1)
	unsub := a.Store.Subscribe(func(state.State) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})

	fp := filepicker.New()
	fp.AllowedTypes = imageTypes
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	prefs := a.Preferences()
	applyTheme(prefs.DarkMode)

	m := Model{
		app:     a,
		ctx:     ctx,
		cancel:  cancel,
		updates: updates,
		unsub:   unsub,
		prefs:   prefs,
		state:   constants.StateBrowsing,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		picker:  fp,
		drafts:  &formDrafts{},
		meals:   meallist.New(nil, 0, 0),
		recipes: recipelist.New(0, 0),
		history: historylist.New(0, 0),
		page:    detail.New(0, 0),
	}
	m.sync()
	return m
}

func (m Model) Init() tea.Cmd {
	a, ctx := m.app, m.ctx
	return tea.Batch(
		func() tea.Msg {
			a.Start(ctx)
			return nil
		},
		waitForUpdate(m.updates),
		m.spinner.Tick,
	)
}

func waitForUpdate(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return stateMsg{}
	}
}

// run executes fn off the UI goroutine and reports back with opDoneMsg
func (m Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

// runThen is run with a follow-up executed on the UI goroutine after fn
// succeeds
func (m Model) runThen(op string, fn func(ctx context.Context) error, next func(m *Model) tea.Cmd) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		err := fn(ctx)
		if err != nil {
			return opDoneMsg{op: op, err: err}
		}
		return opDoneMsg{op: op, next: next}
	}
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.unsub()
	m.cancel()
	return tea.Quit
}

// sync pulls the latest snapshot into the components
func (m *Model) sync() {
	m.snap = m.app.Store.Snapshot()
	s := m.snap
	m.meals.SetMeals(s.DailyMeals.Value)
	m.recipes.SetItems(s.RecipeOptions.Value.Options, s.UserRecipes.Value)
	m.history.SetEntries(s.MealHistory.Value.Entries, s.MealHistory.Value.Pagination)
	m.page.SetSections(m.pageSections(), m.emptyText())
}

func (m Model) pageSections() []detail.Section {
	s := m.snap
	switch v := s.View.(type) {
	case router.RecipeDetails:
		return recipeSections(v.Recipe)
	case router.MealDetails:
		return mealDetailSections(v.Entry)
	}
	switch s.View.ID() {
	case router.Dashboard:
		return dashboardSections(s)
	case router.FoodAnalysis:
		return analysisSections(s)
	case router.UserProfile:
		return profileSections(s)
	case router.MenstrualCycle:
		return cycleSections(s)
	case router.Settings:
		return settingsSections(m.prefs, m.app.Client.BaseURL())
	}
	return nil
}

func (m Model) emptyText() string {
	switch m.snap.View.ID() {
	case router.FoodAnalysis:
		return "Analysing your meal..."
	case router.MenstrualCycle:
		return "Loading cycle data...\n\nl: log today's symptoms"
	}
	return ""
}

func (m *Model) resize() {
	w, h := m.width-4, m.height-8
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	m.meals.SetSize(w, h-2)
	m.recipes.SetSize(w, h)
	m.history.SetSize(w, h-1)
	m.page.SetSize(w, h)
	m.picker.Height = h - 2
	m.help.Width = m.width
}

func (m Model) busy() bool {
	return len(m.snap.Busy) > 0
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Quit, m.keys.Help}
	if m.snap.Authenticated() {
		keys = append([]key.Binding{m.keys.Tab}, keys...)
	}
	switch m.snap.View.ID() {
	case router.Login:
		keys = append(keys, m.keys.Enter, m.keys.Register)
	case router.Register:
		keys = append(keys, m.keys.Enter, m.keys.Back)
	case router.Dashboard:
		keys = append(keys, m.keys.Camera, m.keys.Upload)
	case router.DailyLog:
		mk := m.meals.Keys()
		keys = append(keys, mk.Add, mk.Delete, m.keys.PrevDay, m.keys.NextDay)
	case router.CameraCapture:
		keys = append(keys, m.keys.Capture, m.keys.Upload, m.keys.Back)
	case router.UserProfile:
		keys = append(keys, m.keys.Edit, m.keys.Upload)
	case router.MenstrualCycle:
		keys = append(keys, m.keys.LogCycle)
	case router.RecipeDetailID, router.MealDetailsID, router.FoodAnalysis:
		keys = append(keys, m.keys.Back)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Back, m.keys.Quit, m.keys.Help, m.keys.Logout}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.Refresh, m.keys.Dismiss}
	actions := []key.Binding{m.keys.Camera, m.keys.Upload, m.keys.PrevDay, m.keys.NextDay, m.keys.Today, m.keys.Edit, m.keys.LogCycle}
	return [][]key.Binding{global, navigation, actions}
}
