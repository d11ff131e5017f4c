package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/datasync"
	"github.com/julianstephens/nutrisnap/internal/logger"
	"github.com/julianstephens/nutrisnap/internal/models"
	"github.com/julianstephens/nutrisnap/internal/router"
	"github.com/julianstephens/nutrisnap/internal/state"
	"github.com/julianstephens/nutrisnap/internal/storage"
	"github.com/julianstephens/nutrisnap/internal/tui/components/historylist"
	"github.com/julianstephens/nutrisnap/internal/tui/components/meallist"
	"github.com/julianstephens/nutrisnap/internal/tui/components/recipelist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case stateMsg:
		m.sync()
		cmds = append(cmds, waitForUpdate(m.updates))
		if m.snap.PickerRequested && m.state != constants.StateFilePicker {
			cmds = append(cmds, m.openPicker(pickAnalyze))
		}
		if m.state == constants.StateBrowsing && !m.prefs.TutorialShown && !m.tipsShown &&
			m.snap.Authenticated() && router.ChromeFor(m.snap.View).Overlays {
			m.tipsShown = true
			m.state = constants.StateHelp
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case opDoneMsg:
		if errors.Is(msg.err, datasync.ErrInFlight) {
			m.app.Notify.Error(constants.MsgInFlight)
		} else if msg.err != nil {
			logger.Debug("Operation failed", "op", msg.op, "error", msg.err)
		}
		if msg.err == nil && msg.next != nil {
			cmd := msg.next(&m)
			return m, cmd
		}
		return m, nil

	case meallist.AddMealMsg:
		return m, m.openForm(state.FormMeal)
	case meallist.DeleteMealMsg:
		id := msg.ID
		return m, m.ask("Delete "+msg.Name+"?", func() tea.Cmd {
			return m.run("delete-meal", func(ctx context.Context) error { return m.app.Sync.DeleteMeal(ctx, id) })
		})

	case recipelist.GenerateMsg:
		return m, m.openForm(state.FormRecipe)
	case recipelist.OpenRecipeMsg:
		id := msg.ID
		return m, m.run(datasync.OpRecipeDetails, func(ctx context.Context) error {
			_, err := m.app.Sync.RecipeDetails(ctx, id)
			return err
		})
	case recipelist.DeleteRecipeMsg:
		return m, m.askDeleteRecipe(msg.ID, msg.Title)
	case recipelist.SaveOptionMsg:
		index := msg.Index
		return m, m.run(datasync.OpSaveRecipe, func(ctx context.Context) error {
			_, err := m.app.Sync.SaveRecipeOption(ctx, index)
			return err
		})

	case historylist.OpenEntryMsg:
		entry := msg.Entry
		if err := m.app.Sync.OpenMealDetails(&entry); err != nil {
			m.app.Notify.Error(err.Error())
		}
		return m, nil
	case historylist.DeleteEntryMsg:
		return m, m.askDeleteHistory(msg.ID)
	}

	switch m.state {
	case constants.StateForm:
		return m, m.updateForm(msg)
	case constants.StateFilePicker:
		return m, m.updatePicker(msg)
	case constants.StateHelp:
		return m, m.updateHelp(msg)
	case constants.StateConfirmDelete, constants.StateConfirmLogout:
		return m, m.updateConfirm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m, m.updateBrowsing(msg)
	}
	return m, m.updateContent(msg)
}

func (m *Model) updateBrowsing(msg tea.KeyMsg) tea.Cmd {
	s := m.snap
	view := s.View

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		if router.ChromeFor(view).Overlays {
			m.state = constants.StateHelp
		}
		return nil
	case key.Matches(msg, m.keys.Dismiss):
		m.app.Notify.DismissError()
		return nil
	case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab):
		if !s.Authenticated() || !router.ChromeFor(view).BottomNav {
			return nil
		}
		step := 1
		if key.Matches(msg, m.keys.ShiftTab) {
			step = -1
		}
		m.app.Navigate(nextTab(s, step))
		return nil
	case key.Matches(msg, m.keys.Back):
		if view.ID() != router.Login {
			m.app.Back()
		}
		return nil
	case key.Matches(msg, m.keys.Logout):
		if s.Authenticated() {
			m.state = constants.StateConfirmLogout
			m.confirm = "Sign out of NutriSnap?"
		}
		return nil
	case key.Matches(msg, m.keys.Refresh) && s.Authenticated():
		return m.run("refresh", func(ctx context.Context) error {
			m.app.Sync.Refresh(ctx)
			if view.ID() == router.Dashboard {
				return m.app.Session.RefreshStats(ctx)
			}
			return nil
		})
	}

	switch view.ID() {
	case router.Login:
		switch {
		case key.Matches(msg, m.keys.Enter):
			return m.openForm(state.FormLogin)
		case key.Matches(msg, m.keys.Register):
			m.app.Navigate(router.Screen(router.Register))
		}
		return nil

	case router.Register:
		if key.Matches(msg, m.keys.Enter) {
			return m.openForm(state.FormRegister)
		}
		return nil

	case router.Dashboard:
		switch {
		case key.Matches(msg, m.keys.Camera):
			return m.startCamera()
		case key.Matches(msg, m.keys.Upload):
			return m.openPicker(pickAnalyze)
		}

	case router.CameraCapture:
		switch {
		case key.Matches(msg, m.keys.Capture):
			return m.run(datasync.OpAnalyzeFood, func(ctx context.Context) error {
				_, err := m.app.CaptureAndAnalyze(ctx)
				return err
			})
		case key.Matches(msg, m.keys.Upload):
			m.app.StopCamera()
			return m.openPicker(pickAnalyze)
		}
		return nil

	case router.DailyLog:
		switch {
		case key.Matches(msg, m.keys.PrevDay):
			return m.shiftDate(-1)
		case key.Matches(msg, m.keys.NextDay):
			return m.shiftDate(1)
		case key.Matches(msg, m.keys.Today):
			m.app.SelectDate(time.Now().Format(constants.DateFormat))
			return nil
		}

	case router.RecipeDetailID:
		if msg.String() == "d" {
			if v, ok := view.(router.RecipeDetails); ok {
				return m.askDeleteRecipe(v.Recipe.ID, v.Recipe.Title)
			}
		}

	case router.MealDetailsID:
		if msg.String() == "d" {
			if v, ok := view.(router.MealDetails); ok {
				return m.askDeleteHistory(v.Entry.ID)
			}
		}

	case router.UserProfile:
		switch {
		case key.Matches(msg, m.keys.Edit):
			return m.openForm(state.FormProfile)
		case key.Matches(msg, m.keys.Upload):
			return m.openPicker(pickProfilePhoto)
		}

	case router.MenstrualCycle:
		if key.Matches(msg, m.keys.LogCycle) {
			return m.openForm(state.FormCycleLog)
		}

	case router.Settings:
		switch msg.String() {
		case "D":
			return m.updatePrefs(func(p *storage.Preferences) { p.DarkMode = !p.DarkMode })
		case "N":
			return m.updatePrefs(func(p *storage.Preferences) { p.EmailNotifications = !p.EmailNotifications })
		case "T":
			m.tipsShown = false
			return m.updatePrefs(func(p *storage.Preferences) { p.TutorialShown = false })
		case "S":
			if err := m.app.RememberAPIURL(); err == nil {
				m.app.Notify.Success("Server saved as default")
			}
			return nil
		}
	}

	return m.updateContent(msg)
}

// updateContent forwards msg to the component that owns the current view
func (m *Model) updateContent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.snap.View.ID() {
	case router.DailyLog:
		m.meals, cmd = m.meals.Update(msg)
	case router.RecipeBook:
		m.recipes, cmd = m.recipes.Update(msg)
	case router.MealHistory:
		m.history, cmd = m.history.Update(msg)
	default:
		m.page, cmd = m.page.Update(msg)
	}
	return cmd
}

func nextTab(s state.State, step int) router.View {
	tabs := router.Tabs(s.User())
	i := router.TabIndex(tabs, s.View)
	if i < 0 {
		i = 0
		if step < 0 {
			i = 1
		}
	}
	return tabs[(i+step+len(tabs))%len(tabs)]
}

func (m *Model) shiftDate(days int) tea.Cmd {
	d, err := time.Parse(constants.DateFormat, m.snap.SelectedDate)
	if err != nil {
		d = time.Now()
	}
	m.app.SelectDate(d.AddDate(0, 0, days).Format(constants.DateFormat))
	return nil
}

func (m *Model) startCamera() tea.Cmd {
	return m.run("camera", func(ctx context.Context) error {
		return m.app.StartCamera(ctx)
	})
}

func (m *Model) updatePrefs(fn func(*storage.Preferences)) tea.Cmd {
	if err := m.app.UpdatePreferences(fn); err != nil {
		return nil
	}
	m.prefs = m.app.Preferences()
	applyTheme(m.prefs.DarkMode)
	m.page.SetSections(m.pageSections(), m.emptyText())
	return nil
}

func (m *Model) ask(question string, action func() tea.Cmd) tea.Cmd {
	m.confirm = question
	m.onConfirm = action
	m.state = constants.StateConfirmDelete
	return nil
}

func (m *Model) askDeleteRecipe(id int64, title string) tea.Cmd {
	return m.ask("Delete recipe "+title+"?", func() tea.Cmd {
		return m.run(datasync.OpDeleteRecipe, func(ctx context.Context) error { return m.app.Sync.DeleteRecipe(ctx, id) })
	})
}

func (m *Model) askDeleteHistory(id int64) tea.Cmd {
	return m.ask("Remove this meal from history?", func() tea.Cmd {
		return m.run(datasync.OpDeleteHistory, func(ctx context.Context) error {
			if err := m.app.Sync.DeleteHistoryEntry(ctx, id); err != nil {
				return err
			}
			if m.app.Store.Snapshot().View.ID() == router.MealDetailsID {
				m.app.Navigate(router.Screen(router.MealHistory))
			}
			return nil
		})
	})
}

func (m *Model) updateConfirm(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch k.String() {
	case "y", "Y":
		var cmd tea.Cmd
		if m.state == constants.StateConfirmLogout {
			cmd = m.run("logout", m.app.Session.Logout)
		} else if m.onConfirm != nil {
			cmd = m.onConfirm()
		}
		m.onConfirm = nil
		m.state = constants.StateBrowsing
		return cmd
	case "n", "N", "esc":
		m.onConfirm = nil
		m.state = constants.StateBrowsing
	}
	return nil
}

func (m *Model) updateHelp(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(tea.KeyMsg); !ok {
		return nil
	}
	m.state = constants.StateBrowsing
	if !m.prefs.TutorialShown {
		m.updatePrefs(func(p *storage.Preferences) { p.TutorialShown = true })
	}
	return nil
}

// openForm copies the store's draft into a form and shows it
func (m *Model) openForm(f state.Form) tea.Cmd {
	s := m.app.Store.Snapshot()
	m.drafts.Drafts = s.Drafts
	m.formFor = f

	switch f {
	case state.FormLogin:
		m.form = newLoginForm(&m.drafts.Login)
	case state.FormRegister:
		m.form = newRegisterForm(&m.drafts.Register)
	case state.FormMeal:
		m.drafts.MealAction = mealSave
		m.form = newMealForm(&m.drafts.Meal, &m.drafts.MealAction)
	case state.FormRecipe:
		m.form = newRecipeForm(&m.drafts.Recipe)
	case state.FormProfile:
		if m.drafts.Profile == models.DefaultProfileDraft() {
			m.drafts.Profile = models.ProfileDraftFrom(s.User())
		}
		m.form = newProfileForm(&m.drafts.Profile)
	case state.FormCycleLog:
		m.form = newCycleForm(&m.drafts.CycleLog)
	default:
		return nil
	}
	m.state = constants.StateForm
	return m.form.Init()
}

// saveDraft writes the form's draft back to the store
func (m *Model) saveDraft() {
	d := m.drafts
	var a state.Action
	switch m.formFor {
	case state.FormLogin:
		a = state.LoginDraftSet{Draft: d.Login}
	case state.FormRegister:
		a = state.RegisterDraftSet{Draft: d.Register}
	case state.FormMeal:
		a = state.MealDraftSet{Draft: d.Meal}
	case state.FormRecipe:
		a = state.RecipeDraftSet{Draft: d.Recipe}
	case state.FormProfile:
		a = state.ProfileDraftSet{Draft: d.Profile}
	case state.FormCycleLog:
		a = state.CycleLogDraftSet{Draft: d.CycleLog}
	}
	if a != nil {
		m.app.Store.Dispatch(a)
	}
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.saveDraft()
		m.state = constants.StateBrowsing
		return nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		m.saveDraft()
		m.state = constants.StateBrowsing
		cmds = append(cmds, m.submit())
	case huh.StateAborted:
		m.saveDraft()
		m.state = constants.StateBrowsing
	}
	return tea.Batch(cmds...)
}

// submit runs the operation behind the completed form
func (m *Model) submit() tea.Cmd {
	d := m.drafts.Drafts
	a := m.app
	switch m.formFor {
	case state.FormLogin:
		return m.run("login", func(ctx context.Context) error {
			_, err := a.Session.Login(ctx, d.Login)
			return err
		})
	case state.FormRegister:
		return m.run("register", func(ctx context.Context) error {
			_, err := a.Session.Register(ctx, d.Register)
			return err
		})
	case state.FormMeal:
		switch m.drafts.MealAction {
		case mealEstimate:
			return m.runThen(datasync.OpEstimateMeal, func(ctx context.Context) error {
				_, err := a.Sync.EstimateMeal(ctx, d.Meal, nil)
				return err
			}, func(m *Model) tea.Cmd { return m.openForm(state.FormMeal) })
		case mealPhoto:
			return m.openPicker(pickMealPhoto)
		default:
			return m.run(datasync.OpSaveMeal, func(ctx context.Context) error {
				_, err := a.Sync.SaveMeal(ctx, d.Meal)
				return err
			})
		}
	case state.FormRecipe:
		return m.run(datasync.OpGenerateRecipe, func(ctx context.Context) error {
			_, err := a.Sync.GenerateRecipe(ctx, d.Recipe, nil)
			return err
		})
	case state.FormProfile:
		return m.run(datasync.OpUpdateProfile, func(ctx context.Context) error {
			return a.Sync.UpdateProfile(ctx, d.Profile)
		})
	case state.FormCycleLog:
		return m.run(datasync.OpLogCycle, func(ctx context.Context) error {
			return a.Sync.LogCycle(ctx, d.CycleLog)
		})
	}
	return nil
}

func (m *Model) openPicker(target pickTarget) tea.Cmd {
	m.pickFor = target
	m.state = constants.StateFilePicker
	return m.picker.Init()
}

func (m *Model) closePicker() {
	m.state = constants.StateBrowsing
	if m.snap.PickerRequested {
		m.app.Store.Dispatch(state.FilePickerRequested{On: false})
	}
}

func (m *Model) updatePicker(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.closePicker()
		if m.snap.View.ID() == router.CameraCapture {
			m.app.Back()
		}
		return nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.closePicker()
		return tea.Batch(cmd, m.picked(path))
	}
	if ok, _ := m.picker.DidSelectDisabledFile(msg); ok {
		m.app.Notify.Error("Please choose an image file")
	}
	return cmd
}

func (m *Model) picked(path string) tea.Cmd {
	a := m.app
	switch m.pickFor {
	case pickAnalyze:
		return m.run(datasync.OpAnalyzeFood, func(ctx context.Context) error {
			_, err := a.AnalyzeFile(ctx, path)
			return err
		})
	case pickMealPhoto:
		d := a.Store.Snapshot().Drafts.Meal
		d.ImagePath = path
		a.Store.Dispatch(state.MealDraftSet{Draft: d})
		return m.openForm(state.FormMeal)
	case pickProfilePhoto:
		return m.run(datasync.OpUploadPhoto, func(ctx context.Context) error {
			blob, err := a.LoadImage(path)
			if err != nil {
				return err
			}
			_, err = a.Sync.UploadProfilePhoto(ctx, blob)
			return err
		})
	}
	return nil
}
