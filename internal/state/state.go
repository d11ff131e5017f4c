package state

import (
	"slices"

	"github.com/julianstephens/nutrisnap/internal/models"
	"github.com/julianstephens/nutrisnap/internal/notifier"
	"github.com/julianstephens/nutrisnap/internal/router"
)

// State is the whole client state. Values handed out by the store are
// snapshots: slices inside are never mutated in place by the reducer.
type State struct {
	View         router.View
	Epoch        uint64
	Session      *models.Session
	SessionGen   uint64
	SelectedDate string

	DailyMeals      Resource[[]models.Meal]
	MealHistory     Resource[History]
	UserRecipes     Resource[[]models.Recipe]
	UserProfile     Resource[*models.Profile]
	NutritionPlan   Resource[*models.NutritionPlan]
	CycleData       Resource[*models.CycleData]
	DashboardStats  Resource[*models.DashboardStats]
	MealSuggestions Resource[[]models.Suggestion]
	Analysis        Resource[*models.Analysis]
	RecipeOptions   Resource[RecipeOptions]

	Drafts          models.Drafts
	Banners         [2]*notifier.Notification
	BannerGens      [2]uint64
	PickerRequested bool
	Busy            map[string]bool
}

// Initial is the state of a fresh process or of a logged-out client
func Initial(today string) State {
	return State{
		View:         router.Screen(router.Login),
		SelectedDate: today,
		Drafts:       models.DefaultDrafts(),
	}
}

// Authenticated reports whether a session exists
func (s State) Authenticated() bool {
	return s.Session != nil
}

// Owner tags a write with the current session generation
func (s State) Owner() Owner {
	return Owner{SessionGen: s.SessionGen}
}

// Owns reports whether a write started under o may still change s. Writes
// outlive a logout; their results must not land on the next state.
func (s State) Owns(o Owner) bool {
	return s.Session != nil && o.SessionGen == s.SessionGen
}

// User returns the session user, or the zero user
func (s State) User() models.User {
	if s.Session == nil {
		return models.User{}
	}
	return s.Session.User
}

// Banner returns the visible notification of a kind
func (s State) Banner(kind notifier.Kind) *notifier.Notification {
	return s.Banners[kind]
}

// IsBusy reports whether the named write is in flight
func (s State) IsBusy(op string) bool {
	return s.Busy[op]
}

// Reduce returns the state after applying a. It never mutates s.
func Reduce(s State, a Action) State {
	if w, ok := a.(owned); ok && !s.Owns(w.owner()) {
		return s
	}

	switch a := a.(type) {
	case SessionStarted:
		sess := a.Session
		s.Session = &sess

	case UserUpdated:
		sess := *s.Session
		sess.User = sess.User.Merge(a.User)
		s.Session = &sess

	case StatsUpdated:
		sess := *s.Session
		sess.Stats = a.Stats
		s.Session = &sess

	case LoggedOut:
		next := Initial(a.Today)
		next.Epoch = s.Epoch + 1
		next.SessionGen = s.SessionGen + 1
		next.BannerGens = s.BannerGens
		return next

	case Navigated:
		if a.View == nil {
			return s
		}
		s.View = a.View
		s.Epoch++
		s.PickerRequested = false

	case DateSelected:
		s.SelectedDate = a.Date
		s.Epoch++

	case FilePickerRequested:
		s.PickerRequested = a.On

	case DailyMealsLoaded:
		if stale(s, a.Fetch) || a.Date != s.SelectedDate {
			return s
		}
		s.DailyMeals = loaded(nonNil(a.Meals), a.Fallback, a.At)

	case MealHistoryLoaded:
		if stale(s, a.Fetch) {
			return s
		}
		h := a.History
		h.Entries = nonNil(h.Entries)
		s.MealHistory = loaded(h, a.Fallback, a.At)

	case RecipesLoaded:
		if stale(s, a.Fetch) {
			return s
		}
		s.UserRecipes = loaded(nonNil(a.Recipes), a.Fallback, a.At)

	case ProfileLoaded:
		if stale(s, a.Fetch) {
			return s
		}
		s.UserProfile = loaded(a.Profile, a.Fallback, a.At)
		if a.Profile != nil && s.Session != nil {
			sess := *s.Session
			sess.User = sess.User.Merge(a.Profile.User)
			s.Session = &sess
		}

	case NutritionPlanLoaded:
		if stale(s, a.Fetch) {
			return s
		}
		s.NutritionPlan = loaded(a.Plan, a.Fallback, a.At)

	case CycleDataLoaded:
		if stale(s, a.Fetch) {
			return s
		}
		s.CycleData = loaded(a.Data, a.Fallback, a.At)

	case DashboardStatsLoaded:
		if stale(s, a.Fetch) {
			return s
		}
		s.DashboardStats = loaded(a.Stats, a.Fallback, a.At)

	case SuggestionsLoaded:
		if stale(s, a.Fetch) {
			return s
		}
		s.MealSuggestions = loaded(nonNil(a.Suggestions), a.Fallback, a.At)

	case MealAppended:
		meals := slices.Clone(s.DailyMeals.Value)
		s.DailyMeals.Value = append(meals, a.Meal)
		if s.DailyMeals.Status == Empty {
			s.DailyMeals.Status = Loaded
		}

	case MealRemoved:
		s.DailyMeals.Value = slices.DeleteFunc(slices.Clone(s.DailyMeals.Value), func(m models.Meal) bool {
			return m.ID == a.ID
		})

	case HistoryEntryRemoved:
		h := s.MealHistory.Value
		h.Entries = slices.DeleteFunc(slices.Clone(h.Entries), func(e models.HistoryEntry) bool {
			return e.ID == a.ID
		})
		s.MealHistory.Value = h

	case RecipeRemoved:
		s.UserRecipes.Value = slices.DeleteFunc(slices.Clone(s.UserRecipes.Value), func(r models.Recipe) bool {
			return r.ID == a.ID
		})
		if rd, ok := s.View.(router.RecipeDetails); ok && rd.Recipe.ID == a.ID {
			s.View = router.Screen(router.RecipeBook)
			s.Epoch++
		}

	case RecipeOptionsReceived:
		s.RecipeOptions = Resource[RecipeOptions]{
			Value: RecipeOptions{
				Gen:        s.RecipeOptions.Value.Gen + 1,
				Options:    slices.Clone(a.Options),
				Validation: a.Validation,
				Detected:   a.Detected,
			},
			Status:    Loaded,
			UpdatedAt: a.At,
		}

	case RecipeOptionImage:
		ro := s.RecipeOptions.Value
		if a.Gen != ro.Gen || a.Index < 0 || a.Index >= len(ro.Options) {
			return s
		}
		ro.Options = slices.Clone(ro.Options)
		ro.Options[a.Index].ImageURL = a.URL
		s.RecipeOptions.Value = ro

	case AnalysisStarted:
		s.Analysis = Resource[*models.Analysis]{}

	case AnalysisReceived:
		an := a.Analysis
		s.Analysis = loaded(&an, a.Fallback, a.At)

	case DraftReset:
		def := models.DefaultDrafts()
		switch a.Form {
		case FormLogin:
			s.Drafts.Login = def.Login
		case FormRegister:
			s.Drafts.Register = def.Register
		case FormMeal:
			s.Drafts.Meal = def.Meal
		case FormRecipe:
			s.Drafts.Recipe = def.Recipe
		case FormProfile:
			s.Drafts.Profile = def.Profile
		case FormCycleLog:
			s.Drafts.CycleLog = def.CycleLog
		}

	case LoginDraftSet:
		s.Drafts.Login = a.Draft
	case RegisterDraftSet:
		s.Drafts.Register = a.Draft
	case MealDraftSet:
		s.Drafts.Meal = a.Draft
	case RecipeDraftSet:
		s.Drafts.Recipe = a.Draft
	case ProfileDraftSet:
		s.Drafts.Profile = a.Draft
	case CycleLogDraftSet:
		s.Drafts.CycleLog = a.Draft

	case NotificationChanged:
		if a.Gen < s.BannerGens[a.Kind] {
			return s
		}
		s.BannerGens[a.Kind] = a.Gen
		if a.Note != nil {
			cp := *a.Note
			s.Banners[a.Kind] = &cp
		} else {
			s.Banners[a.Kind] = nil
		}

	case OpStarted:
		busy := make(map[string]bool, len(s.Busy)+1)
		for k, v := range s.Busy {
			busy[k] = v
		}
		busy[a.Op] = true
		s.Busy = busy

	case OpFinished:
		if !s.Busy[a.Op] {
			return s
		}
		busy := make(map[string]bool, len(s.Busy))
		for k, v := range s.Busy {
			if k != a.Op {
				busy[k] = v
			}
		}
		s.Busy = busy
	}
	return s
}

func stale(s State, f Fetch) bool {
	return f.Epoch != s.Epoch
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
