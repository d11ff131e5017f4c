package state

import (
	"time"

	"github.com/julianstephens/nutrisnap/internal/models"
	"github.com/julianstephens/nutrisnap/internal/notifier"
	"github.com/julianstephens/nutrisnap/internal/router"
)

// Action is a state change. Every state-changing operation has its own type.
type Action interface {
	action()
}

// Fetch is embedded by every load action. Results issued under an older
// epoch are discarded.
type Fetch struct {
	Epoch    uint64
	Fallback bool
	At       time.Time
}

// Owner is embedded by actions that write on behalf of a session. The
// reducer drops them once that session has logged out.
type Owner struct {
	SessionGen uint64
}

type owned interface {
	owner() Owner
}

func (o Owner) owner() Owner { return o }

// Session

type SessionStarted struct {
	Session models.Session
}

type UserUpdated struct {
	Owner
	User models.User
}

type StatsUpdated struct {
	Owner
	Stats *models.Stats
}

// LoggedOut resets every slot, draft and banner. Today seeds the new
// selected date.
type LoggedOut struct {
	Today string
}

// Navigation

type Navigated struct {
	View router.View
}

type DateSelected struct {
	Date string
}

type FilePickerRequested struct {
	On bool
}

// Loads

type DailyMealsLoaded struct {
	Fetch
	Date  string
	Meals []models.Meal
}

type MealHistoryLoaded struct {
	Fetch
	History History
}

type RecipesLoaded struct {
	Fetch
	Recipes []models.Recipe
}

type ProfileLoaded struct {
	Fetch
	Profile *models.Profile
}

type NutritionPlanLoaded struct {
	Fetch
	Plan *models.NutritionPlan
}

type CycleDataLoaded struct {
	Fetch
	Data *models.CycleData
}

type DashboardStatsLoaded struct {
	Fetch
	Stats *models.DashboardStats
}

type SuggestionsLoaded struct {
	Fetch
	Suggestions []models.Suggestion
}

// Local writes

type MealAppended struct {
	Owner
	Meal models.Meal
}

type MealRemoved struct {
	Owner
	ID int64
}

type HistoryEntryRemoved struct {
	Owner
	ID int64
}

type RecipeRemoved struct {
	Owner
	ID int64
}

type RecipeOptionsReceived struct {
	Owner
	Options    []models.RecipeOption
	Validation *models.IngredientValidation
	Detected   []string
	At         time.Time
}

// RecipeOptionImage fills in the image of one option of generation Gen
type RecipeOptionImage struct {
	Owner
	Gen   uint64
	Index int
	URL   string
}

// AnalysisStarted clears the previous result while a new one is pending
type AnalysisStarted struct {
	Owner
}

type AnalysisReceived struct {
	Owner
	Analysis models.Analysis
	Fallback bool
	At       time.Time
}

// Drafts

// Form names one of the draft records
type Form int

const (
	FormLogin Form = iota
	FormRegister
	FormMeal
	FormRecipe
	FormProfile
	FormCycleLog
)

type DraftReset struct {
	Form Form
}

type LoginDraftSet struct{ Draft models.LoginDraft }
type RegisterDraftSet struct{ Draft models.RegisterDraft }
type MealDraftSet struct{ Draft models.MealDraft }
type RecipeDraftSet struct{ Draft models.RecipeDraft }
type ProfileDraftSet struct{ Draft models.ProfileDraft }
type CycleLogDraftSet struct{ Draft models.CycleLogDraft }

// Notifications and progress

// NotificationChanged carries the banner slot's generation; changes older
// than the slot's current generation are ignored
type NotificationChanged struct {
	Kind notifier.Kind
	Gen  uint64
	Note *notifier.Notification
}

type OpStarted struct {
	Op string
}

type OpFinished struct {
	Op string
}

func (SessionStarted) action()        {}
func (UserUpdated) action()           {}
func (StatsUpdated) action()          {}
func (LoggedOut) action()             {}
func (Navigated) action()             {}
func (DateSelected) action()          {}
func (FilePickerRequested) action()   {}
func (DailyMealsLoaded) action()      {}
func (MealHistoryLoaded) action()     {}
func (RecipesLoaded) action()         {}
func (ProfileLoaded) action()         {}
func (NutritionPlanLoaded) action()   {}
func (CycleDataLoaded) action()       {}
func (DashboardStatsLoaded) action()  {}
func (SuggestionsLoaded) action()     {}
func (MealAppended) action()          {}
func (MealRemoved) action()           {}
func (HistoryEntryRemoved) action()   {}
func (RecipeRemoved) action()         {}
func (RecipeOptionsReceived) action() {}
func (RecipeOptionImage) action()     {}
func (AnalysisStarted) action()       {}
func (AnalysisReceived) action()      {}
func (DraftReset) action()            {}
func (LoginDraftSet) action()         {}
func (RegisterDraftSet) action()      {}
func (MealDraftSet) action()          {}
func (RecipeDraftSet) action()        {}
func (ProfileDraftSet) action()       {}
func (CycleLogDraftSet) action()      {}
func (NotificationChanged) action()   {}
func (OpStarted) action()             {}
func (OpFinished) action()            {}
