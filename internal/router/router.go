package router

import (
	"errors"

	"github.com/julianstephens/nutrisnap/internal/models"
)

// ID is the wire name of a view
type ID string

const (
	Login          ID = "login"
	Register       ID = "register"
	Dashboard      ID = "dashboard"
	DailyLog       ID = "daily-log"
	RecipeBook     ID = "recipe-book"
	MealHistory    ID = "meal-history"
	MealDetailsID  ID = "meal-details"
	RecipeDetailID ID = "recipe-details"
	MenstrualCycle ID = "menstrual-cycle"
	Settings       ID = "settings"
	CameraCapture  ID = "camera-capture"
	UserProfile    ID = "user-profile"
	FoodAnalysis   ID = "food-analysis"
)

var (
	ErrNoRecipe = errors.New("recipe details need a recipe")
	ErrNoMeal   = errors.New("meal details need a history entry")
)

// View is one screen. Views with preconditions are separate types that can
// only be built through their constructors.
type View interface {
	ID() ID
	isView()
}

// Screen is a view with no payload
type Screen ID

func (s Screen) ID() ID { return ID(s) }
func (Screen) isView()  {}

// RecipeDetails shows one saved recipe
type RecipeDetails struct {
	Recipe models.Recipe
}

func NewRecipeDetails(r *models.Recipe) (RecipeDetails, error) {
	if r == nil {
		return RecipeDetails{}, ErrNoRecipe
	}
	return RecipeDetails{Recipe: *r}, nil
}

func (RecipeDetails) ID() ID  { return RecipeDetailID }
func (RecipeDetails) isView() {}

// MealDetails shows one analysed meal from history
type MealDetails struct {
	Entry models.HistoryEntry
}

func NewMealDetails(e *models.HistoryEntry) (MealDetails, error) {
	if e == nil {
		return MealDetails{}, ErrNoMeal
	}
	return MealDetails{Entry: *e}, nil
}

func (MealDetails) ID() ID  { return MealDetailsID }
func (MealDetails) isView() {}

var screens = map[ID]bool{
	Login: true, Register: true, Dashboard: true, DailyLog: true,
	RecipeBook: true, MealHistory: true, MenstrualCycle: true, Settings: true,
	CameraCapture: true, UserProfile: true, FoodAnalysis: true,
}

// Parse maps a view name to a view. Unknown names give the dashboard. The
// detail views cannot be named without their payload, so they resolve to the
// list they belong to.
func Parse(id string) View {
	switch ID(id) {
	case RecipeDetailID:
		return Screen(RecipeBook)
	case MealDetailsID:
		return Screen(MealHistory)
	}
	if screens[ID(id)] {
		return Screen(id)
	}
	return Screen(Dashboard)
}

// Chrome says which persistent UI is drawn around a view
type Chrome struct {
	BottomNav bool
	Overlays  bool
}

// ChromeFor returns the chrome table entry for v
func ChromeFor(v View) Chrome {
	switch v.ID() {
	case Login, Register, CameraCapture:
		return Chrome{}
	default:
		return Chrome{BottomNav: true, Overlays: true}
	}
}

// RequiresSession is false only for the authentication screens
func RequiresSession(v View) bool {
	id := v.ID()
	return id != Login && id != Register
}

// Resolve applies the session gate; there is no other transition guard.
func Resolve(v View, authenticated bool) View {
	if v == nil {
		v = Screen(Dashboard)
	}
	if !authenticated && RequiresSession(v) {
		return Screen(Login)
	}
	if authenticated && !RequiresSession(v) {
		return Screen(Dashboard)
	}
	return v
}

// Parent is where "back" leads from v
func Parent(v View) View {
	switch v.ID() {
	case RecipeDetailID:
		return Screen(RecipeBook)
	case MealDetailsID:
		return Screen(MealHistory)
	case Register:
		return Screen(Login)
	case Login:
		return Screen(Login)
	default:
		return Screen(Dashboard)
	}
}

// Title is the human label of a view
func Title(id ID) string {
	switch id {
	case Login:
		return "Sign in"
	case Register:
		return "Create account"
	case Dashboard:
		return "Dashboard"
	case DailyLog:
		return "Daily Log"
	case RecipeBook:
		return "Recipes"
	case MealHistory:
		return "History"
	case MealDetailsID:
		return "Meal"
	case RecipeDetailID:
		return "Recipe"
	case MenstrualCycle:
		return "Cycle"
	case Settings:
		return "Settings"
	case CameraCapture:
		return "Camera"
	case UserProfile:
		return "Profile"
	case FoodAnalysis:
		return "Analysis"
	default:
		return string(id)
	}
}

// Tabs lists the bottom navigation entries for a user
func Tabs(u models.User) []Screen {
	tabs := []Screen{Screen(Dashboard), Screen(DailyLog), Screen(RecipeBook), Screen(MealHistory)}
	if u.TracksCycle() {
		tabs = append(tabs, Screen(MenstrualCycle))
	}
	return append(tabs, Screen(UserProfile), Screen(Settings))
}

// TabIndex returns the tab position of v, or -1. Detail views highlight
// their parent list.
func TabIndex(tabs []Screen, v View) int {
	id := v.ID()
	switch id {
	case RecipeDetailID:
		id = RecipeBook
	case MealDetailsID:
		id = MealHistory
	}
	for i, t := range tabs {
		if t.ID() == id {
			return i
		}
	}
	return -1
}
