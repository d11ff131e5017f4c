package models

import "github.com/julianstephens/nutrisnap/internal/constants"

// Drafts hold form input as typed by the user. Numeric fields stay strings
// until validation converts them into a request.

type LoginDraft struct {
	Email    string
	Password string
}

type RegisterDraft struct {
	Username            string
	Email               string
	Password            string
	Age                 string
	CurrentWeight       string
	TargetWeight        string
	Height              string
	Gender              string
	TrackMenstrualCycle bool
}

func DefaultRegisterDraft() RegisterDraft {
	return RegisterDraft{Gender: "male"}
}

type MealDraft struct {
	Name     string
	Calories string
	Protein  string
	Carbs    string
	Fat      string
	MealType string
	Time     string
	// ImagePath is an optional photo used for AI estimation.
	ImagePath string
}

func DefaultMealDraft() MealDraft {
	return MealDraft{MealType: string(constants.MealBreakfast)}
}

type RecipeDraft struct {
	Ingredients  string
	MealType     string
	Temperature  string
	CookingTime  string
	CuisineStyle string
	DietaryPref  string
	ImagePath    string
}

func DefaultRecipeDraft() RecipeDraft {
	return RecipeDraft{
		MealType:     "any",
		Temperature:  "any",
		CookingTime:  "medium",
		CuisineStyle: "any",
		DietaryPref:  "none",
	}
}

type ProfileDraft struct {
	Username      string
	Email         string
	Age           string
	CurrentWeight string
	TargetWeight  string
	Height        string
	Gender        string
	ActivityLevel string
}

func DefaultProfileDraft() ProfileDraft {
	return ProfileDraft{ActivityLevel: "light"}
}

// ProfileDraftFrom seeds the profile form from the current user.
func ProfileDraftFrom(u User) ProfileDraft {
	d := DefaultProfileDraft()
	d.Username = u.Username
	d.Email = u.Email
	d.Gender = u.Gender
	if u.ActivityLevel != "" {
		d.ActivityLevel = u.ActivityLevel
	}
	if u.Age != 0 {
		d.Age = formatNumber(float64(u.Age))
	}
	if u.CurrentWeight != 0 {
		d.CurrentWeight = formatNumber(u.CurrentWeight)
	}
	if u.TargetWeight != 0 {
		d.TargetWeight = formatNumber(u.TargetWeight)
	}
	if u.Height != 0 {
		d.Height = formatNumber(u.Height)
	}
	return d
}

type CycleLogDraft struct {
	Symptoms    string
	EnergyLevel string
	Mood        string
	Cravings    string
}

// Drafts groups every in-progress form so logout can reset them together.
type Drafts struct {
	Login    LoginDraft
	Register RegisterDraft
	Meal     MealDraft
	Recipe   RecipeDraft
	Profile  ProfileDraft
	CycleLog CycleLogDraft
}

func DefaultDrafts() Drafts {
	return Drafts{
		Register: DefaultRegisterDraft(),
		Meal:     DefaultMealDraft(),
		Recipe:   DefaultRecipeDraft(),
		Profile:  DefaultProfileDraft(),
	}
}

// Requests sent once a draft validates.

type RegisterRequest struct {
	Username            string  `json:"username"`
	Email               string  `json:"email"`
	Password            string  `json:"password"`
	Age                 int     `json:"age"`
	CurrentWeight       float64 `json:"current_weight"`
	TargetWeight        float64 `json:"target_weight"`
	Height              float64 `json:"height"`
	Gender              string  `json:"gender"`
	TrackMenstrualCycle bool    `json:"track_menstrual_cycle"`
}

type ProfileUpdate struct {
	Username      string  `json:"username,omitempty"`
	Email         string  `json:"email,omitempty"`
	Age           int     `json:"age,omitempty"`
	CurrentWeight float64 `json:"current_weight,omitempty"`
	TargetWeight  float64 `json:"target_weight,omitempty"`
	Height        float64 `json:"height,omitempty"`
	Gender        string  `json:"gender,omitempty"`
	ActivityLevel string  `json:"activity_level,omitempty"`
}

type RecipeRequest struct {
	Ingredients  string `json:"ingredients"`
	MealType     string `json:"meal_type"`
	Temperature  string `json:"temperature"`
	CookingTime  string `json:"cooking_time"`
	CuisineStyle string `json:"cuisine_style"`
	DietaryPref  string `json:"dietary_pref"`
}

// Request converts the personalization draft into the generation payload.
func (d RecipeDraft) Request() RecipeRequest {
	def := DefaultRecipeDraft()
	pick := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	return RecipeRequest{
		Ingredients:  d.Ingredients,
		MealType:     pick(d.MealType, def.MealType),
		Temperature:  pick(d.Temperature, def.Temperature),
		CookingTime:  pick(d.CookingTime, def.CookingTime),
		CuisineStyle: pick(d.CuisineStyle, def.CuisineStyle),
		DietaryPref:  pick(d.DietaryPref, def.DietaryPref),
	}
}
