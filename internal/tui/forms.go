package tui

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/models"
	"github.com/julianstephens/nutrisnap/internal/validation"
)

// mealAction is what the meal form does once submitted
type mealAction string

const (
	mealSave     mealAction = "save"
	mealEstimate mealAction = "estimate"
	mealPhoto    mealAction = "photo"
)

// formDrafts is the form-bound copy of the store's drafts. It lives behind a
// pointer so huh fields stay bound while the model is copied.
type formDrafts struct {
	models.Drafts
	MealAction mealAction
}

func options(values ...string) []huh.Option[string] {
	out := make([]huh.Option[string], len(values))
	for i, v := range values {
		label := "Not set"
		if v != "" {
			label = strings.ToUpper(v[:1]) + strings.ReplaceAll(v[1:], "_", " ")
		}
		out[i] = huh.NewOption(label, v)
	}
	return out
}

// imageFile accepts blank or a path to an existing file
func imageFile(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := os.Stat(s); err != nil {
		return fmt.Errorf("file not found")
	}
	return nil
}

func newLoginForm(d *models.LoginDraft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&d.Email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&d.Password),
		).Title("Sign in to NutriVision"),
	).WithTheme(huh.ThemeDracula())
}

func newRegisterForm(d *models.RegisterDraft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&d.Username).
				Validate(validation.Required),
			huh.NewInput().
				Title("Email").
				Value(&d.Email).
				Validate(validation.Required),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&d.Password).
				Validate(validation.Required),
		).Title("Create account"),
		huh.NewGroup(
			huh.NewInput().
				Title("Age").
				Value(&d.Age).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return nil
					}
					if _, err := strconv.Atoi(s); err != nil {
						return fmt.Errorf("age must be a whole number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Current weight (kg)").
				Value(&d.CurrentWeight).
				Validate(validation.Number),
			huh.NewInput().
				Title("Target weight (kg)").
				Value(&d.TargetWeight).
				Validate(validation.Number),
			huh.NewInput().
				Title("Height (cm)").
				Value(&d.Height).
				Validate(validation.Number),
			huh.NewSelect[string]().
				Title("Gender").
				Options(options("male", "female", "other")...).
				Value(&d.Gender),
			huh.NewConfirm().
				Title("Track menstrual cycle").
				Description("Only used when gender is female").
				Value(&d.TrackMenstrualCycle),
		).Title("About you"),
	).WithTheme(huh.ThemeDracula())
}

func newMealForm(d *models.MealDraft, action *mealAction) *huh.Form {
	types := make([]string, len(constants.MealTypes))
	for i, t := range constants.MealTypes {
		types[i] = string(t)
	}
	*action = mealSave
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Meal").
				Value(&d.Name),
			huh.NewSelect[string]().
				Title("Type").
				Options(options(types...)...).
				Value(&d.MealType),
			huh.NewInput().
				Title("Time (HH:MM)").
				Description("Blank for now").
				Value(&d.Time),
			huh.NewInput().
				Title("Calories").
				Value(&d.Calories).
				Validate(validation.Number),
			huh.NewInput().
				Title("Protein (g)").
				Value(&d.Protein).
				Validate(validation.Number),
			huh.NewInput().
				Title("Carbs (g)").
				Value(&d.Carbs).
				Validate(validation.Number),
			huh.NewInput().
				Title("Fat (g)").
				Value(&d.Fat).
				Validate(validation.Number),
			huh.NewInput().
				Title("Photo").
				Description("Optional image file used for AI estimation").
				Value(&d.ImagePath).
				Validate(imageFile),
			huh.NewSelect[mealAction]().
				Title("Then").
				Options(
					huh.NewOption("Save meal", mealSave),
					huh.NewOption("Estimate nutrition with AI", mealEstimate),
					huh.NewOption("Pick a photo", mealPhoto),
				).
				Value(action),
		).Title("Add meal"),
	).WithTheme(huh.ThemeDracula())
}

func newRecipeForm(d *models.RecipeDraft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Ingredients").
				Description("Comma separated. Leave blank to use a photo.").
				Value(&d.Ingredients),
			huh.NewInput().
				Title("Photo").
				Description("Optional image of your ingredients").
				Value(&d.ImagePath).
				Validate(imageFile),
		).Title("Generate recipes"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Meal type").
				Options(options("any", "breakfast", "lunch", "dinner", "snack")...).
				Value(&d.MealType),
			huh.NewSelect[string]().
				Title("Temperature").
				Options(options("any", "hot", "cold")...).
				Value(&d.Temperature),
			huh.NewSelect[string]().
				Title("Cooking time").
				Options(options("quick", "medium", "long")...).
				Value(&d.CookingTime),
			huh.NewSelect[string]().
				Title("Cuisine").
				Options(options("any", "italian", "asian", "mexican", "mediterranean", "indian", "american")...).
				Value(&d.CuisineStyle),
			huh.NewSelect[string]().
				Title("Dietary preference").
				Options(options("none", "vegetarian", "vegan", "keto", "gluten-free", "dairy-free")...).
				Value(&d.DietaryPref),
		).Title("Personalise"),
	).WithTheme(huh.ThemeDracula())
}

func newProfileForm(d *models.ProfileDraft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&d.Username),
			huh.NewInput().
				Title("Email").
				Value(&d.Email),
			huh.NewInput().
				Title("Age").
				Value(&d.Age).
				Validate(validation.Number),
			huh.NewInput().
				Title("Height (cm)").
				Value(&d.Height).
				Validate(validation.Number),
			huh.NewInput().
				Title("Current weight (kg)").
				Value(&d.CurrentWeight).
				Validate(validation.Number),
			huh.NewInput().
				Title("Target weight (kg)").
				Value(&d.TargetWeight).
				Validate(validation.Number),
			huh.NewSelect[string]().
				Title("Gender").
				Options(options("", "male", "female", "other")...).
				Value(&d.Gender),
			huh.NewSelect[string]().
				Title("Activity level").
				Options(options("sedentary", "light", "moderate", "active", "very_active")...).
				Value(&d.ActivityLevel),
		).Title("Edit profile"),
	).WithTheme(huh.ThemeDracula())
}

func newCycleForm(d *models.CycleLogDraft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Symptoms").
				Description("Comma separated").
				Value(&d.Symptoms),
			huh.NewInput().
				Title("Energy (1-10)").
				Value(&d.EnergyLevel).
				Validate(validation.Number),
			huh.NewSelect[string]().
				Title("Mood").
				Options(options("", "happy", "calm", "tired", "irritable", "anxious", "sad")...).
				Value(&d.Mood),
			huh.NewInput().
				Title("Cravings").
				Description("Comma separated").
				Value(&d.Cravings),
		).Title("Log symptoms"),
	).WithTheme(huh.ThemeDracula())
}
