package tui

import (
	"strings"
	"testing"

	"github.com/julianstephens/nutrisnap/internal/models"
	"github.com/julianstephens/nutrisnap/internal/router"
	"github.com/julianstephens/nutrisnap/internal/state"
	"github.com/julianstephens/nutrisnap/internal/storage"
	"github.com/julianstephens/nutrisnap/internal/tui/components/detail"
)

func TestFormatHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"num zero", num(0), ""},
		{"num rounds", num(412.6), "413"},
		{"grams", grams(12.3), "12.3 g"},
		{"grams zero", grams(0), ""},
		{"minutes", minutes(25), "25 min"},
		{"minutes negative", minutes(-1), ""},
		{"positive", positive(3), "3"},
		{"positive zero", positive(0), ""},
		{"unit", unit(72.5, "kg"), "72.5 kg"},
		{"unit zero", unit(0, "cm"), ""},
		{"on", onOff(true), "on"},
		{"off", onOff(false), "off"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestDailyTotals(t *testing.T) {
	s := state.Initial("2024-03-01")
	s.DailyMeals = state.Resource[[]models.Meal]{
		Value: []models.Meal{
			{Name: "Oats", Calories: 300, Protein: 10, Carbs: 50, Fat: 5},
			{Name: "Salad", Calories: 200, Protein: 5.5, Carbs: 10, Fat: 12},
		},
		Status: state.Loaded,
	}

	got := dailyTotals(s)
	for _, want := range []string{"2024-03-01", "500 kcal", "P 15.5g", "C 60.0g", "F 17.0g"} {
		if !strings.Contains(got, want) {
			t.Errorf("dailyTotals() = %q, missing %q", got, want)
		}
	}
	if strings.Contains(got, "Offline") {
		t.Errorf("loaded meals should not carry the offline note: %q", got)
	}

	s.DailyMeals.Status = state.Fallback
	if got := dailyTotals(s); !strings.Contains(got, "Offline") {
		t.Errorf("fallback meals should carry the offline note: %q", got)
	}
}

func TestRecipeSectionsPreferNutritionBlock(t *testing.T) {
	r := models.Recipe{
		Title:             "Lentil soup",
		ProteinPerServing: 1,
		Nutrition:         &models.Nutrition{Protein: 18, Carbs: 40, Fat: 6},
		Instructions:      []string{"Rinse", "Simmer"},
	}
	out := detail.Render(recipeSections(r))

	for _, want := range []string{"Lentil soup", "18.0 g", "1. Rinse", "2. Simmer"} {
		if !strings.Contains(out, want) {
			t.Errorf("recipe page missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "1.0 g") {
		t.Errorf("per-serving protein should be replaced by the nutrition block:\n%s", out)
	}
}

func TestAnalysisSectionsEmptyWithoutResult(t *testing.T) {
	if got := analysisSections(state.Initial("2024-03-01")); got != nil {
		t.Errorf("analysisSections() = %v, want nil", got)
	}
}

func TestSettingsSections(t *testing.T) {
	p := storage.DefaultPreferences()
	out := detail.Render(settingsSections(p, "http://example.test/api"))
	for _, want := range []string{"http://example.test/api", "on", "off"} {
		if !strings.Contains(out, want) {
			t.Errorf("settings page missing %q:\n%s", want, out)
		}
	}
}

func TestDetailRenderSkipsEmptyRows(t *testing.T) {
	out := detail.Render([]detail.Section{{
		Heading: "Profile",
		Rows:    []detail.Row{detail.R("Name", "Ada"), detail.R("Photo", "")},
		Lines:   []string{"first"},
		Note:    "tip",
	}})
	if strings.Contains(out, "Photo") {
		t.Errorf("empty row rendered:\n%s", out)
	}
	for _, want := range []string{"Profile", "Ada", "• first", "tip"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestNextTab(t *testing.T) {
	s := state.Initial("2024-03-01")
	s.Session = &models.Session{User: models.User{Username: "ada"}}

	tests := []struct {
		name string
		view router.View
		step int
		want router.ID
	}{
		{"forward", router.Screen(router.Dashboard), 1, router.DailyLog},
		{"wraps backward", router.Screen(router.Dashboard), -1, router.Settings},
		{"wraps forward", router.Screen(router.Settings), 1, router.Dashboard},
		{"detail uses parent", router.MealDetails{}, 1, router.UserProfile},
		{"off tab forward", router.Screen(router.FoodAnalysis), 1, router.DailyLog},
		{"off tab backward", router.Screen(router.FoodAnalysis), -1, router.Dashboard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.View = tt.view
			if got := nextTab(s, tt.step).ID(); got != tt.want {
				t.Errorf("nextTab() = %s, want %s", got, tt.want)
			}
		})
	}
}
