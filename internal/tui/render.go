package tui

import (
	"fmt"
	"strings"

	"github.com/julianstephens/nutrisnap/internal/models"
	"github.com/julianstephens/nutrisnap/internal/state"
	"github.com/julianstephens/nutrisnap/internal/storage"
	"github.com/julianstephens/nutrisnap/internal/tui/components/detail"
)

func num(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%.0f", v)
}

func grams(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%.1f g", v)
}

func staleNote[T any](r state.Resource[T]) string {
	if r.Status == state.Fallback {
		return "Offline: showing sample data"
	}
	return ""
}

func dashboardSections(s state.State) []detail.Section {
	u := s.User()
	out := []detail.Section{{
		Heading: fmt.Sprintf("Hello, %s", u.Username),
		Rows: []detail.Row{
			detail.R("Level", u.Level),
			detail.R("XP", u.TotalXP),
			detail.R("Streak", fmt.Sprintf("%d days", u.StreakDays)),
		},
	}}

	if st := s.DashboardStats.Value; st != nil {
		sec := detail.Section{
			Heading: "This week",
			Rows: []detail.Row{
				detail.R("Calories", num(st.WeeklySummary.TotalCalories)),
				detail.R("Meals logged", st.WeeklySummary.MealsLogged),
				detail.R("Health score", fmt.Sprintf("%.1f", st.WeeklySummary.AvgHealthScore)),
				detail.R("Cycle phase", st.MenstrualPhase),
			},
			Note: staleNote(s.DashboardStats),
		}
		for _, b := range st.RecentAchievements {
			sec.Lines = append(sec.Lines, strings.TrimSpace(b.Icon+" "+b.Name))
		}
		out = append(out, sec)
	}

	if len(s.MealSuggestions.Value) > 0 {
		sec := detail.Section{Heading: "Suggestions", Note: staleNote(s.MealSuggestions)}
		for _, sg := range s.MealSuggestions.Value {
			line := fmt.Sprintf("%s (%.0f kcal): %s", sg.Title, sg.Calories, sg.Description)
			if sg.PhaseNote != "" {
				line += " " + sg.PhaseNote
			}
			sec.Lines = append(sec.Lines, line)
		}
		out = append(out, sec)
	}

	out = append(out, detail.Section{Note: "c: camera  u: analyse a photo file"})
	return out
}

func dailyTotals(s state.State) string {
	t := models.DailyTotals(s.DailyMeals.Value)
	line := fmt.Sprintf("%s  |  %.0f kcal  P %.1fg  C %.1fg  F %.1fg",
		s.SelectedDate, t.Calories, t.Protein, t.Carbs, t.Fat)
	if note := staleNote(s.DailyMeals); note != "" {
		line += "  " + warningStyle.Render(note)
	}
	return line
}

func recipeSections(r models.Recipe) []detail.Section {
	protein, carbs, fat := r.ProteinPerServing, r.CarbsPerServing, r.FatPerServing
	if r.Nutrition != nil {
		protein, carbs, fat = r.Nutrition.Protein, r.Nutrition.Carbs, r.Nutrition.Fat
	}
	head := detail.Section{
		Heading: r.Title,
		Rows: []detail.Row{
			detail.R("Calories/serving", num(r.Calories())),
			detail.R("Protein", grams(protein)),
			detail.R("Carbs", grams(carbs)),
			detail.R("Fat", grams(fat)),
			detail.R("Prep time", minutes(r.PrepTime)),
			detail.R("Cook time", minutes(r.CookTime)),
			detail.R("Servings", positive(r.Servings)),
			detail.R("Difficulty", r.Difficulty),
			detail.R("Tags", strings.Join(r.Tags, ", ")),
		},
		Note: r.Description,
	}

	ingredients := detail.Section{Heading: "Ingredients"}
	for _, in := range r.Ingredients {
		ingredients.Lines = append(ingredients.Lines, in.String())
	}
	steps := detail.Section{Heading: "Instructions"}
	for i, st := range r.Instructions {
		steps.Lines = append(steps.Lines, fmt.Sprintf("%d. %s", i+1, st))
	}
	return []detail.Section{head, ingredients, steps, {Note: "d: delete  esc: back"}}
}

func mealDetailSections(e models.HistoryEntry) []detail.Section {
	return []detail.Section{
		{
			Heading: strings.Join(e.FoodsDetected, ", "),
			Rows: []detail.Row{
				detail.R("Meal", e.MealType),
				detail.R("When", e.CreatedAt),
				detail.R("Calories", num(e.TotalCalories)),
				detail.R("Protein", grams(e.Protein)),
				detail.R("Carbs", grams(e.Carbs)),
				detail.R("Fat", grams(e.Fat)),
				detail.R("Health score", fmt.Sprintf("%.0f/10", e.HealthScore)),
				detail.R("Personality", e.EatingPersonalityType),
				detail.R("Image", e.ImageURL),
			},
			Note: e.AIFeedback,
		},
		{Heading: "Suggestions", Lines: e.Suggestions},
		{Note: "esc: back"},
	}
}

func analysisSections(s state.State) []detail.Section {
	a := s.Analysis.Value
	if a == nil {
		return nil
	}
	title := a.Title
	if title == "" {
		title = "Food analysis"
	}
	out := []detail.Section{{
		Heading: title,
		Rows: []detail.Row{
			detail.R("Foods", strings.Join(a.FoodsDetected, ", ")),
			detail.R("Calories", num(a.Nutrition.Calories)),
			detail.R("Protein", grams(a.Nutrition.Protein)),
			detail.R("Carbs", grams(a.Nutrition.Carbs)),
			detail.R("Fat", grams(a.Nutrition.Fat)),
			detail.R("Health score", fmt.Sprintf("%.0f/10", a.HealthAssessment.Score)),
			detail.R("Obesity risk", a.HealthAssessment.ObesityRisk),
		},
		Note: a.AIFeedback,
	}}
	if in := a.Insights; in != nil {
		out = append(out, detail.Section{
			Heading: "Insights",
			Rows: []detail.Row{
				detail.R("Personality", in.PersonalityType),
				detail.R("Best time", in.OptimalTime),
				detail.R("Satisfaction", num(in.SatisfactionPrediction)),
			},
		})
	}
	if len(a.Suggestions) > 0 {
		out = append(out, detail.Section{Heading: "Suggestions", Lines: a.Suggestions})
	}
	return out
}

func profileSections(s state.State) []detail.Section {
	u := s.User()
	out := []detail.Section{{
		Heading: "Profile",
		Rows: []detail.Row{
			detail.R("Username", u.Username),
			detail.R("Email", u.Email),
			detail.R("Age", positive(u.Age)),
			detail.R("Gender", u.Gender),
			detail.R("Height", unit(u.Height, "cm")),
			detail.R("Weight", unit(u.CurrentWeight, "kg")),
			detail.R("Target weight", unit(u.TargetWeight, "kg")),
			detail.R("Activity", u.ActivityLevel),
			detail.R("Photo", u.ProfilePhoto),
		},
		Note: staleNote(s.UserProfile),
	}}
	if p := s.UserProfile.Value; p != nil {
		out = append(out, detail.Section{
			Heading: "Metrics",
			Rows: []detail.Row{
				detail.R("BMI", fmt.Sprintf("%.1f", p.Metrics.BMI)),
				detail.R("BMR", num(p.Metrics.BMR)),
				detail.R("TDEE", num(p.Metrics.TDEE)),
			},
		})
	}
	if p := s.NutritionPlan.Value; p != nil {
		out = append(out, detail.Section{
			Heading: p.PlanName,
			Rows: []detail.Row{
				detail.R("Calories", fmt.Sprintf("%.0f / %.0f (%.0f%%)", p.TodayProgress.CaloriesConsumed, p.DailyTargets.Calories, p.CaloriePercent())),
				detail.R("Protein", fmt.Sprintf("%.0f / %.0f g", p.TodayProgress.ProteinConsumed, p.DailyTargets.Protein)),
			},
		})
	}
	return append(out, detail.Section{Note: "e: edit profile  u: upload photo"})
}

func cycleSections(s state.State) []detail.Section {
	c := s.CycleData.Value
	if c == nil {
		return nil
	}
	return []detail.Section{
		{
			Heading: "Cycle",
			Rows: []detail.Row{
				detail.R("Phase", c.CurrentPhase),
				detail.R("Day", fmt.Sprintf("%d of %d", c.CycleDay, c.CycleLength)),
				detail.R("Started", c.CycleStartDate),
				detail.R("Energy", positive(c.EnergyLevel)),
				detail.R("Mood", c.Mood),
				detail.R("Symptoms", strings.Join(c.Symptoms, ", ")),
				detail.R("Cravings", strings.Join(c.Cravings, ", ")),
			},
			Note: staleNote(s.CycleData),
		},
		{Heading: "Recommendations", Lines: c.Recommendations},
		{Note: "l: log today's symptoms"},
	}
}

func settingsSections(p storage.Preferences, apiURL string) []detail.Section {
	return []detail.Section{
		{
			Heading: "Settings",
			Rows: []detail.Row{
				detail.R("Dark mode", onOff(p.DarkMode)),
				detail.R("Email notifications", onOff(p.EmailNotifications)),
				detail.R("Server", apiURL),
			},
		},
		{Note: "D: toggle dark mode  N: toggle email notifications  T: show tips again  S: remember server  L: sign out"},
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func minutes(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%d min", n)
}

func positive(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprint(n)
}

func unit(v float64, u string) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%g %s", v, u)
}
