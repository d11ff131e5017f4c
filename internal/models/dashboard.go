package models

type UserStats struct {
	Level         string `json:"level"`
	TotalXP       int    `json:"total_xp"`
	StreakDays    int    `json:"streak_days"`
	TotalAnalyses int    `json:"total_analyses"`
}

type WeeklySummary struct {
	TotalCalories  float64 `json:"total_calories"`
	AvgHealthScore float64 `json:"avg_health_score"`
	MealsLogged    int     `json:"meals_logged"`
	PlanProgress   float64 `json:"plan_progress"`
}

// DashboardStats is the /dashboard-stats payload.
type DashboardStats struct {
	UserStats          UserStats     `json:"user_stats"`
	WeeklySummary      WeeklySummary `json:"weekly_summary"`
	NutritionBreakdown Nutrition     `json:"nutrition_breakdown"`
	RecentAchievements []Badge       `json:"recent_achievements"`
	MenstrualPhase     string        `json:"menstrual_phase,omitempty"`
}

// Suggestion is one meal suggestion.
type Suggestion struct {
	MealType    string  `json:"meal_type,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Reason      string  `json:"reason"`
	PhaseNote   string  `json:"phase_note,omitempty"`
}
