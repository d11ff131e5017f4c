package models

// Metrics are derived body metrics.
type Metrics struct {
	BMI  float64 `json:"bmi"`
	BMR  float64 `json:"bmr"`
	TDEE float64 `json:"tdee"`
}

type DailyTargets struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type TodayProgress struct {
	CaloriesConsumed float64 `json:"calories_consumed"`
	ProteinConsumed  float64 `json:"protein_consumed"`
	CarbsConsumed    float64 `json:"carbs_consumed,omitempty"`
	FatConsumed      float64 `json:"fat_consumed,omitempty"`
	MealsLogged      int     `json:"meals_logged,omitempty"`
}

// NutritionPlan is the user's active plan with today's progress.
type NutritionPlan struct {
	PlanName         string             `json:"plan_name"`
	PlanType         string             `json:"plan_type"`
	DailyTargets     DailyTargets       `json:"daily_targets"`
	TodayProgress    TodayProgress      `json:"today_progress"`
	MealDistribution map[string]float64 `json:"meal_distribution,omitempty"`
	StartDate        string             `json:"start_date,omitempty"`
}

// CaloriePercent is today's consumed calories as a share of the target.
func (p NutritionPlan) CaloriePercent() float64 {
	if p.DailyTargets.Calories <= 0 {
		return 0
	}
	return p.TodayProgress.CaloriesConsumed / p.DailyTargets.Calories * 100
}

// Profile is the /user-profile payload.
type Profile struct {
	User          User           `json:"user"`
	Metrics       Metrics        `json:"metrics"`
	NutritionPlan *NutritionPlan `json:"nutrition_plan"`
}
