package models

import "time"

// Meal is one entry of the daily log.
type Meal struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	MealType string  `json:"meal_type"`
	Time     string  `json:"time"`
	Date     string  `json:"date,omitempty"`
}

// HasNutrition reports whether any macro is filled in.
func (m Meal) HasNutrition() bool {
	return m.Calories != 0 || m.Protein != 0 || m.Carbs != 0 || m.Fat != 0
}

// DailyTotals sums calories and macros over meals.
func DailyTotals(meals []Meal) Meal {
	var total Meal
	for _, m := range meals {
		total.Calories += m.Calories
		total.Protein += m.Protein
		total.Carbs += m.Carbs
		total.Fat += m.Fat
	}
	return total
}

// HistoryEntry is one analysed meal from /meal-history.
type HistoryEntry struct {
	ID                     int64       `json:"id"`
	MealType               string      `json:"meal_type"`
	CreatedAt              string      `json:"created_at"`
	TotalCalories          float64     `json:"total_calories"`
	Protein                float64     `json:"protein"`
	Carbs                  float64     `json:"carbs"`
	Fat                    float64     `json:"fat"`
	HealthScore            float64     `json:"health_score"`
	EatingPersonalityType  string      `json:"eating_personality_type"`
	PredictedSatisfaction  float64     `json:"predicted_satisfaction,omitempty"`
	WeightImpactPrediction float64     `json:"weight_impact_prediction,omitempty"`
	FoodsDetected          FlexStrings `json:"foods_detected"`
	ImageURL               string      `json:"image_url,omitempty"`
	AIFeedback             string      `json:"ai_feedback,omitempty"`
	Suggestions            FlexStrings `json:"suggestions,omitempty"`
}

// Pagination is the page block returned alongside history.
type Pagination struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// SampleDailyMeals is shown for today's log when the backend is unreachable.
func SampleDailyMeals() []Meal {
	return []Meal{
		{ID: 1, Name: "Oatmeal with Berries", Calories: 320, Protein: 12, Carbs: 45, Fat: 8, MealType: "breakfast", Time: "08:30"},
		{ID: 2, Name: "Grilled Chicken Salad", Calories: 450, Protein: 35, Carbs: 20, Fat: 18, MealType: "lunch", Time: "13:00"},
	}
}

// SampleHistory is shown when meal history cannot be fetched.
func SampleHistory(now time.Time) []HistoryEntry {
	return []HistoryEntry{{
		ID:                    101,
		MealType:              "lunch",
		CreatedAt:             now.UTC().Format(time.RFC3339),
		TotalCalories:         450,
		Protein:               35,
		Carbs:                 40,
		Fat:                   10,
		EatingPersonalityType: "Health Optimizer",
		FoodsDetected: FlexStrings{
			"grilled chicken", "boiled eggs", "lettuce", "tomatoes",
			"corn", "edamame", "purple cabbage", "cucumbers",
		},
		ImageURL:    "https://picsum.photos/600/400?random=101",
		HealthScore: 7,
	}}
}
