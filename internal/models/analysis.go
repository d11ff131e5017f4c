package models

import "math"

// HealthAssessment is the health block of a food analysis.
type HealthAssessment struct {
	Score           float64 `json:"score"`
	ObesityRisk     string  `json:"obesity_risk"`
	MetabolicImpact string  `json:"metabolic_impact,omitempty"`
}

// Insights are the behavioural predictions attached to an analysis.
type Insights struct {
	EmotionalScore         float64 `json:"emotional_score,omitempty"`
	AddictionRisk          float64 `json:"addiction_risk,omitempty"`
	SatisfactionPrediction float64 `json:"satisfaction_prediction,omitempty"`
	SleepImpact            float64 `json:"sleep_impact,omitempty"`
	WeightImpact           float64 `json:"weight_impact,omitempty"`
	PersonalityType        string  `json:"personality_type,omitempty"`
	OptimalTime            string  `json:"optimal_time,omitempty"`
}

// Analysis is the result of analysing a food photo.
type Analysis struct {
	Title            string           `json:"title,omitempty"`
	FoodsDetected    FlexStrings      `json:"foods_detected"`
	Nutrition        Nutrition        `json:"nutrition"`
	Insights         *Insights        `json:"revolutionary_insights,omitempty"`
	HealthAssessment HealthAssessment `json:"health_assessment"`
	AIFeedback       string           `json:"ai_feedback,omitempty"`
	Suggestions      FlexStrings      `json:"suggestions,omitempty"`
}

// FallbackAnalysis is shown when analysis fails so the screen never hangs
// on an empty result.
func FallbackAnalysis() Analysis {
	return Analysis{
		FoodsDetected:    FlexStrings{"Analysis error"},
		HealthAssessment: HealthAssessment{Score: 0, ObesityRisk: "Unknown"},
		AIFeedback:       "Error processing analysis. Please try again.",
		Suggestions:      FlexStrings{"Check connection and try again"},
	}
}

// Estimation is an AI nutrition estimate for a meal description or photo.
type Estimation struct {
	Title      string  `json:"title"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fat        float64 `json:"fat"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Apply copies the estimate into a meal draft. The draft's name wins over
// the estimate's title.
func (e Estimation) Apply(d MealDraft) MealDraft {
	if d.Name == "" {
		d.Name = e.Title
	}
	d.Calories = formatNumber(math.Round(e.Calories))
	d.Protein = formatNumber(math.Round(e.Protein*10) / 10)
	d.Carbs = formatNumber(math.Round(e.Carbs*10) / 10)
	d.Fat = formatNumber(math.Round(e.Fat*10) / 10)
	return d
}
