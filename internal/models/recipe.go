package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Nutrition holds per-serving or per-meal macros.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber,omitempty"`
}

// Ingredient is one recipe line. The backend sends either a plain string or
// an {item, amount, notes} object.
type Ingredient struct {
	Item   string `json:"item"`
	Amount string `json:"amount,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

func (i *Ingredient) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = Ingredient{Item: s}
		return nil
	}
	type plain Ingredient
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("ingredient: %w", err)
	}
	*i = Ingredient(p)
	return nil
}

func (i Ingredient) String() string {
	parts := []string{}
	if i.Amount != "" {
		parts = append(parts, i.Amount)
	}
	parts = append(parts, i.Item)
	out := strings.Join(parts, " ")
	if i.Notes != "" {
		out += " (" + i.Notes + ")"
	}
	return out
}

// Recipe is a saved recipe from the user's collection.
type Recipe struct {
	ID                   int64        `json:"id"`
	Title                string       `json:"title"`
	Description          string       `json:"description"`
	PrepTime             int          `json:"prep_time"`
	CookTime             int          `json:"cook_time"`
	Servings             int          `json:"servings"`
	CaloriesPerServing   float64      `json:"calories_per_serving,omitempty"`
	ProteinPerServing    float64      `json:"protein_per_serving,omitempty"`
	CarbsPerServing      float64      `json:"carbs_per_serving,omitempty"`
	FatPerServing        float64      `json:"fat_per_serving,omitempty"`
	Nutrition            *Nutrition   `json:"nutrition,omitempty"`
	Ingredients          []Ingredient `json:"ingredients,omitempty"`
	Instructions         FlexStrings  `json:"instructions,omitempty"`
	Category             string       `json:"category,omitempty"`
	Difficulty           string       `json:"difficulty,omitempty"`
	Tags                 FlexStrings  `json:"tags,omitempty"`
	ImageURL             string       `json:"image_url,omitempty"`
	MatchesDNA           bool         `json:"matches_dna,omitempty"`
	PersonalizationScore float64      `json:"personalization_score,omitempty"`
	CreatedAt            string       `json:"created_at,omitempty"`
}

// Calories returns per-serving calories from whichever field the endpoint filled.
func (r Recipe) Calories() float64 {
	if r.Nutrition != nil {
		return r.Nutrition.Calories
	}
	return r.CaloriesPerServing
}

// RecipeOption is one generated recipe draft. ImageURL is filled in by the
// image fan-out after generation returns.
type RecipeOption struct {
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	PrepTime     int          `json:"prep_time,omitempty"`
	CookTime     int          `json:"cook_time,omitempty"`
	Servings     int          `json:"servings,omitempty"`
	Ingredients  []Ingredient `json:"ingredients,omitempty"`
	Instructions FlexStrings  `json:"instructions,omitempty"`
	Nutrition    Nutrition    `json:"nutrition"`
	Tags         FlexStrings  `json:"tags,omitempty"`
	Difficulty   string       `json:"difficulty,omitempty"`
	ChefTips     FlexStrings  `json:"chef_tips,omitempty"`
	ImageURL     string       `json:"image_url,omitempty"`
}

// IngredientValidation is the backend's verdict on submitted ingredients.
type IngredientValidation struct {
	ValidItems   FlexStrings `json:"valid_items"`
	InvalidItems FlexStrings `json:"invalid_items"`
	Suggestions  FlexStrings `json:"suggestions"`
}
