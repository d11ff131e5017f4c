package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/media"
	"github.com/julianstephens/nutrisnap/internal/models"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
}

func (r *AuthResponse) validate() error {
	if r.User.Username == "" {
		return errors.New("user.username missing")
	}
	return nil
}

type HealthResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Version   string   `json:"version"`
	Timestamp string   `json:"timestamp"`
	Features  []string `json:"features"`
}

func (r *HealthResponse) validate() error {
	if r.Status == "" {
		return errors.New("status missing")
	}
	return nil
}

type StatsResponse struct {
	User                models.User                `json:"user"`
	AdvancedStats       models.AdvancedStats       `json:"advanced_stats"`
	RecentBadges        []models.Badge             `json:"recent_badges"`
	AchievementProgress models.AchievementProgress `json:"achievement_progress"`
}

func (r *StatsResponse) validate() error {
	if r.User.Username == "" {
		return errors.New("user.username missing")
	}
	return nil
}

// Stats converts the response into the session stats block
func (r *StatsResponse) Stats() *models.Stats {
	return &models.Stats{
		Advanced:     r.AdvancedStats,
		Progress:     r.AchievementProgress,
		RecentBadges: r.RecentBadges,
	}
}

type mealsResponse struct {
	Meals []models.Meal `json:"meals"`
}

func (r *mealsResponse) validate() error {
	if r.Meals == nil {
		return errors.New("meals missing")
	}
	return nil
}

type saveMealResponse struct {
	Message string       `json:"message"`
	Meal    *models.Meal `json:"meal"`
}

type HistoryResponse struct {
	History    []models.HistoryEntry `json:"history"`
	Pagination models.Pagination     `json:"pagination"`
}

func (r *HistoryResponse) validate() error {
	if r.History == nil {
		return errors.New("history missing")
	}
	return nil
}

type recipesResponse struct {
	Recipes    []models.Recipe `json:"recipes"`
	TotalCount int             `json:"total_count"`
}

func (r *recipesResponse) validate() error {
	if r.Recipes == nil {
		return errors.New("recipes missing")
	}
	return nil
}

type recipeResponse struct {
	Recipe *models.Recipe `json:"recipe"`
}

func (r *recipeResponse) validate() error {
	if r.Recipe == nil || r.Recipe.ID == 0 {
		return errors.New("recipe missing")
	}
	return nil
}

type saveRecipeResponse struct {
	RecipeID int64 `json:"recipe_id"`
}

func (r *saveRecipeResponse) validate() error {
	if r.RecipeID == 0 {
		return errors.New("recipe_id missing")
	}
	return nil
}

type GenerationResponse struct {
	DetectedFromImage      models.FlexStrings          `json:"detected_from_image"`
	ValidationResult       models.IngredientValidation `json:"validation_result"`
	RecipeOptions          []models.RecipeOption       `json:"recipe_options"`
	PersonalizationApplied json.RawMessage             `json:"personalization_applied,omitempty"`
}

func (r *GenerationResponse) validate() error {
	if r.RecipeOptions == nil {
		return errors.New("recipe_options missing")
	}
	for i, opt := range r.RecipeOptions {
		if opt.Title == "" {
			return fmt.Errorf("recipe_options[%d].title missing", i)
		}
	}
	return nil
}

type imageResponse struct {
	URL string `json:"url"`
}

func (r *imageResponse) validate() error {
	if r.URL == "" {
		return errors.New("url missing")
	}
	return nil
}

type AnalysisResponse struct {
	Analysis    *models.Analysis `json:"analysis"`
	XPGained    int              `json:"xp_gained"`
	NewTotalXP  int              `json:"new_total_xp"`
	NewLevel    string           `json:"new_level"`
	StreakDays  *int             `json:"streak_days"`
	NewBadges   []models.Badge   `json:"new_badges"`
	DNAUnlocked bool             `json:"dna_unlocked"`
}

func (r *AnalysisResponse) validate() error {
	if r.Analysis == nil {
		return errors.New("analysis missing")
	}
	return nil
}

type estimationResponse struct {
	Estimation *models.Estimation `json:"estimation"`
	Analysis   *models.Analysis   `json:"analysis"`
}

func (r *estimationResponse) validate() error {
	if r.Estimation == nil && r.Analysis == nil {
		return errors.New("estimation missing")
	}
	return nil
}

func (r *estimationResponse) result() models.Estimation {
	if r.Estimation != nil {
		return *r.Estimation
	}
	return models.Estimation{
		Title:    r.Analysis.Title,
		Calories: r.Analysis.Nutrition.Calories,
		Protein:  r.Analysis.Nutrition.Protein,
		Carbs:    r.Analysis.Nutrition.Carbs,
		Fat:      r.Analysis.Nutrition.Fat,
	}
}

type profileResponse models.Profile

func (r *profileResponse) validate() error {
	if r.User.Username == "" {
		return errors.New("user.username missing")
	}
	return nil
}

type nutritionPlanResponse struct {
	NutritionPlan *models.NutritionPlan `json:"nutrition_plan"`
}

type photoResponse struct {
	PhotoURL string `json:"photo_url"`
}

func (r *photoResponse) validate() error {
	if r.PhotoURL == "" {
		return errors.New("photo_url missing")
	}
	return nil
}

type cycleResponse struct {
	CycleData *models.CycleData `json:"cycle_data"`
}

func (r *cycleResponse) validate() error {
	if r.CycleData == nil {
		return errors.New("cycle_data missing")
	}
	return nil
}

type CycleLogResponse struct {
	Message      string `json:"message"`
	CurrentPhase string `json:"current_phase"`
}

type SuggestionsResponse struct {
	Suggestions        []models.Suggestion `json:"suggestions"`
	BasedOnPersonality string              `json:"based_on_personality"`
	MenstrualPhase     string              `json:"menstrual_phase"`
}

func (r *SuggestionsResponse) validate() error {
	if r.Suggestions == nil {
		return errors.New("suggestions missing")
	}
	return nil
}

type messageResponse struct {
	Message string `json:"message"`
}

// Health probes backend liveness
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, "health", "health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.sendJSON(ctx, "login", http.MethodPost, "login", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.sendJSON(ctx, "register", http.MethodPost, "register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.sendJSON(ctx, "logout", http.MethodPost, "logout", nil, &messageResponse{})
}

// AdvancedStats doubles as the "who am I" probe at startup
func (c *Client) AdvancedStats(ctx context.Context) (*StatsResponse, error) {
	var out StatsResponse
	if err := c.getJSON(ctx, "stats", "user/stats-advanced", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := c.getJSON(ctx, "dashboard stats", "dashboard-stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MealSuggestions(ctx context.Context) (*SuggestionsResponse, error) {
	var out SuggestionsResponse
	if err := c.getJSON(ctx, "meal suggestions", "meal-suggestions", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DailyMeals lists the log for an ISO date
func (c *Client) DailyMeals(ctx context.Context, date string) ([]models.Meal, error) {
	var out mealsResponse
	if err := c.getJSON(ctx, "daily meals", "daily-meals", url.Values{"date": {date}}, &out); err != nil {
		return nil, err
	}
	return out.Meals, nil
}

// AddDailyMeal saves a meal and returns the stored record when the backend
// echoes it back.
func (c *Client) AddDailyMeal(ctx context.Context, meal models.Meal) (*models.Meal, error) {
	payload := map[string]any{
		"name":      meal.Name,
		"date":      meal.Date,
		"calories":  meal.Calories,
		"protein":   meal.Protein,
		"carbs":     meal.Carbs,
		"fat":       meal.Fat,
		"meal_type": meal.MealType,
		"time":      meal.Time,
	}
	var out saveMealResponse
	if err := c.sendJSON(ctx, "save meal", http.MethodPost, "daily-meals", payload, &out); err != nil {
		return nil, err
	}
	return out.Meal, nil
}

func (c *Client) DeleteDailyMeal(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, "delete meal", http.MethodDelete, "daily-meals/"+strconv.FormatInt(id, 10), nil, &messageResponse{})
}

func (c *Client) MealHistory(ctx context.Context, page, perPage int) (*HistoryResponse, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	var out HistoryResponse
	if err := c.getJSON(ctx, "meal history", "meal-history", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteHistoryEntry(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, "delete history entry", http.MethodDelete, "meal-history/"+strconv.FormatInt(id, 10), nil, &messageResponse{})
}

func (c *Client) Recipes(ctx context.Context) ([]models.Recipe, error) {
	var out recipesResponse
	if err := c.getJSON(ctx, "recipes", "recipes", nil, &out); err != nil {
		return nil, err
	}
	return out.Recipes, nil
}

func (c *Client) Recipe(ctx context.Context, id int64) (*models.Recipe, error) {
	var out recipeResponse
	if err := c.getJSON(ctx, "recipe", "recipes/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return out.Recipe, nil
}

func (c *Client) DeleteRecipe(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, "delete recipe", http.MethodDelete, "recipes/"+strconv.FormatInt(id, 10), nil, &messageResponse{})
}

// SaveRecipe stores a generated option in the user's collection
func (c *Client) SaveRecipe(ctx context.Context, opt models.RecipeOption) (int64, error) {
	var out saveRecipeResponse
	if err := c.sendJSON(ctx, "save recipe", http.MethodPost, "recipes", opt, &out); err != nil {
		return 0, err
	}
	return out.RecipeID, nil
}

// GenerateRecipes submits ingredients as JSON, or as multipart with the
// request in a "payload" field when a photo is attached.
func (c *Client) GenerateRecipes(ctx context.Context, req models.RecipeRequest, image *media.Blob) (*GenerationResponse, error) {
	var out GenerationResponse
	if image == nil {
		if err := c.sendJSON(ctx, "recipe generation", http.MethodPost, "recipe-generation", req, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("recipe generation: encoding payload: %w", err)
	}
	fields := []formField{{name: "payload", value: string(payload)}}
	if err := c.sendMultipart(ctx, "recipe generation", "recipe-generation", fields, "image", *image, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecipeImage asks the backend for an illustrative image URL
func (c *Client) RecipeImage(ctx context.Context, prompt string) (string, error) {
	var out imageResponse
	if err := c.sendJSON(ctx, "recipe image", http.MethodPost, "recipe-image-generate", map[string]string{"prompt": prompt}, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// AnalyzeFood uploads a meal photo for full analysis
func (c *Client) AnalyzeFood(ctx context.Context, image media.Blob, mealType string) (*AnalysisResponse, error) {
	if mealType == "" {
		mealType = constants.AnalysisMealType
	}
	var out AnalysisResponse
	fields := []formField{{name: "meal_type", value: mealType}}
	if err := c.sendMultipart(ctx, "food analysis", "analyze-revolutionary", fields, "image", image, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EstimateFromImage estimates nutrition for a meal photo
func (c *Client) EstimateFromImage(ctx context.Context, image media.Blob) (models.Estimation, error) {
	var out estimationResponse
	fields := []formField{{name: "action", value: constants.EstimateAction}}
	if err := c.sendMultipart(ctx, "nutrition estimate", "analyze-revolutionary", fields, "image", image, &out); err != nil {
		return models.Estimation{}, err
	}
	return out.result(), nil
}

// EstimateFromText estimates nutrition for a meal description
func (c *Client) EstimateFromText(ctx context.Context, description string) (models.Estimation, error) {
	payload := map[string]string{"meal_description": description, "action": constants.EstimateAction}
	var out estimationResponse
	if err := c.sendJSON(ctx, "nutrition estimate", http.MethodPost, "ai-meal-estimation", payload, &out); err != nil {
		return models.Estimation{}, err
	}
	return out.result(), nil
}

func (c *Client) UserProfile(ctx context.Context) (*models.Profile, error) {
	var out profileResponse
	if err := c.getJSON(ctx, "user profile", "user-profile", nil, &out); err != nil {
		return nil, err
	}
	p := models.Profile(out)
	return &p, nil
}

func (c *Client) UpdateUserProfile(ctx context.Context, up models.ProfileUpdate) error {
	return c.sendJSON(ctx, "update profile", http.MethodPut, "user-profile", up, &messageResponse{})
}

func (c *Client) UploadProfilePhoto(ctx context.Context, image media.Blob) (string, error) {
	var out photoResponse
	if err := c.sendMultipart(ctx, "profile photo", "profile-photo", nil, "photo", image, &out); err != nil {
		return "", err
	}
	return out.PhotoURL, nil
}

func (c *Client) NutritionPlan(ctx context.Context) (*models.NutritionPlan, error) {
	var out nutritionPlanResponse
	if err := c.getJSON(ctx, "nutrition plan", "nutrition-plan", nil, &out); err != nil {
		return nil, err
	}
	return out.NutritionPlan, nil
}

func (c *Client) MenstrualCycle(ctx context.Context) (*models.CycleData, error) {
	var out cycleResponse
	if err := c.getJSON(ctx, "cycle data", "menstrual-cycle", nil, &out); err != nil {
		return nil, err
	}
	return out.CycleData, nil
}

func (c *Client) LogMenstrualCycle(ctx context.Context, entry models.CycleLog) (*CycleLogResponse, error) {
	var out CycleLogResponse
	if err := c.sendJSON(ctx, "cycle log", http.MethodPost, "menstrual-cycle/log", entry, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
