package datasync

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/nutrisnap/internal/constants"
	apperr "github.com/julianstephens/nutrisnap/internal/errors"
	"github.com/julianstephens/nutrisnap/internal/logger"
	"github.com/julianstephens/nutrisnap/internal/media"
	"github.com/julianstephens/nutrisnap/internal/models"
	"github.com/julianstephens/nutrisnap/internal/router"
	"github.com/julianstephens/nutrisnap/internal/state"
)

// Names of the guarded write operations
const (
	OpSaveMeal       = "save-meal"
	OpEstimateMeal   = "estimate-meal"
	OpGenerateRecipe = "generate-recipe"
	OpSaveRecipe     = "save-recipe"
	OpDeleteRecipe   = "delete-recipe"
	OpRecipeDetails  = "recipe-details"
	OpDeleteHistory  = "delete-history"
	OpAnalyzeFood    = "analyze-food"
	OpUpdateProfile  = "update-profile"
	OpUploadPhoto    = "upload-photo"
	OpLogCycle       = "log-cycle"
)

func opFor(op string, id int64) string {
	return op + ":" + strconv.FormatInt(id, 10)
}

// SaveMeal validates the draft and appends the meal to the selected day.
// The meal is kept locally even when the backend rejects or misses it.
func (y *Synchronizer) SaveMeal(ctx context.Context, d models.MealDraft) (models.Meal, error) {
	done, err := y.guard(OpSaveMeal)
	if err != nil {
		return models.Meal{}, err
	}
	defer done()

	snap := y.store.Snapshot()
	owner := snap.Owner()
	meal, result := y.validate.Meal(d, snap.SelectedDate)
	if err := result.Err(); err != nil {
		y.notify.Error(apperr.Message(err))
		return models.Meal{}, err
	}

	saved, err := y.client.AddDailyMeal(ctx, meal)
	if !y.owns(owner) {
		return models.Meal{}, ErrSessionEnded
	}
	switch {
	case err != nil:
		logger.Warn("Meal not saved remotely, keeping local copy", "error", err)
		y.store.Dispatch(state.MealAppended{Owner: owner, Meal: meal})
		y.notify.Success(constants.MsgMealSavedLocally)
	default:
		if saved != nil && saved.ID != 0 {
			if saved.Date == "" {
				saved.Date = meal.Date
			}
			meal = *saved
		}
		y.store.Dispatch(state.MealAppended{Owner: owner, Meal: meal})
		y.notify.Success(constants.MsgMealSaved)
	}
	y.store.Dispatch(state.DraftReset{Form: state.FormMeal})
	return meal, nil
}

// DeleteMeal removes a meal locally at once and tells the backend in the
// background. A remote failure only raises a banner.
func (y *Synchronizer) DeleteMeal(ctx context.Context, id int64) error {
	done, err := y.guard(opFor("delete-meal", id))
	if err != nil {
		return err
	}

	owner := y.store.Snapshot().Owner()
	y.store.Dispatch(state.MealRemoved{Owner: owner, ID: id})
	y.notify.Success(constants.MsgMealRemoved)

	ctx = context.WithoutCancel(ctx)
	y.bg.Add(1)
	go func() {
		defer y.bg.Done()
		defer done()
		if err := y.client.DeleteDailyMeal(ctx, id); err != nil {
			logger.Warn("Remote meal delete failed", "id", id, "error", err)
			if y.owns(owner) {
				y.notify.Error(constants.MsgMealRemoteDelete)
			}
		}
	}()
	return nil
}

// DeleteHistoryEntry removes an analysed meal from history
func (y *Synchronizer) DeleteHistoryEntry(ctx context.Context, id int64) error {
	done, err := y.guard(opFor(OpDeleteHistory, id))
	if err != nil {
		return err
	}
	defer done()

	owner := y.store.Snapshot().Owner()
	if err := y.client.DeleteHistoryEntry(ctx, id); err != nil {
		if y.owns(owner) {
			y.notify.Error(apperr.Message(err))
		}
		return err
	}
	if !y.owns(owner) {
		return ErrSessionEnded
	}
	y.store.Dispatch(state.HistoryEntryRemoved{Owner: owner, ID: id})
	if md, ok := y.store.Snapshot().View.(router.MealDetails); ok && md.Entry.ID == id {
		y.store.Dispatch(state.Navigated{View: router.Screen(router.MealHistory)})
	}
	y.notify.Success(constants.MsgHistoryRemoved)
	return nil
}

// OpenMealDetails shows one history entry
func (y *Synchronizer) OpenMealDetails(entry *models.HistoryEntry) error {
	v, err := router.NewMealDetails(entry)
	if err != nil {
		return err
	}
	y.store.Dispatch(state.Navigated{View: v})
	return nil
}

// RecipeDetails fetches a saved recipe and opens it
func (y *Synchronizer) RecipeDetails(ctx context.Context, id int64) (*models.Recipe, error) {
	done, err := y.guard(OpRecipeDetails)
	if err != nil {
		return nil, err
	}
	defer done()

	owner := y.store.Snapshot().Owner()
	r, err := y.client.Recipe(ctx, id)
	if !y.owns(owner) {
		return nil, ErrSessionEnded
	}
	if err != nil {
		logger.Warn("Recipe fetch failed", "id", id, "error", err)
		y.notify.Error(constants.MsgRecipeLoadError)
		return nil, err
	}
	v, err := router.NewRecipeDetails(r)
	if err != nil {
		y.notify.Error(constants.MsgRecipeLoadError)
		return nil, err
	}
	y.store.Dispatch(state.Navigated{View: v})
	return r, nil
}

// DeleteRecipe removes a saved recipe and reloads the collection
func (y *Synchronizer) DeleteRecipe(ctx context.Context, id int64) error {
	done, err := y.guard(opFor(OpDeleteRecipe, id))
	if err != nil {
		return err
	}
	defer done()

	owner := y.store.Snapshot().Owner()
	err = y.client.DeleteRecipe(ctx, id)
	if !y.owns(owner) {
		return ErrSessionEnded
	}
	if err != nil {
		logger.Warn("Recipe delete failed", "id", id, "error", err)
		y.notify.Error(constants.MsgRecipeDeleteErr)
		return err
	}
	y.store.Dispatch(state.RecipeRemoved{Owner: owner, ID: id})
	y.notify.Success(constants.MsgRecipeDeleted)
	y.reload(ctx, owner, SlotUserRecipes)
	return nil
}

// GenerateRecipe asks the backend for recipe options, then fetches one
// image per option concurrently. Each image lands on its own option as soon
// as it arrives; a failed image leaves only that option without one.
func (y *Synchronizer) GenerateRecipe(ctx context.Context, d models.RecipeDraft, image *media.Blob) ([]models.RecipeOption, error) {
	done, err := y.guard(OpGenerateRecipe)
	if err != nil {
		return nil, err
	}
	defer done()

	if image == nil {
		if err := y.validate.Recipe(d).Err(); err != nil {
			y.notify.Error(apperr.Message(err))
			return nil, err
		}
		if d.ImagePath != "" {
			blob, err := media.FromFile(d.ImagePath)
			if err != nil {
				y.notify.Error(fmt.Sprintf(constants.MsgRecipeError, err.Error()))
				return nil, err
			}
			image = &blob
		}
	}

	owner := y.store.Snapshot().Owner()
	res, err := y.client.GenerateRecipes(ctx, d.Request(), image)
	if !y.owns(owner) {
		return nil, ErrSessionEnded
	}
	if err != nil {
		logger.Warn("Recipe generation failed", "error", err)
		y.notify.Error(fmt.Sprintf(constants.MsgRecipeError, apperr.Message(err)))
		return nil, err
	}

	if inv := res.ValidationResult.InvalidItems; len(inv) > 0 {
		y.notify.Error(fmt.Sprintf(constants.MsgInvalidItems,
			strings.Join(inv, ", "), strings.Join(res.ValidationResult.Suggestions, ", ")))
	}

	verdict := res.ValidationResult
	snap := y.store.Dispatch(state.RecipeOptionsReceived{
		Owner:      owner,
		Options:    res.RecipeOptions,
		Validation: &verdict,
		Detected:   res.DetectedFromImage,
		At:         y.now(),
	})
	gen := snap.RecipeOptions.Value.Gen

	var g errgroup.Group
	for i, opt := range res.RecipeOptions {
		g.Go(func() error {
			url, err := y.client.RecipeImage(ctx, opt.Title)
			if err != nil {
				logger.Warn("Recipe image failed", "title", opt.Title, "error", err)
				return nil
			}
			y.store.Dispatch(state.RecipeOptionImage{Owner: owner, Gen: gen, Index: i, URL: url})
			return nil
		})
	}
	_ = g.Wait()

	if !y.owns(owner) {
		return nil, ErrSessionEnded
	}
	y.reload(ctx, owner, SlotUserRecipes)
	y.store.Dispatch(state.DraftReset{Form: state.FormRecipe})
	y.notify.Success(constants.MsgRecipeGenerated)
	return y.store.Snapshot().RecipeOptions.Value.Options, nil
}

// SaveRecipeOption stores one generated option in the user's collection
func (y *Synchronizer) SaveRecipeOption(ctx context.Context, index int) (int64, error) {
	done, err := y.guard(OpSaveRecipe)
	if err != nil {
		return 0, err
	}
	defer done()

	snap := y.store.Snapshot()
	owner := snap.Owner()
	opts := snap.RecipeOptions.Value.Options
	if index < 0 || index >= len(opts) {
		return 0, fmt.Errorf("no recipe option %d", index)
	}
	id, err := y.client.SaveRecipe(ctx, opts[index])
	if !y.owns(owner) {
		return 0, ErrSessionEnded
	}
	if err != nil {
		y.notify.Error(apperr.Message(err))
		return 0, err
	}
	y.notify.Success(constants.MsgRecipeSaved)
	y.reload(ctx, owner, SlotUserRecipes)
	return id, nil
}

// EstimateMeal fills the meal draft's nutrition from an AI estimate of the
// draft's photo or, without one, its name.
func (y *Synchronizer) EstimateMeal(ctx context.Context, d models.MealDraft, image *media.Blob) (models.MealDraft, error) {
	done, err := y.guard(OpEstimateMeal)
	if err != nil {
		return d, err
	}
	defer done()

	if image == nil {
		if err := y.validate.Estimate(d).Err(); err != nil {
			y.notify.Error(apperr.Message(err))
			return d, err
		}
		if d.ImagePath != "" {
			blob, err := media.FromFile(d.ImagePath)
			if err != nil {
				y.notify.Error(fmt.Sprintf(constants.MsgEstimateFailed, err.Error()))
				return d, err
			}
			image = &blob
		}
	}

	owner := y.store.Snapshot().Owner()
	var est models.Estimation
	if image != nil {
		est, err = y.client.EstimateFromImage(ctx, *image)
	} else {
		est, err = y.client.EstimateFromText(ctx, strings.TrimSpace(d.Name))
	}
	if !y.owns(owner) {
		return d, ErrSessionEnded
	}
	if err != nil {
		logger.Warn("Estimation failed", "error", err)
		y.notify.Error(fmt.Sprintf(constants.MsgEstimateFailed, apperr.Message(err)))
		return d, err
	}

	d = est.Apply(d)
	y.store.Dispatch(state.MealDraftSet{Draft: d})
	y.notify.Success(constants.MsgEstimateDone)
	return d, nil
}

// AnalyzeFood opens the analysis screen and analyses a photo. On failure
// the screen shows the fallback analysis.
func (y *Synchronizer) AnalyzeFood(ctx context.Context, image media.Blob) (models.Analysis, error) {
	done, err := y.guard(OpAnalyzeFood)
	if err != nil {
		return models.Analysis{}, err
	}
	defer done()

	owner := y.store.Snapshot().Owner()
	y.store.Dispatch(state.Navigated{View: router.Screen(router.FoodAnalysis)})
	y.store.Dispatch(state.AnalysisStarted{Owner: owner})

	res, err := y.client.AnalyzeFood(ctx, image, constants.AnalysisMealType)
	if !y.owns(owner) {
		return models.Analysis{}, ErrSessionEnded
	}
	if err != nil {
		logger.Warn("Food analysis failed", "error", err)
		fb := models.FallbackAnalysis()
		y.store.Dispatch(state.AnalysisReceived{Owner: owner, Analysis: fb, Fallback: true, At: y.now()})
		y.notify.Error(fmt.Sprintf(constants.MsgAnalysisFailed, apperr.Message(err)))
		return fb, err
	}

	y.store.Dispatch(state.AnalysisReceived{Owner: owner, Analysis: *res.Analysis, At: y.now()})
	u := models.User{TotalXP: res.NewTotalXP, Level: res.NewLevel}
	if res.StreakDays != nil {
		u = u.WithStreak(*res.StreakDays)
	}
	y.store.Dispatch(state.UserUpdated{Owner: owner, User: u})
	y.notify.Success(fmt.Sprintf(constants.MsgAnalysisComplete, res.XPGained))
	return *res.Analysis, nil
}

// UpdateProfile saves the profile form and reloads profile and plan
func (y *Synchronizer) UpdateProfile(ctx context.Context, d models.ProfileDraft) error {
	done, err := y.guard(OpUpdateProfile)
	if err != nil {
		return err
	}
	defer done()

	up, result := y.validate.Profile(d)
	if err := result.Err(); err != nil {
		y.notify.Error(apperr.Message(err))
		return err
	}
	owner := y.store.Snapshot().Owner()
	err = y.client.UpdateUserProfile(ctx, up)
	if !y.owns(owner) {
		return ErrSessionEnded
	}
	if err != nil {
		y.notify.Error(apperr.Message(err))
		return err
	}
	y.store.Dispatch(state.UserUpdated{Owner: owner, User: models.User{
		Username:      up.Username,
		Email:         up.Email,
		Age:           up.Age,
		CurrentWeight: up.CurrentWeight,
		TargetWeight:  up.TargetWeight,
		Height:        up.Height,
		Gender:        up.Gender,
		ActivityLevel: up.ActivityLevel,
	}})
	y.notify.Success(constants.MsgProfileUpdated)
	y.reload(ctx, owner, SlotUserProfile, SlotNutritionPlan)
	return nil
}

// UploadProfilePhoto replaces the user's avatar
func (y *Synchronizer) UploadProfilePhoto(ctx context.Context, image media.Blob) (string, error) {
	done, err := y.guard(OpUploadPhoto)
	if err != nil {
		return "", err
	}
	defer done()

	owner := y.store.Snapshot().Owner()
	url, err := y.client.UploadProfilePhoto(ctx, image)
	if !y.owns(owner) {
		return "", ErrSessionEnded
	}
	if err != nil {
		y.notify.Error(apperr.Message(err))
		return "", err
	}
	y.store.Dispatch(state.UserUpdated{Owner: owner, User: models.User{ProfilePhoto: url}})
	y.notify.Success(constants.MsgPhotoUpdated)
	return url, nil
}

// LogCycle records today's symptoms and reloads cycle data
func (y *Synchronizer) LogCycle(ctx context.Context, d models.CycleLogDraft) error {
	done, err := y.guard(OpLogCycle)
	if err != nil {
		return err
	}
	defer done()

	entry, result := y.validate.CycleLog(d)
	if err := result.Err(); err != nil {
		y.notify.Error(apperr.Message(err))
		return err
	}
	owner := y.store.Snapshot().Owner()
	_, err = y.client.LogMenstrualCycle(ctx, entry)
	if !y.owns(owner) {
		return ErrSessionEnded
	}
	if err != nil {
		y.notify.Error(apperr.Message(err))
		return err
	}
	y.store.Dispatch(state.DraftReset{Form: state.FormCycleLog})
	y.notify.Success(constants.MsgCycleLogged)
	y.reload(ctx, owner, SlotCycleData)
	return nil
}

// owns reports whether the session a write started under is still the
// current one
func (y *Synchronizer) owns(o state.Owner) bool {
	return y.store.Snapshot().Owns(o)
}

// reload refreshes slots after a write, unless the session has ended
func (y *Synchronizer) reload(ctx context.Context, o state.Owner, slots ...Slot) {
	s := y.store.Snapshot()
	if !s.Owns(o) {
		return
	}
	y.loadAll(ctx, slots, s.Epoch, s.SelectedDate)
}
