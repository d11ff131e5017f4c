package datasync

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/nutrisnap/internal/api"
	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/logger"
	"github.com/julianstephens/nutrisnap/internal/media"
	"github.com/julianstephens/nutrisnap/internal/models"
	"github.com/julianstephens/nutrisnap/internal/notifier"
	"github.com/julianstephens/nutrisnap/internal/router"
	"github.com/julianstephens/nutrisnap/internal/state"
	"github.com/julianstephens/nutrisnap/internal/validation"
)

// Backend is the part of the API client the synchronizer needs
type Backend interface {
	DailyMeals(ctx context.Context, date string) ([]models.Meal, error)
	AddDailyMeal(ctx context.Context, meal models.Meal) (*models.Meal, error)
	DeleteDailyMeal(ctx context.Context, id int64) error
	MealHistory(ctx context.Context, page, perPage int) (*api.HistoryResponse, error)
	DeleteHistoryEntry(ctx context.Context, id int64) error
	Recipes(ctx context.Context) ([]models.Recipe, error)
	Recipe(ctx context.Context, id int64) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id int64) error
	SaveRecipe(ctx context.Context, opt models.RecipeOption) (int64, error)
	GenerateRecipes(ctx context.Context, req models.RecipeRequest, image *media.Blob) (*api.GenerationResponse, error)
	RecipeImage(ctx context.Context, prompt string) (string, error)
	AnalyzeFood(ctx context.Context, image media.Blob, mealType string) (*api.AnalysisResponse, error)
	EstimateFromImage(ctx context.Context, image media.Blob) (models.Estimation, error)
	EstimateFromText(ctx context.Context, description string) (models.Estimation, error)
	UserProfile(ctx context.Context) (*models.Profile, error)
	UpdateUserProfile(ctx context.Context, up models.ProfileUpdate) error
	UploadProfilePhoto(ctx context.Context, image media.Blob) (string, error)
	NutritionPlan(ctx context.Context) (*models.NutritionPlan, error)
	MenstrualCycle(ctx context.Context) (*models.CycleData, error)
	LogMenstrualCycle(ctx context.Context, entry models.CycleLog) (*api.CycleLogResponse, error)
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	MealSuggestions(ctx context.Context) (*api.SuggestionsResponse, error)
}

// Slot names one remote-backed piece of state
type Slot int

const (
	SlotDailyMeals Slot = iota
	SlotMealHistory
	SlotUserRecipes
	SlotUserProfile
	SlotNutritionPlan
	SlotCycleData
	SlotDashboardStats
	SlotMealSuggestions
)

func (s Slot) String() string {
	switch s {
	case SlotDailyMeals:
		return "daily-meals"
	case SlotMealHistory:
		return "meal-history"
	case SlotUserRecipes:
		return "user-recipes"
	case SlotUserProfile:
		return "user-profile"
	case SlotNutritionPlan:
		return "nutrition-plan"
	case SlotCycleData:
		return "cycle-data"
	case SlotDashboardStats:
		return "dashboard-stats"
	case SlotMealSuggestions:
		return "meal-suggestions"
	default:
		return "unknown"
	}
}

var (
	// ErrInFlight is returned when the same write is already running
	ErrInFlight = errors.New("operation already in progress")
	// ErrSessionEnded is returned when a write finishes after its session
	// logged out. Its result is discarded.
	ErrSessionEnded = errors.New("session ended before the operation finished")
	// ErrNoSession is returned by loads attempted while logged out
	ErrNoSession = errors.New("not signed in")
)

// HistoryPerPage is the page size used for meal history
const HistoryPerPage = 20

// Plan lists the slots a view needs. Nothing is fetched without a session.
func Plan(s state.State) []Slot {
	if !s.Authenticated() || s.View == nil {
		return nil
	}
	switch s.View.ID() {
	case router.Dashboard:
		return []Slot{SlotDashboardStats, SlotMealSuggestions}
	case router.DailyLog:
		return []Slot{SlotDailyMeals}
	case router.MealHistory:
		return []Slot{SlotMealHistory}
	case router.RecipeBook:
		return []Slot{SlotUserRecipes}
	case router.UserProfile, router.Settings:
		return []Slot{SlotUserProfile, SlotNutritionPlan}
	case router.MenstrualCycle:
		if s.User().TracksCycle() {
			return []Slot{SlotCycleData}
		}
	}
	return nil
}

// Synchronizer keeps the store's remote slots in step with the backend and
// runs every write operation.
type Synchronizer struct {
	client   Backend
	store    *state.Store
	notify   *notifier.Notifier
	validate *validation.Validator
	now      func() time.Time
	debounce time.Duration

	mu        sync.Mutex
	pending   *time.Timer
	cancel    context.CancelFunc
	lastEpoch uint64
	inflight  map[string]bool
	closed    bool

	bg sync.WaitGroup
}

type Option func(*Synchronizer)

// WithDebounce overrides the view-change debounce
func WithDebounce(d time.Duration) Option {
	return func(y *Synchronizer) { y.debounce = d }
}

func WithClock(now func() time.Time) Option {
	return func(y *Synchronizer) { y.now = now }
}

func New(client Backend, store *state.Store, notify *notifier.Notifier, opts ...Option) *Synchronizer {
	y := &Synchronizer{
		client:   client,
		store:    store,
		notify:   notify,
		now:      time.Now,
		debounce: constants.ViewFetchDebounce,
		inflight: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(y)
	}
	y.validate = validation.New().WithClock(y.now)
	y.lastEpoch = store.Epoch()
	return y
}

// Watch triggers a fetch plan whenever the store's epoch moves (navigation,
// date change, logout). The returned function stops watching.
func (y *Synchronizer) Watch() func() {
	return y.store.Subscribe(func(s state.State) {
		y.mu.Lock()
		changed := s.Epoch != y.lastEpoch
		if changed {
			y.lastEpoch = s.Epoch
		}
		y.mu.Unlock()
		if changed {
			y.Trigger()
		}
	})
}

// Trigger schedules the current view's plan after the debounce. A newer
// trigger cancels both the pending timer and any plan still running.
func (y *Synchronizer) Trigger() {
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.closed {
		return
	}
	y.stopLocked()
	ctx, cancel := context.WithCancel(context.Background())
	y.cancel = cancel
	y.pending = time.AfterFunc(y.debounce, func() {
		y.run(ctx, y.store.Snapshot())
	})
}

// Refresh runs the current view's plan and waits for every fetch
func (y *Synchronizer) Refresh(ctx context.Context) {
	y.run(ctx, y.store.Snapshot())
}

// Load fetches one slot for the current epoch. Unlike the plan it reports
// the fetch error; the slot still receives its fallback.
func (y *Synchronizer) Load(ctx context.Context, slot Slot) error {
	s := y.store.Snapshot()
	if !s.Authenticated() {
		return ErrNoSession
	}
	return y.load(ctx, slot, s.Epoch, s.SelectedDate)
}

// LoadSecondary fetches the dashboard data shown shortly after login
func (y *Synchronizer) LoadSecondary(ctx context.Context) {
	s := y.store.Snapshot()
	if !s.Authenticated() {
		return
	}
	y.loadAll(ctx, []Slot{SlotDashboardStats, SlotMealSuggestions}, s.Epoch, s.SelectedDate)
}

// SelectDate moves the daily log to date (YYYY-MM-DD)
func (y *Synchronizer) SelectDate(date string) error {
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return api.ValidationError("select date", "Date must be YYYY-MM-DD", nil)
	}
	y.store.Dispatch(state.DateSelected{Date: date})
	return nil
}

// Wait blocks until background writes have finished
func (y *Synchronizer) Wait() {
	y.bg.Wait()
}

// Close cancels pending fetches and waits for background writes
func (y *Synchronizer) Close() {
	y.mu.Lock()
	y.closed = true
	y.stopLocked()
	y.mu.Unlock()
	y.bg.Wait()
}

func (y *Synchronizer) stopLocked() {
	if y.pending != nil {
		y.pending.Stop()
		y.pending = nil
	}
	if y.cancel != nil {
		y.cancel()
		y.cancel = nil
	}
}

func (y *Synchronizer) run(ctx context.Context, s state.State) {
	slots := Plan(s)
	if len(slots) == 0 {
		return
	}
	logger.Debug("Running fetch plan", "view", s.View.ID(), "epoch", s.Epoch, "slots", len(slots))
	y.loadAll(ctx, slots, s.Epoch, s.SelectedDate)
}

// loadAll fetches slots concurrently. Every goroutine returns nil so one
// failed slot never cancels the others.
func (y *Synchronizer) loadAll(ctx context.Context, slots []Slot, epoch uint64, date string) {
	var g errgroup.Group
	for _, slot := range slots {
		g.Go(func() error {
			_ = y.load(ctx, slot, epoch, date)
			return nil
		})
	}
	_ = g.Wait()
}

func (y *Synchronizer) load(ctx context.Context, slot Slot, epoch uint64, date string) error {
	var err error
	fetch := func(failed error) state.Fetch {
		err = failed
		return state.Fetch{Epoch: epoch, Fallback: failed != nil, At: y.now()}
	}

	switch slot {
	case SlotDailyMeals:
		meals, ferr := y.client.DailyMeals(ctx, date)
		if ferr != nil {
			meals = y.fallbackMeals(date)
		}
		y.dispatchLoad(ctx, ferr, state.DailyMealsLoaded{Fetch: fetch(ferr), Date: date, Meals: meals})

	case SlotMealHistory:
		var h state.History
		res, ferr := y.client.MealHistory(ctx, 1, HistoryPerPage)
		if ferr != nil {
			h.Entries = models.SampleHistory(y.now())
			h.Pagination = models.Pagination{Page: 1, PerPage: HistoryPerPage, Total: len(h.Entries), Pages: 1}
		} else {
			h = state.History{Entries: res.History, Pagination: res.Pagination}
		}
		y.dispatchLoad(ctx, ferr, state.MealHistoryLoaded{Fetch: fetch(ferr), History: h})

	case SlotUserRecipes:
		recipes, ferr := y.client.Recipes(ctx)
		if ferr != nil {
			recipes = []models.Recipe{}
		}
		y.dispatchLoad(ctx, ferr, state.RecipesLoaded{Fetch: fetch(ferr), Recipes: recipes})

	case SlotUserProfile:
		p, ferr := y.client.UserProfile(ctx)
		if ferr != nil {
			p = nil
		}
		y.dispatchLoad(ctx, ferr, state.ProfileLoaded{Fetch: fetch(ferr), Profile: p})

	case SlotNutritionPlan:
		p, ferr := y.client.NutritionPlan(ctx)
		if ferr != nil {
			p = nil
		}
		y.dispatchLoad(ctx, ferr, state.NutritionPlanLoaded{Fetch: fetch(ferr), Plan: p})

	case SlotCycleData:
		d, ferr := y.client.MenstrualCycle(ctx)
		if ferr != nil {
			d = nil
		}
		y.dispatchLoad(ctx, ferr, state.CycleDataLoaded{Fetch: fetch(ferr), Data: d})

	case SlotDashboardStats:
		st, ferr := y.client.DashboardStats(ctx)
		if ferr != nil {
			st = nil
		}
		y.dispatchLoad(ctx, ferr, state.DashboardStatsLoaded{Fetch: fetch(ferr), Stats: st})

	case SlotMealSuggestions:
		var list []models.Suggestion
		res, ferr := y.client.MealSuggestions(ctx)
		if ferr == nil {
			list = res.Suggestions
		} else {
			list = []models.Suggestion{}
		}
		y.dispatchLoad(ctx, ferr, state.SuggestionsLoaded{Fetch: fetch(ferr), Suggestions: list})
	}

	if err != nil && !api.IsCanceled(err) {
		logger.Warn("Fetch failed, using fallback", "slot", slot, "error", err)
	}
	return err
}

// dispatchLoad applies a load unless its plan was cancelled; a cancelled
// plan belongs to a view the user already left.
func (y *Synchronizer) dispatchLoad(ctx context.Context, err error, a state.Action) {
	if err != nil && (api.IsCanceled(err) || ctx.Err() != nil) {
		return
	}
	y.store.Dispatch(a)
}

// fallbackMeals is the sample log for today and nothing for any other day
func (y *Synchronizer) fallbackMeals(date string) []models.Meal {
	if date != y.now().Format(constants.DateFormat) {
		return []models.Meal{}
	}
	meals := models.SampleDailyMeals()
	for i := range meals {
		meals[i].Date = date
	}
	return meals
}

// guard marks op as running. The returned func must be called when it ends.
func (y *Synchronizer) guard(op string) (func(), error) {
	y.mu.Lock()
	if y.inflight[op] {
		y.mu.Unlock()
		logger.Debug("Write already in flight", "op", op)
		return nil, ErrInFlight
	}
	y.inflight[op] = true
	y.mu.Unlock()

	y.store.Dispatch(state.OpStarted{Op: op})
	return func() {
		y.mu.Lock()
		delete(y.inflight, op)
		y.mu.Unlock()
		y.store.Dispatch(state.OpFinished{Op: op})
	}, nil
}
