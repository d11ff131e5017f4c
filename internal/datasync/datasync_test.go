package datasync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julianstephens/nutrisnap/internal/api"
	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/media"
	"github.com/julianstephens/nutrisnap/internal/models"
	"github.com/julianstephens/nutrisnap/internal/notifier"
	"github.com/julianstephens/nutrisnap/internal/router"
	"github.com/julianstephens/nutrisnap/internal/state"
)

var (
	errDown  = &api.Error{Kind: api.KindNetwork, Message: constants.MsgConnectionError}
	fixedNow = time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC)
)

const today = "2024-03-10"

// fakeClient answers from memory. A nil func field means the call fails
// with a network error.
type fakeClient struct {
	dailyMeals     func(date string) ([]models.Meal, error)
	addMeal        func(m models.Meal) (*models.Meal, error)
	deleteMeal     func(id int64) error
	history        func() (*api.HistoryResponse, error)
	recipes        func() ([]models.Recipe, error)
	recipe         func(id int64) (*models.Recipe, error)
	deleteRecipe   func(id int64) error
	generate       func(req models.RecipeRequest, image *media.Blob) (*api.GenerationResponse, error)
	recipeImage    func(prompt string) (string, error)
	analyze        func(image media.Blob, mealType string) (*api.AnalysisResponse, error)
	estimateText   func(desc string) (models.Estimation, error)
	dashboardStats func() (*models.DashboardStats, error)
	suggestions    func() (*api.SuggestionsResponse, error)
	cycle          func() (*models.CycleData, error)

	calls sync.Map
}

func (f *fakeClient) count(name string) int64 {
	v, _ := f.calls.LoadOrStore(name, new(atomic.Int64))
	return v.(*atomic.Int64).Load()
}

func (f *fakeClient) hit(name string) {
	v, _ := f.calls.LoadOrStore(name, new(atomic.Int64))
	v.(*atomic.Int64).Add(1)
}

func (f *fakeClient) DailyMeals(ctx context.Context, date string) ([]models.Meal, error) {
	f.hit("DailyMeals")
	if f.dailyMeals == nil {
		return nil, errDown
	}
	return f.dailyMeals(date)
}

func (f *fakeClient) AddDailyMeal(ctx context.Context, meal models.Meal) (*models.Meal, error) {
	f.hit("AddDailyMeal")
	if f.addMeal == nil {
		return nil, errDown
	}
	return f.addMeal(meal)
}

func (f *fakeClient) DeleteDailyMeal(ctx context.Context, id int64) error {
	f.hit("DeleteDailyMeal")
	if f.deleteMeal == nil {
		return errDown
	}
	return f.deleteMeal(id)
}

func (f *fakeClient) MealHistory(ctx context.Context, page, perPage int) (*api.HistoryResponse, error) {
	f.hit("MealHistory")
	if f.history == nil {
		return nil, errDown
	}
	return f.history()
}

func (f *fakeClient) DeleteHistoryEntry(ctx context.Context, id int64) error {
	f.hit("DeleteHistoryEntry")
	return nil
}

func (f *fakeClient) Recipes(ctx context.Context) ([]models.Recipe, error) {
	f.hit("Recipes")
	if f.recipes == nil {
		return nil, errDown
	}
	return f.recipes()
}

func (f *fakeClient) Recipe(ctx context.Context, id int64) (*models.Recipe, error) {
	f.hit("Recipe")
	if f.recipe == nil {
		return nil, errDown
	}
	return f.recipe(id)
}

func (f *fakeClient) DeleteRecipe(ctx context.Context, id int64) error {
	f.hit("DeleteRecipe")
	if f.deleteRecipe == nil {
		return errDown
	}
	return f.deleteRecipe(id)
}

func (f *fakeClient) SaveRecipe(ctx context.Context, opt models.RecipeOption) (int64, error) {
	f.hit("SaveRecipe")
	return 77, nil
}

func (f *fakeClient) GenerateRecipes(ctx context.Context, req models.RecipeRequest, image *media.Blob) (*api.GenerationResponse, error) {
	f.hit("GenerateRecipes")
	if f.generate == nil {
		return nil, errDown
	}
	return f.generate(req, image)
}

func (f *fakeClient) RecipeImage(ctx context.Context, prompt string) (string, error) {
	f.hit("RecipeImage")
	if f.recipeImage == nil {
		return "", errDown
	}
	return f.recipeImage(prompt)
}

func (f *fakeClient) AnalyzeFood(ctx context.Context, image media.Blob, mealType string) (*api.AnalysisResponse, error) {
	f.hit("AnalyzeFood")
	if f.analyze == nil {
		return nil, errDown
	}
	return f.analyze(image, mealType)
}

func (f *fakeClient) EstimateFromImage(ctx context.Context, image media.Blob) (models.Estimation, error) {
	f.hit("EstimateFromImage")
	return models.Estimation{}, errDown
}

func (f *fakeClient) EstimateFromText(ctx context.Context, description string) (models.Estimation, error) {
	f.hit("EstimateFromText")
	if f.estimateText == nil {
		return models.Estimation{}, errDown
	}
	return f.estimateText(description)
}

func (f *fakeClient) UserProfile(ctx context.Context) (*models.Profile, error) {
	f.hit("UserProfile")
	return nil, errDown
}

func (f *fakeClient) UpdateUserProfile(ctx context.Context, up models.ProfileUpdate) error {
	f.hit("UpdateUserProfile")
	return nil
}

func (f *fakeClient) UploadProfilePhoto(ctx context.Context, image media.Blob) (string, error) {
	f.hit("UploadProfilePhoto")
	return "/uploads/me.jpg", nil
}

func (f *fakeClient) NutritionPlan(ctx context.Context) (*models.NutritionPlan, error) {
	f.hit("NutritionPlan")
	return nil, errDown
}

func (f *fakeClient) MenstrualCycle(ctx context.Context) (*models.CycleData, error) {
	f.hit("MenstrualCycle")
	if f.cycle == nil {
		return nil, errDown
	}
	return f.cycle()
}

func (f *fakeClient) LogMenstrualCycle(ctx context.Context, entry models.CycleLog) (*api.CycleLogResponse, error) {
	f.hit("LogMenstrualCycle")
	return &api.CycleLogResponse{Message: "ok"}, nil
}

func (f *fakeClient) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	f.hit("DashboardStats")
	if f.dashboardStats == nil {
		return nil, errDown
	}
	return f.dashboardStats()
}

func (f *fakeClient) MealSuggestions(ctx context.Context) (*api.SuggestionsResponse, error) {
	f.hit("MealSuggestions")
	if f.suggestions == nil {
		return nil, errDown
	}
	return f.suggestions()
}

type fixture struct {
	sync   *Synchronizer
	store  *state.Store
	client *fakeClient
}

func newFixture(t *testing.T, client *fakeClient, user models.User) fixture {
	t.Helper()
	store := state.NewStore(state.Initial(today))
	store.Dispatch(state.SessionStarted{Session: models.Session{User: user}})
	notes := notifier.New(
		notifier.WithTTL(time.Hour, time.Hour),
		notifier.WithSink(func(k notifier.Kind, gen uint64, n *notifier.Notification) {
			store.Dispatch(state.NotificationChanged{Kind: k, Gen: gen, Note: n})
		}),
	)
	t.Cleanup(notes.Close)
	y := New(client, store, notes, WithClock(func() time.Time { return fixedNow }), WithDebounce(10*time.Millisecond))
	t.Cleanup(y.Close)
	return fixture{sync: y, store: store, client: client}
}

func (f fixture) navigate(v router.View) {
	f.store.Dispatch(state.Navigated{View: v})
}

func banner(s state.State, k notifier.Kind) string {
	if n := s.Banner(k); n != nil {
		return n.Text
	}
	return ""
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPlan(t *testing.T) {
	cycleUser := models.User{Username: "ana", Gender: "female", TrackMenstrualCycle: true}
	tests := []struct {
		name string
		view router.ID
		user *models.User
		want []Slot
	}{
		{"dashboard", router.Dashboard, &models.User{}, []Slot{SlotDashboardStats, SlotMealSuggestions}},
		{"daily log", router.DailyLog, &models.User{}, []Slot{SlotDailyMeals}},
		{"history", router.MealHistory, &models.User{}, []Slot{SlotMealHistory}},
		{"recipes", router.RecipeBook, &models.User{}, []Slot{SlotUserRecipes}},
		{"profile", router.UserProfile, &models.User{}, []Slot{SlotUserProfile, SlotNutritionPlan}},
		{"settings", router.Settings, &models.User{}, []Slot{SlotUserProfile, SlotNutritionPlan}},
		{"cycle tracked", router.MenstrualCycle, &cycleUser, []Slot{SlotCycleData}},
		{"cycle untracked", router.MenstrualCycle, &models.User{Gender: "male"}, nil},
		{"camera", router.CameraCapture, &models.User{}, nil},
		{"no session", router.Dashboard, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state.Initial(today)
			if tt.user != nil {
				s = state.Reduce(s, state.SessionStarted{Session: models.Session{User: *tt.user}})
			}
			s = state.Reduce(s, state.Navigated{View: router.Screen(tt.view)})
			got := Plan(s)
			if len(got) != len(tt.want) {
				t.Fatalf("Plan() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Plan()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFallbackTotality(t *testing.T) {
	f := newFixture(t, &fakeClient{}, models.User{Username: "ana", Gender: "female", TrackMenstrualCycle: true})
	ctx := context.Background()
	for _, slot := range []Slot{SlotDailyMeals, SlotMealHistory, SlotUserRecipes, SlotUserProfile,
		SlotNutritionPlan, SlotCycleData, SlotDashboardStats, SlotMealSuggestions} {
		if err := f.sync.Load(ctx, slot); err == nil {
			t.Errorf("Load(%v) should report the failure", slot)
		}
	}

	s := f.store.Snapshot()
	if got := s.DailyMeals.Value; len(got) != 2 || got[0].Name != "Oatmeal with Berries" || got[1].Calories != 450 {
		t.Errorf("daily meals fallback = %+v", got)
	}
	if got := s.MealHistory.Value.Entries; len(got) != 1 || got[0].ID != 101 || got[0].HealthScore != 7 {
		t.Errorf("history fallback = %+v", got)
	}
	if s.UserRecipes.Value == nil || len(s.UserRecipes.Value) != 0 {
		t.Errorf("recipes fallback = %#v", s.UserRecipes.Value)
	}
	if s.MealSuggestions.Value == nil || len(s.MealSuggestions.Value) != 0 {
		t.Errorf("suggestions fallback = %#v", s.MealSuggestions.Value)
	}
	if s.UserProfile.Value != nil || s.NutritionPlan.Value != nil || s.CycleData.Value != nil || s.DashboardStats.Value != nil {
		t.Error("nullable slots should fall back to nil")
	}
	for name, st := range map[string]state.Status{
		"meals": s.DailyMeals.Status, "history": s.MealHistory.Status, "recipes": s.UserRecipes.Status,
		"profile": s.UserProfile.Status, "cycle": s.CycleData.Status, "stats": s.DashboardStats.Status,
	} {
		if st != state.Fallback {
			t.Errorf("%s status = %v, want fallback", name, st)
		}
	}
}

func TestDailyMealsFallbackForOtherDay(t *testing.T) {
	var gotDate string
	client := &fakeClient{}
	f := newFixture(t, client, models.User{Username: "demo"})
	if err := f.sync.SelectDate("2024-01-01"); err != nil {
		t.Fatal(err)
	}
	client.dailyMeals = func(date string) ([]models.Meal, error) {
		gotDate = date
		return nil, errDown
	}
	_ = f.sync.Load(context.Background(), SlotDailyMeals)

	if gotDate != "2024-01-01" {
		t.Errorf("requested date = %q", gotDate)
	}
	if got := f.store.Snapshot().DailyMeals.Value; got == nil || len(got) != 0 {
		t.Errorf("daily meals = %#v, want empty list", got)
	}
}

func TestSelectDateRejectsBadInput(t *testing.T) {
	f := newFixture(t, &fakeClient{}, models.User{Username: "demo"})
	if err := f.sync.SelectDate("03/10/2024"); !api.IsKind(err, api.KindValidation) {
		t.Errorf("SelectDate() error = %v", err)
	}
}

func TestStaleFetchDoesNotOverwrite(t *testing.T) {
	release := make(chan struct{})
	client := &fakeClient{recipes: func() ([]models.Recipe, error) {
		<-release
		return []models.Recipe{{ID: 1, Title: "Late"}}, nil
	}}
	f := newFixture(t, client, models.User{Username: "demo"})
	f.navigate(router.Screen(router.RecipeBook))

	done := make(chan struct{})
	go func() {
		f.sync.Refresh(context.Background())
		close(done)
	}()
	waitFor(t, func() bool { return client.count("Recipes") == 1 })
	f.navigate(router.Screen(router.Dashboard))
	close(release)
	<-done

	if st := f.store.Snapshot().UserRecipes.Status; st != state.Empty {
		t.Errorf("stale recipes applied, status = %v", st)
	}
}

func TestTriggerDebounces(t *testing.T) {
	client := &fakeClient{
		recipes:        func() ([]models.Recipe, error) { return []models.Recipe{{ID: 4}}, nil },
		dashboardStats: func() (*models.DashboardStats, error) { return &models.DashboardStats{}, nil },
	}
	f := newFixture(t, client, models.User{Username: "demo"})
	stop := f.sync.Watch()
	defer stop()

	f.navigate(router.Screen(router.Dashboard))
	f.navigate(router.Screen(router.RecipeBook))

	waitFor(t, func() bool { return f.store.Snapshot().UserRecipes.Status == state.Loaded })
	if n := client.count("DashboardStats"); n != 0 {
		t.Errorf("superseded plan still fetched dashboard stats %d times", n)
	}
}

func TestSaveMealAppends(t *testing.T) {
	tests := []struct {
		name    string
		addMeal func(models.Meal) (*models.Meal, error)
		banner  string
		wantID  int64
	}{
		{"backend down", nil, constants.MsgMealSavedLocally, fixedNow.UnixMilli()},
		{"backend id", func(m models.Meal) (*models.Meal, error) {
			m.ID = 900
			return &m, nil
		}, constants.MsgMealSaved, 900},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &fakeClient{addMeal: tt.addMeal}, models.User{Username: "demo"})
			_ = f.sync.SelectDate("2024-03-09")

			meal, err := f.sync.SaveMeal(context.Background(), models.MealDraft{Name: "Toast", Calories: "210", MealType: "snack"})
			if err != nil {
				t.Fatalf("SaveMeal() error: %v", err)
			}
			s := f.store.Snapshot()
			if got := s.DailyMeals.Value; len(got) != 1 || got[0].ID != tt.wantID || got[0].Date != "2024-03-09" {
				t.Errorf("daily meals = %+v", got)
			}
			if meal.Time != "12:30" {
				t.Errorf("default time = %q", meal.Time)
			}
			if got := banner(s, notifier.KindSuccess); got != tt.banner {
				t.Errorf("banner = %q, want %q", got, tt.banner)
			}
			if s.Drafts.Meal != models.DefaultMealDraft() {
				t.Errorf("draft not reset: %+v", s.Drafts.Meal)
			}
		})
	}
}

func TestSaveMealValidation(t *testing.T) {
	f := newFixture(t, &fakeClient{}, models.User{Username: "demo"})
	ctx := context.Background()

	if _, err := f.sync.SaveMeal(ctx, models.MealDraft{Calories: "100"}); err == nil {
		t.Error("SaveMeal() without a name should fail")
	}
	if got := banner(f.store.Snapshot(), notifier.KindError); got != constants.MsgMealNameRequired {
		t.Errorf("banner = %q", got)
	}
	if _, err := f.sync.SaveMeal(ctx, models.MealDraft{Name: "Air"}); err == nil {
		t.Error("SaveMeal() without nutrition should fail")
	}
	if got := banner(f.store.Snapshot(), notifier.KindError); got != constants.MsgNutritionRequired {
		t.Errorf("banner = %q", got)
	}
	if f.client.count("AddDailyMeal") != 0 {
		t.Error("invalid drafts reached the network")
	}
}

func TestSaveMealDoubleSubmit(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	client := &fakeClient{addMeal: func(m models.Meal) (*models.Meal, error) {
		close(entered)
		<-release
		return &m, nil
	}}
	f := newFixture(t, client, models.User{Username: "demo"})
	draft := models.MealDraft{Name: "Toast", Calories: "210"}

	errc := make(chan error, 1)
	go func() {
		_, err := f.sync.SaveMeal(context.Background(), draft)
		errc <- err
	}()
	<-entered
	if !f.store.Snapshot().IsBusy(OpSaveMeal) {
		t.Error("save should be marked busy")
	}
	if _, err := f.sync.SaveMeal(context.Background(), draft); !errors.Is(err, ErrInFlight) {
		t.Errorf("second SaveMeal() error = %v, want ErrInFlight", err)
	}
	close(release)
	if err := <-errc; err != nil {
		t.Fatal(err)
	}
	if n := client.count("AddDailyMeal"); n != 1 {
		t.Errorf("AddDailyMeal called %d times", n)
	}
	if len(f.store.Snapshot().DailyMeals.Value) != 1 {
		t.Error("meal appended more than once")
	}
}

func TestDeleteMealIsOptimistic(t *testing.T) {
	release := make(chan struct{})
	client := &fakeClient{deleteMeal: func(id int64) error {
		<-release
		return errDown
	}}
	f := newFixture(t, client, models.User{Username: "demo"})
	f.store.Dispatch(state.DailyMealsLoaded{
		Fetch: state.Fetch{Epoch: f.store.Epoch()},
		Date:  today,
		Meals: []models.Meal{{ID: 1}, {ID: 2}},
	})

	if err := f.sync.DeleteMeal(context.Background(), 1); err != nil {
		t.Fatalf("DeleteMeal() error: %v", err)
	}
	s := f.store.Snapshot()
	if got := s.DailyMeals.Value; len(got) != 1 || got[0].ID != 2 {
		t.Errorf("daily meals = %+v", got)
	}
	if got := banner(s, notifier.KindSuccess); got != constants.MsgMealRemoved {
		t.Errorf("banner = %q", got)
	}

	close(release)
	f.sync.Wait()
	if got := banner(f.store.Snapshot(), notifier.KindError); got != constants.MsgMealRemoteDelete {
		t.Errorf("error banner = %q", got)
	}
}

func TestGenerateRecipeFanOut(t *testing.T) {
	client := &fakeClient{
		generate: func(req models.RecipeRequest, image *media.Blob) (*api.GenerationResponse, error) {
			if req.CookingTime != "medium" || image != nil {
				t.Errorf("unexpected request %+v image=%v", req, image)
			}
			return &api.GenerationResponse{
				ValidationResult: models.IngredientValidation{
					InvalidItems: models.FlexStrings{"rocks"},
					Suggestions:  models.FlexStrings{"potatoes"},
				},
				RecipeOptions: []models.RecipeOption{{Title: "A"}, {Title: "B"}, {Title: "C"}},
			}, nil
		},
		recipeImage: func(prompt string) (string, error) {
			if prompt == "B" {
				return "", errDown
			}
			return "http://img/" + prompt, nil
		},
		recipes: func() ([]models.Recipe, error) { return []models.Recipe{{ID: 1}}, nil },
	}
	f := newFixture(t, client, models.User{Username: "demo"})

	opts, err := f.sync.GenerateRecipe(context.Background(), models.RecipeDraft{Ingredients: "eggs, rocks"}, nil)
	if err != nil {
		t.Fatalf("GenerateRecipe() error: %v", err)
	}
	want := []string{"http://img/A", "", "http://img/C"}
	for i, o := range opts {
		if o.ImageURL != want[i] {
			t.Errorf("option %d image = %q, want %q", i, o.ImageURL, want[i])
		}
	}
	s := f.store.Snapshot()
	if got := banner(s, notifier.KindError); got != "Invalid items: rocks. Suggestions: potatoes" {
		t.Errorf("error banner = %q", got)
	}
	if got := banner(s, notifier.KindSuccess); got != constants.MsgRecipeGenerated {
		t.Errorf("success banner = %q", got)
	}
	if s.UserRecipes.Status != state.Loaded {
		t.Error("recipes were not reloaded")
	}
	if client.count("RecipeImage") != 3 {
		t.Errorf("RecipeImage called %d times", client.count("RecipeImage"))
	}
}

func TestGenerateRecipeNeedsInput(t *testing.T) {
	f := newFixture(t, &fakeClient{}, models.User{Username: "demo"})
	if _, err := f.sync.GenerateRecipe(context.Background(), models.DefaultRecipeDraft(), nil); err == nil {
		t.Fatal("GenerateRecipe() should require ingredients")
	}
	if got := banner(f.store.Snapshot(), notifier.KindError); got != constants.MsgRecipeInput {
		t.Errorf("banner = %q", got)
	}
}

func TestRecipeDetailsAndDelete(t *testing.T) {
	client := &fakeClient{
		recipe:       func(id int64) (*models.Recipe, error) { return &models.Recipe{ID: id, Title: "Soup"}, nil },
		deleteRecipe: func(id int64) error { return nil },
		recipes:      func() ([]models.Recipe, error) { return []models.Recipe{}, nil },
	}
	f := newFixture(t, client, models.User{Username: "demo"})
	ctx := context.Background()

	if _, err := f.sync.RecipeDetails(ctx, 5); err != nil {
		t.Fatal(err)
	}
	rd, ok := f.store.Snapshot().View.(router.RecipeDetails)
	if !ok || rd.Recipe.Title != "Soup" {
		t.Fatalf("view = %#v", f.store.Snapshot().View)
	}

	if err := f.sync.DeleteRecipe(ctx, 5); err != nil {
		t.Fatal(err)
	}
	s := f.store.Snapshot()
	if s.View.ID() != router.RecipeBook {
		t.Errorf("view = %q, want recipe-book", s.View.ID())
	}
	if got := banner(s, notifier.KindSuccess); got != constants.MsgRecipeDeleted {
		t.Errorf("banner = %q", got)
	}
}

func TestRecipeDetailsFailure(t *testing.T) {
	f := newFixture(t, &fakeClient{}, models.User{Username: "demo"})
	f.navigate(router.Screen(router.RecipeBook))
	if _, err := f.sync.RecipeDetails(context.Background(), 5); err == nil {
		t.Fatal("RecipeDetails() should fail")
	}
	s := f.store.Snapshot()
	if s.View.ID() != router.RecipeBook {
		t.Errorf("view changed to %q", s.View.ID())
	}
	if got := banner(s, notifier.KindError); got != constants.MsgRecipeLoadError {
		t.Errorf("banner = %q", got)
	}
}

func TestAnalyzeFood(t *testing.T) {
	img := media.Blob{Name: "lunch.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}}

	t.Run("success", func(t *testing.T) {
		client := &fakeClient{analyze: func(image media.Blob, mealType string) (*api.AnalysisResponse, error) {
			if mealType != constants.AnalysisMealType {
				t.Errorf("meal type = %q", mealType)
			}
			return &api.AnalysisResponse{
				Analysis:   &models.Analysis{FoodsDetected: models.FlexStrings{"rice"}},
				XPGained:   25,
				NewTotalXP: 125,
				NewLevel:   "Explorer",
			}, nil
		}}
		f := newFixture(t, client, models.User{Username: "demo", TotalXP: 100})
		if _, err := f.sync.AnalyzeFood(context.Background(), img); err != nil {
			t.Fatal(err)
		}
		s := f.store.Snapshot()
		if s.View.ID() != router.FoodAnalysis || s.Analysis.Status != state.Loaded {
			t.Errorf("view %q status %v", s.View.ID(), s.Analysis.Status)
		}
		if s.User().TotalXP != 125 || s.User().Level != "Explorer" {
			t.Errorf("user = %+v", s.User())
		}
		if got := banner(s, notifier.KindSuccess); got != "Analysis complete! +25 XP" {
			t.Errorf("banner = %q", got)
		}
	})

	t.Run("failure", func(t *testing.T) {
		f := newFixture(t, &fakeClient{}, models.User{Username: "demo"})
		if _, err := f.sync.AnalyzeFood(context.Background(), img); err == nil {
			t.Fatal("AnalyzeFood() should fail")
		}
		s := f.store.Snapshot()
		if s.Analysis.Status != state.Fallback || s.Analysis.Value == nil {
			t.Fatalf("analysis = %+v", s.Analysis)
		}
		a := s.Analysis.Value
		if a.FoodsDetected[0] != "Analysis error" || a.HealthAssessment.ObesityRisk != "Unknown" {
			t.Errorf("fallback analysis = %+v", a)
		}
	})
}

func TestEstimateMeal(t *testing.T) {
	client := &fakeClient{estimateText: func(desc string) (models.Estimation, error) {
		if desc != "chicken wrap" {
			t.Errorf("description = %q", desc)
		}
		return models.Estimation{Title: "Chicken Wrap", Calories: 430, Protein: 28}, nil
	}}
	f := newFixture(t, client, models.User{Username: "demo"})

	d, err := f.sync.EstimateMeal(context.Background(), models.MealDraft{Name: "chicken wrap", MealType: "lunch"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Calories != "430" || d.Protein != "28" || d.MealType != "lunch" {
		t.Errorf("draft = %+v", d)
	}
	if f.store.Snapshot().Drafts.Meal != d {
		t.Error("estimated draft not stored")
	}

	if _, err := f.sync.EstimateMeal(context.Background(), models.MealDraft{}, nil); err == nil {
		t.Error("EstimateMeal() without input should fail")
	}
}

func TestProfileAndCycleWrites(t *testing.T) {
	f := newFixture(t, &fakeClient{}, models.User{Username: "demo"})
	ctx := context.Background()

	if err := f.sync.UpdateProfile(ctx, models.ProfileDraft{Age: "thirty"}); err == nil {
		t.Error("UpdateProfile() should reject a non-numeric age")
	}
	if err := f.sync.UpdateProfile(ctx, models.ProfileDraft{Username: "demo2", ActivityLevel: "active"}); err != nil {
		t.Fatal(err)
	}
	if got := f.store.Snapshot().User().Username; got != "demo2" {
		t.Errorf("username = %q", got)
	}

	if _, err := f.sync.UploadProfilePhoto(ctx, media.Blob{Name: "me.jpg", Data: []byte("x")}); err != nil {
		t.Fatal(err)
	}
	if got := f.store.Snapshot().User().ProfilePhoto; got != "/uploads/me.jpg" {
		t.Errorf("photo = %q", got)
	}

	if err := f.sync.LogCycle(ctx, models.CycleLogDraft{Symptoms: "cramps", EnergyLevel: "4"}); err != nil {
		t.Fatal(err)
	}
	if got := banner(f.store.Snapshot(), notifier.KindSuccess); got != constants.MsgCycleLogged {
		t.Errorf("banner = %q", got)
	}
}

func TestWritesFinishingAfterLogoutAreDropped(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	client := &fakeClient{
		addMeal: func(m models.Meal) (*models.Meal, error) {
			close(entered)
			<-release
			m.ID = 99
			return &m, nil
		},
		deleteMeal: func(id int64) error {
			<-release
			return errDown
		},
	}
	f := newFixture(t, client, models.User{Username: "demo"})
	f.store.Dispatch(state.DailyMealsLoaded{
		Fetch: state.Fetch{Epoch: f.store.Epoch()},
		Date:  today,
		Meals: []models.Meal{{ID: 1}},
	})
	if err := f.sync.DeleteMeal(context.Background(), 1); err != nil {
		t.Fatalf("DeleteMeal() error: %v", err)
	}

	errc := make(chan error, 1)
	go func() {
		_, err := f.sync.SaveMeal(context.Background(), models.MealDraft{Name: "Toast", Calories: "210"})
		errc <- err
	}()
	<-entered
	f.store.Dispatch(state.LoggedOut{Today: today})
	close(release)

	if err := <-errc; !errors.Is(err, ErrSessionEnded) {
		t.Errorf("SaveMeal() error = %v, want ErrSessionEnded", err)
	}
	f.sync.Wait()

	s := f.store.Snapshot()
	if s.Authenticated() {
		t.Fatal("store should be logged out")
	}
	if len(s.DailyMeals.Value) != 0 {
		t.Errorf("logged-out state holds meals %+v", s.DailyMeals.Value)
	}
	if got := banner(s, notifier.KindError); got != "" {
		t.Errorf("error banner after logout = %q", got)
	}
	if got := banner(s, notifier.KindSuccess); got != "" {
		t.Errorf("success banner after logout = %q", got)
	}
}

func TestGenerateRecipeAfterLogoutIsDropped(t *testing.T) {
	var f fixture
	client := &fakeClient{
		generate: func(req models.RecipeRequest, image *media.Blob) (*api.GenerationResponse, error) {
			f.store.Dispatch(state.LoggedOut{Today: today})
			return &api.GenerationResponse{RecipeOptions: []models.RecipeOption{{Title: "Omelette"}}}, nil
		},
		recipeImage: func(prompt string) (string, error) { return "http://img/" + prompt, nil },
	}
	f = newFixture(t, client, models.User{Username: "demo"})

	if _, err := f.sync.GenerateRecipe(context.Background(), models.RecipeDraft{Ingredients: "eggs", CookingTime: "medium"}, nil); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("GenerateRecipe() error = %v, want ErrSessionEnded", err)
	}
	if opts := f.store.Snapshot().RecipeOptions.Value.Options; len(opts) != 0 {
		t.Errorf("logged-out state holds recipe options %+v", opts)
	}
	if n := client.count("RecipeImage"); n != 0 {
		t.Errorf("RecipeImage called %d times after logout", n)
	}
	if n := client.count("Recipes"); n != 0 {
		t.Errorf("recipes reloaded after logout")
	}
}

func TestLoadWithoutSession(t *testing.T) {
	f := newFixture(t, &fakeClient{}, models.User{Username: "demo"})
	f.store.Dispatch(state.LoggedOut{Today: today})

	if err := f.sync.Load(context.Background(), SlotDailyMeals); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load() error = %v, want ErrNoSession", err)
	}
	if f.client.count("DailyMeals") != 0 {
		t.Error("logged-out load reached the network")
	}
	if s := f.store.Snapshot(); s.DailyMeals.Status != state.Empty {
		t.Errorf("daily meals status = %v", s.DailyMeals.Status)
	}
}
