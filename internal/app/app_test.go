package app

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julianstephens/nutrisnap/internal/api"
	"github.com/julianstephens/nutrisnap/internal/config"
	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/media"
	"github.com/julianstephens/nutrisnap/internal/models"
	"github.com/julianstephens/nutrisnap/internal/notifier"
	"github.com/julianstephens/nutrisnap/internal/router"
	"github.com/julianstephens/nutrisnap/internal/state"
	"github.com/julianstephens/nutrisnap/internal/storage"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC) }

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type backend struct {
	deletes atomic.Int32
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/login":
		var creds api.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "demo@nutrivision.com" || creds.Password != "password123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": 1, "username": "demo"}})
	case "/api/daily-meals":
		if r.URL.Query().Get("date") == "2024-01-01" {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"meals": []map[string]any{
			{"id": 1, "name": "Oats", "calories": 300, "meal_type": "breakfast", "time": "08:00"},
			{"id": 2, "name": "Salad", "calories": 420, "meal_type": "lunch", "time": "12:30"},
		}})
	case "/api/daily-meals/1":
		b.deletes.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
	case "/api/analyze-revolutionary":
		writeJSON(w, http.StatusOK, map[string]any{
			"analysis":     map[string]any{"foods_detected": []string{"rice"}, "nutrition": map[string]any{"calories": 500}},
			"xp_gained":    25,
			"new_total_xp": 125,
		})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

type countingTrack struct{ stops atomic.Int32 }

func (t *countingTrack) Stop() { t.stops.Add(1) }

type fakeStream struct{ track *countingTrack }

func (s fakeStream) Tracks() []media.Track { return []media.Track{s.track} }

func (s fakeStream) Frame(ctx context.Context) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	return img, nil
}

type fakeDevice struct {
	track  *countingTrack
	err    error
	onOpen func()
}

func (d fakeDevice) Open(ctx context.Context) (media.Stream, error) {
	if d.onOpen != nil {
		d.onOpen()
	}
	if d.err != nil {
		return nil, d.err
	}
	return fakeStream{track: d.track}, nil
}

func newApp(t *testing.T, b http.Handler, opts ...Option) *App {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	prefs, err := storage.Open(filepath.Join(t.TempDir(), "prefs.json"))
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Config{APIURL: srv.URL + "/api", Timeout: 5 * time.Second}

	opts = append([]Option{
		WithPreferences(prefs),
		WithHTTP(api.WithHTTPClient(srv.Client())),
		WithClock(fixedNow),
		WithoutKeyring(),
		WithTimings(time.Hour, time.Hour, time.Hour),
		WithBannerTTL(time.Hour, time.Hour),
	}, opts...)
	a, err := New(cfg, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func login(t *testing.T, a *App) {
	t.Helper()
	_, err := a.Session.Login(context.Background(), models.LoginDraft{Email: "demo@nutrivision.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
}

func bannerText(a *App, k notifier.Kind) string {
	if n := a.Store.Snapshot().Banner(k); n != nil {
		return n.Text
	}
	return ""
}

func TestLoginLandsOnDashboard(t *testing.T) {
	a := newApp(t, &backend{})
	login(t, a)

	s := a.Store.Snapshot()
	if s.View.ID() != router.Dashboard {
		t.Errorf("view = %s, want dashboard", s.View.ID())
	}
	if got := bannerText(a, notifier.KindSuccess); got != "Welcome back, demo!" {
		t.Errorf("banner = %q", got)
	}
}

func TestFailedDailyMealsFallBackToEmpty(t *testing.T) {
	a := newApp(t, &backend{})
	login(t, a)
	a.NavigateTo(string(router.DailyLog))
	if err := a.SelectDate("2024-01-01"); err != nil {
		t.Fatal(err)
	}
	a.Sync.Refresh(context.Background())

	s := a.Store.Snapshot()
	if s.DailyMeals.Status != state.Fallback {
		t.Errorf("status = %s, want fallback", s.DailyMeals.Status)
	}
	if s.DailyMeals.Value == nil || len(s.DailyMeals.Value) != 0 {
		t.Errorf("meals = %#v, want empty non-nil", s.DailyMeals.Value)
	}

	dates, err := a.Prefs.RecentDates(1)
	if err != nil || len(dates) != 1 || dates[0] != "2024-01-01" {
		t.Errorf("RecentDates() = %v, %v", dates, err)
	}
}

func TestDeleteMealIsImmediate(t *testing.T) {
	b := &backend{}
	a := newApp(t, b)
	login(t, a)
	a.NavigateTo(string(router.DailyLog))
	a.Sync.Refresh(context.Background())

	if got := len(a.Store.Snapshot().DailyMeals.Value); got != 2 {
		t.Fatalf("loaded %d meals, want 2", got)
	}
	if err := a.Sync.DeleteMeal(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	meals := a.Store.Snapshot().DailyMeals.Value
	if len(meals) != 1 || meals[0].ID != 2 {
		t.Errorf("meals = %+v, want only id 2", meals)
	}
	if got := bannerText(a, notifier.KindSuccess); got != constants.MsgMealRemoved {
		t.Errorf("banner = %q", got)
	}

	a.Sync.Wait()
	if b.deletes.Load() != 1 {
		t.Errorf("remote deletes = %d, want 1", b.deletes.Load())
	}
}

func TestNavigateGate(t *testing.T) {
	a := newApp(t, &backend{})
	if got := a.NavigateTo("recipe-book"); got.ID() != router.Login {
		t.Errorf("unauthenticated navigate = %s, want login", got.ID())
	}
	login(t, a)
	if got := a.NavigateTo("no-such-view"); got.ID() != router.Dashboard {
		t.Errorf("unknown view = %s, want dashboard", got.ID())
	}
	a.NavigateTo("meal-history")
	if got := a.Back(); got.ID() != router.Dashboard {
		t.Errorf("Back() = %s", got.ID())
	}
}

func TestCameraReleasedWhenLeavingView(t *testing.T) {
	tests := []struct {
		name  string
		leave func(a *App)
	}{
		{"navigate", func(a *App) { a.NavigateTo("dashboard") }},
		{"back", func(a *App) { a.Back() }},
		{"logout", func(a *App) { _ = a.Session.Logout(context.Background()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := &countingTrack{}
			a := newApp(t, &backend{}, WithDevice(fakeDevice{track: track}))
			login(t, a)

			if err := a.StartCamera(context.Background()); err != nil {
				t.Fatal(err)
			}
			if !a.CameraActive() {
				t.Fatal("camera should be active")
			}
			tt.leave(a)

			if a.CameraActive() {
				t.Errorf("camera still active on %s", a.Store.Snapshot().View.ID())
			}
			if got := track.stops.Load(); got != 1 {
				t.Errorf("track stopped %d times, want 1", got)
			}
			a.Close()
			if got := track.stops.Load(); got != 1 {
				t.Errorf("track stopped %d times after Close, want 1", got)
			}
		})
	}
}

func TestCameraOpenedAfterLeavingIsReleased(t *testing.T) {
	track := &countingTrack{}
	var a *App
	a = newApp(t, &backend{}, WithDevice(fakeDevice{track: track, onOpen: func() { a.Back() }}))
	login(t, a)

	if err := a.StartCamera(context.Background()); !errors.Is(err, media.ErrSessionClosed) {
		t.Errorf("StartCamera() error = %v, want ErrSessionClosed", err)
	}
	if a.CameraActive() {
		t.Error("camera kept after the view moved on")
	}
	if got := track.stops.Load(); got != 1 {
		t.Errorf("track stopped %d times, want 1", got)
	}
}

func TestCaptureAndAnalyze(t *testing.T) {
	track := &countingTrack{}
	a := newApp(t, &backend{}, WithDevice(fakeDevice{track: track}))
	login(t, a)

	if err := a.StartCamera(context.Background()); err != nil {
		t.Fatal(err)
	}
	res, err := a.CaptureAndAnalyze(context.Background())
	if err != nil {
		t.Fatalf("CaptureAndAnalyze() error: %v", err)
	}
	if len(res.FoodsDetected) != 1 {
		t.Errorf("foods = %v", res.FoodsDetected)
	}
	if got := track.stops.Load(); got != 1 {
		t.Errorf("track stopped %d times, want 1", got)
	}

	s := a.Store.Snapshot()
	if s.View.ID() != router.FoodAnalysis {
		t.Errorf("view = %s, want food-analysis", s.View.ID())
	}
	if s.User().TotalXP != 125 {
		t.Errorf("xp = %d", s.User().TotalXP)
	}
	if got := bannerText(a, notifier.KindSuccess); got != "Analysis complete! +25 XP" {
		t.Errorf("banner = %q", got)
	}

	if _, err := a.CaptureAndAnalyze(context.Background()); !errors.Is(err, media.ErrSessionClosed) {
		t.Errorf("second capture error = %v", err)
	}
}

func TestCameraUnavailableRequestsPicker(t *testing.T) {
	a := newApp(t, &backend{}, WithDevice(fakeDevice{err: errors.New("no device")}))
	login(t, a)

	err := a.StartCamera(context.Background())
	if !errors.Is(err, media.ErrCameraUnavailable) {
		t.Fatalf("StartCamera() error = %v", err)
	}
	if !a.Store.Snapshot().PickerRequested {
		t.Error("file picker should be requested")
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	a := newApp(t, &backend{})
	if a.Preferences().TutorialShown {
		t.Fatal("fresh store has tutorial shown")
	}
	if err := a.UpdatePreferences(func(p *storage.Preferences) { p.TutorialShown = true }); err != nil {
		t.Fatal(err)
	}
	if err := a.RememberAPIURL(); err != nil {
		t.Fatal(err)
	}
	p := a.Preferences()
	if !p.TutorialShown || p.APIURL != a.Client.BaseURL() {
		t.Errorf("preferences = %+v", p)
	}
}

func TestSelectDateRejectsBadInput(t *testing.T) {
	a := newApp(t, &backend{})
	if err := a.SelectDate("03/10/2024"); err == nil {
		t.Fatal("SelectDate() should reject a non-ISO date")
	}
	if bannerText(a, notifier.KindError) == "" {
		t.Error("expected an error banner")
	}
}
