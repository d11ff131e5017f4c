package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julianstephens/nutrisnap/internal/constants"
	"github.com/julianstephens/nutrisnap/internal/media"
	"github.com/julianstephens/nutrisnap/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api", WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestLoginSuccess(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var creds Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if creds.Email != "demo@nutrivision.com" || creds.Password != "password123" {
			t.Errorf("unexpected credentials %+v", creds)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("write request missing X-Request-ID")
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"username": "demo"}})
	}))

	res, err := c.Login(context.Background(), Credentials{Email: "demo@nutrivision.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if res.User.Username != "demo" {
		t.Errorf("username = %q", res.User.Username)
	}
	if got := c.SessionCookie(); got != "session=abc" {
		t.Errorf("SessionCookie() = %q", got)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantKind    Kind
		wantMessage string
	}{
		{
			name: "http error with body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			},
			wantKind:    KindHTTP,
			wantMessage: "Invalid credentials",
		},
		{
			name: "http error without body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantKind:    KindHTTP,
			wantMessage: "HTTP 500: Internal Server Error",
		},
		{
			name: "non json success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = io.WriteString(w, "<html>proxy page</html>")
			},
			wantKind:    KindProtocol,
			wantMessage: constants.MsgNonJSONResponse,
		},
		{
			name: "json missing required field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{}})
			},
			wantKind:    KindMalformed,
			wantMessage: "Malformed login response",
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				_, _ = io.WriteString(w, "{not json")
			},
			wantKind:    KindMalformed,
			wantMessage: "Malformed login response",
		},
		{
			name: "backend validation with suggestions",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"error":       "Invalid email",
					"suggestions": []string{"use name@example.com"},
				})
			},
			wantKind:    KindValidation,
			wantMessage: "Invalid email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.Login(context.Background(), Credentials{Email: "a", Password: "b"})
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if apiErr.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", apiErr.Kind, tt.wantKind)
			}
			if apiErr.UserMessage() != tt.wantMessage {
				t.Errorf("UserMessage() = %q, want %q", apiErr.UserMessage(), tt.wantMessage)
			}
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url + "/api")
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Health(context.Background())
	if !IsKind(err, KindNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	var apiErr *Error
	errors.As(err, &apiErr)
	if apiErr.UserMessage() != "Connection error. Please check if backend is running." {
		t.Errorf("UserMessage() = %q", apiErr.UserMessage())
	}
}

func TestCanceledRequest(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.DailyMeals(ctx, "2024-01-01")
	if !IsCanceled(err) {
		t.Errorf("expected canceled error, got %v", err)
	}
}

func TestDailyMealsQueryAndDecode(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/daily-meals" || r.URL.Query().Get("date") != "2024-01-01" {
			t.Errorf("unexpected request %s", r.URL)
		}
		if r.Header.Get("X-Request-ID") != "" {
			t.Error("GET requests should not carry a request id")
		}
		writeJSON(w, http.StatusOK, map[string]any{"meals": []map[string]any{
			{"id": 7, "name": "Toast", "calories": 150, "meal_type": "breakfast", "time": "07:00"},
		}})
	}))

	meals, err := c.DailyMeals(context.Background(), "2024-01-01")
	if err != nil {
		t.Fatalf("DailyMeals() error: %v", err)
	}
	if len(meals) != 1 || meals[0].ID != 7 || meals[0].Calories != 150 {
		t.Errorf("unexpected meals: %+v", meals)
	}
}

func TestDailyMealsMissingKeyIsMalformed(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
	}))
	if _, err := c.DailyMeals(context.Background(), "2024-01-01"); !IsKind(err, KindMalformed) {
		t.Errorf("expected malformed error, got %v", err)
	}
}

func TestGenerateRecipesMultipart(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Fatalf("expected multipart, got %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		var req models.RecipeRequest
		if err := json.Unmarshal([]byte(r.FormValue("payload")), &req); err != nil {
			t.Fatalf("payload field: %v", err)
		}
		if req.Ingredients != "eggs" || req.CookingTime != "medium" {
			t.Errorf("unexpected payload %+v", req)
		}
		file, hdr, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("image field: %v", err)
		}
		defer file.Close()
		if hdr.Filename != "fridge.jpg" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"validation_result": map[string]any{"invalid_items": []string{}},
			"recipe_options":    []map[string]any{{"title": "Shakshuka"}},
		})
	}))

	blob := media.Blob{Name: "fridge.jpg", ContentType: "image/jpeg", Data: []byte{0xFF, 0xD8, 0xFF, 0xD9}}
	req := models.RecipeDraft{Ingredients: "eggs"}.Request()
	res, err := c.GenerateRecipes(context.Background(), req, &blob)
	if err != nil {
		t.Fatalf("GenerateRecipes() error: %v", err)
	}
	if len(res.RecipeOptions) != 1 || res.RecipeOptions[0].Title != "Shakshuka" {
		t.Errorf("unexpected options: %+v", res.RecipeOptions)
	}
}

func TestGenerateRecipesJSON(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON body, got %q", r.Header.Get("Content-Type"))
		}
		writeJSON(w, http.StatusCreated, map[string]any{"recipe_options": []map[string]any{{"title": ""}}})
	}))
	_, err := c.GenerateRecipes(context.Background(), models.RecipeRequest{Ingredients: "rice"}, nil)
	if !IsKind(err, KindMalformed) {
		t.Errorf("untitled option should be malformed, got %v", err)
	}
}

func TestEstimateFromTextFallsBackToAnalysisShape(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"analysis": map[string]any{"title": "Pasta", "nutrition": map[string]any{"calories": 600, "protein": 20}},
		})
	}))
	est, err := c.EstimateFromText(context.Background(), "pasta")
	if err != nil {
		t.Fatalf("EstimateFromText() error: %v", err)
	}
	if est.Title != "Pasta" || est.Calories != 600 || est.Protein != 20 {
		t.Errorf("unexpected estimate: %+v", est)
	}
}

func TestRestoreAndClearSession(t *testing.T) {
	var seen string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("session"); err == nil {
			seen = ck.Value
		} else {
			seen = ""
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
	}))

	if err := c.RestoreSession("session=remembered"); err != nil {
		t.Fatalf("RestoreSession() error: %v", err)
	}
	if _, err := c.Health(context.Background()); err != nil {
		t.Fatal(err)
	}
	if seen != "remembered" {
		t.Errorf("restored cookie not sent, got %q", seen)
	}

	c.ClearSession()
	if _, err := c.Health(context.Background()); err != nil {
		t.Fatal(err)
	}
	if seen != "" {
		t.Errorf("cookie still sent after ClearSession: %q", seen)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"ftp://example.com", "://nope"} {
		if _, err := New(raw); err == nil {
			t.Errorf("New(%q) should fail", raw)
		}
	}
	c, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if c.BaseURL() != constants.DefaultAPIURL {
		t.Errorf("BaseURL() = %q", c.BaseURL())
	}
}
