package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/snapcal/backend/internal/api"
	"github.com/snapcal/backend/internal/database"
	"github.com/snapcal/backend/internal/kvstore"
	"github.com/snapcal/backend/internal/router"
	"github.com/snapcal/backend/internal/service"
	"github.com/snapcal/backend/internal/types"
)

const (
	testPairingKey = "integration-pairing-key"
	testJWTSecret  = "integration-jwt-secret-0123456789"
)

// setupStack builds the full production wiring over a SQLite file and a
// stubbed analysis upstream: real router, real middleware, real services.
func setupStack(t *testing.T, analysisURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "snapcal.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	storage := service.NewStorageService(kvstore.NewGormStore(db))
	optimizer := service.NewStorageOptimizer(storage, service.NewImageService(), service.DefaultOptimizerConfig())
	analysis := service.NewAnalysisService(service.AnalysisConfig{
		APIKey:  "test-key",
		BaseURL: analysisURL,
		Models:  []string{"test-model"},
	})
	auth, err := service.NewAuthService(testPairingKey, testJWTSecret)
	if err != nil {
		t.Fatalf("failed to create auth service: %v", err)
	}

	return router.SetupRouter(
		api.NewAuthHandler(auth),
		api.NewSettingsHandler(storage),
		api.NewEntriesHandler(storage, optimizer, service.NewArchiveService(nil)),
		api.NewStorageHandler(storage, optimizer),
		api.NewProfileHandler(storage),
		api.NewAnalyzeHandler(analysis, storage),
		auth,
		storage,
		nil,
		nil,
	)
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// chatStub answers like an OpenAI-compatible chat completions endpoint, with
// the given content as the model's message.
func chatStub(content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestDeviceJourney(t *testing.T) {
	ts := chatStub(`{"foods":[` +
		`{"name":"Grilled chicken","calories":300,"quantity":"1 breast","confidence":0.92,"macros":{"protein":35,"carbs":0,"fat":8}},` +
		`{"name":"Steamed rice","calories":200,"quantity":"1 cup","confidence":0.85}` +
		`],"confidence":0.9}`)
	defer ts.Close()

	router := setupStack(t, ts.URL)

	// The wrong pairing key must not yield a token
	w := doRequest(t, router, http.MethodPost, "/api/v1/auth/pair", "", map[string]string{"pairing_key": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("pairing with wrong key: got %d, want 401", w.Code)
	}

	w = doRequest(t, router, http.MethodPost, "/api/v1/auth/pair", "", map[string]string{"pairing_key": testPairingKey})
	if w.Code != http.StatusOK {
		t.Fatalf("pairing failed: %d %s", w.Code, w.Body.String())
	}
	var pairResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &pairResp); err != nil {
		t.Fatalf("failed to decode pair response: %v", err)
	}
	token := pairResp.Token
	if token == "" {
		t.Fatal("no token returned from pairing")
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/entries", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated entries read: got %d, want 401", w.Code)
	}

	// Onboarding derives the calorie goal from the profile
	profile := map[string]any{
		"personal_info": map[string]any{
			"age":    30,
			"gender": "male",
			"height": map[string]any{"value": 180, "unit": "cm"},
			"weight": map[string]any{"value": 80, "unit": "kg"},
		},
		"activity": map[string]any{"level": "moderate"},
		"goals":    map[string]any{"primary": "maintenance"},
	}
	w = doRequest(t, router, http.MethodPost, "/api/v1/profile/complete", token, profile)
	if w.Code != http.StatusOK {
		t.Fatalf("onboarding failed: %d %s", w.Code, w.Body.String())
	}
	var onboardResp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &onboardResp); err != nil {
		t.Fatalf("failed to decode onboarding response: %v", err)
	}
	if goal, ok := onboardResp["daily_calorie_goal"].(float64); !ok || int(goal) != 2873 {
		t.Fatalf("derived calorie goal: got %v, want 2873", onboardResp["daily_calorie_goal"])
	}

	w = doRequest(t, router, http.MethodPut, "/api/v1/settings/goal", token, map[string]int{"goal": 2873})
	if w.Code != http.StatusOK {
		t.Fatalf("goal update failed: %d %s", w.Code, w.Body.String())
	}

	// Analyze a photo through the stubbed upstream
	w = doRequest(t, router, http.MethodPost, "/api/v1/analyze", token, map[string]string{"image": "data:image/jpeg;base64,AAAA"})
	if w.Code != http.StatusOK {
		t.Fatalf("analysis failed: %d %s", w.Code, w.Body.String())
	}
	var analysis types.FoodAnalysisResult
	if err := json.Unmarshal(w.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("failed to decode analysis response: %v", err)
	}
	if len(analysis.Foods) != 2 {
		t.Fatalf("analyzed foods: got %d, want 2", len(analysis.Foods))
	}
	if analysis.TotalCalories != 500 {
		t.Fatalf("analyzed total calories: got %v, want 500", analysis.TotalCalories)
	}

	// Commit the analysis as an entry
	w = doRequest(t, router, http.MethodPost, "/api/v1/entries", token, map[string]any{"foods": analysis.Foods})
	if w.Code != http.StatusCreated {
		t.Fatalf("entry save failed: %d %s", w.Code, w.Body.String())
	}
	var saved types.FoodEntry
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatalf("failed to decode saved entry: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("saved entry has no id")
	}
	if saved.TotalCalories != 500 {
		t.Fatalf("saved entry calories: got %v, want 500", saved.TotalCalories)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/entries?date=today", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("today listing failed: %d", w.Code)
	}
	var todays []types.FoodEntry
	if err := json.Unmarshal(w.Body.Bytes(), &todays); err != nil {
		t.Fatalf("failed to decode today listing: %v", err)
	}
	if len(todays) != 1 {
		t.Fatalf("today's entries: got %d, want 1", len(todays))
	}

	// Weekly rollup ends with today and carries the current goal
	w = doRequest(t, router, http.MethodGet, "/api/v1/week", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("weekly read failed: %d", w.Code)
	}
	var week []types.DailyData
	if err := json.Unmarshal(w.Body.Bytes(), &week); err != nil {
		t.Fatalf("failed to decode weekly data: %v", err)
	}
	if len(week) != 7 {
		t.Fatalf("weekly days: got %d, want 7", len(week))
	}
	today := week[6]
	if today.TotalCalories != 500 {
		t.Fatalf("today's total in weekly data: got %v, want 500", today.TotalCalories)
	}
	if today.GoalCalories != 2873 {
		t.Fatalf("goal in weekly data: got %d, want 2873", today.GoalCalories)
	}
	if today.GoalMet {
		t.Fatal("goal reported met at 500 of 2873 calories")
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/storage", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("storage status failed: %d", w.Code)
	}
	var status struct {
		Info types.StorageInfo `json:"info"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode storage status: %v", err)
	}
	if status.Info.Used <= 0 {
		t.Fatalf("storage used: got %d, want > 0", status.Info.Used)
	}

	w = doRequest(t, router, http.MethodDelete, "/api/v1/entries/"+saved.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("entry delete failed: %d %s", w.Code, w.Body.String())
	}
	w = doRequest(t, router, http.MethodGet, "/api/v1/entries?date=today", token, nil)
	if body := w.Body.String(); body != "[]" {
		t.Fatalf("entries after delete: got %s, want []", body)
	}

	// Full wipe resets settings to defaults
	w = doRequest(t, router, http.MethodDelete, "/api/v1/data", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("data wipe failed: %d", w.Code)
	}
	w = doRequest(t, router, http.MethodGet, "/api/v1/settings", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("settings read failed: %d", w.Code)
	}
	var settings types.UserSettings
	if err := json.Unmarshal(w.Body.Bytes(), &settings); err != nil {
		t.Fatalf("failed to decode settings: %v", err)
	}
	if settings.DailyCalorieGoal != 2000 {
		t.Fatalf("goal after wipe: got %d, want 2000", settings.DailyCalorieGoal)
	}
}

func TestAnalysisUpstreamAuthFailurePassesThrough(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid api key"}}`)
	}))
	defer ts.Close()

	router := setupStack(t, ts.URL)

	w := doRequest(t, router, http.MethodPost, "/api/v1/auth/pair", "", map[string]string{"pairing_key": testPairingKey})
	if w.Code != http.StatusOK {
		t.Fatalf("pairing failed: %d", w.Code)
	}
	var pairResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &pairResp); err != nil {
		t.Fatalf("failed to decode pair response: %v", err)
	}

	w = doRequest(t, router, http.MethodPost, "/api/v1/analyze", pairResp.Token, map[string]string{"image": "data:image/jpeg;base64,AAAA"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("upstream auth failure: got %d, want 401", w.Code)
	}
}
