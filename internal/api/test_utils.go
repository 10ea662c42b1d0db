package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/snapcal/backend/internal/kvstore"
	"github.com/snapcal/backend/internal/middleware"
	"github.com/snapcal/backend/internal/service"
	"github.com/snapcal/backend/internal/types"
)

// StubAnalysisService returns canned analysis results so handler tests never
// reach a real vision model.
type StubAnalysisService struct {
	AnalyzeResult *types.FoodAnalysisResult
	AnalyzeErr    error
	CorrectResult *types.FoodAnalysisResult
	CorrectErr    error
	AnalyzeCalls  int
	CorrectCalls  int
	LastOpts      service.AnalyzeOptions
}

func (s *StubAnalysisService) AnalyzeImage(_ context.Context, _ string, opts service.AnalyzeOptions) (*types.FoodAnalysisResult, error) {
	s.AnalyzeCalls++
	s.LastOpts = opts
	if s.AnalyzeErr != nil {
		return nil, s.AnalyzeErr
	}
	return s.AnalyzeResult, nil
}

func (s *StubAnalysisService) CorrectFoodItem(_ context.Context, _ *types.FoodAnalysisResult, _ int, _ string, opts service.AnalyzeOptions) (*types.FoodAnalysisResult, error) {
	s.CorrectCalls++
	s.LastOpts = opts
	if s.CorrectErr != nil {
		return nil, s.CorrectErr
	}
	return s.CorrectResult, nil
}

// StubArchiveService records archival calls without any external storage.
// Inactive by default; tests flip Active to exercise the archival path.
type StubArchiveService struct {
	Active bool
	URL    string
	Err    error
	Calls  int
}

func (s *StubArchiveService) Enabled() bool {
	return s.Active
}

func (s *StubArchiveService) ArchiveImage(_ context.Context, _ string) (string, error) {
	s.Calls++
	if s.Err != nil {
		return "", s.Err
	}
	return s.URL, nil
}

// TestEnv wires the full handler stack over an in-memory store with a real
// auth service and stubbed external services.
type TestEnv struct {
	Router    *gin.Engine
	Token     string
	Store     *kvstore.MemoryStore
	Storage   *service.StorageService
	Optimizer *service.StorageOptimizer
	Analysis  *StubAnalysisService
	Archive   *StubArchiveService
	Auth      *service.AuthService
}

// SetupTestEnv creates a router with every handler registered, plus a paired
// device token for authenticated requests.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := kvstore.NewMemoryStore()
	storage := service.NewStorageService(store)
	optimizer := service.NewStorageOptimizer(storage, service.NewImageService(), service.DefaultOptimizerConfig())
	analysis := &StubAnalysisService{}
	archive := &StubArchiveService{}

	auth, err := service.NewAuthService("test-pairing-key", "test-jwt-secret")
	if err != nil {
		t.Fatalf("failed to create auth service: %v", err)
	}
	token, err := auth.Pair("test-pairing-key")
	if err != nil {
		t.Fatalf("failed to pair test device: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")
	NewAuthHandler(auth).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(auth))
	NewSettingsHandler(storage).RegisterRoutes(protected)
	NewEntriesHandler(storage, optimizer, archive).RegisterRoutes(protected)
	NewStorageHandler(storage, optimizer).RegisterRoutes(protected)
	NewProfileHandler(storage).RegisterRoutes(protected)
	NewAnalyzeHandler(analysis, storage).RegisterRoutes(protected)

	return &TestEnv{
		Router:    router,
		Token:     token,
		Store:     store,
		Storage:   storage,
		Optimizer: optimizer,
		Analysis:  analysis,
		Archive:   archive,
		Auth:      auth,
	}
}

// PerformRequest is a helper function to make HTTP requests in tests. An
// empty token leaves the Authorization header off.
func PerformRequest(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	router.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorded JSON response into out.
func decodeBody(w *httptest.ResponseRecorder, out interface{}) error {
	return json.Unmarshal(w.Body.Bytes(), out)
}
