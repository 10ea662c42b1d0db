package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/snapcal/backend/internal/apperrors"
	"github.com/snapcal/backend/internal/types"
)

const (
	defaultAnalysisBaseURL = "https://api.openai.com/v1/chat/completions"
	maxAnalysisAttempts    = 3
)

// ErrNoFoodDetected is returned when the model recognizes no food in the
// image. Callers treat it as an expected outcome, not a failure.
var ErrNoFoodDetected = apperrors.NewAPIError("no food recognized in the image", http.StatusUnprocessableEntity)

var defaultAnalysisModels = []string{"gpt-4o-mini", "gpt-4o"}

const analysisSystemPrompt = `You are a nutrition analysis assistant. Examine the food photo and respond ONLY with JSON shaped like:
{"foods":[{"name":"...","calories":0,"quantity":"...","confidence":0.0,"ingredients":["..."],"cooking_method":"...","macros":{"protein":0,"carbs":0,"fat":0,"fiber":0},"category":"...","health_score":0}],"confidence":0.0}
Estimate calories per item for the visible portion size. Confidence values are between 0 and 1. If no food is visible, respond with {"foods":[],"confidence":0}.`

const correctionSystemPrompt = `You are a nutrition analysis assistant. The user is correcting one previously analyzed food item. Respond ONLY with the corrected item as JSON shaped like:
{"name":"...","calories":0,"quantity":"...","confidence":0.0,"ingredients":["..."],"cooking_method":"...","macros":{"protein":0,"carbs":0,"fat":0,"fiber":0},"category":"...","health_score":0}
Apply the correction faithfully and re-estimate calories for the corrected description.`

// AnalyzeOptions carries per-call overrides. An API key supplied here takes
// precedence over the service-wide credential.
type AnalyzeOptions struct {
	APIKey string
}

// AnalysisConfig configures the AnalysisService.
type AnalysisConfig struct {
	APIKey  string
	BaseURL string
	Models  []string
	Client  *http.Client
}

// AnalysisService recognizes food in photos through an OpenAI-compatible
// vision endpoint. Retry with linear backoff and multi-model fallback live
// here; callers only see the settled result or a tagged error.
type AnalysisService struct {
	apiKey  string
	baseURL string
	models  []string
	client  *http.Client
}

// Ensure AnalysisService implements IAnalysisService
var _ IAnalysisService = (*AnalysisService)(nil)

// NewAnalysisService creates a new AnalysisService instance.
func NewAnalysisService(cfg AnalysisConfig) *AnalysisService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAnalysisBaseURL
	}
	models := cfg.Models
	if len(models) == 0 {
		models = defaultAnalysisModels
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &AnalysisService{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		models:  models,
		client:  client,
	}
}

// ChatMessage represents a message in the chat request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart represents one element of a multimodal message.
type ContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *ImagePayload `json:"image_url,omitempty"`
}

// ImagePayload carries the image reference for a vision request.
type ImagePayload struct {
	URL string `json:"url"`
}

// ChatRequest represents a request to the chat completions API.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AnalyzeImage sends the photo to the vision endpoint and returns the parsed
// analysis. Transient failures are retried with linear backoff; a model that
// fails outright is skipped in favor of the next configured one.
func (s *AnalysisService) AnalyzeImage(ctx context.Context, imageDataURL string, opts AnalyzeOptions) (*types.FoodAnalysisResult, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = s.apiKey
	}
	if apiKey == "" {
		return nil, apperrors.NewAPIError("no analysis API key configured", http.StatusUnauthorized)
	}

	messages := []ChatMessage{
		{Role: "system", Content: analysisSystemPrompt},
		{Role: "user", Content: []ContentPart{
			{Type: "text", Text: "Analyze this meal and estimate its calories."},
			{Type: "image_url", ImageURL: &ImagePayload{URL: imageDataURL}},
		}},
	}

	var lastErr error
	for _, model := range s.models {
	attempts:
		for attempt := 1; attempt <= maxAnalysisAttempts; attempt++ {
			content, err := s.callChat(ctx, apiKey, model, messages)
			if err == nil {
				result, parseErr := parseAnalysisContent(content)
				if parseErr == nil {
					return result, nil
				}
				if errors.Is(parseErr, ErrNoFoodDetected) {
					log.Printf("[AnalysisService] model %s found no food in the image", model)
					return nil, ErrNoFoodDetected
				}
				err = parseErr
			}

			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			log.Printf("[AnalysisService] model %s attempt %d/%d failed: %v", model, attempt, maxAnalysisAttempts, err)

			if appErr, ok := apperrors.As(err); ok && appErr.Kind == apperrors.KindAPI {
				switch {
				case appErr.StatusCode == http.StatusUnprocessableEntity:
					return nil, ErrNoFoodDetected
				case appErr.StatusCode == http.StatusUnauthorized || appErr.StatusCode == http.StatusForbidden:
					return nil, err
				case appErr.StatusCode >= 400 && appErr.StatusCode < 500 && appErr.StatusCode != http.StatusTooManyRequests:
					// this model is not going to work; move on to the next
					break attempts
				}
			}

			if attempt < maxAnalysisAttempts {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Duration(attempt) * time.Second):
				}
			}
		}
	}

	return nil, lastErr
}

// CorrectFoodItem asks the model to rework one food item per the user's
// free-text correction and returns a copy of the result with that item
// replaced and the calorie total recomputed.
func (s *AnalysisService) CorrectFoodItem(ctx context.Context, result *types.FoodAnalysisResult, index int, correction string, opts AnalyzeOptions) (*types.FoodAnalysisResult, error) {
	if result == nil || index < 0 || index >= len(result.Foods) {
		return nil, apperrors.NewStorageError("food item index out of range", apperrors.CodeValidation)
	}
	correction = strings.TrimSpace(correction)
	if correction == "" {
		return nil, apperrors.NewStorageError("correction text must not be empty", apperrors.CodeValidation)
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = s.apiKey
	}
	if apiKey == "" {
		return nil, apperrors.NewAPIError("no analysis API key configured", http.StatusUnauthorized)
	}

	original, err := json.Marshal(result.Foods[index])
	if err != nil {
		return nil, fmt.Errorf("failed to encode food item: %w", err)
	}

	messages := []ChatMessage{
		{Role: "system", Content: correctionSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Original item: %s\nCorrection: %s", original, correction)},
	}

	var lastErr error
	for attempt := 1; attempt <= maxAnalysisAttempts; attempt++ {
		content, err := s.callChat(ctx, apiKey, s.models[0], messages)
		if err == nil {
			var corrected types.FoodItem
			if parseErr := json.Unmarshal([]byte(stripMarkdownFences(content)), &corrected); parseErr == nil && corrected.Name != "" {
				updated := *result
				updated.Foods = make([]types.FoodItem, len(result.Foods))
				copy(updated.Foods, result.Foods)
				updated.ReplaceFood(index, corrected)
				return &updated, nil
			}
			err = apperrors.NewAPIError("failed to parse corrected food item", 0)
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		log.Printf("[AnalysisService] correction attempt %d/%d failed: %v", attempt, maxAnalysisAttempts, err)

		if appErr, ok := apperrors.As(err); ok && appErr.Kind == apperrors.KindAPI {
			if appErr.StatusCode == http.StatusUnauthorized || appErr.StatusCode == http.StatusForbidden {
				return nil, err
			}
		}

		if attempt < maxAnalysisAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	return nil, lastErr
}

// callChat performs one round trip against the chat completions endpoint and
// returns the raw message content.
func (s *AnalysisService) callChat(ctx context.Context, apiKey, model string, messages []ChatMessage) (string, error) {
	reqBody := ChatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   1500,
		Temperature: 0.2,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperrors.NewNetworkError("failed to reach the analysis service", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewNetworkError("failed to read the analysis response", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[AnalysisService] API request failed with status %d: %s", resp.StatusCode, string(body))
		return "", apperrors.NewAPIError(fmt.Sprintf("analysis request failed with status %d", resp.StatusCode), resp.StatusCode)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", apperrors.NewAPIError("failed to decode the analysis response", 0)
	}
	if len(result.Choices) == 0 {
		return "", apperrors.NewAPIError("no response from the analysis service", 0)
	}
	return result.Choices[0].Message.Content, nil
}

// parseAnalysisContent decodes the model's JSON answer into an analysis
// result. Markdown code fences around the JSON are tolerated.
func parseAnalysisContent(content string) (*types.FoodAnalysisResult, error) {
	var payload struct {
		Foods      []types.FoodItem `json:"foods"`
		Confidence float64          `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(stripMarkdownFences(content)), &payload); err != nil {
		return nil, apperrors.NewAPIError("failed to parse the analysis response", 0)
	}
	if len(payload.Foods) == 0 {
		return nil, ErrNoFoodDetected
	}

	for i := range payload.Foods {
		if payload.Foods[i].Calories < 0 {
			payload.Foods[i].Calories = 0
		}
		payload.Foods[i].Confidence = clamp01(payload.Foods[i].Confidence)
	}

	return &types.FoodAnalysisResult{
		Foods:         payload.Foods,
		TotalCalories: types.SumCalories(payload.Foods),
		Confidence:    clamp01(payload.Confidence),
		Timestamp:     time.Now(),
	}, nil
}

func stripMarkdownFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
