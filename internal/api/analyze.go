package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapcal/backend/internal/service"
)

// AnalyzeHandler handles food photo analysis endpoints
type AnalyzeHandler struct {
	analysisService service.IAnalysisService
	storageService  service.IStorageService
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analysisService service.IAnalysisService, storageService service.IStorageService) *AnalyzeHandler {
	return &AnalyzeHandler{
		analysisService: analysisService,
		storageService:  storageService,
	}
}

// RegisterRoutes registers the analysis routes
func (h *AnalyzeHandler) RegisterRoutes(router *gin.RouterGroup) {
	analyze := router.Group("/analyze")
	{
		analyze.POST("", h.AnalyzeImage)
		analyze.POST("/correct", h.CorrectFoodItem)
	}
}

// analyzeOptions resolves the per-request analysis options. A key stored in
// settings takes precedence over the server-wide one.
func (h *AnalyzeHandler) analyzeOptions(c *gin.Context) service.AnalyzeOptions {
	settings := h.storageService.GetUserSettings(c.Request.Context())
	return service.AnalyzeOptions{APIKey: settings.APIKey}
}

// AnalyzeImage recognizes the foods in a photo and estimates their calories.
func (h *AnalyzeHandler) AnalyzeImage(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.analysisService.AnalyzeImage(c.Request.Context(), req.Image, h.analyzeOptions(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CorrectFoodItem reworks one recognized item with the user's free-text
// correction and returns the result with its calorie total re-derived.
func (h *AnalyzeHandler) CorrectFoodItem(c *gin.Context) {
	var req CorrectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.analysisService.CorrectFoodItem(c.Request.Context(), &req.Result, req.Index, req.Correction, h.analyzeOptions(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
