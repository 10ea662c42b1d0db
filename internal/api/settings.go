package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapcal/backend/internal/service"
	"github.com/snapcal/backend/internal/types"
)

// SettingsHandler handles user settings endpoints
type SettingsHandler struct {
	storageService service.IStorageService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(storageService service.IStorageService) *SettingsHandler {
	return &SettingsHandler{storageService: storageService}
}

// RegisterRoutes registers the settings routes
func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/settings")
	{
		settings.GET("", h.GetSettings)
		settings.PATCH("", h.UpdateSettings)
		settings.PUT("/goal", h.UpdateGoal)
		settings.PUT("/api-key", h.UpdateAPIKey)
	}
}

// GetSettings returns the current settings, falling back to defaults when
// nothing has been stored yet.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings := h.storageService.GetUserSettings(c.Request.Context())
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings applies a partial settings update.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var patch types.UserSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updated, err := h.storageService.UpdateUserSettings(c.Request.Context(), patch)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// UpdateGoal sets the daily calorie goal. Out-of-range goals are rejected.
func (h *SettingsHandler) UpdateGoal(c *gin.Context) {
	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updated, err := h.storageService.UpdateDailyGoal(c.Request.Context(), req.Goal)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// UpdateAPIKey stores the user's own analysis API key.
func (h *SettingsHandler) UpdateAPIKey(c *gin.Context) {
	var req UpdateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updated, err := h.storageService.SetUserAPIKey(c.Request.Context(), req.APIKey)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
