package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapcal/backend/internal/health"
	"github.com/snapcal/backend/internal/metrics"
	"github.com/snapcal/backend/internal/service"
	"github.com/snapcal/backend/internal/types"
)

// ProfileHandler handles user profile and derived metrics endpoints
type ProfileHandler struct {
	storageService service.IStorageService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(storageService service.IStorageService) *ProfileHandler {
	return &ProfileHandler{storageService: storageService}
}

// RegisterRoutes registers the profile routes
func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.GET("/status", h.GetOnboardingStatus)
		profile.POST("/complete", h.CompleteOnboarding)
		profile.GET("/metrics", h.GetHealthMetrics)
	}
}

// GetProfile returns the stored profile, or 404 when onboarding has never
// completed.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile := h.storageService.GetUserProfile(c.Request.Context())
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetOnboardingStatus reports whether onboarding has completed. Unlike
// GetProfile this never 404s, so clients can check it before deciding to show
// the onboarding flow.
func (h *ProfileHandler) GetOnboardingStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"has_completed_onboarding": h.storageService.HasCompletedOnboarding(c.Request.Context()),
	})
}

// CompleteOnboarding validates and stores the submitted profile. Physiological
// values outside accepted ranges are rejected; absent fields are fine. The
// response carries the computed daily goal when the profile supports one.
func (h *ProfileHandler) CompleteOnboarding(c *gin.Context) {
	var profile types.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if result := health.ValidateMetrics(profile); !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile values", "details": result.Errors})
		return
	}

	if err := h.storageService.MarkOnboardingComplete(c.Request.Context(), profile); err != nil {
		c.Error(err)
		return
	}

	resp := gin.H{"message": "Onboarding complete"}
	if goal, ok := h.storageService.CalculateDailyCalories(profile); ok {
		resp["daily_calorie_goal"] = goal
	}
	c.JSON(http.StatusOK, resp)
}

// GetHealthMetrics derives BMR, TDEE, calorie goal, and BMI from the stored
// profile. Metrics degrade independently; whatever cannot be computed is
// omitted and listed under missing_fields, with a gender-based fallback goal
// when no goal could be computed.
func (h *ProfileHandler) GetHealthMetrics(c *gin.Context) {
	var profile types.UserProfile
	if stored := h.storageService.GetUserProfile(c.Request.Context()); stored != nil {
		profile = *stored
	}

	derived := metrics.CalculateAll(profile)
	missing := metrics.MissingDataFields(profile)
	if missing == nil {
		missing = []string{}
	}

	resp := MetricsResponse{Metrics: derived, MissingFields: missing}
	if derived.CalorieGoal == nil {
		fallback := metrics.DefaultCalorieGoal(profile.PersonalInfo.Gender)
		resp.FallbackCalorieGoal = &fallback
	}

	c.JSON(http.StatusOK, resp)
}
