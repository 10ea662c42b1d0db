package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapcal/backend/internal/service"
)

// StorageHandler handles storage usage and maintenance endpoints
type StorageHandler struct {
	storageService service.IStorageService
	optimizer      service.IStorageOptimizer
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(storageService service.IStorageService, optimizer service.IStorageOptimizer) *StorageHandler {
	return &StorageHandler{storageService: storageService, optimizer: optimizer}
}

// RegisterRoutes registers the storage routes
func (h *StorageHandler) RegisterRoutes(router *gin.RouterGroup) {
	storage := router.Group("/storage")
	{
		storage.GET("", h.GetStorageStatus)
		storage.POST("/cleanup", h.Cleanup)
	}
	router.DELETE("/data", h.ClearData)
}

// GetStorageStatus reports usage, cleanup recommendations, and whether storage
// is under pressure. Read-only; nothing is deleted here.
func (h *StorageHandler) GetStorageStatus(c *gin.Context) {
	ctx := c.Request.Context()

	c.JSON(http.StatusOK, StorageResponse{
		Info:            h.storageService.GetStorageInfo(ctx),
		Recommendations: h.optimizer.GetRecommendations(ctx),
		UnderPressure:   h.optimizer.UnderPressure(ctx),
	})
}

// Cleanup runs the staged cleanup passes and reports what was reclaimed.
func (h *StorageHandler) Cleanup(c *gin.Context) {
	result := h.optimizer.PerformCleanup(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

// ClearData wipes all stored data for the device.
func (h *StorageHandler) ClearData(c *gin.Context) {
	if err := h.storageService.ClearAllData(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All data cleared"})
}
