package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapcal/backend/internal/apperrors"
	"github.com/snapcal/backend/internal/service"
	"github.com/snapcal/backend/internal/types"
)

// EntriesHandler handles food entry endpoints
type EntriesHandler struct {
	storageService service.IStorageService
	optimizer      service.IStorageOptimizer
	archiveService service.IArchiveService
}

// NewEntriesHandler creates a new entries handler
func NewEntriesHandler(storageService service.IStorageService, optimizer service.IStorageOptimizer, archiveService service.IArchiveService) *EntriesHandler {
	return &EntriesHandler{
		storageService: storageService,
		optimizer:      optimizer,
		archiveService: archiveService,
	}
}

// RegisterRoutes registers the entry routes
func (h *EntriesHandler) RegisterRoutes(router *gin.RouterGroup) {
	entries := router.Group("/entries")
	{
		entries.POST("", h.SaveEntry)
		entries.GET("", h.GetEntries)
		entries.DELETE("/:id", h.DeleteEntry)
	}
	router.GET("/week", h.GetWeeklyData)
}

// SaveEntry commits a food entry. The photo, if any, is archived off-device
// first, then the entry is slimmed to the user's preferences and checked
// against remaining storage before it is written. A save that leaves storage
// under pressure triggers a cleanup pass inline.
func (h *EntriesHandler) SaveEntry(c *gin.Context) {
	var req SaveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	draft := types.FoodEntry{
		Timestamp: req.Timestamp,
		Foods:     req.Foods,
		ImageData: req.ImageData,
		ImageURL:  req.ImageURL,
	}

	if draft.ImageData != "" && h.archiveService != nil && h.archiveService.Enabled() {
		url, err := h.archiveService.ArchiveImage(ctx, draft.ImageData)
		if err != nil {
			log.Printf("[EntriesHandler] photo archival failed, keeping entry local: %v", err)
		} else {
			draft.ImageURL = url
		}
	}

	draft = h.optimizer.OptimizeFoodEntry(draft)

	if ok, reason := h.optimizer.CanStoreEntry(ctx, draft); !ok {
		c.Error(apperrors.NewStorageError(reason, apperrors.CodeQuotaExceeded))
		return
	}

	saved, err := h.storageService.SaveFoodEntry(ctx, draft)
	if err != nil {
		c.Error(err)
		return
	}

	if h.optimizer.UnderPressure(ctx) {
		result := h.optimizer.PerformCleanup(ctx)
		if result.DeletedEntries > 0 {
			log.Printf("[EntriesHandler] post-save cleanup removed %d entries, reclaimed %d bytes",
				result.DeletedEntries, result.SpaceSaved)
		}
	}

	c.JSON(http.StatusCreated, saved)
}

// GetEntries lists entries, newest first. A date query narrows the listing to
// one calendar day; "today" resolves to the current local day.
func (h *EntriesHandler) GetEntries(c *gin.Context) {
	ctx := c.Request.Context()

	var entries []types.FoodEntry
	switch date := c.Query("date"); date {
	case "":
		entries = h.storageService.GetAllEntries(ctx)
	case "today":
		entries = h.storageService.GetTodaysEntries(ctx)
	default:
		entries = h.storageService.GetDailyEntries(ctx, date)
	}

	if entries == nil {
		entries = []types.FoodEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// DeleteEntry removes one entry by id.
func (h *EntriesHandler) DeleteEntry(c *gin.Context) {
	id := c.Param("id")

	removed, err := h.storageService.DeleteEntry(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted"})
}

// GetWeeklyData returns the last seven days in ascending order, today last.
func (h *EntriesHandler) GetWeeklyData(c *gin.Context) {
	week := h.storageService.GetWeeklyData(c.Request.Context())
	if week == nil {
		week = []types.DailyData{}
	}
	c.JSON(http.StatusOK, week)
}
