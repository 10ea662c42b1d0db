package service

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"time"

	"github.com/snapcal/backend/internal/types"
)

const (
	defaultPressureThreshold = 0.80
	defaultCleanupWindowDays = 30
	defaultMaxImageBytes     = 200 * 1024

	// storageHardCap is the usage ratio no single save may push past.
	storageHardCap = 0.95

	// Entries whose mean food confidence falls below this are advisory
	// pruning candidates.
	lowConfidenceMean = 0.5

	// Share of remaining entries removed by the final cleanup pass.
	lowConfidenceShare = 0.30

	// Ingredient lists on items at or below this confidence are assumed
	// unreliable and stripped before save.
	ingredientConfidenceCutoff = 0.7
)

// OptimizerConfig tunes the quota-pressure policy. Zero values fall back to
// the defaults.
type OptimizerConfig struct {
	PressureThreshold   float64
	CleanupWindowDays   int
	ImageStorageEnabled bool
	MaxImageBytes       int
}

// DefaultOptimizerConfig returns the stock tuning: cleanup at 80% usage, a
// 30-day window, and images stripped rather than stored.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		PressureThreshold: defaultPressureThreshold,
		CleanupWindowDays: defaultCleanupWindowDays,
		MaxImageBytes:     defaultMaxImageBytes,
	}
}

func (c OptimizerConfig) withDefaults() OptimizerConfig {
	if c.PressureThreshold <= 0 || c.PressureThreshold >= 1 {
		c.PressureThreshold = defaultPressureThreshold
	}
	if c.CleanupWindowDays <= 0 {
		c.CleanupWindowDays = defaultCleanupWindowDays
	}
	if c.MaxImageBytes <= 0 {
		c.MaxImageBytes = defaultMaxImageBytes
	}
	return c
}

// OptimizationRecommendations summarizes what a cleanup could reclaim without
// touching anything.
type OptimizationRecommendations struct {
	EntriesWithImages    int   `json:"entries_with_images"`
	EntriesPastWindow    int   `json:"entries_past_window"`
	LowConfidenceEntries int   `json:"low_confidence_entries"`
	RecoverableBytes     int64 `json:"recoverable_bytes"`
}

// CleanupResult reports what a cleanup pass actually removed.
type CleanupResult struct {
	DeletedEntries int   `json:"deleted_entries"`
	SpaceSaved     int64 `json:"space_saved"`
}

// StorageOptimizer applies the quota-pressure policy on top of the storage
// service: pre-save size checks, entry slimming, and a bounded three-pass
// cleanup. It never holds state of its own; every call reads fresh.
type StorageOptimizer struct {
	storage IStorageService
	images  IImageService
	cfg     OptimizerConfig
}

// Ensure StorageOptimizer implements IStorageOptimizer
var _ IStorageOptimizer = (*StorageOptimizer)(nil)

// NewStorageOptimizer creates a new StorageOptimizer instance. The image
// service may be nil when image storage is disabled.
func NewStorageOptimizer(storage IStorageService, images IImageService, cfg OptimizerConfig) *StorageOptimizer {
	return &StorageOptimizer{storage: storage, images: images, cfg: cfg.withDefaults()}
}

// UnderPressure reports whether usage has crossed the cleanup threshold.
func (o *StorageOptimizer) UnderPressure(ctx context.Context) bool {
	return o.storage.GetStorageInfo(ctx).Percentage >= o.cfg.PressureThreshold*100
}

// CanStoreEntry estimates the serialized size of the entry and rejects, with
// a human-readable reason, when there is no headroom for it or storing it
// would push usage past the hard cap.
func (o *StorageOptimizer) CanStoreEntry(ctx context.Context, entry types.FoodEntry) (bool, string) {
	size := entrySize(entry)
	info := o.storage.GetStorageInfo(ctx)

	if size > info.Available {
		return false, "Not enough free storage for this entry. Try cleaning up old entries first."
	}
	if float64(info.Used+size) > storageHardCap*StorageCapacityBytes {
		return false, "Storing this entry would fill the available storage. Try cleaning up old entries first."
	}
	return true, ""
}

// GetRecommendations is a read-only advisory: it counts image-bearing,
// expired, and low-confidence entries and estimates the recoverable space.
// It never modifies the store.
func (o *StorageOptimizer) GetRecommendations(ctx context.Context) OptimizationRecommendations {
	cutoff := time.Now().AddDate(0, 0, -o.cfg.CleanupWindowDays).Format(dateLayout)

	var rec OptimizationRecommendations
	for _, entry := range o.storage.GetAllEntries(ctx) {
		expired := entry.Date < cutoff
		hasImage := entry.ImageData != ""
		lowConfidence := meanConfidence(entry) < lowConfidenceMean

		if hasImage {
			rec.EntriesWithImages++
		}
		if expired {
			rec.EntriesPastWindow++
		}
		if lowConfidence {
			rec.LowConfidenceEntries++
		}

		// Each entry contributes to the estimate once, at its largest saving.
		switch {
		case expired, lowConfidence:
			rec.RecoverableBytes += entrySize(entry)
		case hasImage:
			rec.RecoverableBytes += int64(len(entry.ImageData))
		}
	}
	return rec
}

// PerformCleanup reclaims space in three ordered passes: expired entries
// first, then every image-bearing entry, then the lowest-confidence 30% of
// whatever remains (oldest first on ties). Later passes only run while usage
// stays above the threshold. Each pass runs at most once; cleanup never loops
// to convergence.
func (o *StorageOptimizer) PerformCleanup(ctx context.Context) CleanupResult {
	before := o.storage.GetStorageInfo(ctx)
	deleted := 0

	cutoff := time.Now().AddDate(0, 0, -o.cfg.CleanupWindowDays).Format(dateLayout)
	for _, entry := range o.storage.GetAllEntries(ctx) {
		if entry.Date < cutoff {
			deleted += o.deleteQuietly(ctx, entry.ID)
		}
	}

	if o.UnderPressure(ctx) {
		for _, entry := range o.storage.GetAllEntries(ctx) {
			if entry.ImageData != "" {
				deleted += o.deleteQuietly(ctx, entry.ID)
			}
		}
	}

	if o.UnderPressure(ctx) {
		remaining := o.storage.GetAllEntries(ctx)
		sort.SliceStable(remaining, func(i, j int) bool {
			ci, cj := meanConfidence(remaining[i]), meanConfidence(remaining[j])
			if ci != cj {
				return ci < cj
			}
			return remaining[i].Timestamp.Before(remaining[j].Timestamp)
		})
		quota := int(float64(len(remaining)) * lowConfidenceShare)
		for i := 0; i < quota; i++ {
			deleted += o.deleteQuietly(ctx, remaining[i].ID)
		}
	}

	after := o.storage.GetStorageInfo(ctx)
	saved := before.Used - after.Used
	if saved < 0 {
		saved = 0
	}
	if deleted > 0 {
		log.Printf("[StorageOptimizer] cleanup removed %d entries, reclaimed %d bytes", deleted, saved)
	}
	return CleanupResult{DeletedEntries: deleted, SpaceSaved: saved}
}

// OptimizeFoodEntry slims a draft entry before save: the embedded image is
// compressed when image storage is enabled and dropped otherwise, and
// ingredient lists are stripped from low-confidence items. The input entry
// is not modified.
func (o *StorageOptimizer) OptimizeFoodEntry(entry types.FoodEntry) types.FoodEntry {
	if entry.ImageData != "" {
		switch {
		case !o.cfg.ImageStorageEnabled:
			entry.ImageData = ""
		case o.images != nil:
			compressed, err := o.images.CompressImage(entry.ImageData, o.cfg.MaxImageBytes)
			if err != nil {
				log.Printf("[StorageOptimizer] image compression failed, dropping image: %v", err)
				entry.ImageData = ""
			} else {
				entry.ImageData = compressed
			}
		}
	}

	foods := make([]types.FoodItem, len(entry.Foods))
	copy(foods, entry.Foods)
	for i := range foods {
		if foods[i].Confidence <= ingredientConfidenceCutoff {
			foods[i].Ingredients = nil
		}
	}
	entry.Foods = foods
	return entry
}

func (o *StorageOptimizer) deleteQuietly(ctx context.Context, id string) int {
	removed, err := o.storage.DeleteEntry(ctx, id)
	if err != nil {
		log.Printf("[StorageOptimizer] failed to delete entry %s: %v", id, err)
		return 0
	}
	if !removed {
		return 0
	}
	return 1
}

func entrySize(entry types.FoodEntry) int64 {
	blob, err := json.Marshal(entry)
	if err != nil {
		return int64(len(entry.ImageData))
	}
	return int64(len(blob))
}

func meanConfidence(entry types.FoodEntry) float64 {
	if len(entry.Foods) == 0 {
		return 0
	}
	var sum float64
	for _, food := range entry.Foods {
		sum += food.Confidence
	}
	return sum / float64(len(entry.Foods))
}
