package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/snapcal/backend/internal/apperrors"
	"github.com/snapcal/backend/internal/kvstore"
	"github.com/snapcal/backend/internal/metrics"
	"github.com/snapcal/backend/internal/types"
)

// Persisted key layout. The storage service is the only writer of these keys.
const (
	keyDailyEntries = "DAILY_ENTRIES"
	keyUserSettings = "USER_SETTINGS"
	keyUserProfile  = "USER_PROFILE"
	keyLastCleanup  = "LAST_CLEANUP"
)

// StorageCapacityBytes is the assumed capacity of the backing store. Usage
// reporting is a best-effort estimate against this figure, not an exact quota.
const StorageCapacityBytes = 5 * 1024 * 1024

const (
	maxDailyGoal     = 10000
	minRetentionDays = 1
	maxRetentionDays = 365
	cleanupInterval  = 24 * time.Hour
	dateLayout       = "2006-01-02"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// StorageService owns the domain schema over the key-value store: settings,
// food entries, the user profile, weekly aggregation, and retention cleanup.
// Read paths never fail; corrupted data degrades to defaults and is logged.
// Mutations serialize behind one mutex because the store offers per-call
// atomicity only, not read-modify-write transactions.
type StorageService struct {
	store kvstore.Store
	mu    sync.Mutex
}

// Ensure StorageService implements IStorageService
var _ IStorageService = (*StorageService)(nil)

// NewStorageService creates a new StorageService instance over the given store.
func NewStorageService(store kvstore.Store) *StorageService {
	return &StorageService{store: store}
}

// GetUserSettings returns the settings singleton, substituting the default
// for every missing or corrupt field. A completely unparseable blob yields
// full defaults.
func (s *StorageService) GetUserSettings(ctx context.Context) types.UserSettings {
	return s.readSettings(ctx)
}

// UpdateUserSettings merges the non-nil patch fields onto the current
// settings and persists the result. No range validation happens here; the
// narrower setters enforce their own contracts.
func (s *StorageService) UpdateUserSettings(ctx context.Context, patch types.UserSettingsPatch) (types.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.readSettings(ctx)
	if patch.DailyCalorieGoal != nil {
		settings.DailyCalorieGoal = *patch.DailyCalorieGoal
	}
	if patch.APIKey != nil {
		settings.APIKey = *patch.APIKey
	}
	if patch.Notifications != nil {
		settings.Notifications = *patch.Notifications
	}
	if patch.DataRetentionDays != nil {
		settings.DataRetentionDays = *patch.DataRetentionDays
	}

	if err := s.writeSettings(ctx, settings); err != nil {
		return types.UserSettings{}, err
	}
	return settings, nil
}

// UpdateDailyGoal sets the daily calorie goal. This is the sole entry point
// enforcing the (0,10000] range as a hard contract.
func (s *StorageService) UpdateDailyGoal(ctx context.Context, goal int) (types.UserSettings, error) {
	if goal <= 0 || goal > maxDailyGoal {
		return types.UserSettings{}, apperrors.NewStorageError(
			fmt.Sprintf("daily calorie goal must be between 1 and %d", maxDailyGoal),
			apperrors.CodeValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.readSettings(ctx)
	settings.DailyCalorieGoal = goal
	if err := s.writeSettings(ctx, settings); err != nil {
		return types.UserSettings{}, err
	}
	return settings, nil
}

// SetUserAPIKey stores the user's analysis-credential override. The key must
// be non-empty after trimming and free of whitespace.
func (s *StorageService) SetUserAPIKey(ctx context.Context, key string) (types.UserSettings, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return types.UserSettings{}, apperrors.NewStorageError("API key must not be empty", apperrors.CodeValidation)
	}
	if strings.ContainsAny(key, " \t\n") {
		return types.UserSettings{}, apperrors.NewStorageError("API key must not contain whitespace", apperrors.CodeValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.readSettings(ctx)
	settings.APIKey = key
	if err := s.writeSettings(ctx, settings); err != nil {
		return types.UserSettings{}, err
	}
	return settings, nil
}

// SaveFoodEntry commits a draft entry: assigns a fresh ID, derives the date
// from the timestamp's local day, re-derives the calorie total from the foods
// list, validates the structural shape, and persists the full set sorted
// newest first. After a successful save it opportunistically runs the
// once-daily retention cleanup; a cleanup failure never fails the save.
func (s *StorageService) SaveFoodEntry(ctx context.Context, draft types.FoodEntry) (*types.FoodEntry, error) {
	entry := draft
	entry.ID = uuid.NewString()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.Date = entry.Timestamp.Format(dateLayout)
	entry.TotalCalories = types.SumCalories(entry.Foods)

	if err := validateEntry(entry); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.readEntries(ctx)
	entries = append(entries, entry)
	sortEntriesNewestFirst(entries)

	if err := s.writeEntries(ctx, entries); err != nil {
		return nil, err
	}

	s.runRetentionCleanupLocked(ctx)

	return &entry, nil
}

// GetAllEntries returns every structurally valid entry, newest first.
func (s *StorageService) GetAllEntries(ctx context.Context) []types.FoodEntry {
	return s.readEntries(ctx)
}

// GetDailyEntries returns the entries whose date matches exactly.
func (s *StorageService) GetDailyEntries(ctx context.Context, date string) []types.FoodEntry {
	var result []types.FoodEntry
	for _, entry := range s.readEntries(ctx) {
		if entry.Date == date {
			result = append(result, entry)
		}
	}
	return result
}

// GetTodaysEntries returns the entries recorded today.
func (s *StorageService) GetTodaysEntries(ctx context.Context) []types.FoodEntry {
	return s.GetDailyEntries(ctx, time.Now().Format(dateLayout))
}

// GetWeeklyData returns exactly seven days ending today, oldest first. Goal
// comparisons use the current goal, not the goal at entry time.
func (s *StorageService) GetWeeklyData(ctx context.Context) []types.DailyData {
	goal := s.readSettings(ctx).DailyCalorieGoal

	byDate := make(map[string][]types.FoodEntry)
	for _, entry := range s.readEntries(ctx) {
		byDate[entry.Date] = append(byDate[entry.Date], entry)
	}

	week := make([]types.DailyData, 0, 7)
	now := time.Now()
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(dateLayout)
		entries := byDate[date]
		if entries == nil {
			entries = []types.FoodEntry{}
		}

		var total float64
		for _, entry := range entries {
			total += entry.TotalCalories
		}

		week = append(week, types.DailyData{
			Date:          date,
			TotalCalories: total,
			GoalCalories:  goal,
			Entries:       entries,
			GoalMet:       total >= float64(goal),
		})
	}
	return week
}

// DeleteEntry removes the entry with the given ID. Returns false, without
// error, when no such entry exists.
func (s *StorageService) DeleteEntry(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.readEntries(ctx)
	index := -1
	for i, entry := range entries {
		if entry.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return false, nil
	}

	entries = append(entries[:index], entries[index+1:]...)
	if err := s.writeEntries(ctx, entries); err != nil {
		return false, err
	}
	return true, nil
}

// ClearAllData removes every persisted key owned by this service.
func (s *StorageService) ClearAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, key := range []string{keyDailyEntries, keyUserSettings, keyUserProfile, keyLastCleanup} {
		if err := s.store.Remove(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return apperrors.WrapStorageError("failed to clear stored data", "", firstErr)
	}
	return nil
}

// GetUserProfile returns the stored profile, or nil when none exists or the
// stored envelope is corrupt.
func (s *StorageService) GetUserProfile(ctx context.Context) *types.UserProfile {
	raw, err := s.store.Get(ctx, keyUserProfile)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		log.Printf("[StorageService] failed to read profile: %v", err)
		return nil
	}

	var envelope types.StoredProfile
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		log.Printf("[StorageService] failed to parse stored profile, treating as absent: %v", err)
		return nil
	}
	if envelope.Version != types.StoredProfileVersion {
		log.Printf("[StorageService] unexpected profile envelope version %q", envelope.Version)
	}
	if envelope.Checksum != "" {
		if sum, err := profileChecksum(envelope.Profile); err != nil || sum != envelope.Checksum {
			log.Printf("[StorageService] profile checksum mismatch, treating as corrupt")
			return nil
		}
	}

	profile := envelope.Profile
	return &profile
}

// MarkOnboardingComplete stores the profile with the completed flag set,
// wrapped in the versioned envelope with a fresh checksum. The original
// creation time survives resaves.
func (s *StorageService) MarkOnboardingComplete(ctx context.Context, profile types.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	profile.HasCompletedOnboarding = true
	profile.Metadata.LastUpdated = now
	if existing := s.GetUserProfile(ctx); existing != nil && !existing.Metadata.CreatedAt.IsZero() {
		profile.Metadata.CreatedAt = existing.Metadata.CreatedAt
	} else if profile.Metadata.CreatedAt.IsZero() {
		profile.Metadata.CreatedAt = now
	}

	checksum, err := profileChecksum(profile)
	if err != nil {
		return apperrors.WrapStorageError("failed to encode profile", apperrors.CodeSerialization, err)
	}

	envelope := types.StoredProfile{
		Version:  types.StoredProfileVersion,
		Profile:  profile,
		Checksum: checksum,
	}
	blob, err := json.Marshal(envelope)
	if err != nil {
		return apperrors.WrapStorageError("failed to encode profile", apperrors.CodeSerialization, err)
	}
	if err := s.store.Set(ctx, keyUserProfile, string(blob)); err != nil {
		return apperrors.WrapStorageError("failed to save profile", "", err)
	}
	return nil
}

// HasCompletedOnboarding reports whether a stored profile exists with its
// completed flag set. Absent and incomplete profiles both report false.
func (s *StorageService) HasCompletedOnboarding(ctx context.Context) bool {
	profile := s.GetUserProfile(ctx)
	return profile != nil && profile.HasCompletedOnboarding
}

// CalculateDailyCalories derives the calorie goal from a profile. Unavailable
// when the profile is missing required fields.
func (s *StorageService) CalculateDailyCalories(profile types.UserProfile) (int, bool) {
	return metrics.CalculateCalorieGoal(profile)
}

// GetStorageInfo estimates usage by summing the byte length of every
// persisted key and value against the assumed capacity.
func (s *StorageService) GetStorageInfo(ctx context.Context) types.StorageInfo {
	var used int64
	for _, key := range []string{keyDailyEntries, keyUserSettings, keyUserProfile, keyLastCleanup} {
		value, err := s.store.Get(ctx, key)
		if err != nil {
			continue
		}
		used += int64(len(key) + len(value))
	}

	available := int64(StorageCapacityBytes) - used
	if available < 0 {
		available = 0
	}
	return types.StorageInfo{
		Used:       used,
		Available:  available,
		Percentage: float64(used) / float64(StorageCapacityBytes) * 100,
	}
}

// --- internals ---

// readSettings parses stored settings field by field so one corrupt field
// falls back to its default without discarding the rest.
func (s *StorageService) readSettings(ctx context.Context) types.UserSettings {
	settings := types.DefaultUserSettings()

	raw, err := s.store.Get(ctx, keyUserSettings)
	if errors.Is(err, kvstore.ErrNotFound) {
		return settings
	}
	if err != nil {
		log.Printf("[StorageService] failed to read settings, using defaults: %v", err)
		return settings
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		log.Printf("[StorageService] failed to parse stored settings, using defaults: %v", err)
		return settings
	}

	if b, ok := fields["daily_calorie_goal"]; ok {
		var v int
		if json.Unmarshal(b, &v) == nil {
			settings.DailyCalorieGoal = v
		}
	}
	if b, ok := fields["api_key"]; ok {
		var v string
		if json.Unmarshal(b, &v) == nil {
			settings.APIKey = v
		}
	}
	if b, ok := fields["notifications"]; ok {
		var v bool
		if json.Unmarshal(b, &v) == nil {
			settings.Notifications = v
		}
	}
	if b, ok := fields["data_retention_days"]; ok {
		var v int
		if json.Unmarshal(b, &v) == nil {
			settings.DataRetentionDays = v
		}
	}
	return settings
}

func (s *StorageService) writeSettings(ctx context.Context, settings types.UserSettings) error {
	blob, err := json.Marshal(settings)
	if err != nil {
		return apperrors.WrapStorageError("failed to encode settings", apperrors.CodeSerialization, err)
	}
	if err := s.store.Set(ctx, keyUserSettings, string(blob)); err != nil {
		return apperrors.WrapStorageError("failed to save settings", "", err)
	}
	return nil
}

// readEntries returns the stored entries, dropping any element that fails to
// decode or fails structural validation. A blob that cannot be parsed at all
// degrades to an empty list.
func (s *StorageService) readEntries(ctx context.Context) []types.FoodEntry {
	raw, err := s.store.Get(ctx, keyDailyEntries)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		log.Printf("[StorageService] failed to read entries: %v", err)
		return nil
	}

	var rawEntries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &rawEntries); err != nil {
		log.Printf("[StorageService] failed to parse stored entries, returning none: %v", err)
		return nil
	}

	entries := make([]types.FoodEntry, 0, len(rawEntries))
	dropped := 0
	for _, blob := range rawEntries {
		var entry types.FoodEntry
		if err := json.Unmarshal(blob, &entry); err != nil || entry.ID == "" || validateEntry(entry) != nil {
			dropped++
			continue
		}
		entries = append(entries, entry)
	}
	if dropped > 0 {
		log.Printf("[StorageService] dropped %d corrupted entries from read", dropped)
	}
	return entries
}

func (s *StorageService) writeEntries(ctx context.Context, entries []types.FoodEntry) error {
	blob, err := json.Marshal(entries)
	if err != nil {
		return apperrors.WrapStorageError("failed to encode entries", apperrors.CodeSerialization, err)
	}
	if err := s.store.Set(ctx, keyDailyEntries, string(blob)); err != nil {
		return apperrors.WrapStorageError("failed to save entries", "", err)
	}
	return nil
}

// runRetentionCleanupLocked deletes entries older than the retention window,
// at most once per 24h. Callers must hold the mutex. Failures are logged and
// swallowed so they never abort the save that triggered them.
func (s *StorageService) runRetentionCleanupLocked(ctx context.Context) {
	raw, err := s.store.Get(ctx, keyLastCleanup)
	if err == nil {
		if ms, parseErr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); parseErr == nil {
			if time.Since(time.UnixMilli(ms)) < cleanupInterval {
				return
			}
		}
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		log.Printf("[StorageService] failed to read cleanup marker: %v", err)
		return
	}

	retention := s.readSettings(ctx).DataRetentionDays
	if retention < minRetentionDays || retention > maxRetentionDays {
		log.Printf("[StorageService] stored retention %d out of range, using default", retention)
		retention = types.DefaultUserSettings().DataRetentionDays
	}
	cutoff := time.Now().AddDate(0, 0, -retention).Format(dateLayout)

	entries := s.readEntries(ctx)
	kept := make([]types.FoodEntry, 0, len(entries))
	removed := 0
	for _, entry := range entries {
		if entry.Date < cutoff {
			removed++
			continue
		}
		kept = append(kept, entry)
	}

	if removed > 0 {
		if err := s.writeEntries(ctx, kept); err != nil {
			log.Printf("[StorageService] retention cleanup failed: %v", err)
			return
		}
		log.Printf("[StorageService] retention cleanup removed %d entries older than %s", removed, cutoff)
	}

	marker := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := s.store.Set(ctx, keyLastCleanup, marker); err != nil {
		log.Printf("[StorageService] failed to update cleanup marker: %v", err)
	}
}

// validateEntry checks the structural shape shared by the save and read
// paths: at least one food, non-negative calories, and a well-formed date.
func validateEntry(entry types.FoodEntry) error {
	if len(entry.Foods) == 0 {
		return apperrors.NewStorageError("food entry must contain at least one food item", apperrors.CodeValidation)
	}
	for _, food := range entry.Foods {
		if food.Calories < 0 {
			return apperrors.NewStorageError(
				fmt.Sprintf("food item %q has negative calories", food.Name),
				apperrors.CodeValidation)
		}
	}
	if entry.TotalCalories < 0 {
		return apperrors.NewStorageError("total calories must not be negative", apperrors.CodeValidation)
	}
	if !datePattern.MatchString(entry.Date) {
		return apperrors.NewStorageError(
			fmt.Sprintf("entry date %q is not in YYYY-MM-DD form", entry.Date),
			apperrors.CodeValidation)
	}
	return nil
}

func sortEntriesNewestFirst(entries []types.FoodEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}

func profileChecksum(profile types.UserProfile) (string, error) {
	blob, err := json.Marshal(profile)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:]), nil
}
