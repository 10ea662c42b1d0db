package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/snapcal/backend/internal/models"
)

// GormStore persists keys as rows in the kv_records table. The same
// implementation serves SQLite and Postgres; the dialect comes from the
// *gorm.DB handed in.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over an open GORM connection. The kv_records
// table must already exist (AutoMigrate or cmd/migrate).
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, key string) (string, error) {
	var rec models.KVRecord
	err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return rec.Value, nil
}

func (s *GormStore) Set(ctx context.Context, key, value string) error {
	rec := models.KVRecord{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (s *GormStore) Remove(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Delete(&models.KVRecord{}, "key = ?", key).Error
	if err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

var _ Store = (*GormStore)(nil)
