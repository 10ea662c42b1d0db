package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/snapcal/backend/internal/models"
)

// RunMigrations brings the schema up to date. The whole domain persists
// through one key-value table, so GORM auto-migration covers every dialect.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.KVRecord{}); err != nil {
		return fmt.Errorf("failed to migrate kv_records: %w", err)
	}
	log.Printf("Database schema is up to date")
	return nil
}
