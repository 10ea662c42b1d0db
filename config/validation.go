package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validBackends = map[string]bool{
	BackendMemory:   true,
	BackendSQLite:   true,
	BackendPostgres: true,
	BackendRedis:    true,
}

// ValidateConfig checks the loaded configuration for values that would only
// fail later at runtime. Production additionally refuses to start on the
// development credential fallbacks.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if !validBackends[cfg.StorageBackend] {
		errors = append(errors, fmt.Sprintf("STORAGE_BACKEND %q is not one of memory, sqlite, postgres, redis", cfg.StorageBackend))
	}
	if cfg.StorageBackend == BackendPostgres && cfg.DBPassword == "" {
		errors = append(errors, "DB_PASSWORD (or the db_password secret) is required for the postgres backend")
	}
	if cfg.StorageBackend == BackendRedis && !cfg.RedisEnabled() {
		errors = append(errors, "REDIS_HOST is required for the redis backend")
	}

	if cfg.PressureThreshold <= 0 || cfg.PressureThreshold >= 1 {
		errors = append(errors, fmt.Sprintf("PRESSURE_THRESHOLD %v must be between 0 and 1 exclusive", cfg.PressureThreshold))
	}
	if cfg.CleanupWindowDays <= 0 {
		errors = append(errors, "CLEANUP_WINDOW_DAYS must be positive")
	}
	if cfg.MaxImageBytes <= 0 {
		errors = append(errors, "MAX_IMAGE_BYTES must be positive")
	}
	if cfg.AnalysisRateLimit < 0 {
		errors = append(errors, "ANALYSIS_RATE_LIMIT must not be negative")
	}

	if IsProduction() {
		if cfg.JWTSecret == "" || cfg.JWTSecret == "dev-jwt-secret" {
			errors = append(errors, "JWT_SECRET (or the jwt_secret secret) is required in production")
		}
		if cfg.PairingKey == "" || cfg.PairingKey == "dev-pairing-key" {
			errors = append(errors, "PAIRING_KEY (or the pairing_key secret) is required in production")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
