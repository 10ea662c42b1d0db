package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Storage backend names accepted by STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Storage backend selection
	StorageBackend string
	SQLitePath     string

	// Database configuration (postgres backend)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration (redis backend and rate limiting)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Device pairing
	JWTSecret  string
	PairingKey string

	// Food analysis
	OpenAIAPIKey    string
	AnalysisBaseURL string
	AnalysisModels  []string

	// Quota-pressure tuning
	ImageStorageEnabled bool
	MaxImageBytes       int
	PressureThreshold   float64
	CleanupWindowDays   int

	// HTTP surface
	CORSOrigins       []string
	AnalysisRateLimit int
}

// LoadConfig creates a new Config instance from environment variables, with
// Docker secrets as the fallback for sensitive values.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),

		StorageBackend: getEnv("STORAGE_BACKEND", BackendMemory),
		SQLitePath:     getEnv("SQLITE_PATH", "snapcal.db"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnvOrSecret("DB_USER", "db_user", "postgres"),
		DBPassword: getEnvOrSecret("DB_PASSWORD", "db_password", ""),
		DBName:     getEnv("DB_NAME", "snapcal"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrSecret("REDIS_PASSWORD", "redis_password", ""),

		JWTSecret:  getEnvOrSecret("JWT_SECRET", "jwt_secret", ""),
		PairingKey: getEnvOrSecret("PAIRING_KEY", "pairing_key", ""),

		OpenAIAPIKey:    getEnvOrSecret("OPENAI_API_KEY", "openai_api_key", ""),
		AnalysisBaseURL: getEnv("ANALYSIS_BASE_URL", ""),
		AnalysisModels:  splitList(os.Getenv("ANALYSIS_MODELS")),

		ImageStorageEnabled: getEnvBool("IMAGE_STORAGE_ENABLED", false),
		MaxImageBytes:       getEnvInt("MAX_IMAGE_BYTES", 200*1024),
		PressureThreshold:   getEnvFloat("PRESSURE_THRESHOLD", 0.80),
		CleanupWindowDays:   getEnvInt("CLEANUP_WINDOW_DAYS", 30),

		CORSOrigins:       splitList(os.Getenv("CORS_ORIGINS")),
		AnalysisRateLimit: getEnvInt("ANALYSIS_RATE_LIMIT", 10),
	}

	if db, err := strconv.Atoi(getEnv("REDIS_DB", "0")); err == nil {
		cfg.RedisDB = db
	}

	// Development falls back to fixed credentials so the server starts
	// without any setup. Production refuses to.
	if !IsProduction() {
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = "dev-jwt-secret"
		}
		if cfg.PairingKey == "" {
			cfg.PairingKey = "dev-pairing-key"
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// RedisEnabled reports whether a Redis endpoint is configured at all.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// RedisAddr returns the host:port pair for the configured Redis endpoint.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// PostgresDSN returns the connection string for the postgres backend.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// getEnvOrSecret prefers the environment variable, then the Docker secret of
// the given name, then the fallback.
func getEnvOrSecret(envKey, secretName, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(envKey)); value != "" {
		return value
	}
	if value := readSecret(secretName); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
