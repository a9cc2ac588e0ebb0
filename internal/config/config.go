package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Warehouse WarehouseConfig
	Auth      AuthConfig
	Rollout   RolloutConfig
	Logging   LoggingConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	FrontendURL     string
	Environment     string
}

// DatabaseConfig contains Postgres configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// WarehouseConfig contains the BigQuery warehouse configuration. The
// warehouse source is used instead of Postgres when ProjectID is set and
// SNAPSHOT_SOURCE=warehouse.
type WarehouseConfig struct {
	ProjectID string
	Dataset   string
	Location  string
}

// AuthConfig contains authentication configuration
type AuthConfig struct {
	JWTSecret         string
	AccessTokenExpiry time.Duration
}

// RolloutConfig contains the resolution engine configuration
type RolloutConfig struct {
	InternalDomain  string
	LicenseTypes    []string
	DefaultRelease  string
	DefaultVersion  string
	DefaultCutoff   time.Time
	Workers         int
	SnapshotSource  string // postgres or warehouse
	RefreshSchedule string // cron spec for the background refresh
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
			Environment:     getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "rollout"),
			User:            getEnv("DB_USER", "rollout"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Warehouse: WarehouseConfig{
			ProjectID: getEnv("WAREHOUSE_PROJECT_ID", ""),
			Dataset:   getEnv("WAREHOUSE_DATASET", "data_room"),
			Location:  getEnv("WAREHOUSE_LOCATION", "US"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		},
		Rollout: RolloutConfig{
			InternalDomain:  getEnv("ROLLOUT_INTERNAL_DOMAIN", "celigo.com"),
			LicenseTypes:    getEnvAsSlice("ROLLOUT_LICENSE_TYPES", []string{"integrator", "endpoint", "platform", "diy"}),
			DefaultRelease:  getEnv("ROLLOUT_DEFAULT_RELEASE", "2025.5.1"),
			DefaultVersion:  getEnv("ROLLOUT_DEFAULT_VERSION", "1.0"),
			DefaultCutoff:   getEnvAsDate("ROLLOUT_DEFAULT_CUTOFF", time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)),
			Workers:         getEnvAsInt("ROLLOUT_WORKERS", 0),
			SnapshotSource:  getEnv("SNAPSHOT_SOURCE", "postgres"),
			RefreshSchedule: getEnv("ROLLOUT_REFRESH_SCHEDULE", "@every 15m"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Rollout.InternalDomain == "" {
		return fmt.Errorf("ROLLOUT_INTERNAL_DOMAIN must be set")
	}

	if len(c.Rollout.LicenseTypes) == 0 {
		return fmt.Errorf("ROLLOUT_LICENSE_TYPES must list at least one type")
	}

	switch c.Rollout.SnapshotSource {
	case "postgres":
	case "warehouse":
		if c.Warehouse.ProjectID == "" {
			return fmt.Errorf("WAREHOUSE_PROJECT_ID must be set when SNAPSHOT_SOURCE=warehouse")
		}
	default:
		return fmt.Errorf("unsupported snapshot source: %s", c.Rollout.SnapshotSource)
	}

	return nil
}

// DSN builds the Postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDate(key string, defaultValue time.Time) time.Time {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.Parse("2006-01-02", valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
