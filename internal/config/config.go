// Package config provides configuration management for the Skycast weather
// prediction service.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/skycast/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig              `mapstructure:"app" validate:"required"`
	Server    ServerConfig           `mapstructure:"server" validate:"required"`
	Dataset   DatasetConfig          `mapstructure:"dataset" validate:"required"`
	Model     ModelConfig            `mapstructure:"model" validate:"required"`
	Labels    models.LabelThresholds `mapstructure:"labels"`
	Database  DatabaseConfig         `mapstructure:"database"`
	Ingest    IngestConfig           `mapstructure:"ingest"`
	Scheduler SchedulerConfig        `mapstructure:"scheduler"`
	Metrics   MetricsConfig          `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Port            int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSec  int      `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSec int      `mapstructure:"write_timeout_seconds" validate:"gte=0"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	CacheTTLSeconds int      `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CacheMaxSize    int      `mapstructure:"cache_max_size" validate:"gte=0"`
}

// DatasetConfig points at the cleaned climate table and controls the
// train/eval split.
type DatasetConfig struct {
	Path         string  `mapstructure:"path" validate:"required"`
	EvalFraction float64 `mapstructure:"eval_fraction" validate:"required,gt=0,lt=1"`
	Seed         int64   `mapstructure:"seed"`
	OutlierIQRK  float64 `mapstructure:"outlier_iqr_k" validate:"gte=0"`
	CapOutliers  bool    `mapstructure:"cap_outliers"`
	Oversample   bool    `mapstructure:"oversample"`
}

// ModelConfig carries classifier hyperparameters and the threshold search
// settings. The objective weights and the recall ceiling are empirical
// constants with no documented derivation; they stay configurable rather
// than hard-coded.
type ModelConfig struct {
	Rounds          int     `mapstructure:"rounds" validate:"required,gt=0"`
	LearningRate    float64 `mapstructure:"learning_rate" validate:"required,gt=0"`
	MaxSplits       int     `mapstructure:"max_splits" validate:"gte=0"`
	GridStart       float64 `mapstructure:"grid_start" validate:"required,gt=0,lt=1"`
	GridStop        float64 `mapstructure:"grid_stop" validate:"required,gt=0,lte=1"`
	GridStep        float64 `mapstructure:"grid_step" validate:"required,gt=0"`
	RecallWeight    float64 `mapstructure:"recall_weight" validate:"required,gte=0"`
	PrecisionWeight float64 `mapstructure:"precision_weight" validate:"required,gte=0"`
	RecallCeiling   float64 `mapstructure:"recall_ceiling" validate:"gte=0,lte=1"`
	SkipDegenerate  bool    `mapstructure:"skip_degenerate"`
	Workers         int     `mapstructure:"workers" validate:"gte=0"`
}

// DatabaseConfig represents database connection configuration. Persistence
// is optional; the service runs fully in-memory when disabled.
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required_if=Enabled true"`
	User               string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// IngestConfig represents dataset ingestion configuration
type IngestConfig struct {
	Sources    []SourceConfig `mapstructure:"sources"`
	OutputPath string         `mapstructure:"output_path"`
	RateLimit  float64        `mapstructure:"rate_limit" validate:"gte=0"`
	TimeoutSec int            `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries int            `mapstructure:"max_retries" validate:"gte=0"`
}

// SourceConfig represents a single climate data source
type SourceConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Path    string `mapstructure:"path"`
	URL     string `mapstructure:"url" validate:"omitempty,url"`
	APIKey  string `mapstructure:"api_key"`
	Enabled bool   `mapstructure:"enabled"`
}

// SchedulerConfig controls periodic recalibration.
type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	RecalibrateCron string `mapstructure:"recalibrate_cron" validate:"required_if=Enabled true"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// CacheTTL returns the prediction cache TTL as a duration.
func (c *ServerConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
