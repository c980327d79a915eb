// Package config provides configuration management for the Skycast weather
// prediction service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/skycast/internal/models"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields; a missing config file is not an error, environment variables and
// defaults carry the whole configuration in that case.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SKYCAST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "skycast")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout_seconds", 5)
	v.SetDefault("server.write_timeout_seconds", 10)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.cache_ttl_seconds", 300)
	v.SetDefault("server.cache_max_size", 10000)

	v.SetDefault("dataset.path", "data/weather_cleaned.csv")
	v.SetDefault("dataset.eval_fraction", 0.2)
	v.SetDefault("dataset.seed", 42)
	v.SetDefault("dataset.outlier_iqr_k", 3.0)
	v.SetDefault("dataset.cap_outliers", true)
	v.SetDefault("dataset.oversample", true)

	v.SetDefault("model.rounds", 300)
	v.SetDefault("model.learning_rate", 0.05)
	v.SetDefault("model.max_splits", 32)
	v.SetDefault("model.grid_start", 0.1)
	v.SetDefault("model.grid_stop", 0.9)
	v.SetDefault("model.grid_step", 0.01)
	v.SetDefault("model.recall_weight", 0.6)
	v.SetDefault("model.precision_weight", 0.4)
	v.SetDefault("model.recall_ceiling", 0.75)
	v.SetDefault("model.skip_degenerate", true)
	v.SetDefault("model.workers", 4)

	defaults := models.DefaultLabelThresholds()
	v.SetDefault("labels.rain_trace_in", defaults.RainTraceIn)
	v.SetDefault("labels.very_hot_tmax_f", defaults.VeryHotTmaxF)
	v.SetDefault("labels.very_cold_tmin_f", defaults.VeryColdTminF)
	v.SetDefault("labels.very_wet_prcp_in", defaults.VeryWetPrcpIn)
	v.SetDefault("labels.very_windy_mph", defaults.VeryWindyMph)
	v.SetDefault("labels.very_humid_pct", defaults.VeryHumidPct)
	v.SetDefault("labels.discomfort_heat_weight", defaults.DiscomfortHeatW)
	v.SetDefault("labels.discomfort_humid_weight", defaults.DiscomfortHumidW)
	v.SetDefault("labels.discomfort_wind_weight", defaults.DiscomfortWindW)
	v.SetDefault("labels.discomfort_cut", defaults.DiscomfortCut)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("ingest.output_path", "data/weather_cleaned.csv")
	v.SetDefault("ingest.rate_limit", 10.0)
	v.SetDefault("ingest.timeout_seconds", 30)
	v.SetDefault("ingest.max_retries", 5)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.recalibrate_cron", "0 3 * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
