// Package config provides configuration management for the Skycast weather
// prediction service.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/skycast/internal/models"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)
	v.RegisterValidation("condition", validateCondition)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCondition validates a condition name field
func validateCondition(fl validator.FieldLevel) bool {
	return models.Condition(fl.Field().String()).Valid()
}

// validateCrossField applies validations spanning multiple fields
func validateCrossField(cfg *Config) error {
	if cfg.Model.GridStop <= cfg.Model.GridStart {
		return fmt.Errorf("model.grid_stop (%v) must exceed model.grid_start (%v)",
			cfg.Model.GridStop, cfg.Model.GridStart)
	}
	if cfg.Model.GridStep >= cfg.Model.GridStop-cfg.Model.GridStart {
		return fmt.Errorf("model.grid_step (%v) leaves an empty threshold grid", cfg.Model.GridStep)
	}
	if cfg.Model.RecallWeight+cfg.Model.PrecisionWeight == 0 {
		return fmt.Errorf("model objective weights must not both be zero")
	}
	for _, source := range cfg.Ingest.Sources {
		if source.Enabled && source.Path == "" && source.URL == "" {
			return fmt.Errorf("ingest source %q needs a path or url", source.Name)
		}
	}
	return nil
}

// formatValidationErrors converts validator errors into a readable message
func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, fmt.Sprintf("%s failed on %q", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}
