// Package repository provides data access interfaces and PostgreSQL
// implementations for calibration and prediction records.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/skycast/internal/models"
)

// CalibrationRepository persists per-condition calibration results.
type CalibrationRepository interface {
	Create(ctx context.Context, record *models.CalibrationRecord) error
	CreateBatch(ctx context.Context, records []*models.CalibrationRecord) error
	GetLatest(ctx context.Context, condition models.Condition) (*models.CalibrationRecord, error)
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.CalibrationRecord, error)
	History(ctx context.Context, condition models.Condition, limit int) ([]*models.CalibrationRecord, error)
}

// PredictionRepository persists the audit trail of served predictions.
type PredictionRepository interface {
	Create(ctx context.Context, record *models.PredictionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PredictionRecord, error)
	Recent(ctx context.Context, condition models.Condition, limit int) ([]*models.PredictionRecord, error)
	CountByCondition(ctx context.Context) (map[models.Condition]int64, error)
}
