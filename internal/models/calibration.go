package models

import (
	"time"

	"github.com/google/uuid"
)

// CalibrationRecord captures the calibrated operating point of one condition's
// classifier after a training run. Created once per sweep, never mutated.
type CalibrationRecord struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RunID        uuid.UUID `db:"run_id" json:"run_id"`
	Condition    Condition `db:"condition" json:"condition" validate:"required"`
	Threshold    float64   `db:"threshold" json:"threshold" validate:"gte=0,lte=1"`
	Accuracy     float64   `db:"accuracy" json:"accuracy" validate:"gte=0,lte=1"`
	Precision    float64   `db:"precision" json:"precision" validate:"gte=0,lte=1"`
	Recall       float64   `db:"recall" json:"recall" validate:"gte=0,lte=1"`
	F1           float64   `db:"f1" json:"f1" validate:"gte=0,lte=1"`
	TrainSize    int       `db:"train_size" json:"train_size"`
	EvalSize     int       `db:"eval_size" json:"eval_size"`
	Positives    int       `db:"positives" json:"positives"`
	CalibratedAt time.Time `db:"calibrated_at" json:"calibrated_at"`
}
