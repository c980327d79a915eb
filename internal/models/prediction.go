package models

import (
	"time"

	"github.com/google/uuid"
)

// PredictionRecord is the audit row written for every prediction served.
type PredictionRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Condition   Condition `db:"condition" json:"condition" validate:"required"`
	Probability float64   `db:"probability" json:"probability" validate:"gte=0,lte=1"`
	Predicted   bool      `db:"predicted" json:"predicted"`
	Threshold   float64   `db:"threshold" json:"threshold" validate:"gte=0,lte=1"`
	Confidence  float64   `db:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	Latitude    float64   `db:"latitude" json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64   `db:"longitude" json:"longitude" validate:"gte=-180,lte=180"`
	Year        int       `db:"year" json:"year"`
	Month       int       `db:"month" json:"month" validate:"gte=1,lte=12"`
	Day         int       `db:"day" json:"day" validate:"gte=1,lte=31"`
	PredictedAt time.Time `db:"predicted_at" json:"predicted_at"`
}

// MeetsThreshold reports whether the probability clears the given cutoff.
func (p *PredictionRecord) MeetsThreshold(threshold float64) bool {
	return p.Probability >= threshold
}
