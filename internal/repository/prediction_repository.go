package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/skycast/internal/database"
	"github.com/yourusername/skycast/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

const predictionColumns = `id, condition, probability, predicted, threshold, confidence, latitude, longitude, year, month, day, predicted_at`

// Create inserts a prediction audit record
func (r *PostgresPredictionRepository) Create(ctx context.Context, record *models.PredictionRecord) error {
	query := `
		INSERT INTO predictions (` + predictionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		record.ID, record.Condition, record.Probability, record.Predicted,
		record.Threshold, record.Confidence, record.Latitude, record.Longitude,
		record.Year, record.Month, record.Day, record.PredictedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prediction record: %w", err)
	}

	return nil
}

// GetByID retrieves a prediction record by ID
func (r *PostgresPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PredictionRecord, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions WHERE id = $1
	`

	record := &models.PredictionRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&record.ID, &record.Condition, &record.Probability, &record.Predicted,
		&record.Threshold, &record.Confidence, &record.Latitude, &record.Longitude,
		&record.Year, &record.Month, &record.Day, &record.PredictedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return record, nil
}

// Recent retrieves recent predictions for a condition, newest first
func (r *PostgresPredictionRepository) Recent(ctx context.Context, condition models.Condition, limit int) ([]*models.PredictionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE condition = $1
		ORDER BY predicted_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, condition, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent predictions: %w", err)
	}
	defer rows.Close()

	var records []*models.PredictionRecord
	for rows.Next() {
		record := &models.PredictionRecord{}
		err := rows.Scan(
			&record.ID, &record.Condition, &record.Probability, &record.Predicted,
			&record.Threshold, &record.Confidence, &record.Latitude, &record.Longitude,
			&record.Year, &record.Month, &record.Day, &record.PredictedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// CountByCondition returns the total predictions served per condition
func (r *PostgresPredictionRepository) CountByCondition(ctx context.Context) (map[models.Condition]int64, error) {
	query := `
		SELECT condition, COUNT(*)
		FROM predictions
		GROUP BY condition
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count predictions: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Condition]int64)
	for rows.Next() {
		var condition models.Condition
		var count int64
		if err := rows.Scan(&condition, &count); err != nil {
			return nil, fmt.Errorf("failed to scan prediction count: %w", err)
		}
		counts[condition] = count
	}

	return counts, rows.Err()
}
