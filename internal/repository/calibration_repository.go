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

// PostgresCalibrationRepository implements CalibrationRepository for PostgreSQL
type PostgresCalibrationRepository struct {
	db *database.DB
}

// NewPostgresCalibrationRepository creates a new calibration repository
func NewPostgresCalibrationRepository(db *database.DB) CalibrationRepository {
	return &PostgresCalibrationRepository{db: db}
}

const calibrationColumns = `id, run_id, condition, threshold, accuracy, precision, recall, f1, train_size, eval_size, positives, calibrated_at`

// Create inserts a single calibration record
func (r *PostgresCalibrationRepository) Create(ctx context.Context, record *models.CalibrationRecord) error {
	query := `
		INSERT INTO calibrations (` + calibrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		record.ID, record.RunID, record.Condition, record.Threshold,
		record.Accuracy, record.Precision, record.Recall, record.F1,
		record.TrainSize, record.EvalSize, record.Positives, record.CalibratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create calibration record: %w", err)
	}

	return nil
}

// CreateBatch inserts all records of a calibration run in one transaction
func (r *PostgresCalibrationRepository) CreateBatch(ctx context.Context, records []*models.CalibrationRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO calibrations (` + calibrationColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		for _, record := range records {
			_, err := tx.Exec(ctx, query,
				record.ID, record.RunID, record.Condition, record.Threshold,
				record.Accuracy, record.Precision, record.Recall, record.F1,
				record.TrainSize, record.EvalSize, record.Positives, record.CalibratedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert calibration record for %s: %w", record.Condition, err)
			}
		}
		return nil
	})
}

// GetLatest retrieves the most recent calibration for a condition
func (r *PostgresCalibrationRepository) GetLatest(ctx context.Context, condition models.Condition) (*models.CalibrationRecord, error) {
	query := `
		SELECT ` + calibrationColumns + `
		FROM calibrations
		WHERE condition = $1
		ORDER BY calibrated_at DESC
		LIMIT 1
	`

	record := &models.CalibrationRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, condition).Scan(
		&record.ID, &record.RunID, &record.Condition, &record.Threshold,
		&record.Accuracy, &record.Precision, &record.Recall, &record.F1,
		&record.TrainSize, &record.EvalSize, &record.Positives, &record.CalibratedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest calibration: %w", err)
	}

	return record, nil
}

// GetByRunID retrieves all calibration records belonging to one run
func (r *PostgresCalibrationRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.CalibrationRecord, error) {
	query := `
		SELECT ` + calibrationColumns + `
		FROM calibrations
		WHERE run_id = $1
		ORDER BY condition ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query calibrations by run: %w", err)
	}
	defer rows.Close()

	return scanCalibrationRows(rows)
}

// History retrieves recent calibrations for a condition, newest first
func (r *PostgresCalibrationRepository) History(ctx context.Context, condition models.Condition, limit int) ([]*models.CalibrationRecord, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT ` + calibrationColumns + `
		FROM calibrations
		WHERE condition = $1
		ORDER BY calibrated_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, condition, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query calibration history: %w", err)
	}
	defer rows.Close()

	return scanCalibrationRows(rows)
}

func scanCalibrationRows(rows pgx.Rows) ([]*models.CalibrationRecord, error) {
	var records []*models.CalibrationRecord
	for rows.Next() {
		record := &models.CalibrationRecord{}
		err := rows.Scan(
			&record.ID, &record.RunID, &record.Condition, &record.Threshold,
			&record.Accuracy, &record.Precision, &record.Recall, &record.F1,
			&record.TrainSize, &record.EvalSize, &record.Positives, &record.CalibratedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calibration record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
