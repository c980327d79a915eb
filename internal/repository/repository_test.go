package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/skycast/internal/database"
	"github.com/yourusername/skycast/internal/models"
)

// These tests run against a real PostgreSQL instance and are skipped unless
// SKYCAST_TEST_DB_HOST is set. See database.SetupTestDB.

func TestCalibrationRepositoryRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runID := uuid.New()
	record := &models.CalibrationRecord{
		ID:           uuid.New(),
		RunID:        runID,
		Condition:    models.ConditionRain,
		Threshold:    0.42,
		Accuracy:     0.81,
		Precision:    0.77,
		Recall:       0.74,
		F1:           0.755,
		TrainSize:    800,
		EvalSize:     200,
		Positives:    61,
		CalibratedAt: time.Now().UTC(),
	}

	require.NoError(t, repos.Calibration.Create(ctx, record))

	latest, err := repos.Calibration.GetLatest(ctx, models.ConditionRain)
	require.NoError(t, err)
	assert.Equal(t, record.ID, latest.ID)
	assert.InDelta(t, 0.42, latest.Threshold, 1e-9)

	byRun, err := repos.Calibration.GetByRunID(ctx, runID)
	require.NoError(t, err)
	require.Len(t, byRun, 1)
	assert.Equal(t, models.ConditionRain, byRun[0].Condition)
}

func TestCalibrationRepositoryBatchAndHistory(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	runID := uuid.New()
	var records []*models.CalibrationRecord
	for i, condition := range models.AllConditions() {
		records = append(records, &models.CalibrationRecord{
			ID:           uuid.New(),
			RunID:        runID,
			Condition:    condition,
			Threshold:    0.3 + float64(i)*0.05,
			CalibratedAt: time.Now().UTC(),
		})
	}

	require.NoError(t, repos.Calibration.CreateBatch(ctx, records))

	byRun, err := repos.Calibration.GetByRunID(ctx, runID)
	require.NoError(t, err)
	assert.Len(t, byRun, len(models.AllConditions()))

	history, err := repos.Calibration.History(ctx, models.ConditionVeryHot, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, history)
}

func TestCalibrationRepositoryGetLatestNotFound(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = repos.Calibration.GetLatest(ctx, models.Condition("no_such_condition"))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPredictionRepositoryRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	record := &models.PredictionRecord{
		ID:          uuid.New(),
		Condition:   models.ConditionVeryHumid,
		Probability: 0.83,
		Predicted:   true,
		Threshold:   0.5,
		Confidence:  0.66,
		Latitude:    38.9,
		Longitude:   -77.0,
		Year:        2026,
		Month:       7,
		Day:         4,
		PredictedAt: time.Now().UTC(),
	}

	require.NoError(t, repos.Prediction.Create(ctx, record))

	got, err := repos.Prediction.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Condition, got.Condition)
	assert.True(t, got.Predicted)

	recent, err := repos.Prediction.Recent(ctx, models.ConditionVeryHumid, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, recent)

	counts, err := repos.Prediction.CountByCondition(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, counts[models.ConditionVeryHumid], int64(1))
}

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}
