package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/skycast/internal/models"
	"github.com/yourusername/skycast/internal/repository"
)

// MockCalibrationRepository mocks calibration repository
type MockCalibrationRepository struct {
	mock.Mock
}

func (m *MockCalibrationRepository) Create(ctx context.Context, record *models.CalibrationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockCalibrationRepository) CreateBatch(ctx context.Context, records []*models.CalibrationRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockCalibrationRepository) GetLatest(ctx context.Context, condition models.Condition) (*models.CalibrationRecord, error) {
	args := m.Called(ctx, condition)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CalibrationRecord), args.Error(1)
}

func (m *MockCalibrationRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.CalibrationRecord, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CalibrationRecord), args.Error(1)
}

func (m *MockCalibrationRepository) History(ctx context.Context, condition models.Condition, limit int) ([]*models.CalibrationRecord, error) {
	args := m.Called(ctx, condition, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CalibrationRecord), args.Error(1)
}

// MockPredictionRepository mocks prediction repository
type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) Create(ctx context.Context, record *models.PredictionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PredictionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PredictionRecord), args.Error(1)
}

func (m *MockPredictionRepository) Recent(ctx context.Context, condition models.Condition, limit int) ([]*models.PredictionRecord, error) {
	args := m.Called(ctx, condition, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PredictionRecord), args.Error(1)
}

func (m *MockPredictionRepository) CountByCondition(ctx context.Context) (map[models.Condition]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.Condition]int64), args.Error(1)
}

func mockRepos(cal *MockCalibrationRepository, pred *MockPredictionRepository) *repository.Repositories {
	return &repository.Repositories{Calibration: cal, Prediction: pred}
}

func TestTrainPersistsCalibrationRecords(t *testing.T) {
	calRepo := &MockCalibrationRepository{}
	predRepo := &MockPredictionRepository{}
	calRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	svc := NewCalibrationService(testConfig(t), quietLogger(), mockRepos(calRepo, predRepo))
	set, err := svc.Train(context.Background())
	require.NoError(t, err)

	calRepo.AssertNumberOfCalls(t, "CreateBatch", 1)
	records := calRepo.Calls[0].Arguments.Get(1).([]*models.CalibrationRecord)
	assert.Len(t, records, len(set.Models))

	seen := map[models.Condition]bool{}
	for _, record := range records {
		assert.Equal(t, set.RunID, record.RunID)
		assert.NotEqual(t, uuid.Nil, record.ID)
		model := set.Models[record.Condition]
		require.NotNil(t, model, "record for untrained condition %s", record.Condition)
		assert.Equal(t, model.Result.Threshold, record.Threshold)
		assert.Equal(t, model.Result.F1, record.F1)
		assert.Equal(t, model.TrainSize, record.TrainSize)
		seen[record.Condition] = true
	}
	assert.Len(t, seen, len(set.Models))
}

func TestTrainSurvivesPersistenceFailure(t *testing.T) {
	calRepo := &MockCalibrationRepository{}
	predRepo := &MockPredictionRepository{}
	calRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(fmt.Errorf("connection refused"))

	svc := NewCalibrationService(testConfig(t), quietLogger(), mockRepos(calRepo, predRepo))
	set, err := svc.Train(context.Background())

	require.NoError(t, err)
	assert.Len(t, set.Models, len(models.AllConditions()))
}

func TestPredictWritesAuditRecord(t *testing.T) {
	calRepo := &MockCalibrationRepository{}
	predRepo := &MockPredictionRepository{}
	calRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	predRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewCalibrationService(testConfig(t), quietLogger(), mockRepos(calRepo, predRepo))
	_, err := svc.Train(context.Background())
	require.NoError(t, err)

	req := PredictionRequest{Latitude: 38.9, Longitude: -77.0, Year: 2026, Month: 7, Day: 4}
	out, err := svc.Predict(context.Background(), req, models.ConditionVeryHot)
	require.NoError(t, err)

	predRepo.AssertNumberOfCalls(t, "Create", 1)
	record := predRepo.Calls[0].Arguments.Get(1).(*models.PredictionRecord)
	assert.Equal(t, models.ConditionVeryHot, record.Condition)
	assert.Equal(t, out.Probability, record.Probability)
	assert.Equal(t, out.Prediction == 1, record.Predicted)
	assert.Equal(t, out.Threshold, record.Threshold)
	assert.Equal(t, 38.9, record.Latitude)
	assert.Equal(t, -77.0, record.Longitude)
	assert.Equal(t, 2026, record.Year)
	assert.Equal(t, 7, record.Month)
	assert.Equal(t, 4, record.Day)
	assert.False(t, record.PredictedAt.IsZero())
}

func TestPredictSurvivesAuditFailure(t *testing.T) {
	calRepo := &MockCalibrationRepository{}
	predRepo := &MockPredictionRepository{}
	calRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	predRepo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("connection refused"))

	svc := NewCalibrationService(testConfig(t), quietLogger(), mockRepos(calRepo, predRepo))
	_, err := svc.Train(context.Background())
	require.NoError(t, err)

	req := PredictionRequest{Latitude: 38.9, Longitude: -77.0, Year: 2026, Month: 1, Day: 15}
	out, err := svc.Predict(context.Background(), req, models.ConditionRain)
	require.NoError(t, err)
	assert.NotNil(t, out)
}
