// Package service provides model training, threshold calibration, and
// prediction serving.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/skycast/internal/calibrate"
	"github.com/yourusername/skycast/internal/classifier"
	"github.com/yourusername/skycast/internal/config"
	"github.com/yourusername/skycast/internal/dataset"
	"github.com/yourusername/skycast/internal/logger"
	"github.com/yourusername/skycast/internal/metrics"
	"github.com/yourusername/skycast/internal/models"
	"github.com/yourusername/skycast/internal/repository"
)

// ConditionModel is a trained classifier for one condition together with its
// calibrated operating point.
type ConditionModel struct {
	Condition    models.Condition
	Classifier   classifier.Classifier
	Result       calibrate.Result
	TrainSize    int
	EvalSize     int
	Positives    int
	CalibratedAt time.Time
}

// ModelSet is one immutable generation of trained condition models. A new set
// replaces the whole previous one on recalibration; readers never see a
// partially updated set.
type ModelSet struct {
	RunID       uuid.UUID
	Models      map[models.Condition]*ConditionModel
	DatasetRows int
	TrainedAt   time.Time
}

// CalibrationService trains per-condition classifiers, calibrates their
// decision thresholds, and serves predictions from the current model set.
type CalibrationService struct {
	cfg       *config.Config
	logger    *logrus.Logger
	calLogger *logger.CalibrationLogger
	repos     *repository.Repositories

	mu      sync.RWMutex
	current *ModelSet
}

// NewCalibrationService creates a new calibration service. Repositories may
// be nil, in which case nothing is persisted.
func NewCalibrationService(cfg *config.Config, log *logrus.Logger, repos *repository.Repositories) *CalibrationService {
	return &CalibrationService{
		cfg:       cfg,
		logger:    log,
		calLogger: logger.NewCalibrationLogger(log),
		repos:     repos,
	}
}

// Current returns the active model set, or nil before the first training run.
func (s *CalibrationService) Current() *ModelSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Ready reports whether at least one condition model is available.
func (s *CalibrationService) Ready() bool {
	set := s.Current()
	return set != nil && len(set.Models) > 0
}

// conditionOutcome carries one worker's result back to the training loop.
type conditionOutcome struct {
	condition models.Condition
	model     *ConditionModel
	err       error
}

// Train loads the dataset, trains and calibrates a classifier for every
// condition, and atomically swaps in the new model set. A single condition
// failing does not abort the run; the run fails only when no condition could
// be trained.
func (s *CalibrationService) Train(ctx context.Context) (*ModelSet, error) {
	start := time.Now()
	runID := uuid.New()

	table, err := s.loadTable()
	if err != nil {
		return nil, err
	}

	matrix := table.TemporalMatrix()
	conditions := models.AllConditions()

	workers := s.cfg.Model.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(conditions) {
		workers = len(conditions)
	}

	jobs := make(chan models.Condition)
	outcomes := make(chan conditionOutcome, len(conditions))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for condition := range jobs {
				model, err := s.trainCondition(table, matrix, condition)
				outcomes <- conditionOutcome{condition: condition, model: model, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, condition := range conditions {
			select {
			case jobs <- condition:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(outcomes)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("calibration run cancelled: %w", err)
	}

	set := &ModelSet{
		RunID:       runID,
		Models:      make(map[models.Condition]*ConditionModel, len(conditions)),
		DatasetRows: table.Len(),
		TrainedAt:   time.Now().UTC(),
	}

	var failed int
	for outcome := range outcomes {
		if outcome.err != nil {
			failed++
			s.calLogger.LogCalibrationError(outcome.condition, outcome.err.Error())
			metrics.RecordCalibrationFailure(string(outcome.condition))
			continue
		}
		set.Models[outcome.condition] = outcome.model
	}

	if len(set.Models) == 0 {
		return nil, fmt.Errorf("calibration run %s: no condition could be trained", runID)
	}

	s.mu.Lock()
	s.current = set
	s.mu.Unlock()

	duration := time.Since(start)
	metrics.RecordCalibrationRun(duration.Seconds())
	metrics.UpdateModelsReady(float64(len(set.Models)))
	metrics.UpdateDatasetRows(float64(set.DatasetRows))
	s.calLogger.LogCalibrationRun(runID.String(), len(set.Models), failed, duration.Seconds())

	if s.repos != nil {
		if err := s.persistRun(ctx, set); err != nil {
			s.logger.WithError(err).Warn("Failed to persist calibration run")
		}
	}

	return set, nil
}

// loadTable reads and cleans the configured dataset.
func (s *CalibrationService) loadTable() (*dataset.Table, error) {
	table, err := dataset.ReadCSV(s.cfg.Dataset.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	table.Clean()
	if s.cfg.Dataset.CapOutliers {
		table.CapOutliers(s.cfg.Dataset.OutlierIQRK)
	}

	s.calLogger.LogDatasetLoaded(s.cfg.Dataset.Path, table.Len(), 0)
	return table, nil
}

// trainCondition trains and calibrates the classifier for one condition.
func (s *CalibrationService) trainCondition(table *dataset.Table, matrix [][]float64, condition models.Condition) (*ConditionModel, error) {
	sweepStart := time.Now()

	labels, err := dataset.Labels(table, condition, s.cfg.Labels)
	if err != nil {
		return nil, fmt.Errorf("labelling %s: %w", condition, err)
	}

	trainIdx, evalIdx := dataset.StratifiedSplit(labels, s.cfg.Dataset.EvalFraction, s.cfg.Dataset.Seed)
	if len(trainIdx) == 0 || len(evalIdx) == 0 {
		return nil, fmt.Errorf("splitting %s: %w", condition, models.ErrDegenerateInput)
	}

	if s.cfg.Dataset.Oversample {
		trainIdx = dataset.Oversample(trainIdx, labels, s.cfg.Dataset.Seed)
	}

	boostCfg := classifier.BoostConfig{
		Rounds:       s.cfg.Model.Rounds,
		LearningRate: s.cfg.Model.LearningRate,
		MaxSplits:    s.cfg.Model.MaxSplits,
	}
	model, err := classifier.TrainBoost(dataset.Rows(matrix, trainIdx), dataset.Gather(labels, trainIdx), boostCfg)
	if err != nil {
		return nil, fmt.Errorf("training %s: %w", condition, err)
	}

	evalLabels := dataset.Gather(labels, evalIdx)
	probs := model.PredictBatch(dataset.Rows(matrix, evalIdx))

	grid := calibrate.Grid(s.cfg.Model.GridStart, s.cfg.Model.GridStop, s.cfg.Model.GridStep)
	objective := calibrate.WeightedObjective(s.cfg.Model.RecallWeight, s.cfg.Model.PrecisionWeight)
	opts := calibrate.Options{
		RecallCeiling:  s.cfg.Model.RecallCeiling,
		SkipDegenerate: s.cfg.Model.SkipDegenerate,
	}

	result, err := calibrate.Calibrate(probs, evalLabels, grid, objective, opts)
	if err != nil {
		return nil, fmt.Errorf("calibrating %s: %w", condition, err)
	}

	positives := 0
	for _, l := range evalLabels {
		if l == 1 {
			positives++
		}
	}

	sweepDuration := time.Since(sweepStart)
	metrics.RecordThresholdSweep(string(condition), sweepDuration.Seconds())
	metrics.UpdateConditionCalibration(string(condition), result.Threshold, result.F1)
	s.calLogger.LogConditionCalibrated(condition, result.Threshold, map[string]float64{
		"accuracy":  result.Accuracy,
		"precision": result.Precision,
		"recall":    result.Recall,
		"f1":        result.F1,
	}, len(trainIdx), len(evalIdx))

	return &ConditionModel{
		Condition:    condition,
		Classifier:   model,
		Result:       result,
		TrainSize:    len(trainIdx),
		EvalSize:     len(evalIdx),
		Positives:    positives,
		CalibratedAt: time.Now().UTC(),
	}, nil
}

// persistRun writes the calibration records of a completed run.
func (s *CalibrationService) persistRun(ctx context.Context, set *ModelSet) error {
	records := make([]*models.CalibrationRecord, 0, len(set.Models))
	for _, model := range set.Models {
		records = append(records, &models.CalibrationRecord{
			ID:           uuid.New(),
			RunID:        set.RunID,
			Condition:    model.Condition,
			Threshold:    model.Result.Threshold,
			Accuracy:     model.Result.Accuracy,
			Precision:    model.Result.Precision,
			Recall:       model.Result.Recall,
			F1:           model.Result.F1,
			TrainSize:    model.TrainSize,
			EvalSize:     model.EvalSize,
			Positives:    model.Positives,
			CalibratedAt: model.CalibratedAt,
		})
	}
	return s.repos.Calibration.CreateBatch(ctx, records)
}
