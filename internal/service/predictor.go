package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/skycast/internal/dataset"
	"github.com/yourusername/skycast/internal/metrics"
	"github.com/yourusername/skycast/internal/models"
)

// confidenceEpsilon guards the confidence denominator against a zero
// threshold.
const confidenceEpsilon = 1e-9

// PredictionRequest identifies the place and date to predict for.
type PredictionRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Year      int     `json:"year" validate:"required"`
	Month     int     `json:"month" validate:"required,gte=1,lte=12"`
	Day       int     `json:"day" validate:"required,gte=1,lte=31"`
}

// ConditionPrediction is the served outcome for a single condition.
type ConditionPrediction struct {
	Condition   models.Condition `json:"condition"`
	Probability float64          `json:"probability"`
	Prediction  int              `json:"prediction"`
	Threshold   float64          `json:"threshold"`
	Accuracy    float64          `json:"accuracy"`
	Confidence  float64          `json:"confidence"`
}

// PredictionResponse bundles the predictions for a request.
type PredictionResponse struct {
	Latitude    float64               `json:"latitude"`
	Longitude   float64               `json:"longitude"`
	Date        string                `json:"date"`
	Season      string                `json:"season"`
	Predictions []ConditionPrediction `json:"predictions"`
}

// Predict evaluates a single condition for the request.
func (s *CalibrationService) Predict(ctx context.Context, req PredictionRequest, condition models.Condition) (*ConditionPrediction, error) {
	set := s.Current()
	if set == nil {
		return nil, models.ErrModelNotReady
	}

	model, ok := set.Models[condition]
	if !ok {
		return nil, fmt.Errorf("%s: %w", condition, models.ErrModelNotReady)
	}

	start := time.Now()
	features := dataset.TemporalVector(req.Year, time.Month(req.Month), req.Day)
	probability := model.Classifier.PredictProbability(features)
	threshold := model.Result.Threshold

	prediction := 0
	if probability >= threshold {
		prediction = 1
	}

	confidence := math.Abs(probability-threshold) / math.Max(threshold, confidenceEpsilon)
	if confidence > 1 {
		confidence = 1
	}

	out := &ConditionPrediction{
		Condition:   condition,
		Probability: probability,
		Prediction:  prediction,
		Threshold:   threshold,
		Accuracy:    model.Result.Accuracy,
		Confidence:  confidence,
	}

	latency := time.Since(start)
	metrics.RecordPredictionServed(string(condition), latency.Seconds())
	s.calLogger.LogPredictionRequest(condition, probability, prediction, confidence, false, float64(latency.Milliseconds()))
	s.auditPrediction(ctx, req, out)

	return out, nil
}

// PredictAll evaluates every available condition for the request. Conditions
// without a trained model are omitted from the response.
func (s *CalibrationService) PredictAll(ctx context.Context, req PredictionRequest) (*PredictionResponse, error) {
	set := s.Current()
	if set == nil {
		return nil, models.ErrModelNotReady
	}

	resp := &PredictionResponse{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Date:      fmt.Sprintf("%04d-%02d-%02d", req.Year, req.Month, req.Day),
		Season:    dataset.SeasonName(dataset.Season(time.Month(req.Month))),
	}

	for _, condition := range models.AllConditions() {
		if _, ok := set.Models[condition]; !ok {
			continue
		}
		prediction, err := s.Predict(ctx, req, condition)
		if err != nil {
			return nil, err
		}
		resp.Predictions = append(resp.Predictions, *prediction)
	}

	if len(resp.Predictions) == 0 {
		return nil, models.ErrModelNotReady
	}

	return resp, nil
}

// auditPrediction writes the audit row for a served prediction. Persistence
// failures are logged, never surfaced to the caller.
func (s *CalibrationService) auditPrediction(ctx context.Context, req PredictionRequest, p *ConditionPrediction) {
	if s.repos == nil {
		return
	}

	record := &models.PredictionRecord{
		ID:          uuid.New(),
		Condition:   p.Condition,
		Probability: p.Probability,
		Predicted:   p.Prediction == 1,
		Threshold:   p.Threshold,
		Confidence:  p.Confidence,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Year:        req.Year,
		Month:       req.Month,
		Day:         req.Day,
		PredictedAt: time.Now().UTC(),
	}
	if err := s.repos.Prediction.Create(ctx, record); err != nil {
		s.logger.WithError(err).Warn("Failed to persist prediction record")
	}
}

// ConditionInfo summarises a trained condition model for the model-info
// endpoint.
type ConditionInfo struct {
	Condition    models.Condition `json:"condition"`
	Threshold    float64          `json:"threshold"`
	Accuracy     float64          `json:"accuracy"`
	Precision    float64          `json:"precision"`
	Recall       float64          `json:"recall"`
	F1           float64          `json:"f1"`
	TrainSize    int              `json:"train_size"`
	EvalSize     int              `json:"eval_size"`
	Positives    int              `json:"positives"`
	CalibratedAt time.Time        `json:"calibrated_at"`
}

// ModelInfo describes the current model set.
type ModelInfo struct {
	RunID       uuid.UUID       `json:"run_id"`
	TrainedAt   time.Time       `json:"trained_at"`
	DatasetRows int             `json:"dataset_rows"`
	Conditions  []ConditionInfo `json:"conditions"`
}

// Info returns a summary of the current model set.
func (s *CalibrationService) Info() (*ModelInfo, error) {
	set := s.Current()
	if set == nil {
		return nil, models.ErrModelNotReady
	}

	info := &ModelInfo{
		RunID:       set.RunID,
		TrainedAt:   set.TrainedAt,
		DatasetRows: set.DatasetRows,
	}
	for _, condition := range models.AllConditions() {
		model, ok := set.Models[condition]
		if !ok {
			continue
		}
		info.Conditions = append(info.Conditions, ConditionInfo{
			Condition:    condition,
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

	return info, nil
}
