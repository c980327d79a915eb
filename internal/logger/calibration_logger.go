// Package logger provides calibration-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/skycast/internal/models"
)

// CalibrationLogger provides dedicated logging for threshold calibration and
// model training runs.
type CalibrationLogger struct {
	*logrus.Entry
}

// NewCalibrationLogger creates a new calibration logger.
func NewCalibrationLogger(baseLogger *logrus.Logger) *CalibrationLogger {
	return &CalibrationLogger{
		Entry: baseLogger.WithField("component", "calibration"),
	}
}

// LogCalibrationRun logs the completion of a full calibration run across all
// conditions.
func (cl *CalibrationLogger) LogCalibrationRun(runID string, conditionsTrained int, conditionsFailed int, durationSeconds float64) {
	cl.WithFields(logrus.Fields{
		"run_id":             runID,
		"conditions_trained": conditionsTrained,
		"conditions_failed":  conditionsFailed,
		"duration_seconds":   durationSeconds,
	}).Info("Calibration run completed")
}

// LogConditionCalibrated logs the calibrated threshold and evaluation metrics
// for a single condition.
func (cl *CalibrationLogger) LogConditionCalibrated(condition models.Condition, threshold float64, metrics map[string]float64, trainSize int, evalSize int) {
	cl.WithFields(logrus.Fields{
		"condition":  condition,
		"threshold":  threshold,
		"metrics":    metrics,
		"train_size": trainSize,
		"eval_size":  evalSize,
	}).Info("Condition threshold calibrated")
}

// LogCalibrationError logs a calibration failure for a single condition.
func (cl *CalibrationLogger) LogCalibrationError(condition models.Condition, errorReason string) {
	cl.WithFields(logrus.Fields{
		"condition":    condition,
		"error_reason": errorReason,
	}).Error("Condition calibration failed")
}

// LogPredictionRequest logs a served prediction request.
func (cl *CalibrationLogger) LogPredictionRequest(condition models.Condition, probability float64, prediction int, confidence float64, cacheHit bool, latencyMs float64) {
	cl.WithFields(logrus.Fields{
		"condition":   condition,
		"probability": probability,
		"prediction":  prediction,
		"confidence":  confidence,
		"cache_hit":   cacheHit,
		"latency_ms":  latencyMs,
	}).Info("Prediction request completed")
}

// LogDatasetLoaded logs a dataset load and cleaning pass.
func (cl *CalibrationLogger) LogDatasetLoaded(path string, rows int, dropped int) {
	cl.WithFields(logrus.Fields{
		"path":    path,
		"rows":    rows,
		"dropped": dropped,
	}).Info("Dataset loaded")
}
