// Package metrics provides a centralized Prometheus metrics registry for the
// weather prediction service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsServedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skycast",
		Name:      "predictions_served_total",
		Help:      "Total number of predictions served, by condition",
	}, []string{"condition"})
	PredictionCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "skycast",
		Name:      "prediction_cache_hits_total",
		Help:      "Total number of prediction cache hits",
	})
	CalibrationRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "skycast",
		Name:      "calibration_runs_total",
		Help:      "Total number of calibration runs",
	})
	CalibrationFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skycast",
		Name:      "calibration_failures_total",
		Help:      "Total number of per-condition calibration failures",
	}, []string{"condition"})
	IngestRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skycast",
		Name:      "ingest_records_total",
		Help:      "Total number of weather records ingested, by source",
	}, []string{"source"})
)

// Gauge metrics
var (
	ConditionThreshold = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "skycast",
		Name:      "condition_threshold",
		Help:      "Calibrated decision threshold for each condition",
	}, []string{"condition"})
	ConditionF1Score = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "skycast",
		Name:      "condition_f1_score",
		Help:      "Evaluation F1 score at the calibrated threshold for each condition",
	}, []string{"condition"})
	ModelsReady = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "skycast",
		Name:      "models_ready",
		Help:      "Number of conditions with a trained model available",
	})
	DatasetRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "skycast",
		Name:      "dataset_rows",
		Help:      "Number of rows in the current cleaned dataset",
	})
)

// Histogram metrics
var (
	PredictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skycast",
		Name:      "prediction_latency_seconds",
		Help:      "Latency of prediction requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	CalibrationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skycast",
		Name:      "calibration_duration_seconds",
		Help:      "Duration of full calibration runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	ThresholdSweepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skycast",
		Name:      "threshold_sweep_duration_seconds",
		Help:      "Duration of a single condition threshold sweep in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"condition"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PredictionsServedTotal)
		registry.MustRegister(PredictionCacheHitsTotal)
		registry.MustRegister(CalibrationRunsTotal)
		registry.MustRegister(CalibrationFailuresTotal)
		registry.MustRegister(IngestRecordsTotal)

		// Register gauge metrics
		registry.MustRegister(ConditionThreshold)
		registry.MustRegister(ConditionF1Score)
		registry.MustRegister(ModelsReady)
		registry.MustRegister(DatasetRows)

		// Register histogram metrics
		registry.MustRegister(PredictionLatency)
		registry.MustRegister(CalibrationDuration)
		registry.MustRegister(ThresholdSweepDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPredictionServed records a served prediction for a condition.
func RecordPredictionServed(condition string, latencySeconds float64) {
	PredictionsServedTotal.WithLabelValues(condition).Inc()
	PredictionLatency.Observe(latencySeconds)
}

// RecordPredictionCacheHit records a prediction cache hit.
func RecordPredictionCacheHit() {
	PredictionCacheHitsTotal.Inc()
}

// RecordCalibrationRun records a completed calibration run.
func RecordCalibrationRun(durationSeconds float64) {
	CalibrationRunsTotal.Inc()
	CalibrationDuration.Observe(durationSeconds)
}

// RecordCalibrationFailure records a per-condition calibration failure.
func RecordCalibrationFailure(condition string) {
	CalibrationFailuresTotal.WithLabelValues(condition).Inc()
}

// RecordThresholdSweep records the duration of a single condition sweep.
func RecordThresholdSweep(condition string, durationSeconds float64) {
	ThresholdSweepDuration.WithLabelValues(condition).Observe(durationSeconds)
}

// RecordIngestedRecords records records ingested from a source.
func RecordIngestedRecords(source string, count int) {
	IngestRecordsTotal.WithLabelValues(source).Add(float64(count))
}

// UpdateConditionCalibration updates the threshold and F1 gauges for a condition.
func UpdateConditionCalibration(condition string, threshold float64, f1 float64) {
	ConditionThreshold.WithLabelValues(condition).Set(threshold)
	ConditionF1Score.WithLabelValues(condition).Set(f1)
}

// UpdateModelsReady updates the trained models gauge.
func UpdateModelsReady(count float64) {
	ModelsReady.Set(count)
}

// UpdateDatasetRows updates the dataset rows gauge.
func UpdateDatasetRows(rows float64) {
	DatasetRows.Set(rows)
}
