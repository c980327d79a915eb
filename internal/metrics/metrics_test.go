package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	// Initialize the registry
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRegistryIsSingleton(t *testing.T) {
	first := InitRegistry()
	second := GetRegistry()
	assert.Same(t, first, second)
}

func TestRecordPredictionServed(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordPredictionServed("rain", 0.002)
	})
}

func TestRecordCalibrationRun(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordCalibrationRun(42.0)
		RecordCalibrationFailure("very_windy")
		RecordThresholdSweep("rain", 0.8)
	})
}

func TestUpdateConditionCalibration(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name      string
		condition string
		threshold float64
		f1        float64
	}{
		{
			name:      "typical calibration",
			condition: "rain",
			threshold: 0.42,
			f1:        0.78,
		},
		{
			name:      "default threshold",
			condition: "very_cold",
			threshold: 0.5,
			f1:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateConditionCalibration(tt.condition, tt.threshold, tt.f1)
			})
		})
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordPredictionServed("rain", 0.001)
	UpdateModelsReady(7)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "skycast_predictions_served_total")
	assert.Contains(t, rec.Body.String(), "skycast_models_ready")
}
