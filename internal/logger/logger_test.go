package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/skycast/internal/models"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := NewLogger("verbose")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerParsesLevel(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestCalibrationLoggerConditionCalibrated(t *testing.T) {
	log, buf := setupTestLogger()
	calLogger := NewCalibrationLogger(log)

	calLogger.LogConditionCalibrated(
		models.ConditionRain,
		0.42,
		map[string]float64{"precision": 0.81, "recall": 0.74},
		800,
		200,
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "rain", logEntry["condition"])
	assert.Equal(t, 0.42, logEntry["threshold"])
	assert.Equal(t, "calibration", logEntry["component"])
}

func TestCalibrationLoggerRun(t *testing.T) {
	log, buf := setupTestLogger()
	calLogger := NewCalibrationLogger(log)

	calLogger.LogCalibrationRun("run_001", 6, 1, 12.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "run_001", logEntry["run_id"])
	assert.Equal(t, float64(6), logEntry["conditions_trained"])
	assert.Equal(t, float64(1), logEntry["conditions_failed"])
}

func TestCalibrationLoggerError(t *testing.T) {
	log, buf := setupTestLogger()
	calLogger := NewCalibrationLogger(log)

	calLogger.LogCalibrationError(models.ConditionVeryWindy, "degenerate labels")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "very_windy", logEntry["condition"])
	assert.Equal(t, "degenerate labels", logEntry["error_reason"])
	assert.Equal(t, "error", logEntry["level"])
}

func TestCalibrationLoggerPredictionRequest(t *testing.T) {
	log, buf := setupTestLogger()
	calLogger := NewCalibrationLogger(log)

	calLogger.LogPredictionRequest(models.ConditionVeryHot, 0.83, 1, 0.66, true, 1.2)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "very_hot", logEntry["condition"])
	assert.Equal(t, float64(1), logEntry["prediction"])
	assert.Equal(t, true, logEntry["cache_hit"])
}

func TestLoggerJSONFormat(t *testing.T) {
	log, buf := setupTestLogger()
	calLogger := NewCalibrationLogger(log)

	calLogger.LogDatasetLoaded("data/weather_cleaned.csv", 3650, 12)

	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	assert.NoError(t, err)
	assert.NotEmpty(t, logEntry)
}

func BenchmarkCalibrationLoggerPredictionRequest(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	calLogger := NewCalibrationLogger(log)

	for i := 0; i < b.N; i++ {
		calLogger.LogPredictionRequest(models.ConditionRain, 0.83, 1, 0.66, false, 1.2)
	}
}
