package scheduler

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	return NewScheduler(nil, log)
}

func TestScheduleRecalibrationValidatesCron(t *testing.T) {
	s := newTestScheduler()

	assert.Error(t, s.ScheduleRecalibration("not a cron expression"))
	assert.NoError(t, s.ScheduleRecalibration("0 3 * * *"))
}

func TestStartRequiresJobs(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.Start())
}

func TestStartStopLifecycle(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.ScheduleRecalibration("0 3 * * *"))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	// Double start is rejected, as is scheduling while running
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleRecalibration("0 4 * * *"))

	s.Stop()
	assert.False(t, s.IsRunning())

	// Stop is idempotent
	s.Stop()
}
