package dataset

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/skycast/internal/models"
)

const sampleCSV = `STATION,NAME,DATE,PRCP,TAVG,TMAX,TMIN,AWND,RHUM
ALX01,Alexandria,2024-01-02,0.3,55,60,50,12,85
ALX01,Alexandria,2024-01-01,0.0,54,59,49,8,70
ALX01,Alexandria,2024-01-03,,,,51,25,90
ALX01,Alexandria,2024-01-04,0.7,58,96,52,10,82
`

func loadSample(t *testing.T) *Table {
	t.Helper()
	table, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	return table
}

func TestReadSortsByDate(t *testing.T) {
	table := loadSample(t)
	require.Equal(t, 4, table.Len())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), table.Dates[0])
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), table.Dates[3])
	// Row payload follows the date reorder.
	assert.Equal(t, 0.0, table.Columns[ColPrecipitation][0])
	assert.Equal(t, 0.3, table.Columns[ColPrecipitation][1])
}

func TestCleanFillsGaps(t *testing.T) {
	table := loadSample(t)
	table.Clean()

	// Missing PRCP means no rain.
	assert.Equal(t, 0.0, table.Columns[ColPrecipitation][2])
	// TMAX on day 3 is interpolated between day 2 (60) and day 4 (96).
	assert.InDelta(t, 78.0, table.Columns[ColTempMax][2], 1e-9)
	// TAVG interpolates between 55 and 58.
	assert.InDelta(t, 56.5, table.Columns[ColTempAvg][2], 1e-9)
}

func TestSeasonMapping(t *testing.T) {
	assert.Equal(t, SeasonWinter, Season(time.January))
	assert.Equal(t, SeasonWinter, Season(time.December))
	assert.Equal(t, SeasonSpring, Season(time.April))
	assert.Equal(t, SeasonSummer, Season(time.July))
	assert.Equal(t, SeasonFall, Season(time.October))
	assert.Equal(t, "Summer", SeasonName(SeasonSummer))
	assert.Equal(t, "Unknown", SeasonName(9))
}

func TestTemporalVectorShape(t *testing.T) {
	vec := TemporalVector(2024, time.July, 15)
	require.Len(t, vec, len(TemporalFeatureNames))
	assert.Equal(t, float64(SeasonSummer), vec[0])
	for _, v := range vec[1:] {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestFullMatrixColumns(t *testing.T) {
	table := loadSample(t)
	table.Clean()

	matrix, names := table.FullMatrix()
	require.Equal(t, table.Len(), len(matrix))
	require.Equal(t, len(names), len(matrix[0]))
	assert.Contains(t, names, "TEMP_RANGE")
	assert.Contains(t, names, "TAVG_MA_7D")
	assert.Contains(t, names, "PRCP_LAG_1D")
}

func TestLabelsPerCondition(t *testing.T) {
	table := loadSample(t)
	table.Clean()
	th := models.DefaultLabelThresholds()

	rain, err := Labels(table, models.ConditionRain, th)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0, 1}, rain)

	hot, err := Labels(table, models.ConditionVeryHot, th)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 1}, hot)

	wet, err := Labels(table, models.ConditionVeryWet, th)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 1}, wet)

	windy, err := Labels(table, models.ConditionVeryWindy, th)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 0}, windy)

	// Day 3: humid (0.3) + windy (0.2) reaches the 0.5 cut exactly;
	// day 4: hot (0.5) alone clears it.
	uncomfortable, err := Labels(table, models.ConditionUncomfortable, th)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 1}, uncomfortable)
}

func TestLabelsMissingColumn(t *testing.T) {
	table, err := Read(strings.NewReader("DATE,PRCP\n2024-01-01,0.2\n"))
	require.NoError(t, err)

	_, err = Labels(table, models.ConditionVeryWindy, models.DefaultLabelThresholds())
	assert.ErrorIs(t, err, models.ErrColumnMissing)

	// Conditions whose columns exist still work.
	rain, err := Labels(table, models.ConditionRain, models.DefaultLabelThresholds())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, rain)
}

func TestCapOutliers(t *testing.T) {
	table := &Table{
		Dates: make([]time.Time, 8),
		Columns: map[string][]float64{
			ColTempAvg: {50, 51, 52, 53, 54, 55, 56, 500},
		},
	}
	table.CapOutliers(3)
	capped := table.Columns[ColTempAvg][7]
	assert.Less(t, capped, 500.0)
	// In-range values are untouched.
	assert.Equal(t, 50.0, table.Columns[ColTempAvg][0])
}

func TestStratifiedSplitDeterministicAndStratified(t *testing.T) {
	labels := make([]int, 100)
	for i := 80; i < 100; i++ {
		labels[i] = 1
	}

	train1, eval1 := StratifiedSplit(labels, 0.2, 42)
	train2, eval2 := StratifiedSplit(labels, 0.2, 42)
	assert.Equal(t, train1, train2)
	assert.Equal(t, eval1, eval2)
	assert.Len(t, eval1, 20)
	assert.Len(t, train1, 80)

	positives := 0
	for _, idx := range eval1 {
		positives += labels[idx]
	}
	assert.Equal(t, 4, positives, "eval split keeps the 20%% positive ratio")

	_, evalOther := StratifiedSplit(labels, 0.2, 7)
	assert.NotEqual(t, eval1, evalOther, "different seeds shuffle differently")
}

func TestOversampleBalancesClasses(t *testing.T) {
	labels := []int{0, 0, 0, 0, 0, 0, 1, 1}
	train := []int{0, 1, 2, 3, 4, 5, 6, 7}

	balanced := Oversample(train, labels, 42)
	positives, negatives := 0, 0
	for _, idx := range balanced {
		if labels[idx] == 1 {
			positives++
		} else {
			negatives++
		}
	}
	assert.Equal(t, negatives, positives)

	// Single-class training sets pass through untouched.
	assert.Equal(t, []int{0, 1}, Oversample([]int{0, 1}, []int{0, 0}, 42))
}
