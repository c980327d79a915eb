package calibrate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/skycast/internal/models"
)

func TestCalibrateSelectsHandComputedBest(t *testing.T) {
	probs := []float64{0.1, 0.3, 0.55, 0.6, 0.9}
	labels := []int{0, 0, 1, 0, 1}
	grid := []float64{0.2, 0.4, 0.5, 0.58, 0.7}

	// Hand-computed scores for objective 0.6*recall + 0.4*precision:
	//   t=0.20: precision 0.500, recall 1.0 -> 0.800
	//   t=0.40: precision 0.667, recall 1.0 -> 0.867
	//   t=0.50: precision 0.667, recall 1.0 -> 0.867 (tie, higher threshold loses)
	//   t=0.58: precision 0.500, recall 0.5 -> 0.500
	//   t=0.70: precision 1.000, recall 0.5 -> 0.700
	result, err := Calibrate(probs, labels, grid, WeightedObjective(0.6, 0.4), Options{})
	require.NoError(t, err)

	assert.Equal(t, 0.4, result.Threshold)
	assert.InDelta(t, 0.8, result.Accuracy, 1e-9)
	assert.InDelta(t, 2.0/3.0, result.Precision, 1e-9)
	assert.InDelta(t, 1.0, result.Recall, 1e-9)
	assert.InDelta(t, 0.8, result.F1, 1e-9)
}

func TestCalibrateTieBreakPrefersLowerThreshold(t *testing.T) {
	// 0.55 and 0.6 sit between grid points 0.5 and 0.52, so both thresholds
	// produce identical predictions and identical scores.
	probs := []float64{0.1, 0.55, 0.6, 0.9}
	labels := []int{0, 1, 0, 1}
	grid := []float64{0.5, 0.52}

	result, err := Calibrate(probs, labels, grid, WeightedObjective(0.6, 0.4), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0.5, result.Threshold)
}

func TestCalibrateDeterministic(t *testing.T) {
	probs := []float64{0.12, 0.38, 0.41, 0.59, 0.63, 0.77, 0.9}
	labels := []int{0, 0, 1, 0, 1, 1, 1}
	grid := Grid(0.1, 0.9, 0.01)
	obj := WeightedObjective(0.6, 0.4)

	first, err := Calibrate(probs, labels, grid, obj, Options{RecallCeiling: 0.75})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Calibrate(probs, labels, grid, obj, Options{RecallCeiling: 0.75})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCalibrateThresholdIsGridMemberOrDefault(t *testing.T) {
	probs := []float64{0.2, 0.4, 0.6, 0.8}
	labels := []int{0, 1, 0, 1}
	grid := Grid(0.1, 0.9, 0.01)

	result, err := Calibrate(probs, labels, grid, WeightedObjective(0.6, 0.4), Options{})
	require.NoError(t, err)

	found := result.Threshold == DefaultThreshold
	for _, g := range grid {
		if g == result.Threshold {
			found = true
			break
		}
	}
	assert.True(t, found, "threshold %v not in grid and not the default", result.Threshold)
}

func TestCalibrateRecallCeiling(t *testing.T) {
	probs := []float64{0.2, 0.4, 0.6, 0.8}
	labels := []int{0, 1, 1, 1}
	grid := []float64{0.3, 0.5, 0.7}

	// Unconstrained, t=0.3 wins with recall 1.0.
	unconstrained, err := Calibrate(probs, labels, grid, WeightedObjective(0.6, 0.4), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0.3, unconstrained.Threshold)
	assert.Equal(t, 1.0, unconstrained.Recall)

	// With the ceiling, t=0.3 (recall 1.0) is ineligible and t=0.5
	// (recall 2/3, precision 1.0) wins.
	capped, err := Calibrate(probs, labels, grid, WeightedObjective(0.6, 0.4), Options{RecallCeiling: 0.75})
	require.NoError(t, err)
	assert.Equal(t, 0.5, capped.Threshold)
	assert.LessOrEqual(t, capped.Recall, 0.75)
}

func TestCalibrateCeilingExcludesEveryCandidate(t *testing.T) {
	// Every threshold yields recall 1.0, so no candidate passes the ceiling
	// and the default is returned. The final metrics report the realized
	// performance at the default, unconstrained by the ceiling.
	probs := []float64{0.6, 0.7, 0.8}
	labels := []int{1, 1, 1}
	grid := []float64{0.2, 0.3}

	result, err := Calibrate(probs, labels, grid, WeightedObjective(0.6, 0.4), Options{RecallCeiling: 0.75})
	require.NoError(t, err)
	assert.Equal(t, DefaultThreshold, result.Threshold)
	assert.Equal(t, 1.0, result.Recall)
	assert.Equal(t, 1.0, result.Precision)
	assert.Equal(t, 1.0, result.Accuracy)
}

func TestCalibrateDegenerateLabels(t *testing.T) {
	// No positive labels: every score is 0, so the default threshold wins.
	// All probabilities sit below 0.5, so the final pass classifies every
	// sample correctly as negative.
	probs := []float64{0.1, 0.2, 0.3, 0.4}
	labels := []int{0, 0, 0, 0}
	grid := Grid(0.1, 0.9, 0.01)

	result, err := Calibrate(probs, labels, grid, WeightedObjective(0.6, 0.4), Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultThreshold, result.Threshold)
	assert.Equal(t, 0.0, result.Precision)
	assert.Equal(t, 0.0, result.Recall)
	assert.Equal(t, 0.0, result.F1)
	assert.Equal(t, 1.0, result.Accuracy)
}

func TestCalibrateSkipDegeneratePredictions(t *testing.T) {
	probs := []float64{0.6, 0.7, 0.8, 0.9}
	labels := []int{1, 1, 0, 1}
	grid := []float64{0.5, 0.75}

	// Without the skip, t=0.5 predicts every sample positive and wins on
	// recall alone.
	plain, err := Calibrate(probs, labels, grid, WeightedObjective(0.6, 0.4), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0.5, plain.Threshold)

	// With the skip, the constant-positive threshold is ineligible.
	guarded, err := Calibrate(probs, labels, grid, WeightedObjective(0.6, 0.4), Options{SkipDegenerate: true})
	require.NoError(t, err)
	assert.Equal(t, 0.75, guarded.Threshold)
}

func TestCalibrateInvalidConfiguration(t *testing.T) {
	obj := WeightedObjective(0.6, 0.4)

	_, err := Calibrate([]float64{0.5}, []int{1}, nil, obj, Options{})
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)

	_, err = Calibrate([]float64{0.5, 0.6}, []int{1}, []float64{0.5}, obj, Options{})
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)

	_, err = Calibrate(nil, nil, []float64{0.5}, obj, Options{})
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)

	_, err = Calibrate([]float64{0.5}, []int{1}, []float64{0.5}, nil, Options{})
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
}

func TestRecallMonotoneNonIncreasingInThreshold(t *testing.T) {
	probs := []float64{0.05, 0.15, 0.33, 0.42, 0.58, 0.61, 0.74, 0.88, 0.93}
	labels := []int{0, 1, 0, 1, 1, 0, 1, 1, 0}

	prev := 2.0
	for _, threshold := range Grid(0.1, 0.9, 0.01) {
		tp, _, _, fn := confusion(probs, labels, threshold)
		recall := Recall(tp, fn)
		assert.LessOrEqual(t, recall, prev, "recall increased at threshold %v", threshold)
		prev = recall
	}
}

// The scan could be restructured as a parallel score-then-reduce, but only
// with a lowest-index tie-break; this pins the equivalence so a careless
// parallel max never sneaks in.
func TestParallelReductionMatchesSequentialScan(t *testing.T) {
	probs := []float64{0.1, 0.3, 0.55, 0.6, 0.9}
	labels := []int{0, 0, 1, 0, 1}
	grid := []float64{0.2, 0.4, 0.5, 0.58, 0.7}
	obj := WeightedObjective(0.6, 0.4)

	sequential, err := Calibrate(probs, labels, grid, obj, Options{})
	require.NoError(t, err)

	scores := make([]float64, len(grid))
	var wg sync.WaitGroup
	for i, threshold := range grid {
		wg.Add(1)
		go func(i int, threshold float64) {
			defer wg.Done()
			tp, fp, _, fn := confusion(probs, labels, threshold)
			scores[i] = obj(Precision(tp, fp), Recall(tp, fn))
		}(i, threshold)
	}
	wg.Wait()

	bestThreshold := DefaultThreshold
	bestScore := 0.0
	for i, score := range scores {
		// Strict inequality keeps the lowest tied index.
		if score > bestScore {
			bestScore = score
			bestThreshold = grid[i]
		}
	}
	assert.Equal(t, sequential.Threshold, bestThreshold)
}

func TestGrid(t *testing.T) {
	grid := Grid(0.1, 0.9, 0.01)
	require.NotEmpty(t, grid)
	assert.InDelta(t, 0.1, grid[0], 1e-9)
	assert.Less(t, grid[len(grid)-1], 0.9)
	for i := 1; i < len(grid); i++ {
		assert.Greater(t, grid[i], grid[i-1])
	}

	assert.Nil(t, Grid(0.5, 0.5, 0.01))
	assert.Nil(t, Grid(0.1, 0.9, 0))
}
