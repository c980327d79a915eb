// Package calibrate selects decision thresholds for binary classifiers by
// scanning a candidate grid and scoring each threshold's precision/recall
// trade-off. The search is a pure function: same probabilities, labels, grid
// and objective always yield the same result, so per-condition calibrations
// can run concurrently without coordination.
package calibrate

import (
	"fmt"

	"github.com/yourusername/skycast/internal/models"
)

// DefaultThreshold is the fallback operating point when no grid candidate
// improves on a zero score.
const DefaultThreshold = 0.5

// Objective maps a (precision, recall) pair to a scalar score. Higher is better.
type Objective func(precision, recall float64) float64

// WeightedObjective returns the standard linear objective
// recallWeight*recall + precisionWeight*precision. The reference sweep uses
// weights 0.6/0.4; they are empirical and carried through config, not baked in.
func WeightedObjective(recallWeight, precisionWeight float64) Objective {
	return func(precision, recall float64) float64 {
		return recallWeight*recall + precisionWeight*precision
	}
}

// Grid builds the ascending arithmetic sequence of candidate thresholds
// [start, stop) with the given step.
func Grid(start, stop, step float64) []float64 {
	if step <= 0 || stop <= start {
		return nil
	}
	grid := make([]float64, 0, int((stop-start)/step)+1)
	for t := start; t < stop; t += step {
		grid = append(grid, t)
	}
	return grid
}

// Options tunes the threshold search.
type Options struct {
	// RecallCeiling excludes candidates whose recall exceeds the ceiling.
	// Values <= 0 disable the gate.
	RecallCeiling float64
	// SkipDegenerate excludes candidates whose predictions collapse to a
	// single class (all positive or all negative), so a constant predictor
	// can never win the scan.
	SkipDegenerate bool
}

// Result is the calibrated operating point for one condition. The metrics are
// the realized performance at Threshold over the full evaluation set, ungated
// by RecallCeiling or the degenerate-prediction skip.
type Result struct {
	Threshold float64 `json:"threshold"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Calibrate scans grid in ascending order and returns the threshold with the
// best objective score, tie-broken toward the lowest threshold. Zero-denominator
// precision/recall are treated as 0 so the scan is total; single-class label
// sets do not fail and fall through to the default threshold.
func Calibrate(probs []float64, labels []int, grid []float64, objective Objective, opts Options) (Result, error) {
	if len(grid) == 0 {
		return Result{}, fmt.Errorf("%w: empty threshold grid", models.ErrInvalidConfiguration)
	}
	if len(probs) != len(labels) {
		return Result{}, fmt.Errorf("%w: %d probabilities vs %d labels",
			models.ErrInvalidConfiguration, len(probs), len(labels))
	}
	if len(probs) == 0 {
		return Result{}, fmt.Errorf("%w: empty evaluation set", models.ErrInvalidConfiguration)
	}
	if objective == nil {
		return Result{}, fmt.Errorf("%w: nil objective", models.ErrInvalidConfiguration)
	}

	bestThreshold := DefaultThreshold
	bestScore := 0.0

	for _, t := range grid {
		tp, fp, _, fn := confusion(probs, labels, t)
		precision := Precision(tp, fp)
		recall := Recall(tp, fn)

		if opts.RecallCeiling > 0 && recall > opts.RecallCeiling {
			continue
		}
		if opts.SkipDegenerate {
			positives := tp + fp
			if positives == 0 || positives == len(probs) {
				continue
			}
		}

		// Strict improvement only: the first (lowest) threshold reaching a
		// score keeps it, preserving the ascending tie-break.
		if score := objective(precision, recall); score > bestScore {
			bestScore = score
			bestThreshold = t
		}
	}

	result := Result{Threshold: bestThreshold}
	result.Accuracy, result.Precision, result.Recall, result.F1 = metricsAt(probs, labels, bestThreshold)
	return result, nil
}
