package classifier

import (
	"fmt"
	"math"
	"sort"
)

// BoostConfig holds gradient boosting hyperparameters.
type BoostConfig struct {
	Rounds       int     `mapstructure:"rounds"`
	LearningRate float64 `mapstructure:"learning_rate"`
	MaxSplits    int     `mapstructure:"max_splits"`
}

// DefaultBoostConfig mirrors the reference model's settings at stump depth.
func DefaultBoostConfig() BoostConfig {
	return BoostConfig{
		Rounds:       300,
		LearningRate: 0.05,
		MaxSplits:    32,
	}
}

// stump is a depth-1 regression tree on the raw (log-odds) score.
type stump struct {
	feature int
	split   float64
	left    float64
	right   float64
}

// GradientBoost is a gradient-boosted ensemble of decision stumps trained
// with logistic loss. Training is deterministic: features are scanned in
// index order and ties keep the earliest candidate.
type GradientBoost struct {
	base   float64
	stumps []stump
	rate   float64
}

// TrainBoost fits a gradient-boosted stump ensemble on the given matrix and
// 0/1 labels. Single-class label sets train to a constant predictor rather
// than failing, so a sparse condition still yields a usable model.
func TrainBoost(matrix [][]float64, labels []int, cfg BoostConfig) (*GradientBoost, error) {
	n := len(matrix)
	if n == 0 || len(labels) != n {
		return nil, fmt.Errorf("training set: %d rows vs %d labels", n, len(labels))
	}
	if cfg.Rounds <= 0 || cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("training config: rounds %d, learning rate %v", cfg.Rounds, cfg.LearningRate)
	}
	if cfg.MaxSplits <= 0 {
		cfg.MaxSplits = DefaultBoostConfig().MaxSplits
	}

	positives := 0
	for _, y := range labels {
		if y == 1 {
			positives++
		}
	}
	prior := clamp(float64(positives)/float64(n), 1e-4, 1-1e-4)

	model := &GradientBoost{
		base: math.Log(prior / (1 - prior)),
		rate: cfg.LearningRate,
	}
	if positives == 0 || positives == n {
		return model, nil
	}

	candidates := splitCandidates(matrix, cfg.MaxSplits)

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = model.base
	}

	gradients := make([]float64, n)
	hessians := make([]float64, n)
	for round := 0; round < cfg.Rounds; round++ {
		for i := range scores {
			p := sigmoid(scores[i])
			gradients[i] = float64(labels[i]) - p
			hessians[i] = p * (1 - p)
		}

		best, ok := fitStump(matrix, gradients, hessians, candidates)
		if !ok {
			break
		}

		model.stumps = append(model.stumps, best)
		for i, row := range matrix {
			scores[i] += model.rate * best.value(row)
		}
	}

	return model, nil
}

// PredictProbability implements Classifier.
func (g *GradientBoost) PredictProbability(features []float64) float64 {
	score := g.base
	for _, s := range g.stumps {
		score += g.rate * s.value(features)
	}
	return sigmoid(score)
}

// PredictBatch implements Classifier.
func (g *GradientBoost) PredictBatch(matrix [][]float64) []float64 {
	probs := make([]float64, len(matrix))
	for i, row := range matrix {
		probs[i] = g.PredictProbability(row)
	}
	return probs
}

// Rounds returns the number of fitted stumps.
func (g *GradientBoost) Rounds() int {
	return len(g.stumps)
}

func (s stump) value(features []float64) float64 {
	if s.feature < len(features) && features[s.feature] < s.split {
		return s.left
	}
	return s.right
}

// fitStump finds the single split minimizing squared gradient loss, with a
// Newton step per leaf. Returns false when no split separates the data.
func fitStump(matrix [][]float64, gradients, hessians []float64, candidates [][]float64) (stump, bool) {
	var (
		best     stump
		bestGain = 0.0
		found    = false
	)

	totalG, totalH := 0.0, 0.0
	for i := range gradients {
		totalG += gradients[i]
		totalH += hessians[i]
	}
	parentScore := gainScore(totalG, totalH)

	for feature, splits := range candidates {
		for _, split := range splits {
			leftG, leftH := 0.0, 0.0
			leftCount := 0
			for i, row := range matrix {
				if row[feature] < split {
					leftG += gradients[i]
					leftH += hessians[i]
					leftCount++
				}
			}
			if leftCount == 0 || leftCount == len(matrix) {
				continue
			}

			gain := gainScore(leftG, leftH) + gainScore(totalG-leftG, totalH-leftH) - parentScore
			if gain > bestGain {
				bestGain = gain
				best = stump{
					feature: feature,
					split:   split,
					left:    newtonStep(leftG, leftH),
					right:   newtonStep(totalG-leftG, totalH-leftH),
				}
				found = true
			}
		}
	}

	return best, found
}

// splitCandidates extracts up to maxSplits midpoints per feature from the
// sorted distinct values.
func splitCandidates(matrix [][]float64, maxSplits int) [][]float64 {
	if len(matrix) == 0 {
		return nil
	}
	features := len(matrix[0])
	candidates := make([][]float64, features)

	for f := 0; f < features; f++ {
		values := make([]float64, 0, len(matrix))
		for _, row := range matrix {
			values = append(values, row[f])
		}
		sort.Float64s(values)

		midpoints := make([]float64, 0, maxSplits)
		for i := 1; i < len(values); i++ {
			if values[i] != values[i-1] {
				midpoints = append(midpoints, (values[i]+values[i-1])/2)
			}
		}
		if len(midpoints) > maxSplits {
			sampled := make([]float64, 0, maxSplits)
			stride := float64(len(midpoints)) / float64(maxSplits)
			for i := 0; i < maxSplits; i++ {
				sampled = append(sampled, midpoints[int(float64(i)*stride)])
			}
			midpoints = sampled
		}
		candidates[f] = midpoints
	}

	return candidates
}

func gainScore(g, h float64) float64 {
	if h <= 0 {
		return 0
	}
	return g * g / h
}

func newtonStep(g, h float64) float64 {
	if h <= 0 {
		return 0
	}
	return clamp(g/h, -4, 4)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, x))
}
