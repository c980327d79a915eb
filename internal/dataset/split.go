package dataset

import (
	"math/rand"
	"sort"
)

// StratifiedSplit partitions row indices into train and eval sets, keeping
// the class ratio in both. The shuffle is seeded, so a fixed seed always
// yields the same partition.
func StratifiedSplit(labels []int, evalFraction float64, seed int64) (train, eval []int) {
	rng := rand.New(rand.NewSource(seed))

	byClass := map[int][]int{}
	for i, y := range labels {
		byClass[y] = append(byClass[y], i)
	}

	for _, class := range []int{0, 1} {
		indices := byClass[class]
		rng.Shuffle(len(indices), func(a, b int) {
			indices[a], indices[b] = indices[b], indices[a]
		})
		cut := int(float64(len(indices)) * evalFraction)
		eval = append(eval, indices[:cut]...)
		train = append(train, indices[cut:]...)
	}

	sort.Ints(train)
	sort.Ints(eval)
	return train, eval
}

// Oversample balances the training indices by duplicating seeded-random
// minority-class rows until both classes match, standing in for the
// resampling step the source pipeline runs before fitting.
func Oversample(train []int, labels []int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))

	var positives, negatives []int
	for _, idx := range train {
		if labels[idx] == 1 {
			positives = append(positives, idx)
		} else {
			negatives = append(negatives, idx)
		}
	}
	if len(positives) == 0 || len(negatives) == 0 {
		return train
	}

	minority, majority := positives, negatives
	if len(negatives) < len(positives) {
		minority, majority = negatives, positives
	}

	balanced := append([]int{}, train...)
	for i := len(minority); i < len(majority); i++ {
		balanced = append(balanced, minority[rng.Intn(len(minority))])
	}
	return balanced
}

// Rows gathers matrix rows by index.
func Rows(matrix [][]float64, indices []int) [][]float64 {
	out := make([][]float64, len(indices))
	for i, idx := range indices {
		out[i] = matrix[idx]
	}
	return out
}

// Gather collects label values by index.
func Gather(labels []int, indices []int) []int {
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[i] = labels[idx]
	}
	return out
}
