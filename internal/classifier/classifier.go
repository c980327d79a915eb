// Package classifier provides the trained binary classifiers behind each
// weather condition. The calibration layer only consumes probability output
// and never reaches into training internals.
package classifier

// Classifier produces rain/heat/etc. probabilities for feature vectors.
type Classifier interface {
	// PredictProbability returns the positive-class probability in [0,1]
	// for a single feature vector.
	PredictProbability(features []float64) float64

	// PredictBatch returns positive-class probabilities for each row of the
	// feature matrix.
	PredictBatch(matrix [][]float64) []float64
}
