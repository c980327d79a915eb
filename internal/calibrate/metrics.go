package calibrate

// confusion tallies the confusion matrix of probabilities binarized at
// threshold t against the true labels. Binarization rule: positive when
// probability >= t.
func confusion(probs []float64, labels []int, t float64) (tp, fp, tn, fn int) {
	for i, p := range probs {
		predicted := p >= t
		actual := labels[i] == 1
		switch {
		case predicted && actual:
			tp++
		case predicted && !actual:
			fp++
		case !predicted && !actual:
			tn++
		default:
			fn++
		}
	}
	return
}

// Precision is the fraction of positive predictions that are correct.
// Reported as 0 when there are no positive predictions.
func Precision(tp, fp int) float64 {
	if tp+fp == 0 {
		return 0
	}
	return float64(tp) / float64(tp+fp)
}

// Recall is the fraction of actual positives correctly predicted.
// Reported as 0 when there are no positive labels.
func Recall(tp, fn int) float64 {
	if tp+fn == 0 {
		return 0
	}
	return float64(tp) / float64(tp+fn)
}

// Accuracy is the fraction of all predictions that are correct.
func Accuracy(tp, fp, tn, fn int) float64 {
	total := tp + fp + tn + fn
	if total == 0 {
		return 0
	}
	return float64(tp+tn) / float64(total)
}

// F1 is the harmonic mean of precision and recall, 0 when both are 0.
func F1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// metricsAt computes the full metric set at a threshold.
func metricsAt(probs []float64, labels []int, t float64) (accuracy, precision, recall, f1 float64) {
	tp, fp, tn, fn := confusion(probs, labels, t)
	precision = Precision(tp, fp)
	recall = Recall(tp, fn)
	accuracy = Accuracy(tp, fp, tn, fn)
	f1 = F1(precision, recall)
	return
}
