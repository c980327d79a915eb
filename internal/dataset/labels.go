package dataset

import (
	"fmt"

	"github.com/yourusername/skycast/internal/models"
)

// Labels derives the 0/1 label column for a condition from the table using
// the configured domain cutoffs. A missing required column is reported as
// models.ErrColumnMissing so the caller can skip that condition and keep
// calibrating the rest.
func Labels(t *Table, condition models.Condition, th models.LabelThresholds) ([]int, error) {
	switch condition {
	case models.ConditionRain:
		return threshold(t, ColPrecipitation, condition, func(v float64) bool { return v > th.RainTraceIn })
	case models.ConditionVeryWet:
		return threshold(t, ColPrecipitation, condition, func(v float64) bool { return v >= th.VeryWetPrcpIn })
	case models.ConditionVeryHot:
		return threshold(t, ColTempMax, condition, func(v float64) bool { return v >= th.VeryHotTmaxF })
	case models.ConditionVeryCold:
		return threshold(t, ColTempMin, condition, func(v float64) bool { return v <= th.VeryColdTminF })
	case models.ConditionVeryWindy:
		return threshold(t, ColWindSpeed, condition, func(v float64) bool { return v >= th.VeryWindyMph })
	case models.ConditionVeryHumid:
		return threshold(t, ColHumidity, condition, func(v float64) bool { return v >= th.VeryHumidPct })
	case models.ConditionUncomfortable:
		return discomfortLabels(t, th)
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownCondition, condition)
	}
}

func threshold(t *Table, column string, condition models.Condition, exceeds func(float64) bool) ([]int, error) {
	col, ok := t.Columns[column]
	if !ok {
		return nil, fmt.Errorf("%w: %s needs column %s", models.ErrColumnMissing, condition, column)
	}
	labels := make([]int, len(col))
	for i, v := range col {
		if exceeds(v) {
			labels[i] = 1
		}
	}
	return labels, nil
}

// discomfortLabels builds the composite condition as a weighted vote of
// heat, humidity and wind exceedances against the configured cut. Heat is
// mandatory; humidity and wind contribute only when their columns exist.
func discomfortLabels(t *Table, th models.LabelThresholds) ([]int, error) {
	tmax, ok := t.Columns[ColTempMax]
	if !ok {
		return nil, fmt.Errorf("%w: %s needs column %s", models.ErrColumnMissing, models.ConditionUncomfortable, ColTempMax)
	}
	humidity, hasHumidity := t.Columns[ColHumidity]
	wind, hasWind := t.Columns[ColWindSpeed]

	labels := make([]int, len(tmax))
	for i := range tmax {
		score := 0.0
		if tmax[i] >= th.VeryHotTmaxF {
			score += th.DiscomfortHeatW
		}
		if hasHumidity && humidity[i] >= th.VeryHumidPct {
			score += th.DiscomfortHumidW
		}
		if hasWind && wind[i] >= th.VeryWindyMph {
			score += th.DiscomfortWindW
		}
		if score >= th.DiscomfortCut {
			labels[i] = 1
		}
	}
	return labels, nil
}
