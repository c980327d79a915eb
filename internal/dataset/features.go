package dataset

import (
	"fmt"
	"math"
	"time"
)

// Seasons encoded for the Northern Hemisphere.
const (
	SeasonWinter = 0
	SeasonSpring = 1
	SeasonSummer = 2
	SeasonFall   = 3
)

var seasonNames = map[int]string{
	SeasonWinter: "Winter",
	SeasonSpring: "Spring",
	SeasonSummer: "Summer",
	SeasonFall:   "Fall",
}

// Season maps a month to its season code.
func Season(month time.Month) int {
	switch month {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonFall
	}
}

// SeasonName returns the display name for a season code.
func SeasonName(code int) string {
	if name, ok := seasonNames[code]; ok {
		return name
	}
	return "Unknown"
}

// TemporalFeatureNames is the feature set derivable from a calendar date
// alone. It is what the serving path uses, since inference requests carry
// only a date and location.
var TemporalFeatureNames = []string{
	"SEASON", "MONTH_SIN", "MONTH_COS", "DAY_OF_YEAR_SIN", "DAY_OF_YEAR_COS",
}

// TemporalVector builds the temporal feature vector for a calendar date.
func TemporalVector(year int, month time.Month, day int) []float64 {
	doy := float64(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).YearDay())
	m := float64(month)
	return []float64{
		float64(Season(month)),
		math.Sin(2 * math.Pi * m / 12),
		math.Cos(2 * math.Pi * m / 12),
		math.Sin(2 * math.Pi * doy / 365),
		math.Cos(2 * math.Pi * doy / 365),
	}
}

// TemporalMatrix builds the temporal feature matrix for every row.
func (t *Table) TemporalMatrix() [][]float64 {
	matrix := make([][]float64, t.Len())
	for i, date := range t.Dates {
		matrix[i] = TemporalVector(date.Year(), date.Month(), date.Day())
	}
	return matrix
}

var (
	rollingWindows = []int{3, 7, 14, 30}
	lagDays        = []int{1, 2, 3, 7, 14}
)

// FullMatrix builds the extended feature matrix: temporal features plus raw
// observations, temperature range, rolling statistics and lags for whatever
// columns the table carries. Returned with the column names in order.
func (t *Table) FullMatrix() ([][]float64, []string) {
	names := append([]string{}, TemporalFeatureNames...)
	columns := [][]float64{}

	appendCol := func(name string, col []float64) {
		names = append(names, name)
		columns = append(columns, col)
	}

	tavg, hasAvg := t.Columns[ColTempAvg]
	tmax, hasMax := t.Columns[ColTempMax]
	tmin, hasMin := t.Columns[ColTempMin]
	prcp, hasPrcp := t.Columns[ColPrecipitation]

	if hasAvg {
		appendCol(ColTempAvg, tavg)
	}
	if hasMax {
		appendCol(ColTempMax, tmax)
	}
	if hasMin {
		appendCol(ColTempMin, tmin)
	}
	if hasPrcp {
		appendCol(ColPrecipitation, prcp)
	}
	if wind, ok := t.Columns[ColWindSpeed]; ok {
		appendCol(ColWindSpeed, wind)
	}
	if hum, ok := t.Columns[ColHumidity]; ok {
		appendCol(ColHumidity, hum)
	}

	if hasMax && hasMin {
		rng := make([]float64, t.Len())
		for i := range rng {
			rng[i] = tmax[i] - tmin[i]
		}
		appendCol("TEMP_RANGE", rng)
	}

	for _, w := range rollingWindows {
		if hasAvg {
			appendCol(fmt.Sprintf("TAVG_MA_%dD", w), rollingMean(tavg, w))
			appendCol(fmt.Sprintf("TAVG_STD_%dD", w), rollingStd(tavg, w))
		}
		if hasPrcp {
			appendCol(fmt.Sprintf("PRCP_SUM_%dD", w), rollingSum(prcp, w))
			appendCol(fmt.Sprintf("PRCP_MA_%dD", w), rollingMean(prcp, w))
		}
	}

	for _, lag := range lagDays {
		if hasAvg {
			appendCol(fmt.Sprintf("TAVG_LAG_%dD", lag), lagSeries(tavg, lag))
		}
		if hasPrcp {
			appendCol(fmt.Sprintf("PRCP_LAG_%dD", lag), lagSeries(prcp, lag))
		}
	}

	matrix := t.TemporalMatrix()
	for i := range matrix {
		for _, col := range columns {
			matrix[i] = append(matrix[i], col[i])
		}
	}
	return matrix, names
}

func rollingMean(col []float64, window int) []float64 {
	out := make([]float64, len(col))
	sum := 0.0
	for i, v := range col {
		sum += v
		if i >= window {
			sum -= col[i-window]
		}
		n := window
		if i+1 < window {
			n = i + 1
		}
		out[i] = sum / float64(n)
	}
	return out
}

func rollingSum(col []float64, window int) []float64 {
	out := make([]float64, len(col))
	sum := 0.0
	for i, v := range col {
		sum += v
		if i >= window {
			sum -= col[i-window]
		}
		out[i] = sum
	}
	return out
}

func rollingStd(col []float64, window int) []float64 {
	out := make([]float64, len(col))
	for i := range col {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		n := float64(i - lo + 1)
		mean := 0.0
		for j := lo; j <= i; j++ {
			mean += col[j]
		}
		mean /= n
		variance := 0.0
		for j := lo; j <= i; j++ {
			d := col[j] - mean
			variance += d * d
		}
		if n > 1 {
			variance /= n - 1
		} else {
			variance = 0
		}
		out[i] = math.Sqrt(variance)
	}
	return out
}

// lagSeries shifts the column by lag days, backfilling the head with the
// first observed value.
func lagSeries(col []float64, lag int) []float64 {
	out := make([]float64, len(col))
	for i := range col {
		if i < lag {
			out[i] = col[0]
		} else {
			out[i] = col[i-lag]
		}
	}
	return out
}
