// Package dataset loads the merged daily climate table and derives the
// features and per-condition labels the classifiers train on.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"time"
)

// Column names of the cleaned daily climate table.
const (
	ColPrecipitation = "PRCP"
	ColTempAvg       = "TAVG"
	ColTempMax       = "TMAX"
	ColTempMin       = "TMIN"
	ColWindSpeed     = "AWND"
	ColHumidity      = "RHUM"
)

var dateLayouts = []string{"2006-01-02", "1/2/2006", "01/02/2006"}

// Table is a columnar view of the daily climate record, ordered by date.
// Missing observations are NaN until Clean fills them.
type Table struct {
	Dates   []time.Time
	Columns map[string][]float64
}

// Len returns the number of daily rows.
func (t *Table) Len() int {
	return len(t.Dates)
}

// HasColumn reports whether the named column was present in the source file.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Columns[name]
	return ok
}

// ReadCSV loads a daily climate CSV. A DATE column is required; every other
// recognized column is optional. Rows are sorted by date after load.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a daily climate CSV from a reader.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	dateIdx := -1
	numeric := map[string]int{}
	for i, name := range header {
		switch name {
		case "DATE":
			dateIdx = i
		case ColPrecipitation, ColTempAvg, ColTempMax, ColTempMin, ColWindSpeed, ColHumidity:
			numeric[name] = i
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("dataset has no DATE column")
	}

	table := &Table{Columns: map[string][]float64{}}
	for name := range numeric {
		table.Columns[name] = nil
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		date, err := parseDate(row[dateIdx])
		if err != nil {
			// Unparseable dates are dropped, matching the lenient source
			// behaviour for malformed station exports.
			continue
		}
		table.Dates = append(table.Dates, date)
		for name, idx := range numeric {
			table.Columns[name] = append(table.Columns[name], parseFloat(row[idx]))
		}
	}

	if table.Len() == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	table.sortByDate()
	return table, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseFloat(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func (t *Table) sortByDate() {
	order := make([]int, t.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return t.Dates[order[a]].Before(t.Dates[order[b]])
	})

	dates := make([]time.Time, t.Len())
	for i, idx := range order {
		dates[i] = t.Dates[idx]
	}
	t.Dates = dates

	for name, col := range t.Columns {
		sorted := make([]float64, len(col))
		for i, idx := range order {
			sorted[i] = col[idx]
		}
		t.Columns[name] = sorted
	}
}

// Clean fills missing observations in place: temperatures, wind and humidity
// are linearly interpolated with edge fill, precipitation gaps mean no rain,
// and TAVG falls back to the TMAX/TMIN midpoint.
func (t *Table) Clean() {
	for _, name := range []string{ColTempAvg, ColTempMax, ColTempMin, ColWindSpeed, ColHumidity} {
		if col, ok := t.Columns[name]; ok {
			interpolate(col)
		}
	}

	if tavg, ok := t.Columns[ColTempAvg]; ok {
		tmax, hasMax := t.Columns[ColTempMax]
		tmin, hasMin := t.Columns[ColTempMin]
		if hasMax && hasMin {
			for i := range tavg {
				if math.IsNaN(tavg[i]) && !math.IsNaN(tmax[i]) && !math.IsNaN(tmin[i]) {
					tavg[i] = (tmax[i] + tmin[i]) / 2
				}
			}
		}
	}

	if prcp, ok := t.Columns[ColPrecipitation]; ok {
		for i := range prcp {
			if math.IsNaN(prcp[i]) {
				prcp[i] = 0
			}
		}
	}
}

// CapOutliers clips each continuous column to [Q1-k*IQR, Q3+k*IQR], the
// lenient capping the reference pipeline applies with k=3.
func (t *Table) CapOutliers(k float64) {
	for _, col := range t.Columns {
		lower, upper, ok := iqrBounds(col, k)
		if !ok {
			continue
		}
		for i, v := range col {
			if math.IsNaN(v) {
				continue
			}
			if v < lower {
				col[i] = lower
			} else if v > upper {
				col[i] = upper
			}
		}
	}
}

func iqrBounds(col []float64, k float64) (lower, upper float64, ok bool) {
	values := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	if len(values) < 4 {
		return 0, 0, false
	}
	sort.Float64s(values)
	q1 := quantile(values, 0.25)
	q3 := quantile(values, 0.75)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr, true
}

// quantile uses linear interpolation over a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// interpolate fills NaN runs linearly between known neighbours and extends
// edge values outward.
func interpolate(col []float64) {
	n := len(col)
	prev := -1
	for i := 0; i < n; i++ {
		if math.IsNaN(col[i]) {
			continue
		}
		if prev < 0 {
			for j := 0; j < i; j++ {
				col[j] = col[i]
			}
		} else if prev < i-1 {
			step := (col[i] - col[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				col[j] = col[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}
	if prev >= 0 {
		for j := prev + 1; j < n; j++ {
			col[j] = col[prev]
		}
	}
}
