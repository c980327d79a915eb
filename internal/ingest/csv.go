package ingest

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var csvDateLayouts = []string{"2006-01-02", "1/2/2006", "01/02/2006"}

// parseObservationsCSV reads provider CSV data into observations. The header
// row decides the column mapping; unknown columns are ignored, blank cells
// become nil fields, and rows with unparseable dates are dropped.
func parseObservationsCSV(r io.Reader, sourceName string) ([]Observation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, NewSourceError(sourceName, ErrCodeInvalidData, "missing header row", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	dateIdx, ok := cols["DATE"]
	if !ok {
		return nil, NewSourceError(sourceName, ErrCodeInvalidData, "DATE column is required", ErrInvalidData)
	}

	var observations []Observation
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewSourceError(sourceName, ErrCodeInvalidData, "malformed row", err)
		}

		date, ok := parseObservationDate(row[dateIdx])
		if !ok {
			continue
		}

		obs := Observation{Date: date}
		obs.Prcp = cellDecimal(row, cols, "PRCP")
		obs.Tavg = cellFloat(row, cols, "TAVG")
		obs.Tmax = cellFloat(row, cols, "TMAX")
		obs.Tmin = cellFloat(row, cols, "TMIN")
		obs.Awnd = cellFloat(row, cols, "AWND")
		obs.Rhum = cellFloat(row, cols, "RHUM")
		observations = append(observations, obs)
	}

	return observations, nil
}

func parseObservationDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func cellFloat(row []string, cols map[string]int, name string) *float64 {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return nil
	}
	return &v
}

func cellDecimal(row []string, cols map[string]int, name string) *decimal.Decimal {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(row[idx]))
	if err != nil {
		return nil
	}
	return &d
}
