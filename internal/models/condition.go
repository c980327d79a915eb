package models

import (
	"encoding/json"
	"fmt"
)

// Condition identifies one of the independently modeled weather phenomena.
// Each condition gets its own classifier and calibrated decision threshold.
type Condition string

const (
	ConditionRain          Condition = "rain"
	ConditionVeryHot       Condition = "very_hot"
	ConditionVeryCold      Condition = "very_cold"
	ConditionVeryWet       Condition = "very_wet"
	ConditionVeryWindy     Condition = "very_windy"
	ConditionVeryHumid     Condition = "very_humid"
	ConditionUncomfortable Condition = "uncomfortable"
)

// AllConditions returns the fixed set of modeled conditions in canonical order.
func AllConditions() []Condition {
	return []Condition{
		ConditionRain,
		ConditionVeryHot,
		ConditionVeryCold,
		ConditionVeryWet,
		ConditionVeryWindy,
		ConditionVeryHumid,
		ConditionUncomfortable,
	}
}

// Valid reports whether c is one of the known conditions.
func (c Condition) Valid() bool {
	switch c {
	case ConditionRain, ConditionVeryHot, ConditionVeryCold, ConditionVeryWet,
		ConditionVeryWindy, ConditionVeryHumid, ConditionUncomfortable:
		return true
	default:
		return false
	}
}

// String returns the wire name of the condition.
func (c Condition) String() string {
	return string(c)
}

// ParseCondition converts a wire name into a Condition.
func ParseCondition(s string) (Condition, error) {
	c := Condition(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCondition, s)
	}
	return c, nil
}

// UnmarshalJSON validates the condition name on decode.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCondition(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// LabelThresholds holds the domain cutoffs used to derive binary labels from
// daily observations. The values are externally supplied constants; defaults
// mirror the reference dataset's units (inches, degrees Fahrenheit, mph, %RH).
type LabelThresholds struct {
	RainTraceIn      float64 `mapstructure:"rain_trace_in"`
	VeryHotTmaxF     float64 `mapstructure:"very_hot_tmax_f"`
	VeryColdTminF    float64 `mapstructure:"very_cold_tmin_f"`
	VeryWetPrcpIn    float64 `mapstructure:"very_wet_prcp_in"`
	VeryWindyMph     float64 `mapstructure:"very_windy_mph"`
	VeryHumidPct     float64 `mapstructure:"very_humid_pct"`
	DiscomfortHeatW  float64 `mapstructure:"discomfort_heat_weight"`
	DiscomfortHumidW float64 `mapstructure:"discomfort_humid_weight"`
	DiscomfortWindW  float64 `mapstructure:"discomfort_wind_weight"`
	DiscomfortCut    float64 `mapstructure:"discomfort_cut"`
}

// DefaultLabelThresholds returns the reference cutoffs.
func DefaultLabelThresholds() LabelThresholds {
	return LabelThresholds{
		RainTraceIn:      0.0,
		VeryHotTmaxF:     95.0,
		VeryColdTminF:    32.0,
		VeryWetPrcpIn:    0.5,
		VeryWindyMph:     20.0,
		VeryHumidPct:     80.0,
		DiscomfortHeatW:  0.5,
		DiscomfortHumidW: 0.3,
		DiscomfortWindW:  0.2,
		DiscomfortCut:    0.5,
	}
}
