// Package indicator computes a fixed taxonomy of financial ratios and
// growth metrics from statement data. Every function here is pure: no
// I/O, no clock, no randomness. Division by zero, a nil operand, or a
// NaN result all collapse to an unavailable indicator rather than a
// panic or an infinity.
package indicator

// Value is one computed indicator. An indicator with Available=false
// MUST have Value=nil; callers must not infer availability from a
// present-but-zero Value.
type Value struct {
	Name             string   `json:"name"`
	Value            *float64 `json:"value"`
	Unit             string   `json:"unit"`
	Available        bool     `json:"available"`
	UnavailableReason string  `json:"unavailable_reason,omitempty"`
	GrowthRate       *float64 `json:"growth_rate,omitempty"`
	Previous         *float64 `json:"previous,omitempty"`
	Formula          string   `json:"formula,omitempty"`
	Annualized       bool     `json:"annualized,omitempty"`
	Approximate      bool     `json:"approximate,omitempty"`

	// Intermediates carries named inputs that produced Value, for
	// auditability (e.g. "ebit", "avg_total_assets").
	Intermediates map[string]float64 `json:"intermediates,omitempty"`
}

func unavailable(name, unit, reason string) Value {
	return Value{Name: name, Unit: unit, Available: false, UnavailableReason: reason}
}

func available(name, unit string, v float64) Value {
	vv := v
	return Value{Name: name, Unit: unit, Available: true, Value: &vv}
}

func f(v float64) *float64 { return &v }
