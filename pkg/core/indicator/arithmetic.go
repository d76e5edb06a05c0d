package indicator

import (
	"math"
	"time"
)

// annualizationFactor maps an interim period's fiscal-quarter-end month
// to the multiplier that projects its flow measures to a full year.
func annualizationFactor(reportPeriod string) (float64, bool) {
	t, err := time.Parse("2006-01-02", reportPeriod)
	if err != nil {
		return 1, false
	}
	switch t.Month() {
	case time.March:
		return 4.0, true
	case time.June:
		return 2.0, true
	case time.September:
		return 4.0 / 3.0, true
	case time.December:
		return 1.0, true
	default:
		return 1, false
	}
}

// safeDiv divides num/den, collapsing zero/nil/NaN/Inf denominators and
// NaN numerators into an unavailable result rather than ±Inf or NaN.
func safeDiv(num, den float64) (float64, bool) {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return 0, false
	}
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, false
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// growthRate computes (current-previous)/|previous| * 100. A nil
// operand or a zero-or-negative previous base yields a null rate, never
// ±Inf — mirrors the source's explicit "avoid division by zero" guard,
// extended to reject a negative base since a percentage swing off a
// negative prior value is not meaningful.
func growthRate(current, previous *float64) *float64 {
	if current == nil || previous == nil {
		return nil
	}
	if *previous <= 0 {
		return nil
	}
	rate, ok := safeDiv((*current-*previous)*100, math.Abs(*previous))
	if !ok {
		return nil
	}
	return f(round2(rate))
}

// periodAverage averages a stock measure's current and prior period-end
// values; if prior is nil, the current value is used unchanged.
func periodAverage(current, prior *float64) (float64, bool) {
	if current == nil {
		return 0, false
	}
	if prior == nil {
		return *current, true
	}
	return (*current + *prior) / 2, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
