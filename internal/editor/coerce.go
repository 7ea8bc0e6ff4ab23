package editor

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxPercent is the upper bound of a tax percentage.
const MaxPercent = 100.0

const (
	// maxNumberLength bounds the raw text of a numeric field.
	maxNumberLength = 64
	// maxExponent bounds the decimal exponent of a numeric field.
	maxExponent = 30
)

var (
	minCount = decimal.NewFromInt(math.MinInt32)
	maxCount = decimal.NewFromInt(math.MaxInt32)
)

// ParseAmount turns raw form text into a non-negative amount.
// Unparsable, negative or non-finite input coerces to 0; it is never rejected.
func ParseAmount(text string) float64 {
	d, ok := parseDecimal(text)
	if !ok || d.IsNegative() {
		return 0
	}
	v := d.InexactFloat64()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// ParsePercent is ParseAmount clamped to [0, MaxPercent].
func ParsePercent(text string) float64 {
	v := ParseAmount(text)
	if v > MaxPercent {
		return MaxPercent
	}
	return v
}

// ParseCount turns raw form text into a participant count. The fractional part
// is dropped; unparsable or out-of-range input coerces to 0 so that range
// validation rejects it.
func ParseCount(text string) int {
	d, ok := parseDecimal(text)
	if !ok || d.LessThan(minCount) || d.GreaterThan(maxCount) {
		return 0
	}
	return int(d.IntPart())
}

func parseDecimal(text string) (decimal.Decimal, bool) {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxNumberLength {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, false
	}
	return d, true
}
