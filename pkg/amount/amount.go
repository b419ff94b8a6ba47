package amount

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places the payment network settles at.
// All stored and returned monetary values are rounded to this scale.
const Scale = 7

// Epsilon is the tolerance used for monetary comparisons.
const Epsilon = 1e-9

// ToFloat coerces arbitrary input to a finite float64. Non-numeric,
// non-finite and absent values all coerce to 0. Never panics.
func ToFloat(v interface{}) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return finite(f)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return finite(f)
	case *float64:
		if n == nil {
			return 0
		}
		return finite(*n)
	default:
		return 0
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ClampNonNegative coerces v like ToFloat and floors the result at 0.
func ClampNonNegative(v float64) float64 {
	return math.Max(0, finite(v))
}

// RoundToScale rounds v half-up to the given number of decimal places.
func RoundToScale(v float64, decimals int32) float64 {
	f, _ := decimal.NewFromFloat(finite(v)).Round(decimals).Float64()
	return f
}

// Round7 rounds to the payment network's native scale.
func Round7(v float64) float64 {
	return RoundToScale(v, Scale)
}

// FormatScaled renders v as a fixed Scale-decimal string, the form the
// payment network expects for operation amounts.
func FormatScaled(v float64) string {
	return decimal.NewFromFloat(finite(v)).StringFixed(Scale)
}

// GTE reports whether a >= b within Epsilon.
func GTE(a, b float64) bool {
	return a+Epsilon >= b
}

// Equal reports whether a and b are equal within Epsilon.
func Equal(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}
