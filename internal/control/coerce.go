package control

import (
	"math"
	"strconv"
	"strings"
)

// CoerceInt converts user text to an integer. Surrounding whitespace is
// ignored, fractions truncate toward zero and anything that is not a finite
// number gives 0. Results saturate at the int32 range.
func CoerceInt(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return saturate(float64(n))
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return saturate(math.Trunc(f))
}

func saturate(f float64) int {
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	default:
		return int(f)
	}
}
