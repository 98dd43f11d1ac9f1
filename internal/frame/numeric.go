package frame

import (
	"math"
	"strconv"
	"strings"
)

// Number parses a cell as a float. Null and non-numeric cells report false.
func Number(v Value) (float64, bool) {
	if !v.Valid {
		return 0, false
	}
	s := strings.TrimSpace(v.S)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// FormatNumber renders n without trailing zeros, so integral sums read "12".
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Num returns a non-null cell holding the formatted number, or null for NaN.
func Num(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Null
	}
	return V(FormatNumber(n))
}

// Compare orders two cells: nulls last, numbers numerically when both parse,
// text lexically otherwise.
func Compare(a, b Value) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return 1
	case !b.Valid:
		return -1
	}
	na, okA := Number(a)
	nb, okB := Number(b)
	if okA && okB {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	}
	return strings.Compare(a.S, b.S)
}
