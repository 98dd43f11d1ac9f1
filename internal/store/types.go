package store

import (
	"math"
	"strconv"

	"github.com/gyeh/scuolestats/internal/frame"
)

// ColumnType is the storage class inferred for a column.
type ColumnType int

const (
	Text ColumnType = iota
	Integer
	Real
)

// SQL returns the column type name for dialect.
func (t ColumnType) SQL(dialect string) string {
	switch t {
	case Integer:
		if dialect == Postgres {
			return "BIGINT"
		}
		return "INTEGER"
	case Real:
		if dialect == Postgres {
			return "DOUBLE PRECISION"
		}
		return "REAL"
	default:
		return "TEXT"
	}
}

// InferTypes picks a type per column of f from its non-null cells: Integer
// when every cell is an integer, Real when every cell is a finite number,
// Text otherwise. Codes with leading zeros and all-null columns stay Text.
func InferTypes(f *frame.Frame) []ColumnType {
	types := make([]ColumnType, f.Width())
	for j := range types {
		types[j] = Integer
	}
	seen := make([]bool, f.Width())
	for i := 0; i < f.Len(); i++ {
		for j, v := range f.Row(i) {
			if !v.Valid || types[j] == Text {
				continue
			}
			seen[j] = true
			types[j] = narrow(types[j], v.S)
		}
	}
	for j := range types {
		if !seen[j] {
			types[j] = Text
		}
	}
	return types
}

func narrow(t ColumnType, s string) ColumnType {
	if leadingZero(s) {
		return Text
	}
	if t == Integer {
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Integer
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) && plainNumber(s) {
		return Real
	}
	return Text
}

// leadingZero reports codes like "001001" that must not lose their zeros.
func leadingZero(s string) bool {
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}

// plainNumber rejects spellings ParseFloat accepts but a CSV never means as
// numbers: hex, underscores, inf and nan.
func plainNumber(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}

// convert returns the driver value of v for a column of type t.
func convert(v frame.Value, t ColumnType) any {
	if !v.Valid {
		return nil
	}
	switch t {
	case Integer:
		n, err := strconv.ParseInt(v.S, 10, 64)
		if err == nil {
			return n
		}
	case Real:
		f, err := strconv.ParseFloat(v.S, 64)
		if err == nil {
			return f
		}
	}
	return v.S
}
