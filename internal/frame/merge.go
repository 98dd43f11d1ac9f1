package frame

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// How selects the join type of Merge.
type How string

const (
	Inner How = "inner"
	Left  How = "left"
	Outer How = "outer"
)

// DefaultSuffixes are appended to overlapping non-key columns.
var DefaultSuffixes = [2]string{"_x", "_y"}

// MergeOptions configures Merge.
type MergeOptions struct {
	How      How
	On       []string
	Suffixes [2]string // zero value means DefaultSuffixes
	Sort     bool      // sort the result by the key columns
}

// Merge joins left and right on the key columns.
//
// The result holds every left column in left order followed by the non-key
// right columns in right order. Non-key columns present on both sides get the
// configured suffixes. Rows whose key contains a null never match. For inner
// and left joins row order follows left, each left row expanded by its right
// matches in right order; an outer join then appends the unmatched right rows.
// Key cells of right-only rows are taken from right.
func Merge(left, right *Frame, opts MergeOptions) (*Frame, error) {
	if len(opts.On) == 0 {
		return nil, fmt.Errorf("merge: no key columns")
	}
	switch opts.How {
	case Inner, Left, Outer:
	default:
		return nil, fmt.Errorf("merge: unsupported join %q", opts.How)
	}
	suffixes := opts.Suffixes
	if suffixes == [2]string{} {
		suffixes = DefaultSuffixes
	}
	if suffixes[0] == suffixes[1] {
		return nil, fmt.Errorf("merge: suffixes must differ")
	}

	isKey := make(map[string]bool, len(opts.On))
	lk := make([]int, len(opts.On))
	rk := make([]int, len(opts.On))
	for i, k := range opts.On {
		li, ok := left.index[k]
		if !ok {
			return nil, fmt.Errorf("merge: key %q missing from left", k)
		}
		ri, ok := right.index[k]
		if !ok {
			return nil, fmt.Errorf("merge: key %q missing from right", k)
		}
		isKey[k] = true
		lk[i], rk[i] = li, ri
	}

	// Output layout.
	var cols []string
	leftPos := make([]int, len(left.columns))
	for j, c := range left.columns {
		name := c
		if !isKey[c] && right.Has(c) {
			name = c + suffixes[0]
		}
		leftPos[j] = len(cols)
		cols = append(cols, name)
	}
	rightPos := make([]int, len(right.columns))
	for j, c := range right.columns {
		if isKey[c] {
			rightPos[j] = leftPos[left.index[c]]
			continue
		}
		name := c
		if left.Has(c) {
			name = c + suffixes[1]
		}
		rightPos[j] = len(cols)
		cols = append(cols, name)
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c] {
			return nil, fmt.Errorf("merge: duplicate output column %q", c)
		}
		seen[c] = true
	}
	out := New(cols...)

	// Hash the right side by key.
	buckets := make(map[string][]int, len(right.rows))
	for i, row := range right.rows {
		if key, ok := joinKey(row, rk); ok {
			buckets[key] = append(buckets[key], i)
		}
	}

	matched := make([]bool, len(right.rows))
	for _, lrow := range left.rows {
		var hits []int
		if key, ok := joinKey(lrow, lk); ok {
			hits = buckets[key]
		}
		if len(hits) == 0 {
			if opts.How != Inner {
				out.rows = append(out.rows, combine(len(cols), lrow, leftPos, nil, nil, isKey, right.columns))
			}
			continue
		}
		for _, ri := range hits {
			matched[ri] = true
			out.rows = append(out.rows, combine(len(cols), lrow, leftPos, right.rows[ri], rightPos, isKey, right.columns))
		}
	}
	if opts.How == Outer {
		for ri, rrow := range right.rows {
			if matched[ri] {
				continue
			}
			r := make([]Value, len(cols))
			for j, v := range rrow {
				r[rightPos[j]] = v
			}
			out.rows = append(out.rows, r)
		}
	}

	if opts.Sort {
		out.SortBy(opts.On...)
	}
	return out, nil
}

func combine(width int, lrow []Value, leftPos []int, rrow []Value, rightPos []int, isKey map[string]bool, rightCols []string) []Value {
	r := make([]Value, width)
	for j, v := range lrow {
		r[leftPos[j]] = v
	}
	for j, v := range rrow {
		if isKey[rightCols[j]] {
			continue
		}
		r[rightPos[j]] = v
	}
	return r
}

// joinKey encodes the key cells of row; ok is false if any key cell is null.
func joinKey(row []Value, idx []int) (string, bool) {
	var b strings.Builder
	for _, j := range idx {
		v := row[j]
		if !v.Valid {
			return "", false
		}
		b.WriteString(strconv.Itoa(len(v.S)))
		b.WriteByte(':')
		b.WriteString(v.S)
	}
	return b.String(), true
}

// SortBy stably sorts rows by the given columns using Compare.
// Unknown columns are ignored.
func (f *Frame) SortBy(cols ...string) {
	idx := make([]int, 0, len(cols))
	for _, c := range cols {
		if j, ok := f.index[c]; ok {
			idx = append(idx, j)
		}
	}
	sort.SliceStable(f.rows, func(a, b int) bool {
		for _, j := range idx {
			if c := Compare(f.rows[a][j], f.rows[b][j]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}
