// Package frame implements the small in-memory table used to consolidate
// school extracts: nullable string cells, ordered columns, and the handful of
// relational operations the builders need (concat, merge, group-by sum).
package frame

import (
	"fmt"
	"strings"
)

// Value is a single nullable cell. Cells are kept as text; numeric meaning is
// recovered on demand by Number and at write time by the store.
type Value struct {
	S     string
	Valid bool
}

// V returns a non-null cell holding s.
func V(s string) Value {
	return Value{S: s, Valid: true}
}

// Null is the missing-value marker.
var Null = Value{}

func (v Value) String() string {
	if !v.Valid {
		return "<null>"
	}
	return v.S
}

// Frame is a rectangular table with uniquely named columns.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// New returns an empty frame with the given columns.
func New(columns ...string) *Frame {
	f := &Frame{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	copy(f.columns, columns)
	for i, c := range columns {
		f.index[c] = i
	}
	return f
}

// Columns returns a copy of the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.columns) }

// Has reports whether the frame has a column named col.
func (f *Frame) Has(col string) bool {
	_, ok := f.index[col]
	return ok
}

// ColumnIndex returns the position of col.
func (f *Frame) ColumnIndex(col string) (int, bool) {
	i, ok := f.index[col]
	return i, ok
}

// Append adds a row. The row must have exactly Width cells.
func (f *Frame) Append(row []Value) error {
	if len(row) != len(f.columns) {
		return fmt.Errorf("append row: got %d cells, frame has %d columns", len(row), len(f.columns))
	}
	r := make([]Value, len(row))
	copy(r, row)
	f.rows = append(f.rows, r)
	return nil
}

// AppendStrings adds a row of non-null cells, except empty strings which
// become null.
func (f *Frame) AppendStrings(cells ...string) error {
	row := make([]Value, len(cells))
	for i, c := range cells {
		if c != "" {
			row[i] = V(c)
		}
	}
	return f.Append(row)
}

// Row returns the i-th row. The slice is shared with the frame.
func (f *Frame) Row(i int) []Value { return f.rows[i] }

// Get returns the cell at row i, column col. Unknown columns read as null.
func (f *Frame) Get(i int, col string) Value {
	j, ok := f.index[col]
	if !ok {
		return Null
	}
	return f.rows[i][j]
}

// Set overwrites the cell at row i, column col.
func (f *Frame) Set(i int, col string, v Value) error {
	j, ok := f.index[col]
	if !ok {
		return fmt.Errorf("set: unknown column %q", col)
	}
	f.rows[i][j] = v
	return nil
}

// Column returns a copy of the cells of col.
func (f *Frame) Column(col string) ([]Value, error) {
	j, ok := f.index[col]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", col)
	}
	out := make([]Value, len(f.rows))
	for i, r := range f.rows {
		out[i] = r[j]
	}
	return out, nil
}

// SetColumn assigns v to every row of col, adding the column at the end if it
// does not exist yet.
func (f *Frame) SetColumn(col string, v Value) {
	j, ok := f.index[col]
	if !ok {
		f.columns = append(f.columns, col)
		j = len(f.columns) - 1
		f.index[col] = j
		for i := range f.rows {
			f.rows[i] = append(f.rows[i], v)
		}
		return
	}
	for i := range f.rows {
		f.rows[i][j] = v
	}
}

// Drop removes the named columns. Missing columns are an error.
func (f *Frame) Drop(cols ...string) error {
	drop := make(map[int]bool, len(cols))
	for _, c := range cols {
		j, ok := f.index[c]
		if !ok {
			return fmt.Errorf("drop: unknown column %q", c)
		}
		drop[j] = true
	}
	keep := make([]int, 0, len(f.columns)-len(drop))
	for j := range f.columns {
		if !drop[j] {
			keep = append(keep, j)
		}
	}
	f.project(keep)
	return nil
}

// Select returns a new frame with only cols, in the given order.
func (f *Frame) Select(cols ...string) (*Frame, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		j, ok := f.index[c]
		if !ok {
			return nil, fmt.Errorf("select: unknown column %q", c)
		}
		idx[i] = j
	}
	out := f.Clone()
	out.project(idx)
	return out, nil
}

func (f *Frame) project(idx []int) {
	cols := make([]string, len(idx))
	for i, j := range idx {
		cols[i] = f.columns[j]
	}
	for r, row := range f.rows {
		nr := make([]Value, len(idx))
		for i, j := range idx {
			nr[i] = row[j]
		}
		f.rows[r] = nr
	}
	f.columns = cols
	f.reindex()
}

func (f *Frame) reindex() {
	f.index = make(map[string]int, len(f.columns))
	for i, c := range f.columns {
		f.index[c] = i
	}
}

// Rename renames columns found in mapping, leaving the others unchanged.
// Renaming two columns onto the same name is an error.
func (f *Frame) Rename(mapping map[string]string) error {
	return f.MapNames(func(c string) string {
		if to, ok := mapping[c]; ok {
			return to
		}
		return c
	})
}

// MapNames applies fn to every column name.
func (f *Frame) MapNames(fn func(string) string) error {
	cols := make([]string, len(f.columns))
	seen := make(map[string]string, len(f.columns))
	for i, c := range f.columns {
		n := fn(c)
		if prev, dup := seen[n]; dup {
			return fmt.Errorf("columns %q and %q both map to %q", prev, c, n)
		}
		seen[n] = c
		cols[i] = n
	}
	f.columns = cols
	f.reindex()
	return nil
}

// StripNames trims surrounding whitespace from every column name.
func (f *Frame) StripNames() error {
	return f.MapNames(strings.TrimSpace)
}

// LowerNames lowercases every column name.
func (f *Frame) LowerNames() error {
	return f.MapNames(strings.ToLower)
}

// ReplaceWithNull turns every cell equal to one of markers into null.
func (f *Frame) ReplaceWithNull(markers ...string) int {
	set := make(map[string]bool, len(markers))
	for _, m := range markers {
		set[m] = true
	}
	n := 0
	for _, row := range f.rows {
		for j, v := range row {
			if v.Valid && set[v.S] {
				row[j] = Null
				n++
			}
		}
	}
	return n
}

// MapValues replaces each non-null cell of col by lookup[cell]. Cells with no
// entry in lookup become null.
func (f *Frame) MapValues(col string, lookup map[string]string) error {
	return f.MapValuesFunc(col, func(s string) (string, bool) {
		to, ok := lookup[s]
		return to, ok
	})
}

// MapValuesFunc replaces each non-null cell of col by fn(cell). Cells for
// which fn reports false become null.
func (f *Frame) MapValuesFunc(col string, fn func(string) (string, bool)) error {
	j, ok := f.index[col]
	if !ok {
		return fmt.Errorf("map values: unknown column %q", col)
	}
	for _, row := range f.rows {
		v := row[j]
		if !v.Valid {
			continue
		}
		if to, ok := fn(v.S); ok {
			row[j] = V(to)
		} else {
			row[j] = Null
		}
	}
	return nil
}

// Filter returns a new frame with the rows for which keep returns true.
func (f *Frame) Filter(keep func(i int) bool) *Frame {
	out := New(f.columns...)
	for i, row := range f.rows {
		if keep(i) {
			r := make([]Value, len(row))
			copy(r, row)
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	out := New(f.columns...)
	out.rows = make([][]Value, len(f.rows))
	for i, row := range f.rows {
		r := make([]Value, len(row))
		copy(r, row)
		out.rows[i] = r
	}
	return out
}

// Concat stacks frames vertically. The result has the union of all columns in
// first-seen order; cells for columns a frame lacks are null. Row order is the
// order of frames, then insertion order within each frame.
func Concat(frames ...*Frame) *Frame {
	var cols []string
	seen := make(map[string]bool)
	for _, fr := range frames {
		for _, c := range fr.columns {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	out := New(cols...)
	for _, fr := range frames {
		pos := make([]int, len(fr.columns))
		for j, c := range fr.columns {
			pos[j] = out.index[c]
		}
		for _, row := range fr.rows {
			r := make([]Value, len(cols))
			for j, v := range row {
				r[pos[j]] = v
			}
			out.rows = append(out.rows, r)
		}
	}
	return out
}
