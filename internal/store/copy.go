package store

import (
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/scuolestats/internal/frame"
)

// FrameSource implements pgx.CopyFromSource over the rows of a frame,
// converting each cell to the inferred column type.
type FrameSource struct {
	f     *frame.Frame
	types []ColumnType
	i     int
	buf   []any
}

// NewFrameSource creates a CopyFromSource backed by f.
func NewFrameSource(f *frame.Frame, types []ColumnType) *FrameSource {
	return &FrameSource{f: f, types: types, i: -1, buf: make([]any, f.Width())}
}

// Next advances to the next row. Returns false after the last row.
func (s *FrameSource) Next() bool {
	s.i++
	return s.i < s.f.Len()
}

// Values returns the current row's values in column order.
func (s *FrameSource) Values() ([]any, error) {
	for j, v := range s.f.Row(s.i) {
		s.buf[j] = convert(v, s.types[j])
	}
	return s.buf, nil
}

// Err returns any error encountered during iteration.
func (s *FrameSource) Err() error {
	return nil
}

// Compile-time check that FrameSource satisfies the interface.
var _ pgx.CopyFromSource = (*FrameSource)(nil)
