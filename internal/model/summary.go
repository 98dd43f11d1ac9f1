package model

import (
	"time"

	"github.com/google/uuid"
)

// TableResult records what happened to one output table during a run.
type TableResult struct {
	Table         string
	Rows          int64
	Columns       int
	Written       bool
	Err           error
	DurationBuild time.Duration
	DurationWrite time.Duration
}

// RunSummary captures metrics from a single pipeline run.
type RunSummary struct {
	RunID         uuid.UUID
	DataDir       string
	StartedAt     time.Time
	Tables        []TableResult
	DurationTotal time.Duration
}

// Failed returns the tables whose build or write failed.
func (s *RunSummary) Failed() []string {
	var out []string
	for _, t := range s.Tables {
		if t.Err != nil {
			out = append(out, t.Table)
		}
	}
	return out
}

// RowsWritten is the total number of rows written across tables.
func (s *RunSummary) RowsWritten() int64 {
	var n int64
	for _, t := range s.Tables {
		if t.Written {
			n += t.Rows
		}
	}
	return n
}

// Result returns the entry for table, or nil.
func (s *RunSummary) Result(table string) *TableResult {
	for i := range s.Tables {
		if s.Tables[i].Table == table {
			return &s.Tables[i]
		}
	}
	return nil
}
