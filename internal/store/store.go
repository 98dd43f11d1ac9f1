// Package store persists normalized tables to a relational database. Every
// write replaces the table; the pipeline_runs ledger is append-only.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/scuolestats/internal/frame"
)

// Dialects.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// Ledger statuses.
const (
	StatusWritten     = "written"
	StatusBuildFailed = "build_failed"
	StatusWriteFailed = "write_failed"
	StatusSkipped     = "skipped"
)

// RunRecord is one ledger row: the outcome of one table in one run.
type RunRecord struct {
	RunID      uuid.UUID
	Table      string
	Rows       int64
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store is an output database.
type Store interface {
	Dialect() string
	// Migrate creates the ledger if it does not exist.
	Migrate(ctx context.Context) error
	// ReplaceTable drops table if present, recreates it from the columns of
	// f and loads every row. It returns the number of rows written.
	ReplaceTable(ctx context.Context, table string, f *frame.Frame) (int64, error)
	RecordRun(ctx context.Context, recs []RunRecord) error
	Count(ctx context.Context, table string) (int64, error)
	Close() error
}

// ParseDSN returns the dialect of dsn and the connection string its driver
// expects. postgres:// and postgresql:// select Postgres; sqlite://path,
// file: URIs and bare paths select SQLite.
func ParseDSN(dsn string) (dialect, conn string, err error) {
	switch {
	case dsn == "":
		return "", "", fmt.Errorf("empty dsn")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return Postgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite dsn %q has no path", dsn)
		}
		return SQLite, path, nil
	case strings.HasPrefix(dsn, "file:"):
		return SQLite, dsn, nil
	case strings.Contains(dsn, "://"):
		return "", "", fmt.Errorf("unsupported dsn scheme in %q", dsn)
	default:
		return SQLite, dsn, nil
	}
}

// Open connects to the store named by dsn and pings it.
func Open(ctx context.Context, dsn string, log zerolog.Logger) (Store, error) {
	dialect, conn, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	switch dialect {
	case Postgres:
		return OpenPostgres(ctx, conn, log)
	default:
		return OpenSQLite(ctx, conn, log)
	}
}
