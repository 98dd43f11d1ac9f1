package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/gyeh/scuolestats/internal/frame"
	embedsql "github.com/gyeh/scuolestats/internal/sql"
)

// SQLiteStore writes tables with prepared inserts, one transaction per
// table.
type SQLiteStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// OpenSQLite opens (or creates) the database file at path.
func OpenSQLite(ctx context.Context, path string, log zerolog.Logger) (*SQLiteStore, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", path+sep+"_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer; WAL readers are not used here.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteStore{db: db, log: log}, nil
}

func (s *SQLiteStore) Dialect() string { return SQLite }

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return applyMigrations(ctx, SQLite, func(ctx context.Context, q string) error {
		_, err := s.db.ExecContext(ctx, q)
		return err
	}, s.log)
}

func (s *SQLiteStore) ReplaceTable(ctx context.Context, table string, f *frame.Frame) (int64, error) {
	start := time.Now()
	cols := f.Columns()
	types := InferTypes(f)
	ident := quoteSQLite(table)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return 0, fmt.Errorf("drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createTable(ident, cols, types, SQLite, quoteSQLite)); err != nil {
		return 0, fmt.Errorf("create %s: %w", table, err)
	}

	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for j, c := range cols {
		quoted[j] = quoteSQLite(c)
		marks[j] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ident, strings.Join(quoted, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return 0, fmt.Errorf("prepare insert %s: %w", table, err)
	}
	defer stmt.Close()

	src := NewFrameSource(f, types)
	var n int64
	for src.Next() {
		vals, _ := src.Values()
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			return 0, fmt.Errorf("insert into %s row %d: %w", table, n, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s: %w", table, err)
	}

	s.log.Info().
		Str("table", table).
		Int64("rows", n).
		Int("columns", len(cols)).
		Dur("duration", time.Since(start)).
		Msg("table replaced")
	return n, nil
}

func (s *SQLiteStore) RecordRun(ctx context.Context, recs []RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, r := range recs {
		var errText any
		if r.Error != "" {
			errText = r.Error
		}
		if _, err := tx.ExecContext(ctx, embedsql.InsertRunSQLite,
			r.RunID.String(), r.Table, r.Rows, r.Status, errText,
			r.StartedAt.UTC().Format(time.RFC3339Nano), r.FinishedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("record run %s: %w", r.Table, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM "+quoteSQLite(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// DB exposes the underlying handle for read-back queries.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func quoteSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
