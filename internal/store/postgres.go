package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/scuolestats/internal/frame"
	embedsql "github.com/gyeh/scuolestats/internal/sql"
)

// PostgresStore writes tables with COPY, one transaction per table.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPool creates a pgxpool with session-level params suitable for bulk loads.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	// Disable statement timeout for bulk loading sessions.
	cfg.ConnConfig.RuntimeParams["statement_timeout"] = "0"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// OpenPostgres connects to dsn.
func OpenPostgres(ctx context.Context, dsn string, log zerolog.Logger) (*PostgresStore, error) {
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool, log: log}, nil
}

func (s *PostgresStore) Dialect() string { return Postgres }

func (s *PostgresStore) Migrate(ctx context.Context) error {
	return applyMigrations(ctx, Postgres, func(ctx context.Context, sql string) error {
		_, err := s.pool.Exec(ctx, sql)
		return err
	}, s.log)
}

func (s *PostgresStore) ReplaceTable(ctx context.Context, table string, f *frame.Frame) (int64, error) {
	start := time.Now()
	cols := f.Columns()
	types := InferTypes(f)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	ident := pgx.Identifier{table}.Sanitize()
	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return 0, fmt.Errorf("drop %s: %w", table, err)
	}
	if _, err := tx.Exec(ctx, createTable(ident, cols, types, Postgres, quotePostgres)); err != nil {
		return 0, fmt.Errorf("create %s: %w", table, err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, cols, NewFrameSource(f, types))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	if err := tx.Commit(ctx); err != nil {
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

func (s *PostgresStore) RecordRun(ctx context.Context, recs []RunRecord) error {
	batch := &pgx.Batch{}
	for _, r := range recs {
		var errText *string
		if r.Error != "" {
			errText = &r.Error
		}
		batch.Queue(embedsql.InsertRunPostgres, r.RunID, r.Table, r.Rows, r.Status, errText, r.StartedAt, r.FinishedAt)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func quotePostgres(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func createTable(ident string, cols []string, types []ColumnType, dialect string, quote func(string) string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(ident)
	b.WriteString(" (")
	for j, c := range cols {
		if j > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(c))
		b.WriteByte(' ')
		b.WriteString(types[j].SQL(dialect))
	}
	b.WriteString(")")
	return b.String()
}
