package store

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/scuolestats/internal/sql"
)

// applyMigrations runs the embedded migrations of dialect in filename order.
// All DDL uses IF NOT EXISTS so migrations are idempotent.
func applyMigrations(ctx context.Context, dialect string, exec func(ctx context.Context, sql string) error, log zerolog.Logger) error {
	dir := "migrations/" + dialect
	entries, err := fs.ReadDir(embedsql.Migrations, dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	n := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		data, err := fs.ReadFile(embedsql.Migrations, dir+"/"+name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		log.Debug().Str("dialect", dialect).Str("migration", name).Msg("applying migration")
		if err := exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		n++
	}

	log.Info().Str("dialect", dialect).Int("count", n).Msg("all migrations applied")
	return nil
}
