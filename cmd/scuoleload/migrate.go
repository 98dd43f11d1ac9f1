package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/scuolestats/internal/exitcode"
	"github.com/gyeh/scuolestats/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the run ledger",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := setup()
	ctx := context.Background()

	if cfg.DSN == "" {
		log.Error().Msg("--dsn or SCUOLE_DB_URL is required")
		os.Exit(exitcode.UsageError)
	}

	st, err := store.Open(ctx, cfg.DSN, log)
	if err != nil {
		log.Error().Err(err).Msg("store connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		log.Error().Err(err).Msg("migration failed")
		st.Close()
		os.Exit(exitcode.DBConnError)
	}

	log.Info().Str("dialect", st.Dialect()).Msg("all migrations applied successfully")
	return nil
}
