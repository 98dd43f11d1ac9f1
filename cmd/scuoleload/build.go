package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyeh/scuolestats/internal/exitcode"
	"github.com/gyeh/scuolestats/internal/ingest"
	"github.com/gyeh/scuolestats/internal/store"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build every table and write it to the store",
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&cfg.ParquetDir, "parquet-dir", "", "Also export each written table as <table>.parquet here")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	log := setup()
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	env := newEnv(log)

	st, err := store.Open(ctx, cfg.DSN, log)
	if err != nil {
		log.Error().Err(err).Msg("store connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer st.Close()

	summary, err := ingest.Run(ctx, st, env, log, ingest.Options{
		Tables:     cfg.Tables,
		ParquetDir: cfg.ParquetDir,
	})
	if err != nil {
		var pe *ingest.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Str("table", pe.Table).Msg("build failed")
			switch pe.Phase {
			case ingest.PhaseMigrate, ingest.PhaseLedger:
				st.Close()
				os.Exit(exitcode.DBConnError)
			case ingest.PhaseWrite, ingest.PhaseExport:
				st.Close()
				os.Exit(exitcode.WriteError)
			}
		} else {
			log.Error().Err(err).Msg("build failed")
		}
		st.Close()
		os.Exit(exitcode.BuildError)
	}

	for _, t := range summary.Tables {
		status := "written"
		if t.Err != nil {
			status = "FAILED: " + t.Err.Error()
		}
		fmt.Printf("  %-14s %8d rows %3d cols  %s\n", t.Table, t.Rows, t.Columns, status)
	}
	fmt.Printf("Build complete: %d rows written (run %s, %.1fs)\n",
		summary.RowsWritten(), summary.RunID, summary.DurationTotal.Seconds())

	if failed := summary.Failed(); len(failed) > 0 {
		log.Warn().Strs("tables", failed).Msg("some tables failed")
		st.Close()
		if len(failed) == len(summary.Tables) {
			os.Exit(exitcode.BuildError)
		}
		fmt.Fprintf(os.Stderr, "failed tables: %s\n", strings.Join(failed, ", "))
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}
