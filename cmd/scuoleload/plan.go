package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gyeh/scuolestats/internal/builder"
	"github.com/gyeh/scuolestats/internal/exitcode"
	"github.com/gyeh/scuolestats/internal/model"
	"github.com/gyeh/scuolestats/internal/normalize"
	"github.com/gyeh/scuolestats/internal/source"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run: list the extracts and build the tables in memory (no writes)",
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := setup()
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	env := newEnv(log)

	fmt.Println("=== scuoleload plan ===")
	fmt.Printf("Data dir:   %s\n", cfg.DataDir)
	fmt.Println()
	fmt.Println("Extracts:")
	for _, c := range model.AllCategories {
		files, err := env.Loader.Files(c.Substring)
		if err != nil {
			log.Error().Err(err).Str("category", c.Name).Msg("failed to list files")
			os.Exit(exitcode.ValidationError)
		}
		if len(files) == 0 {
			fmt.Printf("  %-20s %-14s (none)\n", c.Name, c.Table)
			continue
		}
		for _, path := range files {
			sha, size, err := normalize.FileHash(path)
			if err != nil {
				log.Error().Err(err).Str("file", path).Msg("failed to hash file")
				os.Exit(exitcode.ValidationError)
			}
			fmt.Printf("  %-20s %-14s %-40s %-9s %10d bytes  %s\n",
				c.Name, c.Table, filepath.Base(path), source.Classify(path, env.Loader.StatusMarker), size, sha[:12])
		}
	}

	for _, sub := range model.SkippedSubstrings {
		files, err := env.Loader.Files(sub)
		if err != nil {
			log.Error().Err(err).Str("category", sub).Msg("failed to list files")
			os.Exit(exitcode.ValidationError)
		}
		for _, path := range files {
			fmt.Printf("  %-20s %-14s %-40s (not loaded)\n", sub, "-", filepath.Base(path))
		}
	}

	fmt.Println()
	fmt.Println("Tables:")
	failed := 0
	for _, b := range builder.ForTables(cfg.Tables) {
		out, err := b.Build(ctx, env)
		for i, table := range b.Tables {
			if err != nil {
				failed++
				fmt.Printf("  %-14s FAILED: %v\n", table, err)
				continue
			}
			fmt.Printf("  %-14s %8d rows %3d cols\n", table, out[i].Len(), out[i].Width())
		}
	}

	if failed > 0 {
		fmt.Printf("\n%d table(s) would fail\n", failed)
		os.Exit(exitcode.PartialSuccess)
	}
	fmt.Println("\nAll tables build: OK")
	return nil
}
