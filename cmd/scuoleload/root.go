package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/scuolestats/internal/builder"
	"github.com/gyeh/scuolestats/internal/config"
	"github.com/gyeh/scuolestats/internal/dictionary"
	"github.com/gyeh/scuolestats/internal/exitcode"
	"github.com/gyeh/scuolestats/internal/logging"
)

var (
	cfg        config.Config
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "scuoleload",
	Short: "Italian schools open-data extracts → SQL tables",
	Long:  "Reads the ministry's school extracts, consolidates them into seven normalized tables and writes them to Postgres or SQLite.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("SCUOLE_DB_URL"), "Store connection string: postgres://… or a SQLite path (or set SCUOLE_DB_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.DataDir, "data-dir", "data", "Directory holding the extracts")
	pf.StringVar(&configFile, "config", "", "Optional YAML config file")
	pf.StringSliceVar(&cfg.Tables, "tables", nil, "Output tables to build (default all)")
	pf.StringVar(&cfg.StatusMarker, "status-marker", "", "Filename marker of state schools (default STA)")
	pf.StringVar(&cfg.DictionaryFile, "dictionary", "", "Column dictionary YAML (default embedded)")
}

// setup builds the logger and loads the config file, exiting on a usage error.
func setup() zerolog.Logger {
	log := logging.Setup(cfg.LogFormat)
	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			log.Error().Err(err).Str("file", configFile).Msg("config file rejected")
			os.Exit(exitcode.UsageError)
		}
	}
	return log
}

// newEnv loads the dictionary and prepares the builder environment.
func newEnv(log zerolog.Logger) *builder.Env {
	var (
		dict *dictionary.Dictionary
		err  error
	)
	if cfg.DictionaryFile != "" {
		dict, err = dictionary.Load(cfg.DictionaryFile)
	} else {
		dict, err = dictionary.Default()
	}
	if err != nil {
		log.Error().Err(err).Msg("dictionary rejected")
		os.Exit(exitcode.ValidationError)
	}
	log.Debug().Str("version", dict.Version).Msg("dictionary loaded")

	return builder.NewEnv(cfg.DataDir, cfg.StatusMarker, dict, builder.Files{
		StaffTitular:     cfg.StaffTitularFile,
		StaffSubstitute:  cfg.StaffSubstituteFile,
		Demographic:      cfg.DemographicFile,
		DemographicSheet: cfg.DemographicSheet,
	}, log)
}
