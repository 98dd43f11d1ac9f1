package config

import (
	"fmt"
	"os"

	"github.com/gyeh/scuolestats/internal/model"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for a scuoleload run.
type Config struct {
	DSN        string
	LogFormat  string // "text" or "json"
	DataDir    string
	ParquetDir string

	Tables              []string `yaml:"tables"` // subset of model.AllTables to build
	StatusMarker        string   `yaml:"status_marker"`
	StaffTitularFile    string   `yaml:"staff_titular_file"`
	StaffSubstituteFile string   `yaml:"staff_substitute_file"`
	DemographicFile     string   `yaml:"demographic_file"`
	DemographicSheet    string   `yaml:"demographic_sheet"`
	DictionaryFile      string   `yaml:"dictionary_file"`

	// map command
	GeoJSONPath string
	Metric      string
	Colormap    string
	Title       string
	OutPath     string
	MapboxToken string
	Percentage  bool
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Tables              []string `yaml:"tables"`
	StatusMarker        string   `yaml:"status_marker"`
	StaffTitularFile    string   `yaml:"staff_titular_file"`
	StaffSubstituteFile string   `yaml:"staff_substitute_file"`
	DemographicFile     string   `yaml:"demographic_file"`
	DemographicSheet    string   `yaml:"demographic_sheet"`
	DictionaryFile      string   `yaml:"dictionary_file"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// Values already set (from flags) win over the file.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if len(c.Tables) == 0 {
		c.Tables = yc.Tables
	}
	fill(&c.StatusMarker, yc.StatusMarker)
	fill(&c.StaffTitularFile, yc.StaffTitularFile)
	fill(&c.StaffSubstituteFile, yc.StaffSubstituteFile)
	fill(&c.DemographicFile, yc.DemographicFile)
	fill(&c.DemographicSheet, yc.DemographicSheet)
	fill(&c.DictionaryFile, yc.DictionaryFile)
	return c.validateTables()
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// validateTables checks that every entry in Tables is a known output table.
// If Tables is empty, it defaults to all of them.
func (c *Config) validateTables() error {
	if len(c.Tables) == 0 {
		c.Tables = append([]string(nil), model.AllTables...)
		return nil
	}
	for _, name := range c.Tables {
		if !model.IsTable(name) {
			return fmt.Errorf("unknown table %q in config", name)
		}
	}
	return nil
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("--data-dir is required")
	}
	st, err := os.Stat(c.DataDir)
	if err != nil {
		return fmt.Errorf("data dir not accessible: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", c.DataDir)
	}
	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return c.validateTables()
}

// ValidateWithDSN checks both data dir and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or SCUOLE_DB_URL is required")
	}
	return nil
}

// ValidateMap checks the fields of the map command.
func (c *Config) ValidateMap() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.GeoJSONPath == "" {
		return fmt.Errorf("--geojson is required")
	}
	if _, err := os.Stat(c.GeoJSONPath); err != nil {
		return fmt.Errorf("geojson not accessible: %w", err)
	}
	if c.Metric == "" {
		return fmt.Errorf("--metric is required")
	}
	return nil
}
