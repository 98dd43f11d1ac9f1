// Package dictionary holds the static vocabulary used to standardize the
// extracts: column renames, the demographic projection, the seismic-zone
// collapsing map and the missing-value markers.
package dictionary

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed renames.yaml
var embedded []byte

// Dictionary is the versioned mapping table consumed by the builders.
type Dictionary struct {
	Version        string              `yaml:"version"`
	MissingMarkers []string            `yaml:"missing_markers"`
	Columns        map[string]string   `yaml:"columns"`
	Expected       map[string][]string `yaml:"expected_columns"`
	SeismicZones   map[string]string   `yaml:"seismic_zones"`
	Demographic    map[string]string   `yaml:"demographic"`
}

// Default returns the dictionary compiled into the binary.
func Default() (*Dictionary, error) {
	return parse(embedded, "embedded")
}

// Load reads a dictionary from a YAML file.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return parse(data, path)
}

func parse(data []byte, origin string) (*Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse dictionary %s: %w", origin, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("dictionary %s: %w", origin, err)
	}
	return &d, nil
}

// Validate checks that the dictionary is usable: it has a version, every
// mapping target is non-empty, and every expected source column of every
// category has a rename target.
func (d *Dictionary) Validate() error {
	if d.Version == "" {
		return fmt.Errorf("missing version")
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("no column renames")
	}
	for src, dst := range d.Columns {
		if dst == "" {
			return fmt.Errorf("column %q has an empty target", src)
		}
	}
	if len(d.SeismicZones) == 0 {
		return fmt.Errorf("no seismic zone map")
	}
	for src, dst := range d.Demographic {
		if dst == "" {
			return fmt.Errorf("demographic column %q has an empty target", src)
		}
	}
	for _, cat := range sortedKeys(d.Expected) {
		for _, col := range d.Expected[cat] {
			if _, ok := d.Columns[col]; !ok {
				return fmt.Errorf("category %s: expected column %q has no rename target", cat, col)
			}
		}
	}
	return nil
}

// Rename returns the normalized name for a source column and whether the
// dictionary knows it.
func (d *Dictionary) Rename(col string) (string, bool) {
	to, ok := d.Columns[col]
	return to, ok
}

// CheckColumns logs the columns of a file that the dictionary cannot rename
// and returns the expected columns of category the file lacks.
func (d *Dictionary) CheckColumns(log zerolog.Logger, category, file string, cols []string) []string {
	have := make(map[string]bool, len(cols))
	var unknown []string
	for _, c := range cols {
		have[c] = true
		if _, ok := d.Columns[c]; !ok {
			unknown = append(unknown, c)
		}
	}
	if len(unknown) > 0 {
		log.Debug().
			Str("category", category).
			Str("file", file).
			Strs("columns", unknown).
			Msg("columns without a rename target, kept as-is")
	}
	var missing []string
	for _, c := range d.Expected[category] {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// Seismic maps a fine-grained seismic classification onto its coarse zone.
func (d *Dictionary) Seismic(code string) (string, bool) {
	z, ok := d.SeismicZones[code]
	return z, ok
}

// SeismicCodomain returns the distinct coarse zones, sorted.
func (d *Dictionary) SeismicCodomain() []string {
	set := make(map[string]bool)
	for _, z := range d.SeismicZones {
		set[z] = true
	}
	return sortedKeys(set)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
