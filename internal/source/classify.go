// Package source discovers and reads the raw extracts: legal-status
// classification from filenames, category globbing, legacy-encoded CSV and
// spreadsheet decoding, and column standardization.
package source

import (
	"path/filepath"
	"strings"
)

// Legal-status tags.
const (
	Statale   = "statale"
	Paritaria = "paritaria"
)

// DefaultStatusMarker is the filename substring that marks a state-school
// extract. MIUR names state files with a STA suffix (…STA2018…) and the
// registry with STAT (SCUANAGRAFESTAT…); STA covers both.
const DefaultStatusMarker = "STA"

// TagColumn is the column holding the legal-status tag.
const TagColumn = "tag"

// Classify returns Statale if the base name of path contains marker
// (case-sensitive) and Paritaria otherwise. An empty marker selects
// DefaultStatusMarker.
func Classify(path, marker string) string {
	if marker == "" {
		marker = DefaultStatusMarker
	}
	if strings.Contains(filepath.Base(path), marker) {
		return Statale
	}
	return Paritaria
}
