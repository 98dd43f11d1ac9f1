// Package normalize holds the small string and file canonicalizations shared
// across packages.
package normalize

import (
	"strings"
)

// RegionName prepares a boundary-file region name for fuzzy matching:
// hyphens become spaces so "Emilia-Romagna" meets "EMILIA ROMAGNA".
func RegionName(s string) string {
	return strings.ReplaceAll(s, "-", " ")
}

// MetricRegionName prepares a region name coming from the MIUR tables:
// like RegionName, and lowercased. Boundary names keep their case.
func MetricRegionName(s string) string {
	return strings.ToLower(RegionName(s))
}
