package geo

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"

	"github.com/gyeh/scuolestats/internal/normalize"
)

// DefaultThreshold is the minimum score, exclusive, for two names to match.
const DefaultThreshold = 75

// Ratio scores the similarity of a and b from 0 to 100: their total length
// minus the insert/delete distance, over the total length, in runes, rounded
// half to even. Two empty strings score 0.
func Ratio(a, b string) int {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 0
	}
	return int(math.RoundToEven(100 * float64(total-edlib.LCSEditDistance(a, b)) / float64(total)))
}

// Match is a scored candidate pair.
type Match struct {
	Metric   string
	Boundary string
	Score    int
}

// Crosswalk maps metric names to boundary names.
type Crosswalk map[string]string

// MatchRegions pairs metric names with boundary names. Hyphens become spaces
// on both sides and metric names are lowercased; pairs scoring above
// threshold are assigned greedily by descending score, ties broken by
// boundary order then metric order, each name used at most once.
func MatchRegions(boundaryNames, metricNames []string, threshold int) (Crosswalk, []Match) {
	type candidate struct {
		Match
		bi, mi int
	}
	var cands []candidate
	for bi, bn := range boundaryNames {
		left := normalize.RegionName(bn)
		for mi, mn := range metricNames {
			right := normalize.MetricRegionName(mn)
			if s := Ratio(left, right); s > threshold {
				cands = append(cands, candidate{Match{Metric: mn, Boundary: bn, Score: s}, bi, mi})
			}
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.bi != b.bi {
			return a.bi < b.bi
		}
		return a.mi < b.mi
	})

	cw := make(Crosswalk)
	usedB := make(map[int]bool)
	usedM := make(map[int]bool)
	var matches []Match
	for _, c := range cands {
		if usedB[c.bi] || usedM[c.mi] {
			continue
		}
		usedB[c.bi], usedM[c.mi] = true, true
		cw[c.Metric] = c.Boundary
		matches = append(matches, c.Match)
	}
	return cw, matches
}

// Reindex orders values by boundary name. names and values are parallel;
// boundaries with no matched metric get NaN.
func Reindex(names []string, values []float64, cw Crosswalk, boundaryNames []string) []float64 {
	byBoundary := make(map[string]float64, len(names))
	for i, n := range names {
		if b, ok := cw[n]; ok {
			byBoundary[b] = values[i]
		}
	}
	out := make([]float64, len(boundaryNames))
	for i, b := range boundaryNames {
		v, ok := byBoundary[b]
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}
