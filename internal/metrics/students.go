// Package metrics derives regional indicators from the normalized tables.
package metrics

import (
	"fmt"
	"math"

	"github.com/gyeh/scuolestats/internal/frame"
)

// Column names shared with the normalized tables.
const (
	SchoolColumn = "codice_scuola"
	RegionColumn = "regione"
	// TotalRow labels the national totals row.
	TotalRow = "TOT"
)

// StudentColumns are the counts summed per region.
var StudentColumns = []string{"ALUNNI", "ITALIAN", "NON_ITALIAN", "EU", "NON_EU"}

// Percentage columns added by StudentsByRegion, each numerator/denominator.
var percentages = []struct{ name, num, den string }{
	{"foreign_percentage", "NON_ITALIAN", "ITALIAN"},
	{"foreign_eu_percentage", "EU", "NON_ITALIAN"},
	{"foreign_noeu_percentage", "NON_EU", "NON_ITALIAN"},
}

// StudentsByRegion sums the student counts of every registry school that
// appears in the student aggregate, first per school then per region, and
// appends a TOT row. Foreign-student shares are percentages rounded to one
// decimal; a zero denominator gives null.
func StudentsByRegion(registry, students *frame.Frame) (*frame.Frame, error) {
	for _, c := range StudentColumns {
		if !students.Has(c) {
			return nil, fmt.Errorf("student aggregate lacks column %q", c)
		}
	}

	perSchool, err := frame.GroupBySum(students, []string{SchoolColumn}, StudentColumns)
	if err != nil {
		return nil, fmt.Errorf("sum per school: %w", err)
	}

	listed, err := registry.Select(SchoolColumn, RegionColumn)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	// A school listed twice keeps its first region.
	seen := make(map[string]bool, listed.Len())
	schools := listed.Filter(func(i int) bool {
		code := listed.Get(i, SchoolColumn)
		if !code.Valid || seen[code.S] {
			return false
		}
		seen[code.S] = true
		return true
	})

	active, err := frame.Merge(schools, perSchool, frame.MergeOptions{How: frame.Inner, On: []string{SchoolColumn}})
	if err != nil {
		return nil, fmt.Errorf("match schools: %w", err)
	}
	out, err := frame.GroupBySum(active, []string{RegionColumn}, StudentColumns)
	if err != nil {
		return nil, fmt.Errorf("sum per region: %w", err)
	}

	total := make([]frame.Value, out.Width())
	total[0] = frame.V(TotalRow)
	for j, c := range StudentColumns {
		sum, err := out.Sum(c)
		if err != nil {
			return nil, err
		}
		total[j+1] = frame.Num(sum)
	}
	if err := out.Append(total); err != nil {
		return nil, err
	}

	for _, p := range percentages {
		out.SetColumn(p.name, frame.Null)
		for i := 0; i < out.Len(); i++ {
			num, okN := frame.Number(out.Get(i, p.num))
			den, okD := frame.Number(out.Get(i, p.den))
			if !okN || !okD || den == 0 {
				continue
			}
			if err := out.Set(i, p.name, frame.Num(round1(num/den*100))); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// round1 rounds half to even at one decimal.
func round1(x float64) float64 {
	return math.RoundToEven(x*10) / 10
}

// Series extracts the region → value pairs of column, skipping the TOT row.
// Null or non-numeric cells become NaN.
func Series(f *frame.Frame, column string) (names []string, values []float64, err error) {
	if !f.Has(column) {
		return nil, nil, fmt.Errorf("unknown metric %q", column)
	}
	if !f.Has(RegionColumn) {
		return nil, nil, fmt.Errorf("frame has no %q column", RegionColumn)
	}
	for i := 0; i < f.Len(); i++ {
		region := f.Get(i, RegionColumn)
		if !region.Valid || region.S == TotalRow {
			continue
		}
		v, ok := frame.Number(f.Get(i, column))
		if !ok {
			v = math.NaN()
		}
		names = append(names, region.S)
		values = append(values, v)
	}
	return names, values, nil
}
