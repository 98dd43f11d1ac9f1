package builder

import (
	"context"
	"fmt"

	"github.com/gyeh/scuolestats/internal/frame"
	"github.com/gyeh/scuolestats/internal/source"
)

var studentJoin = []string{"ANNOSCOLASTICO", "CODICESCUOLA", "ORDINESCUOLA", "ANNOCORSO", source.TagColumn}

// Students builds studenti_eta and studenti_aggr. The age-cohort table is
// returned as loaded; the aggregate is the nationality table with the class
// totals left-merged onto it, then renamed.
func Students(ctx context.Context, env *Env) (age, aggr *frame.Frame, err error) {
	load := func(category string) (*frame.Frame, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sub, err := marker(category)
		if err != nil {
			return nil, err
		}
		f, err := env.Loader.LoadCategory(sub, source.LoadOptions{Prepare: courseYear, Tag: true})
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", sub, err)
		}
		return f, nil
	}

	age, err = load("student-age-cohort")
	if err != nil {
		return nil, nil, err
	}
	classes, err := load("student-class-total")
	if err != nil {
		return nil, nil, err
	}
	nationality, err := load("student-nationality")
	if err != nil {
		return nil, nil, err
	}

	aggr, err = frame.Merge(nationality, classes, frame.MergeOptions{
		How:      frame.Left,
		On:       studentJoin,
		Suffixes: [2]string{"", "_classe"},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("merge students: %w", err)
	}
	if err := env.Loader.Standardize(aggr); err != nil {
		return nil, nil, fmt.Errorf("rename students: %w", err)
	}

	env.Log.Info().
		Int("age_rows", age.Len()).
		Int("aggregate_rows", aggr.Len()).
		Msg("students built")
	return age, aggr, nil
}

// courseYear aligns the class-total course column with the other extracts.
func courseYear(f *frame.Frame) error {
	if f.Has("ANNOCORSOCLASSE") && !f.Has("ANNOCORSO") {
		return f.Rename(map[string]string{"ANNOCORSOCLASSE": "ANNOCORSO"})
	}
	return nil
}
