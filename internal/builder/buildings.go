package builder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gyeh/scuolestats/internal/frame"
	"github.com/gyeh/scuolestats/internal/source"
)

const seismicColumn = "VINCOLIZONASISMICA"

var buildingJoin = []string{"ANNOSCOLASTICO", "CODICESCUOLA", "CODICEEDIFICIO"}

// Buildings builds edilizia by inner-merging the EDI extracts one after the
// other, in file order. Each step only keeps rows already in the
// accumulator, so the result is never larger than the most restrictive file.
func Buildings(ctx context.Context, env *Env) (*frame.Frame, error) {
	if env.Dict == nil {
		return nil, fmt.Errorf("buildings: %w", ErrNoDictionary)
	}
	substring, err := marker("building")
	if err != nil {
		return nil, err
	}
	files, err := env.Loader.Files(substring)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("load %s in %s: %w", substring, env.Loader.Dir, source.ErrNoData)
	}

	var acc *frame.Frame
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := source.ReadCSV(path, env.Loader.Encoding)
		if err != nil {
			return nil, err
		}
		if missing := env.Dict.CheckColumns(env.Log, substring, filepath.Base(path), f.Columns()); len(missing) > 0 {
			env.Log.Warn().Str("file", filepath.Base(path)).Strs("missing", missing).Msg("expected columns not found")
		}
		if acc == nil {
			acc = f
			continue
		}
		acc, err = frame.Merge(acc, f, frame.MergeOptions{How: frame.Inner, On: buildingJoin})
		if err != nil {
			return nil, fmt.Errorf("merge %s: %w", filepath.Base(path), err)
		}
		env.Log.Debug().Str("file", filepath.Base(path)).Int("rows", acc.Len()).Msg("building file merged")
	}

	replaced := acc.ReplaceWithNull(env.Dict.MissingMarkers...)
	if err := acc.MapValuesFunc(seismicColumn, env.Dict.Seismic); err != nil {
		return nil, fmt.Errorf("seismic zones: %w", err)
	}
	if err := env.Loader.Standardize(acc); err != nil {
		return nil, fmt.Errorf("rename buildings: %w", err)
	}

	env.Log.Info().
		Int("files", len(files)).
		Int("rows", acc.Len()).
		Int("nulls_replaced", replaced).
		Msg("buildings merged")
	return acc, nil
}
