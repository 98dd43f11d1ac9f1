package builder

import (
	"context"
	"fmt"

	"github.com/gyeh/scuolestats/internal/frame"
)

const (
	provinceColumn = "Denominazione provincia"
	metroColumn    = "Denominazione Città metropolitana"
)

// Demographics builds demografica from the ISTAT municipality workbook.
// Municipalities of a metropolitan city carry "-" as province; they get the
// metropolitan city name instead. Only the dictionary's columns are kept.
func Demographics(ctx context.Context, env *Env) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if env.Dict == nil {
		return nil, fmt.Errorf("demographics: %w", ErrNoDictionary)
	}
	f, err := env.Loader.ReadSpreadsheet(env.Files.Demographic, env.Files.DemographicSheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", env.Files.Demographic, err)
	}

	backfilled := 0
	if f.Has(provinceColumn) && f.Has(metroColumn) {
		for i := 0; i < f.Len(); i++ {
			if v := f.Get(i, provinceColumn); v.Valid && v.S == "-" {
				if err := f.Set(i, provinceColumn, f.Get(i, metroColumn)); err != nil {
					return nil, err
				}
				backfilled++
			}
		}
	}

	var keep []string
	for _, c := range f.Columns() {
		if _, ok := env.Dict.Demographic[c]; ok {
			keep = append(keep, c)
		}
	}
	out, err := f.Select(keep...)
	if err != nil {
		return nil, err
	}
	if err := out.Rename(env.Dict.Demographic); err != nil {
		return nil, fmt.Errorf("rename demographics: %w", err)
	}

	env.Log.Info().
		Int("rows", out.Len()).
		Int("columns", out.Width()).
		Int("provinces_backfilled", backfilled).
		Msg("demographics built")
	return out, nil
}
