package builder

import (
	"context"
	"fmt"

	"github.com/gyeh/scuolestats/internal/frame"
)

// Post types.
const (
	PostTitular    = "DIRUOLO"
	PostSubstitute = "SUPPLENZA"
)

var (
	staffDims = []string{"PROVINCIA", "ORDINESCUOLA", "TIPOPOSTO", "FASCIAETA"}
	staffJoin = append(append([]string{}, staffDims...), "POSTO", "M", "F")

	titularGender    = map[string]string{"DOCENTITITOLARIMASCHI": "M", "DOCENTITITOLARIFEMMINE": "F"}
	substituteGender = map[string]string{"DOCENTISUPPLENTIMASCHI": "M", "DOCENTISUPPLENTIFEMMINE": "F"}
)

// Staff builds docenti. Substitute counts are summed over the contract type
// so both sources share the same dimensions; the two are then outer-merged
// on the dimensions plus post type and counts, so every input row appears
// exactly once.
func Staff(ctx context.Context, env *Env) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := readStaff(env, env.Files.StaffTitular, titularGender)
	if err != nil {
		return nil, err
	}
	sup, err := readStaff(env, env.Files.StaffSubstitute, substituteGender)
	if err != nil {
		return nil, err
	}

	sup, err = frame.GroupBySum(sup, staffDims, []string{"M", "F"})
	if err != nil {
		return nil, fmt.Errorf("aggregate substitutes: %w", err)
	}

	doc.SetColumn("POSTO", frame.V(PostTitular))
	sup.SetColumn("POSTO", frame.V(PostSubstitute))

	out, err := frame.Merge(doc, sup, frame.MergeOptions{How: frame.Outer, On: staffJoin, Sort: true})
	if err != nil {
		return nil, fmt.Errorf("merge staff: %w", err)
	}

	env.Log.Info().
		Int("titular_rows", doc.Len()).
		Int("substitute_rows", sup.Len()).
		Int("rows", out.Len()).
		Msg("staff merged")
	return out, nil
}

func readStaff(env *Env, name string, gender map[string]string) (*frame.Frame, error) {
	f, err := env.Loader.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if err := f.Drop("ANNOSCOLASTICO"); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	for src := range gender {
		if !f.Has(src) {
			return nil, fmt.Errorf("%s: missing column %s", name, src)
		}
	}
	if err := f.Rename(gender); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}
