// Package builder turns the raw extracts of a data directory into the
// normalized output tables. There is one builder per logical table; each is
// a pure function of the data directory, the dictionary and the logger.
package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gyeh/scuolestats/internal/dictionary"
	"github.com/gyeh/scuolestats/internal/frame"
	"github.com/gyeh/scuolestats/internal/model"
	"github.com/gyeh/scuolestats/internal/source"
)

// Default single-file inputs.
const (
	DefaultStaffTitularFile    = "DOCTIT20161720170831.csv"
	DefaultStaffSubstituteFile = "DOCSUP20161720170831.csv"
	DefaultDemographicFile     = "Elenco-codici-statistici-e-denominazioni-al-01_01_2017.xlsx"
)

// ErrNoDictionary is returned by builders that need the dictionary when the
// environment has none.
var ErrNoDictionary = errors.New("builder environment has no dictionary")

// Files names the inputs that are read as single files rather than by
// category glob. Empty fields select the defaults.
type Files struct {
	StaffTitular     string
	StaffSubstitute  string
	Demographic      string
	DemographicSheet string
}

func (f Files) withDefaults() Files {
	if f.StaffTitular == "" {
		f.StaffTitular = DefaultStaffTitularFile
	}
	if f.StaffSubstitute == "" {
		f.StaffSubstitute = DefaultStaffSubstituteFile
	}
	if f.Demographic == "" {
		f.Demographic = DefaultDemographicFile
	}
	return f
}

// Env is everything a builder reads.
type Env struct {
	Loader *source.Loader
	Dict   *dictionary.Dictionary
	Files  Files
	Log    zerolog.Logger
}

// NewEnv wires a loader over dir with the given dictionary.
func NewEnv(dir, statusMarker string, dict *dictionary.Dictionary, files Files, log zerolog.Logger) *Env {
	return &Env{
		Loader: &source.Loader{
			Dir:          dir,
			StatusMarker: statusMarker,
			Dict:         dict,
			Log:          log,
		},
		Dict:  dict,
		Files: files.withDefaults(),
		Log:   log,
	}
}

// Builder produces one or more output tables. Build returns one frame per
// entry of Tables, in the same order.
type Builder struct {
	Name   string
	Tables []string
	Build  func(ctx context.Context, env *Env) ([]*frame.Frame, error)
}

// All lists the builders in write order.
var All = []Builder{
	{Name: "registry", Tables: []string{model.TableRegistry}, Build: single(Registry)},
	{Name: "staff", Tables: []string{model.TableStaff}, Build: single(Staff)},
	{Name: "buildings", Tables: []string{model.TableBuildings}, Build: single(Buildings)},
	{Name: "students", Tables: []string{model.TableStudentAge, model.TableStudentAggr}, Build: students},
	{Name: "demographics", Tables: []string{model.TableDemographics}, Build: single(Demographics)},
	{Name: "evaluation", Tables: []string{model.TableEvaluation}, Build: single(Evaluation)},
}

// ForTables returns the builders that produce at least one of tables, in
// write order. An empty selection returns All.
func ForTables(tables []string) []Builder {
	if len(tables) == 0 {
		return All
	}
	want := make(map[string]bool, len(tables))
	for _, t := range tables {
		want[t] = true
	}
	var out []Builder
	for _, b := range All {
		for _, t := range b.Tables {
			if want[t] {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

func single(fn func(context.Context, *Env) (*frame.Frame, error)) func(context.Context, *Env) ([]*frame.Frame, error) {
	return func(ctx context.Context, env *Env) ([]*frame.Frame, error) {
		f, err := fn(ctx, env)
		if err != nil {
			return nil, err
		}
		return []*frame.Frame{f}, nil
	}
}

func students(ctx context.Context, env *Env) ([]*frame.Frame, error) {
	age, aggr, err := Students(ctx, env)
	if err != nil {
		return nil, err
	}
	return []*frame.Frame{age, aggr}, nil
}

// Registry builds anagrafica: every SCUANA extract tagged, renamed and
// lowercased.
func Registry(ctx context.Context, env *Env) (*frame.Frame, error) {
	return tagged(ctx, env, "registry")
}

// Evaluation builds valutazione the same way as the registry.
func Evaluation(ctx context.Context, env *Env) (*frame.Frame, error) {
	return tagged(ctx, env, "evaluation")
}

// marker returns the filename substring of the named category.
func marker(name string) (string, error) {
	c, ok := model.CategoryByName(name)
	if !ok {
		return "", fmt.Errorf("unknown category %q", name)
	}
	return c.Substring, nil
}

func tagged(ctx context.Context, env *Env, category string) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	substring, err := marker(category)
	if err != nil {
		return nil, err
	}
	f, err := env.Loader.LoadCategory(substring, source.LoadOptions{
		Tag:       true,
		Rename:    true,
		Lowercase: true,
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", substring, err)
	}
	return f, nil
}
