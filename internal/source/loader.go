package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/scuolestats/internal/dictionary"
	"github.com/gyeh/scuolestats/internal/frame"
	"github.com/gyeh/scuolestats/internal/model"
)

// ErrNoData is returned when a category has no files in the data directory.
var ErrNoData = errors.New("no data for category")

// Loader reads the extracts of one data directory.
type Loader struct {
	Dir          string
	StatusMarker string // empty means DefaultStatusMarker
	Encoding     string // empty means DefaultEncoding
	Dict         *dictionary.Dictionary
	Log          zerolog.Logger
}

// LoadOptions controls how LoadCategory standardizes each file.
type LoadOptions struct {
	// Prepare runs on each file right after it is read.
	Prepare func(*frame.Frame) error
	// Tag adds the legal-status tag column derived from the filename.
	Tag bool
	// Rename applies the dictionary column renames.
	Rename bool
	// Lowercase lowercases every column name after renaming.
	Lowercase bool
}

// Files returns the regular files of the data directory whose name contains
// substring, in lexical order. The directory is not searched recursively.
func (l *Loader) Files(substring string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(l.Dir, "*"+substring+"*"))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", substring, err)
	}
	files := matches[:0]
	for _, m := range matches {
		st, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", m, err)
		}
		if st.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	return files, nil
}

// ReadFile reads a single extract by name from the data directory. A missing
// file is reported as ErrNoData.
func (l *Loader) ReadFile(name string) (*frame.Frame, error) {
	path := filepath.Join(l.Dir, name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNoData)
	}
	return ReadCSV(path, l.Encoding)
}

// ReadSpreadsheet reads a workbook by name from the data directory. A missing
// file is reported as ErrNoData.
func (l *Loader) ReadSpreadsheet(name, sheet string) (*frame.Frame, error) {
	path := filepath.Join(l.Dir, name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNoData)
	}
	return ReadSpreadsheet(path, sheet)
}

// LoadCategory reads every file of a category and concatenates them. Rows
// keep file order then line order; columns are the union of all files.
func (l *Loader) LoadCategory(substring string, opts LoadOptions) (*frame.Frame, error) {
	start := time.Now()

	files, err := l.Files(substring)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s in %s: %w", substring, l.Dir, ErrNoData)
	}

	parts := make([]*frame.Frame, 0, len(files))
	for _, path := range files {
		f, err := ReadCSV(path, l.Encoding)
		if err != nil {
			return nil, err
		}
		if opts.Prepare != nil {
			if err := opts.Prepare(f); err != nil {
				return nil, fmt.Errorf("prepare %s: %w", filepath.Base(path), err)
			}
		}
		if l.Dict != nil {
			if missing := l.Dict.CheckColumns(l.Log, substring, filepath.Base(path), f.Columns()); len(missing) > 0 {
				l.Log.Warn().
					Str("category", substring).
					Str("file", filepath.Base(path)).
					Strs("missing", missing).
					Msg("expected columns not found")
			}
		}
		if opts.Tag {
			f.SetColumn(TagColumn, frame.V(Classify(path, l.StatusMarker)))
		}
		if opts.Rename {
			if err := l.Standardize(f); err != nil {
				return nil, fmt.Errorf("rename %s: %w", filepath.Base(path), err)
			}
		}
		if opts.Lowercase {
			if err := f.LowerNames(); err != nil {
				return nil, fmt.Errorf("lowercase %s: %w", filepath.Base(path), err)
			}
		}
		l.Log.Debug().
			Str("category", substring).
			Str("file", filepath.Base(path)).
			Int("rows", f.Len()).
			Int("columns", f.Width()).
			Msg("file loaded")
		parts = append(parts, f)
	}

	out := frame.Concat(parts...)
	ev := l.Log.Info().Str("category", substring)
	if c, ok := model.CategoryBySubstring(substring); ok {
		ev = ev.Str("name", c.Name).Str("table", c.Table)
	}
	ev.Int("files", len(files)).
		Int("rows", out.Len()).
		Dur("duration", time.Since(start)).
		Msg("category loaded")
	return out, nil
}

// Standardize renames the columns of f through the dictionary, leaving
// unknown columns unchanged.
func (l *Loader) Standardize(f *frame.Frame) error {
	if l.Dict == nil {
		return nil
	}
	return f.MapNames(func(c string) string {
		if to, ok := l.Dict.Rename(c); ok {
			return to
		}
		return c
	})
}
