package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/scuolestats/internal/builder"
	"github.com/gyeh/scuolestats/internal/frame"
	"github.com/gyeh/scuolestats/internal/model"
	"github.com/gyeh/scuolestats/internal/parquetio"
	"github.com/gyeh/scuolestats/internal/store"
)

// Pipeline phases.
const (
	PhaseMigrate = "migrate"
	PhaseBuild   = "build"
	PhaseWrite   = "write"
	PhaseExport  = "export"
	PhaseLedger  = "ledger"
)

// PipelineError wraps an error with the phase, and table if any, where it
// occurred.
type PipelineError struct {
	Phase string
	Table string
	Err   error
}

func (e *PipelineError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s %s: %s", e.Phase, e.Table, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ErrSkipped marks tables that were built but not written because an
// earlier write failed.
var ErrSkipped = errors.New("skipped after an earlier write failure")

// Options selects what a run does.
type Options struct {
	// Tables restricts the run to these output tables; empty means all.
	Tables []string
	// ParquetDir, when set, receives one <table>.parquet per written table.
	ParquetDir string
}

// Run executes the full pipeline: migrate → build → write → export →
// ledger. A table whose build fails is recorded and the others continue;
// the first write failure stops the remaining writes.
func Run(ctx context.Context, st store.Store, env *builder.Env, log zerolog.Logger, opts Options) (*model.RunSummary, error) {
	summary := &model.RunSummary{
		RunID:     uuid.New(),
		DataDir:   env.Loader.Dir,
		StartedAt: time.Now(),
	}
	log = log.With().Str("run_id", summary.RunID.String()).Logger()

	// Phase 1: Migrate
	if err := st.Migrate(ctx); err != nil {
		return nil, &PipelineError{Phase: PhaseMigrate, Err: err}
	}

	// Phase 2: Build
	log.Info().Str("data_dir", env.Loader.Dir).Msg("building tables")
	frames, err := buildAll(ctx, env, log, opts.Tables, summary)
	if err != nil {
		return nil, &PipelineError{Phase: PhaseBuild, Err: err}
	}

	// Phase 3: Write
	ledger := make([]store.RunRecord, 0, len(summary.Tables))
	var writeErr *PipelineError
	for i := range summary.Tables {
		res := &summary.Tables[i]
		rec := store.RunRecord{RunID: summary.RunID, Table: res.Table, StartedAt: time.Now()}

		switch {
		case res.Err != nil:
			rec.Status = store.StatusBuildFailed
		case writeErr != nil:
			res.Err = ErrSkipped
			rec.Status = store.StatusSkipped
		default:
			start := time.Now()
			n, err := st.ReplaceTable(ctx, res.Table, frames[res.Table])
			res.DurationWrite = time.Since(start)
			if err != nil {
				res.Err = err
				rec.Status = store.StatusWriteFailed
				writeErr = &PipelineError{Phase: PhaseWrite, Table: res.Table, Err: err}
				log.Error().Err(err).Str("table", res.Table).Msg("write failed, skipping remaining tables")
				break
			}
			res.Rows = n
			res.Written = true
			rec.Status = store.StatusWritten
		}

		rec.Rows = res.Rows
		if res.Err != nil {
			rec.Error = res.Err.Error()
		}
		rec.FinishedAt = time.Now()
		ledger = append(ledger, rec)
	}

	// Phase 4: Export
	var exportErr *PipelineError
	if opts.ParquetDir != "" && writeErr == nil {
		for _, res := range summary.Tables {
			if !res.Written {
				continue
			}
			path, err := parquetio.WriteFile(opts.ParquetDir, res.Table, frames[res.Table])
			if err != nil {
				exportErr = &PipelineError{Phase: PhaseExport, Table: res.Table, Err: err}
				break
			}
			log.Info().Str("table", res.Table).Str("path", path).Msg("parquet exported")
		}
	}

	// Phase 5: Ledger. Recorded even when writes failed.
	if err := st.RecordRun(ctx, ledger); err != nil {
		if writeErr == nil && exportErr == nil {
			return nil, &PipelineError{Phase: PhaseLedger, Err: err}
		}
		log.Warn().Err(err).Msg("failed to record run ledger")
	}

	summary.DurationTotal = time.Since(summary.StartedAt)
	if writeErr != nil {
		return summary, writeErr
	}
	if exportErr != nil {
		return summary, exportErr
	}

	log.Info().
		Int("tables", len(summary.Tables)).
		Int("failed", len(summary.Failed())).
		Int64("rows_written", summary.RowsWritten()).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("pipeline complete")

	return summary, nil
}

// buildAll runs the builders for the selected tables and fills one
// TableResult per selected table, in write order. Only cancellation aborts.
func buildAll(ctx context.Context, env *builder.Env, log zerolog.Logger, tables []string, summary *model.RunSummary) (map[string]*frame.Frame, error) {
	selected := make(map[string]bool)
	for _, t := range model.AllTables {
		selected[t] = len(tables) == 0
	}
	for _, t := range tables {
		if !model.IsTable(t) {
			return nil, fmt.Errorf("unknown table %q", t)
		}
		selected[t] = true
	}

	frames := make(map[string]*frame.Frame)
	for _, b := range builder.ForTables(tables) {
		start := time.Now()
		out, err := b.Build(ctx, env)
		dur := time.Since(start)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			log.Error().Err(err).Str("builder", b.Name).Msg("build failed")
		}

		for i, table := range b.Tables {
			if !selected[table] {
				continue
			}
			res := model.TableResult{Table: table, Err: err, DurationBuild: dur}
			if err == nil {
				f := out[i]
				frames[table] = f
				res.Rows = int64(f.Len())
				res.Columns = f.Width()
				log.Info().
					Str("table", table).
					Int("rows", f.Len()).
					Int("columns", f.Width()).
					Dur("duration", dur).
					Msg("table built")
			}
			summary.Tables = append(summary.Tables, res)
		}
	}
	return frames, nil
}
