// Package load bulk-loads admission, comorbidity and patient Parquet exports
// into the risk schema with COPY.
package load

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/readmitrisk/internal/model"
	"github.com/gyeh/readmitrisk/internal/source"
	embedsql "github.com/gyeh/readmitrisk/internal/sql"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Options tunes a load run.
type Options struct {
	// Truncate empties the source tables before copying.
	Truncate bool
}

// Run executes the load pipeline: preflight → truncate → copy → commit.
// All writes happen in one transaction.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, files source.Files, opts Options) (*model.LoadSummary, error) {
	totalStart := time.Now()
	loadID := uuid.New()
	log = log.With().Str("load_id", loadID.String()).Logger()

	// Phase 1: Preflight
	log.Info().Msg("starting preflight")
	pf, err := Preflight(files, log)
	if err != nil {
		return nil, &PipelineError{Phase: "preflight", Err: err}
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, &PipelineError{Phase: "copy", Err: fmt.Errorf("begin: %w", err)}
	}
	defer tx.Rollback(ctx)

	// Phase 2: Truncate
	if opts.Truncate {
		log.Info().Msg("truncating source tables")
		if _, err := tx.Exec(ctx, embedsql.TruncateSources); err != nil {
			return nil, &PipelineError{Phase: "truncate", Err: err}
		}
	}

	// Phase 3: Copy
	log.Info().Msg("starting copy")
	stats, err := Stage(ctx, tx, log, pf)
	if err != nil {
		return nil, &PipelineError{Phase: "copy", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &PipelineError{Phase: "copy", Err: fmt.Errorf("commit: %w", err)}
	}

	summary := &model.LoadSummary{
		LoadID:        loadID.String(),
		Truncated:     opts.Truncate,
		Files:         stats,
		DurationTotal: time.Since(totalStart),
	}

	log.Info().
		Int64("rows_loaded", summary.RowsLoaded()).
		Int64("rows_rejected", summary.RowsRejected()).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("load pipeline complete")

	return summary, nil
}
