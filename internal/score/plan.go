package score

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/readmitrisk/internal/forest"
	"github.com/gyeh/readmitrisk/internal/source"
	embedsql "github.com/gyeh/readmitrisk/internal/sql"
)

// DefaultSampleSize is the discharge population drawn when none is given.
const DefaultSampleSize = 100

var (
	// ErrInvalidSample is returned for a non-positive sample size.
	ErrInvalidSample = errors.New("sample size must be positive")
	// ErrEmptyPopulation is returned when the source holds no admissions to sample.
	ErrEmptyPopulation = errors.New("no admissions to sample")
)

// PlanResult is a scored discharge sample.
type PlanResult struct {
	*Result
	SampleSize int
	Population int
}

// Sample draws min(n, len(ids)) distinct ids without replacement. A nil r
// uses the runtime's seeded generator. ids is not modified.
func Sample(ids []int64, n int, r *rand.Rand) []int64 {
	intN := rand.IntN
	if r != nil {
		intN = r.IntN
	}
	pool := source.Distinct(ids)
	if n > len(pool) {
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		j := i + intN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

// Plan samples n admissions from src and scores them.
func Plan(ctx context.Context, src source.Population, f *forest.Forest, n int, r *rand.Rand, opts Options, log zerolog.Logger) (*PlanResult, error) {
	if n <= 0 {
		return nil, &PipelineError{Phase: "sample", Err: fmt.Errorf("%w: %d", ErrInvalidSample, n)}
	}

	start := time.Now()
	all, err := src.AdmissionIDs(ctx)
	if err != nil {
		return nil, &PipelineError{Phase: "sample", Err: sourceErr(err)}
	}
	if len(all) == 0 {
		return nil, &PipelineError{Phase: "sample", Err: ErrEmptyPopulation}
	}
	ids := Sample(all, n, r)
	log.Info().
		Int("population", len(all)).
		Int("sample", len(ids)).
		Dur("duration", time.Since(start)).
		Msg("discharge sample drawn")

	res, err := Run(ctx, src, f, ids, opts, log)
	if err != nil {
		return nil, err
	}
	return &PlanResult{Result: res, SampleSize: n, Population: len(all)}, nil
}

// SavePlan stores the plan's scores and registers it as the newest plan in
// one transaction, which makes it the processed population.
func SavePlan(ctx context.Context, pool *pgxpool.Pool, plan *PlanResult, log zerolog.Logger) (int64, error) {
	start := time.Now()
	plannedAt := start.UTC()

	var n int64
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var err error
		if n, err = copyScored(ctx, tx, Rows(plan.Result, plannedAt)); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, embedsql.InsertPlan,
			plan.RunID, plan.SampleSize, plan.Population, n, plan.Summary.ForestSHA256, plannedAt)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("save plan: %w", err)
	}

	plan.Summary.RowsSaved = n
	log.Info().
		Str("run_id", plan.RunID.String()).
		Int("sample_size", plan.SampleSize).
		Int64("rows", n).
		Str("duration", time.Since(start).String()).
		Msg("discharge plan saved")
	return n, nil
}
