// Package score runs the readmission-risk pipeline: fetch records for the
// requested admissions, join them, encode feature vectors, and average the
// forest's predictions for each one.
package score

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/readmitrisk/internal/encode"
	"github.com/gyeh/readmitrisk/internal/forest"
	"github.com/gyeh/readmitrisk/internal/join"
	"github.com/gyeh/readmitrisk/internal/model"
	"github.com/gyeh/readmitrisk/internal/source"
)

// Options tunes a scoring run.
type Options struct {
	// Strict fails the run when any requested id has no admission record.
	Strict bool
	// Workers bounds scoring concurrency. Zero means runtime.NumCPU().
	Workers int
}

// Scored is one joined record with its features and risk.
type Scored struct {
	Record   model.JoinedRecord
	Features model.FeatureVector
	Risk     float64
}

// Result is the outcome of a successful run.
type Result struct {
	RunID    uuid.UUID
	Scored   []Scored
	Dropped  []int64
	Response Response
	Summary  model.RunSummary
}

// Fetched holds the raw records read for one batch of ids.
type Fetched struct {
	Admissions    []model.Admission
	Comorbidities []model.Comorbidity
	Patients      []model.Patient
}

// Fetch reads every record the join needs for ids.
func Fetch(ctx context.Context, src source.Source, ids []int64) (*Fetched, error) {
	adm, err := src.Admissions(ctx, ids)
	if err != nil {
		return nil, sourceErr(err)
	}
	com, err := src.Comorbidities(ctx, ids)
	if err != nil {
		return nil, sourceErr(err)
	}
	pat, err := src.Patients(ctx, join.SubjectIDs(ids, adm))
	if err != nil {
		return nil, sourceErr(err)
	}
	return &Fetched{Admissions: adm, Comorbidities: com, Patients: pat}, nil
}

func sourceErr(err error) error {
	if errors.Is(err, source.ErrUnavailable) {
		return fmt.Errorf("%w: %w", ErrMissingSource, err)
	}
	return err
}

// JoinAndEncode fetches and joins records for ids and encodes each joined
// record. It does not need a forest.
func JoinAndEncode(ctx context.Context, src source.Source, ids []int64, opts Options, log zerolog.Logger) ([]model.JoinedRecord, []model.FeatureVector, []int64, error) {
	fetched, err := Fetch(ctx, src, ids)
	if err != nil {
		return nil, nil, nil, &PipelineError{Phase: "fetch", Err: err}
	}
	joined, dropped, err := joinFetched(ids, fetched, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	logUnmapped(log, joined)
	return joined, encode.EncodeAll(joined), dropped, nil
}

func joinFetched(ids []int64, fetched *Fetched, opts Options) ([]model.JoinedRecord, []int64, error) {
	joined, dropped, err := join.Join(ids, fetched.Admissions, fetched.Comorbidities, fetched.Patients)
	if err != nil {
		if errors.Is(err, join.ErrMissingSource) {
			err = fmt.Errorf("%w: %w", ErrMissingSource, err)
		}
		return nil, nil, &PipelineError{Phase: "join", Err: err}
	}
	if opts.Strict && len(dropped) > 0 {
		return nil, nil, &PipelineError{Phase: "join", Err: &MissingIDsError{IDs: dropped}}
	}
	return joined, dropped, nil
}

func logUnmapped(log zerolog.Logger, joined []model.JoinedRecord) {
	if log.GetLevel() > zerolog.DebugLevel {
		return
	}
	for _, rec := range joined {
		if fields := encode.Unmapped(rec); len(fields) > 0 {
			log.Debug().
				Int64("hadm_id", rec.HadmID).
				Strs("fields", fields).
				Msg("value fell into fallback bucket")
		}
	}
}

// Run executes the full scoring pipeline: fetch → join → encode → score →
// response.
func Run(ctx context.Context, src source.Source, f *forest.Forest, ids []int64, opts Options, log zerolog.Logger) (*Result, error) {
	totalStart := time.Now()
	runID := uuid.New()
	log = log.With().Str("run_id", runID.String()).Logger()

	summary := model.RunSummary{
		RunID:        runID.String(),
		ForestSHA256: f.SHA256(),
		Trees:        f.NumTrees(),
		IDsRequested: len(ids),
	}

	// Phase 1: Fetch
	log.Debug().Int("ids", len(ids)).Msg("fetching records")
	start := time.Now()
	fetched, err := Fetch(ctx, src, ids)
	if err != nil {
		return nil, &PipelineError{Phase: "fetch", Err: err}
	}
	summary.DurationFetch = time.Since(start)

	// Phase 2: Join
	start = time.Now()
	joined, dropped, err := joinFetched(ids, fetched, opts)
	if err != nil {
		return nil, err
	}
	summary.DurationJoin = time.Since(start)
	summary.RecordsJoined = len(joined)
	summary.IDsDropped = len(dropped)
	if len(dropped) > 0 {
		log.Info().Int("dropped", len(dropped)).Msg("ids without admission records dropped")
	}

	// Phase 3: Encode
	start = time.Now()
	logUnmapped(log, joined)
	vectors := encode.EncodeAll(joined)
	summary.DurationEncode = time.Since(start)

	// Phase 4: Score
	start = time.Now()
	risks, err := ScoreAll(ctx, f, vectors, opts.Workers)
	if err != nil {
		return nil, &PipelineError{Phase: "score", Err: err}
	}
	summary.DurationScore = time.Since(start)

	scored := make([]Scored, len(joined))
	for i := range joined {
		scored[i] = Scored{Record: joined[i], Features: vectors[i], Risk: risks[i]}
	}

	// Phase 5: Response
	resp := BuildResponse(ids, scored)
	summary.DurationTotal = time.Since(totalStart)

	log.Info().
		Int("ids_requested", summary.IDsRequested).
		Int("records_joined", summary.RecordsJoined).
		Int("ids_dropped", summary.IDsDropped).
		Int("ids_scored", resp.Len()).
		Int("trees", summary.Trees).
		Dur("duration_score", summary.DurationScore).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("scoring pipeline complete")

	return &Result{
		RunID:    runID,
		Scored:   scored,
		Dropped:  dropped,
		Response: resp,
		Summary:  summary,
	}, nil
}
