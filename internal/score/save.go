package score

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/readmitrisk/internal/db"
	"github.com/gyeh/readmitrisk/internal/model"
	embedsql "github.com/gyeh/readmitrisk/internal/sql"
)

// Rows converts a result into rows for risk.scored_admissions.
func Rows(res *Result, scoredAt time.Time) []*model.ScoredRow {
	rows := make([]*model.ScoredRow, len(res.Scored))
	for i, s := range res.Scored {
		rows[i] = &model.ScoredRow{
			RunID:        res.RunID,
			Position:     int64(i),
			HadmID:       s.Record.HadmID,
			SubjectID:    s.Record.SubjectID,
			Features:     s.Features,
			Risk:         s.Risk,
			ForestSHA256: res.Summary.ForestSHA256,
			ScoredAt:     scoredAt,
		}
	}
	return rows
}

// Save persists a result to risk.scored_admissions via COPY.
func Save(ctx context.Context, pool *pgxpool.Pool, res *Result, log zerolog.Logger) (int64, error) {
	start := time.Now()
	n, err := copyScored(ctx, pool, Rows(res, start.UTC()))
	if err != nil {
		return 0, fmt.Errorf("save scores: %w", err)
	}
	res.Summary.RowsSaved = n
	log.Info().
		Str("run_id", res.RunID.String()).
		Int64("rows", n).
		Str("duration", time.Since(start).String()).
		Msg("scores saved")
	return n, nil
}

// copier is satisfied by both *pgxpool.Pool and pgx.Tx.
type copier interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

func copyScored(ctx context.Context, c copier, rows []*model.ScoredRow) (int64, error) {
	return c.CopyFrom(ctx,
		pgx.Identifier{"risk", "scored_admissions"},
		model.ScoredColumns(),
		db.SliceSource(rows),
	)
}

// SavedScore is the most recent persisted risk for one admission.
type SavedScore struct {
	HadmID          int64     `json:"hadm_id"`
	ReadmissionRisk float64   `json:"readmissionRisk"`
	RunID           uuid.UUID `json:"run_id"`
	ScoredAt        time.Time `json:"scored_at"`
}

// Latest returns the most recently saved score for each of ids that has one,
// ordered by hadm_id.
func Latest(ctx context.Context, pool *pgxpool.Pool, ids []int64) ([]SavedScore, error) {
	rows, err := pool.Query(ctx, embedsql.LatestScores, ids)
	if err != nil {
		return nil, fmt.Errorf("latest scores: %w", err)
	}
	saved, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SavedScore, error) {
		var s SavedScore
		err := row.Scan(&s.HadmID, &s.ReadmissionRisk, &s.RunID, &s.ScoredAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("latest scores: %w", err)
	}
	return saved, nil
}
