package model

import (
	"time"

	"github.com/google/uuid"
)

// ScoredRow is the DB-ready representation of one scored admission.
type ScoredRow struct {
	RunID        uuid.UUID
	Position     int64
	HadmID       int64
	SubjectID    int64
	Features     FeatureVector
	Risk         float64
	ForestSHA256 string
	ScoredAt     time.Time
}

// ScoredColumns returns the ordered column names for COPY into risk.scored_admissions.
func ScoredColumns() []string {
	return []string{
		"run_id",
		"position",
		"hadm_id",
		"subject_id",
		"features",
		"readmission_risk",
		"forest_sha256",
		"scored_at",
	}
}

// CopyValues returns the row values in the same order as ScoredColumns(),
// suitable for pgx CopyFromSource.
func (r *ScoredRow) CopyValues() []any {
	return []any{
		r.RunID,
		r.Position,
		r.HadmID,
		r.SubjectID,
		r.Features[:],
		r.Risk,
		r.ForestSHA256,
		r.ScoredAt,
	}
}
