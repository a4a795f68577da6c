package score

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/readmitrisk/internal/model"
	embedsql "github.com/gyeh/readmitrisk/internal/sql"
)

var (
	// ErrNoPlan is returned when no discharge plan has been saved yet.
	ErrNoPlan = errors.New("no discharge plan saved")
	// ErrUnknownField is returned for a distribution over an unsupported field.
	ErrUnknownField = errors.New("unknown distribution field")
)

// ProcessedAdmission is one admission of the newest discharge plan, with the
// encoded values its distributions are built from.
type ProcessedAdmission struct {
	HadmID            int64   `json:"hadm_id"`
	SubjectID         int64   `json:"subject_id"`
	ComorbidSeverity  float64 `json:"comorbid_severity"`
	ComorbidMortality float64 `json:"comorbid_mortality"`
	Age               float64 `json:"age"`
	ReadmissionRisk   float64 `json:"readmissionRisk"`
}

// Processed is the processed population: the newest saved discharge plan.
type Processed struct {
	RunID        uuid.UUID            `json:"run_id"`
	SampleSize   int                  `json:"sample_size"`
	Population   int64                `json:"population"`
	ForestSHA256 string               `json:"forest_sha256"`
	PlannedAt    time.Time            `json:"planned_at"`
	Count        int                  `json:"count"`
	Admissions   []ProcessedAdmission `json:"processedPatients"`
}

// LatestProcessed loads the newest discharge plan and its scored admissions
// in sample order.
func LatestProcessed(ctx context.Context, pool *pgxpool.Pool) (*Processed, error) {
	p := &Processed{}
	var scored int64
	err := pool.QueryRow(ctx, embedsql.LatestPlan).
		Scan(&p.RunID, &p.SampleSize, &p.Population, &scored, &p.ForestSHA256, &p.PlannedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoPlan
	}
	if err != nil {
		return nil, fmt.Errorf("latest plan: %w", err)
	}

	rows, err := pool.Query(ctx, embedsql.ProcessedAdmissions, p.RunID)
	if err != nil {
		return nil, fmt.Errorf("processed admissions: %w", err)
	}
	p.Admissions, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (ProcessedAdmission, error) {
		var a ProcessedAdmission
		var features []float64
		if err := row.Scan(&a.HadmID, &a.SubjectID, &features, &a.ReadmissionRisk); err != nil {
			return a, err
		}
		if len(features) != model.NumFeatures {
			return a, fmt.Errorf("hadm_id %d: %d features stored, want %d", a.HadmID, len(features), model.NumFeatures)
		}
		a.ComorbidSeverity = features[model.FeatAvgSeverity]
		a.ComorbidMortality = features[model.FeatAvgMortality]
		a.Age = features[model.FeatAge]
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("processed admissions: %w", err)
	}
	p.Count = len(p.Admissions)
	return p, nil
}

// Bucket is one bin of a Distribution.
type Bucket struct {
	Label  string    `json:"label"`
	Count  int       `json:"count"`
	Values []float64 `json:"values"`
}

// Distribution bins one field of the processed population.
type Distribution struct {
	Field   string    `json:"field"`
	RunID   uuid.UUID `json:"run_id"`
	Total   int       `json:"total"`
	Buckets []Bucket  `json:"buckets"`
}

// Distribution fields.
const (
	FieldAge       = "age"
	FieldSeverity  = "severity"
	FieldMortality = "mortality"
)

var (
	ageLabels      = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	comorbidLabels = []string{"One", "Two", "Three", "Four", "Five"}
)

// ageBucket bins ages into ten-year decades closed on the right: A holds
// ages up to 10, I holds (80,90], and J everything older.
func ageBucket(age float64) int {
	for i := 0; i < len(ageLabels)-1; i++ {
		if age <= float64(10*(i+1)) {
			return i
		}
	}
	return len(ageLabels) - 1
}

// comorbidBucket bins a DRG score into [0,1), [1,2), [2,3), [3,4), and a last
// bucket for anything else.
func comorbidBucket(v float64) int {
	if v >= 0 && v < 4 {
		return int(v)
	}
	return len(comorbidLabels) - 1
}

// CheckField reports whether field can be distributed.
func CheckField(field string) error {
	switch field {
	case FieldAge, FieldSeverity, FieldMortality:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// Distribute bins field ("age", "severity" or "mortality") across p.
func Distribute(field string, p *Processed) (Distribution, error) {
	var (
		labels []string
		bucket func(float64) int
		value  func(ProcessedAdmission) float64
	)
	switch field {
	case FieldAge:
		labels, bucket = ageLabels, ageBucket
		value = func(a ProcessedAdmission) float64 { return a.Age }
	case FieldSeverity:
		labels, bucket = comorbidLabels, comorbidBucket
		value = func(a ProcessedAdmission) float64 { return a.ComorbidSeverity }
	case FieldMortality:
		labels, bucket = comorbidLabels, comorbidBucket
		value = func(a ProcessedAdmission) float64 { return a.ComorbidMortality }
	default:
		return Distribution{}, CheckField(field)
	}

	d := Distribution{Field: field, RunID: p.RunID, Total: len(p.Admissions), Buckets: make([]Bucket, len(labels))}
	for i, l := range labels {
		d.Buckets[i] = Bucket{Label: l, Values: []float64{}}
	}
	for _, a := range p.Admissions {
		v := value(a)
		b := &d.Buckets[bucket(v)]
		b.Count++
		b.Values = append(b.Values, v)
	}
	return d, nil
}
