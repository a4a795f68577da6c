package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/readmitrisk/internal/model"
	embedsql "github.com/gyeh/readmitrisk/internal/sql"
)

// Postgres reads records from the risk schema.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Source backed by pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// AdmissionIDs lists every loaded admission id in ascending order.
func (p *Postgres) AdmissionIDs(ctx context.Context) ([]int64, error) {
	rows, err := p.pool.Query(ctx, embedsql.ListAdmissionIDs)
	if err != nil {
		return nil, fmt.Errorf("admissions: %w: %w", ErrUnavailable, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("admissions: %w: %w", ErrUnavailable, err)
	}
	return ids, nil
}

func (p *Postgres) Admissions(ctx context.Context, hadmIDs []int64) ([]model.Admission, error) {
	rows, err := p.pool.Query(ctx, embedsql.SelectAdmissions, Distinct(hadmIDs))
	if err != nil {
		return nil, fmt.Errorf("admissions: %w: %w", ErrUnavailable, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Admission, error) {
		var a model.Admission
		var disch *time.Time
		err := row.Scan(
			&a.HadmID,
			&a.SubjectID,
			&a.AdmissionType,
			&a.Diagnosis,
			&a.Insurance,
			&a.Ethnicity,
			&a.Language,
			&a.MaritalStatus,
			&a.AdmitTime,
			&disch,
		)
		if disch != nil {
			a.DischTime = *disch
		}
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("admissions: %w: %w", ErrUnavailable, err)
	}
	return out, nil
}

func (p *Postgres) Comorbidities(ctx context.Context, hadmIDs []int64) ([]model.Comorbidity, error) {
	rows, err := p.pool.Query(ctx, embedsql.SelectComorbidities, Distinct(hadmIDs))
	if err != nil {
		return nil, fmt.Errorf("comorbidities: %w: %w", ErrUnavailable, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Comorbidity, error) {
		var c model.Comorbidity
		err := row.Scan(&c.HadmID, &c.DRGType, &c.DRGCode, &c.Description, &c.Severity, &c.Mortality)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("comorbidities: %w: %w", ErrUnavailable, err)
	}
	return out, nil
}

func (p *Postgres) Patients(ctx context.Context, subjectIDs []int64) ([]model.Patient, error) {
	rows, err := p.pool.Query(ctx, embedsql.SelectPatients, Distinct(subjectIDs))
	if err != nil {
		return nil, fmt.Errorf("patients: %w: %w", ErrUnavailable, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Patient, error) {
		var pt model.Patient
		err := row.Scan(&pt.SubjectID, &pt.Gender, &pt.DOB)
		return pt, err
	})
	if err != nil {
		return nil, fmt.Errorf("patients: %w: %w", ErrUnavailable, err)
	}
	return out, nil
}

var _ Population = (*Postgres)(nil)
