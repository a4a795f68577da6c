package source

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/readmitrisk/internal/model"
	"github.com/gyeh/readmitrisk/internal/normalize"
	"github.com/gyeh/readmitrisk/internal/parquetread"
)

const readBatchSize = 1024

// Files names the three Parquet exports that make up a record source.
type Files struct {
	Admissions    string `yaml:"admissions"`
	Comorbidities string `yaml:"comorbidities"`
	Patients      string `yaml:"patients"`
}

// ReadStats holds metrics from reading one Parquet export.
type ReadStats struct {
	Kind         model.SourceKind
	RowsRead     int64
	RowsRejected int64
	Duration     time.Duration
}

// readRows streams path through conv and emit. Rows conv rejects are logged
// and counted, never fatal; errors from emit abort the read.
func readRows[R any, T any](path string, kind model.SourceKind, log zerolog.Logger, conv func(*R) (T, error), emit func(T) error) (ReadStats, error) {
	start := time.Now()
	stats := ReadStats{Kind: kind}

	n, err := parquetread.ReadAll(path, model.RequiredColumns[kind], readBatchSize, func(rowNum int64, row *R) error {
		rec, convErr := conv(row)
		if convErr != nil {
			stats.RowsRejected++
			log.Warn().Err(convErr).Str("source", string(kind)).Int64("row", rowNum).Msg("row rejected")
			return nil
		}
		return emit(rec)
	})
	stats.RowsRead = n
	stats.Duration = time.Since(start)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", kind, err)
	}

	log.Info().
		Str("source", string(kind)).
		Str("file", filepath.Base(path)).
		Int64("rows_read", stats.RowsRead).
		Int64("rows_rejected", stats.RowsRejected).
		Dur("duration", stats.Duration).
		Msg("source file read")
	return stats, nil
}

// ReadAdmissions streams the admissions export at path to emit.
func ReadAdmissions(path string, log zerolog.Logger, emit func(model.Admission) error) (ReadStats, error) {
	return readRows(path, model.SourceAdmissions, log, normalize.ToAdmission, emit)
}

// ReadComorbidities streams the comorbidity export at path to emit.
func ReadComorbidities(path string, log zerolog.Logger, emit func(model.Comorbidity) error) (ReadStats, error) {
	return readRows(path, model.SourceComorbidities, log, func(r *model.ComorbidityRow) (model.Comorbidity, error) {
		return normalize.ToComorbidity(r), nil
	}, emit)
}

// ReadPatients streams the patient export at path to emit.
func ReadPatients(path string, log zerolog.Logger, emit func(model.Patient) error) (ReadStats, error) {
	return readRows(path, model.SourcePatients, log, normalize.ToPatient, emit)
}

// OpenParquet reads all three exports into a Memory source. Any unreadable
// file makes the whole source unavailable.
func OpenParquet(files Files, log zerolog.Logger) (*Memory, error) {
	admissions := []model.Admission{}
	if _, err := ReadAdmissions(files.Admissions, log, func(a model.Admission) error {
		admissions = append(admissions, a)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	comorbidities := []model.Comorbidity{}
	if _, err := ReadComorbidities(files.Comorbidities, log, func(c model.Comorbidity) error {
		comorbidities = append(comorbidities, c)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	patients := []model.Patient{}
	if _, err := ReadPatients(files.Patients, log, func(p model.Patient) error {
		patients = append(patients, p)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	m := NewMemory(admissions, comorbidities, patients)
	a, c, p := m.Counts()
	log.Info().
		Int("admissions", a).
		Int("comorbidities", c).
		Int("patients", p).
		Msg("parquet sources indexed")
	return m, nil
}
