// Package source supplies the admission, comorbidity and patient records the
// scoring pipeline joins. Implementations perform all I/O; the pipeline only
// sees the returned slices.
package source

import (
	"context"
	"errors"

	"github.com/gyeh/readmitrisk/internal/model"
)

// ErrUnavailable reports that a source collection cannot be read at all.
var ErrUnavailable = errors.New("source unavailable")

// Source returns the records relevant to a set of admissions. A nil error
// with an empty slice means "no matching rows", which is not a failure.
type Source interface {
	Admissions(ctx context.Context, hadmIDs []int64) ([]model.Admission, error)
	Comorbidities(ctx context.Context, hadmIDs []int64) ([]model.Comorbidity, error)
	Patients(ctx context.Context, subjectIDs []int64) ([]model.Patient, error)
}

// Lister enumerates every admission id a source holds, in ascending order.
type Lister interface {
	AdmissionIDs(ctx context.Context) ([]int64, error)
}

// Population is a Source whose admissions can be listed and sampled.
type Population interface {
	Source
	Lister
}

// Distinct returns ids without duplicates, keeping first-occurrence order.
func Distinct(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
