// Package join merges admission, comorbidity and patient records into one
// flat record per requested admission.
package join

import (
	"errors"
	"math"
	"time"

	"github.com/gyeh/readmitrisk/internal/model"
)

// DaysPerYear is the divisor used to turn an admit-time minus DOB day count into years.
const DaysPerYear = 364.25

// ErrMissingSource is returned when the admission collection was never supplied.
var ErrMissingSource = errors.New("admission source unavailable")

// Join returns one JoinedRecord per id in ids that has an admission, in input
// order; duplicate ids yield duplicate records. Ids with no admission are
// returned in dropped, also in input order.
//
// A nil admissions slice means the source is unavailable and yields
// ErrMissingSource. Nil comorbidities or patients are treated as zero rows.
func Join(ids []int64, admissions []model.Admission, comorbidities []model.Comorbidity, patients []model.Patient) (joined []model.JoinedRecord, dropped []int64, err error) {
	if admissions == nil {
		return nil, nil, ErrMissingSource
	}

	byHadm := make(map[int64]*model.Admission, len(admissions))
	for i := range admissions {
		if _, dup := byHadm[admissions[i].HadmID]; !dup {
			byHadm[admissions[i].HadmID] = &admissions[i]
		}
	}
	scores := averageComorbidities(comorbidities)
	bySubject := make(map[int64]*model.Patient, len(patients))
	for i := range patients {
		if _, dup := bySubject[patients[i].SubjectID]; !dup {
			bySubject[patients[i].SubjectID] = &patients[i]
		}
	}

	joined = make([]model.JoinedRecord, 0, len(ids))
	for _, id := range ids {
		adm, ok := byHadm[id]
		if !ok {
			dropped = append(dropped, id)
			continue
		}
		rec := model.JoinedRecord{Admission: *adm}
		if s, ok := scores[id]; ok {
			rec.AvgSeverity = ptr(s.severity / float64(s.n))
			rec.AvgMortality = ptr(s.mortality / float64(s.n))
		}
		if p, ok := bySubject[adm.SubjectID]; ok {
			rec.Gender = ptr(p.Gender)
			rec.DOB = ptr(p.DOB)
			rec.Age = ptr(Age(DaysBetween(p.DOB, adm.AdmitTime)))
		}
		joined = append(joined, rec)
	}
	return joined, dropped, nil
}

type scoreSums struct {
	severity  float64
	mortality float64
	n         int
}

// averageComorbidities sums scores per admission. Null scores count as 0,
// matching the fill-then-average the model was trained on.
func averageComorbidities(rows []model.Comorbidity) map[int64]scoreSums {
	out := make(map[int64]scoreSums)
	for _, c := range rows {
		s := out[c.HadmID]
		if c.Severity != nil {
			s.severity += *c.Severity
		}
		if c.Mortality != nil {
			s.mortality += *c.Mortality
		}
		s.n++
		out[c.HadmID] = s
	}
	return out
}

// Age converts a calendar-day count into whole years, rounding half away from zero.
func Age(days int64) float64 {
	return math.Round(float64(days) / DaysPerYear)
}

// DaysBetween returns the number of calendar days from the UTC date of from to
// the UTC date of to. Time of day is ignored. Unlike time.Time.Sub it does not
// saturate, so DOBs shifted centuries into the past still produce a day count.
func DaysBetween(from, to time.Time) int64 {
	return dayNumber(to.UTC()) - dayNumber(from.UTC())
}

// dayNumber is the proleptic Gregorian day count since 0000-03-01.
func dayNumber(t time.Time) int64 {
	y, m, d := int64(t.Year()), int64(t.Month()), int64(t.Day())
	if m <= 2 {
		y--
		m += 12
	}
	m -= 3
	return 365*y + floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) + (153*m+2)/5 + d - 1
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// SubjectIDs returns the distinct subject ids of the admissions matching ids, in
// first-seen order. Sources use it to narrow patient lookups.
func SubjectIDs(ids []int64, admissions []model.Admission) []int64 {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	seen := make(map[int64]bool)
	var out []int64
	for _, a := range admissions {
		if want[a.HadmID] && !seen[a.SubjectID] {
			seen[a.SubjectID] = true
			out = append(out, a.SubjectID)
		}
	}
	return out
}

func ptr[T any](v T) *T { return &v }
