package source

import (
	"context"
	"fmt"
	"slices"

	"github.com/gyeh/readmitrisk/internal/model"
)

// Memory serves records from in-memory collections indexed at construction.
// A nil collection is reported as ErrUnavailable. Memory is read-only after
// NewMemory returns and safe for concurrent use.
type Memory struct {
	admissions    map[int64]model.Admission
	comorbidities map[int64][]model.Comorbidity
	patients      map[int64]model.Patient

	haveAdmissions, haveComorbidities, havePatients bool
}

// NewMemory indexes the given collections. The first admission or patient
// seen for a key wins.
func NewMemory(admissions []model.Admission, comorbidities []model.Comorbidity, patients []model.Patient) *Memory {
	m := &Memory{
		admissions:        make(map[int64]model.Admission, len(admissions)),
		comorbidities:     make(map[int64][]model.Comorbidity),
		patients:          make(map[int64]model.Patient, len(patients)),
		haveAdmissions:    admissions != nil,
		haveComorbidities: comorbidities != nil,
		havePatients:      patients != nil,
	}
	for _, a := range admissions {
		if _, ok := m.admissions[a.HadmID]; !ok {
			m.admissions[a.HadmID] = a
		}
	}
	for _, c := range comorbidities {
		m.comorbidities[c.HadmID] = append(m.comorbidities[c.HadmID], c)
	}
	for _, p := range patients {
		if _, ok := m.patients[p.SubjectID]; !ok {
			m.patients[p.SubjectID] = p
		}
	}
	return m
}

// Counts returns the number of indexed admissions, comorbidity rows and patients.
func (m *Memory) Counts() (admissions, comorbidities, patients int) {
	for _, rows := range m.comorbidities {
		comorbidities += len(rows)
	}
	return len(m.admissions), comorbidities, len(m.patients)
}

// AdmissionIDs lists every indexed admission id in ascending order.
func (m *Memory) AdmissionIDs(context.Context) ([]int64, error) {
	if !m.haveAdmissions {
		return nil, fmt.Errorf("admissions: %w", ErrUnavailable)
	}
	ids := make([]int64, 0, len(m.admissions))
	for id := range m.admissions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *Memory) Admissions(_ context.Context, hadmIDs []int64) ([]model.Admission, error) {
	if !m.haveAdmissions {
		return nil, fmt.Errorf("admissions: %w", ErrUnavailable)
	}
	out := make([]model.Admission, 0, len(hadmIDs))
	for _, id := range Distinct(hadmIDs) {
		if a, ok := m.admissions[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) Comorbidities(_ context.Context, hadmIDs []int64) ([]model.Comorbidity, error) {
	if !m.haveComorbidities {
		return nil, fmt.Errorf("comorbidities: %w", ErrUnavailable)
	}
	out := []model.Comorbidity{}
	for _, id := range Distinct(hadmIDs) {
		out = append(out, m.comorbidities[id]...)
	}
	return out, nil
}

func (m *Memory) Patients(_ context.Context, subjectIDs []int64) ([]model.Patient, error) {
	if !m.havePatients {
		return nil, fmt.Errorf("patients: %w", ErrUnavailable)
	}
	out := make([]model.Patient, 0, len(subjectIDs))
	for _, id := range Distinct(subjectIDs) {
		if p, ok := m.patients[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

var _ Population = (*Memory)(nil)
