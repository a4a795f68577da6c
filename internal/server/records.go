package server

import (
	"time"

	"github.com/gyeh/readmitrisk/internal/score"
)

// PatientInfo is the joined view of one admission with its risk.
type PatientInfo struct {
	HadmID            int64      `json:"hadm_id"`
	SubjectID         int64      `json:"subject_id"`
	AdmissionType     string     `json:"admission_type"`
	Diagnosis         string     `json:"diagnosis"`
	Insurance         string     `json:"insurance"`
	Ethnicity         string     `json:"ethnicity"`
	Language          string     `json:"language"`
	MaritalStatus     string     `json:"marital_status"`
	AdmitTime         time.Time  `json:"admittime"`
	DischTime         *time.Time `json:"dischtime"`
	ComorbidSeverity  *float64   `json:"comorbid_severity"`
	ComorbidMortality *float64   `json:"comorbid_mortality"`
	Gender            *string    `json:"gender"`
	DOB               *time.Time `json:"dob"`
	Age               *float64   `json:"age"`
	ReadmissionRisk   float64    `json:"readmissionRisk"`
}

// Document wraps one PatientInfo.
type Document struct {
	HadmID      int64       `json:"hadm_id"`
	PatientInfo PatientInfo `json:"patientInfo"`
}

// RecordsResponse is the body of the records endpoint.
type RecordsResponse struct {
	NumberDocsReturned int        `json:"numberDocsReturned"`
	Documents          []Document `json:"documents"`
}

// BuildRecords returns one document per distinct scored admission, in
// request order.
func BuildRecords(scored []score.Scored) RecordsResponse {
	docs := make([]Document, 0, len(scored))
	seen := make(map[int64]bool, len(scored))
	for _, s := range scored {
		rec := s.Record
		if seen[rec.HadmID] {
			continue
		}
		seen[rec.HadmID] = true

		info := PatientInfo{
			HadmID:            rec.HadmID,
			SubjectID:         rec.SubjectID,
			AdmissionType:     rec.AdmissionType,
			Diagnosis:         rec.Diagnosis,
			Insurance:         rec.Insurance,
			Ethnicity:         rec.Ethnicity,
			Language:          rec.Language,
			MaritalStatus:     rec.MaritalStatus,
			AdmitTime:         rec.AdmitTime,
			ComorbidSeverity:  rec.AvgSeverity,
			ComorbidMortality: rec.AvgMortality,
			Gender:            rec.Gender,
			DOB:               rec.DOB,
			Age:               rec.Age,
			ReadmissionRisk:   s.Risk,
		}
		if !rec.DischTime.IsZero() {
			disch := rec.DischTime
			info.DischTime = &disch
		}
		docs = append(docs, Document{HadmID: rec.HadmID, PatientInfo: info})
	}
	return RecordsResponse{NumberDocsReturned: len(docs), Documents: docs}
}
