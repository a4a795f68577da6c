package model

// AdmissionRow mirrors the Parquet schema for one hospital admission.
// Timestamps are kept as strings and parsed during normalization.
type AdmissionRow struct {
	HadmID        int64   `parquet:"hadm_id"`
	SubjectID     int64   `parquet:"subject_id"`
	AdmissionType string  `parquet:"admission_type"`
	Diagnosis     *string `parquet:"diagnosis,optional"`
	Insurance     string  `parquet:"insurance"`
	Ethnicity     string  `parquet:"ethnicity"`
	Language      *string `parquet:"language,optional"`
	MaritalStatus *string `parquet:"marital_status,optional"`
	AdmitTime     string  `parquet:"admittime"`
	DischTime     string  `parquet:"dischtime"`
}

// ComorbidityRow mirrors the Parquet schema for one DRG code row.
type ComorbidityRow struct {
	HadmID       int64    `parquet:"hadm_id"`
	DRGType      *string  `parquet:"drg_type,optional"`
	DRGCode      *string  `parquet:"drg_code,optional"`
	Description  *string  `parquet:"description,optional"`
	DRGSeverity  *float64 `parquet:"drg_severity,optional"`
	DRGMortality *float64 `parquet:"drg_mortality,optional"`
}

// PatientRow mirrors the Parquet schema for one patient.
type PatientRow struct {
	SubjectID int64  `parquet:"subject_id"`
	Gender    string `parquet:"gender"`
	DOB       string `parquet:"dob"`
}

// SourceKind names one of the three record collections.
type SourceKind string

const (
	SourceAdmissions    SourceKind = "admissions"
	SourceComorbidities SourceKind = "comorbidities"
	SourcePatients      SourceKind = "patients"
)

// RequiredColumns lists the Parquet columns each source file must carry.
var RequiredColumns = map[SourceKind][]string{
	SourceAdmissions:    {"hadm_id", "subject_id", "admission_type", "insurance", "ethnicity", "admittime"},
	SourceComorbidities: {"hadm_id"},
	SourcePatients:      {"subject_id", "gender", "dob"},
}
