package model

import "time"

// Admission is one hospital stay.
type Admission struct {
	HadmID        int64
	SubjectID     int64
	AdmissionType string
	Diagnosis     string
	Insurance     string
	Ethnicity     string
	Language      string
	MaritalStatus string
	AdmitTime     time.Time
	DischTime     time.Time
}

// Comorbidity is one DRG row attached to an admission. Zero or more per admission.
type Comorbidity struct {
	HadmID      int64
	DRGType     string
	DRGCode     string
	Description string
	Severity    *float64
	Mortality   *float64
}

// Patient is the owner of one or more admissions.
type Patient struct {
	SubjectID int64
	Gender    string
	DOB       time.Time
}

// JoinedRecord is one admission left-joined with its averaged comorbidity
// scores and its patient. Pointer fields are nil when the joined side had no match.
type JoinedRecord struct {
	Admission

	AvgSeverity  *float64
	AvgMortality *float64

	Gender *string
	DOB    *time.Time
	Age    *float64
}
