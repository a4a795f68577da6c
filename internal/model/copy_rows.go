package model

// AdmissionColumns returns the ordered column names for COPY into risk.admissions.
func AdmissionColumns() []string {
	return []string{
		"hadm_id",
		"subject_id",
		"admission_type",
		"diagnosis",
		"insurance",
		"ethnicity",
		"language",
		"marital_status",
		"admittime",
		"dischtime",
	}
}

// CopyValues returns the admission in AdmissionColumns order. Empty optional
// text and a zero discharge time are written as NULL.
func (a *Admission) CopyValues() []any {
	var disch any
	if !a.DischTime.IsZero() {
		disch = a.DischTime
	}
	return []any{
		a.HadmID,
		a.SubjectID,
		a.AdmissionType,
		nilIfEmpty(a.Diagnosis),
		a.Insurance,
		a.Ethnicity,
		nilIfEmpty(a.Language),
		nilIfEmpty(a.MaritalStatus),
		a.AdmitTime,
		disch,
	}
}

// ComorbidityColumns returns the ordered column names for COPY into risk.comorbidities.
func ComorbidityColumns() []string {
	return []string{
		"hadm_id",
		"drg_type",
		"drg_code",
		"description",
		"drg_severity",
		"drg_mortality",
	}
}

func (c *Comorbidity) CopyValues() []any {
	return []any{
		c.HadmID,
		nilIfEmpty(c.DRGType),
		nilIfEmpty(c.DRGCode),
		nilIfEmpty(c.Description),
		c.Severity,
		c.Mortality,
	}
}

// PatientColumns returns the ordered column names for COPY into risk.patients.
func PatientColumns() []string {
	return []string{"subject_id", "gender", "dob"}
}

func (p *Patient) CopyValues() []any {
	return []any{p.SubjectID, p.Gender, p.DOB}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
