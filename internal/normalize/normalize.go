package normalize

import (
	"fmt"
	"strings"

	"github.com/gyeh/readmitrisk/internal/model"
)

// ToAdmission converts a Parquet-read AdmissionRow into an Admission.
// Categorical text is trimmed but never re-cased: encoding is case-sensitive.
func ToAdmission(row *model.AdmissionRow) (model.Admission, error) {
	admit := ParseTimestamp(row.AdmitTime)
	if admit == nil {
		return model.Admission{}, fmt.Errorf("hadm_id %d: unparseable admittime %q", row.HadmID, row.AdmitTime)
	}
	a := model.Admission{
		HadmID:        row.HadmID,
		SubjectID:     row.SubjectID,
		AdmissionType: strings.TrimSpace(row.AdmissionType),
		Diagnosis:     derefStr(row.Diagnosis),
		Insurance:     strings.TrimSpace(row.Insurance),
		Ethnicity:     strings.TrimSpace(row.Ethnicity),
		Language:      derefStr(row.Language),
		MaritalStatus: derefStr(row.MaritalStatus),
		AdmitTime:     *admit,
	}
	if disch := ParseTimestamp(row.DischTime); disch != nil {
		a.DischTime = *disch
	}
	return a, nil
}

// ToComorbidity converts a Parquet-read ComorbidityRow into a Comorbidity.
func ToComorbidity(row *model.ComorbidityRow) model.Comorbidity {
	return model.Comorbidity{
		HadmID:      row.HadmID,
		DRGType:     derefStr(row.DRGType),
		DRGCode:     derefStr(row.DRGCode),
		Description: derefStr(row.Description),
		Severity:    row.DRGSeverity,
		Mortality:   row.DRGMortality,
	}
}

// ToPatient converts a Parquet-read PatientRow into a Patient.
func ToPatient(row *model.PatientRow) (model.Patient, error) {
	dob := ParseTimestamp(row.DOB)
	if dob == nil {
		return model.Patient{}, fmt.Errorf("subject_id %d: unparseable dob %q", row.SubjectID, row.DOB)
	}
	return model.Patient{
		SubjectID: row.SubjectID,
		Gender:    strings.TrimSpace(row.Gender),
		DOB:       *dob,
	}, nil
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
