package join

import (
	"errors"
	"testing"
	"time"

	"github.com/gyeh/readmitrisk/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func f64(v float64) *float64 { return &v }

func fixtures() ([]model.Admission, []model.Comorbidity, []model.Patient) {
	admissions := []model.Admission{
		{HadmID: 10, SubjectID: 1, AdmissionType: "EMERGENCY", Insurance: "Medicaid", AdmitTime: date(2130, 9, 24)},
		{HadmID: 30, SubjectID: 2, AdmissionType: "NEWBORN", Insurance: "Private", AdmitTime: date(2140, 1, 1)},
		{HadmID: 40, SubjectID: 99, AdmissionType: "URGENT", AdmitTime: date(2150, 6, 1)},
	}
	comorbidities := []model.Comorbidity{
		{HadmID: 10, Severity: f64(2), Mortality: f64(1)},
		{HadmID: 10, Severity: f64(3), Mortality: f64(1.2)},
		{HadmID: 20, Severity: f64(4), Mortality: f64(4)},
	}
	patients := []model.Patient{
		{SubjectID: 1, Gender: "F", DOB: date(2083, 5, 17)},
		{SubjectID: 2, Gender: "M", DOB: date(2140, 1, 1)},
	}
	return admissions, comorbidities, patients
}

func TestJoin_DropsMissingIDs(t *testing.T) {
	adm, com, pat := fixtures()
	joined, dropped, err := Join([]int64{10, 20, 30}, adm, com, pat)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if len(joined) != 2 {
		t.Fatalf("expected 2 joined records, got %d", len(joined))
	}
	if joined[0].HadmID != 10 || joined[1].HadmID != 30 {
		t.Errorf("unexpected order: %d, %d", joined[0].HadmID, joined[1].HadmID)
	}
	if len(dropped) != 1 || dropped[0] != 20 {
		t.Errorf("dropped: got %v, want [20]", dropped)
	}
}

func TestJoin_AveragesComorbidities(t *testing.T) {
	adm, com, pat := fixtures()
	joined, _, err := Join([]int64{10}, adm, com, pat)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	rec := joined[0]
	if rec.AvgSeverity == nil || *rec.AvgSeverity != 2.5 {
		t.Errorf("AvgSeverity: got %v, want 2.5", rec.AvgSeverity)
	}
	if rec.AvgMortality == nil || *rec.AvgMortality != 1.1 {
		t.Errorf("AvgMortality: got %v, want 1.1", rec.AvgMortality)
	}
}

func TestJoin_NullScoresCountAsZero(t *testing.T) {
	adm, _, pat := fixtures()
	com := []model.Comorbidity{
		{HadmID: 10, Severity: f64(4), Mortality: nil},
		{HadmID: 10, Severity: nil, Mortality: f64(2)},
	}
	joined, _, err := Join([]int64{10}, adm, com, pat)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if *joined[0].AvgSeverity != 2 || *joined[0].AvgMortality != 1 {
		t.Errorf("got severity=%v mortality=%v, want 2 and 1", *joined[0].AvgSeverity, *joined[0].AvgMortality)
	}
}

func TestJoin_NoComorbidityRowsLeavesAbsent(t *testing.T) {
	adm, com, pat := fixtures()
	joined, _, err := Join([]int64{30}, adm, com, pat)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if joined[0].AvgSeverity != nil || joined[0].AvgMortality != nil {
		t.Errorf("expected absent averages, got %v / %v", joined[0].AvgSeverity, joined[0].AvgMortality)
	}
}

func TestJoin_PatientLookupAndAge(t *testing.T) {
	adm, com, pat := fixtures()
	joined, _, err := Join([]int64{10, 30, 40}, adm, com, pat)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if joined[0].Gender == nil || *joined[0].Gender != "F" {
		t.Errorf("gender: got %v", joined[0].Gender)
	}
	if joined[0].Age == nil || *joined[0].Age != 47 {
		t.Errorf("age: got %v, want 47", joined[0].Age)
	}
	if joined[1].Age == nil || *joined[1].Age != 0 {
		t.Errorf("newborn age: got %v, want 0", joined[1].Age)
	}
	if joined[2].Gender != nil || joined[2].DOB != nil || joined[2].Age != nil {
		t.Errorf("missing patient should leave gender/dob/age absent")
	}
}

func TestJoin_DuplicateIDs(t *testing.T) {
	adm, com, pat := fixtures()
	joined, dropped, err := Join([]int64{10, 10, 20, 20}, adm, com, pat)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if len(joined) != 2 {
		t.Errorf("expected each duplicate to be joined, got %d records", len(joined))
	}
	if len(dropped) != 2 {
		t.Errorf("expected each duplicate to be dropped, got %v", dropped)
	}
}

func TestJoin_MissingAdmissionSource(t *testing.T) {
	_, _, err := Join([]int64{10}, nil, nil, nil)
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource, got %v", err)
	}
}

func TestJoin_EmptyAdmissionSourceDropsAll(t *testing.T) {
	joined, dropped, err := Join([]int64{1, 2}, []model.Admission{}, nil, nil)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if len(joined) != 0 || len(dropped) != 2 {
		t.Errorf("got %d joined, %v dropped", len(joined), dropped)
	}
}

func TestDaysBetween_Centuries(t *testing.T) {
	days := DaysBetween(date(1800, 7, 4), date(2130, 9, 24))
	if days != 120612 {
		t.Fatalf("DaysBetween: got %d, want 120612", days)
	}
	if age := Age(days); age != 331 {
		t.Errorf("Age: got %v, want 331", age)
	}
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	from := time.Date(2100, 1, 1, 23, 59, 0, 0, time.UTC)
	to := time.Date(2100, 1, 2, 0, 1, 0, 0, time.UTC)
	if d := DaysBetween(from, to); d != 1 {
		t.Errorf("got %d, want 1", d)
	}
}

func TestAge_Negative(t *testing.T) {
	if age := Age(DaysBetween(date(2100, 1, 1), date(2090, 1, 1))); age != -10 {
		t.Errorf("got %v, want -10", age)
	}
}

func TestSubjectIDs(t *testing.T) {
	adm, _, _ := fixtures()
	got := SubjectIDs([]int64{40, 10, 10, 20}, adm)
	if len(got) != 2 || got[0] != 1 || got[1] != 99 {
		t.Errorf("got %v, want [1 99]", got)
	}
}
