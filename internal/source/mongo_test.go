package source

import (
	"context"
	"os"
	"slices"
	"testing"
	"time"

	"gopkg.in/mgo.v2/bson"
)

func TestMongoDocs_Decode(t *testing.T) {
	admit := time.Date(2130, 9, 24, 8, 0, 0, 0, time.UTC)
	raw, err := bson.Marshal(bson.M{
		"hadm_id":        float64(10),
		"subject_id":     float64(1),
		"admission_type": "EMERGENCY",
		"insurance":      "Medicaid",
		"language":       nil,
		"admittime":      admit,
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var doc admissionDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	a := doc.toModel()
	if a.HadmID != 10 || a.SubjectID != 1 || a.AdmissionType != "EMERGENCY" || a.Language != "" {
		t.Errorf("unexpected admission: %+v", a)
	}
	if !a.AdmitTime.Equal(admit) {
		t.Errorf("AdmitTime: got %v, want %v", a.AdmitTime, admit)
	}
}

func TestMongoDocs_Comorbidity(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"hadm_id":       int64(10),
		"drg_code":      float64(721),
		"drg_severity":  float64(3),
		"drg_mortality": nil,
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var doc comorbidityDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	c := doc.toModel()
	if c.DRGCode != "721" {
		t.Errorf("DRGCode: got %q, want 721", c.DRGCode)
	}
	if c.Severity == nil || *c.Severity != 3 {
		t.Errorf("Severity: got %v", c.Severity)
	}
	if c.Mortality != nil {
		t.Errorf("Mortality: expected nil, got %v", *c.Mortality)
	}
}

func TestCodeString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"720", "720"},
		{float64(721), "721"},
		{721, "721"},
	}
	for _, tt := range tests {
		if got := codeString(tt.in); got != tt.want {
			t.Errorf("codeString(%v): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestMongo_Live runs against a real server when READMIT_TEST_MONGO_URL is set.
func TestMongo_Live(t *testing.T) {
	url := os.Getenv("READMIT_TEST_MONGO_URL")
	if url == "" {
		t.Skip("READMIT_TEST_MONGO_URL not set")
	}
	m, err := DialMongo(url, DefaultCollections, 5*time.Second)
	if err != nil {
		t.Fatalf("DialMongo: %v", err)
	}
	defer m.Close()

	if _, err := m.Admissions(context.Background(), []int64{0}); err != nil {
		t.Fatalf("Admissions: %v", err)
	}
	ids, err := m.AdmissionIDs(context.Background())
	if err != nil {
		t.Fatalf("AdmissionIDs: %v", err)
	}
	if !slices.IsSorted(ids) {
		t.Errorf("AdmissionIDs not sorted: %v", ids)
	}
}
