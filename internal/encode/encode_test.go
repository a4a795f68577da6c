package encode

import (
	"testing"

	"github.com/gyeh/readmitrisk/internal/model"
)

func f64(v float64) *float64 { return &v }
func strPtr(s string) *string { return &s }

func TestEncode_Scenario(t *testing.T) {
	rec := model.JoinedRecord{
		Admission: model.Admission{
			AdmissionType: "EMERGENCY",
			Insurance:     "Medicaid",
			Ethnicity:     "HISPANIC-LATINO",
			Language:      "SPAN",
			MaritalStatus: "MARRIED",
		},
		Gender:       strPtr("F"),
		AvgSeverity:  f64(2.5),
		AvgMortality: f64(1.1),
		Age:          f64(47),
	}
	want := model.FeatureVector{1, 2, 1, 2, 3, 3, 2.5, 1.1, 47}
	if got := Encode(rec); got != want {
		t.Errorf("Encode: got %v, want %v", got, want)
	}
}

func TestEncode_NewbornOverrides(t *testing.T) {
	rec := model.JoinedRecord{
		Admission: model.Admission{AdmissionType: "NEWBORN", Language: "", MaritalStatus: ""},
	}
	v := Encode(rec)
	if v[model.FeatLanguage] != 0 {
		t.Errorf("language: got %v, want 0", v[model.FeatLanguage])
	}
	if v[model.FeatMaritalStatus] != 1 {
		t.Errorf("marital_status: got %v, want 1", v[model.FeatMaritalStatus])
	}
}

func TestLanguage_NewbornIgnoresValue(t *testing.T) {
	for _, lang := range []string{"", "ENGL", "SPAN", "anything"} {
		if got := Language("NEWBORN", lang); got != 0 {
			t.Errorf("Language(NEWBORN, %q) = %v, want 0", lang, got)
		}
	}
}

func TestEncode_AbsentValuesDefaultToZero(t *testing.T) {
	v := Encode(model.JoinedRecord{Admission: model.Admission{AdmissionType: "URGENT"}})
	if v[model.FeatAvgSeverity] != 0 || v[model.FeatAvgMortality] != 0 {
		t.Errorf("absent comorbidity averages should encode as 0, got %v", v)
	}
	if v[model.FeatAge] != 0 {
		t.Errorf("absent age should encode as 0, got %v", v[model.FeatAge])
	}
	if v[model.FeatGender] != 2 {
		t.Errorf("absent gender should take fallback 2, got %v", v[model.FeatGender])
	}
}

func TestEncode_Deterministic(t *testing.T) {
	rec := model.JoinedRecord{
		Admission: model.Admission{AdmissionType: "ELECTIVE", Insurance: "Medicare", Ethnicity: "ASIAN - CHINESE", Language: "ENGL", MaritalStatus: "WIDOWED"},
		Gender:    strPtr("M"),
		Age:       f64(300),
	}
	if Encode(rec) != Encode(rec) {
		t.Fatal("encoding the same record twice should give identical vectors")
	}
}

func TestAge(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{300, 91},
		{200.5, 91},
		{200, 200},
		{89, 89},
		{0, 0},
		{-3, -3},
	}
	for _, tt := range tests {
		if got := Age(f64(tt.in)); got != tt.want {
			t.Errorf("Age(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRuleTables(t *testing.T) {
	tests := []struct {
		table RuleTable
		in    string
		want  float64
	}{
		{AdmissionTypeRules, "NEWBORN", 0},
		{AdmissionTypeRules, "EMERGENCY", 1},
		{AdmissionTypeRules, "URGENT", 2},
		{AdmissionTypeRules, "ELECTIVE", 3},
		{AdmissionTypeRules, "emergency", 3},

		{InsuranceRules, "Private", 0},
		{InsuranceRules, "Medicare", 1},
		{InsuranceRules, "Medicaid", 2},
		{InsuranceRules, "Government", 3},
		{InsuranceRules, "Self Pay", 4},
		{InsuranceRules, "Self-Pay", 5},
		{InsuranceRules, "", 5},

		{GenderRules, "M", 0},
		{GenderRules, "F", 1},
		{GenderRules, "X", 2},
		{GenderRules, "f", 2},

		{EthnicityRules, "WHITE", 0},
		{EthnicityRules, "WHITE - RUSSIAN", 0},
		{EthnicityRules, "EUROPEAN", 0},
		{EthnicityRules, "PORTUGUESE", 0},
		{EthnicityRules, "BLACK/AFRICAN AMERICAN", 1},
		{EthnicityRules, "AFRICAN", 1},
		{EthnicityRules, "HISPANIC OR LATINO", 2},
		{EthnicityRules, "LATINO", 2},
		{EthnicityRules, "MIDDLE EASTERN", 3},
		{EthnicityRules, "OTHER MIDDLE EASTERN", 3},
		{EthnicityRules, "ASIAN", 4},
		{EthnicityRules, "ASIAN - INDIAN", 4},
		{EthnicityRules, "SOUTH ASIAN - INDIAN", 4},
		{EthnicityRules, "UNKNOWN/NOT SPECIFIED", 5},
		{EthnicityRules, "white", 5},
		{EthnicityRules, "AMERICAN INDIAN/ALASKA NATIVE", 5},

		{LanguageRules, "ENGL", 1},
		{LanguageRules, "", 2},
		{LanguageRules, "SPAN", 3},

		{MaritalStatusRules, "NEWBORN", 0},
		{MaritalStatusRules, "", 1},
		{MaritalStatusRules, "LIFE PARTNER", 1},
		{MaritalStatusRules, "UNKNOWN (DEFAULT)", 2},
		{MaritalStatusRules, "MARRIED", 3},
		{MaritalStatusRules, "DIVORCED", 4},
		{MaritalStatusRules, "SINGLE", 5},
		{MaritalStatusRules, "WIDOWED", 6},
		{MaritalStatusRules, "SEPARATED", 7},
		{MaritalStatusRules, "ENGAGED", 8},
	}
	for _, tt := range tests {
		if got := tt.table.Apply(tt.in); got != tt.want {
			t.Errorf("%s(%q) = %v, want %v", tt.table.Field, tt.in, got, tt.want)
		}
	}
}

func TestRuleTable_FirstMatchWins(t *testing.T) {
	// "WHITE MIDDLE EASTERN" satisfies both the white prefix and the
	// middle-eastern substring rule; the earlier rule wins.
	if got := Ethnicity("WHITE MIDDLE EASTERN"); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
	if got := Ethnicity("ARAB MIDDLE EASTERN"); got != 3 {
		t.Errorf("got %v, want 3", got)
	}
}

func TestUnmapped(t *testing.T) {
	rec := model.JoinedRecord{
		Admission: model.Admission{
			AdmissionType: "ELECTIVE",
			Insurance:     "Medicare",
			Ethnicity:     "MULTI RACE ETHNICITY",
			Language:      "ENGL",
			MaritalStatus: "MARRIED",
		},
		Gender: strPtr("F"),
	}
	got := Unmapped(rec)
	if len(got) != 2 || got[0] != "admission_type" || got[1] != "ethnicity" {
		t.Errorf("Unmapped: got %v", got)
	}
}

func TestTables_FieldsMatchColumns(t *testing.T) {
	for _, tbl := range Tables {
		if _, ok := model.FeatureIndexByName(tbl.Field); !ok {
			t.Errorf("rule table %q has no feature column", tbl.Field)
		}
	}
}
