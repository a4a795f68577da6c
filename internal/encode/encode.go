// Package encode turns joined admission records into the fixed-order
// numeric feature vector the forest was trained on.
package encode

import "github.com/gyeh/readmitrisk/internal/model"

const (
	// AgeOutlierThreshold marks ages produced by shifted or malformed DOBs.
	AgeOutlierThreshold = 200
	// AgeOutlierValue replaces ages above AgeOutlierThreshold.
	AgeOutlierValue = 91
)

// Encode converts one JoinedRecord into a FeatureVector. Every component is
// always set; absent values take their documented defaults.
func Encode(rec model.JoinedRecord) model.FeatureVector {
	var v model.FeatureVector
	v[model.FeatAdmissionType] = AdmissionType(rec.AdmissionType)
	v[model.FeatInsurance] = Insurance(rec.Insurance)
	v[model.FeatGender] = Gender(rec.Gender)
	v[model.FeatEthnicity] = Ethnicity(rec.Ethnicity)
	v[model.FeatLanguage] = Language(rec.AdmissionType, rec.Language)
	v[model.FeatMaritalStatus] = MaritalStatus(rec.MaritalStatus)
	v[model.FeatAvgSeverity] = orZero(rec.AvgSeverity)
	v[model.FeatAvgMortality] = orZero(rec.AvgMortality)
	v[model.FeatAge] = Age(rec.Age)
	return v
}

// EncodeAll encodes records in order.
func EncodeAll(recs []model.JoinedRecord) []model.FeatureVector {
	out := make([]model.FeatureVector, len(recs))
	for i := range recs {
		out[i] = Encode(recs[i])
	}
	return out
}

// AdmissionType encodes the admission_type field.
func AdmissionType(v string) float64 { return AdmissionTypeRules.Apply(v) }

// Insurance encodes the insurance field.
func Insurance(v string) float64 { return InsuranceRules.Apply(v) }

// Gender encodes the patient's gender; a missing patient takes the fallback.
func Gender(v *string) float64 {
	if v == nil {
		return GenderRules.Fallback
	}
	return GenderRules.Apply(*v)
}

// Ethnicity encodes the ethnicity field.
func Ethnicity(v string) float64 { return EthnicityRules.Apply(v) }

// Language encodes the language field, except that newborn admissions always
// encode as 0 whatever the language says.
func Language(admissionType, language string) float64 {
	if admissionType == "NEWBORN" {
		return 0
	}
	return LanguageRules.Apply(language)
}

// MaritalStatus encodes the marital_status field.
func MaritalStatus(v string) float64 { return MaritalStatusRules.Apply(v) }

// Age clamps outlier ages and passes every other value through untouched,
// negatives included. A missing patient encodes as 0.
func Age(v *float64) float64 {
	if v == nil {
		return 0
	}
	if *v > AgeOutlierThreshold {
		return AgeOutlierValue
	}
	return *v
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Unmapped lists the categorical fields of rec whose value matched no explicit
// rule and fell into the fallback bucket. It exists for observability only;
// Encode treats fallbacks as ordinary codes.
func Unmapped(rec model.JoinedRecord) []string {
	var fields []string
	check := func(t RuleTable, v string) {
		if _, ok := t.Lookup(v); !ok {
			fields = append(fields, t.Field)
		}
	}
	check(AdmissionTypeRules, rec.AdmissionType)
	check(InsuranceRules, rec.Insurance)
	if rec.Gender != nil {
		check(GenderRules, *rec.Gender)
	}
	check(EthnicityRules, rec.Ethnicity)
	if rec.AdmissionType != "NEWBORN" {
		check(LanguageRules, rec.Language)
	}
	check(MaritalStatusRules, rec.MaritalStatus)
	return fields
}
