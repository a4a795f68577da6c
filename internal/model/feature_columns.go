package model

// NumFeatures is the fixed width of a FeatureVector.
const NumFeatures = 9

// FeatureVector is the numeric projection of one JoinedRecord, in FeatureColumns order.
type FeatureVector [NumFeatures]float64

// Feature indices into a FeatureVector.
const (
	FeatAdmissionType = iota
	FeatInsurance
	FeatGender
	FeatEthnicity
	FeatLanguage
	FeatMaritalStatus
	FeatAvgSeverity
	FeatAvgMortality
	FeatAge
)

// FeatureColumns lists the feature names in canonical vector order.
var FeatureColumns = [NumFeatures]string{
	"admission_type",
	"insurance",
	"gender",
	"ethnicity",
	"language",
	"marital_status",
	"avg_severity",
	"avg_mortality",
	"age",
}

// FeatureIndexByName returns the vector index for the given feature name, or ok=false.
func FeatureIndexByName(name string) (int, bool) {
	for i, col := range FeatureColumns {
		if col == name {
			return i, true
		}
	}
	return 0, false
}
