package encode

import "strings"

// Match decides whether a categorical value satisfies a rule.
type Match func(v string) bool

// Rule maps values satisfying Match to Code.
type Rule struct {
	Name  string
	Match Match
	Code  float64
}

// RuleTable is an ordered list of rules evaluated first-match-wins, with a
// fallback code for values no rule accepts.
type RuleTable struct {
	Field    string
	Rules    []Rule
	Fallback float64
}

// Apply returns the code of the first matching rule, or Fallback.
func (t RuleTable) Apply(v string) float64 {
	code, _ := t.Lookup(v)
	return code
}

// Lookup is Apply that also reports whether an explicit rule matched.
// Unmatched values are not an error; they take the fallback code.
func (t RuleTable) Lookup(v string) (float64, bool) {
	for _, r := range t.Rules {
		if r.Match(v) {
			return r.Code, true
		}
	}
	return t.Fallback, false
}

// Equals matches exact, case-sensitive equality with any of vals.
func Equals(vals ...string) Match {
	return func(v string) bool {
		for _, want := range vals {
			if v == want {
				return true
			}
		}
		return false
	}
}

// HasPrefix matches values starting with any of prefixes.
func HasPrefix(prefixes ...string) Match {
	return func(v string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(v, p) {
				return true
			}
		}
		return false
	}
}

// Contains matches values containing any of subs.
func Contains(subs ...string) Match {
	return func(v string) bool {
		for _, s := range subs {
			if strings.Contains(v, s) {
				return true
			}
		}
		return false
	}
}

// Any matches when any of ms matches.
func Any(ms ...Match) Match {
	return func(v string) bool {
		for _, m := range ms {
			if m(v) {
				return true
			}
		}
		return false
	}
}

// eq is a rule matching name exactly.
func eq(name string, code float64) Rule {
	return Rule{Name: name, Match: Equals(name), Code: code}
}

// AdmissionTypeRules encodes admission_type; ELECTIVE and anything unknown fall back to 3.
var AdmissionTypeRules = RuleTable{
	Field: "admission_type",
	Rules: []Rule{
		eq("NEWBORN", 0),
		eq("EMERGENCY", 1),
		eq("URGENT", 2),
	},
	Fallback: 3,
}

// InsuranceRules encodes the payer category.
var InsuranceRules = RuleTable{
	Field: "insurance",
	Rules: []Rule{
		eq("Private", 0),
		eq("Medicare", 1),
		eq("Medicaid", 2),
		eq("Government", 3),
		eq("Self Pay", 4),
	},
	Fallback: 5,
}

// GenderRules encodes M and F; unknown genders and missing patients take 2.
var GenderRules = RuleTable{
	Field: "gender",
	Rules: []Rule{
		eq("M", 0),
		eq("F", 1),
	},
	Fallback: 2,
}

// EthnicityRules groups ethnicity labels by prefix into six codes.
var EthnicityRules = RuleTable{
	Field: "ethnicity",
	Rules: []Rule{
		{Name: "white", Match: HasPrefix("WHITE", "EUROPEAN", "PORTUGUESE"), Code: 0},
		{Name: "black", Match: HasPrefix("BLACK", "AFRICAN"), Code: 1},
		{Name: "hispanic", Match: HasPrefix("HISPANIC", "LATINO"), Code: 2},
		{Name: "middle eastern", Match: Contains("MIDDLE EASTERN"), Code: 3},
		{Name: "asian", Match: Any(HasPrefix("ASIAN"), Contains("ASIAN - INDIAN")), Code: 4},
	},
	Fallback: 5,
}

// LanguageRules applies only when the admission is not a newborn; see Language.
var LanguageRules = RuleTable{
	Field: "language",
	Rules: []Rule{
		eq("ENGL", 1),
		{Name: "empty", Match: Equals(""), Code: 2},
	},
	Fallback: 3,
}

// MaritalStatusRules compares the marital status value itself, including the
// literal NEWBORN some exports carry there.
var MaritalStatusRules = RuleTable{
	Field: "marital_status",
	Rules: []Rule{
		eq("NEWBORN", 0),
		{Name: "empty or life partner", Match: Equals("", "LIFE PARTNER"), Code: 1},
		{Name: "unknown", Match: HasPrefix("UNKNOWN"), Code: 2},
		eq("MARRIED", 3),
		eq("DIVORCED", 4),
		eq("SINGLE", 5),
		eq("WIDOWED", 6),
		eq("SEPARATED", 7),
	},
	Fallback: 8,
}

// Tables lists every categorical rule table.
var Tables = []RuleTable{
	AdmissionTypeRules,
	InsuranceRules,
	GenderRules,
	EthnicityRules,
	LanguageRules,
	MaritalStatusRules,
}
