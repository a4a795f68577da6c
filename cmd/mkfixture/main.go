// mkfixture writes a small synthetic record source and a sample forest.
// Admissions cycle through every categorical value the encoder knows, plus a
// few it does not, so each rule and fallback bucket is exercised.
// Usage: go run ./cmd/mkfixture --out testdata --admissions 200 --trees 25
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gyeh/readmitrisk/internal/forest"
	"github.com/gyeh/readmitrisk/internal/model"
	"github.com/gyeh/readmitrisk/internal/parquetread"
)

var (
	admissionTypes = []string{"NEWBORN", "EMERGENCY", "URGENT", "ELECTIVE"}
	insurances     = []string{"Private", "Medicare", "Medicaid", "Government", "Self Pay"}
	genders        = []string{"M", "F", "U"}
	ethnicities    = []string{
		"WHITE", "WHITE - RUSSIAN", "BLACK/AFRICAN AMERICAN", "HISPANIC OR LATINO",
		"MIDDLE EASTERN", "ASIAN - CHINESE", "AMERICAN INDIAN/ALASKA NATIVE", "UNKNOWN/NOT SPECIFIED",
	}
	languages       = []string{"ENGL", "", "SPAN", "RUSS"}
	maritalStatuses = []string{"", "LIFE PARTNER", "UNKNOWN (DEFAULT)", "MARRIED", "DIVORCED", "SINGLE", "WIDOWED", "SEPARATED"}
	drgTypes        = []string{"APR", "HCFA", "MS"}
)

const tsLayout = "2006-01-02 15:04:05"

func main() {
	out := flag.String("out", "testdata", "output directory")
	numAdmissions := flag.Int("admissions", 200, "number of admissions")
	numTrees := flag.Int("trees", 25, "number of trees in the sample forest")
	depth := flag.Int("depth", 3, "depth of each sample tree")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if *numAdmissions < 1 || *numTrees < 1 {
		fmt.Fprintln(os.Stderr, "--admissions and --trees must be positive")
		os.Exit(1)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}
	rng := rand.New(rand.NewSource(*seed))

	admissions, comorbidities, patients := records(rng, *numAdmissions)

	write(filepath.Join(*out, "admissions.parquet"), admissions)
	write(filepath.Join(*out, "comorbidities.parquet"), comorbidities)
	write(filepath.Join(*out, "patients.parquet"), patients)

	f, err := sampleForest(rng, *numTrees, *depth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build forest: %v\n", err)
		os.Exit(1)
	}
	forestPath := filepath.Join(*out, "forest.json")
	fw, err := os.Create(forestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create forest: %v\n", err)
		os.Exit(1)
	}
	if err := forest.Encode(fw, f); err != nil {
		fw.Close()
		fmt.Fprintf(os.Stderr, "write forest: %v\n", err)
		os.Exit(1)
	}
	if err := fw.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close forest: %v\n", err)
		os.Exit(1)
	}

	// Print summary
	fmt.Printf("Wrote %d admissions, %d comorbidities, %d patients to %s\n",
		len(admissions), len(comorbidities), len(patients), *out)
	fmt.Printf("Wrote forest with %d trees of depth %d to %s\n", f.NumTrees(), *depth, forestPath)
	fmt.Printf("Try: readmitrisk score --admissions %s --comorbidities %s --patients %s --forest %s --ids %d,%d\n",
		filepath.Join(*out, "admissions.parquet"), filepath.Join(*out, "comorbidities.parquet"),
		filepath.Join(*out, "patients.parquet"), forestPath, admissions[0].HadmID, admissions[len(admissions)-1].HadmID)
}

func write[T any](path string, rows []T) {
	if err := parquetread.WriteFile(path, rows); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		os.Exit(1)
	}
}

func pick(rng *rand.Rand, vals []string) string { return vals[rng.Intn(len(vals))] }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func records(rng *rand.Rand, n int) ([]model.AdmissionRow, []model.ComorbidityRow, []model.PatientRow) {
	var (
		admissions    []model.AdmissionRow
		comorbidities []model.ComorbidityRow
		patients      []model.PatientRow
	)
	// Dates are shifted into the 22nd century the way de-identified exports are.
	base := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < n; i++ {
		hadmID := int64(100000 + i)
		subjectID := int64(1 + i/2)
		admitTime := base.Add(time.Duration(rng.Intn(50*365*24)) * time.Hour)
		admType := admissionTypes[i%len(admissionTypes)]

		if i%2 == 0 {
			dob := admitTime.AddDate(-(18 + rng.Intn(70)), 0, -rng.Intn(365))
			switch {
			case admType == "NEWBORN":
				dob = admitTime
			case i%97 == 0:
				// Ages over 89 are shifted by roughly 300 years in the source data.
				dob = admitTime.AddDate(-300, 0, 0)
			}
			patients = append(patients, model.PatientRow{
				SubjectID: subjectID,
				Gender:    pick(rng, genders),
				DOB:       dob.Format(tsLayout),
			})
		}

		admissions = append(admissions, model.AdmissionRow{
			HadmID:        hadmID,
			SubjectID:     subjectID,
			AdmissionType: admType,
			Diagnosis:     optional(fmt.Sprintf("DIAGNOSIS %d", rng.Intn(40))),
			Insurance:     insurances[i%len(insurances)],
			Ethnicity:     ethnicities[i%len(ethnicities)],
			Language:      optional(pick(rng, languages)),
			MaritalStatus: optional(maritalStatuses[i%len(maritalStatuses)]),
			AdmitTime:     admitTime.Format(tsLayout),
			DischTime:     admitTime.Add(time.Duration(24+rng.Intn(20*24)) * time.Hour).Format(tsLayout),
		})

		for j := rng.Intn(4); j > 0; j-- {
			sev := float64(1 + rng.Intn(4))
			mort := float64(1 + rng.Intn(4))
			comorbidities = append(comorbidities, model.ComorbidityRow{
				HadmID:       hadmID,
				DRGType:      optional(pick(rng, drgTypes)),
				DRGCode:      optional(fmt.Sprintf("%d", 100+rng.Intn(900))),
				Description:  optional("SAMPLE DRG"),
				DRGSeverity:  &sev,
				DRGMortality: &mort,
			})
		}
	}
	return admissions, comorbidities, patients
}

// featureMax bounds the thresholds drawn for each feature.
var featureMax = [model.NumFeatures]float64{3, 5, 2, 5, 3, 8, 4, 4, 91}

func sampleForest(rng *rand.Rand, numTrees, depth int) (*forest.Forest, error) {
	trees := make([]forest.Tree, 0, numTrees)
	for i := 0; i < numTrees; i++ {
		var nodes []forest.Node
		grow(rng, &nodes, depth)
		t, err := forest.NewDecisionTree(nodes)
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
	return forest.New(trees)
}

// grow appends a complete subtree in pre-order and returns its root index.
func grow(rng *rand.Rand, nodes *[]forest.Node, depth int) int {
	idx := len(*nodes)
	if depth == 0 {
		*nodes = append(*nodes, forest.Node{Leaf: true, Value: rng.Float64()})
		return idx
	}
	feature := rng.Intn(model.NumFeatures)
	*nodes = append(*nodes, forest.Node{
		Feature:   feature,
		Threshold: float64(int(rng.Float64()*featureMax[feature]*2)) / 2,
	})
	left := grow(rng, nodes, depth-1)
	right := grow(rng, nodes, depth-1)
	(*nodes)[idx].Left = left
	(*nodes)[idx].Right = right
	return idx
}
