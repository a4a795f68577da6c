package forest

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gyeh/readmitrisk/internal/model"
)

// stump splits on age at 50: younger vectors score lo, older score hi.
func stump(lo, hi float64) *DecisionTree {
	t, err := NewDecisionTree([]Node{
		{Feature: model.FeatAge, Threshold: 50, Left: 1, Right: 2},
		{Leaf: true, Value: lo},
		{Leaf: true, Value: hi},
	})
	if err != nil {
		panic(err)
	}
	return t
}

func TestScore_ConstantTrees(t *testing.T) {
	for _, n := range []int{1, 2, 7, 100} {
		trees := make([]Tree, n)
		for i := range trees {
			trees[i] = Constant(0.3)
		}
		f, err := New(trees)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		got, err := f.Score(model.FeatureVector{})
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if math.Abs(got-0.3) > 1e-12 {
			t.Errorf("n=%d: got %v, want 0.3", n, got)
		}
	}
}

func TestScore_Mean(t *testing.T) {
	f, err := New([]Tree{Constant(0.2), Constant(0.4), Constant(0.6)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := f.Score(model.FeatureVector{})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// Summing 0.2+0.4+0.6 left to right lands one ulp above 0.4.
	if math.Abs(got-0.4) > 1e-12 {
		t.Errorf("got %v, want 0.4", got)
	}
}

func TestMaxDepth(t *testing.T) {
	deep, err := NewDecisionTree([]Node{
		{Feature: model.FeatAge, Threshold: 50, Left: 1, Right: 4},
		{Feature: model.FeatGender, Threshold: 0.5, Left: 2, Right: 3},
		{Leaf: true, Value: 0.1},
		{Leaf: true, Value: 0.2},
		{Leaf: true, Value: 0.9},
	})
	if err != nil {
		t.Fatalf("NewDecisionTree: %v", err)
	}
	f, err := New([]Tree{stump(0, 1), deep, Constant(0.5)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d := f.MaxDepth(); d != 2 {
		t.Errorf("MaxDepth: got %d, want 2", d)
	}
}

func TestScore_PermutationInvariant(t *testing.T) {
	vals := []float64{0.1, 0.25, 0.5, 0.75, 0.9}
	x := model.FeatureVector{1, 2, 1, 2, 3, 3, 2.5, 1.1, 47}

	var want float64
	for p := 0; p < len(vals); p++ {
		trees := make([]Tree, len(vals))
		for i := range vals {
			trees[i] = Constant(vals[(i+p)%len(vals)])
		}
		f, _ := New(trees)
		got, err := f.Score(x)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if p == 0 {
			want = got
			continue
		}
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("rotation %d: got %v, want %v", p, got, want)
		}
	}
}

func TestScore_NotClamped(t *testing.T) {
	f, _ := New([]Tree{Constant(1.5), Constant(2.5)})
	got, _ := f.Score(model.FeatureVector{})
	if got != 2 {
		t.Errorf("got %v, want 2", got)
	}
}

func TestNew_EmptyForest(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmptyForest) {
		t.Fatalf("expected ErrEmptyForest, got %v", err)
	}
}

func TestScore_ZeroValueForest(t *testing.T) {
	var f *Forest
	if _, err := f.Score(model.FeatureVector{}); !errors.Is(err, ErrEmptyForest) {
		t.Fatalf("nil forest: expected ErrEmptyForest, got %v", err)
	}
	if _, err := (&Forest{}).Score(model.FeatureVector{}); !errors.Is(err, ErrEmptyForest) {
		t.Fatalf("zero forest: expected ErrEmptyForest, got %v", err)
	}
	if f.NumTrees() != 0 || f.MaxDepth() != 0 || f.SHA256() != "" {
		t.Errorf("nil forest: trees=%d depth=%d sha=%q", f.NumTrees(), f.MaxDepth(), f.SHA256())
	}
}

func TestNew_CopiesTrees(t *testing.T) {
	trees := []Tree{Constant(1)}
	f, _ := New(trees)
	trees[0] = Constant(0)
	if got, _ := f.Score(model.FeatureVector{}); got != 1 {
		t.Errorf("forest should not see caller mutations, got %v", got)
	}
}

func TestDecisionTree_Predict(t *testing.T) {
	tree := stump(0.1, 0.8)
	young := model.FeatureVector{}
	young[model.FeatAge] = 50
	old := model.FeatureVector{}
	old[model.FeatAge] = 50.5

	if got := tree.Predict(young); got != 0.1 {
		t.Errorf("threshold is inclusive on the left: got %v", got)
	}
	if got := tree.Predict(old); got != 0.8 {
		t.Errorf("got %v, want 0.8", got)
	}
	if d := tree.Depth(); d != 1 {
		t.Errorf("Depth: got %d, want 1", d)
	}
}

func TestNewDecisionTree_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		nodes []Node
	}{
		{"empty", nil},
		{"feature out of range", []Node{{Feature: 9, Left: 1, Right: 2}, {Leaf: true}, {Leaf: true}}},
		{"negative feature", []Node{{Feature: -1, Left: 1, Right: 2}, {Leaf: true}, {Leaf: true}}},
		{"self loop", []Node{{Left: 0, Right: 1}, {Leaf: true}}},
		{"backward edge", []Node{{Left: 1, Right: 2}, {Left: 0, Right: 2}, {Leaf: true}}},
		{"child out of range", []Node{{Left: 1, Right: 5}, {Leaf: true}}},
	}
	for _, tt := range tests {
		if _, err := NewDecisionTree(tt.nodes); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

const forestJSON = `{
  "features": ["admission_type","insurance","gender","ethnicity","language","marital_status","avg_severity","avg_mortality","age"],
  "trees": [
    {"nodes": [{"feature": 8, "threshold": 50, "left": 1, "right": 2}, {"leaf": true, "value": 0}, {"leaf": true, "value": 1}]},
    {"nodes": [{"leaf": true, "value": 0.5}]}
  ]
}`

func TestDecode(t *testing.T) {
	f, err := Decode(strings.NewReader(forestJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.NumTrees() != 2 {
		t.Fatalf("NumTrees: got %d, want 2", f.NumTrees())
	}
	x := model.FeatureVector{}
	x[model.FeatAge] = 70
	got, _ := f.Score(x)
	if got != 0.75 {
		t.Errorf("Score: got %v, want 0.75", got)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := map[string]string{
		"no trees":        `{"trees": []}`,
		"bad json":        `{"trees": [`,
		"unknown field":   `{"trees": [{"nodes": [{"leaf": true}]}], "bias": 1}`,
		"feature order":   `{"features": ["age","insurance","gender","ethnicity","language","marital_status","avg_severity","avg_mortality","admission_type"], "trees": [{"nodes": [{"leaf": true}]}]}`,
		"feature count":   `{"features": ["age"], "trees": [{"nodes": [{"leaf": true}]}]}`,
		"invalid tree":    `{"trees": [{"nodes": [{"feature": 1, "left": 0, "right": 0}]}]}`,
	}
	for name, body := range tests {
		_, err := Decode(strings.NewReader(body))
		if err == nil {
			t.Errorf("%s: expected error", name)
		}
		if name == "no trees" && !errors.Is(err, ErrEmptyForest) {
			t.Errorf("no trees: expected ErrEmptyForest, got %v", err)
		}
	}
}

func TestDecode_FeatureNameErrors(t *testing.T) {
	tests := []struct {
		features string
		want     string
	}{
		{`["age","insurance","gender","ethnicity","language","marital_status","avg_severity","avg_mortality","admission_type"]`, `feature 0: forest expects "age", which the encoder produces at 8`},
		{`["admission_type","insurance","sex","ethnicity","language","marital_status","avg_severity","avg_mortality","age"]`, `feature 2: encoder does not produce "sex"`},
	}
	for _, tt := range tests {
		body := `{"features": ` + tt.features + `, "trees": [{"nodes": [{"leaf": true}]}]}`
		_, err := Decode(strings.NewReader(body))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("got %v, want error containing %q", err, tt.want)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f, err := New([]Tree{stump(0.2, 0.9), stump(0.4, 0.6)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	x := model.FeatureVector{}
	x[model.FeatAge] = 80
	a, _ := f.Score(x)
	b, _ := back.Score(x)
	if a != b {
		t.Errorf("scores differ after round trip: %v vs %v", a, b)
	}
}

func TestEncode_RejectsOpaqueTrees(t *testing.T) {
	f, _ := New([]Tree{Constant(1)})
	if err := Encode(&bytes.Buffer{}, f); err == nil {
		t.Fatal("expected error for non-serializable tree")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forest.json")
	if err := os.WriteFile(path, []byte(forestJSON), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := Load(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(f.SHA256()) != 64 {
		t.Errorf("expected hex sha256, got %q", f.SHA256())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/forest.json", zerolog.Nop()); err == nil {
		t.Fatal("expected error for missing file")
	}
}
