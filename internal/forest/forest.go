// Package forest evaluates an ensemble of independently fitted decision trees
// by averaging their leaf predictions.
package forest

import (
	"errors"

	"github.com/gyeh/readmitrisk/internal/model"
)

// ErrEmptyForest is returned when a forest with no trees is built or scored.
var ErrEmptyForest = errors.New("forest has no trees")

// Forest is an immutable, ordered set of trees. It is safe for concurrent use.
type Forest struct {
	trees []Tree
	sha   string
}

// New returns a Forest over a copy of trees.
func New(trees []Tree) (*Forest, error) {
	if len(trees) == 0 {
		return nil, ErrEmptyForest
	}
	cp := make([]Tree, len(trees))
	copy(cp, trees)
	return &Forest{trees: cp}, nil
}

// NumTrees returns the number of trees.
func (f *Forest) NumTrees() int {
	if f == nil {
		return 0
	}
	return len(f.trees)
}

// SHA256 returns the digest of the file the forest was loaded from, if any.
func (f *Forest) SHA256() string {
	if f == nil {
		return ""
	}
	return f.sha
}

// Score evaluates every tree on x and returns the mean prediction. The result
// is not clamped to [0,1].
func (f *Forest) Score(x model.FeatureVector) (float64, error) {
	n := f.NumTrees()
	if n == 0 {
		return 0, ErrEmptyForest
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.Predict(x)
	}
	return sum / float64(n), nil
}

// MaxDepth returns the deepest DecisionTree in f. Other tree kinds count as
// depth 0.
func (f *Forest) MaxDepth() int {
	if f == nil {
		return 0
	}
	deepest := 0
	for _, t := range f.trees {
		if dt, ok := t.(*DecisionTree); ok && dt.Depth() > deepest {
			deepest = dt.Depth()
		}
	}
	return deepest
}
