package forest

import (
	"fmt"

	"github.com/gyeh/readmitrisk/internal/model"
)

// Tree maps a feature vector to a leaf prediction. Implementations must be
// safe for concurrent use and must not retain the vector.
type Tree interface {
	Predict(x model.FeatureVector) float64
}

// Node is one entry of a DecisionTree's flat node list. A split node sends
// vectors with x[Feature] <= Threshold to Left and all others to Right.
type Node struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
}

// DecisionTree is a binary threshold-split tree stored as a flat node list
// rooted at index 0.
type DecisionTree struct {
	Nodes []Node `json:"nodes"`
}

// NewDecisionTree validates nodes and returns the tree. Children must point
// strictly forward, which rules out cycles and bounds traversal by len(nodes).
func NewDecisionTree(nodes []Node) (*DecisionTree, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("tree has no nodes")
	}
	for i, n := range nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= model.NumFeatures {
			return nil, fmt.Errorf("node %d: feature index %d out of range [0,%d)", i, n.Feature, model.NumFeatures)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(nodes) {
				return nil, fmt.Errorf("node %d: child %d must be in (%d,%d)", i, child, i, len(nodes))
			}
		}
	}
	return &DecisionTree{Nodes: nodes}, nil
}

// Predict walks from the root to a leaf and returns the leaf value.
func (t *DecisionTree) Predict(x model.FeatureVector) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Depth returns the number of split nodes on the longest root-to-leaf path.
func (t *DecisionTree) Depth() int {
	depth := make([]int, len(t.Nodes))
	deepest := 0
	for i, n := range t.Nodes {
		if n.Leaf {
			if depth[i] > deepest {
				deepest = depth[i]
			}
			continue
		}
		for _, child := range []int{n.Left, n.Right} {
			if depth[i]+1 > depth[child] {
				depth[child] = depth[i] + 1
			}
		}
	}
	return deepest
}

// Constant is a tree that predicts the same value for every vector.
type Constant float64

func (c Constant) Predict(model.FeatureVector) float64 { return float64(c) }

// TreeFunc adapts a plain function to the Tree interface.
type TreeFunc func(x model.FeatureVector) float64

func (f TreeFunc) Predict(x model.FeatureVector) float64 { return f(x) }
