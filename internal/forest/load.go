package forest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/gyeh/readmitrisk/internal/normalize"
)

// File is the on-disk JSON layout of a forest.
type File struct {
	Features []string       `json:"features,omitempty"`
	Trees    []DecisionTree `json:"trees"`
}

// Load reads a forest JSON file, validates every tree, and records the file digest.
func Load(path string, log zerolog.Logger) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forest: %w", err)
	}
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("forest %s: %w", path, err)
	}
	digest, err := normalize.ReaderDigest(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	f.sha = digest.SHA256

	log.Info().
		Str("path", path).
		Str("sha256", f.sha).
		Int("trees", f.NumTrees()).
		Int("max_depth", f.MaxDepth()).
		Msg("forest loaded")
	return f, nil
}

// Decode parses a forest from r. When the file names its features they must
// match the encoder's column order exactly.
func Decode(r io.Reader) (*Forest, error) {
	var file File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode forest: %w", err)
	}
	if err := checkFeatures(file.Features); err != nil {
		return nil, err
	}

	trees := make([]Tree, 0, len(file.Trees))
	for i, dt := range file.Trees {
		t, err := NewDecisionTree(dt.Nodes)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees = append(trees, t)
	}
	return New(trees)
}

// Encode writes f's decision trees as a forest file. Trees that are not
// *DecisionTree cannot be serialized.
func Encode(w io.Writer, f *Forest) error {
	file := File{Features: featureNames()}
	for i, t := range f.trees {
		dt, ok := t.(*DecisionTree)
		if !ok {
			return fmt.Errorf("tree %d: %T is not serializable", i, t)
		}
		file.Trees = append(file.Trees, *dt)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(file)
}
