package forest

import (
	"fmt"

	"github.com/gyeh/readmitrisk/internal/model"
)

func featureNames() []string {
	out := make([]string, len(model.FeatureColumns))
	copy(out, model.FeatureColumns[:])
	return out
}

func checkFeatures(names []string) error {
	if len(names) == 0 {
		return nil
	}
	if len(names) != model.NumFeatures {
		return fmt.Errorf("forest expects %d features, encoder produces %d", len(names), model.NumFeatures)
	}
	for i, name := range names {
		if name == model.FeatureColumns[i] {
			continue
		}
		if at, ok := model.FeatureIndexByName(name); ok {
			return fmt.Errorf("feature %d: forest expects %q, which the encoder produces at %d", i, name, at)
		}
		return fmt.Errorf("feature %d: encoder does not produce %q", i, name)
	}
	return nil
}
