package score

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gyeh/readmitrisk/internal/forest"
	"github.com/gyeh/readmitrisk/internal/model"
)

// ScoreAll scores every vector against f using at most workers goroutines.
// Output order matches input order. Any error fails the whole batch.
func ScoreAll(ctx context.Context, f *forest.Forest, vectors []model.FeatureVector, workers int) ([]float64, error) {
	if f.NumTrees() == 0 {
		return nil, forest.ErrEmptyForest
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]float64, len(vectors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range vectors {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			risk, err := f.Score(vectors[i])
			if err != nil {
				return err
			}
			out[i] = risk
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
