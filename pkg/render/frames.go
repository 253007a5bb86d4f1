package render

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/nodal/pkg/eval"
	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/graph"
)

// Frames renders the node at path of lib once per frame, running up to
// workers renders at a time (all CPUs if workers <= 0). Each frame gets its
// own NodeContext. The first failure cancels the remaining frames and is
// returned. Results are in the order of frames.
func Frames(ctx context.Context, lib *graph.Library, repo function.Repository, path string, frames []float64, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := log.FromContext(ctx)

	results := make([]Result, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, frame := range frames {
		g.Go(func() error {
			start := time.Now()
			values, err := eval.New(ctx, lib, repo, frame).RenderPath(path)
			if err != nil {
				return fmt.Errorf("render: frame %g: %w", frame, err)
			}
			results[i] = Result{ID: uuid.New(), Frame: frame, Values: values, Elapsed: time.Since(start)}
			logger.Debug("frame rendered", "frame", frame, "values", len(values), "elapsed", results[i].Elapsed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FrameRange returns the frames from first to last inclusive, one apart.
func FrameRange(first, last float64) []float64 {
	var frames []float64
	for f := first; f <= last; f++ {
		frames = append(frames, f)
	}
	return frames
}
