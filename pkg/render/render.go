// Package render runs renders off the caller's goroutine.
//
// A Scheduler keeps at most one render of a document in flight and
// coalesces requests made meanwhile, so an editor firing a request per
// keystroke only renders the latest state. Frames renders several frames
// of one snapshot in parallel.
package render

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chazu/nodal/pkg/eval"
	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/graph"
)

// Result is the outcome of one render.
type Result struct {
	ID      uuid.UUID
	Frame   float64
	Values  []any
	Err     error
	Elapsed time.Duration
}

// Once renders the node at path of lib at frame in a fresh context.
func Once(ctx context.Context, lib *graph.Library, repo function.Repository, path string, frame float64) Result {
	start := time.Now()
	values, err := eval.New(ctx, lib, repo, frame).RenderPath(path)
	return Result{
		ID:      uuid.New(),
		Frame:   frame,
		Values:  values,
		Err:     err,
		Elapsed: time.Since(start),
	}
}
