package eval

import (
	"errors"
	"fmt"

	"github.com/chazu/nodal/pkg/graph"
)

var (
	// ErrInterrupted is returned when the render's context is cancelled. It
	// is not a RenderError: no node failed, the pass was abandoned.
	ErrInterrupted = errors.New("render interrupted")

	// ErrAlreadyRendered is the panic value (wrapped) raised when RenderNode
	// is asked to render a node that already has a result in this pass.
	ErrAlreadyRendered = errors.New("node already rendered")
)

// RenderError reports a node whose function failed. It aborts the whole
// render pass.
type RenderError struct {
	Node *graph.Node
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("eval: node %s: %v", e.Node.Name(), e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
