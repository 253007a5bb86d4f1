// Package eval renders node graphs.
//
// A NodeContext holds the state of one render pass: the results of every
// node rendered so far and the converted values delivered to each input
// port. Upstream nodes render before the nodes that consume them, each at
// most once per pass. A NodeContext is not safe for concurrent use; create
// one per render.
package eval

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/graph"
)

// nodePort addresses an input port of a child within one network.
type nodePort struct {
	node, port string
}

// NodeContext evaluates nodes of one library for one frame.
type NodeContext struct {
	ctx     context.Context
	library *graph.Library
	repo    function.Repository
	frame   float64
	logger  *log.Logger

	outputValues  map[*graph.Node][]any
	inputValues   map[nodePort][]any
	renderedNodes map[*graph.Node]bool
}

var _ function.Context = (*NodeContext)(nil)

// New returns a context rendering nodes of lib at frame, resolving node
// functions through repo. Cancelling ctx interrupts the render at the next
// loop boundary. The logger is taken from ctx.
func New(ctx context.Context, lib *graph.Library, repo function.Repository, frame float64) *NodeContext {
	return &NodeContext{
		ctx:           ctx,
		library:       lib,
		repo:          repo,
		frame:         frame,
		logger:        log.FromContext(ctx),
		outputValues:  make(map[*graph.Node][]any),
		inputValues:   make(map[nodePort][]any),
		renderedNodes: make(map[*graph.Node]bool),
	}
}

// Frame returns the frame being rendered.
func (c *NodeContext) Frame() float64 { return c.frame }

// Library returns the library being rendered.
func (c *NodeContext) Library() *graph.Library { return c.library }

// Results returns the cached result of node, if it was rendered.
func (c *NodeContext) Results(node *graph.Node) ([]any, bool) {
	v, ok := c.outputValues[node]
	return v, ok
}

// RenderPath resolves path in the library and renders that node after
// everything connected to it in its parent network. A network renders its
// rendered child.
func (c *NodeContext) RenderPath(path string) ([]any, error) {
	node, err := c.library.NodeForPath(path)
	if err != nil {
		return nil, err
	}
	if node == c.library.Root() {
		return c.RenderNode(node)
	}
	parentPath, _, err := graph.ParentPath(path)
	if err != nil {
		return nil, err
	}
	parent, err := c.library.NodeForPath(parentPath)
	if err != nil {
		return nil, err
	}
	return c.RenderChild(parent, node)
}

// RenderNetwork renders the rendered child of network. It returns nil if the
// network has none.
func (c *NodeContext) RenderNetwork(network *graph.Node) ([]any, error) {
	child := network.RenderedChild()
	if child == nil {
		return nil, nil
	}
	return c.RenderChild(network, child)
}

// RenderChild renders child after everything connected to its inputs in
// network. A child already rendered in this pass returns its cached result.
func (c *NodeContext) RenderChild(network, child *graph.Node) ([]any, error) {
	if !network.HasChild(child.Name()) {
		return nil, fmt.Errorf("eval: %s is not a child of %s: %w", child.Name(), network.Name(), graph.ErrChildNotFound)
	}
	values, _, err := c.renderChild(network, child)
	return values, err
}

// renderChild reports ok=false when child is being rendered further up the
// stack, which only happens if connections form a cycle.
func (c *NodeContext) renderChild(network, child *graph.Node) (values []any, ok bool, err error) {
	if values, ok := c.outputValues[child]; ok {
		return values, true, nil
	}
	if c.renderedNodes[child] {
		values, ok = c.outputValues[child]
		return values, ok, nil
	}
	c.renderedNodes[child] = true
	defer func() {
		if err != nil {
			delete(c.renderedNodes, child)
		}
	}()

	for _, conn := range network.Connections() {
		if conn.InputNode != child.Name() {
			continue
		}
		if err := c.checkInterrupted(child); err != nil {
			return nil, false, err
		}
		upstream := network.Child(conn.OutputNode)
		result, ok, err := c.renderChild(network, upstream)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		port, _ := child.Input(conn.InputPort)
		c.inputValues[nodePort{child.Name(), conn.InputPort}] = convert(result, port.Type())
	}

	values, err = c.RenderNode(child)
	if err != nil {
		return nil, false, err
	}
	return values, true, nil
}

// RenderNode invokes node's function over its inputs and caches the result.
// Inputs come from connections rendered by RenderChild, or else from the
// ports' own values. A network with a rendered child renders that child
// instead of its own function.
//
// RenderNode panics with an error wrapping ErrAlreadyRendered if node
// already has a result in this pass.
func (c *NodeContext) RenderNode(node *graph.Node) ([]any, error) {
	if _, done := c.outputValues[node]; done {
		panic(fmt.Errorf("eval: %s: %w", node, ErrAlreadyRendered))
	}
	start := time.Now()

	var (
		results []any
		err     error
	)
	if node.HasRenderedChild() {
		results, err = c.renderSubnetwork(node)
	} else {
		results, err = c.renderFunction(node)
	}
	if err != nil {
		return nil, err
	}

	c.outputValues[node] = results
	c.logger.Debug("rendered node", "node", node.Name(), "values", len(results), "elapsed", time.Since(start))
	return results, nil
}

// renderSubnetwork renders network in a fresh context, forwarding values
// connected to its published ports to the children they refer to.
func (c *NodeContext) renderSubnetwork(network *graph.Node) ([]any, error) {
	sub := New(c.ctx, c.library, c.repo, c.frame)
	sub.logger = c.logger
	for _, p := range network.PublishedInputs() {
		values, ok := c.inputValues[nodePort{network.Name(), p.Name()}]
		if !ok {
			continue
		}
		child, port, _ := p.PublishedTarget()
		sub.inputValues[nodePort{child, port}] = values
	}
	if _, err := sub.RenderNetwork(network); err != nil {
		return nil, err
	}
	results, _ := sub.Results(network.RenderedChild())
	return results, nil
}

func (c *NodeContext) renderFunction(node *graph.Node) ([]any, error) {
	fn, err := c.repo.Function(node.Function())
	if err != nil {
		return nil, &RenderError{Node: node, Err: err}
	}

	ports := node.Inputs()
	inputs := make([]input, len(ports))
	for i, p := range ports {
		switch {
		case p.Type().IsContext():
			inputs[i] = valueInput(c)
		default:
			if values, ok := c.inputValues[nodePort{node.Name(), p.Name()}]; ok {
				inputs[i] = listInput(values)
			} else {
				inputs[i] = valueInput(c.literal(p))
			}
		}
	}

	m := mapper{ctx: c.ctx, node: node, ports: ports, fn: fn}
	return m.mapValues(inputs)
}

// literal returns the port's own value, with relative file paths made
// absolute against the library's directory.
func (c *NodeContext) literal(p graph.Port) any {
	v := p.Value()
	path, ok := v.(string)
	if !p.IsFileWidget() || !ok || path == "" || filepath.IsAbs(path) || c.library.File() == "" {
		return v
	}
	joined := filepath.Join(c.library.BaseDir(), path)
	if abs, err := filepath.Abs(joined); err == nil {
		return abs
	}
	return joined
}

func (c *NodeContext) checkInterrupted(node *graph.Node) error {
	return checkInterrupted(c.ctx, node)
}

func checkInterrupted(ctx context.Context, node *graph.Node) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("eval: %s: %w: %w", node.Name(), ErrInterrupted, err)
	}
	return nil
}
