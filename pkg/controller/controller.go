// Package controller provides path-addressed editing of a node library.
//
// Every mutator resolves nodes by absolute path ("/" is the root, "/a/b"
// is child b of child a), applies one or more immutable graph edits and
// writes the changed node back up to the root. The new snapshot replaces
// the current library only if every step succeeded, so a failed edit leaves
// the library untouched.
package controller

import (
	"fmt"
	"sync"

	"github.com/chazu/nodal/pkg/graph"
)

// Controller holds the current library snapshot. Edits are serialized;
// snapshots returned by Library are immutable and may be read freely.
type Controller struct {
	mu  sync.RWMutex
	lib *graph.Library
}

// New returns a controller editing lib.
func New(lib *graph.Library) *Controller {
	return &Controller{lib: lib}
}

// Library returns the current snapshot.
func (c *Controller) Library() *graph.Library {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lib
}

// SetLibrary replaces the current snapshot, e.g. for undo.
func (c *Controller) SetLibrary(lib *graph.Library) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lib = lib
}

// Node returns the node at path in the current snapshot.
func (c *Controller) Node(path string) (*graph.Node, error) {
	return c.Library().NodeForPath(path)
}

// edit runs fn in a transaction on the current root and commits the
// resulting root if fn succeeds.
func (c *Controller) edit(fn func(t *tx) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &tx{root: c.lib.Root()}
	if err := fn(t); err != nil {
		return fmt.Errorf("controller: %w", err)
	}
	c.lib = c.lib.WithRoot(t.root)
	return nil
}

// tx is an uncommitted root being edited.
type tx struct {
	root *graph.Node
}

func (t *tx) node(path string) (*graph.Node, error) {
	return graph.NodeForPath(t.root, path)
}

// replace puts n at path, rebuilding every ancestor up to the root.
func (t *tx) replace(path string, n *graph.Node) error {
	names, err := graph.SplitPath(path)
	if err != nil {
		return err
	}
	root, err := replaced(t.root, names, n)
	if err != nil {
		return err
	}
	t.root = root
	return nil
}

func replaced(parent *graph.Node, names []string, n *graph.Node) (*graph.Node, error) {
	if len(names) == 0 {
		return n, nil
	}
	child := parent.Child(names[0])
	if child == nil {
		return nil, fmt.Errorf("graph: node %s: child %s: %w", parent.Name(), names[0], graph.ErrChildNotFound)
	}
	newChild, err := replaced(child, names[1:], n)
	if err != nil {
		return nil, err
	}
	return parent.WithChildReplaced(names[0], newChild)
}

// update applies f to the node at path and writes the result back.
func (t *tx) update(path string, f func(n *graph.Node) (*graph.Node, error)) error {
	n, err := t.node(path)
	if err != nil {
		return err
	}
	n, err = f(n)
	if err != nil {
		return err
	}
	return t.replace(path, n)
}

// updatePort applies f to one input port of the node at path.
func (t *tx) updatePort(path, port string, f func(p graph.Port) (graph.Port, error)) error {
	return t.update(path, func(n *graph.Node) (*graph.Node, error) {
		p, ok := n.Input(port)
		if !ok {
			return nil, fmt.Errorf("graph: node %s: port %s: %w", n.Name(), port, graph.ErrPortNotFound)
		}
		p, err := f(p)
		if err != nil {
			return nil, err
		}
		return n.WithInputChanged(port, p)
	})
}

// set adapts an infallible node edit.
func set(f func(n *graph.Node) *graph.Node) func(*graph.Node) (*graph.Node, error) {
	return func(n *graph.Node) (*graph.Node, error) { return f(n), nil }
}

// ---------------------------------------------------------------------------
// Node attributes
// ---------------------------------------------------------------------------

func (c *Controller) SetNodePosition(path string, p graph.Point) error {
	return c.edit(func(t *tx) error {
		return t.update(path, set(func(n *graph.Node) *graph.Node { return n.WithPosition(p) }))
	})
}

func (c *Controller) SetNodeDescription(path, description string) error {
	return c.edit(func(t *tx) error {
		return t.update(path, set(func(n *graph.Node) *graph.Node { return n.WithDescription(description) }))
	})
}

func (c *Controller) SetNodeImage(path, image string) error {
	return c.edit(func(t *tx) error {
		return t.update(path, set(func(n *graph.Node) *graph.Node { return n.WithImage(image) }))
	})
}

func (c *Controller) SetNodeFunction(path, id string) error {
	return c.edit(func(t *tx) error {
		return t.update(path, set(func(n *graph.Node) *graph.Node { return n.WithFunction(id) }))
	})
}

func (c *Controller) SetNodeHandle(path, id string) error {
	return c.edit(func(t *tx) error {
		return t.update(path, set(func(n *graph.Node) *graph.Node { return n.WithHandle(id) }))
	})
}

func (c *Controller) SetNodeOutputType(path string, typ graph.PortType) error {
	return c.edit(func(t *tx) error {
		return t.update(path, set(func(n *graph.Node) *graph.Node { return n.WithOutputType(typ) }))
	})
}

func (c *Controller) SetNodeOutputRange(path string, r graph.Range) error {
	return c.edit(func(t *tx) error {
		return t.update(path, set(func(n *graph.Node) *graph.Node { return n.WithOutputRange(r) }))
	})
}

// SetRenderedChild selects the rendered child of the network at
// parentPath. An empty name clears it.
func (c *Controller) SetRenderedChild(parentPath, name string) error {
	return c.edit(func(t *tx) error {
		return t.update(parentPath, func(n *graph.Node) (*graph.Node, error) {
			return n.WithRenderedChildName(name)
		})
	})
}
