package controller

import (
	"fmt"
	"strings"

	"github.com/chazu/nodal/pkg/graph"
)

// pasteOffset is how far pasted nodes are moved from their originals.
var pasteOffset = graph.Point{X: 20, Y: 80}

// CreateNode adds a new node extending prototype under parentPath. The node
// is named after the prototype with the first free counter appended.
func (c *Controller) CreateNode(parentPath string, prototype *graph.Node) (*graph.Node, error) {
	var created *graph.Node
	err := c.edit(func(t *tx) error {
		parent, err := t.node(parentPath)
		if err != nil {
			return err
		}
		base := prototype.Extend()
		n, err := base.WithName(parent.UniqueName(base.Name()))
		if err != nil {
			return err
		}
		created, err = t.addNode(parentPath, n)
		return err
	})
	return created, err
}

// AddNode adds node as a child of parentPath. Its name must be free.
func (c *Controller) AddNode(parentPath string, node *graph.Node) (*graph.Node, error) {
	var added *graph.Node
	err := c.edit(func(t *tx) error {
		var err error
		added, err = t.addNode(parentPath, node)
		return err
	})
	return added, err
}

func (t *tx) addNode(parentPath string, node *graph.Node) (*graph.Node, error) {
	err := t.update(parentPath, func(parent *graph.Node) (*graph.Node, error) {
		return parent.WithChildAdded(node)
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// RemoveNode removes the named child of parentPath along with its
// connections.
func (c *Controller) RemoveNode(parentPath, name string) error {
	return c.edit(func(t *tx) error {
		return t.update(parentPath, func(parent *graph.Node) (*graph.Node, error) {
			return parent.WithChildRemoved(name)
		})
	})
}

// RenameNode renames a child of parentPath and rewires every connection,
// the rendered child and any published port that referred to the old name.
func (c *Controller) RenameNode(parentPath, oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	return c.edit(func(t *tx) error {
		return t.update(parentPath, func(parent *graph.Node) (*graph.Node, error) {
			return renamed(parent, oldName, newName)
		})
	})
}

func renamed(parent *graph.Node, oldName, newName string) (*graph.Node, error) {
	child := parent.Child(oldName)
	if child == nil {
		return nil, fmt.Errorf("graph: node %s: child %s: %w", parent.Name(), oldName, graph.ErrChildNotFound)
	}
	if parent.HasChild(newName) {
		return nil, fmt.Errorf("graph: node %s: child %s: %w", parent.Name(), newName, graph.ErrDuplicateChild)
	}
	child, err := child.WithName(newName)
	if err != nil {
		return nil, err
	}
	conns := parent.Connections()
	wasRendered := parent.RenderedChildName() == oldName

	p, err := parent.WithChildRemoved(oldName)
	if err != nil {
		return nil, err
	}
	if p, err = p.WithChildAdded(child); err != nil {
		return nil, err
	}
	if wasRendered {
		if p, err = p.WithRenderedChildName(newName); err != nil {
			return nil, err
		}
	}
	rename := func(s string) string {
		if s == oldName {
			return newName
		}
		return s
	}
	for _, conn := range conns {
		if !conn.Touches(oldName) {
			continue
		}
		if p, err = p.Connect(rename(conn.OutputNode), rename(conn.InputNode), conn.InputPort); err != nil {
			return nil, err
		}
	}
	for _, port := range p.PublishedInputs() {
		target, name, _ := port.PublishedTarget()
		if target != oldName {
			continue
		}
		if p, err = p.WithInputChanged(port.Name(), port.WithChildReference(newName, name)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Connect wires output's result into input's port inside the network at
// parentPath. A connection that would close a cycle fails with
// graph.ErrCycle.
func (c *Controller) Connect(parentPath, output, input, port string) error {
	return c.edit(func(t *tx) error {
		return t.update(parentPath, func(parent *graph.Node) (*graph.Node, error) {
			p, err := parent.Connect(output, input, port)
			if err != nil {
				return nil, err
			}
			if graph.HasCycles(p.Connections()) {
				return nil, fmt.Errorf("graph: node %s: %s -> %s.%s: %w", parent.Name(), output, input, port, graph.ErrCycle)
			}
			return p, nil
		})
	})
}

// Disconnect removes conn from the network at parentPath.
func (c *Controller) Disconnect(parentPath string, conn graph.Connection) error {
	return c.edit(func(t *tx) error {
		return t.update(parentPath, func(parent *graph.Node) (*graph.Node, error) {
			return parent.Disconnect(conn)
		})
	})
}

// PasteNodes copies nodes, children of from, into parentPath. Copies are
// moved by (20, 80) and renamed if their name is taken. Connections of from
// between copied nodes, or from an existing node of the target into a
// copied node, are recreated. The copies are returned in order.
func (c *Controller) PasteNodes(parentPath string, from *graph.Node, nodes []*graph.Node) ([]*graph.Node, error) {
	var pasted []*graph.Node
	err := c.edit(func(t *tx) error {
		pasted = nil
		newNames := make(map[string]string, len(nodes))
		for _, n := range nodes {
			parent, err := t.node(parentPath)
			if err != nil {
				return err
			}
			name := n.Name()
			if parent.HasChild(name) {
				name = parent.UniqueName(namePrefix(name))
			}
			moved, err := n.WithPosition(n.Position().Moved(pasteOffset.X, pasteOffset.Y)).WithName(name)
			if err != nil {
				return err
			}
			if _, err := t.addNode(parentPath, moved); err != nil {
				return err
			}
			pasted = append(pasted, moved)
			newNames[n.Name()] = name
		}

		return t.update(parentPath, func(parent *graph.Node) (*graph.Node, error) {
			p := parent
			for _, conn := range from.Connections() {
				input, ok := newNames[conn.InputNode]
				if !ok {
					continue
				}
				output, ok := newNames[conn.OutputNode]
				if !ok {
					output = conn.OutputNode
				}
				if !p.HasChild(output) {
					continue
				}
				var err error
				if p, err = p.Connect(output, input, conn.InputPort); err != nil {
					return nil, err
				}
			}
			return p, nil
		})
	})
	return pasted, err
}

// namePrefix strips a trailing counter, so a copy of "rect3" is named
// "rectN" rather than "rect3N".
func namePrefix(name string) string {
	if p := strings.TrimRight(name, "0123456789"); p != "" {
		return p
	}
	return name
}
