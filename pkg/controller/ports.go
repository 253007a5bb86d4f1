package controller

import (
	"fmt"
	"slices"

	"github.com/chazu/nodal/pkg/graph"
)

// AddPort adds an input port of type typ, with the type's default value and
// widget, to the node at path.
func (c *Controller) AddPort(path, name string, typ graph.PortType) error {
	return c.edit(func(t *tx) error {
		return t.update(path, func(n *graph.Node) (*graph.Node, error) {
			return n.WithInputAdded(graph.NewPort(name, typ))
		})
	})
}

// RemovePort removes a port from the named child of parentPath, dropping
// the connection feeding it first.
func (c *Controller) RemovePort(parentPath, nodeName, port string) error {
	return c.edit(func(t *tx) error {
		err := t.update(parentPath, set(func(parent *graph.Node) *graph.Node {
			return parent.DisconnectPort(nodeName, port)
		}))
		if err != nil {
			return err
		}
		return t.update(graph.JoinPath(parentPath, nodeName), func(n *graph.Node) (*graph.Node, error) {
			return n.WithInputRemoved(port)
		})
	})
}

// SetPortValue sets a port value, coercing it to the port's type.
func (c *Controller) SetPortValue(path, port string, v any) error {
	return c.edit(func(t *tx) error {
		return t.update(path, func(n *graph.Node) (*graph.Node, error) {
			return n.WithInputValue(port, v)
		})
	})
}

// SetPortValueString parses s in the port's text form ("12", "1.5",
// "10,20", "#ff0000ff") and sets it.
func (c *Controller) SetPortValueString(path, port, s string) error {
	return c.edit(func(t *tx) error {
		return t.updatePort(path, port, func(p graph.Port) (graph.Port, error) {
			return p.WithParsedValue(s)
		})
	})
}

// RevertToDefaultPortValue restores the value the node's prototype has for
// the port, or the type default if the prototype lacks the port.
func (c *Controller) RevertToDefaultPortValue(path, port string) error {
	return c.edit(func(t *tx) error {
		n, err := t.node(path)
		if err != nil {
			return err
		}
		if proto := n.Prototype(); proto != nil {
			if p, ok := proto.Input(port); ok {
				return t.update(path, func(n *graph.Node) (*graph.Node, error) {
					return n.WithInputValue(port, p.Value())
				})
			}
		}
		return t.updatePort(path, port, func(p graph.Port) (graph.Port, error) {
			return p.WithDefaultValue(), nil
		})
	})
}

func (c *Controller) SetPortWidget(path, port string, w graph.Widget) error {
	return c.edit(func(t *tx) error {
		return t.updatePort(path, port, func(p graph.Port) (graph.Port, error) { return p.WithWidget(w), nil })
	})
}

func (c *Controller) SetPortRange(path, port string, r graph.Range) error {
	return c.edit(func(t *tx) error {
		return t.updatePort(path, port, func(p graph.Port) (graph.Port, error) { return p.WithRange(r), nil })
	})
}

// SetPortMinimumValue sets or, with nil, clears the lower bound. The
// current value is clamped to the new bound.
func (c *Controller) SetPortMinimumValue(path, port string, min *float64) error {
	return c.edit(func(t *tx) error {
		return t.updatePort(path, port, func(p graph.Port) (graph.Port, error) { return p.WithMinimum(min), nil })
	})
}

// SetPortMaximumValue sets or, with nil, clears the upper bound.
func (c *Controller) SetPortMaximumValue(path, port string, max *float64) error {
	return c.edit(func(t *tx) error {
		return t.updatePort(path, port, func(p graph.Port) (graph.Port, error) { return p.WithMaximum(max), nil })
	})
}

// ---------------------------------------------------------------------------
// Menu items
// ---------------------------------------------------------------------------

func (c *Controller) AddPortMenuItem(path, port, key, label string) error {
	return c.editMenu(path, port, func(items []graph.MenuItem) ([]graph.MenuItem, error) {
		return append(items, graph.MenuItem{Key: key, Label: label}), nil
	})
}

// RemovePortMenuItem removes every menu item equal to item.
func (c *Controller) RemovePortMenuItem(path, port string, item graph.MenuItem) error {
	return c.editMenu(path, port, func(items []graph.MenuItem) ([]graph.MenuItem, error) {
		return slices.DeleteFunc(items, func(m graph.MenuItem) bool { return m == item }), nil
	})
}

// MovePortMenuItem swaps the item at index with its neighbour above (up)
// or below.
func (c *Controller) MovePortMenuItem(path, port string, index int, up bool) error {
	return c.editMenu(path, port, func(items []graph.MenuItem) ([]graph.MenuItem, error) {
		to := index + 1
		if up {
			to = index - 1
		}
		if index < 0 || index >= len(items) || to < 0 || to >= len(items) {
			return nil, fmt.Errorf("graph: port %s: cannot move menu item %d: %w", port, index, graph.ErrInvalidValue)
		}
		items[index], items[to] = items[to], items[index]
		return items, nil
	})
}

func (c *Controller) UpdatePortMenuItem(path, port string, index int, key, label string) error {
	return c.editMenu(path, port, func(items []graph.MenuItem) ([]graph.MenuItem, error) {
		if index < 0 || index >= len(items) {
			return nil, fmt.Errorf("graph: port %s: menu item %d: %w", port, index, graph.ErrInvalidValue)
		}
		items[index] = graph.MenuItem{Key: key, Label: label}
		return items, nil
	})
}

func (c *Controller) editMenu(path, port string, f func([]graph.MenuItem) ([]graph.MenuItem, error)) error {
	return c.edit(func(t *tx) error {
		return t.updatePort(path, port, func(p graph.Port) (graph.Port, error) {
			items, err := f(p.MenuItems())
			if err != nil {
				return graph.Port{}, err
			}
			return p.WithMenuItems(items), nil
		})
	})
}

// ---------------------------------------------------------------------------
// Published ports
// ---------------------------------------------------------------------------

// PublishPort exposes port of the named child as an input of the network
// at networkPath, under the name published.
func (c *Controller) PublishPort(networkPath, child, port, published string) error {
	return c.edit(func(t *tx) error {
		return t.update(networkPath, func(network *graph.Node) (*graph.Node, error) {
			return publish(network, child, port, published)
		})
	})
}

func publish(network *graph.Node, child, port, published string) (*graph.Node, error) {
	ch := network.Child(child)
	if ch == nil {
		return nil, fmt.Errorf("graph: node %s: child %s: %w", network.Name(), child, graph.ErrChildNotFound)
	}
	p, ok := ch.Input(port)
	if !ok {
		return nil, fmt.Errorf("graph: node %s: port %s: %w", child, port, graph.ErrPortNotFound)
	}
	return network.WithInputAdded(p.WithName(published).WithChildReference(child, port))
}

// UnpublishPort removes a published port from the network at networkPath,
// along with the connection feeding it from outside.
func (c *Controller) UnpublishPort(networkPath, published string) error {
	return c.edit(func(t *tx) error {
		network, err := t.node(networkPath)
		if err != nil {
			return err
		}
		p, ok := network.Input(published)
		if !ok {
			return fmt.Errorf("graph: node %s: port %s: %w", network.Name(), published, graph.ErrPortNotFound)
		}
		if !p.IsPublished() {
			return fmt.Errorf("graph: node %s: port %s is not published: %w", network.Name(), published, graph.ErrInvalidValue)
		}
		if parentPath, name, err := graph.ParentPath(networkPath); err == nil {
			err := t.update(parentPath, set(func(parent *graph.Node) *graph.Node {
				return parent.DisconnectPort(name, published)
			}))
			if err != nil {
				return err
			}
		}
		return t.update(networkPath, func(n *graph.Node) (*graph.Node, error) {
			return n.WithInputRemoved(published)
		})
	})
}
