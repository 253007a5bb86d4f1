package document

import (
	"fmt"
	"strings"

	"github.com/chazu/nodal/pkg/graph"
)

type decoder struct {
	prototypes map[string]*graph.Node
}

// node builds a node through the graph's with methods, so every
// constraint they enforce applies to loaded documents too.
func (d *decoder) node(nj nodeJSON) (*graph.Node, error) {
	n, err := graph.Root().WithName(nj.Name)
	if err != nil {
		return nil, err
	}
	if nj.Prototype != "" {
		proto, ok := d.prototypes[nj.Prototype]
		if !ok {
			return nil, fmt.Errorf("node %s: %s: %w", nj.Name, nj.Prototype, ErrUnknownPrototype)
		}
		n = n.WithPrototype(proto)
	}
	n = n.WithDescription(nj.Description).
		WithImage(nj.Image).
		WithFunction(nj.Function).
		WithHandle(nj.Handle)

	if nj.Position != "" {
		p, err := graph.ParsePoint(nj.Position)
		if err != nil {
			return nil, fmt.Errorf("node %s: position: %w", nj.Name, err)
		}
		n = n.WithPosition(p)
	}
	if nj.OutputType != "" {
		n = n.WithOutputType(graph.ParsePortType(nj.OutputType))
	}
	r, err := graph.ParseRange(nj.OutputRange)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", nj.Name, err)
	}
	n = n.WithOutputRange(r)

	for _, pj := range nj.Ports {
		p, err := decodePort(pj)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nj.Name, err)
		}
		if n, err = n.WithInputAdded(p); err != nil {
			return nil, err
		}
	}
	for _, cj := range nj.Children {
		child, err := d.node(cj)
		if err != nil {
			return nil, err
		}
		if n, err = n.WithChildAdded(child); err != nil {
			return nil, err
		}
	}
	for _, conn := range nj.Connections {
		if n, err = n.WithConnectionAdded(conn); err != nil {
			return nil, err
		}
	}
	if nj.RenderedChild != "" {
		if n, err = n.WithRenderedChildName(nj.RenderedChild); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func decodePort(pj portJSON) (graph.Port, error) {
	p, err := graph.ParsePort(pj.Name, graph.ParsePortType(pj.Type), pj.Value)
	if err != nil {
		return graph.Port{}, err
	}
	r, err := graph.ParseRange(pj.Range)
	if err != nil {
		return graph.Port{}, fmt.Errorf("port %s: %w", pj.Name, err)
	}
	p = p.WithRange(r).
		WithLabel(pj.Label).
		WithDescription(pj.Description).
		WithMenuItems(pj.Menu).
		WithMinimum(pj.Min).
		WithMaximum(pj.Max)
	if pj.Widget != "" {
		w, err := graph.ParseWidget(pj.Widget)
		if err != nil {
			return graph.Port{}, fmt.Errorf("port %s: %w", pj.Name, err)
		}
		p = p.WithWidget(w)
	}
	if pj.Publish != "" {
		child, target, ok := strings.Cut(pj.Publish, ".")
		if !ok {
			return graph.Port{}, fmt.Errorf("port %s: published reference %q: %w", pj.Name, pj.Publish, graph.ErrInvalidValue)
		}
		p = p.WithChildReference(child, target)
	}
	return p, nil
}
