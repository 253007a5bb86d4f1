package document

import (
	"strconv"

	"github.com/chazu/nodal/pkg/graph"
)

// encoder collects the prototypes referenced while encoding a tree.
type encoder struct {
	names      map[*graph.Node]string
	used       map[string]bool
	prototypes []nodeJSON
}

func (e *encoder) node(n *graph.Node) nodeJSON {
	nj := nodeJSON{
		Name:          n.Name(),
		Prototype:     e.prototype(n.Prototype()),
		Description:   n.Description(),
		Image:         n.Image(),
		Function:      n.Function(),
		Handle:        n.Handle(),
		OutputType:    n.OutputType().String(),
		RenderedChild: n.RenderedChildName(),
		Connections:   n.Connections(),
	}
	if n.Position() != graph.ZeroPoint {
		nj.Position = n.Position().String()
	}
	if n.HasListOutputRange() {
		nj.OutputRange = graph.RangeList.String()
	}
	for _, p := range n.Inputs() {
		nj.Ports = append(nj.Ports, encodePort(p))
	}
	for _, c := range n.Children() {
		nj.Children = append(nj.Children, e.node(c))
	}
	return nj
}

// prototype returns the document name of p, encoding it on first use.
// Prototypes are listed after the prototypes they depend on.
func (e *encoder) prototype(p *graph.Node) string {
	if p == nil || p == graph.Root() {
		return ""
	}
	if name, ok := e.names[p]; ok {
		return name
	}
	pj := e.node(p)
	name := p.Name()
	for i := 2; e.used[name]; i++ {
		name = p.Name() + strconv.Itoa(i)
	}
	pj.Name = name
	e.names[p] = name
	e.used[name] = true
	e.prototypes = append(e.prototypes, pj)
	return name
}

func encodePort(p graph.Port) portJSON {
	pj := portJSON{
		Name:        p.Name(),
		Type:        p.Type().String(),
		Value:       p.ValueString(),
		Widget:      p.Widget().String(),
		Description: p.Description(),
		Publish:     p.ChildReference(),
		Menu:        p.MenuItems(),
	}
	if p.HasListRange() {
		pj.Range = graph.RangeList.String()
	}
	if p.Label() != p.Name() {
		pj.Label = p.Label()
	}
	if v, ok := p.Minimum(); ok {
		pj.Min = &v
	}
	if v, ok := p.Maximum(); ok {
		pj.Max = &v
	}
	return pj
}
