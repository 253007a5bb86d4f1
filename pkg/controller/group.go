package controller

import (
	"fmt"
	"strconv"

	"github.com/chazu/nodal/pkg/graph"
)

// GroupIntoNetwork moves the named children of parentPath into a new
// network node and returns it.
//
// Connections between grouped nodes move into the network. A connection
// from outside into a grouped node is routed through a published port of
// the network. The grouped node whose output leaves the group becomes the
// network's rendered child and its outgoing connections start from the
// network instead; outgoing connections of other grouped nodes are
// dropped. If the parent rendered a grouped node, it renders the network.
func (c *Controller) GroupIntoNetwork(parentPath string, names []string, networkName string) (*graph.Node, error) {
	var network *graph.Node
	err := c.edit(func(t *tx) error {
		return t.update(parentPath, func(parent *graph.Node) (*graph.Node, error) {
			var (
				p   *graph.Node
				err error
			)
			p, network, err = grouped(parent, names, networkName)
			return p, err
		})
	})
	return network, err
}

func grouped(parent *graph.Node, names []string, networkName string) (*graph.Node, *graph.Node, error) {
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("graph: node %s: nothing to group: %w", parent.Name(), graph.ErrInvalidValue)
	}
	inGroup := make(map[string]bool, len(names))
	for _, name := range names {
		if inGroup[name] {
			return nil, nil, fmt.Errorf("graph: node %s: %s listed twice: %w", parent.Name(), name, graph.ErrInvalidValue)
		}
		if !parent.HasChild(name) {
			return nil, nil, fmt.Errorf("graph: node %s: child %s: %w", parent.Name(), name, graph.ErrChildNotFound)
		}
		inGroup[name] = true
	}

	if networkName == "" {
		networkName = "network"
	}
	if parent.HasChild(networkName) && !inGroup[networkName] {
		networkName = parent.UniqueName(namePrefix(networkName))
	}
	net, err := graph.Root().Extend().WithName(networkName)
	if err != nil {
		return nil, nil, err
	}
	net = net.WithPosition(parent.Child(names[0]).Position())
	for _, child := range parent.Children() {
		if !inGroup[child.Name()] {
			continue
		}
		if net, err = net.WithChildAdded(child); err != nil {
			return nil, nil, err
		}
	}

	var incoming, outgoing []graph.Connection
	for _, conn := range parent.Connections() {
		in, out := inGroup[conn.InputNode], inGroup[conn.OutputNode]
		switch {
		case in && out:
			if net, err = net.WithConnectionAdded(conn); err != nil {
				return nil, nil, err
			}
		case in:
			incoming = append(incoming, conn)
		case out:
			outgoing = append(outgoing, conn)
		}
	}

	rendered := renderedCandidate(parent, names, inGroup, outgoing)
	if net, err = net.WithRenderedChildName(rendered); err != nil {
		return nil, nil, err
	}
	renderedNode := net.Child(rendered)
	net = net.WithOutputType(renderedNode.OutputType()).WithOutputRange(renderedNode.OutputRange())

	published := make([]string, len(incoming))
	for i, conn := range incoming {
		name := conn.InputPort
		for n := 1; net.HasInput(name); n++ {
			name = conn.InputNode + "_" + conn.InputPort
			if n > 1 {
				name += strconv.Itoa(n)
			}
		}
		if net, err = publish(net, conn.InputNode, conn.InputPort, name); err != nil {
			return nil, nil, err
		}
		published[i] = name
	}

	p := parent
	for _, name := range names {
		if p, err = p.WithChildRemoved(name); err != nil {
			return nil, nil, err
		}
	}
	if p, err = p.WithChildAdded(net); err != nil {
		return nil, nil, err
	}
	for i, conn := range incoming {
		if p, err = p.Connect(conn.OutputNode, net.Name(), published[i]); err != nil {
			return nil, nil, err
		}
	}
	for _, conn := range outgoing {
		if conn.OutputNode != rendered {
			continue
		}
		if p, err = p.Connect(net.Name(), conn.InputNode, conn.InputPort); err != nil {
			return nil, nil, err
		}
	}
	if inGroup[parent.RenderedChildName()] {
		if p, err = p.WithRenderedChildName(net.Name()); err != nil {
			return nil, nil, err
		}
	}
	return p, net, nil
}

// renderedCandidate picks the grouped node feeding the outside, else the
// parent's rendered child if grouped, else the last named node.
func renderedCandidate(parent *graph.Node, names []string, inGroup map[string]bool, outgoing []graph.Connection) string {
	if len(outgoing) > 0 {
		return outgoing[0].OutputNode
	}
	if inGroup[parent.RenderedChildName()] {
		return parent.RenderedChildName()
	}
	return names[len(names)-1]
}
