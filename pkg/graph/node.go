package graph

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// RootName is the reserved name of the sentinel returned by Root.
const RootName = "_root"

var nameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,29}$`)

// ValidateName checks a node name: a letter or underscore followed by up to
// 29 letters, digits or underscores, not starting with "__" and not the
// reserved root name.
func ValidateName(name string) error {
	switch {
	case name == RootName:
		return fmt.Errorf("graph: name %q is reserved: %w", name, ErrInvalidName)
	case strings.HasPrefix(name, "__"):
		return fmt.Errorf("graph: name %q starts with \"__\": %w", name, ErrInvalidName)
	case !nameRe.MatchString(name):
		return fmt.Errorf("graph: name %q: %w", name, ErrInvalidName)
	}
	return nil
}

// Node is an immutable description of a computation. A node with children
// is a network; rendering a network renders its rendered child.
//
// Nodes are shared freely between snapshots. Never modify one in place; use
// the With methods, which return a new node.
type Node struct {
	prototype         *Node
	name              string
	description       string
	image             string
	function          string
	position          Point
	inputs            []Port
	outputType        PortType
	outputRange       Range
	children          []*Node
	renderedChildName string
	connections       []Connection
	handle            string
}

var root = sync.OnceValue(func() *Node {
	return &Node{
		name:       RootName,
		function:   "core/zero",
		outputType: FloatType,
	}
})

// Root returns the sentinel every node ultimately extends. It has no
// prototype. Deriving anything from it yields a node named "node" whose
// prototype is the sentinel.
func Root() *Node { return root() }

// Must panics if err is non-nil and otherwise returns n. It is meant for
// building fixed graphs in code and tests.
func Must(n *Node, err error) *Node {
	if err != nil {
		panic(err)
	}
	return n
}

// with copies n, applies update to the copy and returns it.
func (n *Node) with(update func(c *Node)) *Node {
	c := *n
	if n == Root() {
		c.prototype = n
		c.name = "node"
	}
	update(&c)
	return &c
}

// Extend returns a copy of n whose prototype is n.
func (n *Node) Extend() *Node {
	c := *n
	c.prototype = n
	if n == Root() {
		c.name = "node"
	}
	return &c
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (n *Node) Prototype() *Node          { return n.prototype }
func (n *Node) Name() string              { return n.name }
func (n *Node) Description() string       { return n.description }
func (n *Node) Image() string             { return n.image }
func (n *Node) Function() string          { return n.function }
func (n *Node) Position() Point           { return n.position }
func (n *Node) OutputType() PortType      { return n.outputType }
func (n *Node) OutputRange() Range        { return n.outputRange }
func (n *Node) Handle() string            { return n.handle }
func (n *Node) HasHandle() bool           { return n.handle != "" }
func (n *Node) HasChildren() bool         { return len(n.children) > 0 }
func (n *Node) RenderedChildName() string { return n.renderedChildName }

// HasListOutputRange reports whether the node produces a list per invocation.
func (n *Node) HasListOutputRange() bool { return n.outputRange == RangeList }

// HasValueOutputRange reports whether the node produces one value per invocation.
func (n *Node) HasValueOutputRange() bool { return n.outputRange == RangeValue }

// Inputs returns the input ports in declaration order.
func (n *Node) Inputs() []Port { return slices.Clone(n.inputs) }

// Input returns the named input port.
func (n *Node) Input(name string) (Port, bool) {
	i := n.inputIndex(name)
	if i < 0 {
		return Port{}, false
	}
	return n.inputs[i], true
}

// HasInput reports whether the node declares the named port.
func (n *Node) HasInput(name string) bool { return n.inputIndex(name) >= 0 }

func (n *Node) inputIndex(name string) int {
	return slices.IndexFunc(n.inputs, func(p Port) bool { return p.name == name })
}

// HasListInputs reports whether any input port has list range.
func (n *Node) HasListInputs() bool {
	return slices.ContainsFunc(n.inputs, Port.HasListRange)
}

// PublishedInputs returns the ports that forward to a child's port.
func (n *Node) PublishedInputs() []Port {
	var out []Port
	for _, p := range n.inputs {
		if p.IsPublished() {
			out = append(out, p)
		}
	}
	return out
}

// Children returns the child nodes in order.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Child returns the named child, or nil.
func (n *Node) Child(name string) *Node {
	if i := n.childIndex(name); i >= 0 {
		return n.children[i]
	}
	return nil
}

// HasChild reports whether a child with the given name exists.
func (n *Node) HasChild(name string) bool { return n.childIndex(name) >= 0 }

func (n *Node) childIndex(name string) int {
	return slices.IndexFunc(n.children, func(c *Node) bool { return c.name == name })
}

// RenderedChild returns the child rendered in place of this network, or nil.
func (n *Node) RenderedChild() *Node {
	if n.renderedChildName == "" {
		return nil
	}
	return n.Child(n.renderedChildName)
}

// HasRenderedChild reports whether the rendered child is set and exists.
func (n *Node) HasRenderedChild() bool { return n.RenderedChild() != nil }

// Connections returns the connections among the children.
func (n *Node) Connections() []Connection { return slices.Clone(n.connections) }

// ConnectionTo returns the connection feeding the given child port.
func (n *Node) ConnectionTo(node, port string) (Connection, bool) {
	i := slices.IndexFunc(n.connections, func(c Connection) bool {
		return c.InputNode == node && c.InputPort == port
	})
	if i < 0 {
		return Connection{}, false
	}
	return n.connections[i], true
}

// ConnectionsFor returns the connections that touch the named child.
func (n *Node) ConnectionsFor(name string) []Connection {
	var out []Connection
	for _, c := range n.connections {
		if c.Touches(name) {
			out = append(out, c)
		}
	}
	return out
}

// IsConnected reports whether the named child takes part in any connection.
func (n *Node) IsConnected(name string) bool {
	return slices.ContainsFunc(n.connections, func(c Connection) bool { return c.Touches(name) })
}

// UniqueName returns prefix followed by the smallest counter, starting at
// 1, that no child uses yet.
func (n *Node) UniqueName(prefix string) string {
	for i := 1; ; i++ {
		name := prefix + strconv.Itoa(i)
		if !n.HasChild(name) {
			return name
		}
	}
}

// Equal reports whether n and o describe the same node. Prototypes are
// compared by identity, children recursively.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	return n.prototype == o.prototype &&
		n.name == o.name &&
		n.description == o.description &&
		n.image == o.image &&
		n.function == o.function &&
		n.position == o.position &&
		n.outputType == o.outputType &&
		n.outputRange == o.outputRange &&
		n.renderedChildName == o.renderedChildName &&
		n.handle == o.handle &&
		slices.EqualFunc(n.inputs, o.inputs, Port.Equal) &&
		slices.EqualFunc(n.children, o.children, (*Node).Equal) &&
		slices.Equal(n.connections, o.connections)
}

func (n *Node) String() string {
	return "<Node " + n.name + ":" + n.function + ">"
}

// ---------------------------------------------------------------------------
// Attribute with methods
// ---------------------------------------------------------------------------

// WithName returns a copy with a new name.
func (n *Node) WithName(name string) (*Node, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return n.with(func(c *Node) { c.name = name }), nil
}

func (n *Node) WithPrototype(p *Node) *Node {
	return n.with(func(c *Node) { c.prototype = p })
}

func (n *Node) WithDescription(d string) *Node {
	return n.with(func(c *Node) { c.description = d })
}

func (n *Node) WithImage(image string) *Node {
	return n.with(func(c *Node) { c.image = image })
}

func (n *Node) WithFunction(id string) *Node {
	return n.with(func(c *Node) { c.function = id })
}

func (n *Node) WithPosition(p Point) *Node {
	return n.with(func(c *Node) { c.position = p })
}

func (n *Node) WithOutputType(t PortType) *Node {
	return n.with(func(c *Node) { c.outputType = t })
}

func (n *Node) WithOutputRange(r Range) *Node {
	return n.with(func(c *Node) { c.outputRange = r })
}

// WithHandle sets the handle function identifier. An empty id removes it.
func (n *Node) WithHandle(id string) *Node {
	return n.with(func(c *Node) { c.handle = id })
}

// ---------------------------------------------------------------------------
// Input with methods
// ---------------------------------------------------------------------------

// WithInputAdded appends a port.
func (n *Node) WithInputAdded(p Port) (*Node, error) {
	if p.name == "" {
		return nil, fmt.Errorf("graph: node %s: empty port name: %w", n.name, ErrInvalidValue)
	}
	if n.HasInput(p.name) {
		return nil, fmt.Errorf("graph: node %s: port %s: %w", n.name, p.name, ErrDuplicatePort)
	}
	return n.with(func(c *Node) { c.inputs = append(slices.Clip(n.inputs), p) }), nil
}

// WithInputRemoved removes the named port.
func (n *Node) WithInputRemoved(name string) (*Node, error) {
	i := n.inputIndex(name)
	if i < 0 {
		return nil, fmt.Errorf("graph: node %s: port %s: %w", n.name, name, ErrPortNotFound)
	}
	return n.with(func(c *Node) { c.inputs = slices.Delete(slices.Clone(n.inputs), i, i+1) }), nil
}

// WithInputChanged replaces the named port with p, keeping its position.
func (n *Node) WithInputChanged(name string, p Port) (*Node, error) {
	i := n.inputIndex(name)
	if i < 0 {
		return nil, fmt.Errorf("graph: node %s: port %s: %w", n.name, name, ErrPortNotFound)
	}
	if p.name != name && n.HasInput(p.name) {
		return nil, fmt.Errorf("graph: node %s: port %s: %w", n.name, p.name, ErrDuplicatePort)
	}
	return n.with(func(c *Node) {
		c.inputs = slices.Clone(n.inputs)
		c.inputs[i] = p
	}), nil
}

// WithInputValue sets the value of the named port.
func (n *Node) WithInputValue(name string, v any) (*Node, error) {
	p, ok := n.Input(name)
	if !ok {
		return nil, fmt.Errorf("graph: node %s: port %s: %w", n.name, name, ErrPortNotFound)
	}
	p, err := p.WithValue(v)
	if err != nil {
		return nil, fmt.Errorf("graph: node %s: %w", n.name, err)
	}
	return n.WithInputChanged(name, p)
}

// WithInputRange sets the range of the named port.
func (n *Node) WithInputRange(name string, r Range) (*Node, error) {
	p, ok := n.Input(name)
	if !ok {
		return nil, fmt.Errorf("graph: node %s: port %s: %w", n.name, name, ErrPortNotFound)
	}
	return n.WithInputChanged(name, p.WithRange(r))
}

// ---------------------------------------------------------------------------
// Child with methods
// ---------------------------------------------------------------------------

// WithChildAdded appends child. Its name must be free.
func (n *Node) WithChildAdded(child *Node) (*Node, error) {
	if err := ValidateName(child.name); err != nil {
		return nil, err
	}
	if n.HasChild(child.name) {
		return nil, fmt.Errorf("graph: node %s: child %s: %w", n.name, child.name, ErrDuplicateChild)
	}
	return n.with(func(c *Node) { c.children = append(slices.Clip(n.children), child) }), nil
}

// WithChildRemoved removes the named child together with every connection
// touching it. If it was the rendered child, the network no longer has one.
func (n *Node) WithChildRemoved(name string) (*Node, error) {
	i := n.childIndex(name)
	if i < 0 {
		return nil, fmt.Errorf("graph: node %s: child %s: %w", n.name, name, ErrChildNotFound)
	}
	return n.with(func(c *Node) {
		c.children = slices.Delete(slices.Clone(n.children), i, i+1)
		c.connections = withoutConnections(n.connections, func(conn Connection) bool { return conn.Touches(name) })
		if c.renderedChildName == name {
			c.renderedChildName = ""
		}
	}), nil
}

// WithChildReplaced swaps the named child for child, which must keep the name.
func (n *Node) WithChildReplaced(name string, child *Node) (*Node, error) {
	i := n.childIndex(name)
	if i < 0 {
		return nil, fmt.Errorf("graph: node %s: child %s: %w", n.name, name, ErrChildNotFound)
	}
	if child.name != name {
		return nil, fmt.Errorf("graph: node %s: replacing %s with %s: %w", n.name, name, child.name, ErrInvalidName)
	}
	return n.with(func(c *Node) {
		c.children = slices.Clone(n.children)
		c.children[i] = child
	}), nil
}

// WithRenderedChildName selects the rendered child. An empty name clears it.
func (n *Node) WithRenderedChildName(name string) (*Node, error) {
	if name != "" && !n.HasChild(name) {
		return nil, fmt.Errorf("graph: node %s: rendered child %s: %w", n.name, name, ErrChildNotFound)
	}
	return n.with(func(c *Node) { c.renderedChildName = name }), nil
}

// WithRenderedChild selects child as the rendered child. Nil clears it.
func (n *Node) WithRenderedChild(child *Node) (*Node, error) {
	if child == nil {
		return n.WithRenderedChildName("")
	}
	return n.WithRenderedChildName(child.name)
}

// ---------------------------------------------------------------------------
// Connections
// ---------------------------------------------------------------------------

// Connect wires output's result into input's port. Both must be children
// and input must declare port. A connection already feeding that port is
// replaced.
func (n *Node) Connect(output, input, port string) (*Node, error) {
	out := n.Child(output)
	if out == nil {
		return nil, fmt.Errorf("graph: node %s: output node %s: %w", n.name, output, ErrChildNotFound)
	}
	in := n.Child(input)
	if in == nil {
		return nil, fmt.Errorf("graph: node %s: input node %s: %w", n.name, input, ErrChildNotFound)
	}
	if !in.HasInput(port) {
		return nil, fmt.Errorf("graph: node %s: port %s.%s: %w", n.name, input, port, ErrPortNotFound)
	}
	conn := Connection{OutputNode: output, InputNode: input, InputPort: port}
	return n.with(func(c *Node) {
		kept := withoutConnections(n.connections, func(old Connection) bool {
			return old.InputNode == input && old.InputPort == port
		})
		c.connections = append(slices.Clip(kept), conn)
	}), nil
}

// WithConnectionAdded is Connect taking a Connection value.
func (n *Node) WithConnectionAdded(conn Connection) (*Node, error) {
	return n.Connect(conn.OutputNode, conn.InputNode, conn.InputPort)
}

// Disconnect removes conn.
func (n *Node) Disconnect(conn Connection) (*Node, error) {
	if !slices.Contains(n.connections, conn) {
		return nil, fmt.Errorf("graph: node %s: %s: %w", n.name, conn, ErrConnectionNotFound)
	}
	return n.with(func(c *Node) {
		c.connections = withoutConnections(n.connections, func(old Connection) bool { return old == conn })
	}), nil
}

// DisconnectNode removes every connection touching the named child.
func (n *Node) DisconnectNode(name string) *Node {
	return n.with(func(c *Node) {
		c.connections = withoutConnections(n.connections, func(conn Connection) bool { return conn.Touches(name) })
	})
}

// DisconnectPort removes the connection feeding the given child port, if any.
func (n *Node) DisconnectPort(node, port string) *Node {
	return n.with(func(c *Node) {
		c.connections = withoutConnections(n.connections, func(conn Connection) bool {
			return conn.InputNode == node && conn.InputPort == port
		})
	})
}

func withoutConnections(conns []Connection, drop func(Connection) bool) []Connection {
	return slices.DeleteFunc(slices.Clone(conns), drop)
}
