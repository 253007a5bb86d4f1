package graph

import (
	"errors"
	"testing"
)

func makeAdder(t *testing.T, name string) *Node {
	t.Helper()
	n := Must(Root().WithName(name))
	n = n.WithFunction("math/add")
	n = Must(n.WithInputAdded(FloatPort("a", 0)))
	n = Must(n.WithInputAdded(FloatPort("b", 0)))
	return n
}

func makeNetwork(t *testing.T) *Node {
	t.Helper()
	net := Must(Root().WithName("net"))
	net = Must(net.WithChildAdded(makeAdder(t, "x")))
	net = Must(net.WithChildAdded(makeAdder(t, "y")))
	net = Must(net.WithChildAdded(makeAdder(t, "z")))
	return net
}

func TestRootIsSingleton(t *testing.T) {
	if Root() != Root() {
		t.Fatal("Root() should always return the same node")
	}
	if Root().Prototype() != nil {
		t.Error("root should have no prototype")
	}
	if Root().Name() != RootName {
		t.Errorf("root name = %q, want %q", Root().Name(), RootName)
	}
}

func TestDerivingFromRootReparents(t *testing.T) {
	n := Root().WithDescription("hello")
	if n.Prototype() != Root() {
		t.Error("node derived from root should have root as prototype")
	}
	if n.Name() != "node" {
		t.Errorf("derived name = %q, want %q", n.Name(), "node")
	}
	if Root().Description() != "" {
		t.Error("root must not change")
	}

	// Deriving from a normal node keeps its prototype.
	m := n.WithDescription("again")
	if m.Prototype() != Root() {
		t.Error("prototype should be kept by with methods on ordinary nodes")
	}
}

func TestExtend(t *testing.T) {
	base := makeAdder(t, "add")
	ext := base.Extend()
	if ext.Prototype() != base {
		t.Error("extended node should point at its template")
	}
	if ext.Function() != "math/add" || len(ext.Inputs()) != 2 {
		t.Error("extended node should copy the template's attributes")
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"a", "_a", "node1", "A_b_C", "abcdefghijklmnopqrstuvwxyz1234"}
	for _, name := range valid {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}
	invalid := []string{"", "1a", "a-b", "__x", "_root", "abcdefghijklmnopqrstuvwxyz12345", "a b"}
	for _, name := range invalid {
		if err := ValidateName(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateName(%q) = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestWithMethodsLeaveReceiverUnchanged(t *testing.T) {
	net := makeNetwork(t)
	snapshot := makeNetwork(t)
	if !net.Equal(snapshot) {
		t.Fatal("identically built networks should be equal")
	}

	Must(net.WithName("other"))
	Must(net.WithInputAdded(IntPort("n", 3)))
	Must(net.WithChildRemoved("x"))
	Must(net.WithChildAdded(makeAdder(t, "w")))
	Must(net.Connect("x", "y", "a"))
	Must(net.WithRenderedChildName("z"))
	Must(net.WithChildReplaced("x", makeAdder(t, "x").WithDescription("changed")))
	net.WithPosition(Point{X: 4, Y: 2})

	if !net.Equal(snapshot) {
		t.Error("with methods must not modify the receiver")
	}
}

func TestStructuralSharing(t *testing.T) {
	net := makeNetwork(t)
	next := Must(net.WithChildReplaced("x", makeAdder(t, "x").WithDescription("new")))
	if next.Child("y") != net.Child("y") {
		t.Error("unaffected children should be shared, not copied")
	}
	if next.Child("x") == net.Child("x") {
		t.Error("replaced child should differ")
	}
}

func TestDuplicates(t *testing.T) {
	net := makeNetwork(t)
	if _, err := net.WithChildAdded(makeAdder(t, "x")); !errors.Is(err, ErrDuplicateChild) {
		t.Errorf("adding duplicate child: err = %v, want ErrDuplicateChild", err)
	}
	add := makeAdder(t, "add")
	if _, err := add.WithInputAdded(FloatPort("a", 1)); !errors.Is(err, ErrDuplicatePort) {
		t.Errorf("adding duplicate port: err = %v, want ErrDuplicatePort", err)
	}
}

func TestInputValue(t *testing.T) {
	add := makeAdder(t, "add")
	next := Must(add.WithInputValue("a", 2.5))
	p, _ := next.Input("a")
	if p.FloatValue() != 2.5 {
		t.Errorf("a = %v, want 2.5", p.FloatValue())
	}
	if _, err := add.WithInputValue("missing", 1.0); !errors.Is(err, ErrPortNotFound) {
		t.Errorf("err = %v, want ErrPortNotFound", err)
	}
	if _, err := add.WithInputValue("a", "text"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("err = %v, want ErrInvalidValue", err)
	}
}

func TestConnectReplacesExisting(t *testing.T) {
	net := makeNetwork(t)
	net = Must(net.Connect("x", "z", "a"))
	net = Must(net.Connect("y", "z", "a"))

	conns := net.Connections()
	if len(conns) != 1 {
		t.Fatalf("got %d connections, want 1", len(conns))
	}
	want := Connection{OutputNode: "y", InputNode: "z", InputPort: "a"}
	if conns[0] != want {
		t.Errorf("connection = %v, want %v", conns[0], want)
	}
}

func TestConnectValidates(t *testing.T) {
	net := makeNetwork(t)
	if _, err := net.Connect("nope", "z", "a"); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("unknown output: err = %v", err)
	}
	if _, err := net.Connect("x", "nope", "a"); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("unknown input: err = %v", err)
	}
	if _, err := net.Connect("x", "z", "nope"); !errors.Is(err, ErrPortNotFound) {
		t.Errorf("unknown port: err = %v", err)
	}
}

func TestDisconnect(t *testing.T) {
	net := Must(makeNetwork(t).Connect("x", "z", "a"))
	conn := Connection{OutputNode: "x", InputNode: "z", InputPort: "a"}

	next := Must(net.Disconnect(conn))
	if len(next.Connections()) != 0 {
		t.Error("connection should be gone")
	}
	if _, err := next.Disconnect(conn); !errors.Is(err, ErrConnectionNotFound) {
		t.Errorf("err = %v, want ErrConnectionNotFound", err)
	}
}

func TestChildRemovedDropsConnections(t *testing.T) {
	net := makeNetwork(t)
	net = Must(net.Connect("x", "y", "a"))
	net = Must(net.Connect("y", "z", "a"))
	net = Must(net.WithRenderedChildName("x"))

	next := Must(net.WithChildRemoved("x"))
	if next.HasChild("x") {
		t.Error("child should be removed")
	}
	if len(next.Connections()) != 1 || next.IsConnected("x") {
		t.Errorf("connections = %v, want only y -> z.a", next.Connections())
	}
	if next.RenderedChildName() != "" {
		t.Error("rendered child should be cleared")
	}
}

func TestRenderedChild(t *testing.T) {
	net := makeNetwork(t)
	if net.HasRenderedChild() {
		t.Error("new network should have no rendered child")
	}
	net = Must(net.WithRenderedChildName("y"))
	if net.RenderedChild() != net.Child("y") {
		t.Error("rendered child should be y")
	}
	if _, err := net.WithRenderedChildName("nope"); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("err = %v, want ErrChildNotFound", err)
	}
}

func TestUniqueName(t *testing.T) {
	net := Must(Root().WithName("net"))
	if got := net.UniqueName("rect"); got != "rect1" {
		t.Errorf("UniqueName = %q, want rect1", got)
	}
	net = Must(net.WithChildAdded(Must(Root().WithName("rect1"))))
	net = Must(net.WithChildAdded(Must(Root().WithName("rect3"))))
	if got := net.UniqueName("rect"); got != "rect2" {
		t.Errorf("UniqueName = %q, want rect2", got)
	}
}

func TestHasListInputs(t *testing.T) {
	add := makeAdder(t, "add")
	if add.HasListInputs() {
		t.Error("adder has no list inputs")
	}
	add = Must(add.WithInputRange("a", RangeList))
	if !add.HasListInputs() {
		t.Error("adder should now have a list input")
	}
}
