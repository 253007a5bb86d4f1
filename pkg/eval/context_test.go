package eval

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/graph"
)

func TestScalarInputs(t *testing.T) {
	c := calls{}
	add := fnNode(t, "add1", "add", graph.IntPort("a", 2), graph.IntPort("b", 3))
	got, err := newContext(add, c).RenderNode(add)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{int64(5)}, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if c["add"] != 1 {
		t.Errorf("add called %d times, want 1", c["add"])
	}
}

func TestLongestListWrapsShorter(t *testing.T) {
	c := calls{}
	net := network(t, "sum",
		[]*graph.Node{
			seqNode(t, "a", 3, 1),
			seqNode(t, "b", 2, 10),
			fnNode(t, "sum", "add", graph.IntPort("a", 0), graph.IntPort("b", 0)),
		},
		wire("a", "sum", "a"),
		wire("b", "sum", "b"),
	)
	got, err := newContext(net, c).RenderNetwork(net)
	if err != nil {
		t.Fatal(err)
	}
	want := []any{int64(11), int64(22), int64(13)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if c["add"] != 3 {
		t.Errorf("add called %d times, want 3", c["add"])
	}
}

func TestListRangePortReceivesWholeList(t *testing.T) {
	c := calls{}
	values := graph.NewPort("values", graph.IntType).WithRange(graph.RangeList)
	net := network(t, "total",
		[]*graph.Node{seqNode(t, "s", 3, 1), fnNode(t, "total", "total", values)},
		wire("s", "total", "values"),
	)
	got, err := newContext(net, c).RenderNetwork(net)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{int64(6)}, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if c["total"] != 1 {
		t.Errorf("total called %d times, want 1", c["total"])
	}
}

func TestListRangePortWithElementPort(t *testing.T) {
	c := calls{}
	whole := graph.NewPort("whole", graph.IntType).WithRange(graph.RangeList)
	net := network(t, "pair",
		[]*graph.Node{
			seqNode(t, "s", 3, 1),
			seqNode(t, "e", 2, 10),
			fnNode(t, "pair", "pair", whole, graph.IntPort("each", 0)),
		},
		wire("s", "pair", "whole"),
		wire("e", "pair", "each"),
	)
	got, err := newContext(net, c).RenderNetwork(net)
	if err != nil {
		t.Fatal(err)
	}
	list := []any{int64(1), int64(2), int64(3)}
	want := []any{[]any{list, int64(10)}, []any{list, int64(20)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestIntPortTruncatesIncomingFloats(t *testing.T) {
	c := calls{}
	net := network(t, "id",
		[]*graph.Node{
			listOutput(fnNode(t, "f", "floats", graph.IntPort("unused", 0))),
			fnNode(t, "id", "identity", graph.IntPort("v", 0)),
		},
		wire("f", "id", "v"),
	)
	got, err := newContext(net, c).RenderNetwork(net)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{int64(1), int64(2)}, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedInputsKeepShape(t *testing.T) {
	c := calls{}
	net := network(t, "sum",
		[]*graph.Node{
			listOutput(fnNode(t, "n", "nested", graph.IntPort("unused", 0))),
			fnNode(t, "sum", "add", graph.IntPort("a", 0), graph.IntPort("b", 10)),
		},
		wire("n", "sum", "a"),
	)
	got, err := newContext(net, c).RenderNetwork(net)
	if err != nil {
		t.Fatal(err)
	}
	want := []any{[]any{int64(11), int64(12)}, []any{int64(13)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestListRangePortMapsOverNestedList(t *testing.T) {
	c := calls{}
	values := graph.NewPort("values", graph.IntType).WithRange(graph.RangeList)
	net := network(t, "total",
		[]*graph.Node{
			listOutput(fnNode(t, "n", "nested", graph.IntPort("unused", 0))),
			fnNode(t, "total", "total", values),
		},
		wire("n", "total", "values"),
	)
	got, err := newContext(net, c).RenderNetwork(net)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{int64(3), int64(3)}, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if c["total"] != 2 {
		t.Errorf("total called %d times, want 2", c["total"])
	}
}

func TestSingleNestedResultIsUnwrapped(t *testing.T) {
	c := calls{}
	values := graph.NewPort("values", graph.IntType).WithRange(graph.RangeList)
	net := network(t, "total",
		[]*graph.Node{
			listOutput(fnNode(t, "d", "deep", graph.IntPort("unused", 0))),
			fnNode(t, "total", "total", values),
		},
		wire("d", "total", "values"),
	)
	got, err := newContext(net, c).RenderNetwork(net)
	if err != nil {
		t.Fatal(err)
	}
	want := []any{[]any{int64(3), int64(3)}, int64(4)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoization(t *testing.T) {
	c := calls{}
	net := network(t, "top",
		[]*graph.Node{
			seqNode(t, "src", 2, 1),
			fnNode(t, "left", "identity", graph.IntPort("v", 0)),
			fnNode(t, "right", "identity", graph.IntPort("v", 0)),
			fnNode(t, "top", "add", graph.IntPort("a", 0), graph.IntPort("b", 0)),
		},
		wire("src", "left", "v"),
		wire("src", "right", "v"),
		wire("left", "top", "a"),
		wire("right", "top", "b"),
	)
	ctx := newContext(net, c)
	if _, err := ctx.RenderNetwork(net); err != nil {
		t.Fatal(err)
	}
	if c["seq"] != 1 {
		t.Errorf("shared upstream rendered %d times, want 1", c["seq"])
	}

	src := net.Child("src")
	cached, _ := ctx.Results(src)
	again, err := ctx.RenderChild(net, src)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cached, again); diff != "" {
		t.Errorf("RenderChild should return the cached result (-want +got):\n%s", diff)
	}
	if c["seq"] != 1 {
		t.Errorf("RenderChild re-invoked the function")
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrAlreadyRendered) {
			t.Errorf("RenderNode on a rendered node: recovered %v, want ErrAlreadyRendered", r)
		}
	}()
	ctx.RenderNode(src)
	t.Error("RenderNode should have panicked")
}

func TestCancelledBeforeRender(t *testing.T) {
	c := calls{}
	net := network(t, "sum",
		[]*graph.Node{seqNode(t, "a", 3, 1), fnNode(t, "sum", "add", graph.IntPort("a", 0), graph.IntPort("b", 0))},
		wire("a", "sum", "a"),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	nc := New(ctx, graph.NewLibrary("test", net), newTestRepo(c), 1)

	_, err := nc.RenderNetwork(net)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("err = %v, want ErrInterrupted", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, should wrap context.Canceled", err)
	}
	var re *RenderError
	if errors.As(err, &re) {
		t.Error("interruption must not be a RenderError")
	}
	if _, ok := nc.Results(net.Child("sum")); ok {
		t.Error("interrupted node must not have a cached result")
	}
}

func TestCancelledDuringBroadcast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := 0
	repo := function.NewRegistry(function.NewNamespace("test", map[string]function.Function{
		"seq": function.Func(func([]any) (any, error) {
			return []any{int64(1), int64(2), int64(3)}, nil
		}),
		"slow": function.Func(func(args []any) (any, error) {
			n++
			cancel()
			return args[0], nil
		}),
	}))
	net := network(t, "slow",
		[]*graph.Node{
			listOutput(fnNode(t, "s", "seq", graph.IntPort("unused", 0))),
			fnNode(t, "slow", "slow", graph.IntPort("v", 0)),
		},
		wire("s", "slow", "v"),
	)
	nc := New(ctx, graph.NewLibrary("test", net), repo, 1)
	_, err := nc.RenderNetwork(net)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("err = %v, want ErrInterrupted", err)
	}
	if n != 1 {
		t.Errorf("function ran %d times after cancellation, want 1", n)
	}
	if _, ok := nc.Results(net.Child("slow")); ok {
		t.Error("interrupted node must not have a cached result")
	}
}

func TestFunctionErrorIsRenderError(t *testing.T) {
	for _, fn := range []string{"fail", "explode"} {
		c := calls{}
		net := network(t, "bad",
			[]*graph.Node{
				seqNode(t, "a", 2, 1),
				fnNode(t, "bad", fn, graph.IntPort("v", 0)),
			},
			wire("a", "bad", "v"),
		)
		_, err := newContext(net, c).RenderNetwork(net)
		var re *RenderError
		if !errors.As(err, &re) {
			t.Fatalf("%s: err = %v, want RenderError", fn, err)
		}
		if re.Node.Name() != "bad" {
			t.Errorf("%s: failing node = %s, want bad", fn, re.Node.Name())
		}
		if c[fn] != 1 {
			t.Errorf("%s: called %d times, want 1 (no retries)", fn, c[fn])
		}
	}
}

func TestUnknownFunction(t *testing.T) {
	n := fnNode(t, "n", "missing", graph.IntPort("v", 0))
	_, err := newContext(n, calls{}).RenderNode(n)
	var re *RenderError
	if !errors.As(err, &re) || !errors.Is(err, function.ErrFunctionNotFound) {
		t.Errorf("err = %v, want RenderError wrapping ErrFunctionNotFound", err)
	}
}

func TestContextPort(t *testing.T) {
	n := fnNode(t, "f", "frame", graph.NewPort("ctx", graph.ContextType))
	nc := New(context.Background(), graph.NewLibrary("test", n), newTestRepo(calls{}), 42)
	got, err := nc.RenderNode(n)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{42.0}, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestNodeWithoutInputs(t *testing.T) {
	c := calls{}
	zero := fnNode(t, "z", "zero")
	got, err := newContext(zero, c).RenderNode(zero)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{0.0}, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	none := fnNode(t, "n", "none")
	got, err = newContext(none, c).RenderNode(none)
	if err != nil || len(got) != 0 {
		t.Errorf("nil result should give an empty sequence, got %v, %v", got, err)
	}
}

func TestEmptyListInputSkipsInvocation(t *testing.T) {
	c := calls{}
	net := network(t, "sum",
		[]*graph.Node{seqNode(t, "empty", 0, 1), fnNode(t, "sum", "add", graph.IntPort("a", 0), graph.IntPort("b", 1))},
		wire("empty", "sum", "a"),
	)
	got, err := newContext(net, c).RenderNetwork(net)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 || c["add"] != 0 {
		t.Errorf("got %v after %d calls, want empty result and no calls", got, c["add"])
	}
}

func TestStructuralCycleDoesNotRecurseForever(t *testing.T) {
	c := calls{}
	net := network(t, "y",
		[]*graph.Node{
			fnNode(t, "x", "add", graph.IntPort("a", 1), graph.IntPort("b", 1)),
			fnNode(t, "y", "add", graph.IntPort("a", 5), graph.IntPort("b", 5)),
		},
		wire("x", "y", "a"),
		wire("y", "x", "a"),
	)
	got, err := newContext(net, c).RenderNetwork(net)
	if err != nil {
		t.Fatal(err)
	}
	// x keeps its literal a=1 because y had no result yet: x = 2, y = 2+5.
	if diff := cmp.Diff([]any{int64(7)}, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestFilePortsResolveAgainstLibrary(t *testing.T) {
	file := graph.StringPort("file", "data/points.csv").WithWidget(graph.WidgetFile)
	n := fnNode(t, "read", "identity", file)
	dir := t.TempDir()
	lib := graph.NewLibrary("test", n).WithFile(filepath.Join(dir, "doc.json"))
	got, err := New(context.Background(), lib, newTestRepo(calls{}), 1).RenderNode(n)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "data", "points.csv")
	if diff := cmp.Diff([]any{want}, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestSubnetworkWithPublishedPort(t *testing.T) {
	inner := network(t, "double",
		[]*graph.Node{fnNode(t, "double", "add", graph.IntPort("a", 0), graph.IntPort("b", 100))},
	)
	inner = graph.Must(inner.WithName("inner"))
	inner = graph.Must(inner.WithInputAdded(graph.IntPort("x", 0).WithChildReference("double", "a")))

	outer := graph.Must(graph.Root().WithName("outer"))
	outer = graph.Must(outer.WithChildAdded(seqNode(t, "s", 2, 1)))
	outer = graph.Must(outer.WithChildAdded(inner))
	outer = graph.Must(outer.Connect("s", "inner", "x"))
	outer = graph.Must(outer.WithRenderedChildName("inner"))

	got, err := newContext(outer, calls{}).RenderNetwork(outer)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{int64(101), int64(102)}, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderPath(t *testing.T) {
	net := network(t, "a", []*graph.Node{seqNode(t, "a", 2, 5)})
	nc := newContext(net, calls{})
	got, err := nc.RenderPath("/a")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{int64(5), int64(10)}, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if _, err := nc.RenderPath("/nope"); !errors.Is(err, graph.ErrChildNotFound) {
		t.Errorf("err = %v, want ErrChildNotFound", err)
	}
}

func TestRenderPathRendersUpstream(t *testing.T) {
	c := calls{}
	net := network(t, "sum",
		[]*graph.Node{
			seqNode(t, "a", 3, 1),
			fnNode(t, "sum", "add", graph.IntPort("a", 0), graph.IntPort("b", 100)),
		},
		wire("a", "sum", "a"),
	)
	got, err := newContext(net, c).RenderPath("/sum")
	if err != nil {
		t.Fatal(err)
	}
	want := []any{int64(101), int64(102), int64(103)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if c["seq"] != 1 {
		t.Errorf("seq called %d times, want 1", c["seq"])
	}
}

func TestRenderChildAfterRenderNode(t *testing.T) {
	c := calls{}
	net := network(t, "a", []*graph.Node{seqNode(t, "a", 2, 1)})
	nc := newContext(net, c)
	a := net.Child("a")
	first, err := nc.RenderNode(a)
	if err != nil {
		t.Fatal(err)
	}
	again, err := nc.RenderChild(net, a)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, again); diff != "" {
		t.Errorf("RenderChild should return the cached result (-want +got):\n%s", diff)
	}
	if c["seq"] != 1 {
		t.Errorf("seq called %d times, want 1", c["seq"])
	}
}
