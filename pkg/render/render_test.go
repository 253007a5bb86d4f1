package render

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/nodal/pkg/eval"
	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/graph"
)

// gate lets a test hold "test/block" renders until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 16), release: make(chan struct{})}
}

func testRepo(g *gate) *function.Registry {
	return function.NewRegistry(function.NewNamespace("test", map[string]function.Function{
		"frame": function.Func(func(args []any) (any, error) {
			return args[0].(function.Context).Frame(), nil
		}),
		"block": function.Func(func(args []any) (any, error) {
			g.entered <- struct{}{}
			<-g.release
			return args[0].(function.Context).Frame(), nil
		}),
		"fail": function.Func(func([]any) (any, error) {
			return nil, errors.New("boom")
		}),
	}))
}

// frameLibrary returns a library whose root renders a node calling fn with
// the context.
func frameLibrary(t *testing.T, fn string) *graph.Library {
	t.Helper()
	n := graph.Must(graph.Root().WithName("f")).WithFunction("test/" + fn)
	n = graph.Must(n.WithInputAdded(graph.NewPort("context", graph.ContextType)))
	root := graph.Must(graph.Must(graph.Root().WithName("root")).WithChildAdded(n))
	root = graph.Must(root.WithRenderedChildName("f"))
	return graph.NewLibrary("test", root)
}

// collector records scheduler results.
type collector struct {
	mu      sync.Mutex
	results []Result
}

func (c *collector) add(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *collector) frames() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []float64
	for _, r := range c.results {
		out = append(out, r.Frame)
	}
	return out
}

func TestOnce(t *testing.T) {
	res := Once(context.Background(), frameLibrary(t, "frame"), testRepo(nil), "/", 3)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if diff := cmp.Diff([]any{3.0}, res.Values); diff != "" {
		t.Errorf("values (-want +got):\n%s", diff)
	}
}

func TestSchedulerRendersRequest(t *testing.T) {
	var c collector
	s := NewScheduler(context.Background(), testRepo(nil), "/", c.add)
	id := s.Request(frameLibrary(t, "frame"), 5)
	s.Wait()

	if len(c.results) != 1 {
		t.Fatalf("got %d results, want 1", len(c.results))
	}
	r := c.results[0]
	if r.ID != id || r.Err != nil {
		t.Errorf("result = %+v", r)
	}
	if diff := cmp.Diff([]any{5.0}, r.Values); diff != "" {
		t.Errorf("values (-want +got):\n%s", diff)
	}
}

func TestSchedulerCoalescesRequests(t *testing.T) {
	g := newGate()
	var c collector
	s := NewScheduler(context.Background(), testRepo(g), "/", c.add)
	lib := frameLibrary(t, "block")

	s.Request(lib, 1)
	<-g.entered
	s.Request(lib, 2)
	s.Request(lib, 3)
	close(g.release)
	s.Wait()

	if diff := cmp.Diff([]float64{1, 3}, c.frames()); diff != "" {
		t.Errorf("rendered frames (-want +got):\n%s", diff)
	}
}

func TestSchedulerCancel(t *testing.T) {
	var c collector
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewScheduler(ctx, testRepo(nil), "/", c.add)
	s.Request(frameLibrary(t, "frame"), 1)
	s.Wait()

	if len(c.results) != 1 || !errors.Is(c.results[0].Err, eval.ErrInterrupted) {
		t.Errorf("results = %+v, want one interrupted render", c.results)
	}
}

func TestSchedulerClose(t *testing.T) {
	g := newGate()
	var c collector
	s := NewScheduler(context.Background(), testRepo(g), "/", c.add)
	lib := frameLibrary(t, "block")

	s.Request(lib, 1)
	<-g.entered
	s.Request(lib, 2)
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(g.release)
	}()
	s.Close()
	s.Request(lib, 3)
	s.Wait()

	if diff := cmp.Diff([]float64{1}, c.frames()); diff != "" {
		t.Errorf("rendered frames (-want +got):\n%s", diff)
	}
}

func TestFrames(t *testing.T) {
	results, err := Frames(context.Background(), frameLibrary(t, "frame"), testRepo(nil), "/", FrameRange(1, 4), 2)
	if err != nil {
		t.Fatal(err)
	}
	var got []any
	for _, r := range results {
		got = append(got, r.Values...)
	}
	if diff := cmp.Diff([]any{1.0, 2.0, 3.0, 4.0}, got); diff != "" {
		t.Errorf("frame values (-want +got):\n%s", diff)
	}
}

func TestFramesStopsOnError(t *testing.T) {
	_, err := Frames(context.Background(), frameLibrary(t, "fail"), testRepo(nil), "/", []float64{1, 2}, 0)
	var renderErr *eval.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("err = %v, want *eval.RenderError", err)
	}
}

func TestFrameRange(t *testing.T) {
	if diff := cmp.Diff([]float64{2, 3, 4}, FrameRange(2, 4)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if got := FrameRange(3, 1); len(got) != 0 {
		t.Errorf("reversed range = %v", got)
	}
}
