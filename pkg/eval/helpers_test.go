package eval

import (
	"context"
	"errors"
	"testing"

	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/graph"
)

// calls counts invocations per function name.
type calls map[string]int

func newTestRepo(c calls) *function.Registry {
	count := func(name string, fn func(args []any) (any, error)) function.Function {
		return function.Func(func(args []any) (any, error) {
			c[name]++
			return fn(args)
		})
	}
	funcs := map[string]function.Function{
		"add": count("add", func(args []any) (any, error) {
			a, err := function.Int(args, 0)
			if err != nil {
				return nil, err
			}
			b, err := function.Int(args, 1)
			if err != nil {
				return nil, err
			}
			return a + b, nil
		}),
		"seq": count("seq", func(args []any) (any, error) {
			n, _ := function.Int(args, 0)
			step, _ := function.Int(args, 1)
			out := make([]any, n)
			for i := range out {
				out[i] = step * int64(i+1)
			}
			return out, nil
		}),
		"floats": count("floats", func([]any) (any, error) {
			return []any{1.9, 2.1}, nil
		}),
		"nested": count("nested", func([]any) (any, error) {
			return []any{[]any{int64(1), int64(2)}, []any{int64(3)}}, nil
		}),
		"deep": count("deep", func([]any) (any, error) {
			return []any{
				[]any{[]any{int64(1), int64(2)}, []any{int64(3)}},
				[]any{[]any{int64(4)}},
			}, nil
		}),
		"total": count("total", func(args []any) (any, error) {
			list, err := function.List(args, 0)
			if err != nil {
				return nil, err
			}
			var sum int64
			for _, v := range list {
				sum += v.(int64)
			}
			return sum, nil
		}),
		"identity": count("identity", func(args []any) (any, error) { return args[0], nil }),
		"pair":     count("pair", func(args []any) (any, error) { return []any{args[0], args[1]}, nil }),
		"frame": count("frame", func(args []any) (any, error) {
			return args[0].(function.Context).Frame(), nil
		}),
		"zero": count("zero", func([]any) (any, error) { return 0.0, nil }),
		"none": count("none", func([]any) (any, error) { return nil, nil }),
		"fail": count("fail", func([]any) (any, error) { return nil, errors.New("boom") }),
		"explode": count("explode", func([]any) (any, error) {
			panic("kaboom")
		}),
	}
	return function.NewRegistry(function.NewNamespace("test", funcs))
}

func fnNode(t *testing.T, name, fn string, ports ...graph.Port) *graph.Node {
	t.Helper()
	n := graph.Must(graph.Root().WithName(name)).WithFunction("test/" + fn)
	for _, p := range ports {
		n = graph.Must(n.WithInputAdded(p))
	}
	return n
}

func listOutput(n *graph.Node) *graph.Node { return n.WithOutputRange(graph.RangeList) }

func seqNode(t *testing.T, name string, n, step int64) *graph.Node {
	t.Helper()
	return listOutput(fnNode(t, name, "seq", graph.IntPort("n", n), graph.IntPort("step", step)))
}

func network(t *testing.T, rendered string, children []*graph.Node, conns ...graph.Connection) *graph.Node {
	t.Helper()
	net := graph.Must(graph.Root().WithName("net"))
	for _, c := range children {
		net = graph.Must(net.WithChildAdded(c))
	}
	for _, c := range conns {
		net = graph.Must(net.WithConnectionAdded(c))
	}
	return graph.Must(net.WithRenderedChildName(rendered))
}

func wire(out, in, port string) graph.Connection {
	return graph.Connection{OutputNode: out, InputNode: in, InputPort: port}
}

func newContext(root *graph.Node, c calls) *NodeContext {
	return New(context.Background(), graph.NewLibrary("test", root), newTestRepo(c), 1)
}
