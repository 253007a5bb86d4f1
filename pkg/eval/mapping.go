package eval

import (
	"context"
	"fmt"

	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/graph"
)

// input is the value delivered to one port: either a single value or a
// list of values coming from a connection.
type input struct {
	value  any
	list   []any
	isList bool
}

func valueInput(v any) input       { return input{value: v} }
func listInput(l []any) input      { return input{list: l, isList: true} }
func (in input) isEmptyList() bool { return in.isList && len(in.list) == 0 }

func (in input) level() int {
	if !in.isList {
		return 0
	}
	return level(in.list)
}

// level is the nesting depth of a list, judged by its first element only:
// a list whose first element is a list has level 1 + that element's level,
// any other list has level 0.
func level(values []any) int {
	if len(values) == 0 {
		return 0
	}
	if first, ok := function.AsList(values[0]); ok {
		return 1 + level(first)
	}
	return 0
}

func outputLevel(inputs []input) int {
	sum := 0
	for _, in := range inputs {
		sum += in.level()
	}
	return sum
}

// mapper invokes one node's function over its inputs, broadcasting lists.
type mapper struct {
	ctx   context.Context
	node  *graph.Node
	ports []graph.Port
	fn    function.Function
}

func (m *mapper) mapValues(inputs []input) ([]any, error) {
	// Without inputs the function runs once, for its side effects.
	if len(m.ports) == 0 {
		v, err := m.invoke(nil)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return []any{}, nil
		}
		return []any{v}, nil
	}

	var (
		results []any
		err     error
	)
	l := outputLevel(inputs)
	if l == 0 || (l == 1 && m.node.HasListInputs()) {
		results, err = m.mapFlat(inputs)
	} else {
		results, err = m.mapNested(inputs)
	}
	if err != nil {
		return nil, err
	}

	switch {
	case len(results) == 0:
		return []any{}, nil
	case m.node.HasListOutputRange() && len(results) == 1:
		if list, ok := function.AsList(results[0]); ok {
			return list, nil
		}
	}
	return results, nil
}

// mapNested expands the first nested input one element at a time and maps
// each expansion recursively. Other nested inputs are left for the
// recursive calls.
func (m *mapper) mapNested(inputs []input) ([]any, error) {
	results := []any{}
	for i, in := range inputs {
		if in.level() == 0 {
			continue
		}
		for _, elem := range in.list {
			if err := checkInterrupted(m.ctx, m.node); err != nil {
				return nil, err
			}
			nested := append([]input(nil), inputs...)
			if list, ok := function.AsList(elem); ok {
				nested[i] = listInput(list)
			} else {
				nested[i] = valueInput(elem)
			}
			sub, err := m.mapValues(nested)
			if err != nil {
				return nil, err
			}
			if len(sub) == 1 && m.node.HasValueOutputRange() && m.node.HasListInputs() {
				results = append(results, sub[0])
			} else {
				results = append(results, sub)
			}
		}
		break
	}
	return results, nil
}

// mapFlat walks all list inputs in lockstep. A list that runs out starts
// over until every list has run out at least once, so the longest list sets
// the number of calls. A flat list fed to a list-range port is passed whole.
func (m *mapper) mapFlat(inputs []input) ([]any, error) {
	for _, in := range inputs {
		if in.isEmptyList() {
			return []any{}, nil
		}
	}

	results := []any{}
	positions := make([]int, len(inputs))
	toExhaust := make(map[int]bool, len(inputs))
	for i := range inputs {
		toExhaust[i] = true
	}
	hasListArgument := false

	for {
		if err := checkInterrupted(m.ctx, m.node); err != nil {
			return nil, err
		}
		args := make([]any, len(inputs))
		for i, in := range inputs {
			switch {
			case !in.isList:
				delete(toExhaust, i)
				args[i] = in.value
			case m.ports[i].HasListRange() && in.level() == 0:
				delete(toExhaust, i)
				args[i] = in.list
			default:
				if positions[i] >= len(in.list) {
					delete(toExhaust, i)
					if len(toExhaust) == 0 {
						return results, nil
					}
					positions[i] = 0
				}
				args[i] = in.list[positions[i]]
				positions[i]++
				hasListArgument = true
			}
		}

		v, err := m.invoke(args)
		if err != nil {
			return nil, err
		}
		if v != nil {
			results = append(results, v)
		}
		if !hasListArgument {
			return results, nil
		}
	}
}

// invoke calls the function, turning failures and panics into RenderErrors.
func (m *mapper) invoke(args []any) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, &RenderError{Node: m.node, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	v, err = m.fn.Invoke(args)
	if err != nil {
		return nil, &RenderError{Node: m.node, Err: err}
	}
	return v, nil
}
