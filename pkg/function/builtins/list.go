package builtins

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/chazu/nodal/pkg/function"
)

// List holds list operations. These are meant for ports with a list range,
// so each call sees whole lists rather than single elements.
func List() *function.Namespace {
	return function.NewNamespace("list", map[string]function.Function{
		"count": function.Fixed(1, func(args []any) (any, error) {
			l, err := function.List(args, 0)
			if err != nil {
				return nil, err
			}
			return int64(len(l)), nil
		}),
		"first":  function.Fixed(1, element(func(l []any) any { return l[0] }, 1)),
		"second": function.Fixed(1, element(func(l []any) any { return l[1] }, 2)),
		"last":   function.Fixed(1, element(func(l []any) any { return l[len(l)-1] }, 1)),
		"rest": function.Fixed(1, func(args []any) (any, error) {
			l, err := function.List(args, 0)
			if err != nil {
				return nil, err
			}
			if len(l) == 0 {
				return []any{}, nil
			}
			return slices.Clone(l[1:]), nil
		}),
		"combine":    function.Func(combine),
		"slice":      function.Fixed(4, sliceList),
		"shift":      function.Fixed(2, shift),
		"distinct":   function.Fixed(1, distinct),
		"repeat":     function.Fixed(3, repeat),
		"reverse":    function.Fixed(1, reverse),
		"sort":       function.Fixed(1, sortList),
		"shuffle":    function.Fixed(2, shuffle),
		"pick":       function.Fixed(3, pick),
		"take_every": function.Fixed(2, takeEvery),
		"cull":       function.Fixed(2, cull),
	})
}

// element returns an element picker that yields nothing for lists shorter
// than min.
func element(pick func([]any) any, min int) func([]any) (any, error) {
	return func(args []any) (any, error) {
		l, err := function.List(args, 0)
		if err != nil {
			return nil, err
		}
		if len(l) < min {
			return nil, nil
		}
		return pick(l), nil
	}
}

// combine concatenates all its list arguments. Nil arguments are skipped.
func combine(args []any) (any, error) {
	out := []any{}
	for i := range args {
		l, err := function.List(args, i)
		if err != nil {
			return nil, err
		}
		out = append(out, l...)
	}
	return out, nil
}

// sliceList takes size elements from start, or everything else when invert
// is set.
func sliceList(args []any) (any, error) {
	l, err := function.List(args, 0)
	if err != nil {
		return nil, err
	}
	start, err := function.Int(args, 1)
	if err != nil {
		return nil, err
	}
	size, err := function.Int(args, 2)
	if err != nil {
		return nil, err
	}
	invert, err := function.Bool(args, 3)
	if err != nil {
		return nil, err
	}
	lo := clamp(start, len(l))
	hi := clamp(start+max(size, 0), len(l))
	if invert {
		return slices.Concat(l[:lo], l[hi:]), nil
	}
	return slices.Clone(l[lo:hi]), nil
}

func clamp(i int64, n int) int {
	return int(min(max(i, 0), int64(n)))
}

// shift rotates the list left by amount.
func shift(args []any) (any, error) {
	l, err := function.List(args, 0)
	if err != nil {
		return nil, err
	}
	amount, err := function.Int(args, 1)
	if err != nil {
		return nil, err
	}
	if len(l) == 0 {
		return []any{}, nil
	}
	n := int64(len(l))
	a := int(((amount % n) + n) % n)
	return slices.Concat(l[a:], l[:a]), nil
}

func distinct(args []any) (any, error) {
	l, err := function.List(args, 0)
	if err != nil {
		return nil, err
	}
	out := []any{}
	for _, v := range l {
		if !slices.ContainsFunc(out, func(o any) bool { return equalValues(o, v) }) {
			out = append(out, v)
		}
	}
	return out, nil
}

// repeat repeats the whole list amount times, or each item amount times
// when perItem is set.
func repeat(args []any) (any, error) {
	l, err := function.List(args, 0)
	if err != nil {
		return nil, err
	}
	amount, err := function.Int(args, 1)
	if err != nil {
		return nil, err
	}
	perItem, err := function.Bool(args, 2)
	if err != nil {
		return nil, err
	}
	out := []any{}
	if perItem {
		for _, v := range l {
			for range amount {
				out = append(out, v)
			}
		}
		return out, nil
	}
	for range amount {
		out = append(out, l...)
	}
	return out, nil
}

func reverse(args []any) (any, error) {
	l, err := function.List(args, 0)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(l)
	slices.Reverse(out)
	if out == nil {
		out = []any{}
	}
	return out, nil
}

// sortList sorts numbers numerically and strings lexically. Mixed lists are
// rejected.
func sortList(args []any) (any, error) {
	l, err := function.List(args, 0)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(l)
	if out == nil {
		return []any{}, nil
	}
	var bad error
	slices.SortStableFunc(out, func(a, b any) int {
		if function.IsNumber(a) && function.IsNumber(b) {
			x, _ := function.Float([]any{a}, 0)
			y, _ := function.Float([]any{b}, 0)
			return cmp.Compare(x, y)
		}
		sa, aok := a.(string)
		sb, bok := b.(string)
		if aok && bok {
			return cmp.Compare(sa, sb)
		}
		if bad == nil {
			bad = fmt.Errorf("cannot sort %T with %T: %w", a, b, function.ErrArgument)
		}
		return 0
	})
	if bad != nil {
		return nil, bad
	}
	return out, nil
}

func seeded(args []any, i int) (*rand.Rand, error) {
	seed, err := function.Int(args, i)
	if err != nil {
		return nil, err
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)), nil
}

// shuffle permutes the list. The same seed gives the same order.
func shuffle(args []any) (any, error) {
	l, err := function.List(args, 0)
	if err != nil {
		return nil, err
	}
	r, err := seeded(args, 1)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(l)
	if out == nil {
		return []any{}, nil
	}
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}

// pick returns amount random elements from the list, keeping their order.
func pick(args []any) (any, error) {
	l, err := function.List(args, 0)
	if err != nil {
		return nil, err
	}
	amount, err := function.Int(args, 1)
	if err != nil {
		return nil, err
	}
	r, err := seeded(args, 2)
	if err != nil {
		return nil, err
	}
	n := clamp(amount, len(l))
	idx := r.Perm(len(l))[:n]
	slices.Sort(idx)
	out := make([]any, 0, n)
	for _, i := range idx {
		out = append(out, l[i])
	}
	return out, nil
}

func takeEvery(args []any) (any, error) {
	l, err := function.List(args, 0)
	if err != nil {
		return nil, err
	}
	n, err := function.Int(args, 1)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("take_every %d: %w", n, function.ErrArgument)
	}
	out := []any{}
	for i := 0; i < len(l); i += int(n) {
		out = append(out, l[i])
	}
	return out, nil
}

// cull keeps the elements whose boolean is true. The booleans repeat when
// the pattern is shorter than the list.
func cull(args []any) (any, error) {
	l, err := function.List(args, 0)
	if err != nil {
		return nil, err
	}
	pattern, err := function.List(args, 1)
	if err != nil {
		return nil, err
	}
	out := []any{}
	if len(pattern) == 0 {
		return out, nil
	}
	for i, v := range l {
		keep, err := function.Bool(pattern, i%len(pattern))
		if err != nil {
			return nil, fmt.Errorf("cull pattern: %w", err)
		}
		if keep {
			out = append(out, v)
		}
	}
	return out, nil
}
