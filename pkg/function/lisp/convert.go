package lisp

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/graph"
)

// toSexp converts a port value to a Lisp value. Points become two-element
// arrays and lists become arrays.
func toSexp(env *zygo.Zlisp, v any) (zygo.Sexp, error) {
	switch x := v.(type) {
	case nil:
		return zygo.SexpNull, nil
	case int64:
		return &zygo.SexpInt{Val: x}, nil
	case int:
		return &zygo.SexpInt{Val: int64(x)}, nil
	case float64:
		return &zygo.SexpFloat{Val: x}, nil
	case string:
		return &zygo.SexpStr{S: x}, nil
	case bool:
		return &zygo.SexpBool{Val: x}, nil
	case graph.Point:
		return &zygo.SexpArray{Val: []zygo.Sexp{&zygo.SexpFloat{Val: x.X}, &zygo.SexpFloat{Val: x.Y}}, Env: env}, nil
	}
	list, ok := function.AsList(v)
	if !ok {
		return nil, fmt.Errorf("cannot pass %T to lisp: %w", v, function.ErrArgument)
	}
	vals := make([]zygo.Sexp, len(list))
	for i, e := range list {
		s, err := toSexp(env, e)
		if err != nil {
			return nil, err
		}
		vals[i] = s
	}
	return &zygo.SexpArray{Val: vals, Env: env}, nil
}

// fromSexp converts a Lisp result back to a port value. Arrays and lists
// both come back as []any; null means no value.
func fromSexp(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpStr:
		return v.S, nil
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpArray:
		return fromSexps(v.Val)
	case *zygo.SexpPair:
		elems, err := zygo.ListToArray(v)
		if err != nil {
			return nil, err
		}
		return fromSexps(elems)
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("unsupported lisp result %T", s)
}

func fromSexps(elems []zygo.Sexp) ([]any, error) {
	out := make([]any, len(elems))
	for i, e := range elems {
		v, err := fromSexp(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
