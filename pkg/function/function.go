// Package function defines how node function identifiers resolve to code.
//
// Identifiers have the form "namespace/name". A Registry maps namespaces to
// libraries, which may be native Go (see the builtins package) or scripted.
package function

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFunctionNotFound is returned when an identifier does not resolve.
	ErrFunctionNotFound = errors.New("function not found")

	// ErrInvalidIdentifier is returned for identifiers not in "namespace/name" form.
	ErrInvalidIdentifier = errors.New("invalid function identifier")

	// ErrArgument is returned by functions receiving unusable arguments.
	ErrArgument = errors.New("bad argument")
)

// Function is an invocable unit of computation. Invoke receives one argument
// per input port of the node, in port order, and returns a single value. A
// nil result means "no output" and is dropped by the evaluator.
type Function interface {
	Invoke(args []any) (any, error)
}

// Func adapts an ordinary function to the Function interface.
type Func func(args []any) (any, error)

// Invoke calls f(args).
func (f Func) Invoke(args []any) (any, error) { return f(args) }

// Repository resolves function identifiers.
type Repository interface {
	Function(id string) (Function, error)
}

// Context is what functions receive for ports of type "context".
type Context interface {
	Frame() float64
}

// SplitIdentifier splits "namespace/name".
func SplitIdentifier(id string) (namespace, name string, err error) {
	namespace, name, ok := strings.Cut(id, "/")
	if !ok || namespace == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("function: %q: %w", id, ErrInvalidIdentifier)
	}
	return namespace, name, nil
}
