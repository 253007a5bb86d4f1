// Package lisp loads function libraries written in Lisp. It wraps zygomys
// in a sandboxed environment: every invocation evaluates the library
// source in a fresh interpreter and applies one of its functions.
//
// A library is a source file of defn forms:
//
//	; doubles a number
//	(defn double [x] (* x 2))
//	(defn grow-by [x n] (+ x n))
//
// which become the functions "ns/double" and "ns/grow_by".
package lisp

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/nodal/pkg/function"
)

// DefaultTimeout is the hard limit for a single invocation.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an invocation runs past its timeout.
	ErrTimeout = errors.New("evaluation timed out")

	// ErrNotFunction is returned when a defn name does not evaluate to a
	// function.
	ErrNotFunction = errors.New("not a function")
)

// defnPattern finds top-level function definitions after preprocessing.
var defnPattern = regexp.MustCompile(`(?m)^\s*\(defn\s+([A-Za-z_][A-Za-z0-9_?!]*)`)

// Library is a function.Library backed by Lisp source. It is safe for
// concurrent use.
type Library struct {
	namespace string
	source    string // preprocessed
	names     []string
	timeout   time.Duration
}

var _ function.Library = (*Library)(nil)

// Option configures a Library.
type Option func(*Library)

// WithTimeout bounds every invocation. Non-positive values mean
// DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Library) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// Load compiles source once to check it and to collect its functions.
// Syntax and runtime errors are returned as *EvalError.
func Load(namespace, source string, opts ...Option) (*Library, error) {
	l := &Library{
		namespace: namespace,
		source:    preprocessSource(source),
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}

	env, err := l.newEnv()
	if err != nil {
		return nil, fmt.Errorf("lisp: %s: %w", namespace, err)
	}
	defer env.Stop()

	for _, m := range defnPattern.FindAllStringSubmatch(l.source, -1) {
		name := m[1]
		if slices.Contains(l.names, name) {
			continue
		}
		if _, err := lookup(env, name); err != nil {
			return nil, fmt.Errorf("lisp: %s: %w", namespace, err)
		}
		l.names = append(l.names, name)
	}
	slices.Sort(l.names)
	return l, nil
}

// LoadFile reads and loads the library at path.
func LoadFile(namespace, path string, opts ...Option) (*Library, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lisp: %s: %w", namespace, err)
	}
	return Load(namespace, string(src), opts...)
}

func (l *Library) Namespace() string { return l.namespace }

// Names returns the defined function names in sorted order.
func (l *Library) Names() []string { return slices.Clone(l.names) }

// Lookup returns the named function.
func (l *Library) Lookup(name string) (function.Function, bool) {
	if _, found := slices.BinarySearch(l.names, name); !found {
		return nil, false
	}
	return &lispFunction{lib: l, name: name}, true
}

// newEnv creates a sandbox with the library source loaded and run.
// Sandbox mode prevents user code from accessing the filesystem or syscalls.
func (l *Library) newEnv() (*zygo.Zlisp, error) {
	env := zygo.NewZlispSandbox()
	if strings.TrimSpace(l.source) == "" {
		return env, nil
	}
	if err := env.LoadString(l.source); err != nil {
		env.Stop()
		return nil, parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		env.Stop()
		return nil, parseZygomysError(err)
	}
	return env, nil
}

func lookup(env *zygo.Zlisp, name string) (*zygo.SexpFunction, error) {
	obj, ok := env.FindObject(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, function.ErrFunctionNotFound)
	}
	fn, ok := obj.(*zygo.SexpFunction)
	if !ok {
		return nil, fmt.Errorf("%s is %T: %w", name, obj, ErrNotFunction)
	}
	return fn, nil
}

type lispFunction struct {
	lib  *Library
	name string
}

// Invoke evaluates the library in a fresh sandbox and applies the function
// to args.
func (f *lispFunction) Invoke(args []any) (any, error) {
	id := f.lib.namespace + "/" + f.name
	v, err := runWithTimeout(f.lib.timeout, func() (any, error) {
		return f.apply(args)
	})
	if err != nil {
		return nil, fmt.Errorf("lisp: %s: %w", id, err)
	}
	return v, nil
}

func (f *lispFunction) apply(args []any) (any, error) {
	env, err := f.lib.newEnv()
	if err != nil {
		return nil, err
	}
	defer env.Stop()

	fn, err := lookup(env, f.name)
	if err != nil {
		return nil, err
	}
	sargs := make([]zygo.Sexp, len(args))
	for i, a := range args {
		if sargs[i], err = toSexp(env, a); err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
	}
	res, err := env.Apply(fn, sargs)
	if err != nil {
		return nil, parseZygomysError(err)
	}
	return fromSexp(res)
}
