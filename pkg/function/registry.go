package function

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Library is a set of functions sharing a namespace.
type Library interface {
	Namespace() string
	Lookup(name string) (Function, bool)
	Names() []string
}

// Namespace is a Library backed by a map of functions.
type Namespace struct {
	name  string
	funcs map[string]Function
}

// NewNamespace returns a library named name holding funcs.
func NewNamespace(name string, funcs map[string]Function) *Namespace {
	return &Namespace{name: name, funcs: maps.Clone(funcs)}
}

func (ns *Namespace) Namespace() string { return ns.name }

func (ns *Namespace) Lookup(name string) (Function, bool) {
	f, ok := ns.funcs[name]
	return f, ok
}

// Names returns the function names in sorted order.
func (ns *Namespace) Names() []string {
	return slices.Sorted(maps.Keys(ns.funcs))
}

// Registry is a Repository over registered libraries. It is safe for
// concurrent use.
type Registry struct {
	mu   sync.RWMutex
	libs map[string]Library
}

var _ Repository = (*Registry)(nil)

// NewRegistry returns a registry holding libs.
func NewRegistry(libs ...Library) *Registry {
	r := &Registry{libs: make(map[string]Library, len(libs))}
	for _, lib := range libs {
		r.libs[lib.Namespace()] = lib
	}
	return r
}

// Register adds lib, replacing any library with the same namespace.
func (r *Registry) Register(lib Library) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.libs[lib.Namespace()] = lib
}

// Function resolves "namespace/name".
func (r *Registry) Function(id string) (Function, error) {
	ns, name, err := SplitIdentifier(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	lib, ok := r.libs[ns]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("function: %s: unknown namespace: %w", id, ErrFunctionNotFound)
	}
	f, ok := lib.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("function: %s: %w", id, ErrFunctionNotFound)
	}
	return f, nil
}

// Identifiers lists every resolvable identifier in sorted order.
func (r *Registry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for ns, lib := range r.libs {
		for _, name := range lib.Names() {
			ids = append(ids, ns+"/"+name)
		}
	}
	slices.Sort(ids)
	return ids
}
