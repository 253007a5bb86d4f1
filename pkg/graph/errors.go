package graph

import "errors"

var (
	// ErrInvalidName is returned when a node name does not match the naming rules.
	ErrInvalidName = errors.New("invalid node name")

	// ErrDuplicateChild is returned when adding a child whose name is taken.
	ErrDuplicateChild = errors.New("duplicate child")

	// ErrDuplicatePort is returned when adding a port whose name is taken.
	ErrDuplicatePort = errors.New("duplicate port")

	// ErrChildNotFound is returned when a referenced child does not exist.
	ErrChildNotFound = errors.New("child not found")

	// ErrPortNotFound is returned when a referenced port does not exist.
	ErrPortNotFound = errors.New("port not found")

	// ErrConnectionNotFound is returned when disconnecting an absent connection.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrInvalidValue is returned when a value does not fit a port's type.
	ErrInvalidValue = errors.New("invalid value")

	// ErrCycle is returned when a set of connections would form a cycle.
	ErrCycle = errors.New("cycle detected")

	// ErrInvalidPath is returned when a node path cannot be resolved.
	ErrInvalidPath = errors.New("invalid path")
)
