// Package graph defines the node graph data model for nodal.
//
// A Node is an immutable description of a computation: a function
// identifier, typed input ports, and optionally a network of child nodes
// wired together by connections. Every mutator returns a new Node and leaves
// the receiver untouched; unaffected children, ports and connections are
// shared between the old and new values.
//
// All nodes ultimately extend a single sentinel returned by Root.
package graph
