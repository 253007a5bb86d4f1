package graph

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Library is an immutable snapshot of a document: a root network plus the
// file it was loaded from. Relative file paths on ports resolve against the
// file's directory.
type Library struct {
	name string
	root *Node
	file string
}

// NewLibrary returns a library named name with the given root network.
func NewLibrary(name string, root *Node) *Library {
	return &Library{name: name, root: root}
}

func (l *Library) Name() string { return l.name }
func (l *Library) Root() *Node  { return l.root }
func (l *Library) File() string { return l.file }

// BaseDir returns the directory of the library file, or "" if unsaved.
func (l *Library) BaseDir() string {
	if l.file == "" {
		return ""
	}
	return filepath.Dir(l.file)
}

// WithRoot returns a copy using root as the root network.
func (l *Library) WithRoot(root *Node) *Library {
	c := *l
	c.root = root
	return &c
}

// WithFile returns a copy associated with file.
func (l *Library) WithFile(file string) *Library {
	c := *l
	c.file = file
	return &c
}

// NodeForPath resolves an absolute "/"-delimited path. "/" is the root.
func (l *Library) NodeForPath(path string) (*Node, error) {
	return NodeForPath(l.root, path)
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

// NodeForPath resolves path starting at root.
func NodeForPath(root *Node, path string) (*Node, error) {
	names, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	n := root
	for _, name := range names {
		child := n.Child(name)
		if child == nil {
			return nil, fmt.Errorf("graph: path %s: %s: %w", path, name, ErrChildNotFound)
		}
		n = child
	}
	return n, nil
}

// SplitPath returns the child names along an absolute path.
func SplitPath(path string) ([]string, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("graph: path %q is not absolute: %w", path, ErrInvalidPath)
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, nil
	}
	names := strings.Split(trimmed, "/")
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("graph: path %q has an empty segment: %w", path, ErrInvalidPath)
		}
	}
	return names, nil
}

// JoinPath returns the path of the named child under parent.
func JoinPath(parent, name string) string {
	if parent == "/" || parent == "" {
		return "/" + name
	}
	return strings.TrimSuffix(parent, "/") + "/" + name
}

// ParentPath returns the parent path and the last name of path.
func ParentPath(path string) (parent, name string, err error) {
	names, err := SplitPath(path)
	if err != nil {
		return "", "", err
	}
	if len(names) == 0 {
		return "", "", fmt.Errorf("graph: root has no parent: %w", ErrInvalidPath)
	}
	return "/" + strings.Join(names[:len(names)-1], "/"), names[len(names)-1], nil
}
