// Package document reads and writes node libraries as JSON.
//
// A document holds the library name, the prototypes its nodes extend and
// the root network. Every node is stored in full; a "prototype" reference
// only records what the node extends, so editors can revert ports to the
// prototype's values. Port values use their text form ("12", "1.5",
// "true", "10,20", "#ff0000ff").
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chazu/nodal/pkg/graph"
)

// FormatVersion is the document format written by Save.
const FormatVersion = 1

var (
	// ErrUnsupportedVersion is returned for documents of another format version.
	ErrUnsupportedVersion = errors.New("unsupported format version")

	// ErrUnknownPrototype is returned when a node names a prototype the
	// document does not define.
	ErrUnknownPrototype = errors.New("unknown prototype")

	// ErrInvalidDocument is returned when the loaded tree fails validation.
	ErrInvalidDocument = errors.New("invalid document")
)

type fileJSON struct {
	FormatVersion int        `json:"formatVersion"`
	Name          string     `json:"name"`
	Prototypes    []nodeJSON `json:"prototypes,omitempty"`
	Root          nodeJSON   `json:"root"`
}

type nodeJSON struct {
	Name          string             `json:"name"`
	Prototype     string             `json:"prototype,omitempty"`
	Description   string             `json:"description,omitempty"`
	Image         string             `json:"image,omitempty"`
	Function      string             `json:"function,omitempty"`
	Handle        string             `json:"handle,omitempty"`
	Position      string             `json:"position,omitempty"`
	OutputType    string             `json:"outputType,omitempty"`
	OutputRange   string             `json:"outputRange,omitempty"`
	RenderedChild string             `json:"renderedChild,omitempty"`
	Ports         []portJSON         `json:"ports,omitempty"`
	Children      []nodeJSON         `json:"children,omitempty"`
	Connections   []graph.Connection `json:"connections,omitempty"`
}

type portJSON struct {
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Value       string           `json:"value,omitempty"`
	Range       string           `json:"range,omitempty"`
	Widget      string           `json:"widget,omitempty"`
	Label       string           `json:"label,omitempty"`
	Description string           `json:"description,omitempty"`
	Publish     string           `json:"publish,omitempty"` // child.port
	Min         *float64         `json:"min,omitempty"`
	Max         *float64         `json:"max,omitempty"`
	Menu        []graph.MenuItem `json:"menu,omitempty"`
}

// Load decodes a document and validates the resulting tree. Trees with
// validation errors are rejected; warnings are not reported here (see
// graph.Validate).
func Load(r io.Reader) (*graph.Library, error) {
	var f fileJSON
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("document: decode: %w", err)
	}
	if f.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("document: version %d: %w", f.FormatVersion, ErrUnsupportedVersion)
	}

	d := &decoder{prototypes: make(map[string]*graph.Node, len(f.Prototypes))}
	for _, pj := range f.Prototypes {
		p, err := d.node(pj)
		if err != nil {
			return nil, fmt.Errorf("document: prototype %s: %w", pj.Name, err)
		}
		d.prototypes[pj.Name] = p
	}
	root, err := d.node(f.Root)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	if err := graph.Err(graph.Validate(root)); err != nil {
		return nil, fmt.Errorf("document: %w: %w", ErrInvalidDocument, err)
	}
	return graph.NewLibrary(f.Name, root), nil
}

// LoadFile loads the document at path. The library remembers the path so
// relative file references resolve against its directory.
func LoadFile(path string) (*graph.Library, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	defer fh.Close()
	lib, err := Load(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return lib.WithFile(abs), nil
}

// Save encodes lib as an indented document.
func Save(w io.Writer, lib *graph.Library) error {
	e := &encoder{names: make(map[*graph.Node]string), used: make(map[string]bool)}
	f := fileJSON{
		FormatVersion: FormatVersion,
		Name:          lib.Name(),
		Root:          e.node(lib.Root()),
	}
	f.Prototypes = e.prototypes

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("document: encode: %w", err)
	}
	return nil
}

// SaveFile writes lib to path.
func SaveFile(path string, lib *graph.Library) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("document: %w", err)
	}
	if err := Save(fh, lib); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
