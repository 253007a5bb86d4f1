package document

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/nodal/pkg/graph"
)

func sampleLibrary(t *testing.T) *graph.Library {
	t.Helper()
	size, err := graph.FloatPort("size", 10).WithValue(25.5)
	if err != nil {
		t.Fatalf("WithValue: %v", err)
	}
	min := 0.0
	size = size.WithMinimum(&min).WithWidget(graph.WidgetAngle).WithLabel("Size")

	shape := graph.Must(graph.Root().WithName("shape")).
		WithFunction("vector/rect").
		WithPosition(graph.Point{X: 10, Y: 20}).
		WithOutputType(graph.GeometryType).
		WithDescription("a rectangle")
	shape = graph.Must(shape.WithInputAdded(graph.PointPort("position", graph.Point{X: 1, Y: 2})))
	shape = graph.Must(shape.WithInputAdded(size))
	shape = graph.Must(shape.WithInputAdded(graph.ColorPort("fill", graph.Color{R: 1, A: 1})))

	list := graph.NewPort("shapes", graph.ListType).WithRange(graph.RangeList).
		WithMenuItems([]graph.MenuItem{{Key: "a", Label: "A"}})
	count := graph.Must(graph.Root().WithName("count")).
		WithFunction("list/count").
		WithOutputType(graph.IntType)
	count = graph.Must(count.WithInputAdded(list))

	root := graph.Must(graph.Root().WithName("root"))
	root = graph.Must(root.WithChildAdded(shape))
	root = graph.Must(root.WithChildAdded(count))
	root = graph.Must(root.Connect("shape", "count", "shapes"))
	root = graph.Must(root.WithRenderedChildName("count"))
	root = graph.Must(root.WithInputAdded(graph.FloatPort("size", 0).WithChildReference("shape", "size")))
	return graph.NewLibrary("sample", root)
}

func roundTrip(t *testing.T, lib *graph.Library) *graph.Library {
	t.Helper()
	var buf bytes.Buffer
	if err := Save(&buf, lib); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v\n%s", err, buf.String())
	}
	return got
}

func TestRoundTrip(t *testing.T) {
	lib := sampleLibrary(t)
	got := roundTrip(t, lib)
	if got.Name() != "sample" {
		t.Errorf("name = %q", got.Name())
	}
	if !got.Root().Equal(lib.Root()) {
		t.Errorf("root changed in round trip:\n got %v\nwant %v", got.Root(), lib.Root())
	}
}

func TestRoundTripPrototypes(t *testing.T) {
	base := graph.Must(graph.Root().WithName("base")).WithFunction("math/add")
	base = graph.Must(base.WithInputAdded(graph.IntPort("value", 7)))
	a := graph.Must(base.Extend().WithName("a"))
	b := graph.Must(base.Extend().WithName("b"))
	root := graph.Must(graph.Must(graph.Root().WithName("root")).WithChildAdded(a))
	root = graph.Must(root.WithChildAdded(b))

	got := roundTrip(t, graph.NewLibrary("protos", root))
	ga, gb := got.Root().Child("a"), got.Root().Child("b")
	if ga.Prototype() == nil || ga.Prototype() != gb.Prototype() {
		t.Fatal("nodes sharing a prototype do not share it after loading")
	}
	p, ok := ga.Prototype().Input("value")
	if ga.Prototype().Name() != "base" || !ok || p.IntValue() != 7 {
		t.Errorf("prototype = %v", ga.Prototype())
	}
}

func TestLoadValidates(t *testing.T) {
	src := `{
  "formatVersion": 1,
  "name": "bad",
  "root": {
    "name": "root",
    "children": [{"name": "a"}, {"name": "b", "ports": [{"name": "in", "type": "int"}]}],
    "connections": [{"output": "a", "input": "b", "port": "in"}, {"output": "b", "input": "a", "port": "missing"}]
  }
}`
	_, err := Load(strings.NewReader(src))
	if !errors.Is(err, graph.ErrPortNotFound) && !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("err = %v, want a port or validation error", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"version", `{"formatVersion": 2, "root": {"name": "root"}}`, ErrUnsupportedVersion},
		{"prototype", `{"formatVersion": 1, "root": {"name": "root", "prototype": "nope"}}`, ErrUnknownPrototype},
		{"name", `{"formatVersion": 1, "root": {"name": "bad name"}}`, graph.ErrInvalidName},
		{"value", `{"formatVersion": 1, "root": {"name": "root", "ports": [{"name": "n", "type": "int", "value": "x"}]}}`, graph.ErrInvalidValue},
		{"rendered child", `{"formatVersion": 1, "root": {"name": "root", "renderedChild": "ghost"}}`, graph.ErrChildNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.src)); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := SaveFile(path, sampleLibrary(t)); err != nil {
		t.Fatal(err)
	}
	lib, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if lib.File() != path || lib.BaseDir() != filepath.Dir(path) {
		t.Errorf("file = %q, base dir = %q", lib.File(), lib.BaseDir())
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
}
