package graph

import (
	"strings"
	"testing"
)

func TestValidateCleanNetwork(t *testing.T) {
	net := Must(makeNetwork(t).Connect("x", "y", "a"))
	net = Must(net.WithRenderedChildName("y"))
	if errs := Validate(net); len(errs) != 0 {
		t.Errorf("expected no findings, got %v", errs)
	}
	if Err(Validate(net)) != nil {
		t.Error("Err should be nil for a clean tree")
	}
}

func TestValidateWarnsWithoutRenderedChild(t *testing.T) {
	errs := Validate(makeNetwork(t))
	if len(errs) != 1 || errs[0].Severity != SeverityWarning {
		t.Fatalf("expected one warning, got %v", errs)
	}
	if Err(errs) != nil {
		t.Error("warnings should not produce an error")
	}
}

func TestValidateFindsCycle(t *testing.T) {
	net := Must(makeNetwork(t).Connect("x", "y", "a"))
	net = Must(net.Connect("y", "x", "a"))
	net = Must(net.WithRenderedChildName("x"))

	err := Err(Validate(net))
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("expected cycle error, got %v", err)
	}
}

func TestValidateNested(t *testing.T) {
	inner := Must(makeNetwork(t).WithName("inner"))
	inner = Must(inner.Connect("x", "y", "a"))
	inner = Must(inner.Connect("y", "x", "b"))
	inner = Must(inner.WithRenderedChildName("y"))
	root := Must(Root().WithName("root"))
	root = Must(root.WithChildAdded(inner))
	root = Must(root.WithRenderedChildName("inner"))

	errs := Validate(root)
	if len(errs) != 1 || errs[0].Path != "/inner" {
		t.Fatalf("expected one finding at /inner, got %v", errs)
	}
}

func TestValidatePublishedPort(t *testing.T) {
	net := Must(makeNetwork(t).WithRenderedChildName("x"))
	net = Must(net.WithInputAdded(FloatPort("size", 0).WithChildReference("gone", "a")))
	if err := Err(Validate(net)); err == nil {
		t.Error("expected an error for a dangling published port")
	}
}
