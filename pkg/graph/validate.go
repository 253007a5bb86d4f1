package graph

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ValidationSeverity indicates whether a finding makes a tree unusable or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // tree cannot be rendered reliably
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Path     string             // path of the network holding the problem
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Path, e.Message)
}

// Validate walks the tree under root and reports structural problems:
// invalid or duplicate names, connections to missing children or ports,
// several connections feeding one port, cycles, dangling published ports
// and networks without a rendered child. It never modifies the tree.
func Validate(root *Node) []ValidationError {
	var errs []ValidationError
	validateNetwork(root, "/", &errs)
	return errs
}

// Err combines the error-severity findings into one error, or nil.
func Err(findings []ValidationError) error {
	var result *multierror.Error
	for _, f := range findings {
		if f.Severity == SeverityError {
			result = multierror.Append(result, f)
		}
	}
	return result.ErrorOrNil()
}

func validateNetwork(n *Node, path string, errs *[]ValidationError) {
	report := func(sev ValidationSeverity, format string, args ...any) {
		*errs = append(*errs, ValidationError{Path: path, Message: fmt.Sprintf(format, args...), Severity: sev})
	}

	seen := make(map[string]bool, len(n.children))
	for _, c := range n.children {
		if err := ValidateName(c.name); err != nil {
			report(SeverityError, "child %q has an invalid name", c.name)
		}
		if seen[c.name] {
			report(SeverityError, "duplicate child %s", c.name)
		}
		seen[c.name] = true
	}

	targets := make(map[Connection]bool, len(n.connections))
	for _, conn := range n.connections {
		if !seen[conn.OutputNode] {
			report(SeverityError, "connection %s: unknown output node %s", conn, conn.OutputNode)
		}
		in := n.Child(conn.InputNode)
		switch {
		case in == nil:
			report(SeverityError, "connection %s: unknown input node %s", conn, conn.InputNode)
		case !in.HasInput(conn.InputPort):
			report(SeverityError, "connection %s: unknown port %s", conn, conn.InputPort)
		}
		target := Connection{InputNode: conn.InputNode, InputPort: conn.InputPort}
		if targets[target] {
			report(SeverityError, "port %s.%s has more than one connection", conn.InputNode, conn.InputPort)
		}
		targets[target] = true
	}
	if HasCycles(n.connections) {
		report(SeverityError, "connections form a cycle")
	}

	if n.renderedChildName != "" && !seen[n.renderedChildName] {
		report(SeverityError, "rendered child %s does not exist", n.renderedChildName)
	}
	if len(n.children) > 0 && n.renderedChildName == "" {
		report(SeverityWarning, "network has no rendered child")
	}

	for _, p := range n.inputs {
		if !p.IsPublished() {
			continue
		}
		child, port, ok := p.PublishedTarget()
		c := n.Child(child)
		if !ok || c == nil || !c.HasInput(port) {
			report(SeverityError, "published port %s refers to missing %s", p.name, p.childReference)
		}
	}

	for _, c := range n.children {
		validateNetwork(c, JoinPath(path, c.name), errs)
	}
}
