package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/graph"
)

func (a *app) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate DOC",
		Short: "Check a document's structure and function references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func (a *app) runValidate(ctx context.Context, w io.Writer, docPath string) error {
	lib, err := a.loadDocument(ctx, docPath)
	if err != nil {
		return err
	}
	reg, err := a.registry(ctx)
	if err != nil {
		return err
	}

	for _, f := range graph.Validate(lib.Root()) {
		printWarning(w, "%s: %s", f.Path, f.Message)
	}
	missing := unresolvedFunctions(lib.Root(), "/", reg)
	for _, m := range missing {
		printWarning(w, "%s", m)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%d unresolved function(s)", len(missing))
	}
	printSuccess(w, "%s is valid", docPath)
	printDetail(w, "library", lib.Name())
	printDetail(w, "nodes", fmt.Sprint(countNodes(lib.Root())))
	return nil
}

// unresolvedFunctions lists the nodes under n whose function the
// repository cannot resolve. Networks rendering a child are skipped.
func unresolvedFunctions(n *graph.Node, path string, repo function.Repository) []string {
	var out []string
	for _, c := range n.Children() {
		p := graph.JoinPath(path, c.Name())
		if c.HasChildren() {
			out = append(out, unresolvedFunctions(c, p, repo)...)
			if c.HasRenderedChild() {
				continue
			}
		}
		if _, err := repo.Function(c.Function()); err != nil {
			switch {
			case errors.Is(err, function.ErrFunctionNotFound), errors.Is(err, function.ErrInvalidIdentifier):
				out = append(out, fmt.Sprintf("%s: %v", p, err))
			}
		}
	}
	return out
}

func countNodes(n *graph.Node) int {
	count := 0
	for _, c := range n.Children() {
		count += 1 + countNodes(c)
	}
	return count
}
