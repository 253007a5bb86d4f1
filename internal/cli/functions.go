package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) functionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the available functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFunctions(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *app) runFunctions(ctx context.Context, w io.Writer) error {
	reg, err := a.registry(ctx)
	if err != nil {
		return err
	}
	current := ""
	for _, id := range reg.Identifiers() {
		ns, name, _ := strings.Cut(id, "/")
		if ns != current {
			fmt.Fprintln(w, styleTitle.Render(ns))
			current = ns
		}
		fmt.Fprintf(w, "  %s\n", name)
	}
	return nil
}
