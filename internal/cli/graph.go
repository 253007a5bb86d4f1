package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/nodal/pkg/export"
)

type graphOpts struct {
	network  string
	svg      string
	detailed bool
}

func (a *app) graphCommand() *cobra.Command {
	opts := graphOpts{network: "/"}

	cmd := &cobra.Command{
		Use:   "graph DOC",
		Short: "Print a network's structure as DOT or render it to SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGraph(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.network, "network", opts.network, "path of the network to export")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "write SVG to this file instead of printing DOT")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include functions and port values in labels")
	return cmd
}

func (a *app) runGraph(ctx context.Context, w io.Writer, docPath string, opts graphOpts) error {
	lib, err := a.loadDocument(ctx, docPath)
	if err != nil {
		return err
	}
	network, err := lib.NodeForPath(opts.network)
	if err != nil {
		return err
	}
	dot := export.ToDOT(network, export.Options{Detailed: opts.detailed})
	if opts.svg == "" {
		_, err := fmt.Fprint(w, dot)
		return err
	}

	svg, err := export.RenderSVG(ctx, dot)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.svg, svg, 0o644); err != nil {
		return err
	}
	printSuccess(w, "Wrote %s", opts.svg)
	return nil
}
