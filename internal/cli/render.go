package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chazu/nodal/pkg/graph"
	"github.com/chazu/nodal/pkg/kernel"
	"github.com/chazu/nodal/pkg/kernel/sdfx"
	"github.com/chazu/nodal/pkg/render"
	"github.com/chazu/nodal/pkg/tessellate"
)

type renderOpts struct {
	node   string  // node path
	frame  float64 // single frame
	frames string  // "first:last" range
	mesh   string  // mesh JSON output file
	cells  int     // mesh resolution
	json   bool    // machine-readable output
}

func (a *app) renderCommand() *cobra.Command {
	opts := renderOpts{node: "/", cells: sdfx.DefaultMeshCells}

	cmd := &cobra.Command{
		Use:   "render DOC",
		Short: "Render a node of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("frame") {
				opts.frame = a.cfg.Render.Frame
			}
			return a.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.node, "node", "n", opts.node, "path of the node to render")
	cmd.Flags().Float64VarP(&opts.frame, "frame", "f", 1, "frame to render")
	cmd.Flags().StringVar(&opts.frames, "frames", "", "render a frame range FIRST:LAST in parallel")
	cmd.Flags().StringVarP(&opts.mesh, "mesh", "m", "", "write meshes of rendered solids to this JSON file")
	cmd.Flags().IntVar(&opts.cells, "cells", opts.cells, "mesh resolution along the longest axis")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print results as JSON")
	return cmd
}

// parseFrames parses "first:last" into the frames it spans.
func parseFrames(s string) ([]float64, error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("invalid frame range %q (want FIRST:LAST)", s)
	}
	first, err := strconv.ParseFloat(lo, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid frame range %q: %w", s, err)
	}
	last, err := strconv.ParseFloat(hi, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid frame range %q: %w", s, err)
	}
	if last < first {
		return nil, fmt.Errorf("invalid frame range %q: last frame before first", s)
	}
	return render.FrameRange(first, last), nil
}

func (a *app) runRender(ctx context.Context, w io.Writer, docPath string, opts *renderOpts) error {
	logger := log.FromContext(ctx)

	lib, err := a.loadDocument(ctx, docPath)
	if err != nil {
		return err
	}
	reg, err := a.registry(ctx)
	if err != nil {
		return err
	}
	node, err := lib.NodeForPath(opts.node)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	var results []render.Result
	if opts.frames != "" {
		frames, err := parseFrames(opts.frames)
		if err != nil {
			return err
		}
		results, err = render.Frames(ctx, lib, reg, opts.node, frames, a.cfg.Render.Workers)
		if err != nil {
			return err
		}
	} else {
		res := render.Once(ctx, lib, reg, opts.node, opts.frame)
		if res.Err != nil {
			return res.Err
		}
		results = []render.Result{res}
	}
	prog.done(fmt.Sprintf("Rendered %s, %d frame(s)", opts.node, len(results)))

	if opts.mesh != "" {
		if err := a.writeMeshes(ctx, opts, meshName(node), results); err != nil {
			return err
		}
	}
	if opts.json {
		return writeResultsJSON(w, results)
	}
	printResults(w, opts.node, results)
	return nil
}

func meshName(n *graph.Node) string {
	if child := n.RenderedChild(); child != nil {
		return child.Name()
	}
	return n.Name()
}

func (a *app) writeMeshes(ctx context.Context, opts *renderOpts, name string, results []render.Result) error {
	prog := newProgress(log.FromContext(ctx))
	var meshes []*kernel.Mesh
	for _, res := range results {
		prefix := name
		if len(results) > 1 {
			prefix = fmt.Sprintf("%s@%s", name, strconv.FormatFloat(res.Frame, 'f', -1, 64))
		}
		m, err := tessellate.Meshes(res.Values, a.kernel, prefix, opts.cells)
		if err != nil {
			return err
		}
		meshes = append(meshes, m...)
	}
	if len(meshes) == 0 {
		return fmt.Errorf("no solids to mesh in %s", opts.node)
	}

	f, err := os.Create(opts.mesh)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(meshes); err != nil {
		f.Close()
		return fmt.Errorf("write meshes: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Wrote %d mesh(es) to %s", len(meshes), opts.mesh))
	return nil
}

type resultJSON struct {
	ID      string  `json:"id"`
	Frame   float64 `json:"frame"`
	Values  []any   `json:"values"`
	Elapsed string  `json:"elapsed"`
}

func writeResultsJSON(w io.Writer, results []render.Result) error {
	out := make([]resultJSON, len(results))
	for i, r := range results {
		out[i] = resultJSON{
			ID:      r.ID.String(),
			Frame:   r.Frame,
			Values:  render.EncodeAll(r.Values),
			Elapsed: r.Elapsed.String(),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printResults(w io.Writer, node string, results []render.Result) {
	for _, r := range results {
		fmt.Fprintf(w, "%s %s\n", styleTitle.Render(node),
			styleDim.Render(fmt.Sprintf("frame %s, %d value(s)", strconv.FormatFloat(r.Frame, 'f', -1, 64), len(r.Values))))
		for i, v := range r.Values {
			fmt.Fprintf(w, "  %s %s\n", styleNumber.Render(fmt.Sprintf("[%d]", i)), formatValue(v))
		}
	}
}

func formatValue(v any) string {
	b, err := json.Marshal(render.Encode(v))
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
