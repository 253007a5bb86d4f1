// Package cli implements the nodal command-line interface.
//
// Commands load a JSON document, render nodes with the builtin function
// libraries plus any Lisp libraries named in nodal.toml, and export or
// serve the results. Every command accepts --config and --verbose (-v);
// the logger travels in the command's context.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chazu/nodal/internal/config"
	"github.com/chazu/nodal/pkg/document"
	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/function/builtins"
	"github.com/chazu/nodal/pkg/function/lisp"
	"github.com/chazu/nodal/pkg/graph"
	"github.com/chazu/nodal/pkg/kernel/sdfx"
)

// Version is reported by --version.
var Version = "dev"

// app holds state shared by all commands once the root's pre-run has
// loaded configuration.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	kernel *sdfx.Kernel
}

// Execute runs the nodal CLI.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{kernel: sdfx.New()}

	root := &cobra.Command{
		Use:           "nodal",
		Short:         "Nodal evaluates node-graph documents",
		Long:          `Nodal loads node-graph documents, renders their nodes frame by frame and exports the results.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "configuration file (default ./"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(a.renderCommand())
	root.AddCommand(a.graphCommand())
	root.AddCommand(a.validateCommand())
	root.AddCommand(a.functionsCommand())
	root.AddCommand(a.serveCommand())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.LogLevel()
	if a.verbose {
		level = log.DebugLevel
	}
	logger := newLogger(os.Stderr, level, cfg.LogFormatter())
	cmd.SetContext(log.WithContext(cmd.Context(), logger))
	return nil
}

// registry returns the builtin libraries plus the configured Lisp
// libraries.
func (a *app) registry(ctx context.Context) (*function.Registry, error) {
	logger := log.FromContext(ctx)
	reg := builtins.NewRegistry(a.kernel)
	for _, lc := range a.cfg.Lisp.Libraries {
		lib, err := lisp.LoadFile(lc.Namespace, lc.Path, lisp.WithTimeout(a.cfg.Lisp.Timeout.Duration))
		if err != nil {
			return nil, fmt.Errorf("lisp library %s: %w", lc.Namespace, err)
		}
		reg.Register(lib)
		logger.Debug("Loaded lisp library", "namespace", lc.Namespace, "functions", len(lib.Names()))
	}
	return reg, nil
}

func (a *app) loadDocument(ctx context.Context, path string) (*graph.Library, error) {
	prog := newProgress(log.FromContext(ctx))
	lib, err := document.LoadFile(path)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Loaded %s", lib.Name()))
	return lib, nil
}
