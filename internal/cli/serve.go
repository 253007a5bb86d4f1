package cli

import (
	"github.com/spf13/cobra"

	"github.com/chazu/nodal/internal/server"
)

func (a *app) serveCommand() *cobra.Command {
	var (
		addr        string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "serve DOC",
		Short: "Serve renders of a document over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lib, err := a.loadDocument(ctx, args[0])
			if err != nil {
				return err
			}
			reg, err := a.registry(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			if concurrency <= 0 {
				concurrency = a.cfg.Render.Workers
			}
			s := server.New(ctx, lib, reg,
				server.WithConcurrency(concurrency),
				server.WithFrame(a.cfg.Render.Frame))
			return s.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum simultaneous renders (default render.workers)")
	return cmd
}
