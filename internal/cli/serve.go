package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/vpypenode/pkg/server"
)

// serveCommand serves the nodes over HTTP until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the nodes over HTTP",
		Long: `Serve the nodes over HTTP until interrupted.

Endpoints:
  GET  /healthz
  GET  /nodes
  GET  /nodes/{name}
  POST /nodes/{name}/run    {"params": {...}, "no_cache": false}
  POST /nodes/{name}/plan   {"params": {...}}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closer := fileLogger(c.Logger, cmd.ErrOrStderr(), c.Config.Log)
			defer closer.Close()
			c.Logger = logger

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			cfg := c.Config.Serve
			srv := server.New(runner, logger,
				server.WithMaxBodyBytes(cfg.MaxBodyBytes),
				server.WithReadTimeout(cfg.ReadTimeout),
			)
			return srv.ListenAndServe(cmd.Context(), cfg.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default serve.addr, :8188)")
	return cmd
}
