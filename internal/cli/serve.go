package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowedit/internal/metrics"
	"github.com/matzehuels/flowedit/internal/server"
	"github.com/matzehuels/flowedit/pkg/editor"
)

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve editing sessions over HTTP",
		Long: `Serve editing sessions over a JSON API for a browser UI.

Each client creates its own session with POST /api/v1/sessions and edits it
through the routes below that path. Prometheus metrics are exposed on /metrics.`,
		Example: `  flowedit serve
  flowedit serve --addr :9000 --origin https://editor.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("origin") {
				origins = c.Config.Server.AllowedOrigins
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			metrics.New(reg).Install()

			srv := server.New(server.Options{
				Registry:       editor.NewRegistry(c.Config.EditorOptions(logger)),
				Logger:         logger,
				AllowedOrigins: origins,
				Gatherer:       reg,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "allowed CORS origin (repeatable)")
	return cmd
}
