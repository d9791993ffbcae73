package cli

import (
	"github.com/spf13/cobra"

	"github.com/jereyes4/Wahl-Chains/pkg/buildinfo"
	"github.com/jereyes4/Wahl-Chains/pkg/cache"
	"github.com/jereyes4/Wahl-Chains/pkg/server"
)

// apiKeyScope separates API cache entries from those written by the CLI.
const apiKeyScope = "api:"

// serveCommand starts the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis engine over HTTP",
		Long: `Serve the determinant, projection, blow-down and analysis operations as a JSON
API. Results are cached in the configured backend under their own key scope.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Serve.Addr
			}
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()
			runner.Keyer = cache.NewScopedKeyer(runner.Keyer, apiKeyScope)

			srv := server.New(runner, loggerFromContext(ctx), server.Options{
				Version:      buildinfo.Resolved(),
				ReadTimeout:  cfg.Serve.ReadTimeout,
				WriteTimeout: cfg.Serve.WriteTimeout,
				MaxCurves:    cfg.Serve.MaxCurves,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
