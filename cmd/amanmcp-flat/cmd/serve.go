package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amanmcp/amanmcp-flat/internal/logging"
	"github.com/amanmcp/amanmcp-flat/internal/mcpserver"
	"github.com/amanmcp/amanmcp-flat/internal/query"
	"github.com/amanmcp/amanmcp-flat/internal/server"
)

func newServeCmd() *cobra.Command {
	var httpAddr string
	var mcpOnly bool
	var httpOnly bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve search over MCP (stdio) and HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if mcpOnly {
				// The MCP stdio transport owns stdout; any stray write
				// (including via stderr, if a supervisor merges the two
				// streams) can be mistaken for protocol traffic, so this
				// mode logs to file only, overriding the root command's
				// stderr-inclusive logger.
				mcpCleanup, err := mcpLogSetup()
				if err != nil {
					return err
				}
				defer mcpCleanup()
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var embedder query.Embedder
			if client := buildEmbedder(cfg); client != nil {
				embedder = client
			}

			logger := slog.Default()

			g, gctx := errgroup.WithContext(ctx)

			if !httpOnly {
				mcpSrv := mcpserver.NewServer(cfg, embedder, logger)
				g.Go(func() error { return mcpSrv.Serve(gctx) })
			}
			if !mcpOnly {
				httpSrv := server.NewServer(cfg, embedder, logger)
				g.Go(func() error { return httpSrv.ListenAndServe(gctx, httpAddr) })
			}

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8085", "address the HTTP server listens on")
	cmd.Flags().BoolVar(&mcpOnly, "mcp-only", false, "serve only the MCP (stdio) surface")
	cmd.Flags().BoolVar(&httpOnly, "http-only", false, "serve only the HTTP surface")

	return cmd
}

// mcpLogSetup switches to file-only logging for the duration of an
// MCP (stdio) server, at the level selected by --debug.
func mcpLogSetup() (func(), error) {
	if debugMode {
		return logging.SetupMCPModeWithLevel("debug")
	}
	return logging.SetupMCPModeWithLevel("info")
}
