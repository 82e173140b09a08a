// Package cmd provides the amanmcp-flat CLI commands.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/amanmcp/amanmcp-flat/internal/logging"
	"github.com/amanmcp/amanmcp-flat/pkg/version"
)

var (
	debugMode  bool
	logFile    string
	noFileLog  bool
	logCleanup func()
)

// NewRootCmd builds the root command and attaches every subcommand.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amanmcp-flat",
		Short: "Local-first code and document search engine",
		Long: `amanmcp-flat indexes configured folders and git repos on disk, keeps
those indexes current with a watch loop, and serves lexical (ripgrep) and
semantic (embedding) search over them via MCP and HTTP.`,
		Version:      version.Version,
		SilenceUsage: true,
	}

	cmd.SetVersionTemplate("amanmcp-flat version {{.Version}}\n")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "path to the rotating log file (default: ~/.amanmcp-flat/logs/server.log)")
	cmd.PersistentFlags().BoolVar(&noFileLog, "no-file-log", false, "log to stderr only, skip the rotating log file")
	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		if noFileLog {
			level := slog.LevelInfo
			if debugMode {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		}

		lcfg := logging.DefaultConfig()
		if debugMode {
			lcfg = logging.DebugConfig()
		}
		if logFile != "" {
			lcfg.FilePath = logFile
		}

		logger, cleanup, err := logging.Setup(lcfg)
		if err != nil {
			// A broken log directory must not stop the command from
			// running; fall back to stderr only.
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil)))
			return nil
		}
		slog.SetDefault(logger)
		logCleanup = cleanup
		return nil
	}
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
		return nil
	}

	cmd.AddCommand(newIndexAllCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newShowIndexesCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
