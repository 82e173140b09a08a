package cmd

import (
	"context"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/amanmcp/amanmcp-flat/internal/logging"
)

func newLogsCmd() *cobra.Command {
	var explicitPath string
	var lines int
	var level string
	var pattern string
	var noColor bool
	var showSource bool
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Tail the rotating server log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := logging.FindLogFile(explicitPath)
			if err != nil {
				return err
			}

			var re *regexp.Regexp
			if pattern != "" {
				re, err = regexp.Compile(pattern)
				if err != nil {
					return err
				}
			}

			viewer := logging.NewViewer(logging.ViewerConfig{
				Level:      level,
				Pattern:    re,
				NoColor:    noColor,
				ShowSource: showSource,
			}, cmd.OutOrStdout())

			entries, err := viewer.Tail(path, lines)
			if err != nil {
				return err
			}
			viewer.Print(entries)

			if !follow {
				return nil
			}

			stream := make(chan logging.LogEntry)
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			go func() { _ = viewer.Follow(ctx, path, stream) }()

			for {
				select {
				case entry := <-stream:
					viewer.Print([]logging.LogEntry{entry})
				case <-ctx.Done():
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&explicitPath, "file", "", "log file to view; defaults to ~/.amanmcp-flat/logs/server.log")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of trailing lines to show")
	cmd.Flags().StringVar(&level, "level", "", "minimum level to show (debug, info, warn, error)")
	cmd.Flags().StringVar(&pattern, "grep", "", "only show lines matching this regular expression")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI color in output")
	cmd.Flags().BoolVar(&showSource, "show-source", false, "show the log source label")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep reading new lines as they are appended")

	return cmd
}
