package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amanmcp/amanmcp-flat/internal/fragment"
	"github.com/amanmcp/amanmcp-flat/internal/indexstore"
)

func newShowIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-indexes",
		Short: "List every configured folder and git repo and its index status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			entries, err := indexstore.Resolve(cfg)
			if err != nil {
				return err
			}

			for _, entry := range entries {
				kind := "folder"
				if entry.Kind == fragment.KindGitRepo {
					kind = "git repo"
				}

				if entry.Index == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tnot yet indexed\n", kind, entry.Root)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d files\t%s\n", kind, entry.Root, len(entry.Index.Files), entry.IndexPath)
			}
			return nil
		},
	}
}
