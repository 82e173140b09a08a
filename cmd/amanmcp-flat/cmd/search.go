package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amanmcp/amanmcp-flat/internal/cliout"
	"github.com/amanmcp/amanmcp-flat/internal/searchapi"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search configured folders and git repos",
	}

	cmd.AddCommand(newSearchRipgrepCmd())
	cmd.AddCommand(newSearchEmbeddingCmd())
	return cmd
}

func newSearchRipgrepCmd() *cobra.Command {
	var caseSensitive bool
	var maxResults int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ripgrep <pattern>",
		Short: "Exact lexical search, backed by ripgrep",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			results, err := searchapi.Ripgrep(cmd.Context(), cfg, args[0], searchapi.RipgrepOptions{
				CaseSensitive: caseSensitive,
				MaxResults:    maxResults,
			})
			if err != nil {
				return err
			}
			if cliout.JSON(asJSON, cmd.OutOrStdout()) {
				return printJSON(cmd, results)
			}
			printRipgrepTable(cmd, results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "match case exactly")
	cmd.Flags().IntVar(&maxResults, "max-results", searchapi.DefaultMaxResults, "maximum number of results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "force JSON output even on a terminal")
	return cmd
}

func printRipgrepTable(cmd *cobra.Command, results []searchapi.RipgrepResult) {
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no matches")
		return
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOT\tFILE\tLINE\tTEXT")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.IndexRoot, r.FilePath, r.LineNumber, r.LineContent)
	}
	_ = tw.Flush()
}

func newSearchEmbeddingCmd() *cobra.Command {
	var model string
	var maxResults int
	var extensions []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "embedding <query>",
		Short: "Semantic search, ranked by cosine similarity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client := buildEmbedder(cfg)
			if client == nil {
				return fmt.Errorf("embedding search is unavailable: no apiBaseUrl configured")
			}

			if model == "" {
				model = cfg.EmbeddingModel
			}

			results, err := searchapi.Embedding(cmd.Context(), cfg, client, args[0], searchapi.EmbeddingOptions{
				Model:      model,
				MaxResults: maxResults,
				Extensions: extensions,
			})
			if err != nil {
				return err
			}
			if cliout.JSON(asJSON, cmd.OutOrStdout()) {
				return printJSON(cmd, results)
			}
			printEmbeddingTable(cmd, results)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "embedding model to query; defaults to the configured embeddingModel")
	cmd.Flags().IntVar(&maxResults, "max-results", searchapi.DefaultMaxResults, "maximum number of results")
	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "restrict results to these file extensions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "force JSON output even on a terminal")
	return cmd
}

func printEmbeddingTable(cmd *cobra.Command, results []searchapi.EmbeddingResult) {
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no matches")
		return
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "SIMILARITY\tROOT\tFILE\tLINES")
	for _, r := range results {
		fmt.Fprintf(tw, "%.4f\t%s\t%s\t%d-%d\n", r.Similarity, r.IndexRoot, r.FilePath, r.StartLine, r.EndLine)
	}
	_ = tw.Flush()
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
