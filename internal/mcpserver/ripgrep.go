package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amanmcp/amanmcp-flat/internal/searchapi"
)

// RipgrepSearchInput is the ripgrep_search tool's input schema.
type RipgrepSearchInput struct {
	Pattern       string `json:"pattern" jsonschema:"the literal string or regex pattern to search for"`
	CaseSensitive bool   `json:"caseSensitive,omitempty" jsonschema:"match case exactly; default false (case-insensitive)"`
	MaxResults    int    `json:"maxResults,omitempty" jsonschema:"maximum number of results to return; default 20, capped at 200"`
}

// RipgrepSearchOutput is the ripgrep_search tool's output schema.
type RipgrepSearchOutput struct {
	Results []RipgrepHit `json:"results" jsonschema:"matching lines, ordered by file path then line number"`
}

// RipgrepHit is a single ripgrep_search match.
type RipgrepHit struct {
	IndexRoot   string `json:"indexRoot" jsonschema:"the configured folder or git repo this match came from"`
	IndexKind   string `json:"indexKind" jsonschema:"folder or git-repo"`
	FilePath    string `json:"filePath"`
	LineNumber  int    `json:"lineNumber"`
	LineContent string `json:"lineContent"`
}

func (s *Server) handleRipgrepSearch(ctx context.Context, _ *mcp.CallToolRequest, input RipgrepSearchInput) (
	*mcp.CallToolResult,
	RipgrepSearchOutput,
	error,
) {
	if input.Pattern == "" {
		return nil, RipgrepSearchOutput{}, NewInvalidParamsError("pattern is required")
	}

	results, err := searchapi.Ripgrep(ctx, s.cfg, input.Pattern, searchapi.RipgrepOptions{
		CaseSensitive: input.CaseSensitive,
		MaxResults:    input.MaxResults,
	})
	if err != nil {
		return nil, RipgrepSearchOutput{}, MapError(err)
	}

	output := RipgrepSearchOutput{Results: make([]RipgrepHit, 0, len(results))}
	for _, r := range results {
		output.Results = append(output.Results, RipgrepHit{
			IndexRoot:   r.IndexRoot,
			IndexKind:   r.IndexKind,
			FilePath:    r.FilePath,
			LineNumber:  r.LineNumber,
			LineContent: r.LineContent,
		})
	}

	return nil, output, nil
}
