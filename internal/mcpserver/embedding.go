package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amanmcp/amanmcp-flat/internal/searchapi"
)

// EmbeddingSearchInput is the embedding_search tool's input schema.
type EmbeddingSearchInput struct {
	Query      string   `json:"query" jsonschema:"natural-language or conceptual description of what to find"`
	MaxResults int      `json:"maxResults,omitempty" jsonschema:"maximum number of results to return; default 20, capped at 200"`
	Model      string   `json:"model,omitempty" jsonschema:"embedding model to query against; defaults to the configured embeddingModel"`
	Extensions []string `json:"extensions,omitempty" jsonschema:"restrict results to these file extensions, e.g. ['.go', '.md']"`
}

// EmbeddingSearchOutput is the embedding_search tool's output schema.
type EmbeddingSearchOutput struct {
	Results []EmbeddingHit `json:"results" jsonschema:"matching fragments, ranked by cosine similarity descending"`
}

// EmbeddingHit is a single embedding_search match.
type EmbeddingHit struct {
	IndexRoot  string  `json:"indexRoot" jsonschema:"the configured folder or git repo this match came from"`
	IndexKind  string  `json:"indexKind" jsonschema:"folder or git-repo"`
	FilePath   string  `json:"filePath"`
	StartLine  int     `json:"startLine"`
	EndLine    int     `json:"endLine"`
	Similarity float32 `json:"similarity"`
}

func (s *Server) handleEmbeddingSearch(ctx context.Context, _ *mcp.CallToolRequest, input EmbeddingSearchInput) (
	*mcp.CallToolResult,
	EmbeddingSearchOutput,
	error,
) {
	if input.Query == "" {
		return nil, EmbeddingSearchOutput{}, NewInvalidParamsError("query is required")
	}
	if s.embedder == nil {
		return nil, EmbeddingSearchOutput{}, NewEmbeddingUnavailableError()
	}

	model := input.Model
	if model == "" {
		model = s.cfg.EmbeddingModel
	}
	if model == "" {
		return nil, EmbeddingSearchOutput{}, NewInvalidParamsError("no embedding model configured or supplied")
	}

	results, err := searchapi.Embedding(ctx, s.cfg, s.embedder, input.Query, searchapi.EmbeddingOptions{
		Model:      model,
		MaxResults: input.MaxResults,
		Extensions: input.Extensions,
	})
	if err != nil {
		return nil, EmbeddingSearchOutput{}, MapError(err)
	}

	output := EmbeddingSearchOutput{Results: make([]EmbeddingHit, 0, len(results))}
	for _, r := range results {
		output.Results = append(output.Results, EmbeddingHit{
			IndexRoot:  r.IndexRoot,
			IndexKind:  r.IndexKind,
			FilePath:   r.FilePath,
			StartLine:  r.StartLine,
			EndLine:    r.EndLine,
			Similarity: r.Similarity,
		})
	}

	return nil, output, nil
}
