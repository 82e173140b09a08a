// Package mcpserver implements the Model Context Protocol server: exactly
// two tools, ripgrep_search and embedding_search, bridging an MCP client
// (an AI coding assistant) to the lexical and semantic query engines over
// every configured folder and git-repo index.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/amanmcp/amanmcp-flat/internal/config"
	"github.com/amanmcp/amanmcp-flat/internal/query"
	"github.com/amanmcp/amanmcp-flat/pkg/version"
)

const serverName = "amanmcp-flat"

// Server bridges MCP clients to the query engine over the indexes named by
// cfg.
type Server struct {
	mcp      *mcp.Server
	cfg      *config.Config
	embedder query.Embedder
	logger   *slog.Logger
}

// NewServer builds a Server and registers its tools. embedder is nil-safe
// in the sense that embedding_search will simply fail per-call (mapped to a
// clean error) rather than panicking at startup if no embedder is wired.
func NewServer(cfg *config.Config, embedder query.Embedder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		embedder: embedder,
		logger:   logger,
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version.Version,
	}, nil)

	s.registerTools()
	return s
}

// MCPServer returns the underlying SDK server, mainly so callers can attach
// additional transports the SDK supports directly.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Serve runs the server over stdio until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting MCP server", slog.String("transport", "stdio"))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("MCP server stopped with error", slog.Any("error", err))
	}
	return err
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "ripgrep_search",
		Description: "Exact lexical search across every indexed folder and git repo, backed by ripgrep. " +
			"Use for literal strings, symbol names, and regex patterns where you need to see the matching line.",
	}, s.handleRipgrepSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "embedding_search",
		Description: "Semantic search across every indexed folder and git repo, ranked by cosine similarity " +
			"against dense embeddings. Use for conceptual or paraphrased queries where the exact wording is unknown.",
	}, s.handleEmbeddingSearch)
}
