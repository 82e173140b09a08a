// Package server implements the HTTP/JSON adapter: an external
// collaborator surface over the same lexical and semantic search engine
// the MCP adapter exposes, for callers that speak plain HTTP rather than
// MCP.
package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/amanmcp/amanmcp-flat/internal/config"
	"github.com/amanmcp/amanmcp-flat/internal/query"
)

// Server serves the search HTTP surface over every index named by cfg.
type Server struct {
	cfg      *config.Config
	embedder query.Embedder
	logger   *slog.Logger
	mux      *http.ServeMux
}

// NewServer builds a Server and registers its routes.
func NewServer(cfg *config.Config, embedder query.Embedder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{cfg: cfg, embedder: embedder, logger: logger, mux: http.NewServeMux()}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/{$}", s.withMethod(http.MethodGet, s.handleRoot))
	s.mux.HandleFunc("/openapi.json", s.withMethod(http.MethodGet, s.handleOpenAPI))
	s.mux.HandleFunc("/search/ripgrep", s.withMethod(http.MethodPost, s.requireAuth(s.handleRipgrepSearch)))
	s.mux.HandleFunc("/search/embedding", s.withMethod(http.MethodPost, s.requireAuth(s.handleEmbeddingSearch)))
}

// withMethod enforces that a route only answers to one HTTP method,
// replying 405 JSON for any other (OPTIONS is intercepted earlier by
// withCORS and never reaches here).
func (s *Server) withMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		next(w, r)
	}
}

// Handler returns the fully middleware-wrapped http.Handler: CORS, request
// correlation IDs, and access logging, around the route mux. Unknown paths
// get a JSON 404 via withJSONNotFound since net/http's ServeMux default is
// plain text.
func (s *Server) Handler() http.Handler {
	return s.withLogging(s.withCORS(s.withJSONNotFound(s.mux)))
}

// ListenAndServe runs the HTTP server on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", slog.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

type ctxKey int

const requestIDKey ctxKey = 0

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-Id", requestID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.logger.Info("request",
			slog.String("requestId", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withJSONNotFound wraps next so that a request whose path matches no
// registered route gets a JSON 404 body instead of net/http's default
// plain-text one. A wrong method on an existing path passes through to
// withMethod, which answers with a JSON 405.
func (s *Server) withJSONNotFound(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, pattern := s.mux.Handler(r)
		if pattern == "" {
			writeError(w, r, http.StatusNotFound, "not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIKey == "" {
			writeError(w, r, http.StatusInternalServerError, "server has no apiKey configured")
			return
		}

		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			writeError(w, r, http.StatusUnauthorized, "missing or malformed Authorization header")
			return
		}

		token := header[len(prefix):]
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.APIKey)) != 1 {
			writeError(w, r, http.StatusUnauthorized, "invalid API key")
			return
		}

		next(w, r)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"name":    "amanmcp-flat",
		"openapi": "/openapi.json",
	})
}
