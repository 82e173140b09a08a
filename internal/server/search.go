package server

import (
	"encoding/json"
	"net/http"

	"github.com/amanmcp/amanmcp-flat/internal/searchapi"
)

type ripgrepRequest struct {
	Pattern       string `json:"pattern"`
	CaseSensitive bool   `json:"caseSensitive,omitempty"`
	MaxResults    int    `json:"maxResults,omitempty"`
}

type ripgrepResponse struct {
	Results []searchapi.RipgrepResult `json:"results"`
}

func (s *Server) handleRipgrepSearch(w http.ResponseWriter, r *http.Request) {
	var req ripgrepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusInternalServerError, "malformed request body")
		return
	}

	if req.Pattern == "" {
		writeError(w, r, http.StatusBadRequest, "pattern is required")
		return
	}

	results, err := searchapi.Ripgrep(r.Context(), s.cfg, req.Pattern, searchapi.RipgrepOptions{
		CaseSensitive: req.CaseSensitive,
		MaxResults:    req.MaxResults,
	})
	if err != nil {
		status, message := mapSearchError(err)
		writeError(w, r, status, message)
		return
	}

	writeJSON(w, r, http.StatusOK, ripgrepResponse{Results: results})
}

type embeddingRequest struct {
	Query      string   `json:"query"`
	MaxResults int      `json:"maxResults,omitempty"`
	Model      string   `json:"model,omitempty"`
	Extensions []string `json:"extensions,omitempty"`
}

type embeddingResponse struct {
	Results []searchapi.EmbeddingResult `json:"results"`
}

func (s *Server) handleEmbeddingSearch(w http.ResponseWriter, r *http.Request) {
	var req embeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusInternalServerError, "malformed request body")
		return
	}

	if req.Query == "" {
		writeError(w, r, http.StatusBadRequest, "query is required")
		return
	}
	if s.embedder == nil {
		writeError(w, r, http.StatusServiceUnavailable, "embedding search is unavailable: no embedding backend is configured")
		return
	}

	model := req.Model
	if model == "" {
		model = s.cfg.EmbeddingModel
	}
	if model == "" {
		writeError(w, r, http.StatusBadRequest, "no embedding model configured or supplied")
		return
	}

	results, err := searchapi.Embedding(r.Context(), s.cfg, s.embedder, req.Query, searchapi.EmbeddingOptions{
		Model:      model,
		MaxResults: req.MaxResults,
		Extensions: req.Extensions,
	})
	if err != nil {
		status, message := mapSearchError(err)
		writeError(w, r, status, message)
		return
	}

	writeJSON(w, r, http.StatusOK, embeddingResponse{Results: results})
}
