package server

import (
	"encoding/json"
	"net/http"

	"github.com/amanmcp/amanmcp-flat/internal/amanerrors"
)

// errorResponse is the JSON envelope every error path returns.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Error: message, RequestID: requestIDFrom(r.Context())})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already sent at this point; nothing left to do but
		// let the client see a truncated body.
		return
	}
}

// mapSearchError translates an error from internal/searchapi into an HTTP
// status and message, mirroring internal/mcpserver's MapError but with
// status codes in place of a bare error string.
func mapSearchError(err error) (status int, message string) {
	var ae *amanerrors.Error
	if e, ok := err.(*amanerrors.Error); ok {
		ae = e
	}
	if ae == nil {
		if u, ok := err.(interface{ Unwrap() error }); ok {
			if e, ok := u.Unwrap().(*amanerrors.Error); ok {
				ae = e
			}
		}
	}
	if ae == nil {
		return http.StatusInternalServerError, "internal search error"
	}

	switch ae.Category {
	case amanerrors.CategoryConfig:
		return http.StatusInternalServerError, "configuration error: " + ae.Message
	case amanerrors.CategoryInvalidArgument:
		return http.StatusBadRequest, ae.Message
	case amanerrors.CategoryEmbedding:
		return http.StatusBadGateway, "embedding backend request failed"
	case amanerrors.CategorySubprocess:
		return http.StatusInternalServerError, "search subprocess failed"
	default:
		return http.StatusInternalServerError, "internal search error"
	}
}
