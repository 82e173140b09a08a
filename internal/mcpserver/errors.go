package mcpserver

import (
	"errors"
	"fmt"

	"github.com/amanmcp/amanmcp-flat/internal/amanerrors"
)

// toolError is a tool-facing error: plain text, no JSON-RPC machinery,
// since the two tools here return it as a Go error and the MCP SDK turns
// any returned error into a tool-call failure for the client.
type toolError struct {
	message string
}

func (e *toolError) Error() string {
	return e.message
}

// NewInvalidParamsError reports a client-supplied argument problem.
func NewInvalidParamsError(msg string) error {
	return &toolError{message: msg}
}

// NewEmbeddingUnavailableError reports that embedding_search was called
// with no embedding client configured.
func NewEmbeddingUnavailableError() error {
	return &toolError{message: "embedding search is unavailable: no embedding backend is configured"}
}

// MapError turns an internal amanerrors.Error (or any other error) into a
// concise, client-safe message. Categories that carry useful detail for an
// AI client (a configuration problem, an invalid argument) are rendered
// with that detail; everything else, a corrupt index included, collapses to
// a generic message so internal paths and causes never leak to the client.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var ae *amanerrors.Error
	if errors.As(err, &ae) {
		switch ae.Category {
		case amanerrors.CategoryConfig:
			return &toolError{message: fmt.Sprintf("configuration error: %s", ae.Message)}
		case amanerrors.CategoryInvalidArgument:
			return &toolError{message: ae.Message}
		case amanerrors.CategoryEmbedding:
			return &toolError{message: "embedding backend request failed"}
		case amanerrors.CategorySubprocess:
			return &toolError{message: "search subprocess failed"}
		default:
			return &toolError{message: "internal search error"}
		}
	}

	return &toolError{message: "internal search error"}
}
