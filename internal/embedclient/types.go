package embedclient

import "github.com/amanmcp/amanmcp-flat/internal/fragment"

// Config configures a Client. APIBaseURL and APIKey are read from configuration
// at the point the process-wide singleton is first constructed.
type Config struct {
	APIBaseURL  string
	APIKey      string
	MaxInFlight int
	Timeout     int // seconds; 0 uses DefaultTimeoutSeconds
}

const (
	DefaultMaxInFlight    = 10
	DefaultTimeoutSeconds = 60
)

// request is the OpenAI-compatible embeddings request body (spec §6):
// POST {apiBaseUrl}/embeddings with {model, input}.
type request struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

// response is the OpenAI-compatible embeddings response body: {data:
// [{embedding: [...]}]} in input order.
type response struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// taskPrefix returns the model-specific prompt prefix used to communicate
// task intent to models whose family supports task-conditioned prompts
// (e.g. embeddinggemma). The prefix is prepended whatever the model is;
// the caller still records Task on the resulting fragment regardless
// (spec §4.2, §9).
func taskPrefix(task fragment.Task) string {
	switch task {
	case fragment.TaskRetrievalDocument:
		return "title: none | text: "
	case fragment.TaskRetrievalQuery:
		return "task: search result | query: "
	case fragment.TaskSemanticSimilarity:
		return "task: sentence similarity | query: "
	default:
		return ""
	}
}
