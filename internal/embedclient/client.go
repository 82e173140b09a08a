// Package embedclient is the task-aware embedding client: single and
// batched calls to an OpenAI-compatible embeddings endpoint, with bounded
// concurrency and a lazily initialized process-wide singleton.
package embedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/amanmcp/amanmcp-flat/internal/amanerrors"
	"github.com/amanmcp/amanmcp-flat/internal/fragment"
)

// Client calls an OpenAI-compatible embeddings endpoint. Outgoing calls are
// bounded by a semaphore sized to MaxInFlight; the underlying HTTP client
// keeps a pooled transport, matching the teacher's Ollama client shape.
type Client struct {
	httpClient *http.Client
	transport  *http.Transport
	baseURL    string
	apiKey     string
	timeout    time.Duration
	sem        chan struct{}
	logger     *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// New constructs a Client. apiBaseUrl and apiKey should already reflect any
// environment-variable override performed at config load time.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = DefaultMaxInFlight
	}
	timeoutSeconds := cfg.Timeout
	if timeoutSeconds <= 0 {
		timeoutSeconds = DefaultTimeoutSeconds
	}
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxInFlight,
		MaxIdleConnsPerHost: cfg.MaxInFlight,
		MaxConnsPerHost:     cfg.MaxInFlight * 2,
		IdleConnTimeout:     10 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		transport:  transport,
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		apiKey:     cfg.APIKey,
		timeout:    time.Duration(timeoutSeconds) * time.Second,
		sem:        make(chan struct{}, cfg.MaxInFlight),
		logger:     logger,
	}
}

// Embed generates a single embedding for text under model and task.
func (c *Client) Embed(ctx context.Context, text, model string, task fragment.Task) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text}, model, task)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for texts, preserving input order.
// Concurrency of the outgoing HTTP call is bounded by the client's
// semaphore (derived from maxInFlight); the request itself is a single
// call carrying all of texts as input, matching the endpoint contract.
func (c *Client) EmbedBatch(ctx context.Context, texts []string, model string, task fragment.Task) ([][]float32, error) {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, amanerrors.Embedding("embedding client is closed", nil, false)
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.sem }()

	return c.doEmbed(ctx, texts, model, task)
}

func (c *Client) doEmbed(ctx context.Context, texts []string, model string, task fragment.Task) ([][]float32, error) {
	prefix := taskPrefix(task)
	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = prefix + t
	}

	var body any = input
	if len(input) == 1 {
		body = input[0]
	}

	payload, err := json.Marshal(request{Model: model, Input: body})
	if err != nil {
		return nil, amanerrors.InvalidArgument(fmt.Sprintf("failed to marshal embedding request: %v", err))
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, amanerrors.Embedding("failed to build embedding request", err, false)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	type result struct {
		resp *response
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			resultCh <- result{nil, err}
			return
		}
		defer func() { _ = resp.Body.Close() }()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			resultCh <- result{nil, err}
			return
		}

		if resp.StatusCode != http.StatusOK {
			resultCh <- result{nil, fmt.Errorf("embedding backend status %d: %s", resp.StatusCode, string(respBody))}
			return
		}

		var parsed response
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			resultCh <- result{nil, fmt.Errorf("failed to decode embedding response: %w", err)}
			return
		}
		resultCh <- result{&parsed, nil}
	}()

	select {
	case <-timeoutCtx.Done():
		c.logger.Warn("embedding call cancelled", slog.String("model", model))
		return nil, amanerrors.Embedding("embedding request cancelled or timed out", timeoutCtx.Err(), false)
	case r := <-resultCh:
		if r.err != nil {
			retryable := isInputTooLong(r.err)
			return nil, amanerrors.Embedding("embedding backend call failed", r.err, retryable)
		}
		if len(r.resp.Data) != len(texts) {
			return nil, amanerrors.Embedding(
				fmt.Sprintf("embedding backend returned %d vectors for %d inputs", len(r.resp.Data), len(texts)), nil, false)
		}
		vectors := make([][]float32, len(r.resp.Data))
		for i, d := range r.resp.Data {
			vectors[i] = d.Embedding
		}
		return vectors, nil
	}
}

// isInputTooLong recognizes the provider's input-too-long failure mode so
// the caller can split the fragment (internal/chunk.Split) and retry,
// rather than giving up on the whole file.
func isInputTooLong(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "too long") ||
		strings.Contains(msg, "maximum context length") ||
		strings.Contains(msg, "context_length_exceeded") ||
		strings.Contains(msg, "413")
}

// Close releases the client's pooled connections.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.transport.CloseIdleConnections()
	return nil
}
