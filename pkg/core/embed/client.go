// Package embed is a batching HTTP client for the embedding service: it
// preserves input order, truncates inputs to the server's per-request
// byte cap, and retries transient failures with backoff.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/earningscope/engine/pkg/core/ferr"
	"github.com/earningscope/engine/pkg/core/logx"
)

// EmbedInputCapBytes is the fixed per-request truncation applied before
// sending text to the embedding server, independent of how much of the
// chunk is persisted (see pkg/core/vectorstore for the storage-side cap).
const EmbedInputCapBytes = 1024

// Config configures a Client.
type Config struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	MaxRetries int
	Backoff    time.Duration
	Limiter    *rate.Limiter
}

// Client talks to the remote embedding service. Safe for concurrent use;
// it shares one *http.Client and one rate.Limiter across callers and
// never serializes independent Encode calls beyond that shared limiter.
type Client struct {
	baseURL    string
	model      string
	http       *http.Client
	maxRetries int
	backoff    time.Duration
	limiter    *rate.Limiter

	dimension int
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(10), 10)
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		http:       httpClient,
		maxRetries: maxRetries,
		backoff:    backoff,
		limiter:    limiter,
	}
}

type embedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model,omitempty"`
	BatchSize int      `json:"batch_size,omitempty"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Model      string      `json:"model"`
	Dimension  int         `json:"dimension"`
	Count      int         `json:"count"`
}

// Encode batch-encodes texts, preserving order: len(vectors) == len(texts)
// on success. Each text is byte-truncated to EmbedInputCapBytes before
// being sent.
func (c *Client) Encode(ctx context.Context, texts []string, batchSize int) ([][]float64, error) {
	truncated := make([]string, len(texts))
	for i, t := range texts {
		truncated[i] = truncateBytes(t, EmbedInputCapBytes)
	}

	reqBody := embedRequest{Texts: truncated, Model: c.model, BatchSize: batchSize}
	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, ferr.New(ferr.Internal, "embed.Encode", err)
	}

	var resp embedResponse
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return ferr.New(ferr.Cancelled, "embed.Encode", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(jsonBytes))
		if err != nil {
			return ferr.New(ferr.Internal, "embed.Encode", err)
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ferr.New(ferr.Cancelled, "embed.Encode", ctx.Err())
			}
			return ferr.New(ferr.TransientUpstream, "embed.Encode", err)
		}
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		if err != nil {
			return ferr.New(ferr.TransientUpstream, "embed.Encode", err)
		}

		if res.StatusCode >= 500 {
			return ferr.New(ferr.TransientUpstream, "embed.Encode", fmt.Errorf("status=%d body=%s", res.StatusCode, body))
		}
		if res.StatusCode != http.StatusOK {
			return ferr.New(ferr.PermanentUpstream, "embed.Encode", fmt.Errorf("status=%d body=%s", res.StatusCode, body))
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return ferr.New(ferr.PermanentUpstream, "embed.Encode", err)
		}
		return nil
	}

	if err := withRetry(ctx, c.maxRetries, c.backoff, op); err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, ferr.New(ferr.PermanentUpstream, "embed.Encode",
			fmt.Errorf("protocol_violation: requested %d embeddings, server returned %d", len(texts), len(resp.Embeddings)))
	}
	if resp.Dimension > 0 {
		c.dimension = resp.Dimension
	}
	if resp.Model != "" {
		c.model = resp.Model
	}
	return resp.Embeddings, nil
}

// Dimension reports the embedding dimension last observed from the
// server. Zero until the first successful Encode or Health call.
func (c *Client) Dimension() int { return c.dimension }

// ModelName reports the model identity currently configured or last
// confirmed by the server.
func (c *Client) ModelName() string { return c.model }

// Health calls the service's health endpoint and records the model and
// dimension it reports, without encoding anything.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return ferr.New(ferr.Internal, "embed.Health", err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return ferr.New(ferr.TransientUpstream, "embed.Health", err)
	}
	defer res.Body.Close()
	var health struct {
		Model     string `json:"model"`
		Dimension int    `json:"dimension"`
	}
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		return ferr.New(ferr.PermanentUpstream, "embed.Health", err)
	}
	c.model = health.Model
	c.dimension = health.Dimension
	return nil
}

func withRetry(ctx context.Context, maxRetries int, backoff time.Duration, op func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if !ferr.Is(err, ferr.TransientUpstream) {
			return err
		}
		if attempt == maxRetries {
			break
		}
		logx.Warnf("embed", "attempt %d/%d failed: %v, retrying", attempt+1, maxRetries+1, err)
		select {
		case <-ctx.Done():
			return ferr.New(ferr.Cancelled, "embed.withRetry", ctx.Err())
		case <-time.After(backoff * time.Duration(1<<attempt)):
		}
	}
	return lastErr
}

func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	b := []byte(s)[:n]
	for len(b) > 0 {
		r := b[len(b)-1]
		if r&0xC0 != 0x80 {
			break
		}
		b = b[:len(b)-1]
	}
	return string(b)
}
