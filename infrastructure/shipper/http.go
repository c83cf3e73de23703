package shipper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPConfig contains configuration for the HTTP transport.
type HTTPConfig struct {
	Endpoint   string
	Token      string
	Timeout    time.Duration
	BufferSize int
}

// DefaultHTTPConfig returns default HTTP transport configuration.
func DefaultHTTPConfig() *HTTPConfig {
	return &HTTPConfig{
		Endpoint:   "http://localhost:8080/v1/logs",
		Timeout:    10 * time.Second,
		BufferSize: 1000,
	}
}

// HTTPTransport ships batches of entries as a JSON array over HTTP.
type HTTPTransport struct {
	config     *HTTPConfig
	httpClient *http.Client
	batch      *batcher
}

// NewHTTPTransport creates a new HTTP transport. Empty fields of config fall back to defaults.
func NewHTTPTransport(config *HTTPConfig) *HTTPTransport {
	cfg := withHTTPDefaults(config)

	t := &HTTPTransport{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	t.batch = newBatcher(cfg.BufferSize, t.post)
	return t
}

func withHTTPDefaults(cfg *HTTPConfig) *HTTPConfig {
	defaults := DefaultHTTPConfig()
	if cfg == nil {
		return defaults
	}
	out := *cfg
	if out.Endpoint == "" {
		out.Endpoint = defaults.Endpoint
	}
	if out.Timeout <= 0 {
		out.Timeout = defaults.Timeout
	}
	if out.BufferSize <= 0 {
		out.BufferSize = defaults.BufferSize
	}
	return &out
}

// Send queues an entry.
func (t *HTTPTransport) Send(ctx context.Context, entry Entry) error {
	return t.batch.send(entry)
}

// Flush posts every queued entry. On failure the entries stay queued for the next flush.
func (t *HTTPTransport) Flush(ctx context.Context) error {
	return t.batch.flush(ctx)
}

// Close flushes pending entries and stops accepting new ones.
func (t *HTTPTransport) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), t.config.Timeout)
	defer cancel()

	_, err := t.batch.close(ctx)
	return err
}

// Pending returns the number of queued entries.
func (t *HTTPTransport) Pending() int {
	return t.batch.pending()
}

func (t *HTTPTransport) post(ctx context.Context, entries []Entry) error {
	body, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.config.Token)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(msg))
	}

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

var _ Transport = (*HTTPTransport)(nil)
