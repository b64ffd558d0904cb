package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/moneropulse/xvb-arbiter/internal/observability/metrics"
)

// HttpClient is the minimal surface a concrete API client exposes to the
// shared request helper.
type HttpClient interface {
	GetBaseURL() string
	GetDefaultRequestTimeout() time.Duration
	GetHttpClient() *http.Client
}

// HttpClientOptions carries per-request settings. TemplatePath is what gets
// recorded in metrics instead of Path, so query strings and per-worker hosts
// do not explode label cardinality.
type HttpClientOptions struct {
	Path         string
	TemplatePath string
	Headers      map[string]string
	// Timeout overrides the client default when positive.
	Timeout time.Duration
}

const maxErrorBodyLen = 256

// SendRequest issues one JSON request against the client's base URL and
// decodes the response into O. An empty response body yields a zero O, which
// covers 204-style replies to configuration updates.
func SendRequest[I any, O any](
	ctx context.Context,
	c HttpClient,
	method string,
	opts *HttpClientOptions,
	input *I,
) (*O, error) {
	timeout := c.GetDefaultRequestTimeout()
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if input != nil {
		payload, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	url := c.GetBaseURL() + opts.Path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", url, err)
	}
	if input != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.GetHttpClient().Do(req)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordClientRequestDuration(c.GetBaseURL(), method, opts.TemplatePath, 0, duration)
		return nil, fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()
	metrics.RecordClientRequestDuration(c.GetBaseURL(), method, opts.TemplatePath, resp.StatusCode, duration)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet := raw
		if len(snippet) > maxErrorBodyLen {
			snippet = snippet[:maxErrorBodyLen]
		}
		return nil, fmt.Errorf("request to %s failed with status %d: %s", url, resp.StatusCode, snippet)
	}

	var output O
	if len(raw) == 0 {
		return &output, nil
	}
	if err := json.Unmarshal(raw, &output); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return &output, nil
}
