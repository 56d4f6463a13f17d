package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultRequestTimeout = 10 * time.Second

// RESTClient is the shared JSON transport for REST provider adapters.
// Requests are bounded by a short timeout; a timeout, transport failure or
// non-2xx response surfaces as an UpstreamError. There is no retry here.
type RESTClient struct {
	provider       ProviderName
	baseURL        string
	client         *http.Client
	defaultHeaders map[string]string
}

// NewRESTClient creates a client rooted at baseURL for the given provider.
// A zero timeout selects the default.
func NewRESTClient(provider ProviderName, baseURL string, timeout time.Duration) *RESTClient {
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	return &RESTClient{
		provider: provider,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		defaultHeaders: map[string]string{
			"Accept": "application/json",
		},
	}
}

// SetTransport overrides the underlying transport. Used by tests.
func (c *RESTClient) SetTransport(rt http.RoundTripper) {
	c.client.Transport = rt
}

// DoJSON sends a JSON request to endpoint (joined onto the base URL) and
// decodes the response body into target when target is non-nil.
func (c *RESTClient) DoJSON(ctx context.Context, method, endpoint string, headers map[string]string, body, target any) error {
	op := method + " " + endpoint

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return NewUpstreamError(c.provider, op, fmt.Errorf("failed to marshal request body: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return NewUpstreamError(c.provider, op, err)
	}
	for key, value := range c.defaultHeaders {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return NewUpstreamError(c.provider, op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewUpstreamError(c.provider, op, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewUpstreamError(c.provider, op, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody)))
	}

	if target != nil {
		if err := json.Unmarshal(respBody, target); err != nil {
			return NewUpstreamError(c.provider, op, fmt.Errorf("failed to parse response: %w", err))
		}
	}
	return nil
}
