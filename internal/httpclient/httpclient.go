// Package httpclient adapts net/http.Client to internal/engine's local
// HTTPClient interface, used by StringSource.HttpRequest (spec.md §4.4) to
// resolve redirects without following into page bodies — HTTP client
// internals and TLS are explicitly out of scope per spec.md §1, so this is
// the thinnest possible wrapper, not a reimplementation.
package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/tariktz/urlcleaner/internal/engine"
)

// Client wraps net/http.Client to satisfy engine.HTTPClient.
type Client struct {
	http *http.Client
}

// New returns a Client with the given per-request timeout. A zero timeout
// means no timeout.
func New(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

// Do implements engine.HTTPClient. It never reads the response body —
// spec.md's HttpRequest variant only inspects status/headers/final URL —
// and always closes it immediately after.
func (c *Client) Do(spec engine.HTTPRequestSpec) (engine.HTTPResponse, error) {
	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(context.Background(), method, spec.URL, nil)
	if err != nil {
		return engine.HTTPResponse{}, err
	}
	for k, v := range spec.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return engine.HTTPResponse{}, err
	}
	defer resp.Body.Close()

	finalURL := spec.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return engine.HTTPResponse{
		StatusCode: resp.StatusCode,
		Header:     map[string][]string(resp.Header),
		FinalURL:   finalURL,
	}, nil
}
