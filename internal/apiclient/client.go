// Package apiclient is the narrow HTTP surface the engine talks to.
// It deliberately knows nothing about bookings or routes: callers supply a
// method, a URL and a body, and get back a status code and response bytes.
// The one distinction it owns is transport failure vs HTTP response, the
// sole trigger for cache fallback on reads and drain abort on writes.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TransportError wraps a failure below the HTTP layer: connection refused,
// timeout, DNS. The server never saw (or never answered) the request.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is a transport-level failure as
// opposed to an HTTP error response.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusError is a reachable server's non-2xx answer to a read.
// It is authoritative and is never masked by stale cache.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

// Response is a completed HTTP exchange. Any status code, error statuses
// included, comes back as a Response; classification is the caller's job.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client issues requests against the business-domain API.
type Client struct {
	BaseURL  string
	APIKey   string
	DeviceID string
	HTTP     *http.Client
}

// New creates a new API client.
func New(baseURL, apiKey, deviceID string) *Client {
	return &Client{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		DeviceID: deviceID,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Do executes one request. The url may be absolute or a path relative to
// BaseURL. The returned error is non-nil only for transport-level failures
// or request construction problems; every HTTP status is a Response.
func (c *Client) Do(ctx context.Context, method, url string, body []byte) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(url), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	if c.DeviceID != "" {
		req.Header.Set("X-Device-ID", c.DeviceID)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		// The connection died mid-response; the request outcome is unknown.
		return nil, &TransportError{Err: err}
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// Get fetches a URL and surfaces non-2xx statuses as *StatusError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &StatusError{Code: resp.StatusCode, Body: resp.Body}
	}
	return resp.Body, nil
}

// resolve joins a relative path onto BaseURL; absolute URLs pass through.
func (c *Client) resolve(url string) string {
	if len(url) >= 4 && url[:4] == "http" {
		return url
	}
	return c.BaseURL + url
}
