// Package upstream fetches the counter value from the counter API.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rafbgarcia/counterpage/internal/conventions"
)

// maxBodySize caps how much of a counter response is read.
const maxBodySize = 64 << 10

var (
	// ErrDecode reports a response body that is not a JSON object.
	ErrDecode = errors.New("upstream: response is not valid JSON")

	// ErrMissingCounter reports a JSON body without a numeric counter field.
	ErrMissingCounter = errors.New("upstream: response has no counter field")
)

// StatusError reports a non-2xx response from the counter API.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Counter is the decoded counter API response.
type Counter struct {
	// Value is the number literal exactly as the API sent it.
	Value json.Number
}

type counterResponse struct {
	Counter *json.Number `json:"counter"`
}

// Client performs counter API requests. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	url     string
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each Fetch. Zero means no timeout beyond the caller's
// context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a Client for the given origin (see conventions.NormalizeOrigin).
func New(origin string, opts ...Option) (*Client, error) {
	u, err := conventions.CounterURL(origin)
	if err != nil {
		return nil, fmt.Errorf("upstream: %w", err)
	}
	c := &Client{url: u, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL returns the request target used by Fetch.
func (c *Client) URL() string {
	return c.url
}

// Fetch issues one GET to the counter endpoint and decodes the counter.
// There are no retries.
func (c *Client) Fetch(ctx context.Context) (Counter, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Counter{}, fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Counter{}, fmt.Errorf("upstream: GET %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return Counter{}, &StatusError{URL: c.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Counter{}, fmt.Errorf("upstream: read body: %w", err)
	}
	return decode(body)
}

func decode(body []byte) (Counter, error) {
	var res counterResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return Counter{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if res.Counter == nil {
		return Counter{}, ErrMissingCounter
	}
	return Counter{Value: *res.Counter}, nil
}
