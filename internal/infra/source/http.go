// Package source provides the long-lived HTTP byte source for station streams.
package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Client opens streaming connections to station URLs. Connections are
// open-ended: there is no overall request timeout, only connect-phase
// timeouts, since the response body is consumed for the lifetime of the
// station.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient creates a streaming HTTP client.
func NewClient(userAgent string) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 10 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		DisableCompression:    true,
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   0, // no total timeout for streaming
		},
		userAgent: userAgent,
	}
}

// Connect issues a streaming GET against a station URL and returns the
// response body as an open-ended byte source. The caller owns the body.
func (c *Client) Connect(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return resp.Body, nil
}
