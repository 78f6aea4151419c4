// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package fetch is the single HTTP+JSON source client every aggregator goes
// through. One request per call, no retries, no client-side timeout: callers
// bound latency with a context deadline.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxBodyBytes = 1 << 20

var defaultUserAgent = "dossier-osint/1.0"

// FetchError reports a response outside the 2xx range.
type FetchError struct {
	Status int
	Reason string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed: HTTP %d %s", e.Status, e.Reason)
}

// TransportError reports a network-level failure (DNS, TLS, timeout, refused
// connection) before any status code was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type Client struct {
	httpClient *http.Client
	userAgent  string
	headers    map[string]string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				IdleConnTimeout:     30 * time.Second,
				DisableKeepAlives:   false,
				MaxIdleConnsPerHost: 5,
			},
		},
		userAgent: defaultUserAgent,
		headers:   make(map[string]string),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GetRaw performs one GET and returns the body as an opaque JSON value.
// It validates that the body is well-formed JSON so downstream pass-through
// fields never carry garbage.
func (c *Client) GetRaw(ctx context.Context, rawURL string) (json.RawMessage, error) {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &FetchError{Status: http.StatusOK, Reason: "response is not valid JSON"}
	}
	return json.RawMessage(body), nil
}

// GetJSON performs one GET and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &FetchError{Status: http.StatusOK, Reason: fmt.Sprintf("decode: %v", err)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Status: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}

	return body, nil
}
