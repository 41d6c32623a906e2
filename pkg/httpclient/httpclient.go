// Package httpclient provides a fluent HTTP client for outbound calls.
//
// Usage:
//
//	c := httpclient.New(30 * time.Second)
//
//	resp, err := c.Post(base + "/v1/orders").
//	    WithContext(ctx).
//	    BasicAuth(keyID, keySecret).
//	    Body(map[string]any{"amount": 500, "currency": "INR"}).
//	    Send()
//
//	var order map[string]any
//	err = resp.JSON(&order)
//
// A request makes a single attempt; charge creation is not idempotent.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole request, body read included.
const DefaultTimeout = 30 * time.Second

// Client issues requests through a shared, connection-pooled transport.
type Client struct {
	hc      *http.Client
	timeout time.Duration
}

// New returns a Client with its own pooled transport. A non-positive
// timeout falls back to DefaultTimeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		hc: &http.Client{Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		}},
		timeout: timeout,
	}
}

// NewWithHTTPClient wraps an existing *http.Client (tests pass
// httptest.Server.Client()).
func NewWithHTTPClient(hc *http.Client, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{hc: hc, timeout: timeout}
}

// ------------------- Request -------------------

// Request is a fluent HTTP request builder.
type Request struct {
	client  *Client
	method  string
	url     string
	headers map[string]string
	user    string
	pass    string
	basic   bool
	body    any
	ctx     context.Context
}

// Get starts a GET request.
func (c *Client) Get(url string) *Request { return c.newRequest(http.MethodGet, url) }

// Post starts a POST request.
func (c *Client) Post(url string) *Request { return c.newRequest(http.MethodPost, url) }

func (c *Client) newRequest(method, url string) *Request {
	return &Request{
		client:  c,
		method:  method,
		url:     url,
		headers: map[string]string{"Accept": "application/json"},
		ctx:     context.Background(),
	}
}

// BasicAuth sets HTTP basic credentials.
func (r *Request) BasicAuth(user, pass string) *Request {
	r.user, r.pass, r.basic = user, pass, true
	return r
}

// Body sets the request body. v is marshalled to JSON automatically.
// Pass a string or []byte to send raw bodies.
func (r *Request) Body(v any) *Request {
	r.body = v
	return r
}

// WithContext sets the parent context of the request.
func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// ------------------- Send -------------------

// Send executes the request and returns a Response. Non-2xx statuses are
// not errors here; use Response.Throw.
func (r *Request) Send() (*Response, error) {
	body, ct, err := r.buildBody()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.client.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if r.basic {
		req.SetBasicAuth(r.user, r.pass)
	}

	resp, err := r.client.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Raw:        raw,
	}, nil
}

func (r *Request) buildBody() (io.Reader, string, error) {
	if r.body == nil {
		return nil, "", nil
	}
	switch v := r.body.(type) {
	case string:
		return bytes.NewBufferString(v), "text/plain", nil
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

// ------------------- Response -------------------

// Response wraps the HTTP response with convenience methods.
type Response struct {
	StatusCode int
	Headers    http.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// Throw returns an error if the response status is not 2xx.
func (r *Response) Throw() error {
	if !r.OK() {
		return fmt.Errorf("http: request failed with status %d: %s", r.StatusCode, truncate(r.Raw, 512))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
