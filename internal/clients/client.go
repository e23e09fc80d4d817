package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Doer sends a single HTTP request.
type Doer func(*http.Request) (*http.Response, error)

// Middleware wraps the send operation of a Client. The chain is applied in
// registration order, so the first middleware sees the request first and the
// response last.
type Middleware func(next Doer) Doer

// Client issues JSON requests against the storefront API. Cross-cutting
// request and response behavior lives in the middleware chain; default
// headers are a mutable set applied to every request before the chain runs.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logrus.Logger
	chain   Doer

	mu             sync.RWMutex
	defaultHeaders http.Header
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger, middlewares ...Middleware) *Client {
	c := &Client{
		baseURL:        baseURL,
		http:           &http.Client{Timeout: timeout},
		log:            logger,
		defaultHeaders: make(http.Header),
	}

	send := Doer(func(req *http.Request) (*http.Response, error) {
		return c.http.Do(req)
	})
	for i := len(middlewares) - 1; i >= 0; i-- {
		send = middlewares[i](send)
	}
	c.chain = send

	return c
}

// SetDefaultHeader sets a header attached to every outgoing request.
func (c *Client) SetDefaultHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultHeaders.Set(key, value)
}

// RemoveDefaultHeader deletes a default header. Removing an absent header is
// a no-op.
func (c *Client) RemoveDefaultHeader(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultHeaders.Del(key)
}

// DefaultHeader returns the current value of a default header.
func (c *Client) DefaultHeader(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultHeaders.Get(key)
}

// Do issues a request and decodes the JSON response into out (when out is
// non-nil). Responses with status >= 400 are returned as *APIError; transport
// failures are returned without translation.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(payload)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.mu.RLock()
	for key, values := range c.defaultHeaders {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	c.mu.RUnlock()

	resp, err := c.chain(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := newAPIError(resp)
		c.log.Warnf("APIClient: %s %s failed with status %d", method, path, resp.StatusCode)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s %s: %w", method, path, err)
	}
	return nil
}
