package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeaderRequestID carries a per-call identifier so server logs can be joined
// with client logs.
const HeaderRequestID = "X-Request-ID"

// Client issues JSON requests against one base address. It holds no per-call
// state and is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout. Zero disables it.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client rooted at baseURL, e.g. http://localhost:4002/api.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: missing host", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the address every request path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// sendsBody reports whether requests with this method carry a JSON body.
func sendsBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPatch
}

// Do performs one call. The JSON response body is decoded into out unless the
// body is empty, in which case decoded is false and out is left alone.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) (decoded bool, err error) {
	target := c.baseURL + path
	requestID := uuid.NewString()

	var reader io.Reader
	if sendsBody(method) {
		payload, err := json.Marshal(body)
		if err != nil {
			return false, newEncodeError(method, target, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return false, newNetworkError(method, target, requestID, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("Request failed",
			zap.String("method", method),
			zap.String("url", target),
			zap.String("request_id", requestID),
			zap.Error(err))
		return false, newNetworkError(method, target, requestID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, newNetworkError(method, target, requestID, fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("url", target),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, newStatusError(method, target, requestID, resp.StatusCode, resp.Status, respBody)
	}

	if len(bytes.TrimSpace(respBody)) == 0 || out == nil {
		return false, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return false, newDecodeError(method, target, requestID, resp.StatusCode, err)
	}
	return true, nil
}

// statusText prefers the reason phrase the server sent, falling back to the
// standard one for the code.
func statusText(code int, status string) string {
	if text := strings.TrimSpace(strings.TrimPrefix(status, fmt.Sprint(code))); text != "" {
		return text
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", code)
}
