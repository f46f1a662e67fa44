package pms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/heyconcierge/pms-core/internal/core/domain"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxRequests = 10
	defaultWindow      = 10 * time.Second
	max429Retries      = 3
	maxRetryAfterWait  = 30 * time.Second
)

// RateLimit is a client-side sliding window request budget.
type RateLimit struct {
	MaxRequests int
	Window      time.Duration
}

// ClientConfig configures a provider API client.
type ClientConfig struct {
	Provider  domain.ProviderName
	BaseURL   string
	Headers   map[string]string // static headers sent on every request
	RateLimit RateLimit         // zero value means 10 requests per 10s
	Timeout   time.Duration
}

// Client is the rate-limited HTTP client shared by all provider adapters.
// It throttles outgoing requests client-side and retries 429 responses a
// bounded number of times, honoring Retry-After.
type Client struct {
	provider   domain.ProviderName
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	headers map[string]string

	limiter *slidingWindow
}

// NewClient creates a provider API client.
func NewClient(cfg ClientConfig) *Client {
	limit := cfg.RateLimit
	if limit.MaxRequests == 0 {
		limit.MaxRequests = defaultMaxRequests
	}
	if limit.Window == 0 {
		limit.Window = defaultWindow
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	return &Client{
		provider:   cfg.Provider,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		headers:    headers,
		limiter:    newSlidingWindow(limit),
	}
}

// SetHeader sets a header sent on all subsequent requests. Providers use this
// to install rotating auth tokens.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[key] = value
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

// Post performs a POST request with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, payload, out any) error {
	body, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload any) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var bodyBytes []byte
	if payload != nil && method != http.MethodGet {
		var err error
		bodyBytes, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", c.provider, err)
		}
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.wait(ctx); err != nil {
			return nil, err
		}

		var reqBody io.Reader
		if bodyBytes != nil {
			reqBody = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("%s: create request: %w", c.provider, err)
		}

		c.mu.Lock()
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}
		c.mu.Unlock()

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s: do request: %w", c.provider, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("%s: read response: %w", c.provider, readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt >= max429Retries {
				return nil, &APIError{Provider: c.provider, StatusCode: resp.StatusCode, Body: string(respBody)}
			}
			wait := retryAfter(resp.Header.Get("Retry-After"))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		if resp.StatusCode >= 400 {
			return nil, &APIError{Provider: c.provider, StatusCode: resp.StatusCode, Body: string(respBody)}
		}

		return respBody, nil
	}
}

// retryAfter parses a Retry-After header value in seconds, defaulting to 5s
// and capping the wait.
func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		seconds = 5
	}
	wait := time.Duration(seconds) * time.Second
	if wait > maxRetryAfterWait {
		wait = maxRetryAfterWait
	}
	return wait
}

// PostForm sends a form-encoded POST outside the rate-limited request path.
// Token endpoints use this; they live on different base URLs and are not part
// of the provider's data-plane budget.
func PostForm(ctx context.Context, httpClient *http.Client, rawURL string, form url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read token response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// GetWithHeaders sends a GET with one-off headers outside the rate-limited
// request path. The Beds24 token refresh endpoint needs this.
func GetWithHeaders(ctx context.Context, httpClient *http.Client, rawURL string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create token request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read token response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// HTTPClient exposes the underlying http.Client for token endpoints that sit
// outside the client's base URL.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// APIError is a non-2xx response from a provider API.
type APIError struct {
	Provider   domain.ProviderName
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %d %s", e.Provider, e.StatusCode, truncate(e.Body, 200))
}

// Unwrap maps well-known status codes onto domain sentinels so callers can
// use errors.Is without knowing about HTTP.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuthFailed
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// slidingWindow tracks request timestamps and blocks when the budget for the
// current window is spent. The extra 50ms margin keeps a retried request from
// landing exactly on the window edge.
type slidingWindow struct {
	mu         sync.Mutex
	timestamps []time.Time
	limit      RateLimit
}

func newSlidingWindow(limit RateLimit) *slidingWindow {
	return &slidingWindow{limit: limit}
}

func (w *slidingWindow) wait(ctx context.Context) error {
	for {
		w.mu.Lock()
		now := time.Now()

		kept := w.timestamps[:0]
		for _, t := range w.timestamps {
			if now.Sub(t) < w.limit.Window {
				kept = append(kept, t)
			}
		}
		w.timestamps = kept

		if len(w.timestamps) < w.limit.MaxRequests {
			w.timestamps = append(w.timestamps, now)
			w.mu.Unlock()
			return nil
		}

		oldest := w.timestamps[0]
		waitFor := w.limit.Window - now.Sub(oldest) + 50*time.Millisecond
		w.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitFor):
		}
	}
}
