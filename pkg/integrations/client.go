package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/depends/pkg/cache"
	derrors "github.com/matzehuels/depends/pkg/errors"
	"github.com/matzehuels/depends/pkg/httputil"
	"github.com/matzehuels/depends/pkg/observability"
)

// Client provides shared HTTP functionality for feed API clients.
// It handles caching, retry logic, and common request headers.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	keyType string
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client that stores responses in c under prefix for ttl.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed, and a
// [cache.NullCache] to disable caching.
func NewClient(c cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   cache.WithPrefix(c, prefix),
		keyType: strings.TrimSuffix(prefix, ":"),
		ttl:     ttl,
		headers: headers,
	}
}

// SetHTTPClient replaces the underlying HTTP client. Used by tests and by
// callers that need custom transports.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is JSON-encoded and
// stored. Cache backend failures are treated as misses.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				observability.Cache().OnCacheHit(ctx, c.keyType)
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, c.keyType)
	}
	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, c.keyType, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers and handles retries automatically.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

// GetText performs an HTTP GET request and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	data, err := c.GetBytes(ctx, url)
	return string(data), err
}

// GetBytes performs an HTTP GET request and returns the raw response body.
// Bodies larger than [MaxBodySize] are rejected.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	body, err := c.doRequest(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, MaxBodySize+1))
	if err != nil {
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	if len(data) > MaxBodySize {
		return nil, fmt.Errorf("%w: response from %s exceeds %d bytes", ErrNetwork, url, MaxBodySize)
	}
	return data, nil
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, rateLimited(resp.Header.Get("Retry-After"))
	}
	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// maxRetryAfter caps how long a Retry-After header can stall one request.
const maxRetryAfter = 30 * time.Second

// rateLimited builds the retryable error for a 429 response. The wait is
// taken from Retry-After when it holds a number of seconds.
func rateLimited(retryAfter string) error {
	rl := &derrors.RateLimitedError{}
	if n, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && n > 0 {
		rl.RetryAfter = n
	}
	return &httputil.RetryableError{
		Err:   fmt.Errorf("%w: %w", ErrNetwork, rl),
		After: min(time.Duration(rl.RetryAfter)*time.Second, maxRetryAfter),
	}
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: rate limited (status %d)", ErrNetwork, code)}
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
