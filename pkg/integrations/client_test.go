package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/depends/pkg/cache"
	derrors "github.com/matzehuels/depends/pkg/errors"
	"github.com/matzehuels/depends/pkg/httputil"
)

func newTestClient(t *testing.T, server *httptest.Server, headers map[string]string) (*Client, *cache.FileCache) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	client := NewClient(c, "test:", time.Hour, headers)
	if server != nil {
		client.SetHTTPClient(server.Client())
	}
	return client, c
}

func TestNewClient(t *testing.T) {
	headers := map[string]string{"Authorization": "Bearer token"}
	client, _ := newTestClient(t, nil, headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.keyType != "test" {
		t.Errorf("keyType = %q, want test", client.keyType)
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "test:", time.Hour, nil)
	if client.cache == nil {
		t.Fatal("NewClient(nil) should fall back to a null cache")
	}
	if client.headers != nil {
		t.Error("NewClient() should allow nil headers")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, nil)

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var gotDefault, gotOverride string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDefault = r.Header.Get("X-Default")
		gotOverride = r.Header.Get("X-Override")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, map[string]string{"X-Default": "default", "X-Override": "default"})

	var resp map[string]string
	err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"X-Override": "overridden"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if gotDefault != "default" {
		t.Errorf("X-Default = %q, want default", gotDefault)
	}
	if gotOverride != "overridden" {
		t.Errorf("X-Override = %q, want overridden", gotOverride)
	}
}

func TestClientGetText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text response"))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, nil)

	text, err := client.GetText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GetText() error: %v", err)
	}
	if text != "plain text response" {
		t.Errorf("GetText() = %q, want %q", text, "plain text response")
	}
}

func TestClientGet404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, nil)

	var resp map[string]string
	if err := client.Get(context.Background(), server.URL, &resp); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestClientGet500(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, nil)

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	var retryErr *httputil.RetryableError
	if !errors.As(err, &retryErr) {
		t.Errorf("Get() error should be RetryableError, got %T", err)
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Get() error = %v, want ErrNetwork", err)
	}
}

func TestClientCached(t *testing.T) {
	client, _ := newTestClient(t, nil, nil)

	type testData struct {
		Value string `json:"value"`
	}

	fetchCount := 0
	fetch := func(v *testData) func() error {
		return func() error {
			fetchCount++
			v.Value = "fetched"
			return nil
		}
	}

	var first testData
	if err := client.Cached(context.Background(), "key", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	var second testData
	if err := client.Cached(context.Background(), "key", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1", fetchCount)
	}
	if second.Value != "fetched" {
		t.Errorf("cached value = %q, want fetched", second.Value)
	}
}

func TestClientCachedUsesPrefix(t *testing.T) {
	client, fc := newTestClient(t, nil, nil)

	v := "value"
	if err := client.Cached(context.Background(), "key", false, &v, func() error { return nil }); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if _, ok, _ := fc.Get(context.Background(), "test:key"); !ok {
		t.Error("entry not stored under prefixed key")
	}
}

func TestClientCachedRefresh(t *testing.T) {
	client, _ := newTestClient(t, nil, nil)

	fetchCount := 0
	var value string
	fetch := func() error {
		fetchCount++
		value = "fetched"
		return nil
	}

	for range 2 {
		if err := client.Cached(context.Background(), "test-key", true, &value, fetch); err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
	}
	if fetchCount != 2 {
		t.Errorf("fetch count = %d, want 2", fetchCount)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client, fc := newTestClient(t, nil, nil)

	var value string
	fetchCount := 0
	fetch := func() error {
		fetchCount++
		return ErrNotFound
	}

	err := client.Cached(context.Background(), "missing", false, &value, fetch)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}
	if fetchCount != 1 {
		t.Errorf("non-retryable error fetched %d times, want 1", fetchCount)
	}
	if _, ok, _ := fc.Get(context.Background(), "test:missing"); ok {
		t.Error("failed fetch should not be cached")
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantErr    bool
		wantType   error
		isRetryErr bool
	}{
		{name: "200 OK", code: 200},
		{name: "404 Not Found", code: 404, wantErr: true, wantType: ErrNotFound},
		{name: "429 Too Many Requests", code: 429, wantErr: true, wantType: ErrNetwork, isRetryErr: true},
		{name: "500 Internal Server Error", code: 500, wantErr: true, wantType: ErrNetwork, isRetryErr: true},
		{name: "502 Bad Gateway", code: 502, wantErr: true, isRetryErr: true},
		{name: "503 Service Unavailable", code: 503, wantErr: true, isRetryErr: true},
		{name: "400 Bad Request", code: 400, wantErr: true, wantType: ErrNetwork},
		{name: "403 Forbidden", code: 403, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code)

			if !tt.wantErr {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("checkStatus() should return error")
			}
			if tt.wantType != nil && !errors.Is(err, tt.wantType) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.wantType)
			}
			var retryErr *httputil.RetryableError
			if got := errors.As(err, &retryErr); got != tt.isRetryErr {
				t.Errorf("retryable = %v, want %v", got, tt.isRetryErr)
			}
		})
	}
}

func TestRateLimited(t *testing.T) {
	tests := []struct {
		header    string
		wantAfter time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"3600", maxRetryAfter},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			err := rateLimited(tt.header)
			var retryErr *httputil.RetryableError
			if !errors.As(err, &retryErr) {
				t.Fatalf("rateLimited() = %v, want RetryableError", err)
			}
			if retryErr.After != tt.wantAfter {
				t.Errorf("After = %v, want %v", retryErr.After, tt.wantAfter)
			}
			if !errors.Is(err, ErrNetwork) || !errors.As(err, new(*derrors.RateLimitedError)) {
				t.Errorf("rateLimited() = %v, want ErrNetwork and RateLimitedError", err)
			}
		})
	}
}
