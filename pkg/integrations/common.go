package integrations

import (
	"errors"
	"net/http"
	"time"
)

const httpTimeout = 30 * time.Second

// MaxBodySize bounds raw downloads such as package archives.
const MaxBodySize = 256 << 20

// UserAgent identifies this tool to package feeds.
const UserAgent = "depends (+https://github.com/matzehuels/depends)"

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the feed.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for feed requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
