// Package integrations provides shared HTTP functionality for the registry
// API clients (crates.io, PyPI): response caching, retry on transient
// failures, and uniform error classification.
package integrations

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/pkgscout/pkgscout/pkg/buildinfo"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// UserAgent returns the User-Agent header sent with every registry request.
// crates.io requires one by API policy.
func UserAgent() string {
	return "pkgscout/" + buildinfo.Version + " (https://github.com/pkgscout/pkgscout)"
}

// NormalizePkgName converts a package name to its canonical form.
// Applies lowercase and replaces underscores with hyphens, following PEP 503
// normalization rules used by PyPI and other registries.
func NormalizePkgName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}
