package utils

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mapsengine/gme-cli/internal/logger"
	"github.com/mapsengine/gme-cli/internal/version"
)

// HTTPClientConfig configures the HTTP client behavior
type HTTPClientConfig struct {
	Timeout        time.Duration
	Debug          bool
	ConnectTimeout time.Duration
}

// DefaultHTTPConfig returns the default HTTP client configuration
func DefaultHTTPConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:        60 * time.Second,
		Debug:          false,
		ConnectTimeout: 10 * time.Second,
	}
}

// NewHTTPClient creates a new HTTP client with standard configuration
func NewHTTPClient() *http.Client {
	return NewHTTPClientWithConfig(DefaultHTTPConfig())
}

// NewHTTPClientWithConfig creates a new HTTP client with custom configuration
func NewHTTPClientWithConfig(cfg HTTPClientConfig) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: NewInstrumentedTransport(transport, cfg.Debug),
	}
}

// NewInstrumentedTransport wraps base with User-Agent, request IDs and debug logging
func NewInstrumentedTransport(base http.RoundTripper, debug bool) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &instrumentedTransport{Transport: base, debug: debug}
}

// instrumentedTransport adds User-Agent header and optional debug logging
type instrumentedTransport struct {
	Transport http.RoundTripper
	debug     bool
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request
	req = req.Clone(req.Context())

	requestID := uuid.NewString()
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()

	if t.debug {
		t.logRequest(req, requestID)
	}

	resp, err := t.Transport.RoundTrip(req)
	duration := time.Since(start)

	if t.debug {
		t.logResponse(resp, err, requestID, duration)
	}

	if resp != nil {
		logger.Debug("HTTP %s %s → %d (%v)", req.Method, sanitizeURL(req.URL.String()), resp.StatusCode, duration)
	} else if err != nil {
		logger.Debug("HTTP %s %s → ERROR: %v (%v)", req.Method, sanitizeURL(req.URL.String()), err, duration)
	}

	return resp, err
}

// logRequest logs the full HTTP request for debugging
func (t *instrumentedTransport) logRequest(req *http.Request, requestID string) {
	logger.Debug("=== HTTP Request [%s] ===", requestID)
	logger.Debug("%s %s", req.Method, sanitizeURL(req.URL.String()))

	for key, values := range req.Header {
		for _, v := range values {
			if isSensitiveHeader(key) {
				logger.Debug("  %s: [REDACTED]", key)
			} else {
				logger.Debug("  %s: %s", key, v)
			}
		}
	}

	// Multipart uploads stream their body, only small buffered bodies are dumped
	if req.GetBody != nil && req.ContentLength > 0 && req.ContentLength < 10240 {
		dump, err := httputil.DumpRequestOut(req, true)
		if err == nil {
			logger.Debug("Request body:\n%s", sanitizeBody(string(dump)))
		}
	}
}

// logResponse logs the full HTTP response for debugging
func (t *instrumentedTransport) logResponse(resp *http.Response, err error, requestID string, duration time.Duration) {
	logger.Debug("=== HTTP Response [%s] (took %v) ===", requestID, duration)

	if err != nil {
		logger.Debug("Error: %v", err)
		return
	}

	if resp == nil {
		logger.Debug("Response is nil")
		return
	}

	logger.Debug("Status: %s", resp.Status)

	for key, values := range resp.Header {
		for _, v := range values {
			if isSensitiveHeader(key) {
				logger.Debug("  %s: [REDACTED]", key)
			} else {
				logger.Debug("  %s: %s", key, v)
			}
		}
	}
}

// wrapNetworkError wraps a network error with a user-friendly message
func wrapNetworkError(err error) error {
	errStr := err.Error()

	if strings.Contains(errStr, "no such host") {
		return fmt.Errorf("unable to resolve host - please check your internet connection: %w", err)
	}
	if strings.Contains(errStr, "connection refused") {
		return fmt.Errorf("connection refused - the server may be down or unreachable: %w", err)
	}
	if strings.Contains(errStr, "connection timed out") || strings.Contains(errStr, "i/o timeout") {
		return fmt.Errorf("connection timed out - please check your internet connection: %w", err)
	}
	if strings.Contains(errStr, "TLS") || strings.Contains(errStr, "certificate") {
		return fmt.Errorf("TLS/SSL error: %w", err)
	}

	return fmt.Errorf("network error: %w", err)
}

var sensitiveParams = []string{
	"access_token",
	"refresh_token",
	"client_secret",
	"code",
	"key",
	"token",
}

// sanitizeURL redacts credentials carried in query parameters
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	redacted := false
	for _, param := range sensitiveParams {
		if q.Has(param) {
			q.Set(param, "REDACTED")
			redacted = true
		}
	}
	if redacted {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

var sensitiveBodyPattern = regexp.MustCompile(
	`("(?:access_token|refresh_token|client_secret|code|password)"\s*:\s*")[^"]*(")` +
		`|((?:^|[&\s])(?:access_token|refresh_token|client_secret|code)=)[^&\s]*`)

// sanitizeBody removes credentials from JSON and form encoded bodies
func sanitizeBody(body string) string {
	return sensitiveBodyPattern.ReplaceAllStringFunc(body, func(m string) string {
		parts := sensitiveBodyPattern.FindStringSubmatch(m)
		if parts[1] != "" {
			return parts[1] + "[REDACTED]" + parts[2]
		}
		return parts[3] + "[REDACTED]"
	})
}

// isSensitiveHeader checks if a header name is sensitive
func isSensitiveHeader(name string) bool {
	sensitive := []string{
		"authorization",
		"cookie",
		"set-cookie",
		"x-api-key",
	}

	lower := strings.ToLower(name)
	for _, s := range sensitive {
		if lower == s {
			return true
		}
	}
	return false
}

// ReadResponseBody reads and returns the response body, limiting size
func ReadResponseBody(resp *http.Response, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024 // 10MB default
	}

	limitedReader := io.LimitReader(resp.Body, maxSize)

	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// DrainAndClose drains and closes a response body
func DrainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	// Drain up to 64KB to allow connection reuse
	io.CopyN(io.Discard, body, 64*1024)
	body.Close()
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DumpFileName turns a request path and query into a file name safe on every platform
func DumpFileName(pathAndQuery string) string {
	name := unsafeFileChars.ReplaceAllString(strings.TrimPrefix(pathAndQuery, "/"), "_")
	if len(name) > 200 {
		name = name[:200]
	}
	return name + ".txt"
}

// DumpResponse writes body to dir for offline inspection. Failures are only logged.
func DumpResponse(dir, pathAndQuery string, body []byte) {
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		logger.Debug("debug dump: %v", err)
		return
	}
	target := filepath.Join(dir, DumpFileName(pathAndQuery))
	if err := os.WriteFile(target, body, 0600); err != nil {
		logger.Debug("debug dump: %v", err)
	}
}
