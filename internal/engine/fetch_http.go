package engine

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// StatusError reports a non-200 response that was not recovered by retries.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

var (
	limiterMu sync.RWMutex
	limiter   *rate.Limiter
)

// initLimiter installs a process-wide limiter for outbound fetches. rps <= 0 disables it.
func initLimiter(rps float64) {
	limiterMu.Lock()
	defer limiterMu.Unlock()
	if rps <= 0 {
		limiter = nil
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

func waitLimiter(ctx context.Context) error {
	limiterMu.RLock()
	l := limiter
	limiterMu.RUnlock()
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}

// FetchOpts tunes a single FetchText call.
type FetchOpts struct {
	Accept    string // Accept header; defaults to HTML
	UserAgent string // defaults to a random browser UA
}

// FetchText GETs rawURL and returns the body as text.
// Transient failures are retried; blocked responses (403/429) get one more try
// through the Chrome-TLS BrowserClient when one is configured.
func FetchText(ctx context.Context, rawURL string, opts FetchOpts) (text string, err error) {
	metrics.FetchRequests.Add(1)
	defer func() {
		if err != nil {
			metrics.FetchErrors.Add(1)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	if err := waitLimiter(ctx); err != nil {
		return "", err
	}

	accept := opts.Accept
	if accept == "" {
		accept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = RandomUserAgent()
	}

	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", ua)
		req.Header.Set("Accept", accept)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9,es;q=0.8")
		req.Header.Set("Accept-Encoding", "gzip")
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		if text, ok := fetchViaBrowser(rawURL); ok {
			return text, nil
		}
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
		if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
			if text, ok := fetchViaBrowser(rawURL); ok {
				return text, nil
			}
		}
		return "", statusErr
	}

	body, err := readResponseBody(resp, cfg.MaxPageBytes)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rawURL, err)
	}
	return string(body), nil
}

// fetchViaBrowser retries a blocked fetch with the Chrome TLS fingerprint client.
func fetchViaBrowser(rawURL string) (string, bool) {
	if cfg.BrowserClient == nil {
		return "", false
	}
	metrics.BrowserFetches.Add(1)
	data, status, err := cfg.BrowserClient.Do(http.MethodGet, rawURL, ChromeHeaders(), nil)
	if err != nil || status != http.StatusOK {
		slog.Debug("fetch: browser client failed", slog.String("url", rawURL), slog.Int("status", status), slog.Any("error", err))
		return "", false
	}
	if int64(len(data)) > cfg.MaxPageBytes {
		data = data[:cfg.MaxPageBytes]
	}
	return string(data), true
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// readResponseBody reads at most limit bytes, handling gzip decompression if needed.
func readResponseBody(resp *http.Response, limit int64) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" && !resp.Uncompressed {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, limit))
}
