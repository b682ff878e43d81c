package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Default transport settings. The timeout matches typical clearnet
// sites; the attempt count and backoff follow the common
// retry-with-exponential-backoff discipline for transient HTTP errors.
const (
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxAttempts is the total number of tries per URL,
	// including the first.
	DefaultMaxAttempts = 3

	// DefaultBackoffBase is the wait after the first failed attempt;
	// it doubles after each subsequent failure (1s, 2s, 4s).
	DefaultBackoffBase = 1 * time.Second

	// DefaultMaxBodySize caps how much of a response body is read.
	// 5MB is generous for HTML while preventing memory exhaustion on
	// unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent is a browser-style User-Agent. Some sites serve
	// reduced or blocked content to obvious bot agents, which would
	// leave holes in the sitemap.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// retryableStatus lists the HTTP status codes worth retrying: rate
// limiting and transient server-side failures. Everything else is
// reported to the caller as-is after the first attempt.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Result is the outcome of a completed fetch. A non-200 status is a
// Result, not an error; the crawl engine decides what to skip.
type Result struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// ContentType is the raw Content-Type header value.
	ContentType string

	// Body is the response body, truncated to the configured limit.
	Body []byte
}

// IsHTML reports whether the response carried an HTML content type.
// Both text/html and application/xhtml+xml qualify.
func (r *Result) IsHTML() bool {
	mime := strings.ToLower(strings.TrimSpace(strings.Split(r.ContentType, ";")[0]))
	return mime == "text/html" || mime == "application/xhtml+xml"
}

// Fetcher retrieves pages over HTTP with retry, backoff, and an
// optional global request rate cap.
//
// Design decision: Retry policy lives here, inside the transport,
// rather than in the crawl engine. The engine's error taxonomy stays
// simple (a URL either yielded a Result or it failed) and stays testable
// without simulating network flakiness. The engine never retries a URL
// itself.
type Fetcher struct {
	// client is the underlying HTTP client. Its Timeout bounds each
	// individual attempt.
	client *http.Client

	// userAgent is sent with every request.
	userAgent string

	// headers are extra headers applied to every request.
	headers map[string]string

	// maxBodySize caps response body reads.
	maxBodySize int64

	// maxAttempts is the total tries per URL.
	maxAttempts int

	// backoffBase is the first retry wait; doubles per attempt.
	backoffBase time.Duration

	// limiter, when set, caps the global request rate across all
	// workers. Nil means uncapped.
	limiter *rate.Limiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHeaders sets extra headers applied to every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithMaxBodySize caps how many bytes of a response body are read.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithMaxAttempts sets the total number of tries per URL.
func WithMaxAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithBackoffBase sets the wait after the first failed attempt.
// Mainly useful in tests to avoid real sleeps.
func WithBackoffBase(d time.Duration) Option {
	return func(f *Fetcher) {
		f.backoffBase = d
	}
}

// WithRateLimit caps the global request rate in requests per second.
// Zero or negative disables the cap.
func WithRateLimit(rps float64) Option {
	return func(f *Fetcher) {
		if rps > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// New creates a Fetcher with default settings.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		maxAttempts: DefaultMaxAttempts,
		backoffBase: DefaultBackoffBase,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch retrieves the URL, retrying transient failures with exponential
// backoff. It returns a Result for any completed HTTP exchange,
// including non-200 statuses, and an error only when every attempt
// failed at the transport level or the context was cancelled.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff: base, 2*base, 4*base, ...
			wait := f.backoffBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		result, retryable, err := f.fetchOnce(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if retryable && attempt < f.maxAttempts-1 {
			lastErr = fmt.Errorf("status %d from %s", result.StatusCode, url)
			continue
		}
		return result, nil
	}

	return nil, fmt.Errorf("fetch %s: all %d attempts failed: %w", url, f.maxAttempts, lastErr)
}

// fetchOnce performs a single HTTP exchange. The retryable flag is true
// when the status code indicates a transient condition worth another
// attempt.
func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, false, err
	}

	result := &Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
	return result, retryableStatus[resp.StatusCode], nil
}
