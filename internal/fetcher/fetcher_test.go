package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// TestFetchSuccess tests a plain successful fetch.
func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	f := New()
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", result.StatusCode)
	}
	if !result.IsHTML() {
		t.Errorf("expected HTML content type, got %q", result.ContentType)
	}
	if !strings.Contains(string(result.Body), "ok") {
		t.Error("expected body content")
	}
}

// TestFetchSendsUserAgent verifies the User-Agent header is applied.
func TestFetchSendsUserAgent(t *testing.T) {
	t.Parallel()

	var gotUA atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
	}))
	defer server.Close()

	f := New(WithUserAgent("sitemapgen-test/1.0"))
	if _, err := f.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if ua, _ := gotUA.Load().(string); ua != "sitemapgen-test/1.0" {
		t.Errorf("expected custom user agent, got %q", ua)
	}
}

// TestFetchRetriesTransientStatus verifies retry-with-backoff on 503
// followed by eventual success.
func TestFetchRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	f := New(WithBackoffBase(time.Millisecond))
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("expected status 200 after retries, got %d", result.StatusCode)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

// TestFetchReturnsFinalTransientStatus verifies the last attempt's
// result is returned when the status never recovers. The caller sees a
// Result, not an error.
func TestFetchReturnsFinalTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f := New(WithBackoffBase(time.Millisecond))
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected result, got error: %v", err)
	}
	if result.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", result.StatusCode)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

// TestFetchDoesNotRetryNotFound verifies 404 is returned immediately.
func TestFetchDoesNotRetryNotFound(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := New(WithBackoffBase(time.Millisecond))
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected result, got error: %v", err)
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", result.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 attempt for non-retryable status, got %d", got)
	}
}

// TestFetchRespectsContextCancellation verifies cancellation aborts
// in-flight fetches promptly.
func TestFetchRespectsContextCancellation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	f := New()
	if _, err := f.Fetch(ctx, server.URL); err == nil {
		t.Error("expected error from cancelled fetch")
	}
}

// TestFetchTruncatesLargeBody verifies the body size cap.
func TestFetchTruncatesLargeBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 4096))
	}))
	defer server.Close()

	f := New(WithMaxBodySize(1024))
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(result.Body) != 1024 {
		t.Errorf("expected body truncated to 1024 bytes, got %d", len(result.Body))
	}
}

// TestResultIsHTML tests content type classification.
func TestResultIsHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"TEXT/HTML", true},
		{"application/json", false},
		{"image/png", false},
		{"", false},
	}

	for _, tt := range tests {
		r := &Result{ContentType: tt.contentType}
		if got := r.IsHTML(); got != tt.want {
			t.Errorf("IsHTML(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}
