package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/sitemapgen/internal/model"
)

// openTestDB creates a CrawlDB in a temp directory, closed on cleanup.
func openTestDB(t *testing.T) *CrawlDB {
	t.Helper()

	cdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := cdb.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return cdb
}

// sampleSummary returns a crawl summary for persistence tests.
func sampleSummary() *model.CrawlSummary {
	started := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &model.CrawlSummary{
		BaseURL:        "https://example.com/docs",
		OutputPath:     "sitemap.xml",
		StartedAt:      started,
		FinishedAt:     started.Add(30 * time.Second),
		URLsAdmitted:   3,
		URLsCompleted:  3,
		EntriesWritten: 2,
		ChangeFreqCounts: map[string]int{
			"weekly":  1,
			"monthly": 1,
		},
	}
}

// samplePages returns page records matching sampleSummary.
func samplePages() []*model.Page {
	fetched := time.Date(2025, 6, 1, 10, 0, 5, 0, time.UTC)
	return []*model.Page{
		{URL: "https://example.com/docs", StatusCode: 200, ContentType: "text/html", Title: "Docs", Depth: 1, Links: 2, FetchedAt: fetched, InSitemap: true},
		{URL: "https://example.com/docs/a", StatusCode: 200, ContentType: "text/html", Title: "A", Depth: 2, Links: 0, FetchedAt: fetched, InSitemap: true},
		{URL: "https://example.com/docs/missing", StatusCode: 404, FetchedAt: fetched},
	}
}

// TestOpen tests database creation behavior.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database with default options", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cdb, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer cdb.Close()

		if cdb.dbPath != filepath.Join(dir, "sitemapgen.db") {
			t.Errorf("unexpected database path: %s", cdb.dbPath)
		}
	})

	t.Run("refuses missing database without create option", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("reopens existing database without create option", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cdb, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		if err := cdb.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}

		cdb2, err := Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer cdb2.Close()
	})
}

// TestSaveSession tests session persistence round-trips.
func TestSaveSession(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	id, err := cdb.SaveSession(ctx, sampleSummary(), samplePages())
	if err != nil {
		t.Fatalf("failed to save session: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero session id")
	}

	t.Run("summary round-trips", func(t *testing.T) {
		got, err := cdb.GetSession(ctx, id)
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if got == nil {
			t.Fatal("expected session, got nil")
		}
		if got.BaseURL != "https://example.com/docs" {
			t.Errorf("unexpected base URL: %q", got.BaseURL)
		}
		if got.EntriesWritten != 2 {
			t.Errorf("expected 2 entries, got %d", got.EntriesWritten)
		}
		if got.ChangeFreqCounts["weekly"] != 1 || got.ChangeFreqCounts["monthly"] != 1 {
			t.Errorf("unexpected changefreq counts: %v", got.ChangeFreqCounts)
		}
		if !got.StartedAt.Equal(sampleSummary().StartedAt) {
			t.Errorf("started_at mismatch: got %v", got.StartedAt)
		}
		if got.Interrupted {
			t.Error("session should not be interrupted")
		}
	})

	t.Run("pages round-trip in order", func(t *testing.T) {
		pages, err := cdb.GetSessionPages(ctx, id)
		if err != nil {
			t.Fatalf("failed to get pages: %v", err)
		}
		if len(pages) != 3 {
			t.Fatalf("expected 3 pages, got %d", len(pages))
		}
		if pages[0].URL != "https://example.com/docs" || !pages[0].InSitemap {
			t.Errorf("unexpected first page: %+v", pages[0])
		}
		if pages[2].StatusCode != 404 || pages[2].InSitemap {
			t.Errorf("unexpected skipped page: %+v", pages[2])
		}
	})
}

// TestSaveSessionInterrupted tests that the interrupted flag survives
// the round trip.
func TestSaveSessionInterrupted(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	summary := sampleSummary()
	summary.Interrupted = true

	id, err := cdb.SaveSession(ctx, summary, nil)
	if err != nil {
		t.Fatalf("failed to save session: %v", err)
	}

	got, err := cdb.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if !got.Interrupted {
		t.Error("expected interrupted flag to persist")
	}
}

// TestListSessions tests history listing and filtering.
func TestListSessions(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	first := sampleSummary()
	if _, err := cdb.SaveSession(ctx, first, nil); err != nil {
		t.Fatalf("failed to save first session: %v", err)
	}

	second := sampleSummary()
	second.StartedAt = first.StartedAt.Add(time.Hour)
	second.FinishedAt = second.StartedAt.Add(10 * time.Second)
	second.EntriesWritten = 5
	if _, err := cdb.SaveSession(ctx, second, nil); err != nil {
		t.Fatalf("failed to save second session: %v", err)
	}

	other := sampleSummary()
	other.BaseURL = "https://other.org/"
	if _, err := cdb.SaveSession(ctx, other, nil); err != nil {
		t.Fatalf("failed to save other session: %v", err)
	}

	t.Run("lists all sessions most recent first", func(t *testing.T) {
		sessions, err := cdb.ListSessions(ctx, "")
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(sessions) != 3 {
			t.Fatalf("expected 3 sessions, got %d", len(sessions))
		}
		if sessions[0].EntriesWritten != 5 {
			t.Errorf("expected most recent session first, got %+v", sessions[0])
		}
	})

	t.Run("filters by base URL", func(t *testing.T) {
		sessions, err := cdb.ListSessions(ctx, "https://other.org/")
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(sessions) != 1 {
			t.Fatalf("expected 1 session, got %d", len(sessions))
		}
		if sessions[0].BaseURL != "https://other.org/" {
			t.Errorf("unexpected base URL: %q", sessions[0].BaseURL)
		}
	})
}

// TestGetSessionMissing tests the nil-without-error contract.
func TestGetSessionMissing(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)

	got, err := cdb.GetSession(context.Background(), 9999)
	if err != nil {
		t.Fatalf("unexpected error for missing session: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing session, got %+v", got)
	}
}

// TestParseTimestamp tests the multi-format timestamp parser.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{name: "RFC3339Nano", input: "2025-06-01T10:00:00.123456789Z"},
		{name: "RFC3339", input: "2025-06-01T10:00:00Z"},
		{name: "SQLite default", input: "2025-06-01 10:00:00"},
		{name: "garbage", input: "not a timestamp", zero: true},
		{name: "empty", input: "", zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) zero=%v, want zero=%v", tt.input, got.IsZero(), tt.zero)
			}
		})
	}
}
