package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitemapgen/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl history.
// Each sitemap generation run is persisted as a session with its
// per-page fetch records, so successive runs against the same site can
// be compared (did the sitemap shrink, did pages start failing).
//
// Design decision: We use a single database file for all sites rather
// than one file per site. This keeps history queries across sites
// simple and makes backup a single-file operation.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are
// created. If false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "sitemapgen.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer, and the crawl saves its session
	// in a single transaction at the end, so one connection is enough.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Sessions store one row per sitemap generation run
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_url TEXT NOT NULL,
		output_path TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		urls_admitted INTEGER NOT NULL DEFAULT 0,
		urls_completed INTEGER NOT NULL DEFAULT 0,
		entries_written INTEGER NOT NULL DEFAULT 0,
		changefreq_counts TEXT,
		interrupted INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_base_url ON sessions(base_url);
	CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);

	-- Pages store per-URL fetch records belonging to a session
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		depth INTEGER NOT NULL DEFAULT 0,
		links INTEGER NOT NULL DEFAULT 0,
		fetched_at TEXT,
		in_sitemap INTEGER NOT NULL DEFAULT 0,
		UNIQUE(session_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_session ON pages(session_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveSession persists a crawl summary and its page records in one
// transaction. It returns the new session's database ID.
func (cdb *CrawlDB) SaveSession(ctx context.Context, summary *model.CrawlSummary, pages []*model.Page) (int64, error) {
	freqJSON, err := json.Marshal(summary.ChangeFreqCounts)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize changefreq counts: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO sessions (base_url, output_path, started_at, finished_at,
		urls_admitted, urls_completed, entries_written, changefreq_counts, interrupted)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		summary.BaseURL,
		summary.OutputPath,
		summary.StartedAt.UTC().Format(time.RFC3339Nano),
		summary.FinishedAt.UTC().Format(time.RFC3339Nano),
		summary.URLsAdmitted,
		summary.URLsCompleted,
		summary.EntriesWritten,
		string(freqJSON),
		boolToInt(summary.Interrupted),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}

	sessionID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get session id: %w", err)
	}

	// UPSERT keeps a retried save idempotent per (session, url).
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (session_id, url, status_code, content_type, title, depth, links, fetched_at, in_sitemap)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id, url) DO UPDATE SET
		status_code = excluded.status_code,
		content_type = excluded.content_type,
		title = excluded.title,
		depth = excluded.depth,
		links = excluded.links,
		fetched_at = excluded.fetched_at,
		in_sitemap = excluded.in_sitemap
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pages {
		if _, err := stmt.ExecContext(ctx,
			sessionID,
			p.URL,
			p.StatusCode,
			p.ContentType,
			p.Title,
			p.Depth,
			p.Links,
			p.FetchedAt.UTC().Format(time.RFC3339Nano),
			boolToInt(p.InSitemap),
		); err != nil {
			return 0, fmt.Errorf("failed to insert page record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}

	return sessionID, nil
}

// SessionMetadata contains summary information about a stored session.
// This is used for displaying crawl history without loading the page
// records.
type SessionMetadata struct {
	// ID is the unique identifier of the session in the database.
	ID int64

	// BaseURL is the crawl root of the session.
	BaseURL string

	// StartedAt and FinishedAt bound the crawl session.
	StartedAt  time.Time
	FinishedAt time.Time

	// EntriesWritten is the number of sitemap entries produced.
	EntriesWritten int

	// URLsCompleted is the number of URLs processed.
	URLsCompleted int

	// Interrupted reports whether the session was cut short.
	Interrupted bool
}

// ListSessions returns stored sessions, most recent first.
// When baseURL is non-empty, only sessions for that crawl root are
// returned.
func (cdb *CrawlDB) ListSessions(ctx context.Context, baseURL string) ([]SessionMetadata, error) {
	query := `
	SELECT id, base_url, started_at, finished_at, entries_written, urls_completed, interrupted
	FROM sessions
	`
	args := make([]any, 0, 1)
	if baseURL != "" {
		query += " WHERE base_url = ?"
		args = append(args, baseURL)
	}
	query += " ORDER BY started_at DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var results []SessionMetadata
	for rows.Next() {
		var meta SessionMetadata
		var started, finished string
		var interrupted int

		if err := rows.Scan(&meta.ID, &meta.BaseURL, &started, &finished,
			&meta.EntriesWritten, &meta.URLsCompleted, &interrupted); err != nil {
			return nil, fmt.Errorf("failed to scan session metadata: %w", err)
		}

		meta.StartedAt = parseTimestamp(started)
		meta.FinishedAt = parseTimestamp(finished)
		meta.Interrupted = interrupted != 0

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetSession retrieves a full crawl summary by its database ID.
// Returns nil without error when the session does not exist.
func (cdb *CrawlDB) GetSession(ctx context.Context, id int64) (*model.CrawlSummary, error) {
	query := `
	SELECT base_url, output_path, started_at, finished_at,
		urls_admitted, urls_completed, entries_written, changefreq_counts, interrupted
	FROM sessions
	WHERE id = ?
	`

	var summary model.CrawlSummary
	var started, finished string
	var freqJSON sql.NullString
	var interrupted int

	err := cdb.db.QueryRowContext(ctx, query, id).Scan(
		&summary.BaseURL,
		&summary.OutputPath,
		&started,
		&finished,
		&summary.URLsAdmitted,
		&summary.URLsCompleted,
		&summary.EntriesWritten,
		&freqJSON,
		&interrupted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	summary.StartedAt = parseTimestamp(started)
	summary.FinishedAt = parseTimestamp(finished)
	summary.Interrupted = interrupted != 0

	if freqJSON.Valid && freqJSON.String != "" {
		if err := json.Unmarshal([]byte(freqJSON.String), &summary.ChangeFreqCounts); err != nil {
			return nil, fmt.Errorf("failed to parse changefreq counts: %w", err)
		}
	}

	return &summary, nil
}

// GetSessionPages retrieves the page records of a session in insertion
// order.
func (cdb *CrawlDB) GetSessionPages(ctx context.Context, sessionID int64) ([]*model.Page, error) {
	query := `
	SELECT url, status_code, content_type, title, depth, links, fetched_at, in_sitemap
	FROM pages
	WHERE session_id = ?
	ORDER BY id
	`

	rows, err := cdb.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session pages: %w", err)
	}
	defer rows.Close()

	var pages []*model.Page
	for rows.Next() {
		var p model.Page
		var fetched string
		var inSitemap int

		if err := rows.Scan(&p.URL, &p.StatusCode, &p.ContentType, &p.Title,
			&p.Depth, &p.Links, &fetched, &inSitemap); err != nil {
			return nil, fmt.Errorf("failed to scan page record: %w", err)
		}

		p.FetchedAt = parseTimestamp(fetched)
		p.InSitemap = inSitemap != 0

		pages = append(pages, &p)
	}

	return pages, rows.Err()
}

// boolToInt maps Go booleans onto SQLite integer columns.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // what SaveSession writes
	time.RFC3339,              // RFC3339 without fractional seconds
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending
// on configuration. If parsing fails with all formats, returns zero
// time rather than erroring out of a history listing.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
