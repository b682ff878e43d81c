package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values match the behavior expected of a polite single-domain
// crawler: generous delays, a small worker pool, and a browser-like
// User-Agent for sites that reject obvious bots.
const (
	// DefaultWorkers is the number of concurrent fetch workers.
	// Five workers saturate most small-to-medium sites without
	// looking like an attack. Larger sites can raise this via the
	// --workers CLI flag.
	DefaultWorkers = 5

	// DefaultTimeout is the per-request HTTP timeout. Ten seconds is
	// long enough for slow origins and short enough that a dead
	// endpoint does not stall a worker for long.
	DefaultTimeout = 10 * time.Second

	// DefaultDelayMin and DefaultDelayMax bound the random politeness
	// delay each worker sleeps before fetching a page. Randomizing
	// within a range avoids the lockstep request bursts a fixed delay
	// produces with multiple workers.
	DefaultDelayMin = 1 * time.Second
	DefaultDelayMax = 3 * time.Second

	// DefaultOutput is the sitemap file path written at the end of a
	// crawl, relative to the working directory.
	DefaultOutput = "sitemap.xml"

	// DefaultUserAgent is a browser-like User-Agent. Some sites serve
	// reduced pages or outright 403s to clients that identify as
	// crawlers, which would silently shrink the sitemap.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "sitemapgen"
)

// Config holds all configuration options for a sitemap generation run.
// This struct is designed to be populated from CLI flags and passed
// through the application via dependency injection rather than global
// state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, OutputConfig) for simplicity. The number of
// options is manageable, and nesting would add complexity without
// significant benefit.
type Config struct {
	// BaseURL is the crawl root. Only URLs at or below this prefix on
	// the same host are admitted. Must use the http or https scheme.
	BaseURL string

	// Workers is the number of concurrent fetch workers.
	Workers int

	// Timeout is the HTTP timeout applied to each individual request,
	// not the overall crawl duration.
	Timeout time.Duration

	// DelayMin and DelayMax bound the random politeness delay before
	// each fetch. Set both to zero to disable the delay entirely
	// (useful against local or staging servers).
	DelayMin time.Duration
	DelayMax time.Duration

	// Output is the sitemap file path. Parent directories are created
	// before the crawl starts so a bad path fails fast rather than
	// after minutes of crawling.
	Output string

	// Verbose enables detailed log output using slog.LevelDebug,
	// including the per-URL rejection and skip reasons.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON crawl report output instead of the
	// human-readable summary. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown crawl report output with tables.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the crawl report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory path for storing the SQLite database.
	// When set, crawl sessions are saved for historical comparison.
	// Defaults to the XDG data directory when SaveToDB is enabled.
	DBDir string

	// SaveToDB indicates whether to persist the crawl session to the
	// database. Automatically set to true when DBDir is configured.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// RateLimit caps outgoing requests per second across all workers.
	// Zero means no rate limiting beyond the politeness delay.
	RateLimit float64

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated. Zero uses the default.
	MaxBodySize int64

	// SiteHeaders are extra HTTP headers for the crawled site, merged
	// from the config file's per-site overrides.
	SiteHeaders map[string]string

	// ExcludedExtensions are path suffixes that are never crawled.
	// When nil, the built-in list (binary documents and images) is
	// used; a config file can replace it per site.
	ExcludedExtensions []string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .sitemapgen in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config
	// file. Populated by LoadConfigFile and consulted before a crawl.
	SiteConfigs *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most
// use cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout,
// worker count). This also serves as documentation of the defaults.
func NewConfig() *Config {
	return &Config{
		Workers:     DefaultWorkers,
		Timeout:     DefaultTimeout,
		DelayMin:    DefaultDelayMin,
		DelayMax:    DefaultDelayMax,
		Output:      DefaultOutput,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for sitemapgen.
// On Linux: ~/.local/share/sitemapgen
// On macOS: ~/Library/Application Support/sitemapgen
// On Windows: %LOCALAPPDATA%\sitemapgen
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitemapgen.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	// Timeout must be positive; zero would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.DelayMin < 0 || c.DelayMax < 0 {
		return ErrInvalidDelay
	}
	if c.DelayMax > 0 && c.DelayMin > c.DelayMax {
		return ErrInvalidDelay
	}

	if c.Output == "" {
		return ErrNoOutput
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
