package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitemapgen/internal/config"
	"github.com/nao1215/sitemapgen/internal/crawler"
	"github.com/nao1215/sitemapgen/internal/database"
	"github.com/nao1215/sitemapgen/internal/fetcher"
	"github.com/nao1215/sitemapgen/internal/log"
	"github.com/nao1215/sitemapgen/internal/model"
	"github.com/nao1215/sitemapgen/internal/report"
	"github.com/nao1215/sitemapgen/internal/scope"
	"github.com/nao1215/sitemapgen/internal/sitemap"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <base-url>",
		Short: "Crawl a website and generate sitemap.xml",
		Long: `Generate crawls a website starting from the base URL and writes a
sitemap.xml conforming to the sitemaps.org protocol.

Only pages on the same host at or below the base URL path are included.
Each page's changefreq and priority are derived from its path depth:
the site root gets daily/1.0, top-level sections weekly/0.8, and deeper
pages monthly with decreasing priority.

Interrupting the crawl with Ctrl-C still writes a sitemap containing
every page collected so far.

Examples:
  # Crawl a documentation subtree
  sitemapgen generate https://example.com/docs

  # Faster crawl against your own staging server
  sitemapgen generate --workers 10 --delay-min 0 --delay-max 0 https://staging.example.com

  # Write the sitemap somewhere else and emit a markdown report
  sitemapgen generate -o public/sitemap.xml --markdown https://example.com

Configuration file (.sitemapgen) example:
  sites:
    example.com:
      workers: 10
      headers:
        Cookie: "session=abc123"
    slow.example.org:
      delayMax: 10
      rateLimit: 0.5`,
		Args: cobra.ExactArgs(1),
		RunE: runGenerateCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent fetch workers")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().Duration("delay-min", config.DefaultDelayMin,
		"Minimum politeness delay before each fetch")
	cmd.Flags().Duration("delay-max", config.DefaultDelayMax,
		"Maximum politeness delay before each fetch (0 disables the delay)")
	cmd.Flags().Float64P("rate-limit", "r", 0,
		"Maximum requests per second across all workers (0 = unlimited)")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header for HTTP requests")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutput,
		"Sitemap output file path (directories are created if needed)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitemapgen in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON crawl report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown crawl report (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Write the crawl report to specified file path instead of stdout")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not record this crawl in the history database")

	return cmd
}

// runGenerateCmd executes the generate command.
func runGenerateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown.
	// An interrupted crawl still writes the partial sitemap below.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("received shutdown signal, finishing with partial sitemap...")
		cancel()
	}()

	return runGenerate(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and applies
// per-site overrides from the configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.BaseURL = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.DelayMin, err = cmd.Flags().GetDuration("delay-min")
	if err != nil {
		return nil, err
	}

	cfg.DelayMax, err = cmd.Flags().GetDuration("delay-max")
	if err != nil {
		return nil, err
	}

	cfg.RateLimit, err = cmd.Flags().GetFloat64("rate-limit")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.Output, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If the user explicitly specified a config file path, error if not
	// found. If no path specified, silently use an empty config.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("report-file")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	applySiteConfig(cmd, cfg)

	return cfg, nil
}

// applySiteConfig merges per-site overrides from the config file into
// cfg. CLI flags explicitly set by the user win over file values.
func applySiteConfig(cmd *cobra.Command, cfg *config.Config) {
	if cfg.SiteConfigs == nil {
		return
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Hostname() == "" {
		// Validation rejects the URL with a better message later.
		return
	}

	sc := cfg.SiteConfigs.GetSiteConfig(parsed.Hostname())

	if sc.Workers > 0 && !cmd.Flags().Changed("workers") {
		cfg.Workers = sc.Workers
	}
	if sc.DelayMinSeconds > 0 && !cmd.Flags().Changed("delay-min") {
		cfg.DelayMin = time.Duration(sc.DelayMinSeconds * float64(time.Second))
	}
	if sc.DelayMaxSeconds > 0 && !cmd.Flags().Changed("delay-max") {
		cfg.DelayMax = time.Duration(sc.DelayMaxSeconds * float64(time.Second))
	}
	if sc.UserAgent != "" && !cmd.Flags().Changed("user-agent") {
		cfg.UserAgent = sc.UserAgent
	}
	if sc.RateLimit > 0 && !cmd.Flags().Changed("rate-limit") {
		cfg.RateLimit = sc.RateLimit
	}
	if len(sc.ExcludedExtensions) > 0 {
		cfg.ExcludedExtensions = sc.ExcludedExtensions
	}
	cfg.SiteHeaders = sc.Headers
}

// runGenerate executes the crawl and writes the sitemap.
func runGenerate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Preflight the output path before crawling so a bad path fails in
	// milliseconds instead of after the whole crawl.
	if dir := filepath.Dir(cfg.Output); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	policyOpts := []scope.Option{}
	if len(cfg.ExcludedExtensions) > 0 {
		policyOpts = append(policyOpts, scope.WithExcludedExtensions(cfg.ExcludedExtensions))
	}
	policy, err := scope.NewPolicy(cfg.BaseURL, policyOpts...)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	fetchOpts := []fetcher.Option{
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
	}
	if len(cfg.SiteHeaders) > 0 {
		fetchOpts = append(fetchOpts, fetcher.WithHeaders(cfg.SiteHeaders))
	}
	if cfg.RateLimit > 0 {
		fetchOpts = append(fetchOpts, fetcher.WithRateLimit(cfg.RateLimit))
	}

	builder := sitemap.NewBuilder()
	c := crawler.New(policy, fetcher.New(fetchOpts...), builder,
		crawler.WithWorkers(cfg.Workers),
		crawler.WithDelayRange(cfg.DelayMin, cfg.DelayMax),
		crawler.WithLogger(logger),
	)

	fmt.Printf("Crawling %s...\n", policy.BaseURL())
	startTime := time.Now()

	summary := c.Run(ctx)
	summary.OutputPath = cfg.Output

	// The sitemap is written even when the crawl was interrupted; a
	// partial sitemap beats no sitemap.
	if err := builder.WriteFile(cfg.Output); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}

	elapsed := time.Since(startTime)
	if summary.Interrupted {
		fmt.Printf("Crawl interrupted after %s; wrote partial sitemap with %d entries to %s\n",
			elapsed.Round(time.Millisecond), summary.EntriesWritten, cfg.Output)
	} else {
		fmt.Printf("Crawl completed in %s; wrote %d entries to %s\n",
			elapsed.Round(time.Millisecond), summary.EntriesWritten, cfg.Output)
	}

	if err := outputReport(cfg, summary, c.Pages()); err != nil {
		logger.Error("report failed", "error", err)
	}

	if cfg.SaveToDB {
		// Session persistence uses a fresh context: the crawl context
		// is already cancelled after an interrupt, and the partial
		// session is exactly what history comparison needs.
		if err := saveSession(context.Background(), cfg, summary, c.Pages(), logger); err != nil {
			logger.Error("failed to save crawl session", "error", err)
		}
	}

	return nil
}

// outputReport outputs the crawl report in the requested format.
// The default text report goes to stdout; --report-file redirects any
// format to a file.
func outputReport(cfg *config.Config, summary *model.CrawlSummary, pages []*model.Page) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(summary, pages)
	return err
}

// saveSession persists the crawl session to the history database.
func saveSession(ctx context.Context, cfg *config.Config, summary *model.CrawlSummary, pages []*model.Page, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveSession(ctx, summary, pages)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	logger.Debug("crawl session saved", "id", id, "dir", cfg.DBDir)
	return nil
}
