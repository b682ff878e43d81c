package crawler

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitemapgen/internal/fetcher"
	"github.com/nao1215/sitemapgen/internal/frontier"
	"github.com/nao1215/sitemapgen/internal/model"
	"github.com/nao1215/sitemapgen/internal/scope"
	"github.com/nao1215/sitemapgen/internal/sitemap"
)

// Default coordinator settings.
const (
	// DefaultWorkers is the crawl worker pool size. Five workers keeps
	// throughput reasonable without hammering the target server.
	DefaultWorkers = 5

	// DefaultDelayMin and DefaultDelayMax bound the randomized
	// politeness delay inserted before each fetch dispatch.
	DefaultDelayMin = 1 * time.Second
	DefaultDelayMax = 3 * time.Second

	// dispatchPollInterval is how long an idle worker waits before
	// re-checking the frontier when the queue is momentarily empty but
	// other workers are still in flight.
	dispatchPollInterval = 50 * time.Millisecond
)

// State describes where the coordinator is in its lifecycle.
type State int

// Coordinator lifecycle states.
const (
	// StateSeeding means the crawl has not started yet.
	StateSeeding State = iota

	// StateRunning means workers are dispatching and processing URLs.
	StateRunning

	// StateDraining means the queue is empty and the coordinator is
	// waiting for in-flight workers to finish their current page.
	StateDraining

	// StateFinished means the frontier drained and all workers exited.
	StateFinished

	// StateInterrupted means an external stop signal ended the crawl
	// before the frontier drained.
	StateInterrupted
)

// String returns a human-readable state label.
func (s State) String() string {
	switch s {
	case StateSeeding:
		return "seeding"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateFinished:
		return "finished"
	case StateInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// FetchClient is the transport capability the coordinator consumes.
// *fetcher.Fetcher satisfies it; tests substitute stubs.
type FetchClient interface {
	Fetch(ctx context.Context, url string) (*fetcher.Result, error)
}

// Coordinator owns the frontier and a fixed pool of crawl workers. Each
// worker repeatedly dispatches a URL, waits a randomized politeness
// delay, fetches the page, feeds newly discovered in-scope links back
// into the frontier, and records a sitemap entry for every successfully
// fetched HTML page. The crawl ends when the frontier drains: no
// pending work and no worker mid-page.
//
// Design decision: Workers share exactly two independently locked
// structures, the frontier and the sitemap builder. Neither lock is
// ever held while the other is taken, and neither is held across the
// politeness delay or the network fetch, so workers block each other
// only for map and slice operations.
type Coordinator struct {
	policy   *scope.Policy
	frontier *frontier.Frontier
	fetch    FetchClient
	builder  *sitemap.Builder
	logger   *slog.Logger

	workers  int
	delayMin time.Duration
	delayMax time.Duration

	// started and done track lifecycle for State().
	started atomic.Bool
	done    atomic.Bool

	// interrupted records whether the crawl ended on a stop signal.
	interrupted atomic.Bool

	// currentURL is the most recently dispatched URL, for progress
	// reporting.
	currentURL atomic.Value

	// pages collects per-URL fetch records for the report and crawl
	// history database.
	pagesMu sync.Mutex
	pages   []*model.Page
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWorkers sets the worker pool size. A single worker degrades the
// crawl to a sequential one, which is a valid configuration: the
// frontier's operations are atomic regardless of worker count.
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithDelayRange bounds the randomized politeness delay inserted before
// each fetch. A max of zero disables the delay entirely (useful in
// tests and on servers you own).
func WithDelayRange(minDelay, maxDelay time.Duration) Option {
	return func(c *Coordinator) {
		c.delayMin = minDelay
		c.delayMax = maxDelay
	}
}

// WithLogger sets a custom logger for debug output of per-URL skip and
// rejection reasons.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// New creates a Coordinator for the scope defined by policy, fetching
// through fetch and accumulating output in builder.
func New(policy *scope.Policy, fetch FetchClient, builder *sitemap.Builder, opts ...Option) *Coordinator {
	c := &Coordinator{
		policy:   policy,
		frontier: frontier.New(),
		fetch:    fetch,
		builder:  builder,
		workers:  DefaultWorkers,
		delayMin: DefaultDelayMin,
		delayMax: DefaultDelayMax,
		pages:    make([]*model.Page, 0),
	}
	c.currentURL.Store("")

	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Run executes the crawl until the frontier drains or the context is
// cancelled. On cancellation workers abandon their in-flight fetches
// (requests carry the crawl context) and exit; the entries accumulated
// so far remain in the builder, so callers can render a partial sitemap
// on the interrupted path exactly as they would on normal completion.
func (c *Coordinator) Run(ctx context.Context) *model.CrawlSummary {
	startedAt := time.Now()
	c.frontier.Seed(c.policy.BaseURL())
	c.started.Store(true)

	g := new(errgroup.Group)
	g.SetLimit(c.workers)
	for range c.workers {
		g.Go(func() error {
			c.workerLoop(ctx)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Workers never return errors

	if ctx.Err() != nil {
		c.interrupted.Store(true)
	}
	c.done.Store(true)

	stats := c.frontier.Snapshot()
	summary := &model.CrawlSummary{
		BaseURL:          c.policy.BaseURL(),
		StartedAt:        startedAt,
		FinishedAt:       time.Now(),
		URLsAdmitted:     stats.Admitted,
		URLsCompleted:    stats.Completed,
		EntriesWritten:   c.builder.Len(),
		ChangeFreqCounts: c.changeFreqCounts(),
		Interrupted:      c.interrupted.Load(),
	}

	c.logger.Info("crawl finished",
		"state", c.State().String(),
		"admitted", stats.Admitted,
		"completed", stats.Completed,
		"entries", summary.EntriesWritten,
		"elapsed", summary.Duration().Round(time.Millisecond),
	)
	return summary
}

// workerLoop dispatches and processes URLs until the whole session is
// drained or the context is cancelled. A worker whose dispatch comes
// back empty does not exit immediately: other workers may still be
// processing pages that will enqueue new work, so it polls until
// IsDrained holds across the session.
func (c *Coordinator) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		url, ok := c.frontier.Dispatch()
		if !ok {
			if c.frontier.IsDrained() {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(dispatchPollInterval):
			}
			continue
		}

		c.processURL(ctx, url)
		c.frontier.MarkComplete(url)
	}
}

// processURL handles one dispatched URL: politeness delay, fetch, and
// on success link extraction plus sitemap entry creation. Every failure
// mode is contained here; the URL is marked complete by the caller
// regardless of outcome and is never retried by the engine.
func (c *Coordinator) processURL(ctx context.Context, url string) {
	c.currentURL.Store(url)

	if !c.politenessDelay(ctx) {
		return
	}

	result, err := c.fetch.Fetch(ctx, url)
	fetchedAt := time.Now()
	if err != nil {
		c.logger.Debug("skipping URL", "url", url, "reason", "fetch failed", "error", err)
		c.recordPage(&model.Page{URL: url, Depth: sitemap.Depth(url), FetchedAt: fetchedAt})
		return
	}

	page := &model.Page{
		URL:         url,
		StatusCode:  result.StatusCode,
		ContentType: result.ContentType,
		Depth:       sitemap.Depth(url),
		FetchedAt:   fetchedAt,
	}

	if result.StatusCode != http.StatusOK {
		c.logger.Debug("skipping URL", "url", url, "reason", "status", "status", result.StatusCode)
		c.recordPage(page)
		return
	}
	if !result.IsHTML() {
		c.logger.Debug("skipping URL", "url", url, "reason", "content type", "contentType", result.ContentType)
		c.recordPage(page)
		return
	}

	info, err := ExtractLinks(bytes.NewReader(result.Body))
	if err != nil {
		c.logger.Debug("skipping URL", "url", url, "reason", "parse failed", "error", err)
		c.recordPage(page)
		return
	}

	c.builder.AddEntry(url, fetchedAt)
	page.Title = info.Title
	page.Links = len(info.Hrefs)
	page.InSitemap = true
	c.recordPage(page)

	for _, href := range info.Hrefs {
		canonical, reason := c.policy.Normalize(url, href)
		if reason != scope.ReasonAdmitted {
			c.logger.Debug("rejected link", "page", url, "href", href, "reason", reason.String())
			continue
		}
		if c.frontier.TryAdmit(canonical) {
			c.logger.Debug("admitted link", "url", canonical)
		}
	}
}

// politenessDelay sleeps a uniformly random duration in the configured
// range before a fetch. It reports false if the context was cancelled
// while waiting. A non-positive max disables the delay.
func (c *Coordinator) politenessDelay(ctx context.Context) bool {
	if c.delayMax <= 0 {
		return true
	}
	d := c.delayMin
	if span := c.delayMax - c.delayMin; span > 0 {
		d += rand.N(span)
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// recordPage appends a per-URL fetch record.
func (c *Coordinator) recordPage(p *model.Page) {
	c.pagesMu.Lock()
	defer c.pagesMu.Unlock()
	c.pages = append(c.pages, p)
}

// Pages returns the per-URL fetch records accumulated so far, in
// completion order.
func (c *Coordinator) Pages() []*model.Page {
	c.pagesMu.Lock()
	defer c.pagesMu.Unlock()
	out := make([]*model.Page, len(c.pages))
	copy(out, c.pages)
	return out
}

// changeFreqCounts tallies builder entries per change frequency label.
func (c *Coordinator) changeFreqCounts() map[string]int {
	counts := make(map[string]int)
	for _, e := range c.builder.Entries() {
		counts[string(e.ChangeFreq)]++
	}
	return counts
}

// State derives the coordinator's lifecycle state. Running versus
// Draining is a point-in-time distinction read from frontier counters.
func (c *Coordinator) State() State {
	if !c.started.Load() {
		return StateSeeding
	}
	if c.done.Load() {
		if c.interrupted.Load() {
			return StateInterrupted
		}
		return StateFinished
	}
	stats := c.frontier.Snapshot()
	if stats.Pending == 0 && stats.InFlight > 0 {
		return StateDraining
	}
	return StateRunning
}

// Progress is a thread-safe snapshot of crawl progress for status
// displays. The coordinator owns no display mechanism; callers poll
// this from a ticker and render it however they like.
type Progress struct {
	// State is the coordinator's current lifecycle state.
	State State

	// CurrentURL is the most recently dispatched URL.
	CurrentURL string

	// Stats holds the frontier's counters.
	Stats frontier.Stats
}

// Progress returns a snapshot of crawl progress.
func (c *Coordinator) Progress() Progress {
	url, _ := c.currentURL.Load().(string)
	return Progress{
		State:      c.State(),
		CurrentURL: url,
		Stats:      c.frontier.Snapshot(),
	}
}
