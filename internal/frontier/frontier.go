package frontier

import "sync"

// Frontier is the crawl's combined work queue and deduplication set.
// It tracks three populations of canonical URLs:
//
//   - pending: admitted but not yet dispatched to a worker
//   - admitted: every URL ever accepted (pending, in flight, or done)
//   - completed: dispatched URLs whose processing finished
//
// A URL that has ever been admitted never re-enters pending, so no live
// URL is dispatched twice and the crawl terminates on any finite link
// graph. The admitted set is always a superset of the completed set.
//
// Design decision: All state is guarded by a single mutex rather than a
// lock-free structure because TryAdmit, Dispatch, and MarkComplete must
// be atomic with respect to each other, and the URL counts involved in a
// single-site crawl never justify lock-free complexity. The raw
// collections are never exposed to callers; only the atomic operations
// and a read-only snapshot are.
type Frontier struct {
	mu        sync.Mutex
	pending   []string
	admitted  map[string]struct{}
	completed map[string]struct{}
	inFlight  int
}

// New creates an empty Frontier.
func New() *Frontier {
	return &Frontier{
		pending:   make([]string, 0),
		admitted:  make(map[string]struct{}),
		completed: make(map[string]struct{}),
	}
}

// Seed admits the base URL unconditionally. It is intended to be called
// once, before any workers start.
func (f *Frontier) Seed(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.admitted[url]; ok {
		return
	}
	f.admitted[url] = struct{}{}
	f.pending = append(f.pending, url)
}

// TryAdmit atomically checks the admitted set, inserts the URL if
// absent, and enqueues it as pending. It reports whether the URL was
// newly admitted. Calling TryAdmit twice with the same canonical URL
// returns true exactly once.
func (f *Frontier) TryAdmit(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.admitted[url]; ok {
		return false
	}
	f.admitted[url] = struct{}{}
	f.pending = append(f.pending, url)
	return true
}

// Dispatch removes and returns one pending URL in FIFO order and marks
// it in flight. ok=false means the queue is empty at this moment, which
// is not the same as the crawl being finished: other workers may still
// be processing URLs that will produce new work. Use IsDrained for the
// termination check.
//
// FIFO order gives a breadth-first-like depth progression; it is a
// predictability nicety, not a correctness requirement.
func (f *Frontier) Dispatch() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 {
		return "", false
	}
	url := f.pending[0]
	f.pending = f.pending[1:]
	f.inFlight++
	return url, true
}

// MarkComplete records that processing of a dispatched URL finished,
// successfully or not. The URL enters the completed set permanently.
func (f *Frontier) MarkComplete(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.completed[url] = struct{}{}
	if f.inFlight > 0 {
		f.inFlight--
	}
}

// IsDrained reports whether the crawl is finished: no pending work and
// no URL currently in flight. This is the sole termination condition;
// checking queue emptiness alone is insufficient because in-flight
// workers may still enqueue new URLs.
func (f *Frontier) IsDrained() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending) == 0 && f.inFlight == 0
}

// Stats is a point-in-time snapshot of frontier counters, exposed for
// progress reporting. The frontier does not own any display mechanism;
// callers poll this and render it however they like.
type Stats struct {
	// Pending is the number of admitted URLs waiting for dispatch.
	Pending int

	// InFlight is the number of URLs currently being processed.
	InFlight int

	// Admitted is the total number of distinct URLs ever accepted.
	Admitted int

	// Completed is the number of URLs whose processing finished.
	Completed int
}

// Snapshot returns current frontier counters.
func (f *Frontier) Snapshot() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Stats{
		Pending:   len(f.pending),
		InFlight:  f.inFlight,
		Admitted:  len(f.admitted),
		Completed: len(f.completed),
	}
}
