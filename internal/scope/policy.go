package scope

import (
	"net/url"
	"strings"
)

// Reason classifies why a candidate link was rejected by the Policy.
// ReasonAdmitted means the link passed every check and the canonical
// form returned alongside it may be fed to the frontier.
type Reason int

// Rejection reasons returned by Policy.Normalize.
const (
	// ReasonAdmitted indicates the link is in scope.
	ReasonAdmitted Reason = iota

	// ReasonNotHTTP covers empty hrefs, bare fragments, and non-HTTP
	// schemes such as javascript: and mailto:.
	ReasonNotHTTP

	// ReasonCrossDomain covers links whose host differs from the base
	// domain, and same-host links that fall outside the base URL prefix.
	ReasonCrossDomain

	// ReasonExcludedExtension covers links whose path ends with a file
	// extension from the exclusion set (documents and images).
	ReasonExcludedExtension

	// ReasonMalformed covers links that cannot be parsed as URLs.
	ReasonMalformed
)

// String returns a short label for logging skip reasons in debug mode.
func (r Reason) String() string {
	switch r {
	case ReasonAdmitted:
		return "admitted"
	case ReasonNotHTTP:
		return "not-http-scheme"
	case ReasonCrossDomain:
		return "cross-domain"
	case ReasonExcludedExtension:
		return "excluded-extension"
	case ReasonMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// DefaultExcludedExtensions is the set of path suffixes never admitted
// into the crawl. These are documents and images that would never carry
// outgoing links or belong in a page sitemap.
//
// The match is a case-sensitive suffix check on the URL path only; query
// strings are not considered.
var DefaultExcludedExtensions = []string{
	".pdf", ".doc", ".docx", ".xls", ".xlsx",
	".jpg", ".jpeg", ".png", ".gif",
}

// Policy decides which discovered links are admitted into the crawl
// frontier. It is the single chokepoint that defines crawl scope: an
// overly permissive policy risks unbounded or cross-domain crawling,
// so every check lives here rather than being spread across callers.
//
// Design decision: We restrict admission strictly to links whose
// canonical form starts with the literal base URL (exact host match plus
// prefix match). A looser variant that admits any same-host path subtree
// was considered and rejected because it has ambiguous edge cases around
// partially overlapping prefixes.
//
// Policy is immutable after construction and all methods are pure, so a
// single instance is safe to share across crawl workers without locking.
type Policy struct {
	// basePrefix is the canonical base URL every admitted URL must
	// start with.
	basePrefix string

	// baseHost is the exact host (including port, if any) admitted
	// links must match.
	baseHost string

	// excludedExts are path suffixes that are never admitted.
	excludedExts []string
}

// Option configures a Policy.
type Option func(*Policy)

// WithExcludedExtensions overrides the default extension exclusion set.
func WithExcludedExtensions(exts []string) Option {
	return func(p *Policy) {
		p.excludedExts = exts
	}
}

// NewPolicy creates a Policy scoped to the given base URL.
// The base URL must be absolute with an http or https scheme; it is
// canonicalized (query and fragment stripped) before being used as the
// admission prefix.
func NewPolicy(baseURL string, opts ...Option) (*Policy, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &url.Error{Op: "parse", URL: baseURL, Err: errNotHTTP}
	}
	if u.Host == "" {
		return nil, &url.Error{Op: "parse", URL: baseURL, Err: errNoHost}
	}

	p := &Policy{
		basePrefix:   canonicalize(u),
		baseHost:     u.Host,
		excludedExts: DefaultExcludedExtensions,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// BaseURL returns the canonical base URL the policy is scoped to.
// This is the value the frontier should be seeded with.
func (p *Policy) BaseURL() string {
	return p.basePrefix
}

// Normalize resolves a raw candidate link against the page it appeared
// on and decides admission. On success it returns the canonical absolute
// URL (scheme, host, and path only) and ReasonAdmitted; otherwise it
// returns an empty string and the rejection reason.
//
// Resolution follows RFC 3986 merge semantics via net/url, so relative
// paths, "."/".." segments, and scheme-relative links all behave the way
// a browser would resolve them.
func (p *Policy) Normalize(pageURL, candidate string) (string, Reason) {
	candidate = strings.TrimSpace(candidate)

	// Fragments and pseudo-protocols never lead to new pages.
	if candidate == "" ||
		strings.HasPrefix(candidate, "#") ||
		strings.HasPrefix(candidate, "javascript:") ||
		strings.HasPrefix(candidate, "mailto:") {
		return "", ReasonNotHTTP
	}

	ref, err := url.Parse(candidate)
	if err != nil {
		return "", ReasonMalformed
	}

	resolved := ref
	if !ref.IsAbs() {
		base, err := url.Parse(pageURL)
		if err != nil {
			return "", ReasonMalformed
		}
		resolved = base.ResolveReference(ref)
	}

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", ReasonNotHTTP
	}
	if resolved.Host != p.baseHost {
		return "", ReasonCrossDomain
	}

	for _, ext := range p.excludedExts {
		if strings.HasSuffix(resolved.Path, ext) {
			return "", ReasonExcludedExtension
		}
	}

	canonical := canonicalize(resolved)
	if !strings.HasPrefix(canonical, p.basePrefix) {
		return "", ReasonCrossDomain
	}

	return canonical, ReasonAdmitted
}

// canonicalize strips the query and fragment, keeping scheme, host, and
// path. No trailing-slash normalization is applied beyond what URL
// parsing yields; a path of exactly "/" is preserved as "/".
func canonicalize(u *url.URL) string {
	c := url.URL{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   u.Path,
	}
	return c.String()
}
