package scope

import "testing"

// TestNewPolicy tests base URL validation.
func TestNewPolicy(t *testing.T) {
	t.Parallel()

	t.Run("accepts absolute http URL", func(t *testing.T) {
		t.Parallel()

		p, err := NewPolicy("https://example.com/docs")
		if err != nil {
			t.Fatalf("failed to create policy: %v", err)
		}
		if got := p.BaseURL(); got != "https://example.com/docs" {
			t.Errorf("expected base URL %q, got %q", "https://example.com/docs", got)
		}
	})

	t.Run("strips query and fragment from base", func(t *testing.T) {
		t.Parallel()

		p, err := NewPolicy("https://example.com/docs?lang=en#top")
		if err != nil {
			t.Fatalf("failed to create policy: %v", err)
		}
		if got := p.BaseURL(); got != "https://example.com/docs" {
			t.Errorf("expected canonical base %q, got %q", "https://example.com/docs", got)
		}
	})

	t.Run("rejects non-http scheme", func(t *testing.T) {
		t.Parallel()

		if _, err := NewPolicy("ftp://example.com/docs"); err == nil {
			t.Error("expected error for ftp scheme, got nil")
		}
	})

	t.Run("rejects relative URL", func(t *testing.T) {
		t.Parallel()

		if _, err := NewPolicy("/docs"); err == nil {
			t.Error("expected error for relative base URL, got nil")
		}
	})
}

// TestPolicyNormalize tests link admission decisions.
func TestPolicyNormalize(t *testing.T) {
	t.Parallel()

	policy, err := NewPolicy("https://example.com/docs")
	if err != nil {
		t.Fatalf("failed to create policy: %v", err)
	}

	const page = "https://example.com/docs"

	tests := []struct {
		name       string
		candidate  string
		want       string
		wantReason Reason
	}{
		{"empty href", "", "", ReasonNotHTTP},
		{"bare fragment", "#section", "", ReasonNotHTTP},
		{"javascript pseudo protocol", "javascript:void(0)", "", ReasonNotHTTP},
		{"mailto scheme", "mailto:admin@example.com", "", ReasonNotHTTP},
		{"absolute in scope", "https://example.com/docs/a", "https://example.com/docs/a", ReasonAdmitted},
		{"relative resolves in scope", "/docs/a", "https://example.com/docs/a", ReasonAdmitted},
		{"fragment stripped to canonical", "/docs/a#frag", "https://example.com/docs/a", ReasonAdmitted},
		{"query stripped to canonical", "/docs/a?page=2", "https://example.com/docs/a", ReasonAdmitted},
		{"dot segments resolved", "/docs/sub/../a", "https://example.com/docs/a", ReasonAdmitted},
		{"external host", "https://other.com/x", "", ReasonCrossDomain},
		{"same host outside prefix", "https://example.com/blog", "", ReasonCrossDomain},
		{"subdomain is a different host", "https://www.example.com/docs/a", "", ReasonCrossDomain},
		{"excluded pdf", "/docs/report.pdf", "", ReasonExcludedExtension},
		{"excluded png", "https://example.com/docs/logo.png", "", ReasonExcludedExtension},
		{"extension match is case sensitive", "/docs/report.PDF", "https://example.com/docs/report.PDF", ReasonAdmitted},
		{"query does not trigger extension check", "/docs/a?file=x.pdf", "https://example.com/docs/a", ReasonAdmitted},
		{"malformed URL", "https://exa mple.com/%zz", "", ReasonMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, reason := policy.Normalize(page, tt.candidate)
			if reason != tt.wantReason {
				t.Errorf("Normalize(%q) reason = %s, want %s", tt.candidate, reason, tt.wantReason)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.candidate, got, tt.want)
			}
		})
	}
}

// TestPolicyNormalizeIsDeterministic verifies the policy is pure: the
// same inputs always yield the same decision and canonical form.
func TestPolicyNormalizeIsDeterministic(t *testing.T) {
	t.Parallel()

	policy, err := NewPolicy("https://example.com/docs")
	if err != nil {
		t.Fatalf("failed to create policy: %v", err)
	}

	first, firstReason := policy.Normalize("https://example.com/docs", "sub/page?x=1#y")
	for range 10 {
		got, reason := policy.Normalize("https://example.com/docs", "sub/page?x=1#y")
		if got != first || reason != firstReason {
			t.Fatalf("normalization not deterministic: got (%q, %s), want (%q, %s)",
				got, reason, first, firstReason)
		}
	}
}

// TestPolicyRelativeResolution verifies resolution against the page the
// link appeared on, not the crawl base.
func TestPolicyRelativeResolution(t *testing.T) {
	t.Parallel()

	policy, err := NewPolicy("https://example.com/docs")
	if err != nil {
		t.Fatalf("failed to create policy: %v", err)
	}

	got, reason := policy.Normalize("https://example.com/docs/guide/", "chapter1")
	if reason != ReasonAdmitted {
		t.Fatalf("expected admission, got %s", reason)
	}
	if want := "https://example.com/docs/guide/chapter1"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

// TestReasonString tests rejection reason labels.
func TestReasonString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reason Reason
		want   string
	}{
		{ReasonAdmitted, "admitted"},
		{ReasonNotHTTP, "not-http-scheme"},
		{ReasonCrossDomain, "cross-domain"},
		{ReasonExcludedExtension, "excluded-extension"},
		{ReasonMalformed, "malformed"},
		{Reason(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("Reason(%d).String() = %q, want %q", tt.reason, got, tt.want)
		}
	}
}
