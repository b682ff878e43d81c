package config

// SiteConfig holds per-site configuration overrides keyed by hostname.
// This allows tuning crawl behavior for individual sites without
// repeating CLI flags on every run.
type SiteConfig struct {
	// Workers overrides the global worker count for this site.
	// If zero, the global value is used.
	Workers int `yaml:"workers,omitempty"`

	// DelayMinSeconds and DelayMaxSeconds override the politeness
	// delay bounds, expressed in seconds. Zero means the global value.
	DelayMinSeconds float64 `yaml:"delayMin,omitempty"`
	DelayMaxSeconds float64 `yaml:"delayMax,omitempty"`

	// UserAgent overrides the User-Agent header for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Headers are custom HTTP headers to include in requests to this
	// site, such as cookies for authenticated staging environments.
	Headers map[string]string `yaml:"headers,omitempty"`

	// ExcludedExtensions replaces the built-in excluded-extension
	// list for this site. An empty list keeps the global list.
	ExcludedExtensions []string `yaml:"excludedExtensions,omitempty"`

	// RateLimit caps requests per second for this site.
	// Zero means the global value.
	RateLimit float64 `yaml:"rateLimit,omitempty"`
}

// File represents the structure of the .sitemapgen configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys are bare hostnames without scheme (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all
	// sites unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific hostname.
// It merges the site-specific configuration with the file's defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Workers != 0 {
			result.Workers = siteConfig.Workers
		}
		if siteConfig.DelayMinSeconds != 0 {
			result.DelayMinSeconds = siteConfig.DelayMinSeconds
		}
		if siteConfig.DelayMaxSeconds != 0 {
			result.DelayMaxSeconds = siteConfig.DelayMaxSeconds
		}
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
		if len(siteConfig.ExcludedExtensions) > 0 {
			result.ExcludedExtensions = siteConfig.ExcludedExtensions
		}
		if siteConfig.RateLimit != 0 {
			result.RateLimit = siteConfig.RateLimit
		}
	}

	return result
}
