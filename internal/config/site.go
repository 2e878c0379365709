package config

// SiteConfig holds per-site scan settings loaded from the configuration file.
// Sites are keyed by host (including port, if non-standard), allowing
// different cookies, headers, or crawl behavior per target.
type SiteConfig struct {
	// Cookie is the cookie string sent with requests to this site.
	// Format: "name=value" or "name1=value1; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are additional HTTP headers sent with requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the User-Agent header for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Depth overrides the crawl depth for this site.
	// Zero means "use the default depth".
	Depth int `yaml:"depth,omitempty"`

	// IgnorePatterns are URL patterns to skip during crawling.
	// Supports glob-style wildcards: "*/logout*", "*/admin/*".
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns restricts crawling to matching URLs only.
	// If empty, all same-host URLs are followed (minus ignores).
	FollowPatterns []string `yaml:"followPatterns,omitempty"`

	// Signatures are additional case-insensitive substrings reported by
	// the keyword fallback tier. Useful for site-specific error strings
	// the built-in signature sets don't know about.
	Signatures []string `yaml:"signatures,omitempty"`
}

// File represents the complete configuration file structure.
// Example .vscan.yml:
//
//	defaults:
//	  depth: 2
//	sites:
//	  staging.example.com:
//	    cookie: "session=abc123"
//	    userAgent: "internal-scanner/1.0"
//	    headers:
//	      X-Scan-Auth: "token"
//	    ignorePatterns:
//	      - "*/logout*"
type File struct {
	// Sites maps host names to their specific configurations.
	Sites map[string]SiteConfig `yaml:"sites"`

	// Defaults applies to all sites unless overridden per-site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the effective configuration for a host,
// merging site-specific settings over the defaults.
//
// Merge rules:
//   - Cookie: site value wins if non-empty
//   - UserAgent: site value wins if non-empty
//   - Headers: merged, site values override defaults on key conflict
//   - Depth: site value wins if non-zero
//   - Patterns and signatures: site values replace defaults entirely if non-empty
func (f *File) GetSiteConfig(host string) SiteConfig {
	merged := f.Defaults

	site, ok := f.Sites[host]
	if !ok {
		return merged
	}

	if site.Cookie != "" {
		merged.Cookie = site.Cookie
	}
	if site.UserAgent != "" {
		merged.UserAgent = site.UserAgent
	}
	if site.Depth != 0 {
		merged.Depth = site.Depth
	}

	// Headers merge: start with defaults, let site entries override
	if len(site.Headers) > 0 {
		headers := make(map[string]string, len(merged.Headers)+len(site.Headers))
		for k, v := range merged.Headers {
			headers[k] = v
		}
		for k, v := range site.Headers {
			headers[k] = v
		}
		merged.Headers = headers
	}

	// Patterns and signatures replace rather than merge; mixing the two
	// lists would make it impossible to drop a default entry for one site
	if len(site.IgnorePatterns) > 0 {
		merged.IgnorePatterns = site.IgnorePatterns
	}
	if len(site.FollowPatterns) > 0 {
		merged.FollowPatterns = site.FollowPatterns
	}
	if len(site.Signatures) > 0 {
		merged.Signatures = site.Signatures
	}

	return merged
}
