package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Page represents a fetched web page with all extracted information.
// This structure holds both the raw response data and parsed content.
//
// Design decision: We store both raw bytes and a text snapshot because:
// 1. Raw bytes preserve the exact response for hashing and re-analysis
// 2. The decoded snapshot is what signature matching runs against
// 3. The hash allows deduplication and change detection between scans
type Page struct {
	// URL is the full URL that was requested.
	URL string `json:"url"`

	// FinalURL is the URL that produced the response after redirects.
	// Equal to URL when no redirect occurred.
	FinalURL string `json:"final_url,omitempty"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Headers contains all HTTP response headers.
	// Keys are header names (canonicalized), values are slices of header values.
	Headers map[string][]string `json:"headers"`

	// ContentType is the MIME type of the response.
	// Extracted from Content-Type header for convenience.
	ContentType string `json:"content_type"`

	// Title is the page title extracted from <title> tag.
	// Empty for non-HTML content. Framework error pages often carry
	// telltale titles ("Whitelabel Error Page", "Runtime Error").
	Title string `json:"title,omitempty"`

	// Anchors contains all anchor (<a>) elements.
	// Used for crawling and link analysis.
	Anchors []Element `json:"anchors,omitempty"`

	// Snapshot is the response body decoded to UTF-8 text.
	// Limited to MaxSnapshotSize bytes. Signature matching runs on this.
	Snapshot string `json:"snapshot,omitempty"`

	// Raw contains the raw response body bytes as received.
	// Limited to MaxPageSize bytes.
	Raw []byte `json:"-"` // Excluded from JSON to reduce report size

	// Hash is the SHA-256 hash of the raw content.
	// Used for deduplication and change detection.
	Hash string `json:"hash"`

	// FetchedAt is when the page was retrieved.
	FetchedAt time.Time `json:"fetched_at"`
}

// MaxSnapshotSize is the maximum size of the text snapshot in bytes.
// We limit this to prevent memory issues with very large pages.
const MaxSnapshotSize = 512 * 1024 // 512 KB

// MaxPageSize is the maximum size of raw page content to store.
// Larger pages are truncated to this size.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// Element represents a generic HTML element with a source URL.
// Used for anchors and other referenced resources.
type Element struct {
	// Source is the element's src, href, or equivalent URL attribute.
	Source string `json:"source"`

	// Text is the inner text content (for anchors).
	Text string `json:"text,omitempty"`

	// Rel is the rel attribute (for links and anchors).
	Rel string `json:"rel,omitempty"`
}

// ComputeHash calculates and sets the SHA-256 hash of the page's raw content.
// This should be called after setting the Raw field.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}

	hash := sha256.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(hash[:])
}

// GetHeader returns the first value of the specified header.
// Returns empty string if the header is not present.
// Header names are case-insensitive in HTTP, but Go's http package
// canonicalizes them, so we store them in canonical form.
func (p *Page) GetHeader(name string) string {
	if values, ok := p.Headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// GetAllHeaders returns all values of the specified header.
// Returns nil if the header is not present.
func (p *Page) GetAllHeaders(name string) []string {
	return p.Headers[name]
}

// IsHTML returns true if the page content type indicates HTML.
func (p *Page) IsHTML() bool {
	return p.ContentType == "text/html" ||
		p.ContentType == "application/xhtml+xml" ||
		// Handle content types with charset suffix
		len(p.ContentType) > 9 && p.ContentType[:9] == "text/html"
}

// IsText returns true if the content type indicates any text-based body
// worth matching signatures against (HTML, plain text, JSON error payloads).
func (p *Page) IsText() bool {
	if p.IsHTML() {
		return true
	}
	switch {
	case len(p.ContentType) >= 5 && p.ContentType[:5] == "text/":
		return true
	case len(p.ContentType) >= 16 && p.ContentType[:16] == "application/json":
		return true
	case len(p.ContentType) >= 15 && p.ContentType[:15] == "application/xml":
		return true
	}
	return false
}

// TruncateSnapshot ensures the snapshot doesn't exceed MaxSnapshotSize.
// Call this after setting the snapshot to enforce the size limit.
func (p *Page) TruncateSnapshot() {
	if len(p.Snapshot) > MaxSnapshotSize {
		p.Snapshot = p.Snapshot[:MaxSnapshotSize]
	}
}

// TruncateRaw ensures the raw content doesn't exceed MaxPageSize.
// Call this after setting Raw to enforce the size limit.
func (p *Page) TruncateRaw() {
	if len(p.Raw) > MaxPageSize {
		p.Raw = p.Raw[:MaxPageSize]
	}
}
