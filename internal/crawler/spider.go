package crawler

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/vscan/internal/client"
	"github.com/nao1215/vscan/internal/model"
)

// Default crawl limits. Error pages tend to cluster near the entry
// points of a site, so the defaults stay shallow.
const (
	// DefaultMaxDepth is the default crawl depth from the start URL.
	DefaultMaxDepth = 3

	// DefaultMaxPages is the default total page cap per crawl.
	DefaultMaxPages = 25

	// DefaultDelay is the default politeness delay between requests.
	DefaultDelay = 1 * time.Second
)

// Spider crawls pages on a single host breadth-first.
// It manages a queue of URLs to visit and respects depth and rate limits.
//
// Design decision: We call it "Spider" rather than "Crawler" because:
//  1. "Spider" is the traditional term for web crawlers
//  2. Distinguishes the component from the package name
//  3. Clearer in code: crawler.NewSpider() vs crawler.NewCrawler()
type Spider struct {
	// client performs the actual fetches, so the crawl inherits the
	// scan's timeout, header injection, body cap and proxy settings.
	client *client.Client

	// maxDepth limits how deep to crawl from the starting URL.
	// 0 means only the starting page, 1 means one level of links, etc.
	maxDepth int

	// maxPages limits the total number of pages to crawl.
	// This prevents runaway crawling on large sites.
	maxPages int

	// delay is the time to wait between requests.
	// This is a politeness setting to avoid overwhelming servers.
	delay time.Duration

	// ignorePatterns are URL path patterns to skip during crawling.
	// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
	ignorePatterns []string

	// followPatterns are URL path patterns to follow during crawling.
	// If set, only URLs matching these patterns are crawled.
	// Empty means all URLs are allowed (subject to ignorePatterns).
	followPatterns []string

	// visited tracks URLs already visited to avoid duplicates.
	visited map[string]bool

	// mutex protects concurrent access to visited.
	mutex sync.Mutex

	// pageCount tracks pages crawled.
	pageCount int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the starting page, 1 = starting page plus linked pages, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to crawl.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the delay between requests.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
// URLs matching any of these patterns will not be crawled.
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// Patterns use glob syntax (e.g., "/api/*", "/public/*").
// If set, only URLs matching at least one pattern are crawled.
// Empty slice means all URLs are allowed (default behavior).
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// NewSpider creates a new Spider using the given fetch client.
//
// Design decision: We require an external client because:
//  1. Timeouts, headers and proxy routing are the client package's concern
//  2. Single-page scans and crawls then fetch identically
//  3. Allows for different configurations in tests
func NewSpider(c *client.Client, opts ...SpiderOption) *Spider {
	s := &Spider{
		client:   c,
		maxDepth: DefaultMaxDepth,
		maxPages: DefaultMaxPages,
		delay:    DefaultDelay,
		visited:  make(map[string]bool),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl starts crawling from the given URL and returns all fetched pages.
//
// Design decision: We return a slice of pages rather than using a callback
// because:
//  1. Simpler API for callers
//  2. Pages are capped in size and count, so memory stays bounded
//  3. Caller can process all at once or iterate as needed
func (s *Spider) Crawl(ctx context.Context, startURL string) ([]*model.Page, error) {
	target, err := model.NewTarget(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}

	pages := make([]*model.Page, 0)
	queue := make([]queueItem, 0)
	queue = append(queue, queueItem{url: target.String(), depth: 0})

	for len(queue) > 0 && s.pageCount < s.maxPages {
		select {
		case <-ctx.Done():
			return pages, ctx.Err()
		default:
		}

		// Pop from queue
		item := queue[0]
		queue = queue[1:]

		if s.isVisited(item.url) {
			continue
		}
		s.markVisited(item.url)

		page, links, err := s.fetchPage(ctx, item.url)
		if err != nil {
			// Some pages will fail; keep crawling the rest
			continue
		}

		pages = append(pages, page)
		s.pageCount++

		// Add new links to queue if within depth limit
		if item.depth < s.maxDepth {
			for _, link := range links {
				if !s.isVisited(link) && s.isSameHost(target.Host(), link) && s.shouldCrawl(link) {
					queue = append(queue, queueItem{url: link, depth: item.depth + 1})
				}
			}
		}

		// Politeness delay
		if s.delay > 0 && len(queue) > 0 {
			select {
			case <-ctx.Done():
				return pages, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	return pages, nil
}

// queueItem represents an item in the crawl queue.
type queueItem struct {
	url   string
	depth int
}

// fetchPage fetches a single page and extracts its title and links.
// Relative links resolve against the post-redirect URL so that a
// redirected entry page still yields crawlable candidates.
func (s *Spider) fetchPage(ctx context.Context, pageURL string) (*model.Page, []string, error) {
	page, err := s.client.Fetch(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}

	var links []string
	if page.IsHTML() {
		parser, err := NewParser(page.FinalURL)
		if err == nil {
			if result, err := parser.Parse(strings.NewReader(page.Snapshot)); err == nil {
				page.Title = result.Title
				page.Anchors = result.Anchors
				links = result.InternalLinks
			}
		}
	}

	return page, links, nil
}

// isVisited checks if a URL has been visited.
func (s *Spider) isVisited(pageURL string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.visited[s.normalizeURL(pageURL)]
}

// markVisited marks a URL as visited.
func (s *Spider) markVisited(pageURL string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited[s.normalizeURL(pageURL)] = true
}

// normalizeURL normalizes a URL for deduplication.
//
// Design decision: We normalize URLs because:
//  1. Same page can have different URL representations
//  2. Fragment (#anchor) doesn't change content
//  3. Trailing slashes may or may not be significant
func (s *Spider) normalizeURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}

	// Remove fragment
	u.Fragment = ""

	// Normalize scheme to lowercase
	u.Scheme = strings.ToLower(u.Scheme)

	// Normalize host to lowercase
	u.Host = strings.ToLower(u.Host)

	// Normalize root path (empty path and "/" are equivalent)
	// This handles the common case where http://example.com and
	// http://example.com/ should be treated as the same URL
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// isSameHost checks if a URL points at the crawl's host.
//
// Design decision: We only crawl the same host because:
//  1. Crawling other hosts could be seen as unauthorized scanning
//  2. Keeps the crawl focused on the target
//  3. External links still appear in page anchors for review
func (s *Spider) isSameHost(baseHost, targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	return strings.EqualFold(u.Host, baseHost)
}

// Reset clears the spider's state, allowing it to be reused.
func (s *Spider) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited = make(map[string]bool)
	s.pageCount = 0
}

// Stats returns current crawl statistics.
func (s *Spider) Stats() SpiderStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return SpiderStats{
		PagesVisited: s.pageCount,
		URLsQueued:   len(s.visited),
	}
}

// SpiderStats contains crawl statistics.
type SpiderStats struct {
	// PagesVisited is the number of pages successfully crawled.
	PagesVisited int

	// URLsQueued is the number of unique URLs encountered.
	URLsQueued int
}

// shouldCrawl checks if a URL should be crawled based on ignore/follow patterns.
//
// Logic:
//  1. If URL matches any ignorePattern, skip it (return false)
//  2. If followPatterns is set and URL matches none, skip it (return false)
//  3. Otherwise, crawl it (return true)
func (s *Spider) shouldCrawl(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	// Get the path for pattern matching
	path := u.Path
	if path == "" {
		path = "/"
	}

	// Check ignore patterns first - if matched, skip
	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	// If follow patterns are set, URL must match at least one
	if len(s.followPatterns) > 0 {
		for _, pattern := range s.followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		// No follow pattern matched
		return false
	}

	// No follow patterns set, allow all (that weren't ignored)
	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ** is treated as * (single segment match for simplicity)
//   - ? to match any single character
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	// Handle common patterns more efficiently
	// For patterns like "/admin/*", we want to match "/admin/anything"
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	// Handle extension patterns like "*.pdf"
	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	// Use filepath.Match for standard glob matching
	// Note: filepath.Match doesn't support ** for recursive matching,
	// but it handles * and ? well for single-segment patterns
	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Also try matching just the filename for patterns like "*.pdf"
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		filename := filepath.Base(path)
		matched, err := filepath.Match(pattern, filename)
		if err == nil && matched {
			return true
		}
	}

	return false
}
