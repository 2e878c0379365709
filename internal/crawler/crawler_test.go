package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/vscan/internal/client"
)

// newTestClient builds a fetch client with default settings for tests.
func newTestClient(t *testing.T) *client.Client {
	t.Helper()

	c, err := client.NewClient()
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

// TestParser tests HTML parsing functionality.
func TestParser(t *testing.T) {
	t.Parallel()

	t.Run("extracts title", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>Test Page</title></head><body></body></html>`
		parser, err := NewParser("https://staging.example.com/page")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if result.Title != "Test Page" {
			t.Errorf("expected title 'Test Page', got %q", result.Title)
		}
	})

	t.Run("extracts links and classifies them", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/internal">Internal Link</a>
			<a href="https://staging.example.com/same">Same Host</a>
			<a href="https://other.example.com/external">Other Subdomain</a>
			<a href="https://example.net/away">Different Domain</a>
		</body></html>`

		parser, err := NewParser("https://staging.example.com/page")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if len(result.Links) != 4 {
			t.Errorf("expected 4 links, got %d", len(result.Links))
		}

		// Internal links should include relative and same-host
		if len(result.InternalLinks) != 2 {
			t.Errorf("expected 2 internal links, got %d: %v", len(result.InternalLinks), result.InternalLinks)
		}

		if len(result.ExternalLinks) != 2 {
			t.Errorf("expected 2 external links, got %d: %v", len(result.ExternalLinks), result.ExternalLinks)
		}
	})

	t.Run("extracts anchor metadata", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="/next" rel="nofollow">Next <b>Page</b></a></body></html>`
		parser, err := NewParser("https://staging.example.com/page")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if len(result.Anchors) != 1 {
			t.Fatalf("expected 1 anchor, got %d", len(result.Anchors))
		}

		anchor := result.Anchors[0]
		if anchor.Source != "https://staging.example.com/next" {
			t.Errorf("expected resolved source, got %q", anchor.Source)
		}
		if anchor.Text != "Next Page" {
			t.Errorf("expected anchor text 'Next Page', got %q", anchor.Text)
		}
		if anchor.Rel != "nofollow" {
			t.Errorf("expected rel 'nofollow', got %q", anchor.Rel)
		}
	})

	t.Run("handles special link types", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="javascript:void(0)">JS Link</a>
			<a href="mailto:test@example.com">Email</a>
			<a href="tel:+1234567890">Phone</a>
			<a href="#">Anchor</a>
			<a href="/valid">Valid</a>
		</body></html>`

		parser, err := NewParser("https://staging.example.com")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		// Only /valid should be extracted
		if len(result.Links) != 1 {
			t.Errorf("expected 1 valid link, got %d: %v", len(result.Links), result.Links)
		}
	})
}

// TestSpider tests the web crawler.
func TestSpider(t *testing.T) {
	t.Parallel()

	t.Run("crawls single page", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><head><title>Test</title></head><body>Hello</body></html>`)) //nolint:errcheck
		}))
		defer server.Close()

		spider := NewSpider(newTestClient(t), WithMaxDepth(0), WithDelay(0))
		ctx := context.Background()

		pages, err := spider.Crawl(ctx, server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(pages))
		}

		if pages[0].Title != "Test" {
			t.Errorf("expected title 'Test', got %q", pages[0].Title)
		}
	})

	t.Run("follows links within depth limit", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			//nolint:errcheck // test handler
			_, _ = w.Write([]byte(`<html><body><a href="/page1">Page 1</a><a href="/page2">Page 2</a></body></html>`))
		})
		mux.HandleFunc("/page1", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body>Page 1</body></html>`)) //nolint:errcheck
		})
		mux.HandleFunc("/page2", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body>Page 2</body></html>`)) //nolint:errcheck
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		spider := NewSpider(newTestClient(t), WithMaxDepth(1), WithDelay(0))
		ctx := context.Background()

		pages, err := spider.Crawl(ctx, server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(pages) != 3 {
			t.Errorf("expected 3 pages, got %d", len(pages))
		}
	})

	t.Run("records anchors on crawled pages", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><a href="/about">About Us</a></body></html>`)) //nolint:errcheck
		}))
		defer server.Close()

		spider := NewSpider(newTestClient(t), WithMaxDepth(0), WithDelay(0))
		ctx := context.Background()

		pages, err := spider.Crawl(ctx, server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(pages))
		}

		if len(pages[0].Anchors) != 1 {
			t.Fatalf("expected 1 anchor, got %d", len(pages[0].Anchors))
		}
		if pages[0].Anchors[0].Text != "About Us" {
			t.Errorf("expected anchor text 'About Us', got %q", pages[0].Anchors[0].Text)
		}
	})

	t.Run("respects max pages limit", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			//nolint:errcheck // test handler
			_, _ = w.Write([]byte(`<html><body><a href="/page1">1</a><a href="/page2">2</a><a href="/page3">3</a><a href="/page4">4</a><a href="/page5">5</a></body></html>`))
		})
		for i := 1; i <= 5; i++ {
			mux.HandleFunc(fmt.Sprintf("/page%d", i), func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte(`<html><body>Page</body></html>`)) //nolint:errcheck
			})
		}

		server := httptest.NewServer(mux)
		defer server.Close()

		spider := NewSpider(newTestClient(t), WithMaxPages(3), WithMaxDepth(1), WithDelay(0))
		ctx := context.Background()

		pages, err := spider.Crawl(ctx, server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(pages) > 3 {
			t.Errorf("expected at most 3 pages, got %d", len(pages))
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		// Create a server that takes a while to respond
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(500 * time.Millisecond)
			_, _ = w.Write([]byte(`<html><body>Slow</body></html>`)) //nolint:errcheck
		}))
		defer server.Close()

		spider := NewSpider(newTestClient(t), WithDelay(0))
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, err := spider.Crawl(ctx, server.URL)
		// Either context deadline exceeded or no pages returned is acceptable
		if err == nil {
			// If no error, it means the request completed quickly or was cancelled
			// The key is that the crawler didn't hang
			t.Log("no error returned, but crawler did not hang which is acceptable")
		}
	})

	t.Run("avoids duplicate visits", func(t *testing.T) {
		t.Parallel()

		visitCount := 0
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			visitCount++
			w.Header().Set("Content-Type", "text/html")
			//nolint:errcheck // test handler
			_, _ = w.Write([]byte(`<html><body><a href="/">Self</a><a href="/">Self Again</a></body></html>`))
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		spider := NewSpider(newTestClient(t), WithMaxDepth(1), WithDelay(0))
		ctx := context.Background()

		_, err := spider.Crawl(ctx, server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if visitCount != 1 {
			t.Errorf("expected 1 visit, got %d", visitCount)
		}
	})

	t.Run("rejects invalid start URL", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(newTestClient(t), WithDelay(0))
		if _, err := spider.Crawl(context.Background(), "staging.example.com"); err == nil {
			t.Error("expected error for start URL without scheme")
		}
	})
}

// TestSpiderOptions tests spider configuration options.
func TestSpiderOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults are applied", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(newTestClient(t))
		if spider.maxDepth != DefaultMaxDepth {
			t.Errorf("expected maxDepth %d, got %d", DefaultMaxDepth, spider.maxDepth)
		}
		if spider.maxPages != DefaultMaxPages {
			t.Errorf("expected maxPages %d, got %d", DefaultMaxPages, spider.maxPages)
		}
		if spider.delay != DefaultDelay {
			t.Errorf("expected delay %v, got %v", DefaultDelay, spider.delay)
		}
	})

	t.Run("WithMaxDepth sets depth", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(newTestClient(t), WithMaxDepth(10))
		if spider.maxDepth != 10 {
			t.Errorf("expected maxDepth 10, got %d", spider.maxDepth)
		}
	})

	t.Run("WithMaxPages sets limit", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(newTestClient(t), WithMaxPages(50))
		if spider.maxPages != 50 {
			t.Errorf("expected maxPages 50, got %d", spider.maxPages)
		}
	})

	t.Run("WithDelay sets delay", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(newTestClient(t), WithDelay(2*time.Second))
		if spider.delay != 2*time.Second {
			t.Errorf("expected delay 2s, got %v", spider.delay)
		}
	})

	t.Run("WithIgnorePatterns sets ignore patterns", func(t *testing.T) {
		t.Parallel()

		patterns := []string{"/admin/*", "*.pdf"}
		spider := NewSpider(newTestClient(t), WithIgnorePatterns(patterns))
		if len(spider.ignorePatterns) != 2 {
			t.Errorf("expected 2 ignore patterns, got %d", len(spider.ignorePatterns))
		}
	})

	t.Run("WithFollowPatterns sets follow patterns", func(t *testing.T) {
		t.Parallel()

		patterns := []string{"/api/*", "/public/*"}
		spider := NewSpider(newTestClient(t), WithFollowPatterns(patterns))
		if len(spider.followPatterns) != 2 {
			t.Errorf("expected 2 follow patterns, got %d", len(spider.followPatterns))
		}
	})
}

// TestMatchPattern tests glob pattern matching.
func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		// Prefix patterns with /*
		{"admin prefix match", "/admin/*", "/admin/dashboard", true},
		{"admin prefix exact", "/admin/*", "/admin", true},
		{"admin prefix no match", "/admin/*", "/user/profile", false},
		{"admin prefix partial no match", "/admin/*", "/administrator", false},

		// Extension patterns with *.
		{"pdf extension", "*.pdf", "/docs/file.pdf", true},
		{"pdf extension nested", "*.pdf", "/a/b/c/report.pdf", true},
		{"pdf extension no match", "*.pdf", "/docs/file.txt", false},
		{"jpg extension", "*.jpg", "/images/photo.jpg", true},

		// Exact match patterns
		{"exact match", "/logout", "/logout", true},
		{"exact no match", "/logout", "/login", false},

		// Wildcard in middle
		{"wildcard middle", "/api/v?/users", "/api/v1/users", true},
		{"wildcard middle v2", "/api/v?/users", "/api/v2/users", true},
		{"wildcard middle no match", "/api/v?/users", "/api/v10/users", false},

		// Root path
		{"root path", "/", "/", true},
		{"root no match prefix", "/admin/*", "/", false},

		// Complex patterns
		{"nested admin", "/admin/*", "/admin/users/edit", true},
		{"api prefix", "/api/*", "/api/v1/data", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := matchPattern(tt.pattern, tt.path)
			if got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

// TestShouldCrawl tests URL filtering based on patterns.
func TestShouldCrawl(t *testing.T) {
	t.Parallel()

	t.Run("no patterns allows all", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(newTestClient(t))
		if !spider.shouldCrawl("https://staging.example.com/any/path") {
			t.Error("expected all URLs to be allowed when no patterns set")
		}
	})

	t.Run("ignore patterns block matching URLs", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(newTestClient(t), WithIgnorePatterns([]string{"/admin/*", "*.pdf"}))

		tests := []struct {
			url  string
			want bool
		}{
			{"https://staging.example.com/admin/dashboard", false},
			{"https://staging.example.com/admin/users", false},
			{"https://staging.example.com/docs/file.pdf", false},
			{"https://staging.example.com/public/page", true},
			{"https://staging.example.com/api/data", true},
		}

		for _, tt := range tests {
			tt := tt
			got := spider.shouldCrawl(tt.url)
			if got != tt.want {
				t.Errorf("shouldCrawl(%q) = %v, want %v", tt.url, got, tt.want)
			}
		}
	})

	t.Run("follow patterns restrict to matching URLs", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(newTestClient(t), WithFollowPatterns([]string{"/api/*", "/public/*"}))

		tests := []struct {
			url  string
			want bool
		}{
			{"https://staging.example.com/api/v1/users", true},
			{"https://staging.example.com/public/page", true},
			{"https://staging.example.com/admin/dashboard", false},
			{"https://staging.example.com/private/data", false},
		}

		for _, tt := range tests {
			tt := tt
			got := spider.shouldCrawl(tt.url)
			if got != tt.want {
				t.Errorf("shouldCrawl(%q) = %v, want %v", tt.url, got, tt.want)
			}
		}
	})

	t.Run("ignore takes precedence over follow", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(newTestClient(t),
			WithIgnorePatterns([]string{"/api/internal/*"}),
			WithFollowPatterns([]string{"/api/*"}),
		)

		tests := []struct {
			url  string
			want bool
		}{
			{"https://staging.example.com/api/v1/users", true},
			{"https://staging.example.com/api/internal/secret", false}, // ignored despite matching follow
			{"https://staging.example.com/public/page", false},         // doesn't match follow
		}

		for _, tt := range tests {
			tt := tt
			got := spider.shouldCrawl(tt.url)
			if got != tt.want {
				t.Errorf("shouldCrawl(%q) = %v, want %v", tt.url, got, tt.want)
			}
		}
	})

	t.Run("invalid URL returns false", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(newTestClient(t))
		if spider.shouldCrawl("://invalid") {
			t.Error("expected invalid URL to return false")
		}
	})

	t.Run("empty path treated as root", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(newTestClient(t), WithFollowPatterns([]string{"/"}))
		if !spider.shouldCrawl("https://staging.example.com") {
			t.Error("expected empty path to match root pattern")
		}
	})
}

// TestSpiderReset tests clearing spider state.
func TestSpiderReset(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>Test</body></html>`))
	}))
	defer server.Close()

	spider := NewSpider(newTestClient(t), WithMaxDepth(0), WithDelay(0))
	ctx := context.Background()

	// First crawl
	pages1, err := spider.Crawl(ctx, server.URL)
	if err != nil {
		t.Fatalf("first crawl error: %v", err)
	}
	if len(pages1) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages1))
	}

	// Second crawl without reset - should return no new pages (URL visited)
	pages2, err := spider.Crawl(ctx, server.URL)
	if err != nil {
		t.Fatalf("second crawl error: %v", err)
	}
	if len(pages2) != 0 {
		t.Errorf("expected 0 pages without reset, got %d", len(pages2))
	}

	// Reset and crawl again
	spider.Reset()
	pages3, err := spider.Crawl(ctx, server.URL)
	if err != nil {
		t.Fatalf("third crawl error: %v", err)
	}
	if len(pages3) != 1 {
		t.Errorf("expected 1 page after reset, got %d", len(pages3))
	}
}

// TestSpiderStats tests crawl statistics.
func TestSpiderStats(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><a href="/page1">1</a><a href="/page2">2</a></body></html>`))
	})
	mux.HandleFunc("/page1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>Page 1</body></html>`))
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>Page 2</body></html>`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	spider := NewSpider(newTestClient(t), WithMaxDepth(1), WithDelay(0))
	ctx := context.Background()

	_, err := spider.Crawl(ctx, server.URL)
	if err != nil {
		t.Fatalf("crawl error: %v", err)
	}

	stats := spider.Stats()
	if stats.PagesVisited != 3 {
		t.Errorf("expected 3 pages visited, got %d", stats.PagesVisited)
	}
	if stats.URLsQueued < 3 {
		t.Errorf("expected at least 3 URLs queued, got %d", stats.URLsQueued)
	}
}

// TestNormalizeURL tests URL normalization.
func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	spider := NewSpider(newTestClient(t))

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"removes fragment", "http://example.com/page#section", "http://example.com/page"},
		{"lowercase scheme", "HTTP://example.com/page", "http://example.com/page"},
		{"lowercase host", "http://EXAMPLE.COM/page", "http://example.com/page"},
		{"empty path becomes root", "http://example.com", "http://example.com/"},
		{"preserves query", "http://example.com/search?q=test", "http://example.com/search?q=test"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := spider.normalizeURL(tt.input)
			if got != tt.expected {
				t.Errorf("normalizeURL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestIsSameHost tests same-host detection.
func TestIsSameHost(t *testing.T) {
	t.Parallel()

	spider := NewSpider(newTestClient(t))

	tests := []struct {
		name     string
		baseHost string
		target   string
		want     bool
	}{
		{"same host", "staging.example.com", "http://staging.example.com/page", true},
		{"same host different case", "staging.example.com", "http://STAGING.EXAMPLE.COM/page", true},
		{"different host", "staging.example.com", "http://other.example.com/page", false},
		{"different port", "staging.example.com:8080", "http://staging.example.com/page", false},
		{"invalid URL", "staging.example.com", "://invalid", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := spider.isSameHost(tt.baseHost, tt.target)
			if got != tt.want {
				t.Errorf("isSameHost(%q, %q) = %v, want %v", tt.baseHost, tt.target, got, tt.want)
			}
		})
	}
}

// TestParserErrorCases tests error handling in the parser.
func TestParserErrorCases(t *testing.T) {
	t.Parallel()

	t.Run("returns error for invalid base URL", func(t *testing.T) {
		t.Parallel()

		// Create parser with invalid URL
		_, err := NewParser("://invalid-url")
		if err == nil {
			t.Error("expected error for invalid URL")
		}
	})

	t.Run("handles resolveURL with empty href", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="">Empty Link</a></body></html>`
		parser, err := NewParser("https://staging.example.com/page")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		// Empty href should not add to links
		for _, link := range result.Links {
			link := link
			if link == "" {
				t.Error("empty link should not be added")
			}
		}
	})

	t.Run("handles mailto links correctly", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="mailto:test@example.com">Email</a></body></html>`
		parser, err := NewParser("https://staging.example.com/page")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		// mailto links should not be in regular links
		for _, link := range result.Links {
			link := link
			if strings.HasPrefix(link, "mailto:") {
				t.Error("mailto links should not be in Links")
			}
		}
	})

	t.Run("handles javascript links correctly", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="javascript:void(0)">JS Link</a></body></html>`
		parser, err := NewParser("https://staging.example.com/page")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		// javascript links should not be in regular links
		for _, link := range result.Links {
			link := link
			if strings.HasPrefix(link, "javascript:") {
				t.Error("javascript links should not be in Links")
			}
		}
	})
}

// TestParserElementClassification tests how elements are classified.
func TestParserElementClassification(t *testing.T) {
	t.Parallel()

	t.Run("classifies relative URLs correctly", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="../parent/page.html">Parent</a>
			<a href="./sibling.html">Sibling</a>
		</body></html>`
		parser, err := NewParser("https://staging.example.com/dir/page")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		// All relative URLs should be resolved and classified as internal
		if len(result.InternalLinks) != 2 {
			t.Errorf("expected 2 internal links, got %d: %v", len(result.InternalLinks), result.InternalLinks)
		}
	})

	t.Run("handles hash-only links", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="#">Top</a></body></html>`
		parser, err := NewParser("https://staging.example.com/page")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if len(result.Links) != 0 {
			t.Errorf("expected bare # links to be skipped, got %v", result.Links)
		}
	})
}
