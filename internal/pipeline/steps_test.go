package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nao1215/vscan/internal/client"
	"github.com/nao1215/vscan/internal/model"
)

// newStepClient creates an HTTP client for step tests.
func newStepClient(t *testing.T, opts ...client.Option) *client.Client {
	t.Helper()

	c, err := client.NewClient(opts...)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

// newReportFor creates a report for the given URL, failing the test on
// invalid input.
func newReportFor(t *testing.T, rawURL string) *model.ScanReport {
	t.Helper()

	target, err := model.NewTarget(rawURL)
	if err != nil {
		t.Fatalf("failed to create target: %v", err)
	}
	return model.NewScanReport(target)
}

// TestNewFetchStep tests the FetchStep constructor.
func TestNewFetchStep(t *testing.T) {
	t.Parallel()

	t.Run("creates with defaults", func(t *testing.T) {
		t.Parallel()

		c := newStepClient(t)
		step := NewFetchStep(c)

		if step.client != c {
			t.Error("expected the provided client")
		}
		if step.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("applies WithFetchLogger", func(t *testing.T) {
		t.Parallel()

		logger := slog.Default()
		step := NewFetchStep(newStepClient(t), WithFetchLogger(logger))

		if step.logger != logger {
			t.Error("expected custom logger")
		}
	})

	t.Run("Name returns correct value", func(t *testing.T) {
		t.Parallel()

		step := NewFetchStep(newStepClient(t))

		if step.Name() != "fetch" {
			t.Errorf("expected name 'fetch', got %q", step.Name())
		}
	})
}

// TestNewCrawlStep tests the CrawlStep constructor.
func TestNewCrawlStep(t *testing.T) {
	t.Parallel()

	t.Run("creates with defaults", func(t *testing.T) {
		t.Parallel()

		c := newStepClient(t)
		step := NewCrawlStep(c)

		if step.client != c {
			t.Error("expected the provided client")
		}
		if step.maxDepth != 3 {
			t.Errorf("expected default maxDepth 3, got %d", step.maxDepth)
		}
		if step.maxPages != 25 {
			t.Errorf("expected default maxPages 25, got %d", step.maxPages)
		}
		if step.delay != 1*time.Second {
			t.Errorf("expected default delay 1s, got %v", step.delay)
		}
	})

	t.Run("applies WithCrawlMaxDepth", func(t *testing.T) {
		t.Parallel()

		step := NewCrawlStep(newStepClient(t), WithCrawlMaxDepth(10))

		if step.maxDepth != 10 {
			t.Errorf("expected maxDepth 10, got %d", step.maxDepth)
		}
	})

	t.Run("applies WithCrawlMaxPages", func(t *testing.T) {
		t.Parallel()

		step := NewCrawlStep(newStepClient(t), WithCrawlMaxPages(50))

		if step.maxPages != 50 {
			t.Errorf("expected maxPages 50, got %d", step.maxPages)
		}
	})

	t.Run("applies WithCrawlDelay", func(t *testing.T) {
		t.Parallel()

		step := NewCrawlStep(newStepClient(t), WithCrawlDelay(500*time.Millisecond))

		if step.delay != 500*time.Millisecond {
			t.Errorf("expected delay 500ms, got %v", step.delay)
		}
	})

	t.Run("applies WithCrawlLogger", func(t *testing.T) {
		t.Parallel()

		logger := slog.Default()
		step := NewCrawlStep(newStepClient(t), WithCrawlLogger(logger))

		if step.logger != logger {
			t.Error("expected custom logger")
		}
	})

	t.Run("applies WithCrawlIgnorePatterns", func(t *testing.T) {
		t.Parallel()

		patterns := []string{"/admin/*", "*.pdf"}
		step := NewCrawlStep(newStepClient(t), WithCrawlIgnorePatterns(patterns))

		if len(step.ignorePatterns) != 2 {
			t.Errorf("expected 2 ignore patterns, got %d", len(step.ignorePatterns))
		}
	})

	t.Run("applies WithCrawlFollowPatterns", func(t *testing.T) {
		t.Parallel()

		patterns := []string{"/api/*", "/public/*"}
		step := NewCrawlStep(newStepClient(t), WithCrawlFollowPatterns(patterns))

		if len(step.followPatterns) != 2 {
			t.Errorf("expected 2 follow patterns, got %d", len(step.followPatterns))
		}
	})

	t.Run("Name returns correct value", func(t *testing.T) {
		t.Parallel()

		step := NewCrawlStep(newStepClient(t))

		if step.Name() != "crawl" {
			t.Errorf("expected name 'crawl', got %q", step.Name())
		}
	})
}

// TestNewDetectStep tests the DetectStep constructor.
func TestNewDetectStep(t *testing.T) {
	t.Parallel()

	t.Run("creates with defaults", func(t *testing.T) {
		t.Parallel()

		step := NewDetectStep()

		if step.analyzer == nil {
			t.Error("expected non-nil analyzer")
		}
		if step.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("applies WithDetectLogger", func(t *testing.T) {
		t.Parallel()

		logger := slog.Default()
		step := NewDetectStep(WithDetectLogger(logger))

		if step.logger != logger {
			t.Error("expected custom logger")
		}
	})

	t.Run("applies WithDetectSignatures", func(t *testing.T) {
		t.Parallel()

		step := NewDetectStep(WithDetectSignatures([]string{"custom fault text"}))

		if len(step.signatures) != 1 || step.signatures[0] != "custom fault text" {
			t.Errorf("unexpected signatures: %v", step.signatures)
		}
	})

	t.Run("Name returns correct value", func(t *testing.T) {
		t.Parallel()

		step := NewDetectStep()

		if step.Name() != "detect" {
			t.Errorf("expected name 'detect', got %q", step.Name())
		}
	})
}

// TestCrawlStepCombinedOptions tests applying multiple options.
func TestCrawlStepCombinedOptions(t *testing.T) {
	t.Parallel()

	step := NewCrawlStep(
		newStepClient(t),
		WithCrawlMaxDepth(20),
		WithCrawlMaxPages(500),
		WithCrawlDelay(2*time.Second),
		WithCrawlIgnorePatterns([]string{"/admin/*"}),
		WithCrawlFollowPatterns([]string{"/api/*"}),
	)

	if step.maxDepth != 20 {
		t.Errorf("expected maxDepth 20, got %d", step.maxDepth)
	}
	if step.maxPages != 500 {
		t.Errorf("expected maxPages 500, got %d", step.maxPages)
	}
	if step.delay != 2*time.Second {
		t.Errorf("expected delay 2s, got %v", step.delay)
	}
	if len(step.ignorePatterns) != 1 {
		t.Errorf("expected 1 ignore pattern, got %d", len(step.ignorePatterns))
	}
	if len(step.followPatterns) != 1 {
		t.Errorf("expected 1 follow pattern, got %d", len(step.followPatterns))
	}
}

// TestFetchStepDo tests the FetchStep.Do method with a mock HTTP server.
func TestFetchStepDo(t *testing.T) {
	t.Run("records response on report", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Server", "nginx/1.18.0")
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("<html><head><title>Landing</title></head><body>Hello</body></html>"))
		}))
		defer server.Close()

		step := NewFetchStep(newStepClient(t))
		report := newReportFor(t, server.URL)

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !report.Reachable {
			t.Error("expected Reachable to be true")
		}
		if report.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", report.StatusCode)
		}
		if report.ServerBanner != "nginx/1.18.0" {
			t.Errorf("expected server banner 'nginx/1.18.0', got %q", report.ServerBanner)
		}
		if len(report.Pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(report.Pages))
		}
		if report.Pages[0].Title != "Landing" {
			t.Errorf("expected page title 'Landing', got %q", report.Pages[0].Title)
		}
	})

	t.Run("keeps error status pages for analysis", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("Traceback (most recent call last):\n  File \"/app/main.py\", line 10"))
		}))
		defer server.Close()

		step := NewFetchStep(newStepClient(t))
		report := newReportFor(t, server.URL)

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !report.Reachable {
			t.Error("expected Reachable to be true for a 500 response")
		}
		if report.StatusCode != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", report.StatusCode)
		}
		if len(report.Pages) != 1 {
			t.Errorf("expected error page to be kept, got %d pages", len(report.Pages))
		}
	})

	t.Run("records final URL after redirect", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/final" {
				_, _ = w.Write([]byte("<html><body>done</body></html>"))
				return
			}
			http.Redirect(w, r, "/final", http.StatusFound)
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		step := NewFetchStep(newStepClient(t))
		report := newReportFor(t, server.URL)

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.FinalURL != server.URL+"/final" {
			t.Errorf("expected final URL %q, got %q", server.URL+"/final", report.FinalURL)
		}
	})

	t.Run("returns error for unreachable target", func(t *testing.T) {
		step := NewFetchStep(newStepClient(t, client.WithTimeout(500*time.Millisecond)))
		report := newReportFor(t, "http://127.0.0.1:1/")

		err := step.Do(context.Background(), report)
		if err == nil {
			t.Fatal("expected error for unreachable target")
		}

		if report.Reachable {
			t.Error("expected Reachable to be false")
		}
		if len(report.Pages) != 0 {
			t.Errorf("expected no pages, got %d", len(report.Pages))
		}
	})
}

// TestCrawlStepDo tests the CrawlStep.Do method.
func TestCrawlStepDo(t *testing.T) {
	t.Run("skips crawl when target not reachable", func(t *testing.T) {
		step := NewCrawlStep(newStepClient(t))
		report := newReportFor(t, "https://staging.example.com")
		report.Reachable = false

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Pages) != 0 {
			t.Errorf("expected no pages, got %d", len(report.Pages))
		}
	})

	t.Run("crawls when target is reachable", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><a href="/page1">Page 1</a></body></html>`))
		})
		mux.HandleFunc("/page1", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body>Page 1 content</body></html>`))
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		step := NewCrawlStep(newStepClient(t), WithCrawlMaxPages(10), WithCrawlDelay(0))
		report := newReportFor(t, server.URL)
		report.Reachable = true

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Pages) < 2 {
			t.Errorf("expected at least 2 pages, got %d", len(report.Pages))
		}
	})
}

// TestDetectStepDo tests the DetectStep.Do method.
func TestDetectStepDo(t *testing.T) {
	t.Run("skips detection when no pages fetched", func(t *testing.T) {
		step := NewDetectStep()
		report := newReportFor(t, "https://staging.example.com")

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.SimpleReport != nil && len(report.SimpleReport.Findings) != 0 {
			t.Errorf("expected no findings, got %d", len(report.SimpleReport.Findings))
		}
	})

	t.Run("flags a stack trace page", func(t *testing.T) {
		step := NewDetectStep()
		report := newReportFor(t, "https://staging.example.com")
		report.AddPage("https://staging.example.com/", &model.Page{
			URL:        "https://staging.example.com/",
			StatusCode: http.StatusInternalServerError,
			Snapshot:   "Traceback (most recent call last):\n  File \"/app/main.py\", line 10, in <module>\n    run()",
		})

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !report.Detected() {
			t.Error("expected findings for a stack trace page")
		}

		// Findings landing on the report carry the catalog texts the
		// report writers render.
		for _, f := range report.SimpleReport.Findings {
			f := f
			if f.Impact == "" {
				t.Errorf("finding %q has empty Impact", f.Type)
			}
			if f.Recommendation == "" {
				t.Errorf("finding %q has empty Recommendation", f.Type)
			}
		}
	})

	t.Run("clean page produces no findings", func(t *testing.T) {
		step := NewDetectStep()
		report := newReportFor(t, "https://staging.example.com")
		report.AddPage("https://staging.example.com/", &model.Page{
			URL:        "https://staging.example.com/",
			StatusCode: http.StatusOK,
			Snapshot:   "<html><body><h1>Welcome</h1><p>All good here.</p></body></html>",
		})

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.Detected() {
			t.Error("expected no findings for a clean page")
		}
	})

	t.Run("custom signatures are honored", func(t *testing.T) {
		step := NewDetectStep(WithDetectSignatures([]string{"flux capacitor failure"}))
		report := newReportFor(t, "https://staging.example.com")
		report.AddPage("https://staging.example.com/", &model.Page{
			URL:        "https://staging.example.com/",
			StatusCode: http.StatusOK,
			Snapshot:   "<html><body>Flux Capacitor Failure: unit offline</body></html>",
		})

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !report.Detected() {
			t.Fatal("expected a finding from the custom signature")
		}

		found := false
		for _, f := range report.SimpleReport.Findings {
			f := f
			if f.Type == "error_keyword" && f.Value == "flux capacitor failure" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected custom signature finding, got %+v", report.SimpleReport.Findings)
		}
	})

	t.Run("handles multiple pages", func(t *testing.T) {
		step := NewDetectStep()
		report := newReportFor(t, "https://staging.example.com")
		report.AddPage("https://staging.example.com/", &model.Page{
			URL:        "https://staging.example.com/",
			StatusCode: http.StatusOK,
			Snapshot:   "<html><body>Page 1</body></html>",
		})
		report.AddPage("https://staging.example.com/page2", &model.Page{
			URL:        "https://staging.example.com/page2",
			StatusCode: http.StatusOK,
			Snapshot:   "<html><body>Page 2</body></html>",
		})

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

// TestDefaultPipeline tests the assembled default pipeline.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("builds fetch and detect steps by default", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(newStepClient(t), nil)

		names := p.StepNames()
		if len(names) != 2 {
			t.Fatalf("expected 2 steps, got %d: %v", len(names), names)
		}
		if names[0] != "fetch" || names[1] != "detect" {
			t.Errorf("unexpected step order: %v", names)
		}
	})

	t.Run("includes crawl step when enabled", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(newStepClient(t), nil, WithPipelineCrawl(true))

		names := p.StepNames()
		if len(names) != 3 {
			t.Fatalf("expected 3 steps, got %d: %v", len(names), names)
		}
		if names[0] != "fetch" || names[1] != "crawl" || names[2] != "detect" {
			t.Errorf("unexpected step order: %v", names)
		}
	})

	t.Run("scans a live server end to end", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("Fatal error: Uncaught Error: Call to undefined function in /var/www/html/index.php:3"))
		}))
		defer server.Close()

		p := DefaultPipeline(newStepClient(t), nil)
		report := newReportFor(t, server.URL)

		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !report.Reachable {
			t.Error("expected Reachable to be true")
		}
		if !report.Detected() {
			t.Error("expected findings for a PHP fatal error page")
		}
	})
}
