package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/vscan/internal/client"
	"github.com/nao1215/vscan/internal/config"
	"github.com/nao1215/vscan/internal/crawler"
	"github.com/nao1215/vscan/internal/detect"
	"github.com/nao1215/vscan/internal/model"
)

// FetchStep retrieves the target URL and records the response on the report.
// This is the foundation step: it establishes reachability and provides the
// first page for detection.
//
// Design decision: Fetching is a separate step because:
// 1. Its failure is the only fatal condition in a scan (nothing to analyze)
// 2. Results inform subsequent steps (crawler starts from a reachable page)
// 3. Keeps HTTP concerns out of the detection step
type FetchStep struct {
	// client performs the HTTP fetch.
	client *client.Client

	// logger for structured logging.
	logger *slog.Logger
}

// FetchStepOption configures a FetchStep.
type FetchStepOption func(*FetchStep)

// WithFetchLogger sets a custom logger for the fetch step.
func WithFetchLogger(logger *slog.Logger) FetchStepOption {
	return func(s *FetchStep) {
		s.logger = logger
	}
}

// NewFetchStep creates a new fetch step.
// The client carries all transport configuration (timeout, user agent,
// headers, proxy, body cap).
func NewFetchStep(c *client.Client, opts ...FetchStepOption) *FetchStep {
	s := &FetchStep{
		client: c,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do executes the fetch step.
// Error status pages (4xx/5xx) are not failures here: they are exactly
// what the detection step wants to inspect. Only transport-level errors
// (DNS, connect, timeout) fail the step.
func (s *FetchStep) Do(ctx context.Context, report *model.ScanReport) error {
	page, err := s.client.Fetch(ctx, report.Target)
	if err != nil {
		report.Reachable = false
		return fmt.Errorf("fetch %s: %w", report.Target, err)
	}

	report.Reachable = true
	report.StatusCode = page.StatusCode
	report.FinalURL = page.FinalURL
	report.ServerBanner = page.GetHeader("Server")

	// Extract the title so reports can label the page
	if page.IsHTML() {
		parser, err := crawler.NewParser(page.FinalURL)
		if err == nil {
			if result, err := parser.Parse(strings.NewReader(page.Snapshot)); err == nil {
				page.Title = result.Title
				page.Anchors = result.Anchors
			}
		}
	}

	report.AddPage(page.URL, page)

	s.logger.Debug("page fetched",
		"url", page.URL,
		"status", page.StatusCode,
		"content_type", page.ContentType,
	)

	return nil
}

// CrawlStep discovers additional same-host pages starting from the target.
// Every page it collects becomes input for the detection step.
//
// Design decision: Crawling is separate from fetching because:
// 1. It has different configuration (depth, limits, delay)
// 2. It can be disabled for quick single-page scans
// 3. Its errors are non-fatal (partial results are still useful)
type CrawlStep struct {
	// client performs the HTTP fetches for the spider.
	client *client.Client

	// maxDepth limits crawl recursion.
	maxDepth int

	// maxPages limits total pages to crawl.
	maxPages int

	// delay between requests for politeness.
	delay time.Duration

	// ignorePatterns are URL path patterns to skip during crawling.
	ignorePatterns []string

	// followPatterns are URL path patterns to follow during crawling.
	followPatterns []string

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlMaxDepth sets the maximum crawl depth.
func WithCrawlMaxDepth(depth int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxDepth = depth
	}
}

// WithCrawlMaxPages sets the maximum pages to crawl.
func WithCrawlMaxPages(maxPages int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxPages = maxPages
	}
}

// WithCrawlDelay sets the delay between requests.
func WithCrawlDelay(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.delay = d
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// WithCrawlIgnorePatterns sets URL path patterns to skip during crawling.
func WithCrawlIgnorePatterns(patterns []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.ignorePatterns = patterns
	}
}

// WithCrawlFollowPatterns sets URL path patterns to follow during crawling.
func WithCrawlFollowPatterns(patterns []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.followPatterns = patterns
	}
}

// NewCrawlStep creates a new crawling step.
//
// Default politeness settings are conservative to be respectful of targets:
//   - delay: 1 second between requests (config.DefaultCrawlDelay)
//   - depth: 3 levels from the start page (config.DefaultCrawlDepth)
//   - pages: 25 per target (config.DefaultMaxPages)
func NewCrawlStep(c *client.Client, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		client:   c,
		maxDepth: config.DefaultCrawlDepth,
		maxPages: config.DefaultMaxPages,
		delay:    config.DefaultCrawlDelay,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, report *model.ScanReport) error {
	// Only crawl if the initial fetch succeeded
	if !report.Reachable {
		s.logger.Debug("skipping crawl, target not reachable")
		return nil
	}

	// Build spider options including politeness settings
	spiderOpts := []crawler.SpiderOption{
		crawler.WithMaxDepth(s.maxDepth),
		crawler.WithMaxPages(s.maxPages),
		crawler.WithDelay(s.delay),
	}

	// Add pattern filtering if configured
	if len(s.ignorePatterns) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithIgnorePatterns(s.ignorePatterns))
	}
	if len(s.followPatterns) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithFollowPatterns(s.followPatterns))
	}

	spider := crawler.NewSpider(s.client, spiderOpts...)

	pages, err := spider.Crawl(ctx, report.Target)
	if err != nil {
		// Non-fatal: we may have partial results
		s.logger.Warn("crawl completed with error", "error", err)
	}

	// Store crawled pages in the report; the start page was already
	// fetched, so AddPage deduplicates it by URL
	for _, page := range pages {
		report.AddPage(page.URL, page)
	}

	// Calculate crawl stats
	stats := spider.Stats()
	s.logger.Info("crawl completed",
		"pages_visited", stats.PagesVisited,
		"urls_queued", stats.URLsQueued,
	)

	return nil
}

// DetectStep runs the verbose error page analyzers over every collected page.
// This is where findings are produced.
//
// Design decision: Detection is a separate step because:
// 1. It operates on accumulated data from previous steps
// 2. It has its own configuration (custom signatures, enabled tiers)
// 3. Results are the primary output of the scan
type DetectStep struct {
	// analyzer is the detection coordinator.
	analyzer *detect.Analyzer

	// signatures are additional keyword signatures from configuration.
	signatures []string

	// logger for structured logging.
	logger *slog.Logger
}

// DetectStepOption configures a DetectStep.
type DetectStepOption func(*DetectStep)

// WithDetectLogger sets a custom logger for the detection step.
func WithDetectLogger(logger *slog.Logger) DetectStepOption {
	return func(s *DetectStep) {
		s.logger = logger
	}
}

// WithDetectSignatures adds custom keyword signatures to the analyzer.
// These typically come from the per-site configuration file.
func WithDetectSignatures(signatures []string) DetectStepOption {
	return func(s *DetectStep) {
		s.signatures = signatures
	}
}

// NewDetectStep creates a new detection step with all built-in analyzers.
func NewDetectStep(opts ...DetectStepOption) *DetectStep {
	s := &DetectStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	// The analyzer is built after options so custom signatures land in
	// the keyword tier
	s.analyzer = detect.NewAnalyzer(func(o *detect.AnalyzerOptions) {
		o.CustomSignatures = s.signatures
	})

	return s
}

// Name returns the step name.
func (s *DetectStep) Name() string {
	return "detect"
}

// Do executes the detection step.
func (s *DetectStep) Do(ctx context.Context, report *model.ScanReport) error {
	// Skip if no pages were fetched
	if len(report.Pages) == 0 {
		s.logger.Debug("skipping detection, no pages fetched")
		return nil
	}

	// Prepare analysis data
	data := &detect.AnalysisData{
		Target: report.Target,
		Pages:  report.Pages,
		Report: report,
	}

	// Run all analyzers
	findings, err := s.analyzer.Analyze(ctx, data)
	if err != nil {
		// Non-fatal: return partial results
		s.logger.Warn("detection completed with error", "error", err)
	}

	// Add findings to report
	for _, f := range findings {
		report.AddFinding(f)
	}

	s.logger.Info("detection completed",
		"pages_analyzed", len(report.Pages),
		"findings_count", len(findings),
	)

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// CrawlEnabled adds the crawl step between fetch and detection.
	CrawlEnabled bool

	// CrawlDepth is the maximum depth for web crawling.
	CrawlDepth int

	// CrawlMaxPages is the maximum number of pages to crawl.
	CrawlMaxPages int

	// CrawlDelay is the delay between HTTP requests during crawling.
	// This is a "politeness" setting to avoid overwhelming targets.
	CrawlDelay time.Duration

	// IgnorePatterns are URL path patterns to skip during crawling.
	IgnorePatterns []string

	// FollowPatterns are URL path patterns to follow during crawling.
	FollowPatterns []string

	// CustomSignatures are additional keyword signatures for detection.
	CustomSignatures []string
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineCrawl enables or disables the crawl step.
func WithPipelineCrawl(enabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlEnabled = enabled
	}
}

// WithPipelineCrawlDepth sets the crawl depth for the pipeline.
func WithPipelineCrawlDepth(depth int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlDepth = depth
	}
}

// WithPipelineCrawlMaxPages sets the maximum pages to crawl.
func WithPipelineCrawlMaxPages(maxPages int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlMaxPages = maxPages
	}
}

// WithPipelineCrawlDelay sets the delay between HTTP requests during crawling.
// This is a "politeness" setting to avoid overwhelming targets.
// A minimum of 500ms is recommended; 1s is the default for respectful scanning.
func WithPipelineCrawlDelay(delay time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlDelay = delay
	}
}

// WithPipelineIgnorePatterns sets URL patterns to skip during crawling.
func WithPipelineIgnorePatterns(patterns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.IgnorePatterns = patterns
	}
}

// WithPipelineFollowPatterns sets URL patterns to follow during crawling.
func WithPipelineFollowPatterns(patterns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.FollowPatterns = patterns
	}
}

// WithPipelineCustomSignatures adds custom keyword signatures to detection.
func WithPipelineCustomSignatures(signatures []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CustomSignatures = signatures
	}
}

// DefaultPipeline creates a pipeline with the standard steps configured:
// fetch, optional crawl, and detection.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want the standard scan
// 2. Reduces boilerplate in the CLI
// 3. Ensures consistent ordering
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineCrawlDepth, etc).
// Transport configuration (timeout, user agent, headers, proxy) lives on
// the client, not here.
func DefaultPipeline(c *client.Client, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	// Apply default config with conservative politeness settings
	cfg := &DefaultPipelineConfig{
		CrawlDepth:    config.DefaultCrawlDepth,
		CrawlMaxPages: config.DefaultMaxPages,
		CrawlDelay:    config.DefaultCrawlDelay,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	steps := []Step{NewFetchStep(c)}

	if cfg.CrawlEnabled {
		// Build crawl step options including politeness settings
		crawlOpts := []CrawlStepOption{
			WithCrawlMaxDepth(cfg.CrawlDepth),
			WithCrawlMaxPages(cfg.CrawlMaxPages),
			WithCrawlDelay(cfg.CrawlDelay),
		}

		// Add pattern filtering options if configured
		if len(cfg.IgnorePatterns) > 0 {
			crawlOpts = append(crawlOpts, WithCrawlIgnorePatterns(cfg.IgnorePatterns))
		}
		if len(cfg.FollowPatterns) > 0 {
			crawlOpts = append(crawlOpts, WithCrawlFollowPatterns(cfg.FollowPatterns))
		}

		steps = append(steps, NewCrawlStep(c, crawlOpts...))
	}

	detectOpts := make([]DetectStepOption, 0)
	if len(cfg.CustomSignatures) > 0 {
		detectOpts = append(detectOpts, WithDetectSignatures(cfg.CustomSignatures))
	}
	steps = append(steps, NewDetectStep(detectOpts...))

	// Add steps in logical order
	p.AddSteps(steps...)

	return p
}
