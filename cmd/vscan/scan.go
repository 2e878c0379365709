package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/vscan/internal/client"
	"github.com/nao1215/vscan/internal/config"
	"github.com/nao1215/vscan/internal/database"
	"github.com/nao1215/vscan/internal/log"
	"github.com/nao1215/vscan/internal/model"
	"github.com/nao1215/vscan/internal/pipeline"
	"github.com/nao1215/vscan/internal/report"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <url>...",
		Short: "Scan URLs for verbose error pages",
		Long: `Scan fetches one or more URLs and inspects the response body and headers
for verbose error page signatures:
- Stack traces (Python, Java, Go, Ruby, Node.js, .NET)
- Database error fragments (MySQL, PostgreSQL, Oracle, SQL Server, SQLite)
- Framework debug pages (Django, Rails, Laravel, Spring, ASP.NET)
- Internal file paths and version disclosures in headers

Error responses (4xx/5xx) are analyzed, not skipped: their bodies are
exactly where verbose error pages live.

Examples:
  # Scan a single URL
  vscan scan https://staging.example.com/

  # Scan multiple URLs concurrently
  vscan scan https://a.example.com/ https://b.example.com/

  # Crawl same-host links and scan every page
  vscan scan --crawl --depth 2 https://staging.example.com/

  # Output a JSON report
  vscan scan -f json --pretty https://staging.example.com/

  # Use a custom configuration file
  vscan scan -c myconfig.yml https://staging.example.com/

Configuration file (.vscan.yml) example:
  sites:
    staging.example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
    legacy.example.com:
      depth: 5
      signatures:
        - "custom fatal error"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Scan behavior flags
	cmd.Flags().IntP("timeout", "t", int(config.DefaultTimeout/time.Second),
		"HTTP request timeout in seconds")
	cmd.Flags().Bool("crawl", false,
		"Follow same-host links and scan every discovered page")
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum crawl recursion depth")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per target")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Delay between requests while crawling")

	// Batch scanning flags
	cmd.Flags().IntP("batch-size", "b", config.DefaultBatchSize,
		"Number of concurrent scans when multiple URLs are given")

	// Request shaping flags
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().String("cookie", "",
		"Raw cookie string sent with every request (e.g. \"session_id=abc123\")")
	cmd.Flags().StringArray("header", nil,
		"Additional request header in 'Key: Value' form (repeatable)")
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy at the given host:port")
	cmd.Flags().Bool("insecure", false,
		"Skip TLS certificate verification")
	cmd.Flags().Int("max-redirects", config.DefaultMaxRedirects,
		"Maximum redirects to follow per request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .vscan.yml in current or home directory)")

	// Report flags
	cmd.Flags().StringP("format", "f", config.FormatSimple,
		"Report format: simple, json, or markdown")
	cmd.Flags().Bool("pretty", false,
		"Pretty-print JSON output")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Persistence flags
	cmd.Flags().Bool("no-save", false,
		"Do not save scan results to the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	cfg.Verbose = verbose
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	timeoutSec, err := cmd.Flags().GetInt("timeout")
	if err != nil {
		return nil, err
	}
	cfg.Timeout = time.Duration(timeoutSec) * time.Second

	cfg.Crawl, err = cmd.Flags().GetBool("crawl")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch-size")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.Cookie, err = cmd.Flags().GetString("cookie")
	if err != nil {
		return nil, err
	}

	rawHeaders, err := cmd.Flags().GetStringArray("header")
	if err != nil {
		return nil, err
	}
	cfg.Headers, err = parseHeaderFlags(rawHeaders)
	if err != nil {
		return nil, err
	}

	cfg.ProxyAddress, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.InsecureTLS, err = cmd.Flags().GetBool("insecure")
	if err != nil {
		return nil, err
	}

	cfg.MaxRedirects, err = cmd.Flags().GetInt("max-redirects")
	if err != nil {
		return nil, err
	}

	cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body-size")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.Format, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	cfg.PrettyJSON, err = cmd.Flags().GetBool("pretty")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	// Get positional arguments (target URLs)
	cfg.Targets = args

	return cfg, nil
}

// parseHeaderFlags converts repeated "Key: Value" flag values into a
// header map.
func parseHeaderFlags(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		key, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q (expected 'Key: Value')", h)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid header %q (empty header name)", h)
		}
		headers[key] = strings.TrimSpace(value)
	}

	return headers, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The secure handler masks credentials that scan configs and verbose
// error pages routinely carry (cookies, auth headers, database DSNs).
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify one or more URLs as arguments)")
	}

	logger.Info("starting scan",
		"targets", cfg.Targets,
		"crawl", cfg.Crawl,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.ScanDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Validate and normalize all target URLs before any network use
	targets := make([]model.Target, 0, len(cfg.Targets))
	for _, raw := range cfg.Targets {
		target, err := model.NewTarget(raw)
		if err != nil {
			return fmt.Errorf("invalid target URL %q: %w", raw, err)
		}
		targets = append(targets, target)
	}

	// Verify the SOCKS5 proxy before any scans when one is configured
	if cfg.ProxyAddress != "" {
		probe, err := newClientForSite(cfg, config.SiteConfig{})
		if err != nil {
			return fmt.Errorf("failed to create HTTP client: %w", err)
		}

		status := probe.CheckProxy(ctx)
		if status != client.ProxyStatusOK {
			return fmt.Errorf("proxy check failed: %s (make sure a SOCKS5 proxy is listening at %s)",
				status, cfg.ProxyAddress)
		}

		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
	}

	// Use batch processor for parallel scanning if multiple targets
	if len(targets) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, db, targets, logger)
	}

	// Single target or sequential scanning
	return runSequentialScan(ctx, cfg, db, targets, logger)
}

// runSequentialScan scans targets one at a time.
// Each target gets its own client so per-site cookies and headers apply.
func runSequentialScan(ctx context.Context, cfg *config.Config, db *database.ScanDB, targets []model.Target, logger *slog.Logger) error {
	failed := 0

	for _, target := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Get site-specific configuration
		var siteConfig config.SiteConfig
		if cfg.SiteConfigs != nil {
			siteConfig = cfg.SiteConfigs.GetSiteConfig(target.Host())
		}

		c, err := newClientForSite(cfg, siteConfig)
		if err != nil {
			return fmt.Errorf("failed to create HTTP client for %s: %w", target.String(), err)
		}

		// Create pipeline with site-specific options
		p := createPipelineForTarget(c, logger, cfg, siteConfig)

		scanReport := model.NewScanReport(target)

		fmt.Printf("Scanning %s...\n", target.String())
		startTime := time.Now()

		// Execute the pipeline
		if err := p.Execute(ctx, scanReport); err != nil {
			logger.Error("scan failed", "target", target.String(), "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", target.String(), err)
			failed++
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

		if !scanReport.Reachable {
			failed++
		}

		// Generate and output report
		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", target.String(), "error", err)
		}
		printVerdict(cfg, scanReport)

		// Save to database if enabled
		if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
			logger.Error("failed to save scan report", "target", target.String(), "error", err)
		}
	}

	// Findings never change the exit code, but a run where nothing could
	// be fetched is an operational failure
	if failed == len(targets) {
		return errors.New("no scan completed successfully")
	}

	return nil
}

// runBatchScan scans multiple targets concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, db *database.ScanDB, targets []model.Target, logger *slog.Logger) error {
	fmt.Printf("Starting batch scan of %d targets (concurrency: %d)...\n\n",
		len(targets), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch processing uses default site config only; site-specific configs (cookies, headers, depth) are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use sequential mode (--batch-size 1) to apply per-site settings.\n\n")
	}

	// Batch mode shares one client and pipeline config built from the defaults
	var siteConfig config.SiteConfig
	if cfg.SiteConfigs != nil {
		siteConfig = cfg.SiteConfigs.Defaults
	}

	c, err := newClientForSite(cfg, siteConfig)
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return createPipelineForTarget(c, logger, cfg, siteConfig)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	succeeded := 0
	err = bp.ProcessBatchWithCallback(ctx, targets, func(scanReport *model.ScanReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Scan completed: %s\n", index+1, len(targets), scanReport.Target)

		if scanReport.Reachable {
			succeeded++
		}

		// Generate and output report
		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", scanReport.Target, "error", err)
		}
		printVerdict(cfg, scanReport)

		// Save to database if enabled
		if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
			logger.Error("failed to save scan report", "target", scanReport.Target, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch scan completed in %s\n", elapsed.Round(time.Millisecond))

	if err != nil {
		return err
	}
	if succeeded == 0 {
		return errors.New("no scan completed successfully")
	}

	return nil
}

// newClientForSite builds an HTTP client from the scan configuration with
// site-specific overrides applied. Site cookie, user agent and headers
// take precedence over the global flags.
func newClientForSite(cfg *config.Config, siteConfig config.SiteConfig) (*client.Client, error) {
	cookie := cfg.Cookie
	if siteConfig.Cookie != "" {
		cookie = siteConfig.Cookie
	}

	userAgent := cfg.UserAgent
	if siteConfig.UserAgent != "" {
		userAgent = siteConfig.UserAgent
	}

	headers := cfg.Headers
	if len(siteConfig.Headers) > 0 {
		merged := make(map[string]string, len(cfg.Headers)+len(siteConfig.Headers))
		for k, v := range cfg.Headers {
			merged[k] = v
		}
		for k, v := range siteConfig.Headers {
			merged[k] = v
		}
		headers = merged
	}

	opts := []client.Option{
		client.WithTimeout(cfg.Timeout),
		client.WithUserAgent(userAgent),
		client.WithMaxRedirects(cfg.MaxRedirects),
		client.WithMaxBodySize(cfg.MaxBodySize),
	}

	if cookie != "" {
		opts = append(opts, client.WithCookie(cookie))
	}
	if len(headers) > 0 {
		opts = append(opts, client.WithHeaders(headers))
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, client.WithProxy(cfg.ProxyAddress))
	}
	if cfg.InsecureTLS {
		opts = append(opts, client.WithInsecureTLS(true))
	}

	return client.NewClient(opts...)
}

// createPipelineForTarget creates a pipeline with the given configuration.
func createPipelineForTarget(c *client.Client, logger *slog.Logger, cfg *config.Config, siteConfig config.SiteConfig) *pipeline.Pipeline {
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	}

	// Determine crawl depth (site-specific overrides global)
	crawlDepth := cfg.CrawlDepth
	if siteConfig.Depth > 0 {
		crawlDepth = siteConfig.Depth
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineCrawl(cfg.Crawl),
		pipeline.WithPipelineCrawlDepth(crawlDepth),
		pipeline.WithPipelineCrawlMaxPages(cfg.MaxPages),
		pipeline.WithPipelineCrawlDelay(cfg.CrawlDelay),
	}

	// Add URL pattern filtering if configured
	if len(siteConfig.IgnorePatterns) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineIgnorePatterns(siteConfig.IgnorePatterns))
	}
	if len(siteConfig.FollowPatterns) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineFollowPatterns(siteConfig.FollowPatterns))
	}

	// Feed per-site keyword signatures into the detection step
	if len(siteConfig.Signatures) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineCustomSignatures(siteConfig.Signatures))
	}

	return pipeline.DefaultPipeline(c, pipelineOpts, configOpts...)
}

// outputReport outputs the scan report in the requested format.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	// Generate simple report if needed
	if scanReport.SimpleReport == nil {
		scanReport.SimpleReport = model.NewSimpleReport(scanReport)
	}

	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600).
		// Reports may contain sensitive information that should only be
		// readable by the owner
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	switch cfg.Format {
	case config.FormatJSON:
		jsonOpts := make([]report.JSONWriterOption, 0)
		if cfg.PrettyJSON {
			jsonOpts = append(jsonOpts, report.WithPrettyPrint())
		}
		writer := report.NewFullJSONWriter(output, getVersion(), jsonOpts...)
		_, err := writer.Write(scanReport)
		return err
	case config.FormatMarkdown:
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(scanReport)
		return err
	default:
		// Human-readable report
		writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
		_, err := writer.Write(scanReport)
		return err
	}
}

// printVerdict prints the per-target verdict line.
// The simple writer already embeds the verdict in stdout output; for
// machine-readable formats and file output the verdict goes to stderr
// so that stdout stays parseable.
func printVerdict(cfg *config.Config, scanReport *model.ScanReport) {
	if cfg.Format == config.FormatSimple && cfg.ReportFile == "" {
		return
	}

	if scanReport.Detected() {
		fmt.Fprintf(os.Stderr, "Potential verbose error page detected at: %s\n", scanReport.Target)
	} else {
		fmt.Fprintf(os.Stderr, "No verbose error page detected at: %s\n", scanReport.Target)
	}
}

// saveScanReport saves the scan report and its fetched pages to the
// database. If db is nil, this function is a no-op.
func saveScanReport(ctx context.Context, db *database.ScanDB, scanReport *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// Ensure SimpleReport is generated before saving
	if scanReport.SimpleReport == nil {
		scanReport.SimpleReport = model.NewSimpleReport(scanReport)
	}

	if err := db.SaveScanReport(ctx, scanReport); err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	// Store per-page records so repeated scans can be diffed page by page.
	// Page insert failures are logged but do not fail the save; the report
	// itself is already persisted.
	for _, page := range scanReport.Pages {
		record := database.NewScanRecord(scanReport.Host, page)
		if _, err := db.InsertScanRecord(ctx, record); err != nil {
			logger.Warn("failed to save page record", "url", page.URL, "error", err)
		}
	}

	logger.Info("scan report saved to database", "target", scanReport.Target)
	return nil
}
