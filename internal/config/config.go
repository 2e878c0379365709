package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The fetch defaults mirror what the scanner has always sent; the crawl
// defaults are deliberately shallow because verbose error pages cluster
// near a site's entry points.
const (
	// DefaultTimeout is the per-request HTTP timeout.
	// 10 seconds is generous for a single page while keeping multi-target
	// scans from stalling on one dead host.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies the scanner in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify scanner traffic in their logs.
	DefaultUserAgent = "vscan-verbose-error-page-detector/1.0"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for even the most talkative error pages while
	// preventing memory exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultMaxRedirects caps the redirect chain per request.
	DefaultMaxRedirects = 10

	// DefaultCrawlDepth limits crawl recursion. Depth 3 covers the pages
	// reachable from a typical landing page without turning a scan into
	// a site mirror.
	DefaultCrawlDepth = 3

	// DefaultMaxPages is the maximum number of pages to crawl per target.
	// This prevents runaway crawling on large or infinitely-generating sites.
	// Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 25

	// DefaultCrawlDelay is the delay between requests during crawling.
	// This is a politeness setting to avoid overwhelming targets.
	// Can be adjusted via the --delay CLI flag.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultBatchSize of 5 concurrent scans balances throughput with
	// being a considerate client when many targets are given.
	DefaultBatchSize = 5

	// AppName is the application name used for XDG directory paths.
	AppName = "vscan"
)

// Report format names accepted by the --format flag.
const (
	// FormatSimple is the human-readable console report.
	FormatSimple = "simple"

	// FormatJSON is the machine-readable JSON report.
	FormatJSON = "json"

	// FormatMarkdown is the GitHub Flavored Markdown report.
	FormatMarkdown = "markdown"
)

// Config holds all configuration options for vscan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Targets is the list of URLs to scan.
	// Each must be an absolute http or https URL.
	Targets []string

	// Timeout is the HTTP request timeout for each fetch.
	// This applies to individual requests, not the overall scan duration.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	// A descriptive User-Agent helps service operators identify scanner traffic.
	UserAgent string

	// Cookie is a raw cookie string sent with every request.
	// Format: "name=value" or "name1=value1; name2=value2".
	// This allows scanning pages behind cookie-based authentication.
	Cookie string

	// Headers are additional HTTP headers sent with every request.
	Headers map[string]string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	// Empty means direct connections.
	ProxyAddress string

	// InsecureTLS disables TLS certificate verification.
	// Useful for staging hosts with self-signed certificates.
	InsecureTLS bool

	// MaxRedirects caps the redirect chain per request.
	// Past the cap the last response is analyzed as-is.
	MaxRedirects int

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// Crawl enables breadth-first crawling of same-host links.
	// When false, only the given URLs are fetched.
	Crawl bool

	// CrawlDepth is the maximum recursion depth for web crawling.
	// Depth 0 means only fetch the initial page.
	CrawlDepth int

	// MaxPages is the maximum number of pages to crawl per target.
	MaxPages int

	// CrawlDelay is the delay between HTTP requests during crawling.
	// This is a "politeness" setting to avoid overwhelming targets.
	CrawlDelay time.Duration

	// BatchSize is the number of concurrent scans when processing multiple targets.
	BatchSize int

	// Format selects the report output format: simple, json or markdown.
	Format string

	// PrettyJSON pretty-prints JSON report output.
	// Only meaningful when Format is json.
	PrettyJSON bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .vscan.yml in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-host configurations loaded from the config file.
	// This is populated by LoadConfigFile and used during scanning.
	SiteConfigs *File

	// DBDir is the directory path for storing the SQLite scan history.
	// Defaults to the XDG data directory (~/.local/share/vscan on Linux).
	DBDir string

	// SaveToDB indicates whether to persist scan results for later
	// comparison. The --no-save flag turns this off.
	SaveToDB bool
}

// Option configures a Config.
type Option func(*Config)

// WithTargets sets the URLs to scan.
func WithTargets(targets []string) Option {
	return func(c *Config) {
		c.Targets = targets
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// WithCookie sets the raw cookie string sent with every request.
func WithCookie(cookie string) Option {
	return func(c *Config) {
		c.Cookie = cookie
	}
}

// WithHeaders sets additional headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Config) {
		c.Headers = headers
	}
}

// WithProxy routes requests through a SOCKS5 proxy ("host:port").
func WithProxy(address string) Option {
	return func(c *Config) {
		c.ProxyAddress = address
	}
}

// WithInsecureTLS disables TLS certificate verification.
func WithInsecureTLS(insecure bool) Option {
	return func(c *Config) {
		c.InsecureTLS = insecure
	}
}

// WithMaxRedirects caps the redirect chain per request.
func WithMaxRedirects(n int) Option {
	return func(c *Config) {
		c.MaxRedirects = n
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(c *Config) {
		c.MaxBodySize = size
	}
}

// WithCrawl enables breadth-first crawling of same-host links.
func WithCrawl(crawl bool) Option {
	return func(c *Config) {
		c.Crawl = crawl
	}
}

// WithCrawlDepth sets the maximum crawl depth.
func WithCrawlDepth(depth int) Option {
	return func(c *Config) {
		c.CrawlDepth = depth
	}
}

// WithMaxPages sets the maximum pages to crawl per target.
func WithMaxPages(maxPages int) Option {
	return func(c *Config) {
		c.MaxPages = maxPages
	}
}

// WithCrawlDelay sets the delay between crawl requests.
func WithCrawlDelay(d time.Duration) Option {
	return func(c *Config) {
		c.CrawlDelay = d
	}
}

// WithBatchSize sets the number of concurrent scans.
func WithBatchSize(size int) Option {
	return func(c *Config) {
		c.BatchSize = size
	}
}

// WithFormat selects the report output format.
func WithFormat(format string) Option {
	return func(c *Config) {
		c.Format = format
	}
}

// WithPrettyJSON pretty-prints JSON report output.
func WithPrettyJSON(pretty bool) Option {
	return func(c *Config) {
		c.PrettyJSON = pretty
	}
}

// WithReportFile writes the report to a file instead of stdout.
func WithReportFile(path string) Option {
	return func(c *Config) {
		c.ReportFile = path
	}
}

// WithVerbose enables debug logging.
func WithVerbose(verbose bool) Option {
	return func(c *Config) {
		c.Verbose = verbose
	}
}

// WithConfigFilePath sets an explicit configuration file path.
func WithConfigFilePath(path string) Option {
	return func(c *Config) {
		c.ConfigFilePath = path
	}
}

// WithDBDir sets the scan history database directory.
func WithDBDir(dir string) Option {
	return func(c *Config) {
		c.DBDir = dir
	}
}

// WithSaveToDB toggles persisting scan results.
func WithSaveToDB(save bool) Option {
	return func(c *Config) {
		c.SaveToDB = save
	}
}

// NewConfig creates a new Config with default values, then applies options.
// All fields are set to safe, sensible defaults that work for most use cases.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, user agent).
// This also serves as documentation of what the defaults are.
func NewConfig(opts ...Option) *Config {
	c := &Config{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxRedirects: DefaultMaxRedirects,
		MaxBodySize:  DefaultMaxBodySize,
		CrawlDepth:   DefaultCrawlDepth,
		MaxPages:     DefaultMaxPages,
		CrawlDelay:   DefaultCrawlDelay,
		BatchSize:    DefaultBatchSize,
		Format:       FormatSimple,
		DBDir:        XDGDataDir(),
		SaveToDB:     true,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// XDGDataDir returns the XDG data directory for vscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/vscan
// On macOS: ~/Library/Application Support/vscan
// On Windows: %LOCALAPPDATA%\vscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one target to scan
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// BatchSize must be positive; zero would mean no scanning
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	switch c.Format {
	case FormatSimple, FormatJSON, FormatMarkdown:
	default:
		return ErrInvalidFormat
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// CrawlDepth must be non-negative; 0 means only the initial page
	if c.CrawlDepth < 0 {
		return ErrInvalidCrawlDepth
	}

	// MaxPages must be non-negative; 0 means use the default
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	// MaxRedirects must be non-negative; 0 means don't follow redirects
	if c.MaxRedirects < 0 {
		return ErrInvalidMaxRedirects
	}

	// MaxBodySize must be non-negative; 0 means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
