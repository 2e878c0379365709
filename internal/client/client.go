package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/net/proxy"

	"github.com/nao1215/vscan/internal/model"
)

// Default client settings. The scan command overrides these from the
// configuration; the defaults keep the client usable on its own.
const (
	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRedirects caps the redirect chain per request.
	DefaultMaxRedirects = 10

	// DefaultUserAgent identifies the scanner to service operators.
	DefaultUserAgent = "vscan-verbose-error-page-detector/1.0"
)

// Client fetches pages over HTTP(S), optionally through a SOCKS5 proxy.
// It owns the transport configuration (timeouts, redirect cap, header
// injection, body size cap, charset decoding) so that single-target
// fetches and crawls behave identically.
//
// Design decision: We expose Fetch returning a model.Page rather than the
// raw *http.Response because:
//  1. Every caller needs the same post-processing (size cap, decode, hash)
//  2. The response body must be fully read before analysis anyway
//  3. Page is the unit the detection coordinator consumes
type Client struct {
	// httpClient is the configured underlying HTTP client.
	httpClient *http.Client

	// userAgent is injected into every request.
	userAgent string

	// proxyAddress is the SOCKS5 proxy in "host:port" format, or empty
	// for direct connections.
	proxyAddress string

	// maxBodySize limits how many response bytes are read per page.
	maxBodySize int64

	// timeout is the per-request timeout.
	timeout time.Duration
}

// options holds the configurable client settings.
type options struct {
	timeout      time.Duration
	userAgent    string
	cookie       string
	headers      map[string]string
	proxyAddress string
	insecureTLS  bool
	maxRedirects int
	maxBodySize  int64
}

// Option configures a Client.
type Option func(*options)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
// A descriptive User-Agent helps service operators identify scanner traffic.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithCookie sets a raw cookie string (e.g. "session_id=abc123") sent
// with every request. This allows scanning pages behind authentication.
func WithCookie(cookie string) Option {
	return func(o *options) {
		o.cookie = cookie
	}
}

// WithHeaders sets additional headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headers = headers
	}
}

// WithProxy routes all connections through a SOCKS5 proxy.
// The address must be in "host:port" format (e.g. "127.0.0.1:9050").
func WithProxy(address string) Option {
	return func(o *options) {
		o.proxyAddress = address
	}
}

// WithInsecureTLS disables TLS certificate verification.
// Useful for staging hosts with self-signed certificates.
func WithInsecureTLS(insecure bool) Option {
	return func(o *options) {
		o.insecureTLS = insecure
	}
}

// WithMaxRedirects caps the redirect chain per request. Past the cap the
// last response is returned as-is rather than followed.
func WithMaxRedirects(n int) Option {
	return func(o *options) {
		o.maxRedirects = n
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
// Larger bodies are truncated to prevent memory exhaustion.
func WithMaxBodySize(size int64) Option {
	return func(o *options) {
		o.maxBodySize = size
	}
}

// NewClient creates a new Client.
//
// This function validates the proxy address format (when one is set) but
// does not verify that the proxy is running. Call CheckProxy to verify.
//
// Design decision: We don't connect anywhere in the constructor because:
//  1. It separates object creation from network operations
//  2. It allows for better testing with httptest servers
func NewClient(opts ...Option) (*Client, error) {
	o := &options{
		timeout:      DefaultTimeout,
		userAgent:    DefaultUserAgent,
		maxRedirects: DefaultMaxRedirects,
		maxBodySize:  model.MaxPageSize,
	}
	for _, opt := range opts {
		opt(o)
	}

	transport := &http.Transport{
		// Modest pool settings; a scan talks to few hosts at a time.
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	if o.insecureTLS {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // opt-in via --insecure
		}
	}

	if o.proxyAddress != "" {
		if !isValidProxyAddress(o.proxyAddress) {
			return nil, ErrInvalidProxyAddress
		}

		// nil auth: SOCKS5 proxies used for scanning rarely require it
		dialer, err := proxy.SOCKS5("tcp", o.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}

	// Cookie jar for session continuity across redirects and crawls
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	maxRedirects := o.maxRedirects
	httpClient := &http.Client{
		Transport: &headerInjectingTransport{
			base:      transport,
			userAgent: o.userAgent,
			cookie:    o.cookie,
			headers:   o.headers,
		},
		Timeout: o.timeout,
		Jar:     jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &Client{
		httpClient:   httpClient,
		userAgent:    o.userAgent,
		proxyAddress: o.proxyAddress,
		maxBodySize:  o.maxBodySize,
		timeout:      o.timeout,
	}, nil
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
// We use a simple check rather than a full URL parser because the format
// is very specific (no scheme, no path, just host and port).
func isValidProxyAddress(address string) bool {
	parts := strings.Split(address, ":")
	if len(parts) != 2 {
		return false
	}

	host := parts[0]
	port := parts[1]

	if host == "" || port == "" {
		return false
	}

	// Port must be a number between 1 and 65535
	portNum := 0
	for _, c := range port {
		if c < '0' || c > '9' {
			return false
		}
		portNum = portNum*10 + int(c-'0')
		if portNum > 65535 {
			return false
		}
	}

	return portNum >= 1
}

// Fetch performs a single GET request and returns the resulting page.
//
// The target must be an absolute http or https URL; it is validated and
// normalized before any network use. Responses with error status codes
// are returned as pages, not errors: 4xx/5xx bodies are exactly where
// verbose error pages live. Fetch returns an error only when no usable
// response was obtained (invalid URL, connection failure, timeout).
func (c *Client) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
	target, err := model.NewTarget(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", target.String(), err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target.String(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", target.String(), err)
	}

	page := &model.Page{
		URL:         target.String(),
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
		Raw:         raw,
		Snapshot:    decodeBody(raw, resp.Header.Get("Content-Type")),
		FetchedAt:   time.Now(),
	}
	page.ComputeHash()
	page.TruncateSnapshot()
	page.TruncateRaw()

	return page, nil
}

// decodeBody converts a response body to UTF-8 using the declared or
// sniffed charset, so signatures match non-UTF-8 error pages too.
// On any decoding problem the body is returned as-is: a partially
// readable snapshot is more useful to the analyzers than none.
func decodeBody(raw []byte, contentType string) string {
	if len(raw) == 0 {
		return ""
	}

	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw)
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(raw)
	}

	return string(decoded)
}

// UserAgent returns the configured User-Agent string.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// ProxyAddress returns the configured SOCKS5 proxy address, or "" when
// connections are direct.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// HTTPClient returns the underlying HTTP client.
// Exposed for callers that need request-level control beyond Fetch.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// headerInjectingTransport wraps an http.RoundTripper to inject the
// User-Agent, cookie and custom headers into every request, including
// redirects and crawler subrequests.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	cookie    string
	headers   map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clone := req.Clone(req.Context())

	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}

	// Append to an existing Cookie header rather than replacing it
	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}

	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
