package model

import (
	"time"
)

// ScanReport is the main scan result structure.
// It contains all information collected while scanning one target URL.
//
// Design decision: We use a single large struct rather than many small ones
// to simplify serialization and database storage. The SimpleReport sub-struct
// carries the curated findings for human-readable output.
type ScanReport struct {
	// === Basic Information ===

	// Target is the URL that was requested.
	Target string `json:"target"`

	// Host is the target host (including port if given).
	// Used as the grouping key for scan history.
	Host string `json:"host"`

	// DateScanned is the timestamp when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// === Response Summary ===

	// Reachable is true if the target returned an HTTP response.
	// False means the request failed at the network level.
	Reachable bool `json:"reachable"`

	// StatusCode is the HTTP status of the initial page.
	// Error statuses (4xx/5xx) are still analyzed; verbose error pages
	// usually ship with exactly those codes.
	StatusCode int `json:"status_code,omitempty"`

	// FinalURL is the URL after following redirects.
	// Differs from Target when the server redirected the request.
	FinalURL string `json:"final_url,omitempty"`

	// ServerBanner is the Server header of the initial response.
	ServerBanner string `json:"server_banner,omitempty"`

	// === Page Data ===

	// Fetches maps URLs to their HTTP status codes.
	// Used to track which pages were fetched during the scan.
	Fetches map[string]int `json:"fetches,omitempty"`

	// PageCache stores fetched pages by URL.
	// Used for detection analysis.
	PageCache map[string]*Page `json:"-"` // Excluded from JSON due to size

	// Pages contains all pages fetched during the scan in fetch order.
	Pages []*Page `json:"-"` // Excluded from JSON due to size

	// === Sub-Reports ===

	// SimpleReport contains the summarized findings for human-readable output.
	SimpleReport *SimpleReport `json:"simple_report,omitempty"`

	// === Scan State ===

	// TimedOut is true if the scan was terminated due to timeout.
	TimedOut bool `json:"timed_out"`

	// PerformedSteps lists the pipeline steps that were actually executed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error contains any error that occurred during scanning.
	// Only set if the scan failed or partially failed.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewScanReport creates a new report for the given target.
func NewScanReport(target Target) *ScanReport {
	return &ScanReport{
		Target:      target.String(),
		Host:        target.Host(),
		DateScanned: time.Now(),
		Fetches:     make(map[string]int),
		PageCache:   make(map[string]*Page),
	}
}

// AddPage adds a fetched page to the report.
func (r *ScanReport) AddPage(url string, page *Page) {
	if _, exists := r.PageCache[url]; !exists {
		r.Pages = append(r.Pages, page)
	}
	r.Fetches[url] = page.StatusCode
	r.PageCache[url] = page
}

// GetPage retrieves a cached page by URL.
// Returns nil if the page was not fetched.
func (r *ScanReport) GetPage(url string) *Page {
	return r.PageCache[url]
}

// AddFinding adds a finding to the simple report.
// If the simple report doesn't exist, it initializes one.
//
// Design decision: We store findings in SimpleReport rather than
// a separate findings slice because:
// 1. SimpleReport already has finding aggregation logic
// 2. Avoids duplication of findings data
// 3. Keeps the main report focused on raw data
func (r *ScanReport) AddFinding(finding Finding) {
	if r.SimpleReport == nil {
		r.SimpleReport = &SimpleReport{
			Target:      r.Target,
			DateScanned: r.DateScanned,
			Findings:    make([]Finding, 0),
		}
	}

	// Keep page count in sync when SimpleReport is first created via AddFinding.
	if r.SimpleReport.PagesScanned == 0 {
		if count := len(r.Pages); count > 0 {
			r.SimpleReport.PagesScanned = count
		} else if count := len(r.Fetches); count > 0 {
			r.SimpleReport.PagesScanned = count
		}
	}

	// Avoid duplicates based on type, value and location
	for _, f := range r.SimpleReport.Findings {
		if f.Type == finding.Type && f.Value == finding.Value && f.Location == finding.Location {
			return
		}
	}

	// Enrich from the finding catalog. Analyzers only set what they
	// matched; the impact and recommendation texts are keyed by type.
	info := GetFindingInfo(finding.Type)
	if finding.Impact == "" {
		finding.Impact = info.Impact
	}
	if finding.Recommendation == "" {
		finding.Recommendation = info.Recommendation
	}
	if finding.SeverityText == "" {
		finding.SeverityText = finding.Severity.String()
	}

	r.SimpleReport.Findings = append(r.SimpleReport.Findings, finding)

	// Update severity counts
	switch finding.Severity {
	case SeverityCritical:
		r.SimpleReport.CriticalCount++
	case SeverityHigh:
		r.SimpleReport.HighCount++
	case SeverityMedium:
		r.SimpleReport.MediumCount++
	case SeverityLow:
		r.SimpleReport.LowCount++
	case SeverityInfo:
		r.SimpleReport.InfoCount++
	}
}

// Detected reports whether the scan found any verbose error page signature.
// This drives the per-target verdict line in console output.
func (r *ScanReport) Detected() bool {
	return r.SimpleReport != nil && r.SimpleReport.HasFindings()
}
