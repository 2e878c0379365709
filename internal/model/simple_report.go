package model

import "time"

// SimpleReport is a summarized, human-readable report.
// It carries the curated findings from a scan for quick review.
//
// Design decision: We keep a separate simplified report rather than
// just printing parts of ScanReport because:
// 1. It provides a consistent, curated view of the most important findings
// 2. It can be serialized to JSON for tools that want structured but simple output
// 3. It separates presentation concerns from data collection
type SimpleReport struct {
	// Target is the scanned URL.
	Target string `json:"target"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// === Severity Summary ===

	// CriticalCount is the number of critical findings.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity findings.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity findings.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity findings.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational findings.
	InfoCount int `json:"info_count"`

	// === Findings ===

	// Findings contains all categorized findings.
	Findings []Finding `json:"findings,omitempty"`

	// === Page Statistics ===

	// PagesScanned is the number of pages fetched and analyzed.
	PagesScanned int `json:"pages_scanned"`

	// TimedOut indicates if the scan was terminated due to timeout.
	TimedOut bool `json:"timed_out"`

	// Error contains any error message if the scan failed.
	Error string `json:"error,omitempty"`
}

// Finding represents a single finding in the simple report.
type Finding struct {
	// Type is the finding type identifier.
	// This maps to the findingInfoMapping in severity.go.
	Type string `json:"type"`

	// Severity is the risk level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Description provides more detail about the finding.
	Description string `json:"description,omitempty"`

	// Impact explains the security implications of this finding.
	// This helps users understand why this finding matters.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to address this finding.
	Recommendation string `json:"recommendation,omitempty"`

	// Value is the specific matched text (signature hit, header value, path).
	Value string `json:"value,omitempty"`

	// Location is the URL where the finding was discovered.
	Location string `json:"location,omitempty"`
}

// NewSimpleReport creates a new SimpleReport from a ScanReport.
// Findings accumulated through AddFinding are preserved; scan metadata
// (page counts, timeout state, error text) is synchronized from the report.
func NewSimpleReport(report *ScanReport) *SimpleReport {
	simple := report.SimpleReport
	if simple == nil {
		simple = &SimpleReport{
			Target:      report.Target,
			DateScanned: report.DateScanned,
			Findings:    make([]Finding, 0),
		}
	}

	simple.PagesScanned = len(report.Pages)
	if simple.PagesScanned == 0 {
		simple.PagesScanned = len(report.Fetches)
	}
	simple.TimedOut = report.TimedOut

	if report.Error != nil {
		simple.Error = report.Error.Error()
	}

	return simple
}

// TotalFindings returns the total number of findings.
func (s *SimpleReport) TotalFindings() int {
	return len(s.Findings)
}

// HasFindings returns true if there are any findings.
func (s *SimpleReport) HasFindings() bool {
	return len(s.Findings) > 0
}

// GetFindingsBySeverity returns findings filtered by severity.
func (s *SimpleReport) GetFindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range s.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}
