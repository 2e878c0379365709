package detect

import (
	"context"
	"strings"

	"github.com/nao1215/vscan/internal/model"
)

// Analyzer category constants.
const (
	// CategoryContent is used by analyzers that match response body signatures.
	CategoryContent = "content"
	// CategoryHeaders is used by analyzers that inspect response headers.
	CategoryHeaders = "headers"
)

// Analyzer coordinates verbose error page checks across multiple analyzers.
// It aggregates findings from different detection types into a unified result.
//
// Design decision: We use a coordinator pattern rather than running analyzers
// independently because:
//  1. Unified severity assessment across all findings
//  2. Deduplication of overlapping signature hits
//  3. The keyword fallback tier must see which pages stronger analyzers flagged
//  4. Consistent context and cancellation handling
type Analyzer struct {
	// analyzers is the list of registered analyzers to run.
	analyzers []CheckAnalyzer

	// options configures analyzer behavior.
	options AnalyzerOptions
}

// AnalyzerOptions configures the analyzer behavior.
type AnalyzerOptions struct {
	// EnableHeaderChecks enables header-based server information checks.
	EnableHeaderChecks bool

	// EnableKeywordScan enables the broad keyword fallback tier.
	// This tier is intentionally noisy; it catches error pages that
	// no precise signature recognizes.
	EnableKeywordScan bool

	// CustomSignatures are additional case-insensitive substrings to
	// report as keyword hits. Typically supplied from the config file.
	CustomSignatures []string
}

// DefaultOptions returns sensible default analyzer options.
func DefaultOptions() AnalyzerOptions {
	return AnalyzerOptions{
		EnableHeaderChecks: true,
		EnableKeywordScan:  true,
	}
}

// CheckAnalyzer defines the interface for individual analyzers.
// Each analyzer focuses on a specific class of error page signature.
//
// Design decision: We use an interface rather than concrete types because:
//  1. Allows for easy extension with new analyzers
//  2. Enables testing with mock analyzers
//  3. Supports different analyzer implementations for the same check type
type CheckAnalyzer interface {
	// Name returns the analyzer's name for logging and reporting.
	Name() string

	// Category returns the analyzer's category (e.g., "content", "headers").
	Category() string

	// Analyze runs the analysis on the provided data.
	// It returns findings discovered during analysis.
	Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error)
}

// AnalysisData contains all data available for analysis.
// This structure aggregates data from fetching and crawling.
//
// Design decision: We pass all data in a single struct rather than
// multiple parameters because:
//  1. Not all analyzers need all data types
//  2. Adding new data types doesn't change analyzer signatures
//  3. Easier to mock in tests
type AnalysisData struct {
	// Target is the URL being analyzed.
	Target string

	// Pages contains all fetched pages.
	Pages []*model.Page

	// Report is the current scan report (for adding findings).
	Report *model.ScanReport
}

// NewAnalyzer creates a new Analyzer with all built-in analyzers registered.
func NewAnalyzer(opts ...func(*AnalyzerOptions)) *Analyzer {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	a := &Analyzer{
		options:   options,
		analyzers: make([]CheckAnalyzer, 0),
	}

	// Register built-in analyzers
	// Content analyzers (precise signatures)
	a.Register(NewStackTraceAnalyzer())
	a.Register(NewDatabaseErrorAnalyzer())
	a.Register(NewRuntimeErrorAnalyzer())
	a.Register(NewFrameworkAnalyzer())
	a.Register(NewPathLeakAnalyzer())
	a.Register(NewDebugModeAnalyzer())

	// Header analyzers
	if options.EnableHeaderChecks {
		a.Register(NewServerInfoAnalyzer())
	}

	// Fallback keyword tier (must run against the full page set, but its
	// hits are suppressed where a stronger analyzer already fired)
	if options.EnableKeywordScan {
		a.Register(NewKeywordAnalyzer(options.CustomSignatures))
	}

	return a
}

// Register adds an analyzer to the list.
func (a *Analyzer) Register(analyzer CheckAnalyzer) {
	a.analyzers = append(a.analyzers, analyzer)
}

// Analyze runs all registered analyzers and aggregates findings.
func (a *Analyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	var allFindings []model.Finding

	for _, analyzer := range a.analyzers {
		select {
		case <-ctx.Done():
			return allFindings, ctx.Err()
		default:
		}

		findings, err := analyzer.Analyze(ctx, data)
		if err != nil {
			// Log error but continue with other analyzers
			// We want to collect as many findings as possible
			continue
		}

		allFindings = append(allFindings, findings...)
	}

	// Deduplicate findings
	allFindings = deduplicateFindings(allFindings)

	// Drop keyword-tier noise where a precise analyzer already fired
	allFindings = suppressKeywordFindings(allFindings)

	return allFindings, nil
}

// deduplicateFindings removes duplicate findings based on title and value.
//
// Design decision: We deduplicate by title+value rather than just value because:
//  1. Same value might have different meanings in different contexts
//  2. Multiple analyzers might find the same thing
//  3. We want to keep the most severe instance of each finding
func deduplicateFindings(findings []model.Finding) []model.Finding {
	seen := make(map[string]int) // key -> index in result
	result := make([]model.Finding, 0)

	for _, f := range findings {
		key := f.Title + "|" + f.Value
		if idx, exists := seen[key]; exists {
			// Keep the more severe finding
			if f.Severity > result[idx].Severity {
				result[idx] = f
			}
		} else {
			seen[key] = len(result)
			result = append(result, f)
		}
	}

	return result
}

// suppressKeywordFindings removes keyword-tier hits that a stronger
// finding on the same page already covers. A keyword counts as covered
// when it appears in the title or matched value of a finding above Info
// severity at the same location; keywords no precise analyzer accounts
// for stay in the report. The keyword tier exists so that a page
// matching only generic terms still trips the detector; once a precise
// signature matched the same text, the generic hit adds nothing but
// noise.
func suppressKeywordFindings(findings []model.Finding) []model.Finding {
	// Per-page lowercase text of the stronger findings.
	coverage := make(map[string][]string)
	for _, f := range findings {
		if f.Type != "error_keyword" && f.Severity > model.SeverityInfo {
			coverage[f.Location] = append(coverage[f.Location],
				strings.ToLower(f.Title+" "+f.Value))
		}
	}

	if len(coverage) == 0 {
		return findings
	}

	result := make([]model.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Type == "error_keyword" && keywordCovered(f.Value, coverage[f.Location]) {
			continue
		}
		result = append(result, f)
	}

	return result
}

// keywordCovered reports whether any stronger finding's text contains
// the keyword. Keyword finding values are already lowercase.
func keywordCovered(keyword string, stronger []string) bool {
	for _, text := range stronger {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
