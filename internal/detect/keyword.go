package detect

import (
	"context"
	"strings"

	"github.com/nao1215/vscan/internal/model"
)

// categoryHeuristic is the analyzer category for the keyword fallback tier.
const categoryHeuristic = "heuristic"

// defaultKeywords are the case-insensitive substrings that trip the
// fallback tier. The list deliberately includes very generic terms
// ("debug", "version"): a custom error page that mentions nothing else
// still gets surfaced for manual review, at the cost of false positives.
var defaultKeywords = []string{
	"stack trace",
	"exception details",
	"error message",
	"sql syntax error",
	"pdoexception",
	"warning:",
	"notice:",
	"fatal error:",
	"internal server error",
	"the server encountered an internal error or misconfiguration",
	"debug",
	"database",
	"path",
	"version",
}

// KeywordAnalyzer is the broad fallback tier of the detector. It matches
// plain substrings against body and header text and reports every hit at
// informational severity. The coordinator suppresses these hits for pages
// where a precise analyzer already fired.
type KeywordAnalyzer struct {
	// keywords are the lowercase substrings to search for.
	keywords []string
}

// NewKeywordAnalyzer creates a new KeywordAnalyzer. Custom signatures are
// appended to the built-in list after trimming and lowercasing.
func NewKeywordAnalyzer(custom []string) *KeywordAnalyzer {
	keywords := make([]string, 0, len(defaultKeywords)+len(custom))
	keywords = append(keywords, defaultKeywords...)

	for _, c := range custom {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			keywords = append(keywords, c)
		}
	}

	return &KeywordAnalyzer{keywords: keywords}
}

// Name returns the analyzer name.
func (a *KeywordAnalyzer) Name() string {
	return "keyword"
}

// Category returns the analyzer category.
func (a *KeywordAnalyzer) Category() string {
	return categoryHeuristic
}

// Analyze searches for keyword hits in page content and headers.
func (a *KeywordAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	for _, page := range data.Pages {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		content := strings.ToLower(page.Snapshot)
		headers := lowerHeaderText(page)
		if content == "" && headers == "" {
			continue
		}

		seen := make(map[string]bool)
		for _, keyword := range a.keywords {
			if seen[keyword] {
				continue
			}
			if !strings.Contains(content, keyword) && !strings.Contains(headers, keyword) {
				continue
			}
			seen[keyword] = true

			findings = append(findings, model.Finding{
				Type:         "error_keyword",
				Title:        "Error Keyword Found",
				Description:  "A generic error-related keyword matched the response. This is a weak signal; review the page to confirm.",
				Severity:     model.SeverityInfo,
				SeverityText: model.SeverityInfo.String(),
				Value:        keyword,
				Location:     page.URL,
			})
		}
	}

	return findings, nil
}

// lowerHeaderText flattens response headers into one lowercase string so
// keyword signatures can match header names and values alike.
func lowerHeaderText(page *model.Page) string {
	if len(page.Headers) == 0 {
		return ""
	}

	var b strings.Builder
	for name, values := range page.Headers {
		for _, v := range values {
			b.WriteString(name)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString("\n")
		}
	}
	return strings.ToLower(b.String())
}
