package detect

import (
	"context"
	"regexp"

	"github.com/nao1215/vscan/internal/model"
)

// RuntimeErrorAnalyzer detects interpreter and runtime error output
// rendered into response bodies. PHP is the most common source: with
// display_errors enabled, every warning and notice is written straight
// into the page, usually with the script path attached.
type RuntimeErrorAnalyzer struct {
	// patterns for detecting runtime error formats
	patterns map[string]*signature
}

// NewRuntimeErrorAnalyzer creates a new RuntimeErrorAnalyzer.
func NewRuntimeErrorAnalyzer() *RuntimeErrorAnalyzer {
	return &RuntimeErrorAnalyzer{
		patterns: map[string]*signature{
			// PHP fatal tier. The message tail is captured up to the next
			// tag or newline so the finding carries the failing script path.
			"php_fatal_error": {
				regex:       regexp.MustCompile(`(?i)\bFatal error:[^\n<]{0,200}`),
				findingType: "fatal_error",
				title:       "Fatal Error Output Disclosed",
				description: "A fatal error message was rendered into the page. The accompanying text usually includes the failing script path.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyPHP,
			},
			"php_parse_error": {
				regex:       regexp.MustCompile(`(?i)\bParse error:[^\n<]{0,200}`),
				findingType: "fatal_error",
				title:       "Parse Error Output Disclosed",
				description: "A parse error message was rendered into the page, exposing the path of a script with broken syntax.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyPHP,
			},
			"php_undefined_call": {
				regex:       regexp.MustCompile(`(?i)Call to undefined (?:function|method) [\w:>-]*`),
				findingType: "fatal_error",
				title:       "Undefined Function Call Disclosed",
				description: "An undefined function call error was rendered into the page, exposing internal function names.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyPHP,
			},

			// PHP diagnostic tier
			"php_warning": {
				regex:       regexp.MustCompile(`(?i)\bWarning:[^\n<]{0,200}`),
				findingType: "runtime_warning",
				title:       "Runtime Warning Output Disclosed",
				description: "A runtime warning was rendered into the page, indicating error display is enabled in production.",
				severity:    model.SeverityMedium,
			},
			"php_notice": {
				regex:       regexp.MustCompile(`(?i)\bNotice:[^\n<]{0,200}`),
				findingType: "runtime_notice",
				title:       "Runtime Notice Output Disclosed",
				description: "A runtime notice was rendered into the page, indicating error display is enabled in production.",
				severity:    model.SeverityLow,
			},
			"php_deprecated": {
				regex:       regexp.MustCompile(`(?i)\bDeprecated:[^\n<]{0,200}`),
				findingType: "runtime_notice",
				title:       "Deprecation Notice Output Disclosed",
				description: "A deprecation notice was rendered into the page, indicating error display is enabled in production.",
				severity:    model.SeverityLow,
			},

			// Exception messages
			"uncaught_exception": {
				regex:       regexp.MustCompile(`(?i)Uncaught (?:exception|Error|TypeError|ReferenceError)`),
				findingType: "exception_message",
				title:       "Uncaught Exception Disclosed",
				description: "An uncaught exception message was found in the response body.",
				severity:    model.SeverityMedium,
			},
			"exception_details": {
				regex:       regexp.MustCompile(`(?i)Exception Details:`),
				findingType: "exception_message",
				title:       "Exception Details Disclosed",
				description: "An 'Exception Details' section was found, the field label of the ASP.NET error page.",
				severity:    model.SeverityMedium,
				technology:  model.TechnologyASPNet,
			},
			"unhandled_exception": {
				regex:       regexp.MustCompile(`(?i)An unhandled exception (?:occurred|was thrown)`),
				findingType: "exception_message",
				title:       "Unhandled Exception Disclosed",
				description: "An unhandled exception message was found in the response body.",
				severity:    model.SeverityMedium,
			},
		},
	}
}

// Name returns the analyzer name.
func (a *RuntimeErrorAnalyzer) Name() string {
	return "runtimeerror"
}

// Category returns the analyzer category.
func (a *RuntimeErrorAnalyzer) Category() string {
	return CategoryContent
}

// Analyze searches for runtime error output in page content.
func (a *RuntimeErrorAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)
	seenPatterns := make(map[string]bool)

	for _, page := range data.Pages {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		content := page.Snapshot
		if content == "" {
			continue
		}

		for patternName, sig := range a.patterns {
			match := sig.regex.FindString(content)
			if match == "" {
				continue
			}

			// Only report each pattern once per page
			key := patternName + ":" + page.URL
			if seenPatterns[key] {
				continue
			}
			seenPatterns[key] = true

			findings = append(findings, model.Finding{
				Type:         sig.findingType,
				Title:        sig.title,
				Description:  sig.description,
				Severity:     sig.severity,
				SeverityText: sig.severity.String(),
				Value:        excerpt(match),
				Location:     page.URL,
			})

			if sig.technology != model.TechnologyUnknown {
				findings = append(findings, technologyHint(sig.technology, match, page.URL))
			}
		}
	}

	return findings, nil
}
