package detect

import (
	"context"
	"regexp"

	"github.com/nao1215/vscan/internal/model"
)

// DebugModeAnalyzer detects applications running with debug facilities
// enabled, and the secrets those facilities dump into error output.
// Debug pages frequently render full environment blocks, which turns a
// verbose error page into a credential leak.
type DebugModeAnalyzer struct {
	// patterns for detecting debug configuration leaks
	patterns map[string]*signature
}

// NewDebugModeAnalyzer creates a new DebugModeAnalyzer.
func NewDebugModeAnalyzer() *DebugModeAnalyzer {
	return &DebugModeAnalyzer{
		patterns: map[string]*signature{
			"django_debug_setting": {
				regex:       regexp.MustCompile(`DEBUG\s*=\s*True`),
				findingType: "debug_mode",
				title:       "Debug Setting Enabled",
				description: "A DEBUG = True setting was rendered into the page, confirming the application runs in debug mode.",
				severity:    model.SeverityMedium,
				technology:  model.TechnologyDjango,
			},
			"php_display_errors": {
				regex:       regexp.MustCompile(`(?i)display_errors\s*=?\s*(?:on|1)\b`),
				findingType: "debug_mode",
				title:       "PHP Error Display Enabled",
				description: "The display_errors setting is visible and enabled, so PHP renders errors to visitors.",
				severity:    model.SeverityMedium,
				technology:  model.TechnologyPHP,
			},
			"laravel_app_debug": {
				regex:       regexp.MustCompile(`(?i)APP_DEBUG["']?\s*(?:=>?|:)\s*["']?(?:true|1)`),
				findingType: "debug_mode",
				title:       "Laravel Debug Flag Enabled",
				description: "An APP_DEBUG=true value was rendered into the page, usually from an environment dump on the error page.",
				severity:    model.SeverityMedium,
				technology:  model.TechnologyLaravel,
			},
			"debug_banner": {
				regex:       regexp.MustCompile(`(?i)debug mode(?:\s+is)?\s+(?:on|enabled|active)`),
				findingType: "debug_mode",
				title:       "Debug Mode Banner Found",
				description: "The page announces that debug mode is enabled.",
				severity:    model.SeverityMedium,
			},
			"xdebug_output": {
				regex:       regexp.MustCompile(`(?i)\bXdebug\b`),
				findingType: "debug_mode",
				title:       "Xdebug Output Found",
				description: "Xdebug output was found in the response, indicating the debugging extension is active in production.",
				severity:    model.SeverityMedium,
				technology:  model.TechnologyPHP,
			},

			// Secrets rendered by debug pages
			"env_credentials": {
				regex:       regexp.MustCompile(`(?i)\b(?:DB_PASSWORD|DATABASE_PASSWORD|MYSQL_PASSWORD|SECRET_KEY|APP_KEY)\b\s*(?:=>?|:)\s*\S+`),
				findingType: "credential_disclosure",
				title:       "Credentials in Error Output",
				description: "An environment dump on the error page includes credential variables. These values grant direct access to backend systems.",
				severity:    model.SeverityCritical,
			},
			"connection_string": {
				regex:       regexp.MustCompile(`(?i)(?:Data Source|Server)=[^;<>"']+;[^<>"']*(?:Password|Pwd)=[^;<>"'\s]+`),
				findingType: "credential_disclosure",
				title:       "Connection String in Error Output",
				description: "A database connection string with an embedded password was rendered into the error page.",
				severity:    model.SeverityCritical,
			},
		},
	}
}

// Name returns the analyzer name.
func (a *DebugModeAnalyzer) Name() string {
	return "debugmode"
}

// Category returns the analyzer category.
func (a *DebugModeAnalyzer) Category() string {
	return CategoryContent
}

// Analyze searches for debug configuration leaks in page content.
func (a *DebugModeAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
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
