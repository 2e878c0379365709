package detect

import (
	"context"
	"regexp"

	"github.com/nao1215/vscan/internal/model"
)

// FrameworkAnalyzer detects framework-specific error and debug pages.
// Framework debug pages are the richest disclosure class: they render
// settings, environment variables, local variables and request state
// straight into the response.
//
// This analyzer checks for:
//   - Django and Werkzeug/Flask debug pages
//   - Rails and Laravel exception pages
//   - ASP.NET yellow screens and Spring whitelabel pages
//   - Default server error pages (Apache, nginx, Tomcat, Express)
type FrameworkAnalyzer struct {
	// patterns for detecting framework error pages
	patterns map[string]*signature
}

// NewFrameworkAnalyzer creates a new FrameworkAnalyzer.
func NewFrameworkAnalyzer() *FrameworkAnalyzer {
	return &FrameworkAnalyzer{
		patterns: map[string]*signature{
			// Django
			"django_debug_page": {
				regex:       regexp.MustCompile(`(?i)You're seeing this error because you have DEBUG = True`),
				findingType: "framework_debug",
				title:       "Django Debug Page Exposed",
				description: "The Django debug error page is enabled in production. It renders settings, request data and the full traceback.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyDjango,
			},
			"django_version_table": {
				regex:       regexp.MustCompile(`(?i)Django Version:\s*[\d.]+`),
				findingType: "framework_debug",
				title:       "Django Debug Metadata Exposed",
				description: "The Django debug page version table was found, exposing the exact framework version.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyDjango,
			},
			"django_disallowed_host": {
				regex:       regexp.MustCompile(`\bDisallowedHost\b`),
				findingType: "framework_debug",
				title:       "Django DisallowedHost Page Exposed",
				description: "A Django DisallowedHost error was found, confirming debug mode and exposing the ALLOWED_HOSTS configuration hint.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyDjango,
			},

			// Flask / Werkzeug
			"werkzeug_debugger": {
				regex:       regexp.MustCompile(`(?i)Werkzeug Debugger`),
				findingType: "framework_debug",
				title:       "Werkzeug Debugger Exposed",
				description: "The Werkzeug interactive debugger page was found. It exposes the full traceback and may allow code execution.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyFlask,
			},
			"werkzeug_console_pin": {
				regex:       regexp.MustCompile(`(?i)The console is locked and needs to be unlocked by entering the PIN`),
				findingType: "debug_console",
				title:       "Interactive Debug Console Reachable",
				description: "The Werkzeug debugger console is reachable. If the PIN is bypassed, this grants remote code execution.",
				severity:    model.SeverityCritical,
				technology:  model.TechnologyFlask,
			},

			// Rails
			"rails_exception": {
				regex:       regexp.MustCompile(`(?i)Action Controller: Exception caught`),
				findingType: "framework_debug",
				title:       "Rails Exception Page Exposed",
				description: "The Rails development exception page was found, exposing the traceback and request parameters.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyRails,
			},
			"rails_root": {
				regex:       regexp.MustCompile(`Rails\.root:`),
				findingType: "framework_debug",
				title:       "Rails Application Root Exposed",
				description: "The Rails error page discloses the application root path on the server.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyRails,
			},
			"rails_controller_error": {
				regex:       regexp.MustCompile(`ActionController::(?:\w+Error|Invalid\w+|Unknown\w+)`),
				findingType: "framework_debug",
				title:       "Rails Controller Error Exposed",
				description: "An ActionController error type was found, identifying the framework and the failure class.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyRails,
			},

			// ASP.NET
			"aspnet_ysod": {
				regex:       regexp.MustCompile(`(?i)Server Error in '/[^']*' Application`),
				findingType: "framework_debug",
				title:       "ASP.NET Error Page Exposed",
				description: "The ASP.NET yellow screen of death was found, exposing exception details and stack frames.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyASPNet,
			},
			"aspnet_custom_errors": {
				regex:       regexp.MustCompile(`(?i)customErrors mode="Off"`),
				findingType: "framework_debug",
				title:       "ASP.NET Custom Errors Disabled",
				description: "The error page instructs how to disable custom errors, confirming detailed errors are shown to remote visitors.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyASPNet,
			},

			// Laravel
			"laravel_whoops": {
				regex:       regexp.MustCompile(`(?i)Whoops, looks like something went wrong`),
				findingType: "framework_debug",
				title:       "Laravel Error Page Exposed",
				description: "The Laravel error page was found. With APP_DEBUG enabled it exposes environment variables and the traceback.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyLaravel,
			},
			"laravel_ignition": {
				regex:       regexp.MustCompile(`(?i)/_ignition/(?:scripts|styles|execute-solution)`),
				findingType: "framework_debug",
				title:       "Laravel Ignition Page Exposed",
				description: "The Laravel Ignition debug page was found. It exposes the traceback and its solution runner has a history of code execution flaws.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyLaravel,
			},

			// ColdFusion
			"coldfusion_error": {
				regex:       regexp.MustCompile(`(?i)Error Occurred While Processing Request`),
				findingType: "framework_debug",
				title:       "ColdFusion Error Page Exposed",
				description: "The ColdFusion error page was found, exposing template paths and query details.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyColdFusion,
			},

			// Spring
			"spring_whitelabel": {
				regex:       regexp.MustCompile(`(?i)Whitelabel Error Page`),
				findingType: "default_error_page",
				title:       "Spring Whitelabel Error Page",
				description: "The Spring Boot whitelabel error page was found, identifying the framework.",
				severity:    model.SeverityLow,
				technology:  model.TechnologySpring,
			},

			// Default server pages
			"apache_misconfiguration": {
				regex:       regexp.MustCompile(`(?i)The server encountered an internal error or misconfiguration`),
				findingType: "default_error_page",
				title:       "Apache Default Error Page",
				description: "The Apache default 500 error page was found, identifying the server software.",
				severity:    model.SeverityLow,
				technology:  model.TechnologyApache,
			},
			"nginx_footer": {
				regex:       regexp.MustCompile(`(?i)<center>nginx(?:/[\d.]+)?</center>`),
				findingType: "default_error_page",
				title:       "nginx Default Error Page",
				description: "The nginx default error page was found, identifying the server software and possibly its version.",
				severity:    model.SeverityLow,
				technology:  model.TechnologyNginx,
			},
			"tomcat_error_report": {
				regex:       regexp.MustCompile(`(?i)Apache Tomcat/[\d.]+ (?:- |– )?Error report`),
				findingType: "default_error_page",
				title:       "Tomcat Error Report Page",
				description: "The Apache Tomcat error report page was found, disclosing the exact Tomcat version.",
				severity:    model.SeverityLow,
				technology:  model.TechnologyTomcat,
			},
			"express_cannot": {
				regex:       regexp.MustCompile(`Cannot (?:GET|POST|PUT|DELETE|PATCH) /`),
				findingType: "default_error_page",
				title:       "Express Default Error Page",
				description: "The Express default route error was found, identifying the framework.",
				severity:    model.SeverityLow,
				technology:  model.TechnologyExpress,
			},
		},
	}
}

// Name returns the analyzer name.
func (a *FrameworkAnalyzer) Name() string {
	return "framework"
}

// Category returns the analyzer category.
func (a *FrameworkAnalyzer) Category() string {
	return CategoryContent
}

// Analyze searches for framework error pages in page content.
func (a *FrameworkAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
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

		// Error page titles identify frameworks even when the body text
		// was customized.
		findings = append(findings, a.checkTitle(page)...)
	}

	return findings, nil
}

// errorTitles maps well-known error page <title> contents to technologies.
var errorTitles = map[string]model.Technology{
	"Runtime Error":         model.TechnologyASPNet,
	"Whitelabel Error Page": model.TechnologySpring,
	"Werkzeug Debugger":     model.TechnologyFlask,
	"Internal Server Error": model.TechnologyUnknown,
}

// checkTitle reports framework identification from the page title.
func (a *FrameworkAnalyzer) checkTitle(page *model.Page) []model.Finding {
	findings := make([]model.Finding, 0)
	if page.Title == "" {
		return findings
	}

	for title, tech := range errorTitles {
		if page.Title != title {
			continue
		}

		findings = append(findings, model.Finding{
			Type:         "default_error_page",
			Title:        "Error Page Title Detected",
			Description:  "The page title matches a well-known error page, indicating the response is an error document.",
			Severity:     model.SeverityLow,
			SeverityText: model.SeverityLow.String(),
			Value:        page.Title,
			Location:     page.URL,
		})

		if tech != model.TechnologyUnknown {
			findings = append(findings, technologyHint(tech, page.Title, page.URL))
		}
	}

	return findings
}
