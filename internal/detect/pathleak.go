package detect

import (
	"context"
	"regexp"

	"github.com/nao1215/vscan/internal/model"
)

// maxPathsPerPattern caps how many distinct paths one pattern reports per
// page. Tracebacks repeat the same directory tree dozens of times; a few
// samples are enough for the report.
const maxPathsPerPattern = 5

// PathLeakAnalyzer detects internal filesystem paths leaked into response
// bodies. Absolute server paths reveal the operating system, the web root
// layout, and sometimes usernames, which narrows down follow-up attacks
// like local file inclusion.
type PathLeakAnalyzer struct {
	// patterns for detecting filesystem paths
	patterns map[string]*signature
}

// NewPathLeakAnalyzer creates a new PathLeakAnalyzer.
func NewPathLeakAnalyzer() *PathLeakAnalyzer {
	return &PathLeakAnalyzer{
		patterns: map[string]*signature{
			// Unix
			"unix_web_root": {
				regex:       regexp.MustCompile(`(?:/var/www|/usr/share/nginx|/srv/www)[\w./-]*`),
				findingType: "path_disclosure",
				title:       "Web Root Path Disclosed",
				description: "An absolute web root path was found in the response body, revealing the server's directory layout.",
				severity:    model.SeverityMedium,
			},
			"unix_home": {
				regex:       regexp.MustCompile(`/home/[a-z_][\w-]*/[\w./-]+`),
				findingType: "path_disclosure",
				title:       "Home Directory Path Disclosed",
				description: "A path under /home was found, revealing a server username along with the directory layout.",
				severity:    model.SeverityMedium,
			},
			"python_packages": {
				regex:       regexp.MustCompile(`/usr(?:/local)?/lib/python[\d.]+/(?:site|dist)-packages[\w./-]*`),
				findingType: "path_disclosure",
				title:       "Python Package Path Disclosed",
				description: "A Python package installation path was found, revealing the interpreter version and installed libraries.",
				severity:    model.SeverityMedium,
				technology:  model.TechnologyPython,
			},
			"unix_etc": {
				regex:       regexp.MustCompile(`/etc/(?:passwd|shadow|nginx|apache2|httpd)[\w./-]*`),
				findingType: "path_disclosure",
				title:       "System Configuration Path Disclosed",
				description: "A system configuration path was found in the response body.",
				severity:    model.SeverityMedium,
			},

			// Windows
			"windows_inetpub": {
				regex:       regexp.MustCompile(`(?i)[a-z]:\\inetpub\\[^"'<>|\r\n]{1,200}`),
				findingType: "path_disclosure",
				title:       "IIS Web Root Path Disclosed",
				description: "An absolute path under inetpub was found, revealing a Windows/IIS host and its directory layout.",
				severity:    model.SeverityMedium,
				technology:  model.TechnologyIIS,
			},
			"windows_users": {
				regex:       regexp.MustCompile(`(?i)[a-z]:\\users\\[^"'<>|\r\n]{1,200}`),
				findingType: "path_disclosure",
				title:       "Windows User Path Disclosed",
				description: "A path under Users was found, revealing a Windows username along with the directory layout.",
				severity:    model.SeverityMedium,
			},
			"windows_stack_root": {
				regex:       regexp.MustCompile(`(?i)[a-z]:\\(?:xampp|wamp(?:64)?|laragon)\\[^"'<>|\r\n]{1,200}`),
				findingType: "path_disclosure",
				title:       "Development Stack Path Disclosed",
				description: "A path under a development stack root (XAMPP/WAMP) was found, indicating a development setup serving production traffic.",
				severity:    model.SeverityMedium,
			},
		},
	}
}

// Name returns the analyzer name.
func (a *PathLeakAnalyzer) Name() string {
	return "pathleak"
}

// Category returns the analyzer category.
func (a *PathLeakAnalyzer) Category() string {
	return CategoryContent
}

// Analyze searches for filesystem paths in page content.
func (a *PathLeakAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)
	seenPaths := make(map[string]bool)

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

		for _, sig := range a.patterns {
			matches := sig.regex.FindAllString(content, -1)
			if matches == nil {
				continue
			}

			reported := 0
			for _, match := range matches {
				if reported >= maxPathsPerPattern {
					break
				}

				path := excerpt(match)
				key := path + ":" + page.URL
				if seenPaths[key] {
					continue
				}
				seenPaths[key] = true
				reported++

				findings = append(findings, model.Finding{
					Type:         sig.findingType,
					Title:        sig.title,
					Description:  sig.description,
					Severity:     sig.severity,
					SeverityText: sig.severity.String(),
					Value:        path,
					Location:     page.URL,
				})

				if sig.technology != model.TechnologyUnknown {
					findings = append(findings, technologyHint(sig.technology, match, page.URL))
				}
			}
		}
	}

	return findings, nil
}
