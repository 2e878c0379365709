package detect

import (
	"context"
	"regexp"

	"github.com/nao1215/vscan/internal/model"
)

// StackTraceAnalyzer detects stack traces leaked into response bodies.
// A stack trace exposes source paths, class and function names, and often
// the exact framework version, all of which make targeted attacks easier.
//
// This analyzer checks for:
//   - Python tracebacks
//   - Java and .NET stack frames
//   - PHP, Ruby, Node.js and Go trace formats
type StackTraceAnalyzer struct {
	// patterns for detecting stack trace formats
	patterns map[string]*signature
}

// NewStackTraceAnalyzer creates a new StackTraceAnalyzer.
func NewStackTraceAnalyzer() *StackTraceAnalyzer {
	return &StackTraceAnalyzer{
		patterns: map[string]*signature{
			// Python
			"python_traceback": {
				regex:       regexp.MustCompile(`Traceback \(most recent call last\)`),
				findingType: "stack_trace",
				title:       "Python Traceback Disclosed",
				description: "A Python traceback was found in the response body. It reveals source file paths and the call chain of the failing code.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyPython,
			},
			"python_frame": {
				regex:       regexp.MustCompile(`File "[^"]+", line \d+, in `),
				findingType: "stack_trace",
				title:       "Python Stack Frame Disclosed",
				description: "Python stack frame lines expose source file paths and function names.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyPython,
			},

			// Java
			"java_frame": {
				regex:       regexp.MustCompile(`\bat [\w$.]+\([\w$]+\.java:\d+\)`),
				findingType: "stack_trace",
				title:       "Java Stack Trace Disclosed",
				description: "Java stack frames expose package structure, class names and line numbers.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyJava,
			},
			"java_caused_by": {
				regex:       regexp.MustCompile(`Caused by: [\w.]+(?:Exception|Error)`),
				findingType: "stack_trace",
				title:       "Java Exception Chain Disclosed",
				description: "A Java exception cause chain was found, revealing internal exception types.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyJava,
			},
			"java_exception": {
				regex:       regexp.MustCompile(`java\.lang\.[A-Za-z]+(?:Exception|Error)`),
				findingType: "stack_trace",
				title:       "Java Exception Type Disclosed",
				description: "A java.lang exception type was found in the response body, confirming a Java backend and the failure class.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyJava,
			},

			// PHP
			"php_trace": {
				regex:       regexp.MustCompile(`(?i)Stack trace:\s*#\d+`),
				findingType: "stack_trace",
				title:       "PHP Stack Trace Disclosed",
				description: "A PHP stack trace was found in the response body, exposing script paths and the call chain.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyPHP,
			},
			"php_thrown": {
				regex:       regexp.MustCompile(`(?i)thrown in \S+\.php on line \d+`),
				findingType: "stack_trace",
				title:       "PHP Exception Location Disclosed",
				description: "A PHP exception location line exposes the script path and line number of the failure.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyPHP,
			},

			// Ruby
			"ruby_frame": {
				regex:       regexp.MustCompile("\\.rb:\\d+:in `"),
				findingType: "stack_trace",
				title:       "Ruby Backtrace Disclosed",
				description: "Ruby backtrace frames expose source file paths and method names.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyRuby,
			},

			// Node.js
			"node_frame": {
				regex:       regexp.MustCompile(`at [\w.<>\[\] ]+ \([^()]*\.js:\d+:\d+\)`),
				findingType: "stack_trace",
				title:       "Node.js Stack Trace Disclosed",
				description: "Node.js stack frames expose module paths and the call chain of the failing code.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyNode,
			},

			// Go
			"go_goroutine": {
				regex:       regexp.MustCompile(`goroutine \d+ \[[a-z ]+\]:`),
				findingType: "stack_trace",
				title:       "Go Panic Trace Disclosed",
				description: "A Go goroutine dump was found, exposing package paths and the runtime state at the time of the panic.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyGo,
			},
			"go_panic": {
				regex:       regexp.MustCompile(`(?m)^panic: .+`),
				findingType: "stack_trace",
				title:       "Go Panic Message Disclosed",
				description: "A Go panic message was found in the response body, exposing the failure reason and usually followed by a goroutine dump.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyGo,
			},

			// .NET
			"dotnet_frame": {
				regex:       regexp.MustCompile(`(?i) in [a-z]:\\[^:\r\n]+:line \d+`),
				findingType: "stack_trace",
				title:       ".NET Stack Frame Disclosed",
				description: ".NET stack frames expose source file paths on the server filesystem and line numbers.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyASPNet,
			},
			"dotnet_exception": {
				regex:       regexp.MustCompile(`\bSystem\.[A-Za-z.]*Exception\b`),
				findingType: "stack_trace",
				title:       ".NET Exception Type Disclosed",
				description: "A System exception type was found in the response body, confirming a .NET backend and the failure class.",
				severity:    model.SeverityHigh,
				technology:  model.TechnologyASPNet,
			},
		},
	}
}

// Name returns the analyzer name.
func (a *StackTraceAnalyzer) Name() string {
	return "stacktrace"
}

// Category returns the analyzer category.
func (a *StackTraceAnalyzer) Category() string {
	return CategoryContent
}

// Analyze searches for stack trace formats in page content.
func (a *StackTraceAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
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
