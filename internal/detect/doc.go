// Package detect provides verbose error page checks for web targets.
//
// # Purpose
//
// This package analyzes fetched pages and response headers to identify
// verbose error output: content that belongs in a log file but was
// rendered to a remote visitor instead.
//
// # Design Philosophy
//
// The detect package follows a modular analyzer pattern where each class
// of signature is implemented as a separate Analyzer. This design was
// chosen because:
//  1. Each signature class has unique matching logic and severity rules
//  2. Enables selective scanning based on configuration
//  3. Makes it easy to add new checks without modifying existing code
//  4. Simplifies testing of individual analysis components
//
// # Analyzer Tiers
//
// Analyzers are layered from precise to broad:
//
// ## Precise content signatures
//   - Stack traces (Python, Java, PHP, Ruby, Node.js, Go, .NET)
//   - Database error messages and driver exceptions
//   - Interpreter warnings, notices and fatal errors
//   - Framework debug pages and default error pages
//   - Internal filesystem paths
//   - Debug configuration and credential dumps
//
// ## Header signatures
//   - Server version banners
//   - Technology headers (X-Powered-By, X-AspNet-Version, X-Runtime)
//   - Proxy and profiler headers
//
// ## Keyword fallback
//   - Generic error-related substrings, reported at informational
//     severity and suppressed wherever a precise signature already fired
//
// # Usage
//
//	analyzer := detect.NewAnalyzer()
//	findings, err := analyzer.Analyze(ctx, &detect.AnalysisData{
//		Target: target.String(),
//		Pages:  pages,
//		Report: report,
//	})
//
// # Severity Levels
//
// Findings are assigned severity levels based on disclosure impact:
//   - Critical: Secrets or interactive debug facilities exposed
//   - High: Stack traces, database errors, framework debug pages
//   - Medium: Runtime warnings, leaked paths, version headers
//   - Low: Stock error pages, minor identifying headers
//   - Info: Keyword hits and technology hints for manual review
package detect
