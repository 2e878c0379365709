// Package model defines the core data structures used throughout vscan.
//
// This package contains the following main types:
//   - Target: A validated scan target URL
//   - Page: Represents a fetched web page with parsed content
//   - ScanReport: The main scan result structure
//   - SimpleReport: A summarized, human-readable report
//   - Severity: Risk classification for findings
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (client, crawler, detect, report) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
