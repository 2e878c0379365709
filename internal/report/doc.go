// Package report provides scan report output in multiple formats.
//
// Three writers are available:
//   - SimpleWriter: human-readable text for terminal display
//   - JSONWriter: machine-readable JSON for tool integration
//   - MarkdownWriter: formatted Markdown for documentation and sharing
//
// All writers implement the Writer interface, and MultiWriter fans a
// single report out to several destinations (e.g. terminal and file).
//
// Design decision: Report formatting is separated from data collection
// (internal/model) so that scanners never need to know how results are
// presented, and new output formats can be added without touching the
// scan pipeline.
package report
