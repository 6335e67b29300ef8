// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: the plain-text orphan list for terminal display
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: GitHub Flavored Markdown for documentation
//
// Design decision: We separate report writing from report data
// structures (which are in the model package) so that new output formats
// can be added without touching the core data types. Writers implement
// the Writer interface, allowing them to be used interchangeably and
// composed for multi-destination output.
package report
