// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - JSONWriter: The machine-readable report file
//   - CSVWriter: One row per potentially public page
//   - SimpleWriter: Human-readable text summary for terminal display
//   - MarkdownWriter: GitHub-flavored Markdown summary
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output. WriteFiles renders
// the requested file formats and writes them to disk.
package report
