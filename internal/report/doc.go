// Package report writes run reports.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for terminal display, colored when
//     the output supports it
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with a mermaid pie chart, for sharing
//
// Writers implement the Writer interface and can be combined with
// MultiWriter.
package report
