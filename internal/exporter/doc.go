// Package exporter writes keyword analysis results as CSV.
//
// CSVWriter handles files under the reports directory; Encode writes to any
// io.Writer so HTTP handlers can stream downloads directly. Both prefix output
// with a UTF-8 BOM when asked, which spreadsheet applications need to detect
// the encoding.
//
// Record builders exist for each exportable view:
//
//   - KeywordRecords / WriteKeywords: a filtered snapshot view
//   - ComparisonRecords / WriteComparison: a two-period comparison
//   - TrendRecords / WriteTrends: per-date trend points
//
// Example usage:
//
//	w.Header().Set("Content-Disposition", "attachment; filename="+exporter.SnapshotFileName(source))
//	err := exporter.WriteKeywords(w, rows, snapshot.ExtraColumns)
package exporter
