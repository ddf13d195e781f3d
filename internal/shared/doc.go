// Package shared holds code used across rankpulse packages that belongs to
// no single layer.
//
// The testutil subpackage provides test helpers:
//
//   - NewTestLogger: a *slog.Logger whose records can be asserted on
//   - NewWorkbook, WriteWorkbook and WorkbookBytes: excelize-built .xlsx
//     fixtures, with GSCRows producing a search console style sheet
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    dir := t.TempDir()
//	    testutil.WriteWorkbook(t, dir, "gsc_2024-01-08.xlsx", testutil.GSCRows(
//	        []interface{}{"shoes", 30, 900, 0.033, 5},
//	    ))
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	}
package shared
