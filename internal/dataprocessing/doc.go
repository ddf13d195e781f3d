// Package dataprocessing turns search-console keyword exports into analysis
// results. It covers the full path from spreadsheet bytes to the views the
// dashboard and CLI render.
//
// # Architecture
//
// The package is organized into four stages:
//
// 1. Parser: reads the first worksheet of an .xlsx workbook into a RawTable
// 2. Schema: maps arbitrary export headers onto the canonical fields
// 3. Extractor: builds a cleaned Snapshot (top-10 rows, derived and rescaled CTR)
// 4. Aggregator: loads every snapshot of a directory into a LongitudinalTable
//
// Analysis functions operate on the results: Trends, Compare, BiggestMovers,
// FindOpportunities, ApplyFilter, Summarize and PositionDistribution.
//
// # Usage
//
//	agg := dataprocessing.NewAggregator(dataprocessing.WithLogger(logger))
//	table, err := agg.LoadDirectory(ctx, "data")
//	if err != nil {
//	    return err
//	}
//	current, baseline, ok := dataprocessing.DefaultPeriods(table)
//	if ok {
//	    result, err := dataprocessing.Compare(table, current, baseline)
//	    ...
//	}
//
// # Error Handling
//
// Per-file failures are typed so callers can tell them apart:
//
//   - SchemaResolutionError: a required column could not be identified
//   - EmptySnapshotError: no row survived cleaning
//   - ProcessingError: the workbook could not be read
//
// During aggregation these are recorded in LongitudinalTable.Skipped and the
// remaining files are still loaded. NoDataAvailableError is returned only when
// no file yields data.
//
// # Concurrency
//
// The Aggregator parses files in parallel, bounded by WithMaxParallel, and
// assembles results in file-name order so output does not depend on
// scheduling. All analysis functions are pure and safe for concurrent use.
package dataprocessing
