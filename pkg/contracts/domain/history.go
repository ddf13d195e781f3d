package domain

import (
	"time"
)

// SnapshotInfo describes one snapshot that made it into a LongitudinalTable
type SnapshotInfo struct {
	Source  string          `json:"source"`
	Date    *time.Time      `json:"date,omitempty"`
	Rows    int             `json:"rows"`
	Columns SnapshotColumns `json:"columns"`
}

// SkippedFile is a file the aggregator could not turn into a snapshot
type SkippedFile struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// LongitudinalTable is the row-wise union of every usable snapshot, in file
// name order. Rows from files sharing a date coexist; nothing is de-duplicated.
type LongitudinalTable struct {
	Rows      []KeywordRow   `json:"rows"`
	Snapshots []SnapshotInfo `json:"snapshots"`
	Skipped   []SkippedFile  `json:"skipped,omitempty"`
}

// RowsForDate returns the rows stamped with date, in table order.
func (t *LongitudinalTable) RowsForDate(date time.Time) []KeywordRow {
	var out []KeywordRow
	for _, row := range t.Rows {
		if row.Date != nil && row.Date.Equal(date) {
			out = append(out, row)
		}
	}
	return out
}

// RowsForSource returns the rows that came from source, in table order.
func (t *LongitudinalTable) RowsForSource(source string) []KeywordRow {
	var out []KeywordRow
	for _, row := range t.Rows {
		if row.Source == source {
			out = append(out, row)
		}
	}
	return out
}

// SnapshotFor returns the info recorded for source.
func (t *LongitudinalTable) SnapshotFor(source string) (SnapshotInfo, bool) {
	for _, s := range t.Snapshots {
		if s.Source == source {
			return s, true
		}
	}
	return SnapshotInfo{}, false
}

// TrendPoint holds the aggregate metrics of one date. Unknown-date snapshots
// get a point each, identified by Source.
type TrendPoint struct {
	Date        *time.Time `json:"date,omitempty"`
	Source      string     `json:"source,omitempty"`
	Keywords    int        `json:"keywords"`
	Impressions int64      `json:"impressions"`
	Clicks      int64      `json:"clicks"`
	AvgPosition float64    `json:"avg_position"`
	AvgCTR      *float64   `json:"avg_ctr,omitempty"`
}

// DeltaStatus classifies a keyword in a two-period comparison
type DeltaStatus string

const (
	DeltaStatusBoth    DeltaStatus = "both"
	DeltaStatusNew     DeltaStatus = "new"
	DeltaStatusDropped DeltaStatus = "dropped"
)

// KeywordDelta is one keyword of a comparison. Current* and Baseline* are nil
// when the keyword is absent from that period; Delta* are only set for
// keywords present in both.
type KeywordDelta struct {
	Keyword             string      `json:"keyword"`
	Status              DeltaStatus `json:"status"`
	CurrentPosition     *float64    `json:"current_position,omitempty"`
	BaselinePosition    *float64    `json:"baseline_position,omitempty"`
	CurrentImpressions  *int64      `json:"current_impressions,omitempty"`
	BaselineImpressions *int64      `json:"baseline_impressions,omitempty"`
	CurrentClicks       *int64      `json:"current_clicks,omitempty"`
	BaselineClicks      *int64      `json:"baseline_clicks,omitempty"`
	DeltaImpressions    *int64      `json:"delta_impressions,omitempty"`
	DeltaClicks         *int64      `json:"delta_clicks,omitempty"`

	// DeltaPosition is baseline minus current: positive means the keyword
	// moved up the rankings.
	DeltaPosition *float64 `json:"delta_position,omitempty"`
}

// ComparisonResult is the keyword-level difference between two snapshot dates
type ComparisonResult struct {
	Current  time.Time      `json:"current"`
	Baseline time.Time      `json:"baseline"`
	Rows     []KeywordDelta `json:"rows"`
	New      []string       `json:"new"`
	Dropped  []string       `json:"dropped"`
	Common   int            `json:"common"`
}

// Movers holds the biggest rank changes of a comparison
type Movers struct {
	Improved []KeywordDelta `json:"improved"`
	Declined []KeywordDelta `json:"declined"`
}
