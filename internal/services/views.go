package services

import (
	"time"

	"rankpulse/pkg/contracts/domain"
)

// TopTableSize is the length of the top keywords table of a snapshot view
const TopTableSize = 10

// FileEntry is one spreadsheet available in the data directory
type FileEntry struct {
	Name    string     `json:"name"`
	Size    int64      `json:"size"`
	ModTime time.Time  `json:"mod_time"`
	Date    *time.Time `json:"date,omitempty"`
}

// SnapshotQuery selects a file from the data directory and how to view it.
// An empty File selects the most recent spreadsheet.
type SnapshotQuery struct {
	File   string
	Filter domain.ViewFilter
}

// SnapshotView is everything the dashboard shows for one snapshot. Summary
// and Distribution cover every top-10 row; Keywords holds the filtered,
// sorted and truncated table and Matched counts the rows the filter kept
// before truncation.
type SnapshotView struct {
	Source       string                 `json:"source"`
	Date         *time.Time             `json:"date,omitempty"`
	Columns      domain.SnapshotColumns `json:"columns"`
	ExtraColumns []string               `json:"extra_columns,omitempty"`
	Summary      domain.Summary         `json:"summary"`
	Distribution []domain.PositionCount `json:"distribution"`
	TopKeywords  []domain.KeywordRow    `json:"top_keywords"`
	Keywords     []domain.KeywordRow    `json:"keywords"`
	Matched      int                    `json:"matched"`
	Filter       domain.ViewFilter      `json:"filter"`
}

// OpportunitiesView holds the opportunity subsets of one snapshot
type OpportunitiesView struct {
	Source        string               `json:"source"`
	Date          *time.Time           `json:"date,omitempty"`
	Opportunities domain.Opportunities `json:"opportunities"`
}

// HistoryView is the longitudinal overview of the data directory
type HistoryView struct {
	Trends    []domain.TrendPoint   `json:"trends"`
	Dates     []time.Time           `json:"available_dates"`
	Snapshots []domain.SnapshotInfo `json:"snapshots"`
	Skipped   []domain.SkippedFile  `json:"skipped"`
}

// ComparisonQuery selects the two periods to compare. Nil dates default to
// the latest and second latest available dates. Limit bounds the movers
// lists; zero uses the configured default.
type ComparisonQuery struct {
	Current  *time.Time
	Baseline *time.Time
	Limit    int
}

// ComparisonView is a period-over-period comparison. When Applicable is
// false, Reason explains why and Comparison and Movers are nil.
type ComparisonView struct {
	Applicable bool                     `json:"applicable"`
	Reason     string                   `json:"reason,omitempty"`
	Dates      []time.Time              `json:"available_dates"`
	Comparison *domain.ComparisonResult `json:"comparison,omitempty"`
	Movers     *domain.Movers           `json:"movers,omitempty"`
	Skipped    []domain.SkippedFile     `json:"skipped,omitempty"`
}
