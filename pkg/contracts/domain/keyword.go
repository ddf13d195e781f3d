package domain

import (
	"time"
)

// CanonicalField names a column of the canonical keyword schema
type CanonicalField string

const (
	FieldKeyword     CanonicalField = "Keyword"
	FieldPosition    CanonicalField = "Position"
	FieldImpressions CanonicalField = "Impressions"
	FieldClicks      CanonicalField = "Clicks"
	FieldCTR         CanonicalField = "CTR"
	FieldDate        CanonicalField = "Date"
)

// Position range kept by the extractor. Lower is better.
const (
	MinPosition = 1.0
	MaxPosition = 10.0
)

// ColumnMapping maps canonical fields to the header actually present in one
// raw dataset. A field is absent from Columns when no header matched it.
type ColumnMapping struct {
	Columns map[CanonicalField]string `json:"columns"`

	// ImpressionsFromClicks is set when no impressions header exists and the
	// clicks header stands in as the volume signal.
	ImpressionsFromClicks bool `json:"impressions_from_clicks,omitempty"`
}

// Column returns the original header mapped to field.
func (m ColumnMapping) Column(field CanonicalField) (string, bool) {
	col, ok := m.Columns[field]
	return col, ok
}

// Has reports whether field is mapped.
func (m ColumnMapping) Has(field CanonicalField) bool {
	_, ok := m.Columns[field]
	return ok
}

// IsMapped reports whether header is claimed by any canonical field.
func (m ColumnMapping) IsMapped(header string) bool {
	for _, col := range m.Columns {
		if col == header {
			return true
		}
	}
	return false
}

// KeywordRow is one query's metrics after resolution.
type KeywordRow struct {
	Keyword     string             `json:"keyword"`
	Position    float64            `json:"position"`
	Impressions int64              `json:"impressions"`
	Clicks      int64              `json:"clicks"`
	CTR         float64            `json:"ctr"`
	Date        *time.Time         `json:"date,omitempty"`
	Source      string             `json:"source,omitempty"`
	Extra       map[string]float64 `json:"extra,omitempty"`
}

// SnapshotColumns records which canonical metrics a snapshot carries and how
// they were obtained.
type SnapshotColumns struct {
	HasImpressions        bool `json:"has_impressions"`
	HasClicks             bool `json:"has_clicks"`
	HasCTR                bool `json:"has_ctr"`
	ImpressionsFromClicks bool `json:"impressions_from_clicks,omitempty"`
	CTRDerived            bool `json:"ctr_derived,omitempty"`
	CTRRescaled           bool `json:"ctr_rescaled,omitempty"`
	CTRPercentText        bool `json:"ctr_percent_text,omitempty"`
}

// Snapshot is the set of keyword rows extracted from one source file.
// A nil Date means the date is unknown.
type Snapshot struct {
	Source       string          `json:"source"`
	Date         *time.Time      `json:"date,omitempty"`
	Mapping      ColumnMapping   `json:"mapping"`
	Columns      SnapshotColumns `json:"columns"`
	ExtraColumns []string        `json:"extra_columns,omitempty"`
	Rows         []KeywordRow    `json:"rows"`
}

// Len returns the number of keyword rows.
func (s *Snapshot) Len() int {
	return len(s.Rows)
}
