package domain

// Opportunities holds the business-relevant subsets of one snapshot. A nil
// slice (JSON null) means the subset could not be computed because a column
// is missing; an empty slice means nothing qualified.
type Opportunities struct {
	HighImpressionsLowClicks []KeywordRow `json:"high_impressions_low_clicks"`
	QuickWins                []KeywordRow `json:"quick_wins"`
	HighCTR                  []KeywordRow `json:"high_ctr"`

	Thresholds OpportunityThresholds `json:"thresholds"`
}

// OpportunityThresholds are the empirical quantiles used for one run
type OpportunityThresholds struct {
	ImpressionsP75 *float64 `json:"impressions_p75,omitempty"`
	ClicksP50      *float64 `json:"clicks_p50,omitempty"`
	CTRP75         *float64 `json:"ctr_p75,omitempty"`
}

// Summary holds the headline metrics of a set of keyword rows
type Summary struct {
	TotalKeywords    int     `json:"total_keywords"`
	TotalImpressions int64   `json:"total_impressions"`
	TotalClicks      int64   `json:"total_clicks"`
	AvgPosition      float64 `json:"avg_position"`
	AvgCTR           float64 `json:"avg_ctr"`
}

// PositionCount is one bar of the position distribution
type PositionCount struct {
	Position int `json:"position"`
	Count    int `json:"count"`
}

// PositionBucket is a coarse rank range used to filter views
type PositionBucket string

const (
	BucketTop3   PositionBucket = "1-3"
	BucketMiddle PositionBucket = "4-6"
	BucketBottom PositionBucket = "7-10"
)

// Contains reports whether position falls in the bucket. Buckets are
// half-open so fractional average positions land in exactly one bucket:
// [1,4), [4,7), [7,10].
func (b PositionBucket) Contains(position float64) bool {
	switch b {
	case BucketTop3:
		return position >= 1 && position < 4
	case BucketMiddle:
		return position >= 4 && position < 7
	case BucketBottom:
		return position >= 7 && position <= MaxPosition
	}
	return false
}

// SortField names a KeywordRow column that views can be ordered by
type SortField string

const (
	SortByImpressions SortField = "impressions"
	SortByClicks      SortField = "clicks"
	SortByPosition    SortField = "position"
	SortByCTR         SortField = "ctr"
	SortByKeyword     SortField = "keyword"
)

// ViewFilter is the set of user-chosen view parameters. The zero value keeps
// every row in impressions-descending order.
type ViewFilter struct {
	Buckets   []PositionBucket `json:"buckets,omitempty"`
	Search    string           `json:"search,omitempty"`
	MinCTR    float64          `json:"min_ctr,omitempty"`
	SortBy    SortField        `json:"sort_by,omitempty"`
	Ascending bool             `json:"ascending,omitempty"`
	Limit     int              `json:"limit,omitempty"`
}
