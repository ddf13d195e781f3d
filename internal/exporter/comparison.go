package exporter

import (
	"fmt"
	"io"
	"time"

	"rankpulse/pkg/contracts/domain"
)

// ComparisonHeaders are the columns of a comparison export
var ComparisonHeaders = []string{
	"Keyword", "Status",
	"Current Position", "Baseline Position", "Position Change",
	"Current Impressions", "Baseline Impressions", "Impressions Change",
	"Current Clicks", "Baseline Clicks", "Clicks Change",
}

// ComparisonFileName returns the download name for a comparison export
func ComparisonFileName(current, baseline time.Time) string {
	return fmt.Sprintf("keyword_comparison_%s_vs_%s.csv",
		current.Format(time.DateOnly), baseline.Format(time.DateOnly))
}

// ComparisonRecords converts a comparison to CSV records. Values missing for
// new or dropped keywords are empty cells.
func ComparisonRecords(result *domain.ComparisonResult) [][]string {
	if result == nil {
		return nil
	}

	records := make([][]string, 0, len(result.Rows))
	for _, d := range result.Rows {
		records = append(records, []string{
			d.Keyword,
			string(d.Status),
			formatOptionalFloat(d.CurrentPosition),
			formatOptionalFloat(d.BaselinePosition),
			formatOptionalFloat(d.DeltaPosition),
			formatOptionalInt(d.CurrentImpressions),
			formatOptionalInt(d.BaselineImpressions),
			formatOptionalInt(d.DeltaImpressions),
			formatOptionalInt(d.CurrentClicks),
			formatOptionalInt(d.BaselineClicks),
			formatOptionalInt(d.DeltaClicks),
		})
	}
	return records
}

// WriteComparison writes a comparison as CSV to dst
func WriteComparison(dst io.Writer, result *domain.ComparisonResult) error {
	return Encode(dst, WriteOptions{
		Headers:   ComparisonHeaders,
		Records:   ComparisonRecords(result),
		BOMPrefix: true,
	})
}

// TrendHeaders are the columns of a trend export
var TrendHeaders = []string{"Date", "Source", "Keywords", "Impressions", "Clicks", "Avg Position", "Avg CTR"}

// TrendRecords converts trend points to CSV records
func TrendRecords(points []domain.TrendPoint) [][]string {
	records := make([][]string, 0, len(points))
	for _, p := range points {
		records = append(records, []string{
			formatDate(p.Date),
			p.Source,
			formatInt(int64(p.Keywords)),
			formatInt(p.Impressions),
			formatInt(p.Clicks),
			formatFloat(p.AvgPosition),
			formatOptionalFloat(p.AvgCTR),
		})
	}
	return records
}

// WriteTrends writes trend points as CSV to dst
func WriteTrends(dst io.Writer, points []domain.TrendPoint) error {
	return Encode(dst, WriteOptions{Headers: TrendHeaders, Records: TrendRecords(points), BOMPrefix: true})
}
