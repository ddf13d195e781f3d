package dataprocessing

import (
	"math"

	"rankpulse/pkg/contracts/domain"
)

// Summarize computes the headline metrics of rows
func Summarize(rows []domain.KeywordRow) domain.Summary {
	s := domain.Summary{TotalKeywords: len(rows)}
	if len(rows) == 0 {
		return s
	}

	var posSum, ctrSum float64
	for _, r := range rows {
		s.TotalImpressions += r.Impressions
		s.TotalClicks += r.Clicks
		posSum += r.Position
		ctrSum += r.CTR
	}
	s.AvgPosition = posSum / float64(len(rows))
	s.AvgCTR = ctrSum / float64(len(rows))
	return s
}

// PositionDistribution counts rows per rounded position, one entry for every
// position from 1 to 10 including empty ones.
func PositionDistribution(rows []domain.KeywordRow) []domain.PositionCount {
	counts := make([]domain.PositionCount, int(domain.MaxPosition))
	for i := range counts {
		counts[i].Position = i + 1
	}
	for _, r := range rows {
		p := int(math.Round(r.Position))
		if p >= 1 && p <= len(counts) {
			counts[p-1].Count++
		}
	}
	return counts
}

// TopKeywords returns the n rows with the most impressions
func TopKeywords(rows []domain.KeywordRow, n int) []domain.KeywordRow {
	return ApplyFilter(rows, domain.ViewFilter{SortBy: domain.SortByImpressions, Limit: n})
}
