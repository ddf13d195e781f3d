package dataprocessing

import (
	"sort"

	"rankpulse/pkg/contracts/domain"
)

// Quick-win rank range: close enough to the top to be worth pushing
const (
	QuickWinMinPosition = 4.0
	QuickWinMaxPosition = 6.0
)

// FindOpportunities selects the actionable subsets of a snapshot. Thresholds
// are empirical quantiles of the snapshot itself:
//
//   - HighImpressionsLowClicks: impressions above p75 and clicks below p50,
//     by impressions descending. Needs real impressions and clicks.
//   - QuickWins: positions 4 to 6, by impressions descending when a volume
//     column exists and in snapshot order otherwise.
//   - HighCTR: CTR above p75, by CTR descending. Needs CTR.
//
// A subset whose columns are missing is nil.
func FindOpportunities(snapshot *domain.Snapshot) domain.Opportunities {
	var opp domain.Opportunities
	if snapshot == nil {
		return opp
	}
	rows := snapshot.Rows
	cols := snapshot.Columns

	if cols.HasImpressions && cols.HasClicks && !cols.ImpressionsFromClicks {
		impr := make([]float64, len(rows))
		clicks := make([]float64, len(rows))
		for i, r := range rows {
			impr[i] = float64(r.Impressions)
			clicks[i] = float64(r.Clicks)
		}
		imprP75, okImpr := quantile(impr, 0.75)
		clicksP50, okClicks := quantile(clicks, 0.50)

		opp.HighImpressionsLowClicks = []domain.KeywordRow{}
		if okImpr && okClicks {
			opp.Thresholds.ImpressionsP75 = ptr(imprP75)
			opp.Thresholds.ClicksP50 = ptr(clicksP50)
			for _, r := range rows {
				if float64(r.Impressions) > imprP75 && float64(r.Clicks) < clicksP50 {
					opp.HighImpressionsLowClicks = append(opp.HighImpressionsLowClicks, r)
				}
			}
			sortByImpressions(opp.HighImpressionsLowClicks)
		}
	}

	opp.QuickWins = []domain.KeywordRow{}
	for _, r := range rows {
		if r.Position >= QuickWinMinPosition && r.Position <= QuickWinMaxPosition {
			opp.QuickWins = append(opp.QuickWins, r)
		}
	}
	if cols.HasImpressions {
		sortByImpressions(opp.QuickWins)
	}

	if cols.HasCTR {
		ctr := make([]float64, len(rows))
		for i, r := range rows {
			ctr[i] = r.CTR
		}
		opp.HighCTR = []domain.KeywordRow{}
		if ctrP75, ok := quantile(ctr, 0.75); ok {
			opp.Thresholds.CTRP75 = ptr(ctrP75)
			for _, r := range rows {
				if r.CTR > ctrP75 {
					opp.HighCTR = append(opp.HighCTR, r)
				}
			}
			sort.SliceStable(opp.HighCTR, func(i, j int) bool {
				return opp.HighCTR[i].CTR > opp.HighCTR[j].CTR
			})
		}
	}

	return opp
}

func sortByImpressions(rows []domain.KeywordRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Impressions > rows[j].Impressions
	})
}
