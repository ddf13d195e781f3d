package dataprocessing

import (
	"sort"
	"time"

	"rankpulse/pkg/contracts/domain"
)

// trendGroup accumulates the rows of one date, or of one unknown-date source
type trendGroup struct {
	date      *time.Time
	source    string
	positions []float64
	ctrs      []float64
	keywords  int
	impr      int64
	clicks    int64
}

// Trends aggregates the table per snapshot date. Unknown-date snapshots are
// never merged with each other: each forms its own point keyed by source.
// Points with a known date come first in ascending date order, followed by
// unknown-date points in file order. AvgCTR only averages rows whose snapshot
// carries CTR and is nil when none does.
func Trends(table *domain.LongitudinalTable) []domain.TrendPoint {
	if table == nil {
		return nil
	}

	hasCTR := make(map[string]bool, len(table.Snapshots))
	for _, s := range table.Snapshots {
		hasCTR[s.Source] = s.Columns.HasCTR
	}

	dated := make(map[time.Time]*trendGroup)
	undated := make(map[string]*trendGroup)
	var undatedOrder []string

	for _, row := range table.Rows {
		var g *trendGroup
		if row.Date != nil {
			key := *row.Date
			if g = dated[key]; g == nil {
				d := key
				g = &trendGroup{date: &d}
				dated[key] = g
			}
		} else {
			if g = undated[row.Source]; g == nil {
				g = &trendGroup{source: row.Source}
				undated[row.Source] = g
				undatedOrder = append(undatedOrder, row.Source)
			}
		}

		g.keywords++
		g.impr += row.Impressions
		g.clicks += row.Clicks
		g.positions = append(g.positions, row.Position)
		if hasCTR[row.Source] {
			g.ctrs = append(g.ctrs, row.CTR)
		}
	}

	dates := make([]time.Time, 0, len(dated))
	for d := range dated {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	points := make([]domain.TrendPoint, 0, len(dated)+len(undated))
	for _, d := range dates {
		points = append(points, dated[d].point())
	}
	for _, src := range undatedOrder {
		points = append(points, undated[src].point())
	}
	return points
}

func (g *trendGroup) point() domain.TrendPoint {
	p := domain.TrendPoint{
		Date:        g.date,
		Source:      g.source,
		Keywords:    g.keywords,
		Impressions: g.impr,
		Clicks:      g.clicks,
		AvgPosition: mean(g.positions),
	}
	if len(g.ctrs) > 0 {
		avg := mean(g.ctrs)
		p.AvgCTR = &avg
	}
	return p
}

// AvailableDates returns the distinct known snapshot dates in ascending order.
func AvailableDates(table *domain.LongitudinalTable) []time.Time {
	if table == nil {
		return nil
	}

	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, row := range table.Rows {
		if row.Date == nil || seen[*row.Date] {
			continue
		}
		seen[*row.Date] = true
		dates = append(dates, *row.Date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// DefaultPeriods returns the latest date as current and the one before it as
// baseline. ok is false when fewer than two distinct dates are known.
func DefaultPeriods(table *domain.LongitudinalTable) (current, baseline time.Time, ok bool) {
	dates := AvailableDates(table)
	if len(dates) < 2 {
		return time.Time{}, time.Time{}, false
	}
	return dates[len(dates)-1], dates[len(dates)-2], true
}
