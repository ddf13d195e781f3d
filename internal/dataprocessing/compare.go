package dataprocessing

import (
	"fmt"
	"sort"
	"time"

	"rankpulse/pkg/contracts/domain"
)

// DefaultMoversLimit is the number of movers returned per direction when the
// caller does not ask for a specific count
const DefaultMoversLimit = 20

// Compare joins the keywords of two snapshot dates. Keywords present on both
// dates get deltas (DeltaPosition = baseline - current, so a positive value
// is an improvement); current-only keywords are new and baseline-only ones are
// dropped. When a date holds the same keyword more than once the first row
// wins. Rows are ordered by keyword.
func Compare(table *domain.LongitudinalTable, current, baseline time.Time) (*domain.ComparisonResult, error) {
	if current.Equal(baseline) {
		return nil, ErrSameComparisonDates
	}
	if table == nil {
		return nil, fmt.Errorf("%w: %s", ErrDateNotFound, current.Format(time.DateOnly))
	}

	curRows := table.RowsForDate(current)
	if len(curRows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDateNotFound, current.Format(time.DateOnly))
	}
	baseRows := table.RowsForDate(baseline)
	if len(baseRows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDateNotFound, baseline.Format(time.DateOnly))
	}

	cur := firstByKeyword(curRows)
	base := firstByKeyword(baseRows)

	keywords := make([]string, 0, len(cur)+len(base))
	for kw := range cur {
		keywords = append(keywords, kw)
	}
	for kw := range base {
		if _, ok := cur[kw]; !ok {
			keywords = append(keywords, kw)
		}
	}
	sort.Strings(keywords)

	result := &domain.ComparisonResult{
		Current:  current,
		Baseline: baseline,
		Rows:     make([]domain.KeywordDelta, 0, len(keywords)),
		New:      []string{},
		Dropped:  []string{},
	}

	for _, kw := range keywords {
		c, inCur := cur[kw]
		b, inBase := base[kw]

		delta := domain.KeywordDelta{Keyword: kw}
		if inCur {
			delta.CurrentPosition = ptr(c.Position)
			delta.CurrentImpressions = ptr(c.Impressions)
			delta.CurrentClicks = ptr(c.Clicks)
		}
		if inBase {
			delta.BaselinePosition = ptr(b.Position)
			delta.BaselineImpressions = ptr(b.Impressions)
			delta.BaselineClicks = ptr(b.Clicks)
		}

		switch {
		case inCur && inBase:
			delta.Status = domain.DeltaStatusBoth
			delta.DeltaImpressions = ptr(c.Impressions - b.Impressions)
			delta.DeltaClicks = ptr(c.Clicks - b.Clicks)
			delta.DeltaPosition = ptr(b.Position - c.Position)
			result.Common++
		case inCur:
			delta.Status = domain.DeltaStatusNew
			result.New = append(result.New, kw)
		default:
			delta.Status = domain.DeltaStatusDropped
			result.Dropped = append(result.Dropped, kw)
		}

		result.Rows = append(result.Rows, delta)
	}

	return result, nil
}

// BiggestMovers returns up to n keywords that improved the most (largest
// positive DeltaPosition first) and up to n that declined the most (most
// negative first). Keywords without a position change are in neither list.
// Equal deltas keep keyword order. n <= 0 means DefaultMoversLimit.
func BiggestMovers(result *domain.ComparisonResult, n int) domain.Movers {
	if n <= 0 {
		n = DefaultMoversLimit
	}

	movers := domain.Movers{
		Improved: []domain.KeywordDelta{},
		Declined: []domain.KeywordDelta{},
	}
	if result == nil {
		return movers
	}

	for _, row := range result.Rows {
		if row.DeltaPosition == nil {
			continue
		}
		switch {
		case *row.DeltaPosition > 0:
			movers.Improved = append(movers.Improved, row)
		case *row.DeltaPosition < 0:
			movers.Declined = append(movers.Declined, row)
		}
	}

	sort.SliceStable(movers.Improved, func(i, j int) bool {
		return *movers.Improved[i].DeltaPosition > *movers.Improved[j].DeltaPosition
	})
	sort.SliceStable(movers.Declined, func(i, j int) bool {
		return *movers.Declined[i].DeltaPosition < *movers.Declined[j].DeltaPosition
	})

	if len(movers.Improved) > n {
		movers.Improved = movers.Improved[:n]
	}
	if len(movers.Declined) > n {
		movers.Declined = movers.Declined[:n]
	}
	return movers
}

// firstByKeyword indexes rows by keyword, keeping the first occurrence
func firstByKeyword(rows []domain.KeywordRow) map[string]domain.KeywordRow {
	out := make(map[string]domain.KeywordRow, len(rows))
	for _, row := range rows {
		if _, seen := out[row.Keyword]; !seen {
			out[row.Keyword] = row
		}
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
