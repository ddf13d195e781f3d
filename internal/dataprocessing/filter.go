package dataprocessing

import (
	"fmt"
	"sort"
	"strings"

	"rankpulse/pkg/contracts/domain"
)

// ParsePositionBucket validates a bucket label such as "4-6"
func ParsePositionBucket(s string) (domain.PositionBucket, error) {
	switch b := domain.PositionBucket(strings.TrimSpace(s)); b {
	case domain.BucketTop3, domain.BucketMiddle, domain.BucketBottom:
		return b, nil
	}
	return "", fmt.Errorf("unknown position range %q (want 1-3, 4-6 or 7-10)", s)
}

// ParseSortField validates a sort field name
func ParseSortField(s string) (domain.SortField, error) {
	switch f := domain.SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return domain.SortByImpressions, nil
	case domain.SortByImpressions, domain.SortByClicks, domain.SortByPosition, domain.SortByCTR, domain.SortByKeyword:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

// ApplyFilter returns the rows matching f in the requested order. Rows are
// kept when they fall in any selected position bucket, contain the search
// text (case-insensitive) and reach the minimum CTR. The input is not
// modified.
func ApplyFilter(rows []domain.KeywordRow, f domain.ViewFilter) []domain.KeywordRow {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]domain.KeywordRow, 0, len(rows))
	for _, r := range rows {
		if len(f.Buckets) > 0 && !inAnyBucket(r.Position, f.Buckets) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Keyword), search) {
			continue
		}
		if f.MinCTR > 0 && r.CTR < f.MinCTR {
			continue
		}
		out = append(out, r)
	}

	sortRows(out, f.SortBy, f.Ascending)

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func inAnyBucket(position float64, buckets []domain.PositionBucket) bool {
	for _, b := range buckets {
		if b.Contains(position) {
			return true
		}
	}
	return false
}

// sortRows orders rows in place by field. Ties keep their input order.
func sortRows(rows []domain.KeywordRow, field domain.SortField, ascending bool) {
	var less func(a, b domain.KeywordRow) bool
	switch field {
	case domain.SortByClicks:
		less = func(a, b domain.KeywordRow) bool { return a.Clicks < b.Clicks }
	case domain.SortByPosition:
		less = func(a, b domain.KeywordRow) bool { return a.Position < b.Position }
	case domain.SortByCTR:
		less = func(a, b domain.KeywordRow) bool { return a.CTR < b.CTR }
	case domain.SortByKeyword:
		less = func(a, b domain.KeywordRow) bool { return a.Keyword < b.Keyword }
	default:
		less = func(a, b domain.KeywordRow) bool { return a.Impressions < b.Impressions }
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if ascending {
			return less(rows[i], rows[j])
		}
		return less(rows[j], rows[i])
	})
}
