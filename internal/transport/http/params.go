package http

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"rankpulse/internal/dataprocessing"
	apierrors "rankpulse/internal/errors"
	"rankpulse/internal/services"
	"rankpulse/pkg/contracts/domain"
)

// snapshotParams are the query parameters of the snapshot endpoints
type snapshotParams struct {
	File      string   `json:"file" validate:"omitempty,filename"`
	Positions []string `json:"positions" validate:"dive,oneof=1-3 4-6 7-10"`
	Search    string   `json:"q" validate:"max=200"`
	MinCTR    float64  `json:"min_ctr" validate:"gte=0,lte=100"`
	Sort      string   `json:"sort" validate:"omitempty,oneof=impressions clicks position ctr keyword"`
	Order     string   `json:"order" validate:"omitempty,oneof=asc desc"`
	Limit     int      `json:"limit" validate:"omitempty,min=10,max=100"`
}

// compareParams are the query parameters of the comparison endpoints
type compareParams struct {
	Current  string `json:"current" validate:"omitempty,isodate"`
	Baseline string `json:"baseline" validate:"omitempty,isodate"`
	Limit    int    `json:"limit" validate:"omitempty,min=1,max=100"`
}

// parseSnapshotParams reads snapshot parameters from a query string.
// positions may be repeated or comma separated.
func parseSnapshotParams(q url.Values) (snapshotParams, error) {
	p := snapshotParams{
		File:   strings.TrimSpace(q.Get("file")),
		Search: q.Get("q"),
		Sort:   strings.ToLower(strings.TrimSpace(q.Get("sort"))),
		Order:  strings.ToLower(strings.TrimSpace(q.Get("order"))),
	}

	for _, v := range q["positions"] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				p.Positions = append(p.Positions, part)
			}
		}
	}

	if v := q.Get("min_ctr"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, apierrors.ErrValidation("min_ctr", "min_ctr must be a number")
		}
		p.MinCTR = f
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, apierrors.ErrValidation("limit", "limit must be an integer")
		}
		p.Limit = n
	}

	return p, nil
}

// filter converts validated parameters to a view filter. Without an explicit
// order, position and keyword sort ascending and metrics sort descending.
func (p snapshotParams) filter() domain.ViewFilter {
	f := domain.ViewFilter{
		Search: p.Search,
		MinCTR: p.MinCTR,
		Limit:  p.Limit,
	}

	for _, pos := range p.Positions {
		if b, err := dataprocessing.ParsePositionBucket(pos); err == nil {
			f.Buckets = append(f.Buckets, b)
		}
	}

	f.SortBy, _ = dataprocessing.ParseSortField(p.Sort)
	switch p.Order {
	case "asc":
		f.Ascending = true
	case "":
		f.Ascending = f.SortBy == domain.SortByPosition || f.SortBy == domain.SortByKeyword
	}
	return f
}

// query converts validated parameters to a snapshot query
func (p snapshotParams) query() services.SnapshotQuery {
	return services.SnapshotQuery{File: p.File, Filter: p.filter()}
}

// parseCompareParams reads comparison parameters from a query string
func parseCompareParams(q url.Values) (compareParams, error) {
	p := compareParams{
		Current:  strings.TrimSpace(q.Get("current")),
		Baseline: strings.TrimSpace(q.Get("baseline")),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, apierrors.ErrValidation("limit", "limit must be an integer")
		}
		p.Limit = n
	}
	return p, nil
}

// query converts validated parameters to a comparison query
func (p compareParams) query() services.ComparisonQuery {
	return services.ComparisonQuery{
		Current:  parseDate(p.Current),
		Baseline: parseDate(p.Baseline),
		Limit:    p.Limit,
	}
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &d
}
