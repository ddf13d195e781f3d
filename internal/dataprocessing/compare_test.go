package dataprocessing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rankpulse/pkg/contracts/domain"
)

func comparisonTable() *domain.LongitudinalTable {
	d1, d2 := dayPtr("2024-01-08"), dayPtr("2024-01-01")
	return &domain.LongitudinalTable{Rows: []domain.KeywordRow{
		{Keyword: "shoes", Position: 2, Impressions: 900, Clicks: 90, Date: d1},
		{Keyword: "boots", Position: 7, Impressions: 100, Clicks: 3, Date: d1},
		{Keyword: "new arrivals", Position: 4, Impressions: 40, Clicks: 1, Date: d1},
		{Keyword: "shoes", Position: 9, Impressions: 1, Clicks: 0, Date: d1},
		{Keyword: "shoes", Position: 5, Impressions: 600, Clicks: 30, Date: d2},
		{Keyword: "boots", Position: 4, Impressions: 120, Clicks: 6, Date: d2},
		{Keyword: "sale", Position: 8, Impressions: 70, Clicks: 2, Date: d2},
	}}
}

func TestCompare(t *testing.T) {
	result, err := Compare(comparisonTable(), day("2024-01-08"), day("2024-01-01"))
	require.NoError(t, err)

	assert.Equal(t, []string{"boots", "new arrivals", "sale", "shoes"}, func() []string {
		var out []string
		for _, r := range result.Rows {
			out = append(out, r.Keyword)
		}
		return out
	}())
	assert.Equal(t, []string{"new arrivals"}, result.New)
	assert.Equal(t, []string{"sale"}, result.Dropped)
	assert.Equal(t, 2, result.Common)

	shoes := result.Rows[3]
	assert.Equal(t, domain.DeltaStatusBoth, shoes.Status)
	// First occurrence wins: position 2, not the duplicate at 9
	require.NotNil(t, shoes.DeltaPosition)
	assert.Equal(t, 3.0, *shoes.DeltaPosition)
	assert.Equal(t, int64(300), *shoes.DeltaImpressions)
	assert.Equal(t, int64(60), *shoes.DeltaClicks)

	boots := result.Rows[0]
	assert.Equal(t, -3.0, *boots.DeltaPosition)

	added := result.Rows[1]
	assert.Equal(t, domain.DeltaStatusNew, added.Status)
	assert.Nil(t, added.BaselinePosition)
	assert.Nil(t, added.DeltaPosition)
	assert.Equal(t, 4.0, *added.CurrentPosition)

	dropped := result.Rows[2]
	assert.Equal(t, domain.DeltaStatusDropped, dropped.Status)
	assert.Nil(t, dropped.CurrentPosition)
	assert.Equal(t, int64(70), *dropped.BaselineImpressions)
}

func TestCompareImprovementScenario(t *testing.T) {
	d1, d2 := dayPtr("2024-02-01"), dayPtr("2024-01-01")
	table := &domain.LongitudinalTable{Rows: []domain.KeywordRow{
		{Keyword: "shoes", Position: 2, Date: d1},
		{Keyword: "shoes", Position: 5, Date: d2},
	}}

	result, err := Compare(table, *d1, *d2)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 3.0, *result.Rows[0].DeltaPosition)
}

func TestCompareSymmetry(t *testing.T) {
	table := comparisonTable()
	d1, d2 := day("2024-01-08"), day("2024-01-01")

	forward, err := Compare(table, d1, d2)
	require.NoError(t, err)
	backward, err := Compare(table, d2, d1)
	require.NoError(t, err)

	assert.Equal(t, forward.New, backward.Dropped)
	assert.Equal(t, forward.Dropped, backward.New)
	assert.Equal(t, forward.Common, backward.Common)
	require.Len(t, backward.Rows, len(forward.Rows))

	for i, f := range forward.Rows {
		b := backward.Rows[i]
		assert.Equal(t, f.Keyword, b.Keyword)
		if f.DeltaPosition == nil {
			assert.Nil(t, b.DeltaPosition)
			continue
		}
		assert.Equal(t, -*f.DeltaPosition, *b.DeltaPosition)
		assert.Equal(t, -*f.DeltaImpressions, *b.DeltaImpressions)
		assert.Equal(t, -*f.DeltaClicks, *b.DeltaClicks)
		assert.Equal(t, f.CurrentPosition, b.BaselinePosition)
	}
}

func TestCompareErrors(t *testing.T) {
	table := comparisonTable()

	_, err := Compare(table, day("2024-01-01"), day("2024-01-01"))
	assert.ErrorIs(t, err, ErrSameComparisonDates)

	_, err = Compare(table, day("2024-03-01"), day("2024-01-01"))
	assert.ErrorIs(t, err, ErrDateNotFound)
	assert.Contains(t, err.Error(), "2024-03-01")

	_, err = Compare(table, day("2024-01-01"), day("2023-01-01"))
	assert.True(t, errors.Is(err, ErrDateNotFound))

	_, err = Compare(nil, day("2024-01-01"), day("2023-01-01"))
	assert.ErrorIs(t, err, ErrDateNotFound)
}

func TestBiggestMovers(t *testing.T) {
	result := &domain.ComparisonResult{}
	deltas := []float64{2, -1, 0, 5, 2, -4, -1}
	for i, d := range deltas {
		result.Rows = append(result.Rows, domain.KeywordDelta{
			Keyword:       fmt.Sprintf("kw%d", i),
			Status:        domain.DeltaStatusBoth,
			DeltaPosition: &d,
		})
	}
	result.Rows = append(result.Rows, domain.KeywordDelta{Keyword: "new", Status: domain.DeltaStatusNew})

	movers := BiggestMovers(result, 0)
	assert.Equal(t, []string{"kw3", "kw0", "kw4"}, deltaKeywords(movers.Improved))
	assert.Equal(t, []string{"kw5", "kw1", "kw6"}, deltaKeywords(movers.Declined))

	limited := BiggestMovers(result, 1)
	assert.Equal(t, []string{"kw3"}, deltaKeywords(limited.Improved))
	assert.Equal(t, []string{"kw5"}, deltaKeywords(limited.Declined))

	empty := BiggestMovers(nil, 5)
	assert.Empty(t, empty.Improved)
	assert.NotNil(t, empty.Improved)
}

func TestBiggestMoversDefaultLimit(t *testing.T) {
	result := &domain.ComparisonResult{}
	for i := 0; i < 30; i++ {
		d := float64(i + 1)
		result.Rows = append(result.Rows, domain.KeywordDelta{Keyword: fmt.Sprintf("kw%02d", i), DeltaPosition: &d})
	}
	assert.Len(t, BiggestMovers(result, 0).Improved, DefaultMoversLimit)
}

func deltaKeywords(rows []domain.KeywordDelta) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Keyword
	}
	return out
}
