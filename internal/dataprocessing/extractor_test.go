package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rankpulse/pkg/contracts/domain"
)

func TestExtractSnapshotDerivesCTR(t *testing.T) {
	headers := []string{"Query", "Position", "Impressions", "Clicks"}
	raw := rawTable(headers,
		[]string{"buy shoes", "3", "500", "50"},
		[]string{"cheap shoes", "12", "1000", "5"},
	)

	snap, err := ExtractSnapshot(raw, mustResolve(t, headers), nil)
	require.NoError(t, err)

	require.Len(t, snap.Rows, 1)
	row := snap.Rows[0]
	assert.Equal(t, "buy shoes", row.Keyword)
	assert.Equal(t, 3.0, row.Position)
	assert.Equal(t, int64(500), row.Impressions)
	assert.Equal(t, int64(50), row.Clicks)
	assert.Equal(t, 10.0, row.CTR)
	assert.Nil(t, row.Date)
	assert.Equal(t, "test.xlsx", row.Source)

	assert.True(t, snap.Columns.HasCTR)
	assert.True(t, snap.Columns.CTRDerived)
	assert.False(t, snap.Columns.CTRRescaled)
}

func TestExtractSnapshotPositionInvariant(t *testing.T) {
	headers := []string{"Keyword", "Position"}
	raw := rawTable(headers,
		[]string{"zero", "0"},
		[]string{"first", "1"},
		[]string{"fraction", "0.99"},
		[]string{"avg", "5.5"},
		[]string{"tenth", "10"},
		[]string{"just out", "10.01"},
		[]string{"far", "47"},
		[]string{"missing", ""},
		[]string{"text", "n/a"},
		[]string{"", "2"},
	)

	snap, err := ExtractSnapshot(raw, mustResolve(t, headers), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "avg", "tenth"}, keywords(snap.Rows))
	for _, row := range snap.Rows {
		assert.GreaterOrEqual(t, row.Position, domain.MinPosition)
		assert.LessOrEqual(t, row.Position, domain.MaxPosition)
	}
	assert.False(t, snap.Columns.HasImpressions)
	assert.False(t, snap.Columns.HasCTR)
}

func TestExtractSnapshotCTRRescale(t *testing.T) {
	headers := []string{"Query", "Position", "CTR"}

	tests := []struct {
		name        string
		ctrs        []string
		want        []float64
		rescaled    bool
		percentText bool
	}{
		{name: "fractions become percentages", ctrs: []string{"0.1", "0.025", "1"}, want: []float64{10, 2.5, 100}, rescaled: true},
		{name: "percentages untouched", ctrs: []string{"10", "2.5", "0.5"}, want: []float64{10, 2.5, 0.5}},
		{name: "percent strings parsed", ctrs: []string{"10%", "2.5%", "0.5%"}, want: []float64{10, 2.5, 0.5}, percentText: true},
		{name: "small percent strings not rescaled", ctrs: []string{"0.5%", "0.8%"}, want: []float64{0.5, 0.8}, percentText: true},
		{name: "percent sign on some cells", ctrs: []string{"0.25", " 0.4 %", ""}, want: []float64{0.25, 0.4, 0}, percentText: true},
		{name: "all zero stays zero", ctrs: []string{"0", "0", "0"}, want: []float64{0, 0, 0}, rescaled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows [][]string
			for i, ctr := range tt.ctrs {
				rows = append(rows, []string{string(rune('a' + i)), "2", ctr})
			}
			snap, err := ExtractSnapshot(rawTable(headers, rows...), mustResolve(t, headers), nil)
			require.NoError(t, err)

			var got []float64
			for _, r := range snap.Rows {
				got = append(got, r.CTR)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rescaled, snap.Columns.CTRRescaled)
			assert.Equal(t, tt.percentText, snap.Columns.CTRPercentText)
		})
	}
}

func TestRescaleCTRIdempotent(t *testing.T) {
	rows := []domain.KeywordRow{{CTR: 0.12}, {CTR: 0.5}, {CTR: 0.031}}

	require.True(t, RescaleCTR(rows))
	once := []float64{rows[0].CTR, rows[1].CTR, rows[2].CTR}
	assert.Equal(t, []float64{12, 50, 3.1}, once)

	assert.False(t, RescaleCTR(rows))
	assert.Equal(t, once, []float64{rows[0].CTR, rows[1].CTR, rows[2].CTR})

	// The degenerate all-zero column is "rescaled" every time but never changes
	zeros := []domain.KeywordRow{{CTR: 0}, {CTR: 0}}
	assert.True(t, RescaleCTR(zeros))
	assert.True(t, RescaleCTR(zeros))
	assert.Equal(t, 0.0, zeros[0].CTR)

	assert.False(t, RescaleCTR(nil))
}

func TestDeriveCTR(t *testing.T) {
	rows := []domain.KeywordRow{
		{Impressions: 1000, Clicks: 5},
		{Impressions: 3, Clicks: 1},
		{Impressions: 0, Clicks: 4},
	}
	DeriveCTR(rows)
	assert.Equal(t, 0.5, rows[0].CTR)
	assert.Equal(t, 33.33, rows[1].CTR)
	assert.Equal(t, 0.0, rows[2].CTR)
}

func TestExtractSnapshotClicksProxy(t *testing.T) {
	headers := []string{"Keyword", "Position", "Clicks"}
	raw := rawTable(headers, []string{"shoes", "2", "40"})

	snap, err := ExtractSnapshot(raw, mustResolve(t, headers), nil)
	require.NoError(t, err)

	require.Len(t, snap.Rows, 1)
	assert.Equal(t, int64(40), snap.Rows[0].Impressions)
	assert.Equal(t, int64(40), snap.Rows[0].Clicks)
	assert.True(t, snap.Columns.ImpressionsFromClicks)
	// CTR is not derived from a proxy volume
	assert.False(t, snap.Columns.HasCTR)
	assert.Equal(t, 0.0, snap.Rows[0].CTR)
}

func TestExtractSnapshotPassThroughColumns(t *testing.T) {
	headers := []string{"Query", "Position", "Country", "Sessions", "Notes", "Blank"}
	raw := rawTable(headers,
		[]string{"shoes", "2", "us", "1,200", "", ""},
		[]string{"boots", "3", "uk", "", "check", ""},
		[]string{"socks", "30", "de", "7", "", ""},
	)

	snap, err := ExtractSnapshot(raw, mustResolve(t, headers), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Sessions"}, snap.ExtraColumns)
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, map[string]float64{"Sessions": 1200}, snap.Rows[0].Extra)
	assert.Nil(t, snap.Rows[1].Extra)
}

func TestExtractSnapshotStampsDate(t *testing.T) {
	headers := []string{"Query", "Position"}
	raw := rawTable(headers, []string{"a", "1"}, []string{"b", "2"})
	date := dayPtr("2025-11-14")

	snap, err := ExtractSnapshot(raw, mustResolve(t, headers), date)
	require.NoError(t, err)

	assert.Equal(t, date, snap.Date)
	for _, r := range snap.Rows {
		require.NotNil(t, r.Date)
		assert.True(t, r.Date.Equal(*date))
	}
}

func TestExtractSnapshotEmpty(t *testing.T) {
	headers := []string{"Query", "Position"}
	raw := rawTable(headers, []string{"far", "11"}, []string{"farther", "40"})

	_, err := ExtractSnapshot(raw, mustResolve(t, headers), nil)

	var emptyErr *EmptySnapshotError
	require.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, 2, emptyErr.Rows)
	assert.Equal(t, "test.xlsx", emptyErr.Source)
	assert.True(t, IsRecoverable(err))
}

func TestExtractSnapshotUnknownMappedColumn(t *testing.T) {
	raw := rawTable([]string{"Query", "Position"}, []string{"a", "1"})
	mapping := domain.ColumnMapping{Columns: map[domain.CanonicalField]string{
		domain.FieldKeyword:  "Query",
		domain.FieldPosition: "Rank",
	}}

	_, err := ExtractSnapshot(raw, mapping, nil)

	var schemaErr *SchemaResolutionError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []domain.CanonicalField{domain.FieldPosition}, schemaErr.Missing)
}
