package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rankpulse/internal/infrastructure"
	"rankpulse/internal/shared/testutil"
	"rankpulse/pkg/contracts/domain"
)

func newTestAggregator(opts ...AggregatorOption) *Aggregator {
	opts = append([]AggregatorOption{
		WithLogger(infrastructure.DiscardLogger()),
		WithMetrics(infrastructure.NoopBusinessMetrics()),
	}, opts...)
	return NewAggregator(opts...)
}

func TestAggregatorLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "gsc_2024-02-01.xlsx", gscRows(
		[]interface{}{"shoes", 30, 900, 0.033, 5},
		[]interface{}{"boots", 10, 200, 0.05, 8},
	))
	writeWorkbook(t, dir, "gsc_2024-01-01.xlsx", gscRows(
		[]interface{}{"shoes", 20, 1000, 0.02, 2},
		[]interface{}{"sandals", 1, 50, 0.02, 15},
	))
	writeWorkbook(t, dir, "bad_schema.xlsx", [][]interface{}{{"Page", "Clicks"}, {"/", 3}})
	writeWorkbook(t, dir, "out_of_range.xlsx", gscRows([]interface{}{"far", 0, 10, 0, 44}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	table, err := newTestAggregator().LoadDirectory(context.Background(), dir)
	require.NoError(t, err)

	// Loaded in file-name order
	require.Len(t, table.Snapshots, 2)
	assert.Equal(t, "gsc_2024-01-01.xlsx", table.Snapshots[0].Source)
	assert.Equal(t, "gsc_2024-02-01.xlsx", table.Snapshots[1].Source)
	assert.True(t, day("2024-01-01").Equal(*table.Snapshots[0].Date))
	assert.Equal(t, 1, table.Snapshots[0].Rows)
	assert.True(t, table.Snapshots[0].Columns.CTRRescaled)

	assert.Equal(t, []string{"shoes", "shoes", "boots"}, keywords(table.Rows))

	require.Len(t, table.Skipped, 2)
	assert.Equal(t, "bad_schema.xlsx", table.Skipped[0].Source)
	assert.Contains(t, table.Skipped[0].Reason, "could not find Position")
	assert.Equal(t, "out_of_range.xlsx", table.Skipped[1].Source)
}

func TestAggregatorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dates := []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29"}
	for i, d := range dates {
		var rows [][]interface{}
		for k := 0; k < 6; k++ {
			rows = append(rows, []interface{}{
				fmt.Sprintf("keyword %d", k), 10 * (k + i), 100 * (k + 1), 0.01 * float64(k+1), 1 + (k+i)%12,
			})
		}
		writeWorkbook(t, dir, fmt.Sprintf("gsc_%s.xlsx", d), gscRows(rows...))
	}

	agg := newTestAggregator(WithMaxParallel(2))
	table, err := agg.LoadDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, table.Snapshots, len(dates))

	for _, d := range dates {
		name := fmt.Sprintf("gsc_%s.xlsx", d)
		single, err := agg.LoadSnapshot(context.Background(), FileSource(filepath.Join(dir, name)), nil)
		require.NoError(t, err)

		fromTable := table.RowsForDate(day(d))
		require.Len(t, fromTable, len(single.Rows))
		for i := range fromTable {
			row := fromTable[i]
			row.Date = nil
			assert.Equal(t, single.Rows[i], row)
		}
	}
}

func TestAggregatorLegacyWorkbook(t *testing.T) {
	dir := t.TempDir()
	fixture, err := os.ReadFile(filepath.Join("testdata", "gsc_2024-01-15.xls"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gsc_2024-01-15.xls"), fixture, 0644))
	writeWorkbook(t, dir, "gsc_2024-01-22.xlsx", gscRows(
		[]interface{}{"running shoes", 150, 2600, 0.058, 2.8},
	))

	table, err := newTestAggregator().LoadDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, table.Skipped)
	require.Len(t, table.Snapshots, 2)

	legacy := table.RowsForDate(day("2024-01-15"))
	assert.Equal(t, []string{"running shoes", "trail shoes"}, keywords(legacy))
	assert.Equal(t, 5.0, legacy[0].CTR)
	assert.Equal(t, int64(2400), legacy[0].Impressions)
	assert.True(t, table.Snapshots[0].Columns.CTRRescaled)
}

func TestAggregatorKeepsUnknownDatesApart(t *testing.T) {
	content := workbookBytes(t, gscRows([]interface{}{"shoes", 1, 10, 0.1, 3}))

	table, err := newTestAggregator().Aggregate(context.Background(), []SourceFile{
		UploadSource("b.xlsx", content),
		UploadSource("a.xlsx", content),
	})
	require.NoError(t, err)

	require.Len(t, table.Snapshots, 2)
	assert.Equal(t, "a.xlsx", table.Snapshots[0].Source)
	assert.Nil(t, table.Snapshots[0].Date)
	assert.Len(t, table.RowsForSource("a.xlsx"), 1)
	assert.Len(t, table.RowsForSource("b.xlsx"), 1)
}

func TestAggregatorNoData(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "bad.xlsx", [][]interface{}{{"Page"}, {"/"}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.xlsx"), []byte("nope"), 0644))

	_, err := newTestAggregator().LoadDirectory(context.Background(), dir)

	var noData *NoDataAvailableError
	require.True(t, errors.As(err, &noData))
	assert.Equal(t, dir, noData.Location)
	assert.Len(t, noData.Skipped, 2)
}

func TestAggregatorEmptyDirectory(t *testing.T) {
	_, err := newTestAggregator().LoadDirectory(context.Background(), t.TempDir())

	var noData *NoDataAvailableError
	assert.True(t, errors.As(err, &noData))
}

func TestAggregatorMissingDirectory(t *testing.T) {
	_, err := newTestAggregator().LoadDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	var noData *NoDataAvailableError
	assert.False(t, errors.As(err, &noData))
}

func TestAggregatorUnsupportedSource(t *testing.T) {
	content := workbookBytes(t, gscRows([]interface{}{"shoes", 1, 10, 0.1, 3}))

	table, err := newTestAggregator().Aggregate(context.Background(), []SourceFile{
		UploadSource("export.csv", []byte("a,b")),
		UploadSource("export.xlsx", content),
	})
	require.NoError(t, err)
	require.Len(t, table.Skipped, 1)
	assert.Equal(t, "export.csv", table.Skipped[0].Source)
}

func TestAggregatorCancelled(t *testing.T) {
	content := workbookBytes(t, gscRows([]interface{}{"shoes", 1, 10, 0.1, 3}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAggregator().Aggregate(ctx, []SourceFile{UploadSource("a.xlsx", content)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregatorSingleSnapshotErrors(t *testing.T) {
	content := workbookBytes(t, [][]interface{}{{"Query", "Clicks"}, {"shoes", 4}})

	_, err := newTestAggregator().LoadSnapshot(context.Background(), UploadSource("week.xlsx", content), nil)

	var schemaErr *SchemaResolutionError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "week.xlsx", schemaErr.Source)
	assert.Equal(t, []domain.CanonicalField{domain.FieldPosition}, schemaErr.Missing)
}

func TestAggregatorLogsSkippedFiles(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	content := workbookBytes(t, gscRows([]interface{}{"shoes", 1, 10, 0.1, 3}))

	_, err := newTestAggregator(WithLogger(logger)).Aggregate(context.Background(), []SourceFile{
		UploadSource("broken.xlsx", []byte("not a workbook")),
		UploadSource("good.xlsx", content),
	})
	require.NoError(t, err)

	testutil.AssertLogContains(t, logs, slog.LevelWarn, "Skipping file")
	testutil.AssertLogAttr(t, logs, "file", "broken.xlsx")
	testutil.AssertLogAttr(t, logs, "component", "aggregator")
}
