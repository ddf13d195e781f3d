package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// GSCHeaders is the header row of a typical search console query export
var GSCHeaders = []interface{}{"Top queries", "Clicks", "Impressions", "CTR", "Position"}

// GSCRows prepends GSCHeaders to data rows of (query, clicks, impressions,
// ctr, position)
func GSCRows(data ...[]interface{}) [][]interface{} {
	rows := make([][]interface{}, 0, len(data)+1)
	rows = append(rows, GSCHeaders)
	return append(rows, data...)
}

// NewWorkbook builds an in-memory workbook whose first sheet holds rows
func NewWorkbook(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	return f
}

// WriteWorkbook saves rows as dir/name and returns the full path
func WriteWorkbook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, NewWorkbook(t, rows).SaveAs(path))
	return path
}

// WorkbookBytes returns rows encoded as an xlsx file
func WorkbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	buf, err := NewWorkbook(t, rows).WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}
