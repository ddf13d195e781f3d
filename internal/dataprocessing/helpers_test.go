package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rankpulse/internal/shared/testutil"
	"rankpulse/pkg/contracts/domain"
)

func writeWorkbook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()
	return testutil.WriteWorkbook(t, dir, name, rows)
}

func workbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	return testutil.WorkbookBytes(t, rows)
}

func rawTable(headers []string, rows ...[]string) *domain.RawTable {
	return &domain.RawTable{Name: "test.xlsx", Headers: headers, Rows: rows}
}

func mustResolve(t *testing.T, headers []string) domain.ColumnMapping {
	t.Helper()
	mapping, err := ResolveColumns(headers)
	require.NoError(t, err)
	return mapping
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	d := day(s)
	return &d
}

func keywords(rows []domain.KeywordRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Keyword
	}
	return out
}

func gscRows(data ...[]interface{}) [][]interface{} {
	return testutil.GSCRows(data...)
}
