package exporter

import (
	"fmt"
	"io"

	"rankpulse/internal/dataprocessing"
	"rankpulse/pkg/contracts/domain"
)

// KeywordHeaders are the leading columns of a keyword export. Pass-through
// columns follow in snapshot order.
var KeywordHeaders = []string{"Keyword", "Position", "Impressions", "Clicks", "CTR"}

// SnapshotFileName returns the download name for a snapshot export, e.g.
// top_keywords_gsc_2024-01-08.csv for gsc_2024-01-08.xlsx
func SnapshotFileName(source string) string {
	return fmt.Sprintf("top_keywords_%s.csv", dataprocessing.FileStem(source))
}

// KeywordRecords converts rows to CSV records. extra lists the pass-through
// columns to append; a row without a value for one gets an empty cell.
func KeywordRecords(rows []domain.KeywordRow, extra []string) (headers []string, records [][]string) {
	headers = make([]string, 0, len(KeywordHeaders)+len(extra))
	headers = append(headers, KeywordHeaders...)
	headers = append(headers, extra...)

	records = make([][]string, 0, len(rows))
	for _, r := range rows {
		record := []string{
			r.Keyword,
			formatFloat(r.Position),
			formatInt(r.Impressions),
			formatInt(r.Clicks),
			formatFloat(r.CTR),
		}
		for _, col := range extra {
			if v, ok := r.Extra[col]; ok {
				record = append(record, formatFloat(v))
			} else {
				record = append(record, "")
			}
		}
		records = append(records, record)
	}
	return headers, records
}

// WriteKeywords writes rows as CSV to dst
func WriteKeywords(dst io.Writer, rows []domain.KeywordRow, extra []string) error {
	headers, records := KeywordRecords(rows, extra)
	return Encode(dst, WriteOptions{Headers: headers, Records: records, BOMPrefix: true})
}
