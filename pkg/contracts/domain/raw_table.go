package domain

import "strings"

// RawTable is one decoded worksheet before any interpretation. The first
// worksheet row becomes Headers; every following row is a RawRecord.
type RawTable struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the index of header, or -1.
func (t *RawTable) ColumnIndex(header string) int {
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed value of row at column index col. Short rows are
// padded with empty values.
func (t *RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Record returns row i as header -> value.
func (t *RawTable) Record(i int) map[string]string {
	rec := make(map[string]string, len(t.Headers))
	for col, h := range t.Headers {
		rec[h] = t.Cell(i, col)
	}
	return rec
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	return len(t.Rows)
}
