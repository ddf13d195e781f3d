package dataprocessing

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"rankpulse/pkg/contracts/domain"
)

// ParseWorkbook decodes the first worksheet of a spreadsheet into a RawTable.
// The first non-empty row is the header row. Legacy .xls workbooks go through
// the BIFF decoder, everything else through excelize. Cell values are read
// raw so percentage-formatted cells come back as fractions, not "12.5%"
// strings. Any decoding failure is returned as a *ProcessingError naming the
// file.
func ParseWorkbook(src SourceFile) (*domain.RawTable, error) {
	read := readXLSX
	if isLegacyWorkbook(src.Name) {
		read = readXLS
	}

	rows, err := read(src)
	if err != nil {
		return nil, &ProcessingError{Source: src.Name, Cause: err}
	}
	return rowsToTable(src.Name, rows), nil
}

func readXLSX(src SourceFile) ([][]string, error) {
	f, err := openWorkbook(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no worksheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func openWorkbook(src SourceFile) (*excelize.File, error) {
	if src.OnDisk() {
		f, err := excelize.OpenFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		return f, nil
	}
	if len(src.Content) == 0 {
		return nil, errors.New("file is empty")
	}
	f, err := excelize.OpenReader(bytes.NewReader(src.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// rowsToTable builds a RawTable from worksheet rows. Blank or duplicate
// headers get unique names ("Unnamed: 3", "Clicks.1") so every column stays
// addressable by name.
func rowsToTable(name string, rows [][]string) *domain.RawTable {
	table := &domain.RawTable{Name: name}

	headerRow := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			headerRow = i
			break
		}
	}
	if headerRow == -1 {
		return table
	}

	seen := make(map[string]int)
	for i, h := range rows[headerRow] {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		} else {
			seen[h] = 0
		}
		table.Headers = append(table.Headers, h)
	}

	for _, row := range rows[headerRow+1:] {
		if isBlankRow(row) {
			continue
		}
		padded := make([]string, len(table.Headers))
		copy(padded, row)
		table.Rows = append(table.Rows, padded)
	}

	return table
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseNumber parses a spreadsheet cell as a number, tolerating thousands
// separators and a trailing percent sign.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// hasPercentSign reports whether a cell was written as percentage text
func hasPercentSign(s string) bool {
	return strings.HasSuffix(strings.TrimSpace(s), "%")
}

// parseCount parses a volume cell as a non-negative integer. Unparseable or
// negative values count as zero.
func parseCount(s string) int64 {
	v, ok := parseNumber(s)
	if !ok || v < 0 {
		return 0
	}
	return int64(math.Round(v))
}

// round2 rounds to two decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
