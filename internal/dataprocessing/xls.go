package dataprocessing

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
)

// xlsCharset is the charset handed to the BIFF decoder for 8-bit strings
const xlsCharset = "utf-8"

// isLegacyWorkbook reports whether name is a BIFF (.xls) workbook
func isLegacyWorkbook(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xls")
}

// readXLS decodes the first worksheet of a BIFF workbook. The decoder panics
// on some malformed streams; a panic is returned as an error. Disk sources
// are read into memory because xls.Open never closes its file.
func readXLS(src SourceFile) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("malformed xls workbook: %v", r)
		}
	}()

	content := src.Content
	if src.OnDisk() {
		content, err = os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
	}
	if len(content) == 0 {
		return nil, errors.New("file is empty")
	}

	wb, err := xls.OpenReader(bytes.NewReader(content), xlsCharset)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	if wb == nil {
		return nil, errors.New("failed to open file: no Workbook stream")
	}
	if wb.NumSheets() == 0 {
		return nil, errors.New("workbook has no worksheets")
	}

	// MaxRow is the last row index. ReadAllCells spans every sheet, so the
	// row budget keeps it on the first one. A sheet of at most one row holds
	// no keyword rows.
	sheet := wb.GetSheet(0)
	if sheet == nil || sheet.MaxRow == 0 {
		return nil, nil
	}
	return wb.ReadAllCells(int(sheet.MaxRow) + 1), nil
}
