package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SpreadsheetExtensions are the file extensions accepted as keyword exports
var SpreadsheetExtensions = []string{".xlsx", ".xls"}

// ErrFileNotFound is returned when a named spreadsheet is not in the directory
var ErrFileNotFound = errors.New("file not found")

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// resolve joins a relative dir onto the base path
func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindSpreadsheets lists the spreadsheet files directly inside dir, sorted by
// file name. Sub-directories and Office lock files are ignored.
func (d *Discovery) FindSpreadsheets(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsSpreadsheet(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// FindSpreadsheet looks up one spreadsheet by its base name inside dir.
// Names containing path separators are rejected.
func (d *Discovery) FindSpreadsheet(dir, name string) (FileInfo, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == ".." {
		return FileInfo{}, fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}

	files, err := d.FindSpreadsheets(dir)
	if err != nil {
		return FileInfo{}, err
	}

	for _, f := range files {
		if f.Name == name {
			return f, nil
		}
	}
	return FileInfo{}, fmt.Errorf("%w: %q", ErrFileNotFound, name)
}

// IsSpreadsheet reports whether name has an accepted spreadsheet extension.
// Office lock files ("~$report.xlsx") are rejected.
func IsSpreadsheet(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range SpreadsheetExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// GetLatestFile returns the last file in name order, which for dated
// exports is the most recent one.
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.Name > latest.Name {
			latest = file
		}
	}

	return latest, true
}
