package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"rankpulse/internal/files"
)

// MaxUploadNameLength bounds the file name accepted with an upload
const MaxUploadNameLength = 255

// FileValidator checks the files and directories the CLI and the dashboard
// service are pointed at
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateDataDirectory checks that dir exists and is a directory. A
// directory without spreadsheets is valid; the aggregator reports that case.
func (v *FileValidator) ValidateDataDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Data directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("data directory %s does not exist", dir)
	}
	if err != nil {
		v.logger.Error("Failed to stat data directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Data path is not a directory",
			slog.String("path", dir))
		return fmt.Errorf("%s is not a directory", dir)
	}

	v.logger.Debug("Data directory validated", slog.String("directory", dir))
	return nil
}

// ValidateReportsDirectory ensures dir exists or can be created and is
// writable
func (v *FileValidator) ValidateReportsDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create reports directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create reports directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Reports directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("reports directory %s is not writable: %w", dir, err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	return nil
}

// ValidateSpreadsheet checks that path is a readable workbook file with an
// accepted extension
func (v *FileValidator) ValidateSpreadsheet(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	if !files.IsSpreadsheet(path) {
		v.logger.Error("File is not a spreadsheet",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return fmt.Errorf("file %s is not an Excel workbook (want %s)",
			path, strings.Join(files.SpreadsheetExtensions, " or "))
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	f.Close()

	v.logger.Debug("Spreadsheet validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateUploadName checks the client-supplied name of an uploaded file.
// Only the base name is kept by the caller, so directories are rejected
// rather than silently stripped.
func (v *FileValidator) ValidateUploadName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("upload has no file name")
	case len(name) > MaxUploadNameLength:
		return fmt.Errorf("file name longer than %d characters", MaxUploadNameLength)
	case strings.ContainsAny(name, `/\`) || strings.Contains(name, ".."):
		v.logger.Warn("Rejected upload name", slog.String("name", name))
		return fmt.Errorf("file name %q must not contain a path", name)
	case !files.IsSpreadsheet(name):
		return fmt.Errorf("file %q is not an Excel workbook (want %s)",
			name, strings.Join(files.SpreadsheetExtensions, " or "))
	}
	return nil
}
