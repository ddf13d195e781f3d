package dataprocessing

import (
	"path/filepath"
	"strings"

	"rankpulse/internal/files"
)

// SourceFile is one spreadsheet to analyse. Files found on disk carry a Path;
// uploaded files carry their Content and have no Path, which also disables
// the modification-time date fallback.
type SourceFile struct {
	Name    string
	Path    string
	Content []byte
}

// FileSource returns a SourceFile for a spreadsheet on disk.
func FileSource(path string) SourceFile {
	return SourceFile{Name: filepath.Base(path), Path: path}
}

// UploadSource returns a SourceFile for an in-memory upload.
func UploadSource(name string, content []byte) SourceFile {
	return SourceFile{Name: filepath.Base(name), Content: content}
}

// SourcesFrom converts discovered files to on-disk sources.
func SourcesFrom(found []files.FileInfo) []SourceFile {
	sources := make([]SourceFile, len(found))
	for i, f := range found {
		sources[i] = SourceFile{Name: f.Name, Path: f.Path}
	}
	return sources
}

// OnDisk reports whether the source can be stat'ed on the local filesystem.
func (s SourceFile) OnDisk() bool {
	return s.Path != ""
}

// FileStem returns name without directory and spreadsheet extension.
func FileStem(name string) string {
	base := filepath.Base(name)
	lower := strings.ToLower(base)
	for _, e := range files.SpreadsheetExtensions {
		if strings.HasSuffix(lower, e) {
			return base[:len(base)-len(e)]
		}
	}
	return base
}
