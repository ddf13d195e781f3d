package dataprocessing

import (
	"os"
	"regexp"
	"time"
)

var (
	isoDatePattern     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	compactDatePattern = regexp.MustCompile(`\d{8}`)
)

// DateFromFilename extracts a snapshot date embedded in a file name. The
// first YYYY-MM-DD run is tried, then the first eight-digit run as YYYYMMDD.
// Matches that are not real calendar dates are ignored.
func DateFromFilename(name string) (time.Time, bool) {
	if m := isoDatePattern.FindString(name); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t, true
		}
	}
	if m := compactDatePattern.FindString(name); m != "" {
		if t, err := time.Parse("20060102", m); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ResolveSnapshotDate returns the snapshot date for src: the date in its
// name, else the modification day of the file on disk, else nil.
func ResolveSnapshotDate(src SourceFile) *time.Time {
	if t, ok := DateFromFilename(src.Name); ok {
		return &t
	}
	if !src.OnDisk() {
		return nil
	}
	info, err := os.Stat(src.Path)
	if err != nil {
		return nil
	}
	t := truncateDay(info.ModTime())
	return &t
}

// truncateDay returns midnight UTC of the calendar day t falls on locally.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
