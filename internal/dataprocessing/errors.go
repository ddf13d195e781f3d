package dataprocessing

import (
	"errors"
	"fmt"
	"strings"

	"rankpulse/pkg/contracts/domain"
)

// Comparison errors
var (
	ErrSameComparisonDates = errors.New("current and baseline dates must differ")
	ErrDateNotFound        = errors.New("snapshot date not found")
)

// SchemaResolutionError is returned when a mandatory canonical field has no
// matching header. Available lists every header so the user can diagnose
// the export.
type SchemaResolutionError struct {
	Source    string                  `json:"source,omitempty"`
	Missing   []domain.CanonicalField `json:"missing"`
	Available []string                `json:"available"`
}

// Error implements the error interface
func (e *SchemaResolutionError) Error() string {
	missing := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		missing[i] = string(f)
	}
	msg := fmt.Sprintf("could not find %s column; available columns: [%s]",
		strings.Join(missing, ", "), strings.Join(e.Available, ", "))
	if e.Source != "" {
		return e.Source + ": " + msg
	}
	return msg
}

// EmptySnapshotError is returned when no row has a position between 1 and 10
type EmptySnapshotError struct {
	Source string `json:"source,omitempty"`
	Rows   int    `json:"rows"`
}

// Error implements the error interface
func (e *EmptySnapshotError) Error() string {
	msg := fmt.Sprintf("no keywords found in positions %g-%g (%d rows read)",
		domain.MinPosition, domain.MaxPosition, e.Rows)
	if e.Source != "" {
		return e.Source + ": " + msg
	}
	return msg
}

// NoDataAvailableError is returned when no file in a batch produced a usable
// snapshot
type NoDataAvailableError struct {
	Location string               `json:"location,omitempty"`
	Skipped  []domain.SkippedFile `json:"skipped,omitempty"`
}

// Error implements the error interface
func (e *NoDataAvailableError) Error() string {
	where := ""
	if e.Location != "" {
		where = " in " + e.Location
	}
	return fmt.Sprintf("no usable snapshot data available%s (%d files skipped)", where, len(e.Skipped))
}

// ProcessingError wraps a failure to decode a spreadsheet file
type ProcessingError struct {
	Source string
	Cause  error
}

// Error implements the error interface
func (e *ProcessingError) Error() string {
	return fmt.Sprintf("error processing file %s: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying error
func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// IsRecoverable reports whether err only invalidates a single file, so a
// batch can continue with the remaining files.
func IsRecoverable(err error) bool {
	var schemaErr *SchemaResolutionError
	var emptyErr *EmptySnapshotError
	var procErr *ProcessingError
	return errors.As(err, &schemaErr) || errors.As(err, &emptyErr) || errors.As(err, &procErr)
}
