package services

import (
	"errors"
	"fmt"

	"rankpulse/internal/dataprocessing"
	apierrors "rankpulse/internal/errors"
)

// Dashboard service errors
var (
	// ErrComparisonNotApplicable is returned by exports that need two dated
	// snapshots when fewer are available
	ErrComparisonNotApplicable = errors.New("at least two dated snapshots are needed for a comparison")

	// ErrInvalidUpload wraps upload name and content problems
	ErrInvalidUpload = errors.New("invalid upload")
)

// dataDirUnavailable reports a data directory that cannot be read
func dataDirUnavailable(dir string, cause error) error {
	return apierrors.NewAppError(apierrors.ErrTypeNotFound, "data directory is not available", cause).
		WithContext("directory", dir)
}

// invalidUpload reports a rejected upload as a validation failure
func invalidUpload(cause error) error {
	return apierrors.NewAppError(apierrors.ErrTypeValidation, cause.Error(), fmt.Errorf("%w: %w", ErrInvalidUpload, cause))
}

// notApplicable reports an export requested without two dated snapshots
func notApplicable(dates int) error {
	return apierrors.NewAppError(apierrors.ErrTypeNotFound, ErrComparisonNotApplicable.Error(), ErrComparisonNotApplicable).
		WithContext("available_dates", dates)
}

// undecodable marks a spreadsheet the decoders rejected as a parsing
// failure. Other load errors pass through unchanged.
func undecodable(name string, err error) error {
	var procErr *dataprocessing.ProcessingError
	if !errors.As(err, &procErr) {
		return err
	}
	return apierrors.NewParsingError("spreadsheet could not be decoded", err).
		WithContext("file", name)
}
