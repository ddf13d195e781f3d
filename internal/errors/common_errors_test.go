package errors

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
	}{
		{
			name:     "parsing error with cause",
			err:      NewParsingError("bad workbook", io.ErrUnexpectedEOF),
			wantType: ErrTypeParsing,
			wantMsg:  "[PARSING] bad workbook: unexpected EOF",
		},
		{
			name:     "validation error",
			err:      NewAppError(ErrTypeValidation, "file field is required", nil),
			wantType: ErrTypeValidation,
			wantMsg:  "[VALIDATION] file field is required",
		},
		{
			name:     "not found",
			err:      NewAppError(ErrTypeNotFound, "snapshot not found", nil),
			wantType: ErrTypeNotFound,
			wantMsg:  "[NOT_FOUND] snapshot not found",
		},
		{
			name:     "storage",
			err:      NewStorageError("write failed", nil),
			wantType: ErrTypeStorage,
			wantMsg:  "[STORAGE] write failed",
		},
		{
			name:     "config",
			err:      NewConfigError("invalid port", nil),
			wantType: ErrTypeConfig,
			wantMsg:  "[CONFIG] invalid port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestAppErrorUnwrapAndContext(t *testing.T) {
	err := NewParsingError("bad workbook", io.ErrUnexpectedEOF).WithContext("file", "week.xlsx")

	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "week.xlsx", err.Context["file"])

	bare := &AppError{Type: ErrTypeStorage, Message: "x"}
	bare.WithContext("k", 1)
	assert.Equal(t, 1, bare.Context["k"])
}
