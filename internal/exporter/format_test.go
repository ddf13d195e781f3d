package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{name: "zero value", input: 0, expected: "0.00"},
		{name: "integer", input: 123, expected: "123.00"},
		{name: "one decimal", input: 13.4, expected: "13.40"},
		{name: "rounds to two places", input: 2.346, expected: "2.35"},
		{name: "negative", input: -3, expected: "-3.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestFormatOptional(t *testing.T) {
	f := 1.5
	i := int64(-7)
	d := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "", formatOptionalFloat(nil))
	assert.Equal(t, "1.50", formatOptionalFloat(&f))
	assert.Equal(t, "", formatOptionalInt(nil))
	assert.Equal(t, "-7", formatOptionalInt(&i))
	assert.Equal(t, "", formatDate(nil))
	assert.Equal(t, "2024-01-08", formatDate(&d))
}
