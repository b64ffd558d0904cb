package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHashrate(t *testing.T) {
	tests := []struct {
		value    string
		unit     string
		expected float64
	}{
		{"123.5", "", 123.5},
		{"0.33", "kH/s", 330},
		{"2", "KH/s", 2000},
		{"1.5", "MH/s", 1_500_000},
		{"0.5", "GH/s", 500_000_000},
		{"42", "H/s", 42},
		{"garbage", "kH/s", 0},
		{"", "", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseHashrate(tt.value, tt.unit), "%s %s", tt.value, tt.unit)
	}
}

func TestFormatHashrate(t *testing.T) {
	assert.Equal(t, "950 H/s", FormatHashrate(950))
	assert.Equal(t, "10.00 kH/s", FormatHashrate(10_000))
	assert.Equal(t, "1.25 MH/s", FormatHashrate(1_250_000))
	assert.Equal(t, "2.00 GH/s", FormatHashrate(2_000_000_000))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m 45s", FormatDuration(45))
	assert.Equal(t, "2h 5m", FormatDuration(2*3600+5*60))
	assert.Equal(t, "3d 1h 0m", FormatDuration(3*24*3600+3600))
	assert.Equal(t, "0m 0s", FormatDuration(-10))
}
