package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1, 0, 1))
	assert.Equal(t, 1.0, Clamp(2, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}

func TestFormatTimestamp(t *testing.T) {
	testCases := []struct {
		seconds  float64
		expected string
	}{
		{0, "0:00:00.000"},
		{1.5, "0:00:01.500"},
		{61.25, "0:01:01.250"},
		{3661.007, "1:01:01.007"},
		{-3, "0:00:00.000"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatTimestamp(tc.seconds))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"0:00:01.500", 1.5, false},
		{"00:01:01.250", 61.25, false},
		{"01:30", 90, false},
		{"12.75", 12.75, false},
		{"0:00:01,500", 1.5, false},
		{"", 0, true},
		{"1:2:3:4", 0, true},
		{"abc", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseTimestamp(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.InDelta(t, tc.expected, got, 1e-9)
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, seconds := range []float64{0, 0.001, 59.999, 60, 3600.5, 7321.042} {
		got, err := ParseTimestamp(FormatTimestamp(seconds))
		assert.NoError(t, err)
		assert.InDelta(t, seconds, got, 1e-9)
	}
}
