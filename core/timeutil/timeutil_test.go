package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T00:00:00Z", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T05:30:00+05:30", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T12:00:00", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"2024-01-01 12:00:00", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.True(t, got.Equal(tc.want), "parse %q: got %v want %v", tc.in, got, tc.want)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date", "01/02/2024"} {
		_, err := Parse(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestFormat(t *testing.T) {
	ts := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-01T08:30:00Z", Format(ts))
	assert.Equal(t, "2024-06-01T08:30:00", FormatHub(ts))
}

func TestFormat_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("X", 3600)
	ts := time.Date(2024, 6, 1, 9, 30, 0, 0, loc)
	assert.Equal(t, "2024-06-01T08:30:00Z", Format(ts))
}
