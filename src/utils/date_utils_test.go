package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionDateLayouts(t *testing.T) {
	testCases := []struct {
		input string
		want  time.Time
	}{
		{"2026-09-05 14:30:00", time.Date(2026, 9, 5, 14, 30, 0, 0, time.UTC)},
		{"2026-09-05", time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)},
		{"9/5/2026 2:30 PM", time.Date(2026, 9, 5, 14, 30, 0, 0, time.UTC)},
		{"9/5/2026", time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)},
		{"09/05/2026", time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got := ParseTransactionDate(tc.input)
			require.False(t, got.IsZero())
			assert.True(t, got.Equal(tc.want), "got %v, want %v", got, tc.want)
		})
	}
}

func TestParseTransactionDateUnparseable(t *testing.T) {
	for _, input := range []string{"", "not a date", "31/31/2026", "2026-13-40"} {
		assert.True(t, ParseTransactionDate(input).IsZero(), "input %q", input)
	}
}

func TestFormatDisplayDate(t *testing.T) {
	assert.Equal(t, "09/05/2026 02:30 PM", FormatDisplayDate(time.Date(2026, 9, 5, 14, 30, 0, 0, time.UTC)))
	assert.Equal(t, "unknown", FormatDisplayDate(time.Time{}))
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(time.Date(2026, 2, 14, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), end)

	start, end = MonthBounds(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC), end)
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Sep-26", MonthLabel(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Jan-27", MonthLabel(time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestWithinRange(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	assert.True(t, WithinRange(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), start, end))
	assert.True(t, WithinRange(time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC), start, end))
	assert.False(t, WithinRange(time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC), start, end))
	assert.False(t, WithinRange(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), start, end))
	assert.False(t, WithinRange(time.Time{}, start, end))
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 98.77, RoundFloat(98.76536, 2))
	assert.Equal(t, 100.0, RoundFloat(99.999, 2))
	assert.Equal(t, -20.0, RoundFloat(-20.004, 2))
}
