package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTruncateToDay(t *testing.T) {
	ts := time.Date(2025, 3, 15, 17, 45, 12, 999, time.UTC)
	assert.Equal(t, date(2025, 3, 15), TruncateToDay(ts))

	// Non-UTC input truncates on the UTC calendar
	loc := time.FixedZone("UTC+7", 7*3600)
	ts = time.Date(2025, 3, 15, 3, 0, 0, 0, loc) // 2025-03-14T20:00Z
	assert.Equal(t, date(2025, 3, 14), TruncateToDay(ts))
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name     string
		a, b     time.Time
		expected int
	}{
		{"same day", date(2025, 1, 1), date(2025, 1, 1), 0},
		{"one day", date(2025, 1, 1), date(2025, 1, 2), 1},
		{"full year", date(2025, 1, 1), date(2026, 1, 1), 365},
		{"reversed arguments", date(2026, 1, 1), date(2025, 1, 1), 365},
		{"partial day rounds up", date(2025, 1, 1), time.Date(2025, 1, 2, 6, 0, 0, 0, time.UTC), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetween(tt.a, tt.b))
		})
	}
}

func TestInclusiveDays(t *testing.T) {
	assert.Equal(t, 1, InclusiveDays(date(2025, 1, 1), date(2025, 1, 1)))
	assert.Equal(t, 365, InclusiveDays(date(2025, 1, 1), date(2025, 12, 31)))
	assert.Equal(t, 0, InclusiveDays(date(2025, 1, 2), date(2025, 1, 1)))
}

func TestRoundMoney(t *testing.T) {
	assert.True(t, RoundMoney(decimal.RequireFromString("10.005")).Equal(decimal.RequireFromString("10.01")))
	assert.True(t, RoundMoney(decimal.RequireFromString("10.004")).Equal(decimal.RequireFromString("10.00")))
	assert.True(t, RoundMoney(decimal.NewFromInt(50000)).Equal(decimal.NewFromInt(50000)))
}
