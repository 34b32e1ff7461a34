package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

const millisPerDay = 24 * 60 * 60 * 1000

// TruncateToDay truncates a timestamp to UTC midnight. All day-count
// arithmetic operates on truncated dates.
func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days between two dates,
// ceil(|b - a| in milliseconds / 86,400,000). Order of arguments does
// not matter.
func DaysBetween(a, b time.Time) int {
	ms := b.Sub(a).Milliseconds()
	if ms < 0 {
		ms = -ms
	}
	days := ms / millisPerDay
	if ms%millisPerDay != 0 {
		days++
	}
	return int(days)
}

// InclusiveDays counts calendar days from start through end, both ends
// included. Same-day start and end is 1 day.
func InclusiveDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return DaysBetween(TruncateToDay(start), TruncateToDay(end)) + 1
}

// RoundMoney rounds to 2 decimal places, half away from zero. Applied only
// when a value is persisted or displayed, never inside chained calculations.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
