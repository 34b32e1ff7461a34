package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dealerdesk/financing-engine/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAccrue(t *testing.T) {
	tests := []struct {
		name        string
		principal   decimal.Decimal
		ratePercent decimal.Decimal
		days        int
		expected    decimal.Decimal
	}{
		{
			// 1,000,000 at 5% over a full year
			name:        "full year at 5 percent",
			principal:   decimal.NewFromInt(1000000),
			ratePercent: decimal.NewFromFloat(5.0),
			days:        365,
			expected:    decimal.NewFromInt(50000),
		},
		{
			name:        "sixty days at 7.3 percent",
			principal:   decimal.NewFromInt(1000000),
			ratePercent: decimal.NewFromFloat(7.3),
			days:        60,
			expected:    decimal.NewFromInt(12000),
		},
		{
			name:        "single day",
			principal:   decimal.NewFromInt(365000),
			ratePercent: decimal.NewFromInt(10),
			days:        1,
			expected:    decimal.NewFromInt(100),
		},
		{
			name:        "zero days",
			principal:   decimal.NewFromInt(1000000),
			ratePercent: decimal.NewFromFloat(5.0),
			days:        0,
			expected:    decimal.Zero,
		},
		{
			name:        "negative days",
			principal:   decimal.NewFromInt(1000000),
			ratePercent: decimal.NewFromFloat(5.0),
			days:        -3,
			expected:    decimal.Zero,
		},
		{
			name:        "zero rate",
			principal:   decimal.NewFromInt(1000000),
			ratePercent: decimal.Zero,
			days:        365,
			expected:    decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Accrue(tt.principal, tt.ratePercent, tt.days)
			assert.True(t, got.Equal(tt.expected), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestAccrueIsDeterministic(t *testing.T) {
	a := Accrue(decimal.NewFromInt(123456), decimal.NewFromFloat(4.75), 91)
	b := Accrue(decimal.NewFromInt(123456), decimal.NewFromFloat(4.75), 91)
	assert.True(t, a.Equal(b))
}

func TestLiveInterest(t *testing.T) {
	open := &domain.InterestPeriod{
		StartDate:       date(2025, 1, 1),
		AnnualRate:      decimal.NewFromFloat(5.0),
		PrincipalAmount: decimal.NewFromInt(1000000),
	}

	// 365 days elapsed
	got := LiveInterest(open, date(2026, 1, 1))
	assert.True(t, got.Equal(decimal.NewFromInt(50000)), "got %s", got)

	// Same day as start: nothing accrued yet
	assert.True(t, LiveInterest(open, date(2025, 1, 1)).IsZero())

	// A closed period returns its frozen value regardless of asOf
	end := date(2025, 6, 30)
	closed := &domain.InterestPeriod{
		StartDate:          date(2025, 1, 1),
		EndDate:            &end,
		AnnualRate:         decimal.NewFromFloat(5.0),
		PrincipalAmount:    decimal.NewFromInt(1000000),
		CalculatedInterest: decimal.NewFromInt(24750),
	}
	assert.True(t, LiveInterest(closed, date(2030, 1, 1)).Equal(decimal.NewFromInt(24750)))
}

func TestAccruedFromPeriods(t *testing.T) {
	end := date(2025, 12, 31)
	periods := []*domain.InterestPeriod{
		{
			StartDate:          date(2025, 1, 1),
			EndDate:            &end,
			AnnualRate:         decimal.NewFromFloat(5.0),
			PrincipalAmount:    decimal.NewFromInt(1000000),
			DaysCount:          365,
			CalculatedInterest: decimal.NewFromInt(50000),
		},
		{
			StartDate:       date(2026, 1, 1),
			AnnualRate:      decimal.NewFromFloat(7.3),
			PrincipalAmount: decimal.NewFromInt(1000000),
		},
	}

	// 60 live days on the open period at 7.3% adds 12,000
	got := accruedFromPeriods(periods, date(2026, 3, 2))
	assert.True(t, got.Equal(decimal.NewFromInt(62000)), "got %s", got)
}
