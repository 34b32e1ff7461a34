package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dealerdesk/financing-engine/internal/domain"
	"github.com/dealerdesk/financing-engine/pkg/utils"
)

var (
	daysPerYear = decimal.NewFromInt(365)
	hundred     = decimal.NewFromInt(100)
)

// Accrue computes simple daily interest:
//
//	principal × (annualRatePercent / 100 / 365) × days
//
// The result is unrounded; callers round to currency precision only when
// persisting or displaying, so chained calculations never compound rounding
// error. Divisions come last to keep exactly-divisible cases exact.
func Accrue(principal, annualRatePercent decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return principal.
		Mul(annualRatePercent).
		Mul(decimal.NewFromInt(int64(days))).
		Div(hundred).
		Div(daysPerYear)
}

// LiveInterest is the unrounded accrual of an open period as of the given
// date. Closed periods carry their frozen CalculatedInterest instead.
func LiveInterest(period *domain.InterestPeriod, asOf time.Time) decimal.Decimal {
	if !period.IsOpen() {
		return period.CalculatedInterest
	}
	days := utils.DaysBetween(utils.TruncateToDay(period.StartDate), utils.TruncateToDay(asOf))
	return Accrue(period.PrincipalAmount, period.AnnualRate, days)
}

// accruedFromPeriods totals frozen interest of closed periods plus the live
// value of the open one, as of the supplied date.
func accruedFromPeriods(periods []*domain.InterestPeriod, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, p := range periods {
		if p.IsOpen() {
			total = total.Add(LiveInterest(p, asOf))
		} else {
			total = total.Add(p.CalculatedInterest)
		}
	}
	return total
}
