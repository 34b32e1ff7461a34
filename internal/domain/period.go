package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InterestPeriod is a contiguous date range over which principal and rate are
// fixed. A nil EndDate means the period is open; a unit has at most one open
// period. Closed periods are immutable history and are never deleted.
type InterestPeriod struct {
	ID     uuid.UUID `json:"id" db:"id"`
	UnitID uuid.UUID `json:"unit_id" db:"unit_id"`

	StartDate time.Time  `json:"start_date" db:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty" db:"end_date"`

	AnnualRate    decimal.Decimal `json:"annual_rate" db:"annual_rate"` // percentage, 5.0 = 5%
	PrincipalBase string          `json:"principal_base" db:"principal_base"`

	// Frozen snapshot for this period, never recomputed from the unit.
	PrincipalAmount decimal.Decimal `json:"principal_amount" db:"principal_amount"`

	// Frozen once the period closes; live-computed while open.
	CalculatedInterest decimal.Decimal `json:"calculated_interest" db:"calculated_interest"`
	DaysCount          int             `json:"days_count" db:"days_count"`

	Notes     string    `json:"notes,omitempty" db:"notes"`
	CreatedBy string    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsOpen reports whether the period is still accruing.
func (p *InterestPeriod) IsOpen() bool {
	return p.EndDate == nil
}
