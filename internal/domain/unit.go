package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Debt lifecycle. PAID_OFF is terminal.
const (
	DebtStatusNoDebt  = "NO_DEBT"
	DebtStatusActive  = "ACTIVE"
	DebtStatusPaidOff = "PAID_OFF"
)

// Principal base selects which cost components bear interest.
const (
	PrincipalBaseCostOnly  = "BASE_COST_ONLY"
	PrincipalBaseTotalCost = "TOTAL_COST"
)

// FinancedUnit is a stock unit carried on a floor-plan facility, together
// with its debt account. Cost fields and the finance provider flag come from
// the Stock module; everything else is owned by this engine.
type FinancedUnit struct {
	ID          uuid.UUID `json:"id" db:"id"`
	StockNumber string    `json:"stock_number" db:"stock_number"`

	OrderDate   *time.Time `json:"order_date,omitempty" db:"order_date"`
	ArrivalDate time.Time  `json:"arrival_date" db:"arrival_date"`

	BaseCost      decimal.Decimal `json:"base_cost" db:"base_cost"`
	TransportCost decimal.Decimal `json:"transport_cost" db:"transport_cost"`
	AccessoryCost decimal.Decimal `json:"accessory_cost" db:"accessory_cost"`
	OtherCosts    decimal.Decimal `json:"other_costs" db:"other_costs"`

	// Defaults used only until the first interest period exists.
	InterestRate  decimal.Decimal `json:"interest_rate" db:"interest_rate"` // annual fraction, 0.05 = 5%
	PrincipalBase string          `json:"principal_base" db:"principal_base"`

	FinanceProvider *string `json:"finance_provider,omitempty" db:"finance_provider"`

	StopInterestCalc  bool       `json:"stop_interest_calc" db:"stop_interest_calc"`
	InterestStoppedAt *time.Time `json:"interest_stopped_at,omitempty" db:"interest_stopped_at"`

	DebtAmount         decimal.Decimal `json:"debt_amount" db:"debt_amount"`
	PaidDebtAmount     decimal.Decimal `json:"paid_debt_amount" db:"paid_debt_amount"`
	PaidInterestAmount decimal.Decimal `json:"paid_interest_amount" db:"paid_interest_amount"`
	RemainingDebt      decimal.Decimal `json:"remaining_debt" db:"remaining_debt"`
	DebtStatus         string          `json:"debt_status" db:"debt_status"`
	DebtPaidOffDate    *time.Time      `json:"debt_paid_off_date,omitempty" db:"debt_paid_off_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AccrualStartDate is where interest starts when no period history exists:
// the order date when known, otherwise arrival.
func (u *FinancedUnit) AccrualStartDate() time.Time {
	if u.OrderDate != nil {
		return *u.OrderDate
	}
	return u.ArrivalDate
}

// TotalCost sums all four cost components.
func (u *FinancedUnit) TotalCost() decimal.Decimal {
	return u.BaseCost.Add(u.TransportCost).Add(u.AccessoryCost).Add(u.OtherCosts)
}

// PrincipalFor derives the interest-bearing principal for a base policy.
func (u *FinancedUnit) PrincipalFor(principalBase string) decimal.Decimal {
	if principalBase == PrincipalBaseTotalCost {
		return u.TotalCost()
	}
	return u.BaseCost
}
