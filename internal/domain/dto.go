package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs for requests and responses

type RegisterUnitRequest struct {
	StockNumber     string          `json:"stock_number" validate:"required"`
	OrderDate       *time.Time      `json:"order_date,omitempty"`
	ArrivalDate     time.Time       `json:"arrival_date" validate:"required"`
	BaseCost        decimal.Decimal `json:"base_cost"`
	TransportCost   decimal.Decimal `json:"transport_cost"`
	AccessoryCost   decimal.Decimal `json:"accessory_cost"`
	OtherCosts      decimal.Decimal `json:"other_costs"`
	InterestRate    decimal.Decimal `json:"interest_rate"` // annual fraction
	PrincipalBase   string          `json:"principal_base" validate:"omitempty,oneof=BASE_COST_ONLY TOTAL_COST"`
	FinanceProvider *string         `json:"finance_provider,omitempty"`
}

type InitializePeriodRequest struct {
	AnnualRate    decimal.Decimal `json:"annual_rate" validate:"required"` // percentage
	PrincipalBase string          `json:"principal_base" validate:"omitempty,oneof=BASE_COST_ONLY TOTAL_COST"`
	StartDate     *time.Time      `json:"start_date,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

type UpdateRateRequest struct {
	AnnualRate    decimal.Decimal `json:"annual_rate" validate:"required"` // percentage
	PrincipalBase string          `json:"principal_base" validate:"omitempty,oneof=BASE_COST_ONLY TOTAL_COST"`
	EffectiveDate *time.Time      `json:"effective_date,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

type StopInterestRequest struct {
	StopDate *time.Time `json:"stop_date,omitempty"`
	Notes    string     `json:"notes,omitempty"`
}

type ResumeInterestRequest struct {
	AnnualRate    decimal.Decimal `json:"annual_rate" validate:"required"` // percentage
	PrincipalBase string          `json:"principal_base" validate:"omitempty,oneof=BASE_COST_ONLY TOTAL_COST"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

type InitializeDebtRequest struct {
	// Amount overrides the principal derived from the unit's cost fields.
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

type RecordPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod   string          `json:"payment_method" validate:"required"`
	Policy          string          `json:"policy" validate:"omitempty,oneof=AUTO PRINCIPAL_ONLY INTEREST_ONLY"`
	PaymentDate     *time.Time      `json:"payment_date,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// Allocation is the computed split of one payment.
type Allocation struct {
	InterestPaid             decimal.Decimal `json:"interest_paid"`
	PrincipalPaid            decimal.Decimal `json:"principal_paid"`
	AccruedInterestAtPayment decimal.Decimal `json:"accrued_interest_at_payment"`
	Payoff                   bool            `json:"payoff"`
}

type PaymentResult struct {
	Payment    *DebtPayment  `json:"payment"`
	Unit       *FinancedUnit `json:"unit"`
	Allocation Allocation    `json:"allocation"`
	Payoff     bool          `json:"payoff"`
}

// DebtSummaryView is the read-only aggregation served to Reports.
type DebtSummaryView struct {
	UnitID               string          `json:"unit_id"`
	DebtAmount           decimal.Decimal `json:"debt_amount"`
	PaidDebtAmount       decimal.Decimal `json:"paid_debt_amount"`
	PaidInterestAmount   decimal.Decimal `json:"paid_interest_amount"`
	RemainingDebt        decimal.Decimal `json:"remaining_debt"`
	TotalAccruedInterest decimal.Decimal `json:"total_accrued_interest"`
	AccruedInterest      decimal.Decimal `json:"accrued_interest"` // outstanding
	TotalPayoffAmount    decimal.Decimal `json:"total_payoff_amount"`
	DebtStatus           string          `json:"debt_status"`
	PaymentCount         int             `json:"payment_count"`
	LastPaymentDate      *time.Time      `json:"last_payment_date,omitempty"`
}

type StockInterestDetail struct {
	Unit    *FinancedUnit     `json:"unit"`
	Summary *DebtSummaryView  `json:"summary"`
	Periods []*InterestPeriod `json:"periods"`
}

type InterestStats struct {
	AccruingUnits        int             `json:"accruing_units"`
	StoppedUnits         int             `json:"stopped_units"`
	TotalAccruedInterest decimal.Decimal `json:"total_accrued_interest"`
	OutstandingInterest  decimal.Decimal `json:"outstanding_interest"`
	TotalPaidInterest    decimal.Decimal `json:"total_paid_interest"`
	GeneratedAt          time.Time       `json:"generated_at"`
}

// UnitInterestTotal is a per-unit sum of frozen closed-period interest.
type UnitInterestTotal struct {
	UnitID uuid.UUID       `db:"unit_id"`
	Total  decimal.Decimal `db:"total"`
}

// PaymentStats is the payment aggregate a summary needs.
type PaymentStats struct {
	Count           int        `json:"count" db:"count"`
	LastPaymentDate *time.Time `json:"last_payment_date,omitempty" db:"last_payment_date"`
}

type DebtStats struct {
	ActiveDebts        int             `json:"active_debts"`
	PaidOffDebts       int             `json:"paid_off_debts"`
	NoDebtUnits        int             `json:"no_debt_units"`
	TotalDebtAmount    decimal.Decimal `json:"total_debt_amount"`
	TotalRemainingDebt decimal.Decimal `json:"total_remaining_debt"`
	TotalPaidDebt      decimal.Decimal `json:"total_paid_debt"`
	GeneratedAt        time.Time       `json:"generated_at"`
}
