package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation policies for splitting a payment between interest and principal.
const (
	PolicyAuto          = "AUTO"
	PolicyPrincipalOnly = "PRINCIPAL_ONLY"
	PolicyInterestOnly  = "INTEREST_ONLY"
)

// DebtPayment is the immutable record of one cash event against a unit's
// debt. Voiding a payment is a new compensating record, never an edit.
type DebtPayment struct {
	ID     uuid.UUID `json:"id" db:"id"`
	UnitID uuid.UUID `json:"unit_id" db:"unit_id"`

	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate   time.Time       `json:"payment_date" db:"payment_date"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	Policy        string          `json:"policy" db:"policy"`

	PrincipalBefore          decimal.Decimal `json:"principal_before" db:"principal_before"`
	PrincipalAfter           decimal.Decimal `json:"principal_after" db:"principal_after"`
	AccruedInterestAtPayment decimal.Decimal `json:"accrued_interest_at_payment" db:"accrued_interest_at_payment"`
	InterestPaid             decimal.Decimal `json:"interest_paid" db:"interest_paid"`
	PrincipalPaid            decimal.Decimal `json:"principal_paid" db:"principal_paid"`

	ReferenceNumber string    `json:"reference_number,omitempty" db:"reference_number"`
	Notes           string    `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
