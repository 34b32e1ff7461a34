package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dealerdesk/financing-engine/internal/domain"
)

// UnitRepository defines data operations for financed units and their debt
// account fields.
type UnitRepository interface {
	// Create registers a new financed unit
	Create(ctx context.Context, unit *domain.FinancedUnit) error

	// GetByID retrieves a unit by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FinancedUnit, error)

	// Update persists rate/stop/debt field changes on a unit
	Update(ctx context.Context, unit *domain.FinancedUnit) error

	// List returns all financed units
	List(ctx context.Context) ([]*domain.FinancedUnit, error)
}

// PeriodRepository defines data operations for interest periods.
type PeriodRepository interface {
	// Create appends a new period
	Create(ctx context.Context, period *domain.InterestPeriod) error

	// Close freezes an open period's end date, day count and interest
	Close(ctx context.Context, period *domain.InterestPeriod) error

	// GetOpenByUnitID returns the unit's open period, or nil if none
	GetOpenByUnitID(ctx context.Context, unitID uuid.UUID) (*domain.InterestPeriod, error)

	// ListByUnitID returns all periods for a unit ordered by start date
	ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*domain.InterestPeriod, error)

	// CountByUnitID returns how many periods a unit has
	CountByUnitID(ctx context.Context, unitID uuid.UUID) (int, error)

	// ListOpen returns every open period across all units
	ListOpen(ctx context.Context) ([]*domain.InterestPeriod, error)

	// ClosedInterestTotals sums frozen interest of closed periods per unit
	ClosedInterestTotals(ctx context.Context) ([]*domain.UnitInterestTotal, error)
}

// PaymentRepository defines data operations for debt payments.
type PaymentRepository interface {
	// Create records an immutable payment
	Create(ctx context.Context, payment *domain.DebtPayment) error

	// ListByUnitID returns payments for a unit, newest first
	ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*domain.DebtPayment, error)

	// StatsByUnitID returns payment count and last payment date for a unit
	StatsByUnitID(ctx context.Context, unitID uuid.UUID) (*domain.PaymentStats, error)
}

// Tx bundles the repositories bound to one database transaction.
type Tx interface {
	Units() UnitRepository
	Periods() PeriodRepository
	Payments() PaymentRepository
}

// UnitOfWork runs a function against a single financed unit inside one
// transaction, holding a write lock on the unit's row for the duration.
// Operations on different units never contend.
type UnitOfWork interface {
	WithUnit(ctx context.Context, unitID uuid.UUID, fn func(tx Tx, unit *domain.FinancedUnit) error) error
}
