package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dealerdesk/financing-engine/internal/domain"
)

const unitColumns = `
	id, stock_number, order_date, arrival_date,
	base_cost, transport_cost, accessory_cost, other_costs,
	interest_rate, principal_base, finance_provider,
	stop_interest_calc, interest_stopped_at,
	debt_amount, paid_debt_amount, paid_interest_amount, remaining_debt,
	debt_status, debt_paid_off_date, created_at, updated_at
`

type unitRepository struct {
	db sqlx.ExtContext
}

func NewUnitRepository(db sqlx.ExtContext) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) Create(ctx context.Context, unit *domain.FinancedUnit) error {
	query := `
		INSERT INTO financed_units (
			id, stock_number, order_date, arrival_date,
			base_cost, transport_cost, accessory_cost, other_costs,
			interest_rate, principal_base, finance_provider,
			stop_interest_calc, interest_stopped_at,
			debt_amount, paid_debt_amount, paid_interest_amount, remaining_debt,
			debt_status, debt_paid_off_date, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := r.db.ExecContext(ctx, query,
		unit.ID,
		unit.StockNumber,
		unit.OrderDate,
		unit.ArrivalDate,
		unit.BaseCost,
		unit.TransportCost,
		unit.AccessoryCost,
		unit.OtherCosts,
		unit.InterestRate,
		unit.PrincipalBase,
		unit.FinanceProvider,
		unit.StopInterestCalc,
		unit.InterestStoppedAt,
		unit.DebtAmount,
		unit.PaidDebtAmount,
		unit.PaidInterestAmount,
		unit.RemainingDebt,
		unit.DebtStatus,
		unit.DebtPaidOffDate,
		unit.CreatedAt,
		unit.UpdatedAt,
	)

	return err
}

func (r *unitRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FinancedUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM financed_units WHERE id = $1`

	var unit domain.FinancedUnit
	if err := sqlx.GetContext(ctx, r.db, &unit, query, id); err != nil {
		return nil, err
	}

	return &unit, nil
}

func (r *unitRepository) Update(ctx context.Context, unit *domain.FinancedUnit) error {
	query := `
		UPDATE financed_units
		SET interest_rate = $2, principal_base = $3,
			stop_interest_calc = $4, interest_stopped_at = $5,
			debt_amount = $6, paid_debt_amount = $7, paid_interest_amount = $8,
			remaining_debt = $9, debt_status = $10, debt_paid_off_date = $11,
			updated_at = $12
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		unit.ID,
		unit.InterestRate,
		unit.PrincipalBase,
		unit.StopInterestCalc,
		unit.InterestStoppedAt,
		unit.DebtAmount,
		unit.PaidDebtAmount,
		unit.PaidInterestAmount,
		unit.RemainingDebt,
		unit.DebtStatus,
		unit.DebtPaidOffDate,
		time.Now().UTC(),
	)

	return err
}

func (r *unitRepository) List(ctx context.Context) ([]*domain.FinancedUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM financed_units ORDER BY created_at`

	var units []*domain.FinancedUnit
	if err := sqlx.SelectContext(ctx, r.db, &units, query); err != nil {
		return nil, err
	}

	return units, nil
}

// lockByID takes the per-unit write lock inside a transaction. Used only by
// the unit of work.
func lockByID(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.FinancedUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM financed_units WHERE id = $1 FOR UPDATE`

	var unit domain.FinancedUnit
	if err := tx.GetContext(ctx, &unit, query, id); err != nil {
		return nil, err
	}

	return &unit, nil
}
