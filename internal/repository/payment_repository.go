package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dealerdesk/financing-engine/internal/domain"
)

const paymentColumns = `
	id, unit_id, amount, payment_date, payment_method, policy,
	principal_before, principal_after, accrued_interest_at_payment,
	interest_paid, principal_paid, reference_number, notes, created_at
`

type paymentRepository struct {
	db sqlx.ExtContext
}

func NewPaymentRepository(db sqlx.ExtContext) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.DebtPayment) error {
	query := `
		INSERT INTO debt_payments (
			id, unit_id, amount, payment_date, payment_method, policy,
			principal_before, principal_after, accrued_interest_at_payment,
			interest_paid, principal_paid, reference_number, notes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.UnitID,
		payment.Amount,
		payment.PaymentDate,
		payment.PaymentMethod,
		payment.Policy,
		payment.PrincipalBefore,
		payment.PrincipalAfter,
		payment.AccruedInterestAtPayment,
		payment.InterestPaid,
		payment.PrincipalPaid,
		payment.ReferenceNumber,
		payment.Notes,
		payment.CreatedAt,
	)

	return err
}

func (r *paymentRepository) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*domain.DebtPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM debt_payments WHERE unit_id = $1 ORDER BY payment_date DESC, created_at DESC`

	var payments []*domain.DebtPayment
	if err := sqlx.SelectContext(ctx, r.db, &payments, query, unitID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) StatsByUnitID(ctx context.Context, unitID uuid.UUID) (*domain.PaymentStats, error) {
	query := `
		SELECT COUNT(*) AS count, MAX(payment_date) AS last_payment_date
		FROM debt_payments
		WHERE unit_id = $1
	`

	var stats domain.PaymentStats
	if err := sqlx.GetContext(ctx, r.db, &stats, query, unitID); err != nil {
		return nil, err
	}

	return &stats, nil
}
