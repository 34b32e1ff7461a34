package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dealerdesk/financing-engine/internal/domain"
)

const periodColumns = `
	id, unit_id, start_date, end_date, annual_rate, principal_base,
	principal_amount, calculated_interest, days_count, notes, created_by, created_at
`

type periodRepository struct {
	db sqlx.ExtContext
}

func NewPeriodRepository(db sqlx.ExtContext) PeriodRepository {
	return &periodRepository{db: db}
}

func (r *periodRepository) Create(ctx context.Context, period *domain.InterestPeriod) error {
	query := `
		INSERT INTO interest_periods (
			id, unit_id, start_date, end_date, annual_rate, principal_base,
			principal_amount, calculated_interest, days_count, notes, created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		period.ID,
		period.UnitID,
		period.StartDate,
		period.EndDate,
		period.AnnualRate,
		period.PrincipalBase,
		period.PrincipalAmount,
		period.CalculatedInterest,
		period.DaysCount,
		period.Notes,
		period.CreatedBy,
		period.CreatedAt,
	)

	return err
}

// Close is the single permitted mutation of a period: freezing end_date,
// days_count and calculated_interest. The guard on end_date keeps a closed
// period immutable even under a buggy caller.
func (r *periodRepository) Close(ctx context.Context, period *domain.InterestPeriod) error {
	query := `
		UPDATE interest_periods
		SET end_date = $2, days_count = $3, calculated_interest = $4
		WHERE id = $1 AND end_date IS NULL
	`

	_, err := r.db.ExecContext(ctx, query,
		period.ID,
		period.EndDate,
		period.DaysCount,
		period.CalculatedInterest,
	)

	return err
}

func (r *periodRepository) GetOpenByUnitID(ctx context.Context, unitID uuid.UUID) (*domain.InterestPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM interest_periods WHERE unit_id = $1 AND end_date IS NULL`

	var period domain.InterestPeriod
	if err := sqlx.GetContext(ctx, r.db, &period, query, unitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &period, nil
}

func (r *periodRepository) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*domain.InterestPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM interest_periods WHERE unit_id = $1 ORDER BY start_date`

	var periods []*domain.InterestPeriod
	if err := sqlx.SelectContext(ctx, r.db, &periods, query, unitID); err != nil {
		return nil, err
	}

	return periods, nil
}

func (r *periodRepository) CountByUnitID(ctx context.Context, unitID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM interest_periods WHERE unit_id = $1`

	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, unitID); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *periodRepository) ListOpen(ctx context.Context) ([]*domain.InterestPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM interest_periods WHERE end_date IS NULL ORDER BY start_date`

	var periods []*domain.InterestPeriod
	if err := sqlx.SelectContext(ctx, r.db, &periods, query); err != nil {
		return nil, err
	}

	return periods, nil
}

func (r *periodRepository) ClosedInterestTotals(ctx context.Context) ([]*domain.UnitInterestTotal, error) {
	query := `
		SELECT unit_id, COALESCE(SUM(calculated_interest), 0) AS total
		FROM interest_periods
		WHERE end_date IS NOT NULL
		GROUP BY unit_id
	`

	var totals []*domain.UnitInterestTotal
	if err := sqlx.SelectContext(ctx, r.db, &totals, query); err != nil {
		return nil, err
	}

	return totals, nil
}
