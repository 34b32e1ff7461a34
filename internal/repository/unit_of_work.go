package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/dealerdesk/financing-engine/internal/domain"
	customError "github.com/dealerdesk/financing-engine/pkg/errors"
)

type sqlTx struct {
	tx *sqlx.Tx
}

func (t *sqlTx) Units() UnitRepository       { return NewUnitRepository(t.tx) }
func (t *sqlTx) Periods() PeriodRepository   { return NewPeriodRepository(t.tx) }
func (t *sqlTx) Payments() PaymentRepository { return NewPaymentRepository(t.tx) }

type unitOfWork struct {
	db *sqlx.DB
}

func NewUnitOfWork(db *sqlx.DB) UnitOfWork {
	return &unitOfWork{db: db}
}

// WithUnit locks the unit row FOR UPDATE, runs fn, and commits. Any error
// aborts the whole transaction, so a payment can never be recorded without
// its ledger rotation. Postgres serialization and deadlock failures surface
// as Conflict for caller retry.
func (u *unitOfWork) WithUnit(ctx context.Context, unitID uuid.UUID, fn func(tx Tx, unit *domain.FinancedUnit) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	defer tx.Rollback()

	unit, err := lockByID(ctx, tx, unitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapUnitNotFound(unitID.String())
		}
		return wrapTxError(err)
	}

	if err := fn(&sqlTx{tx: tx}, unit); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapTxError(err)
	}

	return nil
}

func wrapTxError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// serialization_failure, deadlock_detected
		if pqErr.Code == "40001" || pqErr.Code == "40P01" {
			return customError.WrapConflict()
		}
	}
	return customError.WrapDatabaseError(err)
}
