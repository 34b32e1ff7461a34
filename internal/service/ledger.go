package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealerdesk/financing-engine/internal/domain"
	"github.com/dealerdesk/financing-engine/internal/repository"
	customError "github.com/dealerdesk/financing-engine/pkg/errors"
	"github.com/dealerdesk/financing-engine/pkg/utils"
)

// InitializeInterestPeriod opens the first period for a unit. The start date
// defaults to the accrual start (order date, falling back to arrival).
func (s *FinancingService) InitializeInterestPeriod(ctx context.Context, unitID uuid.UUID, req *domain.InitializePeriodRequest) (*domain.InterestPeriod, error) {
	var created *domain.InterestPeriod

	err := s.uow.WithUnit(ctx, unitID, func(tx repository.Tx, unit *domain.FinancedUnit) error {
		if unit.DebtStatus == domain.DebtStatusPaidOff {
			return customError.WrapInvalidState(unitID.String(), "debt is paid off")
		}

		count, err := tx.Periods().CountByUnitID(ctx, unitID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if count > 0 {
			return customError.WrapAlreadyInitialized(unitID.String())
		}

		base := s.resolvePrincipalBase(req.PrincipalBase, unit)
		start := unit.AccrualStartDate()
		if req.StartDate != nil {
			start = *req.StartDate
		}

		created, err = s.openPeriod(ctx, tx, unit, openPeriodParams{
			start:     start,
			rate:      req.AnnualRate,
			base:      base,
			principal: unit.PrincipalFor(base),
			notes:     req.Notes,
			createdBy: req.CreatedBy,
		})
		if err != nil {
			return err
		}

		unit.InterestRate = req.AnnualRate.Div(hundred)
		unit.PrincipalBase = base
		if err := tx.Units().Update(ctx, unit); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx, unitID.String())
	return created, nil
}

// UpdateInterestRate closes the open period the day before the effective date
// and opens a new one at the new rate. The unit's convenience rate field is
// kept in sync.
func (s *FinancingService) UpdateInterestRate(ctx context.Context, unitID uuid.UUID, req *domain.UpdateRateRequest) (*domain.InterestPeriod, error) {
	var created *domain.InterestPeriod

	err := s.uow.WithUnit(ctx, unitID, func(tx repository.Tx, unit *domain.FinancedUnit) error {
		if unit.DebtStatus == domain.DebtStatusPaidOff {
			return customError.WrapInvalidState(unitID.String(), "debt is paid off")
		}
		if unit.StopInterestCalc {
			return customError.WrapInvalidState(unitID.String(), "interest calculation is stopped")
		}

		effective := utils.TruncateToDay(time.Now())
		if req.EffectiveDate != nil {
			effective = utils.TruncateToDay(*req.EffectiveDate)
		}

		open, err := tx.Periods().GetOpenByUnitID(ctx, unitID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		base := req.PrincipalBase
		principal := decimal.Zero
		switch {
		case open != nil:
			// Principal carries over from the open period unless the base
			// policy itself changes.
			if base == "" || base == open.PrincipalBase {
				base = open.PrincipalBase
				principal = open.PrincipalAmount
			} else {
				principal = unit.PrincipalFor(base)
			}
			if err := s.closeOpenPeriod(ctx, tx, open, effective.AddDate(0, 0, -1)); err != nil {
				return err
			}
		default:
			base = s.resolvePrincipalBase(base, unit)
			principal = unit.PrincipalFor(base)
		}

		created, err = s.openPeriod(ctx, tx, unit, openPeriodParams{
			start:     effective,
			rate:      req.AnnualRate,
			base:      base,
			principal: principal,
			notes:     req.Notes,
			createdBy: req.CreatedBy,
		})
		if err != nil {
			return err
		}

		unit.InterestRate = req.AnnualRate.Div(hundred)
		unit.PrincipalBase = base
		if err := tx.Units().Update(ctx, unit); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx, unitID.String())
	return created, nil
}

// StopInterestCalculation closes the open period and halts accrual. Calling
// it on a unit with no active period only records the stopped flags.
func (s *FinancingService) StopInterestCalculation(ctx context.Context, unitID uuid.UUID, req *domain.StopInterestRequest) error {
	err := s.uow.WithUnit(ctx, unitID, func(tx repository.Tx, unit *domain.FinancedUnit) error {
		if unit.DebtStatus == domain.DebtStatusPaidOff {
			return customError.WrapInvalidState(unitID.String(), "debt is paid off")
		}

		stopDate := utils.TruncateToDay(time.Now())
		if req.StopDate != nil {
			stopDate = utils.TruncateToDay(*req.StopDate)
		}

		return s.stopInterest(ctx, tx, unit, stopDate)
	})
	if err != nil {
		return err
	}

	s.invalidateCaches(ctx, unitID.String())
	return nil
}

// ResumeInterestCalculation opens a new period starting today for a unit
// whose accrual was stopped.
func (s *FinancingService) ResumeInterestCalculation(ctx context.Context, unitID uuid.UUID, req *domain.ResumeInterestRequest) (*domain.InterestPeriod, error) {
	var created *domain.InterestPeriod

	err := s.uow.WithUnit(ctx, unitID, func(tx repository.Tx, unit *domain.FinancedUnit) error {
		if unit.DebtStatus == domain.DebtStatusPaidOff {
			return customError.WrapInvalidState(unitID.String(), "debt is paid off")
		}
		if !unit.StopInterestCalc {
			return customError.WrapInvalidState(unitID.String(), "interest calculation is not stopped")
		}

		base := s.resolvePrincipalBase(req.PrincipalBase, unit)

		// An active debt resumes on what is still owed, not on the original
		// cost-derived principal.
		principal := unit.PrincipalFor(base)
		if unit.DebtStatus == domain.DebtStatusActive {
			principal = unit.RemainingDebt
		}

		var err error
		created, err = s.openPeriod(ctx, tx, unit, openPeriodParams{
			start:     utils.TruncateToDay(time.Now()),
			rate:      req.AnnualRate,
			base:      base,
			principal: principal,
			notes:     req.Notes,
			createdBy: req.CreatedBy,
		})
		if err != nil {
			return err
		}

		unit.StopInterestCalc = false
		unit.InterestStoppedAt = nil
		unit.InterestRate = req.AnnualRate.Div(hundred)
		unit.PrincipalBase = base
		if err := tx.Units().Update(ctx, unit); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx, unitID.String())
	return created, nil
}

// --- transaction-scoped helpers shared with the allocator ---

type openPeriodParams struct {
	start     time.Time
	rate      decimal.Decimal // percentage
	base      string
	principal decimal.Decimal
	notes     string
	createdBy string
}

func (s *FinancingService) openPeriod(ctx context.Context, tx repository.Tx, unit *domain.FinancedUnit, p openPeriodParams) (*domain.InterestPeriod, error) {
	period := &domain.InterestPeriod{
		ID:                 uuid.New(),
		UnitID:             unit.ID,
		StartDate:          utils.TruncateToDay(p.start),
		AnnualRate:         p.rate,
		PrincipalBase:      p.base,
		PrincipalAmount:    utils.RoundMoney(p.principal),
		CalculatedInterest: decimal.Zero,
		Notes:              p.notes,
		CreatedBy:          p.createdBy,
		CreatedAt:          time.Now().UTC(),
	}

	if err := tx.Periods().Create(ctx, period); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return period, nil
}

// closeOpenPeriod freezes a period through endDate inclusive. Interest and
// day count are computed from the period's own frozen principal and rate.
func (s *FinancingService) closeOpenPeriod(ctx context.Context, tx repository.Tx, period *domain.InterestPeriod, endDate time.Time) error {
	endDate = utils.TruncateToDay(endDate)
	days := utils.InclusiveDays(period.StartDate, endDate)

	period.EndDate = &endDate
	period.DaysCount = days
	period.CalculatedInterest = utils.RoundMoney(Accrue(period.PrincipalAmount, period.AnnualRate, days))

	if err := tx.Periods().Close(ctx, period); err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}

// stopInterest closes any open period as of stopDate and flags the unit.
// The period ends the day before the stop date, matching the live-accrual
// convention that the acting day itself has not yet accrued.
func (s *FinancingService) stopInterest(ctx context.Context, tx repository.Tx, unit *domain.FinancedUnit, stopDate time.Time) error {
	open, err := tx.Periods().GetOpenByUnitID(ctx, unit.ID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if open != nil {
		if err := s.closeOpenPeriod(ctx, tx, open, stopDate.AddDate(0, 0, -1)); err != nil {
			return err
		}
	}

	unit.StopInterestCalc = true
	unit.InterestStoppedAt = &stopDate
	if err := tx.Units().Update(ctx, unit); err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}

// rotateOnPartialPayment closes the open period at the payment date and opens
// a successor the next day on the reduced principal, inheriting rate and base
// from the closed period. A unit with no open period still gets a new period
// synthesized from its stored default rate; dropping interest tracking after
// a partial payment would silently lose accrual history.
func (s *FinancingService) rotateOnPartialPayment(ctx context.Context, tx repository.Tx, unit *domain.FinancedUnit, paymentDate time.Time, newPrincipal decimal.Decimal) error {
	open, err := tx.Periods().GetOpenByUnitID(ctx, unit.ID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	rate := unit.InterestRate.Mul(hundred)
	base := s.resolvePrincipalBase("", unit)
	if open != nil {
		rate = open.AnnualRate
		base = open.PrincipalBase
		if err := s.closeOpenPeriod(ctx, tx, open, paymentDate); err != nil {
			return err
		}
	}

	_, err = s.openPeriod(ctx, tx, unit, openPeriodParams{
		start:     paymentDate.AddDate(0, 0, 1),
		rate:      rate,
		base:      base,
		principal: newPrincipal,
		notes:     "principal reduced by debt payment",
	})
	return err
}

func (s *FinancingService) resolvePrincipalBase(requested string, unit *domain.FinancedUnit) string {
	if requested != "" {
		return requested
	}
	if unit.PrincipalBase != "" {
		return unit.PrincipalBase
	}
	return s.config.Business.DefaultPrincipalBase
}
