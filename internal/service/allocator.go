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

// RegisterUnit records a financed unit as reported by the Stock module.
func (s *FinancingService) RegisterUnit(ctx context.Context, req *domain.RegisterUnitRequest) (*domain.FinancedUnit, error) {
	now := time.Now().UTC()

	base := req.PrincipalBase
	if base == "" {
		base = s.config.Business.DefaultPrincipalBase
	}

	unit := &domain.FinancedUnit{
		ID:                 uuid.New(),
		StockNumber:        req.StockNumber,
		OrderDate:          req.OrderDate,
		ArrivalDate:        req.ArrivalDate,
		BaseCost:           req.BaseCost,
		TransportCost:      req.TransportCost,
		AccessoryCost:      req.AccessoryCost,
		OtherCosts:         req.OtherCosts,
		InterestRate:       req.InterestRate,
		PrincipalBase:      base,
		FinanceProvider:    req.FinanceProvider,
		DebtAmount:         decimal.Zero,
		PaidDebtAmount:     decimal.Zero,
		PaidInterestAmount: decimal.Zero,
		RemainingDebt:      decimal.Zero,
		DebtStatus:         domain.DebtStatusNoDebt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.units.Create(ctx, unit); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateCaches(ctx, unit.ID.String())
	return unit, nil
}

// InitializeDebt activates the debt account. The amount defaults to the
// principal derived from the unit's cost fields and base policy.
func (s *FinancingService) InitializeDebt(ctx context.Context, unitID uuid.UUID, req *domain.InitializeDebtRequest) (*domain.FinancedUnit, error) {
	var updated *domain.FinancedUnit

	err := s.uow.WithUnit(ctx, unitID, func(tx repository.Tx, unit *domain.FinancedUnit) error {
		if unit.DebtStatus != domain.DebtStatusNoDebt {
			return customError.WrapDebtAlreadyActive(unitID.String())
		}

		amount := unit.PrincipalFor(s.resolvePrincipalBase("", unit))
		if req != nil && req.Amount != nil {
			amount = *req.Amount
		}
		if !amount.IsPositive() {
			return customError.WrapInvalidState(unitID.String(), "debt amount must be positive")
		}

		initializeDebtAccount(unit, amount)

		if err := tx.Units().Update(ctx, unit); err != nil {
			return customError.WrapDatabaseError(err)
		}
		updated = unit
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx, unitID.String())
	return updated, nil
}

func initializeDebtAccount(unit *domain.FinancedUnit, amount decimal.Decimal) {
	amount = utils.RoundMoney(amount)
	unit.DebtAmount = amount
	unit.RemainingDebt = amount
	unit.PaidDebtAmount = decimal.Zero
	unit.DebtStatus = domain.DebtStatusActive
}

// RecordDebtPayment allocates a cash payment between accrued interest and
// principal under the requested policy, records the immutable payment, and
// rotates or stops the period ledger. Everything runs in one transaction:
// either the payment, account update and ledger change all land, or none do.
func (s *FinancingService) RecordDebtPayment(ctx context.Context, unitID uuid.UUID, req *domain.RecordPaymentRequest) (*domain.PaymentResult, error) {
	if !req.Amount.IsPositive() {
		return nil, customError.WrapInvalidState(unitID.String(), "payment amount must be positive")
	}

	policy := req.Policy
	if policy == "" {
		policy = domain.PolicyAuto
	}

	var result *domain.PaymentResult

	err := s.uow.WithUnit(ctx, unitID, func(tx repository.Tx, unit *domain.FinancedUnit) error {
		if unit.DebtStatus == domain.DebtStatusPaidOff {
			return customError.WrapInvalidState(unitID.String(), "debt is paid off")
		}

		// A first payment against a provider-financed unit may initialize
		// the debt account implicitly.
		if unit.DebtStatus == domain.DebtStatusNoDebt {
			if !s.config.Business.DebtAutoInitialize || unit.FinanceProvider == nil {
				return customError.WrapInvalidState(unitID.String(), "no active debt")
			}
			principal := unit.PrincipalFor(s.resolvePrincipalBase("", unit))
			if !principal.IsPositive() {
				return customError.WrapInvalidState(unitID.String(), "cannot derive a debt principal from cost fields")
			}
			initializeDebtAccount(unit, principal)
			s.logger.Info().
				Str("unit_id", unitID.String()).
				Str("principal", unit.DebtAmount.String()).
				Msg("debt auto-initialized on first payment")
		}

		paymentDate := utils.TruncateToDay(time.Now())
		if req.PaymentDate != nil {
			paymentDate = utils.TruncateToDay(*req.PaymentDate)
		}

		periods, err := tx.Periods().ListByUnitID(ctx, unitID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		accrued := s.outstandingAccrued(unit, periods, paymentDate)

		allocation, err := allocate(unitID.String(), req.Amount, policy, unit.RemainingDebt, accrued)
		if err != nil {
			return err
		}

		principalBefore := unit.RemainingDebt

		unit.PaidDebtAmount = unit.PaidDebtAmount.Add(allocation.PrincipalPaid)
		unit.PaidInterestAmount = unit.PaidInterestAmount.Add(allocation.InterestPaid)
		unit.RemainingDebt = unit.RemainingDebt.Sub(allocation.PrincipalPaid)
		if unit.RemainingDebt.IsNegative() {
			unit.RemainingDebt = decimal.Zero
		}

		allocation.Payoff = unit.RemainingDebt.LessThanOrEqual(s.config.GetPayoffTolerance())

		payment := &domain.DebtPayment{
			ID:                       uuid.New(),
			UnitID:                   unitID,
			Amount:                   utils.RoundMoney(req.Amount),
			PaymentDate:              paymentDate,
			PaymentMethod:            req.PaymentMethod,
			Policy:                   policy,
			PrincipalBefore:          principalBefore,
			PrincipalAfter:           unit.RemainingDebt,
			AccruedInterestAtPayment: accrued,
			InterestPaid:             utils.RoundMoney(allocation.InterestPaid),
			PrincipalPaid:            utils.RoundMoney(allocation.PrincipalPaid),
			ReferenceNumber:          req.ReferenceNumber,
			Notes:                    req.Notes,
			CreatedAt:                time.Now().UTC(),
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return customError.WrapDatabaseError(err)
		}

		switch {
		case allocation.Payoff:
			unit.DebtStatus = domain.DebtStatusPaidOff
			unit.DebtPaidOffDate = &paymentDate
			// Terminal: accrual stops for good, no successor period.
			if err := s.stopInterest(ctx, tx, unit, paymentDate); err != nil {
				return err
			}
		case allocation.PrincipalPaid.IsPositive() && !unit.StopInterestCalc:
			if err := s.rotateOnPartialPayment(ctx, tx, unit, paymentDate, unit.RemainingDebt); err != nil {
				return err
			}
			if err := tx.Units().Update(ctx, unit); err != nil {
				return customError.WrapDatabaseError(err)
			}
		default:
			if err := tx.Units().Update(ctx, unit); err != nil {
				return customError.WrapDatabaseError(err)
			}
		}

		result = &domain.PaymentResult{
			Payment:    payment,
			Unit:       unit,
			Allocation: allocation,
			Payoff:     allocation.Payoff,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Payoff {
		s.logger.Info().
			Str("unit_id", unitID.String()).
			Str("payment_id", result.Payment.ID.String()).
			Msg("debt paid off")
	}

	s.invalidateCaches(ctx, unitID.String())
	return result, nil
}

// allocate splits a payment between interest and principal under a policy.
// AUTO is interest-first: principal is only touched once accrued interest is
// fully covered in the same payment.
func allocate(unitID string, amount decimal.Decimal, policy string, remainingDebt, accruedInterest decimal.Decimal) (domain.Allocation, error) {
	a := domain.Allocation{
		InterestPaid:             decimal.Zero,
		PrincipalPaid:            decimal.Zero,
		AccruedInterestAtPayment: accruedInterest,
	}

	switch policy {
	case domain.PolicyPrincipalOnly:
		if amount.GreaterThan(remainingDebt) {
			return a, customError.WrapAmountExceedsCeiling("remaining debt", amount, remainingDebt)
		}
		a.PrincipalPaid = amount

	case domain.PolicyInterestOnly:
		if amount.GreaterThan(accruedInterest) {
			return a, customError.WrapAmountExceedsCeiling("accrued interest", amount, accruedInterest)
		}
		a.InterestPaid = amount

	case domain.PolicyAuto:
		ceiling := remainingDebt.Add(accruedInterest)
		if amount.GreaterThan(ceiling) {
			return a, customError.WrapAmountExceedsCeiling("total payoff amount", amount, ceiling)
		}
		if amount.GreaterThanOrEqual(accruedInterest) {
			a.InterestPaid = accruedInterest
			a.PrincipalPaid = amount.Sub(accruedInterest)
		} else {
			a.InterestPaid = amount
		}

	default:
		return a, customError.WrapInvalidState(unitID, "unknown allocation policy "+policy)
	}

	return a, nil
}

// ListDebtPayments returns the unit's immutable payment history, newest first.
func (s *FinancingService) ListDebtPayments(ctx context.Context, unitID uuid.UUID) ([]*domain.DebtPayment, error) {
	if _, err := s.getUnit(ctx, unitID); err != nil {
		return nil, err
	}

	payments, err := s.payments.ListByUnitID(ctx, unitID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}
