package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dealerdesk/financing-engine/internal/domain"
	customError "github.com/dealerdesk/financing-engine/pkg/errors"
	"github.com/dealerdesk/financing-engine/pkg/utils"
	"github.com/dealerdesk/financing-engine/tests/mocks"
)

func closedPeriod(unitID uuid.UUID, start, end time.Time, interest decimal.Decimal) *domain.InterestPeriod {
	return &domain.InterestPeriod{
		ID:                 uuid.New(),
		UnitID:             unitID,
		StartDate:          start,
		EndDate:            &end,
		AnnualRate:         decimal.NewFromFloat(7.3),
		PrincipalBase:      domain.PrincipalBaseCostOnly,
		PrincipalAmount:    decimal.NewFromInt(200000),
		CalculatedInterest: interest,
		DaysCount:          utils.InclusiveDays(start, end),
	}
}

func TestGetDebtSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates account and frozen ledger", func(t *testing.T) {
		tx := mocks.NewMockTx()
		unit := activeUnit()
		unit.DebtAmount = decimal.NewFromInt(1000000)
		unit.PaidDebtAmount = decimal.NewFromInt(800000)
		unit.RemainingDebt = decimal.NewFromInt(200000)
		unit.PaidInterestAmount = decimal.NewFromInt(10000)
		svc := newTestService(tx, unit)

		last := date(2025, 6, 1)
		tx.UnitRepo.On("GetByID", mock.Anything, unit.ID).Return(unit, nil)
		tx.PeriodRepo.On("ListByUnitID", mock.Anything, unit.ID).Return([]*domain.InterestPeriod{
			closedPeriod(unit.ID, date(2025, 1, 1), date(2025, 3, 2), decimal.NewFromInt(12000)),
		}, nil)
		tx.PaymentRepo.On("StatsByUnitID", mock.Anything, unit.ID).Return(&domain.PaymentStats{
			Count:           3,
			LastPaymentDate: &last,
		}, nil)

		summary, err := svc.GetDebtSummary(ctx, unit.ID)

		assert.NoError(t, err)
		assert.True(t, summary.AccruedInterest.Equal(decimal.NewFromInt(2000)), "outstanding: %s", summary.AccruedInterest)
		assert.True(t, summary.TotalAccruedInterest.Equal(decimal.NewFromInt(12000)))
		assert.True(t, summary.TotalPayoffAmount.Equal(decimal.NewFromInt(202000)))
		assert.True(t, summary.RemainingDebt.Equal(decimal.NewFromInt(200000)))
		assert.Equal(t, 3, summary.PaymentCount)
		assert.Equal(t, &last, summary.LastPaymentDate)
	})

	t.Run("reconciles paid and outstanding with a live period", func(t *testing.T) {
		tx := mocks.NewMockTx()
		unit := activeUnit()
		unit.RemainingDebt = decimal.NewFromInt(200000)
		unit.PaidInterestAmount = decimal.NewFromInt(10000)
		svc := newTestService(tx, unit)

		// 200,000 at 7.3% accrues exactly 40 per day.
		start := utils.TruncateToDay(time.Now()).AddDate(0, 0, -50)
		open := &domain.InterestPeriod{
			ID:              uuid.New(),
			UnitID:          unit.ID,
			StartDate:       start,
			AnnualRate:      decimal.NewFromFloat(7.3),
			PrincipalAmount: decimal.NewFromInt(200000),
		}

		tx.UnitRepo.On("GetByID", mock.Anything, unit.ID).Return(unit, nil)
		tx.PeriodRepo.On("ListByUnitID", mock.Anything, unit.ID).Return([]*domain.InterestPeriod{
			closedPeriod(unit.ID, date(2025, 1, 1), date(2025, 3, 2), decimal.NewFromInt(12000)),
			open,
		}, nil)
		tx.PaymentRepo.On("StatsByUnitID", mock.Anything, unit.ID).Return(&domain.PaymentStats{Count: 1}, nil)

		summary, err := svc.GetDebtSummary(ctx, unit.ID)

		assert.NoError(t, err)
		// 12,000 closed + 50 or 51 live days x 40 - 10,000 paid
		assert.True(t, summary.AccruedInterest.GreaterThanOrEqual(decimal.NewFromInt(4000)))
		assert.True(t, summary.AccruedInterest.LessThanOrEqual(decimal.NewFromInt(4040)))
		assert.True(t, summary.TotalAccruedInterest.Equal(unit.PaidInterestAmount.Add(summary.AccruedInterest)))
		assert.True(t, summary.TotalPayoffAmount.Equal(unit.RemainingDebt.Add(summary.AccruedInterest)))
	})

	t.Run("stopped unit with no periods accrues nothing", func(t *testing.T) {
		tx := mocks.NewMockTx()
		unit := activeUnit()
		unit.StopInterestCalc = true
		unit.RemainingDebt = decimal.NewFromInt(200000)
		svc := newTestService(tx, unit)

		tx.UnitRepo.On("GetByID", mock.Anything, unit.ID).Return(unit, nil)
		tx.PeriodRepo.On("ListByUnitID", mock.Anything, unit.ID).Return([]*domain.InterestPeriod{}, nil)
		tx.PaymentRepo.On("StatsByUnitID", mock.Anything, unit.ID).Return(&domain.PaymentStats{}, nil)

		summary, err := svc.GetDebtSummary(ctx, unit.ID)

		assert.NoError(t, err)
		assert.True(t, summary.AccruedInterest.IsZero())
		assert.True(t, summary.TotalPayoffAmount.Equal(unit.RemainingDebt))
	})

	t.Run("unknown unit", func(t *testing.T) {
		tx := mocks.NewMockTx()
		svc := newTestService(tx, nil)
		unitID := uuid.New()

		tx.UnitRepo.On("GetByID", mock.Anything, unitID).Return(nil, sql.ErrNoRows)

		_, err := svc.GetDebtSummary(ctx, unitID)

		assert.ErrorIs(t, err, customError.ErrUnitNotFound)
	})
}

func TestGetStockInterestDetail(t *testing.T) {
	tx := mocks.NewMockTx()
	unit := activeUnit()
	unit.RemainingDebt = decimal.NewFromInt(200000)
	svc := newTestService(tx, unit)

	periods := []*domain.InterestPeriod{
		closedPeriod(unit.ID, date(2025, 1, 1), date(2025, 3, 2), decimal.NewFromInt(12000)),
	}
	tx.UnitRepo.On("GetByID", mock.Anything, unit.ID).Return(unit, nil)
	tx.PeriodRepo.On("ListByUnitID", mock.Anything, unit.ID).Return(periods, nil)
	tx.PaymentRepo.On("StatsByUnitID", mock.Anything, unit.ID).Return(&domain.PaymentStats{}, nil)

	detail, err := svc.GetStockInterestDetail(context.Background(), unit.ID)

	assert.NoError(t, err)
	assert.Equal(t, unit, detail.Unit)
	assert.Len(t, detail.Periods, 1)
	assert.True(t, detail.Summary.TotalAccruedInterest.Equal(decimal.NewFromInt(12000)))
}

func TestGetInterestStats(t *testing.T) {
	tx := mocks.NewMockTx()
	svc := newTestService(tx, nil)

	settled := activeUnit()
	settled.PaidInterestAmount = decimal.NewFromInt(10000)

	stopped := activeUnit()
	stopped.StopInterestCalc = true
	stopped.PaidInterestAmount = decimal.NewFromInt(5000)

	accruing := activeUnit()
	open := &domain.InterestPeriod{
		ID:              uuid.New(),
		UnitID:          accruing.ID,
		StartDate:       utils.TruncateToDay(time.Now()).AddDate(0, 0, -10),
		AnnualRate:      decimal.NewFromFloat(7.3),
		PrincipalAmount: decimal.NewFromInt(200000),
	}

	tx.UnitRepo.On("List", mock.Anything).Return([]*domain.FinancedUnit{settled, stopped, accruing}, nil)
	tx.PeriodRepo.On("ListOpen", mock.Anything).Return([]*domain.InterestPeriod{open}, nil)
	tx.PeriodRepo.On("ClosedInterestTotals", mock.Anything).Return([]*domain.UnitInterestTotal{
		{UnitID: settled.ID, Total: decimal.NewFromInt(12000)},
	}, nil)

	stats, err := svc.GetInterestStats(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.AccruingUnits)
	assert.Equal(t, 1, stats.StoppedUnits)
	assert.True(t, stats.TotalPaidInterest.Equal(decimal.NewFromInt(15000)))
	// settled owes 2,000; the accruing unit owes 10 or 11 days x 40
	assert.True(t, stats.OutstandingInterest.GreaterThanOrEqual(decimal.NewFromInt(2400)))
	assert.True(t, stats.OutstandingInterest.LessThanOrEqual(decimal.NewFromInt(2440)))
	assert.True(t, stats.TotalAccruedInterest.Equal(stats.TotalPaidInterest.Add(stats.OutstandingInterest)))
}

func TestGetDebtStats(t *testing.T) {
	tx := mocks.NewMockTx()
	svc := newTestService(tx, nil)

	active := activeUnit()
	active.DebtAmount = decimal.NewFromInt(1000000)
	active.PaidDebtAmount = decimal.NewFromInt(400000)
	active.RemainingDebt = decimal.NewFromInt(600000)

	paidOff := activeUnit()
	paidOff.DebtStatus = domain.DebtStatusPaidOff
	paidOff.DebtAmount = decimal.NewFromInt(500000)
	paidOff.PaidDebtAmount = decimal.NewFromInt(500000)
	paidOff.RemainingDebt = decimal.Zero

	noDebt := activeUnit()
	noDebt.DebtStatus = domain.DebtStatusNoDebt
	noDebt.DebtAmount = decimal.Zero
	noDebt.PaidDebtAmount = decimal.Zero
	noDebt.RemainingDebt = decimal.Zero

	tx.UnitRepo.On("List", mock.Anything).Return([]*domain.FinancedUnit{active, paidOff, noDebt}, nil)

	stats, err := svc.GetDebtStats(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.ActiveDebts)
	assert.Equal(t, 1, stats.PaidOffDebts)
	assert.Equal(t, 1, stats.NoDebtUnits)
	assert.True(t, stats.TotalDebtAmount.Equal(decimal.NewFromInt(1500000)))
	assert.True(t, stats.TotalRemainingDebt.Equal(decimal.NewFromInt(600000)))
	assert.True(t, stats.TotalPaidDebt.Equal(decimal.NewFromInt(900000)))
}

func TestRefreshStatsCaches(t *testing.T) {
	tx := mocks.NewMockTx()
	svc := newTestService(tx, nil)

	stopped := activeUnit()
	stopped.StopInterestCalc = true

	tx.UnitRepo.On("List", mock.Anything).Return([]*domain.FinancedUnit{stopped}, nil)
	tx.PeriodRepo.On("ListOpen", mock.Anything).Return([]*domain.InterestPeriod{}, nil)
	tx.PeriodRepo.On("ClosedInterestTotals", mock.Anything).Return([]*domain.UnitInterestTotal{}, nil)
	tx.PeriodRepo.On("ListByUnitID", mock.Anything, stopped.ID).Return([]*domain.InterestPeriod{
		closedPeriod(stopped.ID, date(2025, 1, 1), date(2025, 3, 2), decimal.NewFromInt(12000)),
	}, nil)

	err := svc.RefreshStatsCaches(context.Background())

	assert.NoError(t, err)
	tx.PeriodRepo.AssertExpectations(t)
}
