package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/dealerdesk/financing-engine/internal/domain"
	customError "github.com/dealerdesk/financing-engine/pkg/errors"
	"github.com/dealerdesk/financing-engine/pkg/utils"
)

func (s *FinancingService) getUnit(ctx context.Context, unitID uuid.UUID) (*domain.FinancedUnit, error) {
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUnitNotFound(unitID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return unit, nil
}

// GetDebtSummary is the read-only aggregation of a unit's debt account and
// interest accrual as of now. Cached briefly; every mutation invalidates.
func (s *FinancingService) GetDebtSummary(ctx context.Context, unitID uuid.UUID) (*domain.DebtSummaryView, error) {
	cacheKey := cacheKeySummaryPrefix + unitID.String()
	var cached domain.DebtSummaryView
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	unit, err := s.getUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}

	summary, err := s.buildSummary(ctx, unit)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKey, summary, s.config.Business.SummaryCacheTTL)
	return summary, nil
}

func (s *FinancingService) buildSummary(ctx context.Context, unit *domain.FinancedUnit) (*domain.DebtSummaryView, error) {
	periods, err := s.periods.ListByUnitID(ctx, unit.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	stats, err := s.payments.StatsByUnitID(ctx, unit.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	accrued := s.outstandingAccrued(unit, periods, time.Now())

	return &domain.DebtSummaryView{
		UnitID:               unit.ID.String(),
		DebtAmount:           unit.DebtAmount,
		PaidDebtAmount:       unit.PaidDebtAmount,
		PaidInterestAmount:   unit.PaidInterestAmount,
		RemainingDebt:        unit.RemainingDebt,
		TotalAccruedInterest: unit.PaidInterestAmount.Add(accrued),
		AccruedInterest:      accrued,
		TotalPayoffAmount:    unit.RemainingDebt.Add(accrued),
		DebtStatus:           unit.DebtStatus,
		PaymentCount:         stats.Count,
		LastPaymentDate:      stats.LastPaymentDate,
	}, nil
}

// GetStockInterestDetail returns the unit, its summary and full period
// history for the stock detail screen.
func (s *FinancingService) GetStockInterestDetail(ctx context.Context, unitID uuid.UUID) (*domain.StockInterestDetail, error) {
	unit, err := s.getUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}

	summary, err := s.buildSummary(ctx, unit)
	if err != nil {
		return nil, err
	}

	periods, err := s.periods.ListByUnitID(ctx, unitID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.StockInterestDetail{
		Unit:    unit,
		Summary: summary,
		Periods: periods,
	}, nil
}

// GetInterestStats aggregates accrual state across all units for dashboards.
func (s *FinancingService) GetInterestStats(ctx context.Context) (*domain.InterestStats, error) {
	var cached domain.InterestStats
	if s.cacheGet(ctx, cacheKeyInterestStats, &cached) {
		return &cached, nil
	}

	stats, err := s.computeInterestStats(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKeyInterestStats, stats, s.config.Business.StatsCacheTTL)
	return stats, nil
}

func (s *FinancingService) computeInterestStats(ctx context.Context) (*domain.InterestStats, error) {
	units, err := s.units.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	openPeriods, err := s.periods.ListOpen(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	openByUnit := make(map[uuid.UUID]*domain.InterestPeriod, len(openPeriods))
	for _, p := range openPeriods {
		openByUnit[p.UnitID] = p
	}

	closedTotals, err := s.periods.ClosedInterestTotals(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	closedByUnit := make(map[uuid.UUID]decimal.Decimal, len(closedTotals))
	for _, t := range closedTotals {
		closedByUnit[t.UnitID] = t.Total
	}

	now := time.Now()
	stats := &domain.InterestStats{
		TotalAccruedInterest: decimal.Zero,
		OutstandingInterest:  decimal.Zero,
		TotalPaidInterest:    decimal.Zero,
		GeneratedAt:          now.UTC(),
	}

	for _, unit := range units {
		if unit.StopInterestCalc {
			stats.StoppedUnits++
		}

		open, hasOpen := openByUnit[unit.ID]
		closed, hasClosed := closedByUnit[unit.ID]
		if hasOpen {
			stats.AccruingUnits++
		}

		var outstanding decimal.Decimal
		if hasOpen || hasClosed {
			total := closed
			if hasOpen {
				total = total.Add(LiveInterest(open, now))
			}
			outstanding = total.Sub(unit.PaidInterestAmount)
			if outstanding.IsNegative() {
				outstanding = decimal.Zero
			}
			outstanding = utils.RoundMoney(outstanding)
		} else {
			outstanding = s.outstandingAccrued(unit, nil, now)
		}

		stats.OutstandingInterest = stats.OutstandingInterest.Add(outstanding)
		stats.TotalPaidInterest = stats.TotalPaidInterest.Add(unit.PaidInterestAmount)
	}

	stats.TotalAccruedInterest = stats.TotalPaidInterest.Add(stats.OutstandingInterest)
	return stats, nil
}

// GetDebtStats aggregates debt accounts across all units for dashboards.
func (s *FinancingService) GetDebtStats(ctx context.Context) (*domain.DebtStats, error) {
	var cached domain.DebtStats
	if s.cacheGet(ctx, cacheKeyDebtStats, &cached) {
		return &cached, nil
	}

	stats, err := s.computeDebtStats(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKeyDebtStats, stats, s.config.Business.StatsCacheTTL)
	return stats, nil
}

func (s *FinancingService) computeDebtStats(ctx context.Context) (*domain.DebtStats, error) {
	units, err := s.units.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	stats := &domain.DebtStats{
		TotalDebtAmount:    decimal.Zero,
		TotalRemainingDebt: decimal.Zero,
		TotalPaidDebt:      decimal.Zero,
		GeneratedAt:        time.Now().UTC(),
	}

	for _, unit := range units {
		switch unit.DebtStatus {
		case domain.DebtStatusActive:
			stats.ActiveDebts++
		case domain.DebtStatusPaidOff:
			stats.PaidOffDebts++
		default:
			stats.NoDebtUnits++
		}

		stats.TotalDebtAmount = stats.TotalDebtAmount.Add(unit.DebtAmount)
		stats.TotalRemainingDebt = stats.TotalRemainingDebt.Add(unit.RemainingDebt)
		stats.TotalPaidDebt = stats.TotalPaidDebt.Add(unit.PaidDebtAmount)
	}

	return stats, nil
}

// RefreshStatsCaches recomputes and warms the dashboard caches. Called by the
// scheduler; also flags stopped units still carrying unpaid interest.
func (s *FinancingService) RefreshStatsCaches(ctx context.Context) error {
	interestStats, err := s.computeInterestStats(ctx)
	if err != nil {
		return err
	}
	s.cacheSet(ctx, cacheKeyInterestStats, interestStats, s.config.Business.StatsCacheTTL)

	debtStats, err := s.computeDebtStats(ctx)
	if err != nil {
		return err
	}
	s.cacheSet(ctx, cacheKeyDebtStats, debtStats, s.config.Business.StatsCacheTTL)

	units, err := s.units.List(ctx)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	now := time.Now()
	for _, unit := range units {
		if !unit.StopInterestCalc {
			continue
		}
		periods, err := s.periods.ListByUnitID(ctx, unit.ID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if outstanding := s.outstandingAccrued(unit, periods, now); outstanding.IsPositive() {
			s.logger.Warn().
				Str("unit_id", unit.ID.String()).
				Str("outstanding_interest", outstanding.StringFixed(2)).
				Msg("stopped unit still carries unpaid interest")
		}
	}

	return nil
}

func (s *FinancingService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.redis == nil {
		return false
	}
	raw, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt")
		return false
	}
	return true
}

func (s *FinancingService) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := s.redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
