package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dealerdesk/financing-engine/internal/config"
	"github.com/dealerdesk/financing-engine/internal/domain"
	"github.com/dealerdesk/financing-engine/internal/repository"
	"github.com/dealerdesk/financing-engine/pkg/utils"
)

// Cache keys
const (
	cacheKeyInterestStats = "stats:interest"
	cacheKeyDebtStats     = "stats:debt"
	cacheKeySummaryPrefix = "unit:summary:"
)

// FinancingService is the inventory-financing core: interest period ledger,
// debt account, payment allocator and summary reporter. It is stateless; all
// state lives in the persisted entities.
type FinancingService struct {
	uow      repository.UnitOfWork
	units    repository.UnitRepository
	periods  repository.PeriodRepository
	payments repository.PaymentRepository
	redis    *redis.Client
	config   *config.Config
	logger   zerolog.Logger
}

func NewFinancingService(
	uow repository.UnitOfWork,
	units repository.UnitRepository,
	periods repository.PeriodRepository,
	payments repository.PaymentRepository,
	redisClient *redis.Client,
	cfg *config.Config,
	logger zerolog.Logger,
) *FinancingService {
	return &FinancingService{
		uow:      uow,
		units:    units,
		periods:  periods,
		payments: payments,
		redis:    redisClient,
		config:   cfg,
		logger:   logger,
	}
}

// outstandingAccrued is the unit's accrued-but-unpaid interest as of a date.
// With period history it is frozen closed interest plus the live open period,
// less interest already paid, floored at zero. Without any periods it falls
// back to simple interest on the remaining debt since the accrual start date;
// that fallback yields zero for stopped or debt-free units, which have no
// accrual basis on record.
func (s *FinancingService) outstandingAccrued(unit *domain.FinancedUnit, periods []*domain.InterestPeriod, asOf time.Time) decimal.Decimal {
	if len(periods) > 0 {
		total := accruedFromPeriods(periods, asOf)
		outstanding := total.Sub(unit.PaidInterestAmount)
		if outstanding.IsNegative() {
			outstanding = decimal.Zero
		}
		return utils.RoundMoney(outstanding)
	}

	if unit.StopInterestCalc || unit.DebtStatus != domain.DebtStatusActive {
		return decimal.Zero
	}

	days := utils.DaysBetween(utils.TruncateToDay(unit.AccrualStartDate()), utils.TruncateToDay(asOf))
	outstanding := Accrue(unit.RemainingDebt, unit.InterestRate.Mul(hundred), days).Sub(unit.PaidInterestAmount)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return utils.RoundMoney(outstanding)
}

// invalidateCaches drops every cache entry a mutation on the unit can stale.
// Cache failures are logged, never surfaced; the database is authoritative.
func (s *FinancingService) invalidateCaches(ctx context.Context, unitID string) {
	if s.redis == nil {
		return
	}
	keys := []string{
		cacheKeySummaryPrefix + unitID,
		cacheKeyInterestStats,
		cacheKeyDebtStats,
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Str("unit_id", unitID).Msg("cache invalidation failed")
	}
}
