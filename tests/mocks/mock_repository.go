package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dealerdesk/financing-engine/internal/domain"
	"github.com/dealerdesk/financing-engine/internal/repository"
	customError "github.com/dealerdesk/financing-engine/pkg/errors"
)

type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) Create(ctx context.Context, unit *domain.FinancedUnit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FinancedUnit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancedUnit), args.Error(1)
}

func (m *MockUnitRepository) Update(ctx context.Context, unit *domain.FinancedUnit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) List(ctx context.Context) ([]*domain.FinancedUnit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FinancedUnit), args.Error(1)
}

type MockPeriodRepository struct {
	mock.Mock
}

func (m *MockPeriodRepository) Create(ctx context.Context, period *domain.InterestPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) Close(ctx context.Context, period *domain.InterestPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) GetOpenByUnitID(ctx context.Context, unitID uuid.UUID) (*domain.InterestPeriod, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InterestPeriod), args.Error(1)
}

func (m *MockPeriodRepository) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*domain.InterestPeriod, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.InterestPeriod), args.Error(1)
}

func (m *MockPeriodRepository) CountByUnitID(ctx context.Context, unitID uuid.UUID) (int, error) {
	args := m.Called(ctx, unitID)
	return args.Int(0), args.Error(1)
}

func (m *MockPeriodRepository) ListOpen(ctx context.Context) ([]*domain.InterestPeriod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.InterestPeriod), args.Error(1)
}

func (m *MockPeriodRepository) ClosedInterestTotals(ctx context.Context) ([]*domain.UnitInterestTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UnitInterestTotal), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.DebtPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*domain.DebtPayment, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DebtPayment), args.Error(1)
}

func (m *MockPaymentRepository) StatsByUnitID(ctx context.Context, unitID uuid.UUID) (*domain.PaymentStats, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentStats), args.Error(1)
}

// MockTx bundles the repository mocks as a transaction.
type MockTx struct {
	UnitRepo    *MockUnitRepository
	PeriodRepo  *MockPeriodRepository
	PaymentRepo *MockPaymentRepository
}

func NewMockTx() *MockTx {
	return &MockTx{
		UnitRepo:    new(MockUnitRepository),
		PeriodRepo:  new(MockPeriodRepository),
		PaymentRepo: new(MockPaymentRepository),
	}
}

func (t *MockTx) Units() repository.UnitRepository       { return t.UnitRepo }
func (t *MockTx) Periods() repository.PeriodRepository   { return t.PeriodRepo }
func (t *MockTx) Payments() repository.PaymentRepository { return t.PaymentRepo }

// StubUnitOfWork runs the unit-of-work function against an in-memory unit,
// standing in for the database transaction.
type StubUnitOfWork struct {
	Tx   *MockTx
	Unit *domain.FinancedUnit
	Err  error
}

func (u *StubUnitOfWork) WithUnit(ctx context.Context, unitID uuid.UUID, fn func(tx repository.Tx, unit *domain.FinancedUnit) error) error {
	if u.Err != nil {
		return u.Err
	}
	if u.Unit == nil {
		return customError.WrapUnitNotFound(unitID.String())
	}
	return fn(u.Tx, u.Unit)
}
