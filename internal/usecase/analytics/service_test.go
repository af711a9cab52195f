package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aveongye/cst-case-study/internal/domain"
)

// MockCashflowRepository is a mock implementation of CashflowRepository for testing
type MockCashflowRepository struct {
	mock.Mock
}

func (m *MockCashflowRepository) ListFunds(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCashflowRepository) ListByFund(ctx context.Context, fund string) ([]domain.CashflowRecord, error) {
	args := m.Called(ctx, fund)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CashflowRecord), args.Error(1)
}

func (m *MockCashflowRepository) Create(ctx context.Context, records []domain.CashflowRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// MockResultRepository is a mock implementation of ResultRepository for testing
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) SaveRun(ctx context.Context, run *domain.FundAnalytics) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func TestRun_ComputesAndSaves(t *testing.T) {
	ctx := context.Background()
	cashflows := new(MockCashflowRepository)
	results := new(MockResultRepository)

	cashflows.On("ListByFund", ctx, "Fund I").Return(loanFund(), nil)
	results.On("SaveRun", ctx, mock.MatchedBy(func(run *domain.FundAnalytics) bool {
		return run.Fund == "Fund I" && len(run.Trades) == 20
	})).Return(nil)

	service := NewAnalyticsService(cashflows, results, nil)
	result, err := service.Run(ctx, "Fund I")

	require.NoError(t, err)
	assert.Len(t, result.CurrencyRates, 2)
	cashflows.AssertExpectations(t)
	results.AssertExpectations(t)
}

func TestRun_WithoutResultRepository(t *testing.T) {
	ctx := context.Background()
	cashflows := new(MockCashflowRepository)
	cashflows.On("ListByFund", ctx, "Fund I").Return(loanFund(), nil)

	service := NewAnalyticsService(cashflows, nil, nil)
	result, err := service.Run(ctx, "Fund I")

	require.NoError(t, err)
	assert.NotNil(t, result.FundRate)
}

func TestRun_FundNotFound(t *testing.T) {
	ctx := context.Background()
	cashflows := new(MockCashflowRepository)
	results := new(MockResultRepository)
	cashflows.On("ListByFund", ctx, "Fund X").Return(nil, domain.ErrFundNotFound)

	service := NewAnalyticsService(cashflows, results, nil)
	_, err := service.Run(ctx, "Fund X")

	assert.ErrorIs(t, err, domain.ErrFundNotFound)
	results.AssertNotCalled(t, "SaveRun", mock.Anything, mock.Anything)
}

func TestRun_SaveFails(t *testing.T) {
	ctx := context.Background()
	cashflows := new(MockCashflowRepository)
	results := new(MockResultRepository)
	cashflows.On("ListByFund", ctx, "Fund I").Return(loanFund(), nil)
	results.On("SaveRun", ctx, mock.Anything).Return(errors.New("disk full"))

	service := NewAnalyticsService(cashflows, results, nil)
	_, err := service.Run(ctx, "Fund I")

	assert.ErrorContains(t, err, "failed to save analytics run")
}

func TestListFunds(t *testing.T) {
	ctx := context.Background()
	cashflows := new(MockCashflowRepository)
	cashflows.On("ListFunds", ctx).Return([]string{"Fund I", "Fund II"}, nil)

	funds, err := NewAnalyticsService(cashflows, nil, nil).ListFunds(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"Fund I", "Fund II"}, funds)
}
