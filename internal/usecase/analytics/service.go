package analytics

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aveongye/cst-case-study/internal/domain"
)

// AnalyticsService loads a fund's cashflows, runs the pipeline and stores the result
type AnalyticsService struct {
	CashflowRepo domain.CashflowRepository
	ResultRepo   domain.ResultRepository // optional
	Logger       *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService instance.
// resultRepo may be nil when runs are not persisted.
func NewAnalyticsService(cashflowRepo domain.CashflowRepository, resultRepo domain.ResultRepository, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		CashflowRepo: cashflowRepo,
		ResultRepo:   resultRepo,
		Logger:       logger,
	}
}

// Run computes the analytics of a fund
// Logic:
//  1. Fetch the fund's cashflow rows
//  2. Compute rates, NAV schedules and hedges (see Compute)
//  3. Persist the run if a ResultRepo is configured
func (s *AnalyticsService) Run(ctx context.Context, fund string) (*domain.FundAnalytics, error) {
	records, err := s.CashflowRepo.ListByFund(ctx, fund)
	if err != nil {
		return nil, err
	}

	result, err := Compute(ctx, fund, records, s.Logger)
	if err != nil {
		return nil, err
	}

	if s.ResultRepo != nil {
		if err := s.ResultRepo.SaveRun(ctx, result); err != nil {
			return nil, fmt.Errorf("failed to save analytics run: %w", err)
		}
	}

	return result, nil
}

// ListFunds returns the funds available in the cashflow store
func (s *AnalyticsService) ListFunds(ctx context.Context) ([]string, error) {
	funds, err := s.CashflowRepo.ListFunds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	return funds, nil
}
