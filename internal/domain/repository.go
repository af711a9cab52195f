package domain

import "context"

// CashflowRepository defines the interface for cashflow persistence operations
type CashflowRepository interface {
	// ListFunds returns the distinct fund names, sorted
	ListFunds(ctx context.Context) ([]string, error)

	// ListByFund retrieves all cashflow rows of a fund ordered by date then ID
	// Returns an error wrapping ErrFundNotFound if the fund has no rows
	ListByFund(ctx context.Context, fund string) ([]CashflowRecord, error)

	// Create stores cashflow rows in a single unit of work
	Create(ctx context.Context, records []CashflowRecord) error
}

// ResultRepository defines the interface for analytics result persistence
type ResultRepository interface {
	// SaveRun stores a run with its rates, NAV schedules and hedge trades
	SaveRun(ctx context.Context, run *FundAnalytics) error
}
