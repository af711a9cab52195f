package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aveongye/cst-case-study/internal/domain"
	"github.com/aveongye/cst-case-study/internal/domain/domaintest"
)

func record(fund, date, amount string) domain.CashflowRecord {
	return domain.CashflowRecord{
		Fund:          fund,
		Date:          domaintest.Date(date),
		Type:          domain.CashflowTypeInterest,
		LocalCurrency: "GBP",
		AmountLocal:   decimal.RequireFromString(amount),
		AmountBase:    decimal.RequireFromString(amount),
		BaseCurrency:  "EUR",
	}
}

func TestCashflowRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCashflowRepository(
		record("Fund II", "2025-12-31", "5"),
		record("Fund I", "2026-03-31", "100"),
		record("Fund I", "2025-09-30", "-100"),
	)

	funds, err := repo.ListFunds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fund I", "Fund II"}, funds)

	rows, err := repo.ListByFund(ctx, "Fund I")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-09-30", rows[0].Date.String())
	assert.Equal(t, int64(3), rows[0].ID)
	assert.Equal(t, int64(2), rows[1].ID)

	_, err = repo.ListByFund(ctx, "Fund III")
	assert.ErrorIs(t, err, domain.ErrFundNotFound)
	assert.Contains(t, err.Error(), "Fund II")
}

func TestCashflowRepository_CreateKeepsIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewCashflowRepository()

	withID := record("Fund I", "2025-09-30", "-100")
	withID.ID = 10
	require.NoError(t, repo.Create(ctx, []domain.CashflowRecord{withID, record("Fund I", "2025-12-31", "110")}))

	rows, err := repo.ListByFund(ctx, "Fund I")
	require.NoError(t, err)
	assert.Equal(t, int64(10), rows[0].ID)
	assert.Equal(t, int64(11), rows[1].ID)
}

func TestResultRepository(t *testing.T) {
	repo := NewResultRepository()
	run := &domain.FundAnalytics{Fund: "Fund I"}

	require.NoError(t, repo.SaveRun(context.Background(), run))

	assert.Equal(t, []*domain.FundAnalytics{run}, repo.Runs())
}
