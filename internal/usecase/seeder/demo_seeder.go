package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/aveongye/cst-case-study/internal/domain"
)

// DemoFundName is the fund written by DemoSeeder
const DemoFundName = "Demo Fund"

// Sleeve defines one bullet loan of the demonstration fund: the principal
// goes out on Start, a fixed coupon comes back each quarter end and the
// principal is repaid on Maturity.
type Sleeve struct {
	Currency  string
	Principal decimal.Decimal
	Coupon    decimal.Decimal
	ToBase    decimal.Decimal // local to base conversion rate
	Start     civil.Date
	Maturity  civil.Date
}

// DemoSleeves are the loans of the demonstration fund
var DemoSleeves = []Sleeve{
	{
		Currency:  "GBP",
		Principal: decimal.NewFromInt(100000000),
		Coupon:    decimal.NewFromInt(2500000),
		ToBase:    decimal.RequireFromString("1.15"),
		Start:     civil.Date{Year: 2025, Month: time.September, Day: 30},
		Maturity:  civil.Date{Year: 2030, Month: time.September, Day: 30},
	},
	{
		Currency:  "EUR",
		Principal: decimal.NewFromInt(50000000),
		Coupon:    decimal.NewFromInt(1000000),
		ToBase:    decimal.NewFromInt(1),
		Start:     civil.Date{Year: 2025, Month: time.December, Day: 31},
		Maturity:  civil.Date{Year: 2029, Month: time.December, Day: 31},
	},
	{
		Currency:  "USD",
		Principal: decimal.NewFromInt(75000000),
		Coupon:    decimal.NewFromInt(1500000),
		ToBase:    decimal.RequireFromString("0.86"),
		Start:     civil.Date{Year: 2026, Month: time.March, Day: 31},
		Maturity:  civil.Date{Year: 2031, Month: time.March, Day: 31},
	},
}

// DemoSeeder handles seeding of the demonstration fund
type DemoSeeder struct {
	repo   domain.CashflowRepository
	policy domain.CurrencyPolicy
	logger *zap.Logger
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(repo domain.CashflowRepository, policy domain.CurrencyPolicy, logger *zap.Logger) *DemoSeeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DemoSeeder{
		repo:   repo,
		policy: policy,
		logger: logger,
	}
}

// Seed ensures the demonstration fund exists in the store
// If the fund already has rows, no action is taken
func (s *DemoSeeder) Seed(ctx context.Context) error {
	existing, err := s.repo.ListByFund(ctx, DemoFundName)
	switch {
	case err == nil && len(existing) > 0:
		s.logger.Debug("demo fund already seeded", zap.Int("rows", len(existing)))
		return nil
	case err != nil && !errors.Is(err, domain.ErrFundNotFound):
		return fmt.Errorf("failed to look up demo fund: %w", err)
	}

	records := DemoRecords(s.policy.Base)
	if err := domain.ValidateAll(records, s.policy); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, records); err != nil {
		return fmt.Errorf("failed to seed demo fund: %w", err)
	}
	s.logger.Info("demo fund seeded", zap.String("fund", DemoFundName), zap.Int("rows", len(records)))
	return nil
}

// DemoRecords returns the rows of every demo sleeve, numbered from 1
func DemoRecords(base string) []domain.CashflowRecord {
	if base == "" {
		base = "EUR"
	}
	var records []domain.CashflowRecord
	for _, sleeve := range DemoSleeves {
		records = append(records, sleeve.records(base)...)
	}
	for i := range records {
		records[i].ID = int64(i + 1)
	}
	return records
}

func (s Sleeve) records(base string) []domain.CashflowRecord {
	row := func(date civil.Date, typ domain.CashflowType, amount decimal.Decimal) domain.CashflowRecord {
		return domain.CashflowRecord{
			Fund:          DemoFundName,
			Date:          date,
			Type:          typ,
			LocalCurrency: s.Currency,
			AmountLocal:   amount,
			AmountBase:    amount.Mul(s.ToBase).Round(2),
			BaseCurrency:  base,
		}
	}

	out := []domain.CashflowRecord{row(s.Start, domain.CashflowTypeInvestment, s.Principal.Neg())}
	for d := nextQuarterEnd(s.Start); d.Before(s.Maturity); d = nextQuarterEnd(d) {
		out = append(out, row(d, domain.CashflowTypeInterest, s.Coupon))
	}
	return append(out, row(s.Maturity, domain.CashflowTypePrincipalRepayment, s.Principal))
}

// nextQuarterEnd returns the last day of the month three months after d's month
func nextQuarterEnd(d civil.Date) civil.Date {
	return civil.DateOf(time.Date(d.Year, d.Month+4, 0, 0, 0, 0, 0, time.UTC))
}
