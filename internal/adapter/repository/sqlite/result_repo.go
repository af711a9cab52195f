package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aveongye/cst-case-study/internal/domain"
)

// resultRepository implements domain.ResultRepository
type resultRepository struct {
	db *DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *DB) domain.ResultRepository {
	return &resultRepository{db: db}
}

// SaveRun stores a run with its rates, NAV points, trades and failures in a database transaction
func (r *resultRepository) SaveRun(ctx context.Context, run *domain.FundAnalytics) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	var fundIRR interface{}
	if run.FundRate != nil {
		fundIRR = run.FundRate.Rate
	}
	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO analytics_runs (id, fund, base_currency, computed_at, fund_irr)
		VALUES (?, ?, ?, ?, ?)
	`, run.RunID.String(), run.Fund, run.BaseCurrency, run.ComputedAt.Format(time.RFC3339Nano), fundIRR)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, rate := range run.CurrencyRates {
		_, err = dbTx.ExecContext(ctx, `
			INSERT INTO currency_irrs (run_id, currency, irr, iterations) VALUES (?, ?, ?, ?)
		`, run.RunID.String(), rate.Scope, rate.Rate, rate.Iterations)
		if err != nil {
			return fmt.Errorf("failed to insert %s irr: %w", rate.Scope, err)
		}
	}

	for ccy, points := range run.Schedules {
		for _, p := range points {
			_, err = dbTx.ExecContext(ctx, `
				INSERT INTO nav_points (run_id, currency, date, cashflow, pre_transaction, post_transaction)
				VALUES (?, ?, ?, ?, ?, ?)
			`, run.RunID.String(), ccy, p.Date.String(), p.Cashflow.String(), p.PreTransaction.String(), p.PostTransaction.String())
			if err != nil {
				return fmt.Errorf("failed to insert %s nav point: %w", ccy, err)
			}
		}
	}

	for _, t := range run.Trades {
		_, err = dbTx.ExecContext(ctx, `
			INSERT INTO fx_forward_trades (run_id, id, currency_pair, trade_date, delivery_date, direction, notional_currency, notional_amount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, run.RunID.String(), t.ID.String(), t.CurrencyPair(), t.TradeDate.String(), t.DeliveryDate.String(),
			string(t.Direction), t.Currency, t.Notional.String())
		if err != nil {
			return fmt.Errorf("failed to insert trade: %w", err)
		}
	}

	for _, f := range run.Failures {
		_, err = dbTx.ExecContext(ctx, `
			INSERT INTO scope_failures (run_id, scope, error) VALUES (?, ?, ?)
		`, run.RunID.String(), f.Scope, f.Err.Error())
		if err != nil {
			return fmt.Errorf("failed to insert failure: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
