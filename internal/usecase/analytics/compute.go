// Package analytics runs the IRR, NAV and hedge pipeline for every currency of a fund.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aveongye/cst-case-study/internal/domain"
	"github.com/aveongye/cst-case-study/internal/usecase/hedge"
	"github.com/aveongye/cst-case-study/internal/usecase/irr"
	"github.com/aveongye/cst-case-study/internal/usecase/nav"
)

// Compute runs the full pipeline on the validated records of one fund.
// Logic:
//  1. Split records by local currency and consolidate same-date flows
//  2. Solve one IRR per currency, and one for the fund on base amounts
//  3. Build the NAV schedule and contractual balances of every solved currency,
//     joining the discounted values into the balances
//  4. Propose and cross-check hedges for every currency except the base currency
//
// A failing scope is recorded in Failures and logged; other scopes complete.
// Only an empty fund, mixed base currencies or a cancelled context fail the call.
func Compute(ctx context.Context, fund string, records []domain.CashflowRecord, logger *zap.Logger) (*domain.FundAnalytics, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %q has no cashflows", domain.ErrFundNotFound, fund)
	}
	base, err := baseCurrency(records)
	if err != nil {
		return nil, err
	}

	byCurrency := groupByCurrency(records)
	series := make(map[string][]domain.Cashflow, len(byCurrency))
	for ccy, recs := range byCurrency {
		flows := make([]domain.Cashflow, len(recs))
		for i, r := range recs {
			flows[i] = r.Local()
		}
		series[ccy] = domain.Consolidate(flows)
	}

	fundFlows := make([]domain.Cashflow, len(records))
	for i, r := range records {
		fundFlows[i] = r.Base()
	}
	series[domain.FundScope] = domain.Consolidate(fundFlows)

	rates, failures, err := SolveRates(ctx, series)
	if err != nil {
		return nil, err
	}

	result := &domain.FundAnalytics{
		RunID:        uuid.New(),
		ComputedAt:   time.Now().UTC(),
		Fund:         fund,
		BaseCurrency: base,
		Balances:     make(map[string][]domain.BalancePoint, len(byCurrency)),
	}
	if r, ok := rates[domain.FundScope]; ok {
		result.FundRate = &r
		delete(rates, domain.FundScope)
	}
	delete(series, domain.FundScope)

	for _, ccy := range sortedKeys(rates) {
		result.CurrencyRates = append(result.CurrencyRates, rates[ccy])
	}

	solved := make(map[string][]domain.Cashflow, len(rates))
	for ccy := range rates {
		solved[ccy] = series[ccy]
		result.Balances[ccy] = nav.Balances(byCurrency[ccy])
	}

	schedules, navFailures := BuildSchedules(solved, rates)
	failures = append(failures, navFailures...)
	result.Schedules = schedules
	for ccy, points := range schedules {
		result.Balances[ccy] = nav.WithPresentValues(result.Balances[ccy], points)
	}

	trades, hedgeFailures := ProposeHedges(schedules, rates, base)
	failures = append(failures, hedgeFailures...)
	result.Trades = trades
	for _, t := range hedge.OffTenor(trades) {
		logger.Info("hedge roll is off the nominal tenor",
			zap.String("fund", fund),
			zap.String("pair", t.CurrencyPair()),
			zap.String("trade_date", t.TradeDate.String()),
			zap.String("delivery_date", t.DeliveryDate.String()),
			zap.Int("tenor_months", hedge.DefaultTenorMonths))
	}

	sort.SliceStable(failures, func(i, j int) bool { return failures[i].Scope < failures[j].Scope })
	result.Failures = failures

	for _, f := range failures {
		logger.Warn("analytics scope failed",
			zap.String("fund", fund),
			zap.String("scope", f.Scope),
			zap.Error(f.Err))
	}
	logger.Info("analytics computed",
		zap.String("fund", fund),
		zap.String("run_id", result.RunID.String()),
		zap.Int("currencies", len(result.CurrencyRates)),
		zap.Int("trades", len(result.Trades)),
		zap.Int("failures", len(result.Failures)))

	return result, nil
}

// SolveRates solves every scope of series concurrently. Each goroutine owns
// one slot of the outcome slice; nothing else is shared.
// The returned error is non-nil only when ctx is cancelled.
func SolveRates(ctx context.Context, series map[string][]domain.Cashflow) (map[string]domain.RateResult, []domain.ScopeFailure, error) {
	scopes := sortedKeys(series)

	type outcome struct {
		rate domain.RateResult
		err  error
	}
	outcomes := make([]outcome, len(scopes))

	g, gctx := errgroup.WithContext(ctx)
	for i, scope := range scopes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := irr.Solve(series[scope])
			if err != nil {
				outcomes[i] = outcome{err: fmt.Errorf("irr: %w", err)}
				return nil
			}
			outcomes[i] = outcome{rate: domain.RateResult{Scope: scope, Rate: res.Rate, Iterations: res.Iterations}}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	rates := make(map[string]domain.RateResult, len(scopes))
	var failures []domain.ScopeFailure
	for i, scope := range scopes {
		if outcomes[i].err != nil {
			failures = append(failures, domain.ScopeFailure{Scope: scope, Err: outcomes[i].err})
			continue
		}
		rates[scope] = outcomes[i].rate
	}
	return rates, failures, nil
}

// BuildSchedules builds the NAV schedule of every currency in series with
// that currency's own rate. A currency without a rate fails with ErrInconsistency.
func BuildSchedules(series map[string][]domain.Cashflow, rates map[string]domain.RateResult) (map[string][]domain.NavPoint, []domain.ScopeFailure) {
	schedules := make(map[string][]domain.NavPoint, len(series))
	var failures []domain.ScopeFailure
	for _, ccy := range sortedKeys(series) {
		rate, ok := rates[ccy]
		if !ok {
			failures = append(failures, domain.ScopeFailure{
				Scope: ccy,
				Err:   fmt.Errorf("nav: %w: no solved rate for %s", domain.ErrInconsistency, ccy),
			})
			continue
		}
		points, err := nav.Build(series[ccy], rate.Rate)
		if err != nil {
			failures = append(failures, domain.ScopeFailure{Scope: ccy, Err: fmt.Errorf("nav: %w", err)})
			continue
		}
		schedules[ccy] = points
	}
	return schedules, failures
}

// ProposeHedges proposes the rolling forwards of every non-base currency
// and cross-checks both notional formulations before accepting them.
// Trades are sorted by currency, then trade date.
func ProposeHedges(schedules map[string][]domain.NavPoint, rates map[string]domain.RateResult, base string) ([]domain.HedgeTrade, []domain.ScopeFailure) {
	trades := make([]domain.HedgeTrade, 0)
	var failures []domain.ScopeFailure
	for _, ccy := range sortedKeys(schedules) {
		if ccy == base {
			continue
		}
		rate, ok := rates[ccy]
		if !ok {
			failures = append(failures, domain.ScopeFailure{
				Scope: ccy,
				Err:   fmt.Errorf("hedge: %w: no solved rate for %s", domain.ErrInconsistency, ccy),
			})
			continue
		}
		if err := hedge.CrossCheck(schedules[ccy], rate.Rate); err != nil {
			failures = append(failures, domain.ScopeFailure{Scope: ccy, Err: fmt.Errorf("hedge: %w", err)})
			continue
		}
		proposed, err := hedge.Propose(ccy, base, schedules[ccy])
		if err != nil {
			failures = append(failures, domain.ScopeFailure{Scope: ccy, Err: fmt.Errorf("hedge: %w", err)})
			continue
		}
		trades = append(trades, proposed...)
	}
	return trades, failures
}

func baseCurrency(records []domain.CashflowRecord) (string, error) {
	base := records[0].BaseCurrency
	for _, r := range records[1:] {
		if r.BaseCurrency != base {
			return "", fmt.Errorf("%w: fund mixes base currencies %s and %s",
				domain.ErrInconsistency, base, r.BaseCurrency)
		}
	}
	return base, nil
}

func groupByCurrency(records []domain.CashflowRecord) map[string][]domain.CashflowRecord {
	groups := make(map[string][]domain.CashflowRecord)
	for _, r := range records {
		groups[r.LocalCurrency] = append(groups[r.LocalCurrency], r)
	}
	return groups
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
