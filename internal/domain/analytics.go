package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScopeFailure records why one scope of an analytics run produced no result.
type ScopeFailure struct {
	Scope string
	Err   error
}

// FundAnalytics is the complete output of one analytics run for a fund.
// Scopes that failed are listed in Failures and are absent from the other fields.
type FundAnalytics struct {
	RunID         uuid.UUID
	ComputedAt    time.Time
	Fund          string
	BaseCurrency  string
	CurrencyRates []RateResult // sorted by currency
	FundRate      *RateResult  // nil if the fund-level solve failed
	Schedules     map[string][]NavPoint
	Balances      map[string][]BalancePoint
	Trades        []HedgeTrade // sorted by currency, then trade date
	Failures      []ScopeFailure
}

// Currencies returns the currencies that have a NAV schedule, in rate order.
func (a *FundAnalytics) Currencies() []string {
	out := make([]string, 0, len(a.CurrencyRates))
	for _, r := range a.CurrencyRates {
		if _, ok := a.Schedules[r.Scope]; ok {
			out = append(out, r.Scope)
		}
	}
	return out
}

// Rate returns the solved rate of a scope.
func (a *FundAnalytics) Rate(scope string) (RateResult, bool) {
	if scope == FundScope && a.FundRate != nil {
		return *a.FundRate, true
	}
	for _, r := range a.CurrencyRates {
		if r.Scope == scope {
			return r, true
		}
	}
	return RateResult{}, false
}
