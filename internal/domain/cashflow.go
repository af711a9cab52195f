package domain

import (
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Cashflow represents a single dated amount in one currency.
// Negative amounts are outflows (investments), positive amounts are inflows.
type Cashflow struct {
	Date     civil.Date
	Amount   decimal.Decimal
	Currency string
}

// CheckChronological verifies that dates are strictly increasing.
// Returns an error wrapping ErrInconsistency naming the first offending index.
func CheckChronological(series []Cashflow) error {
	for i := 1; i < len(series); i++ {
		if !series[i-1].Date.Before(series[i].Date) {
			return fmt.Errorf("%w: date %s at index %d does not follow %s",
				ErrInconsistency, series[i].Date, i, series[i-1].Date)
		}
	}
	return nil
}

// HasSignChange reports whether the series holds at least one strictly
// negative and one strictly positive amount.
func HasSignChange(series []Cashflow) bool {
	var negative, positive bool
	for _, cf := range series {
		switch cf.Amount.Sign() {
		case -1:
			negative = true
		case 1:
			positive = true
		}
	}
	return negative && positive
}

// DistinctDates returns the number of distinct dates in the series.
func DistinctDates(series []Cashflow) int {
	seen := make(map[civil.Date]struct{}, len(series))
	for _, cf := range series {
		seen[cf.Date] = struct{}{}
	}
	return len(seen)
}

// Consolidate sums cashflows sharing a date and returns a new series sorted
// ascending by date. The input is not modified.
func Consolidate(flows []Cashflow) []Cashflow {
	byDate := make(map[civil.Date]decimal.Decimal, len(flows))
	currency := ""
	for _, cf := range flows {
		byDate[cf.Date] = byDate[cf.Date].Add(cf.Amount)
		if currency == "" {
			currency = cf.Currency
		}
	}

	series := make([]Cashflow, 0, len(byDate))
	for date, amount := range byDate {
		series = append(series, Cashflow{Date: date, Amount: amount, Currency: currency})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}
