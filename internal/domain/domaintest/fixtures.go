// Package domaintest provides cashflow fixtures shared by the package tests.
package domaintest

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/aveongye/cst-case-study/internal/domain"
)

// Date parses an ISO date and panics on malformed input.
func Date(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Flow builds a cashflow from an ISO date and a decimal literal.
func Flow(date, amount, currency string) domain.Cashflow {
	return domain.Cashflow{
		Date:     Date(date),
		Amount:   decimal.RequireFromString(amount),
		Currency: currency,
	}
}

// QuarterEnds returns the quarter-end dates from first to last inclusive.
func QuarterEnds(first, last civil.Date) []civil.Date {
	var dates []civil.Date
	for d := first; !d.After(last); {
		dates = append(dates, d)
		// day 0 of month+4 is the last day of month+3
		d = civil.DateOf(time.Date(d.Year, d.Month+4, 0, 0, 0, 0, 0, time.UTC))
	}
	return dates
}

// LoanSeries is a five year 10% loan of 100m paying 2.5m each quarter:
// -100m on 2025-09-30, +2.5m on the 19 quarter ends 2025-12-31..2030-06-30
// and +100m on 2030-09-30.
func LoanSeries(currency string) []domain.Cashflow {
	series := []domain.Cashflow{Flow("2025-09-30", "-100000000", currency)}
	for _, d := range QuarterEnds(Date("2025-12-31"), Date("2030-06-30")) {
		series = append(series, domain.Cashflow{Date: d, Amount: decimal.NewFromInt(2500000), Currency: currency})
	}
	return append(series, Flow("2030-09-30", "100000000", currency))
}

// LoanRecords returns LoanSeries as fund rows. base converts a local
// amount to the base currency.
func LoanRecords(fund, currency, baseCurrency string, base func(decimal.Decimal) decimal.Decimal) []domain.CashflowRecord {
	series := LoanSeries(currency)
	records := make([]domain.CashflowRecord, len(series))
	for i, cf := range series {
		typ := domain.CashflowTypeInterest
		switch i {
		case 0:
			typ = domain.CashflowTypeInvestment
		case len(series) - 1:
			typ = domain.CashflowTypePrincipalRepayment
		}
		records[i] = domain.CashflowRecord{
			ID:            int64(i + 1),
			Fund:          fund,
			Date:          cf.Date,
			Type:          typ,
			LocalCurrency: currency,
			AmountLocal:   cf.Amount,
			AmountBase:    base(cf.Amount),
			BaseCurrency:  baseCurrency,
		}
	}
	return records
}
