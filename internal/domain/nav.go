package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// NavPoint represents the net asset value of one currency on one cashflow date.
// PreTransaction includes the cashflow occurring on Date; PostTransaction
// excludes it and is the present value of strictly later cashflows.
type NavPoint struct {
	Date            civil.Date
	PreTransaction  decimal.Decimal
	PostTransaction decimal.Decimal // PreTransaction - Cashflow
	Cashflow        decimal.Decimal
}

// BalancePoint represents the contractual position of one currency on one
// cashflow date. The present values are zero until joined with a NAV schedule.
type BalancePoint struct {
	Date                 civil.Date
	Cashflow             decimal.Decimal
	LoanReceivable       decimal.Decimal // outstanding principal, never negative
	CashOnHand           decimal.Decimal // cumulative positive cashflows received
	AccruedInterest      decimal.Decimal // interest still to be received, never negative
	ContractualValue     decimal.Decimal // LoanReceivable + CashOnHand + AccruedInterest
	FuturePresentValue   decimal.Decimal // NavPoint.PostTransaction on Date
	NetAssetPresentValue decimal.Decimal // FuturePresentValue + CashOnHand
}
