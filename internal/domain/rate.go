package domain

// FundScope is the scope identifier of the fund-level IRR, computed on base-currency amounts.
const FundScope = "FUND"

// RateResult represents a solved annualized discount rate for one scope
type RateResult struct {
	Scope      string // currency code, or FundScope
	Rate       float64
	Iterations int
}
