package nav

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/aveongye/cst-case-study/internal/domain"
)

// Balances returns the undiscounted contractual position of one currency on
// each of its cashflow dates, using the local amounts of the records.
// Logic, per date in ascending order:
//  1. Investments (negative) add their absolute value to the loan receivable
//  2. Principal repayments (positive) reduce it, floored at zero
//  3. Positive cashflows accumulate into cash on hand
//  4. Interest received reduces the interest still to be received, floored at zero
func Balances(records []domain.CashflowRecord) []domain.BalancePoint {
	if len(records) == 0 {
		return nil
	}

	byDate := make(map[civil.Date][]domain.CashflowRecord)
	totalInterest := decimal.Zero
	for _, r := range records {
		byDate[r.Date] = append(byDate[r.Date], r)
		if r.Type == domain.CashflowTypeInterest {
			totalInterest = totalInterest.Add(r.AmountLocal)
		}
	}

	dates := make([]civil.Date, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	points := make([]domain.BalancePoint, 0, len(dates))
	principal := decimal.Zero
	cash := decimal.Zero
	interest := totalInterest
	for _, d := range dates {
		cashflow := decimal.Zero
		received := decimal.Zero
		for _, r := range byDate[d] {
			amount := r.AmountLocal
			cashflow = cashflow.Add(amount)

			switch {
			case r.Type == domain.CashflowTypeInvestment && amount.IsNegative():
				principal = principal.Add(amount.Abs())
			case r.Type == domain.CashflowTypePrincipalRepayment && amount.IsPositive():
				principal = decimal.Max(principal.Sub(amount), decimal.Zero)
			}
			if amount.IsPositive() {
				cash = cash.Add(amount)
			}
			if r.Type == domain.CashflowTypeInterest {
				received = received.Add(amount)
			}
		}
		if received.IsPositive() {
			interest = decimal.Max(interest.Sub(received), decimal.Zero)
		}

		points = append(points, domain.BalancePoint{
			Date:             d,
			Cashflow:         cashflow,
			LoanReceivable:   principal,
			CashOnHand:       cash,
			AccruedInterest:  interest,
			ContractualValue: principal.Add(cash).Add(interest),
		})
	}
	return points
}

// WithPresentValues returns a copy of balances carrying the discounted view of
// schedule: the present value of later cashflows and, adding the cash already
// received, the net asset present value. Dates missing from schedule keep zeros.
func WithPresentValues(balances []domain.BalancePoint, schedule []domain.NavPoint) []domain.BalancePoint {
	if balances == nil {
		return nil
	}
	future := make(map[civil.Date]decimal.Decimal, len(schedule))
	for _, p := range schedule {
		future[p.Date] = p.PostTransaction
	}

	out := make([]domain.BalancePoint, len(balances))
	for i, b := range balances {
		if pv, ok := future[b.Date]; ok {
			b.FuturePresentValue = pv
			b.NetAssetPresentValue = pv.Add(b.CashOnHand)
		}
		out[i] = b
	}
	return out
}
