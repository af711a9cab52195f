// Package nav builds net asset value schedules from a cashflow series and its solved rate.
package nav

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/aveongye/cst-case-study/internal/domain"
)

// Build returns one NavPoint per cashflow date, in ascending order.
//
// The schedule is a backward fold over the series: the value of the flows
// strictly after t_k is the pre-transaction value at t_{k+1} discounted over
// days(t_k, t_{k+1}), so
//
//	post_k = pre_{k+1} / (1+r)^(days(t_k,t_{k+1})/365)
//	pre_k  = a_k + post_k
//
// The last point has post = 0 and pre = a_last exactly. The first point's
// pre-transaction value is zero within solver tolerance when rate is the
// series' own IRR.
func Build(series []domain.Cashflow, rate float64) ([]domain.NavPoint, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: empty cashflow series", domain.ErrInsufficientData)
	}
	if err := domain.CheckChronological(series); err != nil {
		return nil, err
	}
	if !(1+rate > 0) {
		return nil, fmt.Errorf("%w: discount base 1+r=%g", domain.ErrDiverged, 1+rate)
	}

	points := make([]domain.NavPoint, len(series))
	var next float64 // pre-transaction value at t_{k+1}
	for k := len(series) - 1; k >= 0; k-- {
		cf := series[k]

		post := decimal.Zero
		var future float64
		if k < len(series)-1 {
			future = next * domain.DiscountFactor(rate, cf.Date, series[k+1].Date)
			post = decimal.NewFromFloat(future)
		}

		points[k] = domain.NavPoint{
			Date:            cf.Date,
			PreTransaction:  cf.Amount.Add(post),
			PostTransaction: post,
			Cashflow:        cf.Amount,
		}
		next = cf.Amount.InexactFloat64() + future
	}

	return points, nil
}

// PresentValue returns Σ a_j / (1+r)^(days(anchor,t_j)/365) over the flows
// dated on or after anchor, by direct summation.
func PresentValue(series []domain.Cashflow, rate float64, anchor civil.Date) float64 {
	var pv float64
	for _, cf := range series {
		if cf.Date.Before(anchor) {
			continue
		}
		pv += cf.Amount.InexactFloat64() * domain.DiscountFactor(rate, anchor, cf.Date)
	}
	return pv
}
