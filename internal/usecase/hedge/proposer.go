// Package hedge proposes rolling FX forwards covering a currency's NAV schedule.
package hedge

import (
	"fmt"
	"math"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aveongye/cst-case-study/internal/domain"
)

const (
	// HedgeRatio is the share of the NAV exposure covered by each forward.
	HedgeRatio = 1

	// DefaultTenorMonths is the nominal roll period; the actual delivery
	// date is always the next schedule date.
	DefaultTenorMonths = 3

	// TenorSlackDays is how far a delivery date may sit from trade date plus
	// DefaultTenorMonths before OffTenor reports the roll.
	TenorSlackDays = 7

	// NotionalTolerance is the relative agreement required between the two
	// notional formulations, with an absolute floor of 1e-6.
	NotionalTolerance = 1e-9
)

// tradeNamespace scopes the name-based trade IDs.
var tradeNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("cst-case-study/hedge-trade"))

// Propose returns one forward per consecutive pair (t_k, t_{k+1}) of the
// schedule. The notional is the post-transaction NAV at t_k: the present
// value of every cashflow after t_k, which is the exposure to carry until the
// next roll. Zero or negative notionals are emitted as they are.
//
// A schedule with fewer than two points yields no trades and no error.
// Dates that are not strictly increasing return ErrInconsistency.
func Propose(currency, base string, schedule []domain.NavPoint) ([]domain.HedgeTrade, error) {
	if err := checkSchedule(schedule); err != nil {
		return nil, err
	}
	if len(schedule) < 2 {
		return []domain.HedgeTrade{}, nil
	}

	trades := make([]domain.HedgeTrade, 0, len(schedule)-1)
	for k := 0; k < len(schedule)-1; k++ {
		from, to := schedule[k], schedule[k+1]
		trades = append(trades, domain.HedgeTrade{
			ID:           tradeID(currency, base, from),
			Currency:     currency,
			BaseCurrency: base,
			TradeDate:    from.Date,
			DeliveryDate: to.Date,
			Notional:     from.PostTransaction.Mul(decimal.NewFromInt(HedgeRatio)),
			Direction:    domain.DirectionSell,
		})
	}
	return trades, nil
}

// OffTenor returns the trades whose delivery date is more than TenorSlackDays
// away from the trade date moved forward by DefaultTenorMonths. Month ends
// roll over as in time.AddDate.
func OffTenor(trades []domain.HedgeTrade) []domain.HedgeTrade {
	var out []domain.HedgeTrade
	for _, t := range trades {
		nominal := civil.DateOf(t.TradeDate.In(time.UTC).AddDate(0, DefaultTenorMonths, 0))
		gap := t.DeliveryDate.DaysSince(nominal)
		if gap > TenorSlackDays || gap < -TenorSlackDays {
			out = append(out, t)
		}
	}
	return out
}

// DeliveryDiscountedNotional returns pre(t_{k+1}) / (1+r)^(days(t_k,t_{k+1})/365),
// the delivery-date formulation of the notional at from.Date.
func DeliveryDiscountedNotional(from, to domain.NavPoint, rate float64) float64 {
	return to.PreTransaction.InexactFloat64() * domain.DiscountFactor(rate, from.Date, to.Date)
}

// CrossCheck verifies that the post-transaction and delivery-discounted
// notionals agree on every roll of the schedule.
// Returns an error wrapping ErrInconsistency on the first disagreement.
func CrossCheck(schedule []domain.NavPoint, rate float64) error {
	if err := checkSchedule(schedule); err != nil {
		return err
	}
	for k := 0; k < len(schedule)-1; k++ {
		post := schedule[k].PostTransaction.InexactFloat64()
		discounted := DeliveryDiscountedNotional(schedule[k], schedule[k+1], rate)

		limit := math.Max(1e-6, NotionalTolerance*math.Abs(post))
		if math.Abs(post-discounted) > limit {
			return fmt.Errorf("%w: notional on %s is %.6f post-transaction but %.6f delivery-discounted",
				domain.ErrInconsistency, schedule[k].Date, post, discounted)
		}
	}
	return nil
}

func checkSchedule(schedule []domain.NavPoint) error {
	for i := 1; i < len(schedule); i++ {
		if !schedule[i-1].Date.Before(schedule[i].Date) {
			return fmt.Errorf("%w: schedule date %s at index %d does not follow %s",
				domain.ErrInconsistency, schedule[i].Date, i, schedule[i-1].Date)
		}
	}
	return nil
}

func tradeID(currency, base string, from domain.NavPoint) uuid.UUID {
	return uuid.NewSHA1(tradeNamespace, []byte(currency+"/"+base+"/"+from.Date.String()))
}
