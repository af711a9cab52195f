// Package irr solves the internal rate of return of a dated cashflow series.
package irr

import (
	"fmt"
	"math"

	"github.com/aveongye/cst-case-study/internal/domain"
)

const (
	// DefaultGuess is the starting rate of the Newton-Raphson iteration.
	DefaultGuess = 0.10

	// MaxIterations bounds the solver so execution time is deterministic.
	MaxIterations = 100

	// Tolerance is the absolute bound on |NPV| at which the solver stops.
	Tolerance = 1e-6

	// relativeTolerance widens Tolerance for large notionals, where float64
	// rounding alone exceeds 1e-6 currency units.
	relativeTolerance = 1e-12
)

// Result is the outcome of a successful solve
type Result struct {
	Rate       float64
	Iterations int
	NPV        float64 // residual at Rate
}

// Solve returns the rate r zeroing Σ a_i / (1+r)^(days(t0,t_i)/365), starting from DefaultGuess.
func Solve(series []domain.Cashflow) (Result, error) {
	return SolveWithGuess(series, DefaultGuess)
}

// SolveWithGuess is like Solve with an explicit starting rate.
// Newton steps that would leave (-1, +inf) are halved toward -1. When Newton
// does not converge, the root is bisected on the first sign change of the NPV
// over bracketGrid.
//
// Errors, all wrapping a domain sentinel:
//   - ErrInsufficientData: empty series or fewer than two distinct dates
//   - ErrNoSignChange: no strictly negative and strictly positive amount (includes a single cashflow)
//   - ErrInconsistency: dates not strictly increasing
//   - ErrDiverged: guess <= -1, or neither Newton nor bisection finds a root
func SolveWithGuess(series []domain.Cashflow, guess float64) (Result, error) {
	if err := validate(series); err != nil {
		return Result{}, err
	}
	if !(1+guess > 0) || math.IsInf(guess, 0) {
		return Result{}, fmt.Errorf("%w: starting rate %g outside (-1, +inf)", domain.ErrDiverged, guess)
	}

	tolerance := tolerance(series)
	times, amounts := prepare(series)
	npv := func(r float64) (float64, float64) { return npvAndDerivative(r, times, amounts) }

	result, ok := newton(guess, tolerance, npv)
	if ok {
		return result, nil
	}

	// Newton did not converge, try bisection.
	fallback, err := bisect(tolerance, npv)
	if err != nil {
		return Result{}, err
	}
	fallback.Iterations += result.Iterations
	return fallback, nil
}

// newton iterates from guess. It reports false with the iterations spent when
// the NPV turns non-finite, the derivative is flat or MaxIterations is reached.
func newton(guess, tolerance float64, npv func(float64) (float64, float64)) (Result, bool) {
	r := guess
	for iter := 0; iter < MaxIterations; iter++ {
		f, df := npv(r)
		if !finite(f) {
			return Result{Iterations: iter}, false
		}
		if math.Abs(f) <= tolerance {
			return Result{Rate: r, Iterations: iter + 1, NPV: f}, true
		}
		if df == 0 || !finite(df) {
			return Result{Iterations: iter + 1}, false
		}

		next := r - f/df
		if !(1+next > 0) {
			// backtrack: halfway between r and -1
			next = (r - 1) / 2
		}
		if !finite(next) {
			return Result{Iterations: iter + 1}, false
		}
		r = next
	}
	return Result{Iterations: MaxIterations}, false
}

// bracketGrid lists the rates scanned for a sign change of the NPV, from just
// above -1 upward. Points where the NPV overflows are skipped.
var bracketGrid = []float64{
	-1 + 1e-12, -1 + 1e-9, -1 + 1e-6, -0.9999, -0.999, -0.99, -0.95, -0.9, -0.75, -0.5, -0.25,
	0, 0.25, 0.5, 1, 2, 5, 10, 100, 1e4, 1e6,
}

// maxBisections bounds the bisection; 200 halvings exhaust float64 precision
// on any bracket of the grid.
const maxBisections = 200

// bisect finds a root on the first bracket of bracketGrid with a sign change.
// It stops when |NPV| <= tolerance or when the bracket cannot shrink further.
func bisect(tolerance float64, npv func(float64) (float64, float64)) (Result, error) {
	lo, flo, found := math.NaN(), math.NaN(), false
	var hi float64
	for _, r := range bracketGrid {
		f, _ := npv(r)
		if !finite(f) {
			continue
		}
		if math.Abs(f) <= tolerance {
			return Result{Rate: r, Iterations: 1, NPV: f}, nil
		}
		if !math.IsNaN(flo) && (f > 0) != (flo > 0) {
			hi, found = r, true
			break
		}
		lo, flo = r, f
	}
	if !found {
		return Result{}, fmt.Errorf("%w: no sign change of the NPV between %g and %g",
			domain.ErrDiverged, bracketGrid[0], bracketGrid[len(bracketGrid)-1])
	}

	for iter := 1; iter <= maxBisections; iter++ {
		mid := lo + (hi-lo)/2
		f, _ := npv(mid)
		if math.Abs(f) <= tolerance || mid == lo || mid == hi {
			return Result{Rate: mid, Iterations: iter, NPV: f}, nil
		}
		if (f > 0) == (flo > 0) {
			lo, flo = mid, f
		} else {
			hi = mid
		}
	}
	return Result{}, fmt.Errorf("%w: bisection did not converge after %d steps", domain.ErrDiverged, maxBisections)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// NPV returns the net present value of the series at its first date.
func NPV(series []domain.Cashflow, rate float64) float64 {
	if len(series) == 0 {
		return 0
	}
	times, amounts := prepare(series)
	f, _ := npvAndDerivative(rate, times, amounts)
	return f
}

// validate checks the series in the documented error order.
func validate(series []domain.Cashflow) error {
	if len(series) == 0 {
		return fmt.Errorf("%w: empty cashflow series", domain.ErrInsufficientData)
	}
	if !domain.HasSignChange(series) {
		return fmt.Errorf("%w: %d cashflows of the same sign", domain.ErrNoSignChange, len(series))
	}
	if domain.DistinctDates(series) < 2 {
		return fmt.Errorf("%w: fewer than two distinct dates", domain.ErrInsufficientData)
	}
	return domain.CheckChronological(series)
}

// prepare converts the series to year fractions from the first date and float amounts.
func prepare(series []domain.Cashflow) (times, amounts []float64) {
	t0 := series[0].Date
	times = make([]float64, len(series))
	amounts = make([]float64, len(series))
	for i, cf := range series {
		times[i] = domain.YearFraction(t0, cf.Date)
		amounts[i] = cf.Amount.InexactFloat64()
	}
	return times, amounts
}

// npvAndDerivative returns (NPV, dNPV/dr):
//
//	NPV   = Σ a_i / (1+r)^τ_i
//	dNPV  = Σ −τ_i · a_i / (1+r)^(τ_i+1)
func npvAndDerivative(r float64, times, amounts []float64) (float64, float64) {
	var f, df float64
	for i, tau := range times {
		disc := math.Pow(1+r, tau)
		f += amounts[i] / disc
		df -= tau * amounts[i] / (disc * (1 + r))
	}
	return f, df
}

func tolerance(series []domain.Cashflow) float64 {
	var gross float64
	for _, cf := range series {
		gross += math.Abs(cf.Amount.InexactFloat64())
	}
	return math.Max(Tolerance, relativeTolerance*gross)
}
