package irr

import (
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aveongye/cst-case-study/internal/domain"
	"github.com/aveongye/cst-case-study/internal/domain/domaintest"
)

func TestSolve_LoanScenario(t *testing.T) {
	series := domaintest.LoanSeries("GBP")
	require.Len(t, series, 21)

	result, err := Solve(series)

	require.NoError(t, err)
	assert.InDelta(t, 0.0995072, result.Rate, 1e-6)
	assert.LessOrEqual(t, result.Iterations, MaxIterations)
	assert.LessOrEqual(t, math.Abs(NPV(series, result.Rate)), tolerance(series))
}

func TestSolve_ShortSeries(t *testing.T) {
	series := []domain.Cashflow{
		domaintest.Flow("2025-09-30", "-100", "GBP"),
		domaintest.Flow("2025-12-31", "2.5", "GBP"),
		domaintest.Flow("2026-03-31", "100", "GBP"),
	}

	result, err := Solve(series)

	require.NoError(t, err)
	assert.InDelta(t, 0.0514069, result.Rate, 1e-6)
	assert.LessOrEqual(t, math.Abs(result.NPV), Tolerance)
}

func TestSolve_OneYearDoubling(t *testing.T) {
	series := []domain.Cashflow{
		domaintest.Flow("2025-01-01", "-100", "EUR"),
		domaintest.Flow("2026-01-01", "200", "EUR"),
	}

	result, err := Solve(series)

	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Rate, 1e-6)
}

func TestSolve_Deterministic(t *testing.T) {
	series := domaintest.LoanSeries("USD")

	first, err := Solve(series)
	require.NoError(t, err)
	second, err := Solve(series)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		series  []domain.Cashflow
		wantErr error
	}{
		{
			name:    "empty series",
			series:  nil,
			wantErr: domain.ErrInsufficientData,
		},
		{
			name: "single cashflow has no sign change",
			series: []domain.Cashflow{
				domaintest.Flow("2025-09-30", "-100", "GBP"),
			},
			wantErr: domain.ErrNoSignChange,
		},
		{
			name: "all positive",
			series: []domain.Cashflow{
				domaintest.Flow("2025-09-30", "100", "GBP"),
				domaintest.Flow("2025-12-31", "5", "GBP"),
			},
			wantErr: domain.ErrNoSignChange,
		},
		{
			name: "all negative",
			series: []domain.Cashflow{
				domaintest.Flow("2025-09-30", "-100", "GBP"),
				domaintest.Flow("2025-12-31", "-5", "GBP"),
			},
			wantErr: domain.ErrNoSignChange,
		},
		{
			name: "zero amounts only",
			series: []domain.Cashflow{
				domaintest.Flow("2025-09-30", "0", "GBP"),
				domaintest.Flow("2025-12-31", "0", "GBP"),
			},
			wantErr: domain.ErrNoSignChange,
		},
		{
			name: "one distinct date",
			series: []domain.Cashflow{
				domaintest.Flow("2025-09-30", "-100", "GBP"),
				domaintest.Flow("2025-09-30", "100", "GBP"),
			},
			wantErr: domain.ErrInsufficientData,
		},
		{
			name: "dates out of order",
			series: []domain.Cashflow{
				domaintest.Flow("2025-12-31", "-100", "GBP"),
				domaintest.Flow("2025-09-30", "50", "GBP"),
				domaintest.Flow("2026-03-31", "60", "GBP"),
			},
			wantErr: domain.ErrInconsistency,
		},
		{
			name: "sign change without a real root",
			series: []domain.Cashflow{
				domaintest.Flow("2025-01-01", "100", "GBP"),
				domaintest.Flow("2026-01-01", "-300", "GBP"),
				domaintest.Flow("2027-01-01", "250", "GBP"),
			},
			wantErr: domain.ErrDiverged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(tt.series)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSolve_LossMaking(t *testing.T) {
	tests := []struct {
		name   string
		series []domain.Cashflow
		want   float64
	}{
		{
			name: "half lost over a year",
			series: []domain.Cashflow{
				domaintest.Flow("2025-01-01", "-100", "GBP"),
				domaintest.Flow("2026-01-01", "50", "GBP"),
			},
			want: -0.5,
		},
		{
			name: "almost everything lost over a year",
			series: []domain.Cashflow{
				domaintest.Flow("2025-01-01", "-100", "GBP"),
				domaintest.Flow("2026-01-01", "1", "GBP"),
			},
			want: -0.99,
		},
		{
			name: "partial recovery over two years",
			series: []domain.Cashflow{
				domaintest.Flow("2025-01-01", "-100", "USD"),
				domaintest.Flow("2026-01-01", "0", "USD"),
				domaintest.Flow("2027-01-01", "25", "USD"),
			},
			want: -0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Solve(tt.series)

			require.NoError(t, err)
			assert.InDelta(t, tt.want, result.Rate, 1e-6)
			assert.LessOrEqual(t, math.Abs(NPV(tt.series, result.Rate)), tolerance(tt.series))
		})
	}
}

// One outflow followed by non-negative inflows has exactly one root in (-1, +inf).
func TestSolve_RandomInvestments(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	start := domaintest.Date("2025-01-01")

	for i := 0; i < 2000; i++ {
		outflow := 100 + rng.Float64()*900
		series := []domain.Cashflow{{
			Date:     start,
			Amount:   decimal.NewFromFloat(-outflow).Round(2),
			Currency: "GBP",
		}}

		date := start.AddDays(90 + rng.Intn(30))
		n := 1 + rng.Intn(12)
		// recover between half and three times the outflow
		total := outflow * (0.5 + rng.Float64()*2.5)
		for k := 0; k < n; k++ {
			amount := total / float64(n)
			if k < n-1 && rng.Intn(4) == 0 {
				amount = 0
			}
			series = append(series, domain.Cashflow{
				Date:     date,
				Amount:   decimal.NewFromFloat(amount).Round(2),
				Currency: "GBP",
			})
			date = date.AddDays(30 + rng.Intn(90))
		}

		result, err := Solve(series)

		require.NoError(t, err, "series %d: %v", i, series)
		require.Greater(t, result.Rate, -1.0)
		require.LessOrEqual(t, math.Abs(NPV(series, result.Rate)), tolerance(series), "series %d", i)
	}
}

func TestSolveWithGuess_InvalidStartingRate(t *testing.T) {
	_, err := SolveWithGuess(domaintest.LoanSeries("GBP"), -1.5)

	assert.ErrorIs(t, err, domain.ErrDiverged)
}

func TestNPV(t *testing.T) {
	series := []domain.Cashflow{
		domaintest.Flow("2025-01-01", "-100", "EUR"),
		domaintest.Flow("2026-01-01", "110", "EUR"),
	}

	assert.InDelta(t, 10.0, NPV(series, 0), 1e-9)
	assert.InDelta(t, 0.0, NPV(series, 0.10), 1e-9)
	assert.Equal(t, 0.0, NPV(nil, 0.10))
}
