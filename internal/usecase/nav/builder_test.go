package nav

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aveongye/cst-case-study/internal/domain"
	"github.com/aveongye/cst-case-study/internal/domain/domaintest"
	"github.com/aveongye/cst-case-study/internal/usecase/irr"
)

func solvedLoan(t *testing.T) ([]domain.Cashflow, float64) {
	t.Helper()
	series := domaintest.LoanSeries("GBP")
	result, err := irr.Solve(series)
	require.NoError(t, err)
	return series, result.Rate
}

func TestBuild_LoanScenario(t *testing.T) {
	series, rate := solvedLoan(t)

	points, err := Build(series, rate)

	require.NoError(t, err)
	require.Len(t, points, len(series))

	byDate := make(map[string]domain.NavPoint, len(points))
	for _, p := range points {
		byDate[p.Date.String()] = p
	}

	assert.Equal(t, "102419859.44", byDate["2025-12-31"].PreTransaction.StringFixed(2))
	assert.Equal(t, "100137314.24", byDate["2030-06-30"].PreTransaction.StringFixed(2))
	assert.Equal(t, "100000000.00", byDate["2030-09-30"].PreTransaction.StringFixed(2))
	assert.Equal(t, "100000000.00", byDate["2025-09-30"].PostTransaction.StringFixed(2))
}

func TestBuild_Invariants(t *testing.T) {
	series, rate := solvedLoan(t)

	points, err := Build(series, rate)
	require.NoError(t, err)

	t.Run("first pre-transaction value is zero at the series' own rate", func(t *testing.T) {
		assert.InDelta(t, 0.0, points[0].PreTransaction.InexactFloat64(), 1e-3)
	})

	t.Run("last point holds only its own cashflow", func(t *testing.T) {
		last := points[len(points)-1]
		assert.True(t, last.PostTransaction.IsZero())
		assert.True(t, last.PreTransaction.Equal(series[len(series)-1].Amount))
	})

	t.Run("post equals pre minus the cashflow", func(t *testing.T) {
		for _, p := range points {
			assert.True(t, p.PostTransaction.Equal(p.PreTransaction.Sub(p.Cashflow)), p.Date.String())
		}
	})

	t.Run("backward fold agrees with direct present value", func(t *testing.T) {
		for _, p := range points {
			direct := PresentValue(series, rate, p.Date)
			assert.InDelta(t, direct, p.PreTransaction.InexactFloat64(), 1e-9*math.Abs(direct)+1e-4, p.Date.String())
		}
	})

	t.Run("dates follow the series", func(t *testing.T) {
		for i, p := range points {
			assert.Equal(t, series[i].Date, p.Date)
			assert.True(t, p.Cashflow.Equal(series[i].Amount))
		}
	})
}

func TestBuild_SingleCashflow(t *testing.T) {
	series := []domain.Cashflow{domaintest.Flow("2025-09-30", "250", "USD")}

	points, err := Build(series, 0.05)

	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(t, points[0].PreTransaction.Equal(decimal.NewFromInt(250)))
	assert.True(t, points[0].PostTransaction.IsZero())
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		series  []domain.Cashflow
		rate    float64
		wantErr error
	}{
		{
			name:    "empty series",
			series:  nil,
			rate:    0.1,
			wantErr: domain.ErrInsufficientData,
		},
		{
			name: "unsorted dates",
			series: []domain.Cashflow{
				domaintest.Flow("2026-03-31", "-100", "GBP"),
				domaintest.Flow("2025-12-31", "110", "GBP"),
			},
			rate:    0.1,
			wantErr: domain.ErrInconsistency,
		},
		{
			name: "rate at or below -100%",
			series: []domain.Cashflow{
				domaintest.Flow("2025-12-31", "-100", "GBP"),
				domaintest.Flow("2026-03-31", "110", "GBP"),
			},
			rate:    -1,
			wantErr: domain.ErrDiverged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := Build(tt.series, tt.rate)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, points)
		})
	}
}

func TestPresentValue_SkipsEarlierFlows(t *testing.T) {
	series := []domain.Cashflow{
		domaintest.Flow("2025-01-01", "-100", "EUR"),
		domaintest.Flow("2026-01-01", "110", "EUR"),
	}

	assert.InDelta(t, 0.0, PresentValue(series, 0.10, domaintest.Date("2025-01-01")), 1e-9)
	assert.InDelta(t, 110.0, PresentValue(series, 0.10, domaintest.Date("2026-01-01")), 1e-9)
	assert.Equal(t, 0.0, PresentValue(series, 0.10, domaintest.Date("2027-01-01")))
}
