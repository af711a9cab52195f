package domain

import (
	"math"

	"cloud.google.com/go/civil"
)

// DaysInYear is the fixed year-length divisor of the ACT/365 convention.
// There is no leap-year or business-day adjustment: every rate, NAV and
// notional in the system depends on this value.
const DaysInYear = 365.0

// DaysBetween returns the exact signed number of calendar days from start to end.
func DaysBetween(start, end civil.Date) int {
	return end.DaysSince(start)
}

// YearFraction returns DaysBetween(start, end) / DaysInYear.
func YearFraction(start, end civil.Date) float64 {
	return float64(DaysBetween(start, end)) / DaysInYear
}

// DiscountFactor returns 1 / (1+rate)^YearFraction(start, end).
// The caller is responsible for rate > -1.
func DiscountFactor(rate float64, start, end civil.Date) float64 {
	return math.Pow(1+rate, -YearFraction(start, end))
}
