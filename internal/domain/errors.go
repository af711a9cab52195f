package domain

import "errors"

// Engine errors. They are local to a single scope (a currency or the fund):
// callers decide whether to skip, log or abort.
var (
	// ErrInsufficientData is returned for fewer than two cashflows or two distinct dates.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNoSignChange is returned when all amounts share the same sign, so no IRR exists.
	ErrNoSignChange = errors.New("no sign change in cashflows")

	// ErrDiverged is returned when the root-finder exhausts its iterations or
	// reaches a non-positive discount base (1+r <= 0).
	ErrDiverged = errors.New("root-finding diverged")

	// ErrInconsistency is returned for unsorted or duplicated dates, a missing
	// rate for a requested schedule, or hedge formulations that disagree.
	ErrInconsistency = errors.New("inconsistent input")
)

// Adapter errors.
var (
	// ErrFundNotFound is returned when no cashflow belongs to the requested fund.
	ErrFundNotFound = errors.New("fund not found")

	// ErrInvalidRecord is returned when a cashflow row fails validation.
	ErrInvalidRecord = errors.New("invalid cashflow record")
)
