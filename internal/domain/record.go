package domain

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// CashflowType represents the nature of a cashflow row
type CashflowType string

const (
	CashflowTypeInvestment         CashflowType = "Investment"
	CashflowTypeInterest           CashflowType = "Interest"
	CashflowTypePrincipalRepayment CashflowType = "Principal Repayment"
)

// CashflowRecord represents one row of the fund cashflow table.
// AmountBase is the local amount already converted to BaseCurrency by the data provider.
type CashflowRecord struct {
	ID            int64
	Fund          string
	Date          civil.Date
	Type          CashflowType
	LocalCurrency string
	AmountLocal   decimal.Decimal
	AmountBase    decimal.Decimal
	BaseCurrency  string
}

// Validate normalizes the currency codes in place and ensures the record
// adheres to the policy. Returns an error wrapping ErrInvalidRecord.
func (r *CashflowRecord) Validate(policy CurrencyPolicy) error {
	if r.Fund == "" {
		return fmt.Errorf("%w: row %d: fund name cannot be empty", ErrInvalidRecord, r.ID)
	}
	if !r.Date.IsValid() {
		return fmt.Errorf("%w: row %d: invalid date %s", ErrInvalidRecord, r.ID, r.Date)
	}

	switch r.Type {
	case CashflowTypeInvestment, CashflowTypeInterest, CashflowTypePrincipalRepayment:
	default:
		return fmt.Errorf("%w: row %d: invalid cashflow type %q", ErrInvalidRecord, r.ID, r.Type)
	}

	local, err := policy.Local(r.LocalCurrency)
	if err != nil {
		return fmt.Errorf("row %d: %w", r.ID, err)
	}
	base, err := policy.BaseCurrency(r.BaseCurrency)
	if err != nil {
		return fmt.Errorf("row %d: %w", r.ID, err)
	}
	r.LocalCurrency = local
	r.BaseCurrency = base
	return nil
}

// Local returns the row as a cashflow in its local currency.
func (r CashflowRecord) Local() Cashflow {
	return Cashflow{Date: r.Date, Amount: r.AmountLocal, Currency: r.LocalCurrency}
}

// Base returns the row as a cashflow in the fund base currency.
func (r CashflowRecord) Base() Cashflow {
	return Cashflow{Date: r.Date, Amount: r.AmountBase, Currency: r.BaseCurrency}
}

// ValidateAll validates every record and joins the failures.
func ValidateAll(records []CashflowRecord, policy CurrencyPolicy) error {
	var errs []error
	for i := range records {
		if err := records[i].Validate(policy); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
