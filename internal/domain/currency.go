package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Rhymond/go-money"
)

// currencyCorrections maps known misspellings found in source spreadsheets.
var currencyCorrections = map[string]string{
	"GPB": "GBP",
}

// CurrencyPolicy defines which currency codes may reach the engine.
type CurrencyPolicy struct {
	Allowed []string // empty means any ISO 4217 code
	Base    string   // empty means any base currency
}

// DefaultCurrencyPolicy is the policy of the case-study data set.
var DefaultCurrencyPolicy = CurrencyPolicy{
	Allowed: []string{"GBP", "EUR", "USD"},
	Base:    "EUR",
}

// NormalizeCurrency trims, upper-cases and corrects a currency code, then
// checks that it is a known ISO 4217 code.
func NormalizeCurrency(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if fixed, ok := currencyCorrections[c]; ok {
		c = fixed
	}
	if c == "" {
		return "", fmt.Errorf("%w: empty currency code", ErrInvalidRecord)
	}
	if money.GetCurrency(c) == nil {
		return "", fmt.Errorf("%w: unknown currency %q", ErrInvalidRecord, code)
	}
	return c, nil
}

// Local normalizes a local currency code and checks it against Allowed.
func (p CurrencyPolicy) Local(code string) (string, error) {
	c, err := NormalizeCurrency(code)
	if err != nil {
		return "", err
	}
	if len(p.Allowed) > 0 && !slices.Contains(p.Allowed, c) {
		return "", fmt.Errorf("%w: currency %s not in %v", ErrInvalidRecord, c, p.Allowed)
	}
	return c, nil
}

// BaseCurrency normalizes a base currency code and checks it against Base.
func (p CurrencyPolicy) BaseCurrency(code string) (string, error) {
	c, err := NormalizeCurrency(code)
	if err != nil {
		return "", err
	}
	if p.Base != "" && c != p.Base {
		return "", fmt.Errorf("%w: base currency must be %s, got %s", ErrInvalidRecord, p.Base, c)
	}
	return c, nil
}
