package domain

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction represents the side of an FX forward from the fund's point of view
type Direction string

const (
	// DirectionSell sells the foreign currency notional forward and buys the base currency.
	DirectionSell Direction = "Sell"
)

// HedgeTrade represents one FX forward of a rolling hedge.
// DeliveryDate is the next NAV schedule date after TradeDate.
type HedgeTrade struct {
	ID           uuid.UUID
	Currency     string // notional currency, sold forward
	BaseCurrency string // bought forward
	TradeDate    civil.Date
	DeliveryDate civil.Date
	Notional     decimal.Decimal // signed, never clamped
	Direction    Direction
}

// CurrencyPair returns the pair in FOREIGN/BASE notation, e.g. "GBP/EUR".
func (t HedgeTrade) CurrencyPair() string {
	return t.Currency + "/" + t.BaseCurrency
}
