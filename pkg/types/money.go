package types

import "github.com/shopspring/decimal"

// Money carries a dual-currency amount. USD and LBP are independent ledgers:
// one is never derived from the other, and both may be negative.
type Money struct {
	USD decimal.Decimal `json:"usd"`
	LBP int64           `json:"lbp"`
}

// NewMoney builds a Money value from a USD string and whole pounds.
// It panics on a malformed USD literal, so it is meant for constants and tests;
// parse request input with decimal.NewFromString directly.
func NewMoney(usd string, lbp int64) Money {
	return Money{USD: decimal.RequireFromString(usd), LBP: lbp}
}

// Zero returns the zero amount in both currencies.
func Zero() Money {
	return Money{USD: decimal.Zero, LBP: 0}
}

// Add returns m + other per currency.
func (m Money) Add(other Money) Money {
	return Money{
		USD: m.USD.Add(other.USD),
		LBP: m.LBP + other.LBP,
	}
}

// Sub returns m - other per currency.
func (m Money) Sub(other Money) Money {
	return Money{
		USD: m.USD.Sub(other.USD),
		LBP: m.LBP - other.LBP,
	}
}

// Equal reports exact equality in both currencies.
func (m Money) Equal(other Money) bool {
	return m.USD.Equal(other.USD) && m.LBP == other.LBP
}

// IsZero reports whether both currencies are zero.
func (m Money) IsZero() bool {
	return m.USD.IsZero() && m.LBP == 0
}
