// Package types provides the money and stock quantity value types.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount in the submission's currency.
type Money = decimal.Decimal

// NewMoney returns whole currency units.
func NewMoney(units int64) Money { return decimal.NewFromInt(units) }

func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// MustMoney is NewMoneyFromString for literals; it panics on bad input.
func MustMoney(s string) Money {
	m, err := NewMoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func Zero() Money { return decimal.Zero }

// QuantityScale is the number of Quantity units in one stock unit.
const (
	QuantityScale  int64 = 10_000
	quantityDigits int32 = 4
)

// Quantity is a stock count with four fractional digits, stored as a scaled
// BIGINT so ledger arithmetic stays in integers.
type Quantity int64

// NewQuantity returns a whole-unit quantity.
func NewQuantity(units int64) Quantity { return Quantity(units * QuantityScale) }

func NewQuantityFromFloat64(v float64) Quantity {
	return Quantity(math.Round(v * float64(QuantityScale)))
}

func (q Quantity) Float64() float64 { return float64(q) / float64(QuantityScale) }

func (q Quantity) IsZero() bool     { return q == 0 }
func (q Quantity) IsPositive() bool { return q > 0 }
func (q Quantity) IsNegative() bool { return q < 0 }

func (q Quantity) Abs() Quantity {
	if q < 0 {
		return -q
	}
	return q
}

// Decimal converts the quantity for money arithmetic.
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.New(int64(q), -quantityDigits)
}

// String prints without trailing zeros: 150, 2.5, -0.125.
func (q Quantity) String() string { return q.Decimal().String() }

// MarshalJSON writes a bare JSON number.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts a number, a numeric string or null.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}

	parsed, err := ParseQuantity(string(data))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

var errEmptyQuantity = errors.New("empty quantity")

// ParseQuantity parses a decimal string. Digits past the fourth decimal are
// truncated toward zero.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	if s == "" {
		return 0, errEmptyQuantity
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	scaled := d.Shift(quantityDigits).Truncate(0)
	if !scaled.BigInt().IsInt64() {
		return 0, fmt.Errorf("quantity %q out of range", s)
	}
	return Quantity(scaled.IntPart()), nil
}
