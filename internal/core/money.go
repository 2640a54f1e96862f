// Package core provides money handling utilities.
//
// Amounts are stored as integer cents. Conversions to and from major units
// go through shopspring/decimal so that rounding never depends on binary
// floating point.
package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

// Cents builds a Money value from minor units.
func Cents(c int64) Money {
	return Money{Cents: c}
}

// MoneyFromDecimal converts an amount in major units to cents, rounding
// half away from zero (12.345 -> 1235, -0.005 -> -1).
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

// ParseMoney parses a major-unit string such as "12.34" or "12,34".
// Negative values are accepted; callers that need a positive amount call Validate.
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not a number", ErrInvalidArgument, s)
	}
	return MoneyFromDecimal(d), nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Major returns the amount in major units for JSON output and display.
// Use cents for arithmetic.
func (m Money) Major() float64 {
	return m.Decimal().InexactFloat64()
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Cents)
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &m.Cents)
}

// MajorUnits converts a sum of cents to major units.
func MajorUnits(cents int64) float64 {
	return Money{Cents: cents}.Major()
}
