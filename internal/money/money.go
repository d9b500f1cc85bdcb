// Package money represents amounts as integer minor units.
//
// Every currency is treated as having two decimal places. Amounts travel
// over JSON as plain decimal numbers (12.50) and are converted exactly via
// shopspring/decimal, so no float rounding ever reaches the ledger.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const scale = 2

// MaxAmount is the largest absolute amount accepted: ten billion major units.
const MaxAmount Amount = 1_000_000_000_000

var (
	ErrTooPrecise  = errors.New("amount has more than two decimal places")
	ErrOutOfRange  = errors.New("amount out of range")
	ErrBadCurrency = errors.New("currency must be a three-letter code")
	maxMinor       = decimal.NewFromInt(int64(MaxAmount))
)

// Amount is a value in minor units (cents).
type Amount int64

// FromDecimal converts a decimal major-unit value into minor units.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	shifted := d.Shift(scale)
	if !shifted.IsInteger() {
		return 0, ErrTooPrecise
	}
	if shifted.Abs().GreaterThan(maxMinor) {
		return 0, ErrOutOfRange
	}
	return Amount(shifted.IntPart()), nil
}

// Parse reads a decimal string such as "12.5" or "300".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -scale)
}

func (a Amount) String() string {
	return a.Decimal().StringFixed(scale)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*a = 0
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// NormalizeCurrency upper-cases a currency code and checks its shape.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ErrBadCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrBadCurrency
		}
	}
	return code, nil
}
