// Package money provides the cent-rounding convention shared by the allocator
// and the validator.
//
// Amounts enter the system as decimal text and are never routed through
// float64. Comparisons and allocations happen on Cents, an integer count of
// hundredths, so two amounts are equal only when they round to the same cent.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// CentsPerUnit is the number of cents in one currency unit.
const CentsPerUnit = 100

const (
	// MaxIntegerDigits is the widest integer part an amount may have. Cents
	// holds up to 9223372036854775807, so 17 digits before the point.
	MaxIntegerDigits = 17

	// MaxFractionDigits bounds the precision accepted before rounding to the cent.
	MaxFractionDigits = 30

	// maxNumberText bounds the length of number text handed to the parser.
	maxNumberText = 64
)

var (
	// ErrNotANumber is returned when a value is not a JSON number token.
	ErrNotANumber = errors.New("money: value is not a number")

	// ErrOutOfRange is returned when an amount does not fit in Cents or
	// carries more than MaxFractionDigits fractional digits.
	ErrOutOfRange = errors.New("money: amount out of range")

	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// Cents is a monetary amount expressed in hundredths of a currency unit.
type Cents int64

// Round2 rounds x to two fractional digits, ties away from zero.
// Round2(Round2(x)) == Round2(x) for every x.
func Round2(x decimal.Decimal) decimal.Decimal {
	return x.Round(2)
}

// CheckRange rejects amounts whose magnitude or precision cannot be
// represented in Cents. It looks only at the digit count and exponent, so it
// stays cheap for values like 1e20000000 whose expansion is enormous.
func CheckRange(x decimal.Decimal) error {
	if x.IsZero() {
		return nil
	}
	exp := int(x.Exponent())
	if exp < -MaxFractionDigits || x.NumDigits()+exp > MaxIntegerDigits {
		return ErrOutOfRange
	}
	return nil
}

// FromDecimal returns the cents of Round2(x).
func FromDecimal(x decimal.Decimal) (Cents, error) {
	if x.IsZero() {
		return 0, nil
	}
	if err := CheckRange(x); err != nil {
		return 0, err
	}
	c := Round2(x).Shift(2)
	if c.GreaterThan(maxCents) || c.LessThan(minCents) {
		return 0, ErrOutOfRange
	}
	return Cents(c.IntPart()), nil
}

// ParseNumber parses the text of a JSON number into an exact decimal.
// Quoted strings, booleans and null are rejected with ErrNotANumber; numbers
// outside CheckRange are rejected with ErrOutOfRange.
func ParseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || !(s[0] == '-' || (s[0] >= '0' && s[0] <= '9')) {
		return decimal.Zero, ErrNotANumber
	}
	if len(s) > maxNumberText {
		return decimal.Zero, ErrOutOfRange
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrNotANumber, err)
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}
	if err := CheckRange(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// Sum adds amounts exactly.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Decimal returns c as a decimal amount with two fractional digits of scale.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats c with exactly two fractional digits (e.g. 150 -> "1.50").
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// IsZero reports whether c is zero.
func (c Cents) IsZero() bool { return c == 0 }

// Abs returns the absolute value of c.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// MarshalJSON renders c as a bare JSON number without trailing zeros,
// so 500 becomes 5 and 333 becomes 3.33.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number and rounds it to the cent.
func (c *Cents) UnmarshalJSON(data []byte) error {
	d, err := ParseNumber(string(data))
	if err != nil {
		return err
	}
	v, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

var (
	_ json.Marshaler   = Cents(0)
	_ json.Unmarshaler = (*Cents)(nil)
)
