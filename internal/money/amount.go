// Package money provides the exact decimal amount type used for every monetary value.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a string cannot be parsed as a decimal amount.
var ErrInvalidAmount = errors.New("invalid amount")

// Amount is an exact decimal monetary value. The zero value is 0.
type Amount struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

// Parse converts a decimal string such as "1000.00" or "-12,5" to an Amount.
// Both dot and comma are accepted as the decimal separator.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Amount{d: d}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromInt returns the amount value * 10^exp.
func FromInt(value int64, exp int32) Amount {
	return Amount{d: decimal.New(value, exp)}
}

// FromDecimal wraps a shopspring decimal.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{d: a.d.Sub(b.d)}
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return Amount{d: a.d.Neg()}
}

// Abs returns |a|.
func (a Amount) Abs() Amount {
	return Amount{d: a.d.Abs()}
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(b.d)
}

// Equal reports whether a and b represent the same value regardless of scale.
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

// IsZero reports whether a == 0.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// String renders the amount with at least two decimal places, keeping any extra precision.
func (a Amount) String() string {
	places := -a.d.Exponent()
	if places < 2 {
		places = 2
	}
	return a.d.StringFixed(places)
}

// Display formats the amount for humans in the given ISO 4217 currency, e.g. "$1,050.00".
// Unknown currency codes fall back to the plain decimal representation followed by the code.
func (a Amount) Display(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	cur := gomoney.GetCurrency(currency)
	if cur == nil {
		return strings.TrimSpace(a.String() + " " + currency)
	}
	minor := a.d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return gomoney.New(minor, currency).Display()
}

// Value implements driver.Valuer. Amounts are persisted as canonical decimal text so that
// equality comparisons in SQL are exact.
func (a Amount) Value() (driver.Value, error) {
	return a.d.String(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		a.d = decimal.Zero
		return nil
	case string:
		return a.scanString(v)
	case []byte:
		return a.scanString(string(v))
	case int64:
		a.d = decimal.NewFromInt(v)
		return nil
	case float64:
		a.d = decimal.NewFromFloat(v)
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidAmount, src)
	}
}

func (a *Amount) scanString(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	a.d = d
	return nil
}

// Sum adds all amounts.
func Sum(amounts ...Amount) Amount {
	total := Zero
	for _, amt := range amounts {
		total = total.Add(amt)
	}
	return total
}
