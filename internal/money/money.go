// Package money implements the fixed-point currency amount used by catalog prices,
// tax rates and bill totals. Arithmetic is exact; rounding only happens when
// Quantize is called.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of fraction digits a quantized amount carries.
const Places = 2

// Money is a signed decimal amount. The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// Zero is 0.00.
var Zero = Money{}

// FromInt returns a whole amount.
func FromInt(v int64) Money {
	return Money{d: decimal.NewFromInt(v)}
}

// FromDecimal wraps a decimal value without rounding.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d}
}

// Parse reads a decimal string such as "50", "18.00" or "-0.5".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{d: d}, nil
}

// MustParse is Parse for constants; it panics on malformed input.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

// MulInt multiplies by an integer quantity.
func (m Money) MulInt(q int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(q))}
}

// Percent returns m * rate / 100 with no rounding.
func (m Money) Percent(rate Money) Money {
	return Money{d: m.d.Mul(rate.d).Shift(-2)}
}

// Quantize rounds half away from zero to two decimal places.
func (m Money) Quantize() Money {
	return Money{d: m.d.Round(Places)}
}

func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }
func (m Money) IsZero() bool { return m.d.IsZero() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }
func (m Money) Decimal() decimal.Decimal { return m.d }

// String renders the amount with exactly two fraction digits. Values carrying
// more precision are rounded for display only.
func (m Money) String() string {
	return m.d.StringFixed(Places)
}

// Exact renders every significant digit, used where an unrounded value must be shown.
func (m Money) Exact() string {
	return m.d.String()
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.d.Value()
}

// Scan implements sql.Scanner.
func (m *Money) Scan(value interface{}) error {
	return m.d.Scan(value)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return m.d.UnmarshalJSON(data)
}

// Sum adds amounts without intermediate rounding.
func Sum(amounts ...Money) Money {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
