package kernel

import (
	"fmt"

	"marketplace/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// moneyScale is the number of decimal places every stored monetary value carries.
const moneyScale = 2

// Money is an immutable fixed-precision monetary value object. It wraps
// shopspring decimal so arithmetic between Money values is exact; binary
// floating point never enters monetary computation.
//
// Every value that leaves this package (and therefore everything that may be
// persisted) is rounded to 2 decimal places using round-half-up. Intermediate
// precision exists only inside ExtractExVat and MulRate, which round before
// returning. A Money produced by any constructor or operation is always
// snapshot-safe.
//
// The zero value of Money is a valid zero amount, so Money can be summed with
// the usual fold-from-zero pattern.
//
// Example:
//
//	price, _ := kernel.NewMoneyFromString("115.00")
//	total := price.Add(price)           // 230.00
//	tenth := total.MulRate(rate)        // rounded half-up to 2 decimals
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney returns the zero monetary amount.
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// NewMoneyFromString parses a decimal string such as "115.00" into Money,
// rounding half-up to 2 decimal places.
// Returns an error for values that are not valid decimals.
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("money amount", err)
	}
	return NewMoneyFromDecimal(d), nil
}

// NewMoneyFromDecimal converts an arbitrary-precision decimal into Money,
// rounding half-up to 2 decimal places.
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{amount: round2(d)}
}

// NewMoneyFromInt creates Money from a whole number of currency units.
func NewMoneyFromInt(units int64) Money {
	return Money{amount: decimal.NewFromInt(units)}
}

// round2 rounds half-up to 2 decimal places. Decimal's Round rounds half
// away from zero, which coincides with half-up for the non-negative amounts
// this domain stores.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}

// Add returns the exact sum of two Money values.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns the exact difference of two Money values.
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// MulRate multiplies the amount by a fractional rate and immediately rounds
// half-up to 2 decimal places, so partial-precision values never leak into
// a stored field.
func (m Money) MulRate(rate Rate) Money {
	return Money{amount: round2(m.amount.Mul(rate.Value()))}
}

// Div divides the amount by a divisor and rounds half-up to 2 decimal places.
func (m Money) Div(divisor decimal.Decimal) Money {
	return Money{amount: round2(m.amount.DivRound(divisor, moneyScale+2))}
}

// MulInt multiplies the amount by an integer quantity and rounds half-up to
// 2 decimal places.
func (m Money) MulInt(n int) Money {
	return Money{amount: round2(m.amount.Mul(decimal.NewFromInt(int64(n))))}
}

// MulFloat multiplies the amount by a float factor (distances, weights) and
// rounds half-up to 2 decimal places.
func (m Money) MulFloat(f float64) Money {
	return Money{amount: round2(m.amount.Mul(decimal.NewFromFloat(f)))}
}

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg()}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// IsEqual compares two Money values numerically (2.5 equals 2.50).
func (m Money) IsEqual(other Money) bool {
	return m.amount.Equal(other.amount)
}

// LessThan reports whether m is strictly less than other.
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// GreaterThan reports whether m is strictly greater than other.
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// String renders the amount with exactly 2 decimal places, e.g. "207.00".
func (m Money) String() string {
	return m.amount.StringFixed(moneyScale)
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON decodes a decimal string or number, rounding to 2 decimals.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("money amount", err)
	}
	m.amount = round2(d)
	return nil
}

// ExtractExVat splits a VAT-inclusive price into its ex-VAT base and VAT
// component so that exVat + vat == priceIncVat exactly. The ex-VAT base is
// rounded half-up first and the VAT component is the remainder, so any
// residual cent from rounding is absorbed into VAT, never the base price.
func ExtractExVat(priceIncVat Money, vatRate Rate) (exVat Money, vat Money) {
	divisor := decimal.NewFromInt(1).Add(vatRate.Value())
	exVat = Money{amount: round2(priceIncVat.amount.DivRound(divisor, moneyScale+4))}
	vat = priceIncVat.Sub(exVat)
	return exVat, vat
}

// Rate is an immutable fractional rate in [0, 1), used for VAT and commission
// percentages. A Rate is frozen into an order at placement time; later
// configuration changes never alter historical snapshots.
type Rate struct {
	value         decimal.Decimal
	isConstructed bool
}

// ErrRateIsNotConstructed is returned when validating a zero-value Rate.
var ErrRateIsNotConstructed = errs.NewValueIsRequiredError("Rate must be created via NewRate or RateFromString")

// NewRate creates a Rate from a decimal value.
// The value must satisfy 0 <= value < 1.
func NewRate(value decimal.Decimal) (Rate, error) {
	if value.IsNegative() || value.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Rate{}, errs.NewValueIsOutOfRangeError("rate", value.String(), "0", "1")
	}
	return Rate{value: value, isConstructed: true}, nil
}

// RateFromString parses a Rate from a decimal string such as "0.15".
func RateFromString(s string) (Rate, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, errs.NewValueIsInvalidErrorWithCause("rate", err)
	}
	return NewRate(d)
}

// Value returns the underlying decimal value.
func (r Rate) Value() decimal.Decimal {
	return r.value
}

// IsZero reports whether the rate is exactly zero.
func (r Rate) IsZero() bool {
	return r.value.IsZero()
}

// String renders the rate as plain decimal text, e.g. "0.15".
func (r Rate) String() string {
	return r.value.String()
}

// MarshalJSON encodes the rate as a quoted decimal string.
func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.value.String() + `"`), nil
}

// UnmarshalJSON decodes and validates a rate from a decimal string or number.
func (r *Rate) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("rate", err)
	}
	parsed, err := NewRate(d)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Validate checks that the Rate was created through a constructor.
func (r Rate) Validate() error {
	if !r.isConstructed {
		return ErrRateIsNotConstructed
	}
	return nil
}

// MustMoney is a test and configuration helper that panics on an invalid amount.
func MustMoney(s string) Money {
	m, err := NewMoneyFromString(s)
	if err != nil {
		panic(fmt.Sprintf("invalid money %q: %v", s, err))
	}
	return m
}

// MustRate is a test and configuration helper that panics on an invalid rate.
func MustRate(s string) Rate {
	r, err := RateFromString(s)
	if err != nil {
		panic(fmt.Sprintf("invalid rate %q: %v", s, err))
	}
	return r
}
