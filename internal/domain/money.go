package domain

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"

	"banking-ledger/internal/errors"
)

// MoneyScale is the number of minor-unit digits a Money value carries.
const MoneyScale = 2

// Money is an exact fixed-point monetary amount with MoneyScale fractional
// digits, backed by a scaled-integer decimal. The zero value is 0.00.
type Money struct {
	dec decimal.Decimal
}

// ZeroMoney is the additive identity.
var ZeroMoney = Money{}

// NewMoney validates that d fits the supported scale.
func NewMoney(d decimal.Decimal) (Money, error) {
	if !d.Equal(d.Truncate(MoneyScale)) {
		return Money{}, errors.ErrInvalidAmount.WithDetails("more than two decimal places: " + d.String())
	}
	return Money{dec: d}, nil
}

// ParseMoney parses a decimal string such as "100.00".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errors.ErrInvalidAmount.WithDetails(err.Error())
	}
	return NewMoney(d)
}

// NewMoneyFromFloat rejects non-finite input before converting.
func NewMoneyFromFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, errors.ErrInvalidAmount.WithDetails("non-finite value")
	}
	return NewMoney(decimal.NewFromFloat(f))
}

// MustMoney is a test helper; it panics on invalid input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money {
	return Money{dec: m.dec.Add(o.dec)}
}

func (m Money) Sub(o Money) Money {
	return Money{dec: m.dec.Sub(o.dec)}
}

// Cmp returns -1, 0 or 1; Money is totally ordered.
func (m Money) Cmp(o Money) int {
	return m.dec.Cmp(o.dec)
}

func (m Money) Equal(o Money) bool {
	return m.dec.Equal(o.dec)
}

func (m Money) LessThan(o Money) bool {
	return m.dec.LessThan(o.dec)
}

func (m Money) IsPositive() bool {
	return m.dec.IsPositive()
}

func (m Money) IsNegative() bool {
	return m.dec.IsNegative()
}

// String renders with exactly MoneyScale fractional digits, e.g. "60.00".
func (m Money) String() string {
	return m.dec.StringFixed(MoneyScale)
}

// Decimal exposes the underlying value for persistence code.
func (m Money) Decimal() decimal.Decimal {
	return m.dec
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.ErrInvalidAmount.WithDetails("amount must be a decimal string")
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
