package domain

import (
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount that always serialises with two decimal places,
// the way the storefront expects prices and totals ("10.00").
type Money struct {
	decimal.Decimal
}

// Amounts are stored as DECIMAL(10,2).
const (
	MoneyPlaces    = 2
	MoneyIntDigits = 8
)

var (
	ErrTooManyPlaces = errors.New("amount has more than 2 decimal places")
	ErrTooLarge      = errors.New("amount has more than 8 integer digits")
)

var moneyLimit = decimal.New(1, MoneyIntDigits)

// CheckRange reports whether m fits the storage column exactly.
func (m Money) CheckRange() error {
	if !m.Round(MoneyPlaces).Equal(m.Decimal) {
		return ErrTooManyPlaces
	}
	if m.Abs().GreaterThanOrEqual(moneyLimit) {
		return ErrTooLarge
	}
	return nil
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// ParseMoney parses a decimal string such as "5.5" or "10.00".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Decimal: d}, nil
}

func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) String() string {
	return m.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}
