package shared

import "errors"

// Money is a value object holding an amount in minor currency units
// (centavos for COP). Amounts are never negative.
type Money struct {
	amount   int64
	currency string
}

var (
	ErrCurrencyMismatch = errors.New("cannot combine money with different currencies")
	ErrNegativeAmount   = errors.New("money amount cannot be negative")
	ErrAmountOverflow   = errors.New("money amount overflows int64")
)

// NewMoney creates a Money value. Negative amounts are rejected.
func NewMoney(amount int64, currency string) (*Money, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}
	return &Money{amount: amount, currency: currency}, nil
}

// MustMoney is NewMoney for amounts already known to be valid
// (reconstruction from storage, zero accumulators). Panics on negative input.
func MustMoney(amount int64, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return *m
}

func (m Money) Amount() int64    { return m.amount }
func (m Money) Currency() string { return m.currency }
func (m Money) IsZero() bool     { return m.amount == 0 }

// Add returns a new Money with the sum of both amounts.
func (m Money) Add(other Money) (*Money, error) {
	if m.currency != other.currency {
		return nil, ErrCurrencyMismatch
	}
	sum := m.amount + other.amount
	if sum < m.amount {
		return nil, ErrAmountOverflow
	}
	return &Money{amount: sum, currency: m.currency}, nil
}

// Subtract returns a new Money with the difference. The result must not go
// negative; callers relying on this (seller net derivation) treat the error
// as a validation failure.
func (m Money) Subtract(other Money) (*Money, error) {
	if m.currency != other.currency {
		return nil, ErrCurrencyMismatch
	}
	diff := m.amount - other.amount
	if diff < 0 {
		return nil, ErrNegativeAmount
	}
	return &Money{amount: diff, currency: m.currency}, nil
}

// Multiply scales the amount by a non-negative integer factor with overflow
// checking. Used to derive line totals from unit price and quantity.
func (m Money) Multiply(factor int) (*Money, error) {
	if factor < 0 {
		return nil, ErrNegativeAmount
	}
	if factor == 0 || m.amount == 0 {
		return &Money{amount: 0, currency: m.currency}, nil
	}
	product := m.amount * int64(factor)
	if product/int64(factor) != m.amount {
		return nil, ErrAmountOverflow
	}
	return &Money{amount: product, currency: m.currency}, nil
}

func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

func (m Money) IsGreaterThan(other Money) bool {
	return m.amount > other.amount
}
