package kernel

import (
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
)

// Money represents a currency amount in minor units (cents).
// Using integer cents keeps ledger math exact: splitting payouts and summing
// wallet balances never accumulates floating point drift.
type Money int64

// NewMoneyFromFloat converts a major-unit amount (e.g. 15.00) to Money,
// rounding to the nearest cent. Rejects NaN, infinities, and negative amounts.
func NewMoneyFromFloat(amount float64) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, errs.NewValueIsInvalidError("amount")
	}
	if amount < 0 {
		return 0, errs.NewValueIsOutOfRangeError("amount", amount, 0, math.MaxFloat64)
	}
	return Money(math.Round(amount * 100)), nil
}

// Float returns the amount in major units.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// Cents returns the raw minor-unit value.
func (m Money) Cents() int64 {
	return int64(m)
}

// Share returns the given percentage of the amount, rounded half away from
// zero. Share(70) of 15.00 is 10.50.
func (m Money) Share(percent int) Money {
	return Money(math.Round(float64(m) * float64(percent) / 100))
}

// String returns the amount formatted in major units, e.g. "15.00".
// Implements the fmt.Stringer interface.
func (m Money) String() string {
	return fmt.Sprintf("%.2f", m.Float())
}
