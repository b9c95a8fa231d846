package kernel

import (
	"fmt"

	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits every amount is rounded to.
const MoneyScale = 2

// ErrMoneyIsNotConstructed is returned by Validate on a zero Money, for example a price
// field that was never set.
var ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError("money must be created via NewMoney, MoneyFromString or ZeroMoney")

// Money is a non-negative amount in the marketplace currency.
// Prices and totals are computed server side with exact decimal arithmetic.
type Money struct {
	amount decimal.Decimal
	guard  guard.ConstructorGuard
}

// NewMoney rounds d to MoneyScale digits and rejects negative amounts.
func NewMoney(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, errs.NewValueIsOutOfRangeError("amount", d.String(), "0", "unbounded")
	}
	return Money{amount: d.Round(MoneyScale), guard: guard.NewConstructorGuard()}, nil
}

// MoneyFromString parses a decimal string such as "100" or "19.99".
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	return NewMoney(d)
}

// MustMoney is MoneyFromString for literals known to be valid. It panics otherwise.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(fmt.Sprintf("kernel: invalid money literal %q: %v", s, err))
	}
	return m
}

// ZeroMoney returns a constructed zero amount, the starting point for sums.
//
// Example:
//
//	total := kernel.ZeroMoney()
//	for _, item := range items {
//	    total = total.Add(item.Subtotal())
//	}
func ZeroMoney() Money {
	return Money{amount: decimal.Zero, guard: guard.NewConstructorGuard()}
}

// Validate reports ErrMoneyIsNotConstructed for a Money that bypassed the constructors.
func (m Money) Validate() error {
	return m.guard.Validate(ErrMoneyIsNotConstructed)
}

// Decimal returns the exact amount, for storage in NUMERIC columns and for comparisons.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount), guard: guard.NewConstructorGuard()}
}

// Multiply returns m * qty. A negative qty is treated as zero.
func (m Money) Multiply(qty int) Money {
	if qty < 0 {
		qty = 0
	}
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(qty))), guard: guard.NewConstructorGuard()}
}

// IsEqual compares amounts numerically, so 1.5 and 1.50 are equal.
//
// Example:
//
//	kernel.MustMoney("1.5").IsEqual(kernel.MustMoney("1.50")) // true
func (m Money) IsEqual(other Money) bool {
	return m.amount.Equal(other.amount)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// String renders the amount with exactly MoneyScale fractional digits.
func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale)
}
