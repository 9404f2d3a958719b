// Package fixedpoint converts user facing decimal token amounts to and from
// the integer base units programs operate on.
package fixedpoint

import (
	"math"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// MaxExponent is the largest supported decimal exponent. SPL mints use far
// fewer, and 10^18 still fits in a u64.
const MaxExponent = 18

const (
	// Any amount with more integer digits than this overflows a u64 in base
	// units, whatever the mint's exponent.
	maxIntegerDigits = 20

	// maxFractionDigits bounds how far below one base unit an amount may
	// reach. Rounding rescales by 10^digits, so the bound keeps it cheap.
	maxFractionDigits = 4096
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("amount cannot be negative")
	ErrAmountOverflow   = errors.New("amount overflows u64 base units")
	ErrExponentTooLarge = errors.New("decimal exponent too large")
)

// Parse parses a user entered decimal string, such as "12.5".
func Parse(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return decimal.Zero, ErrInvalidAmount
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, errors.Wrap(ErrInvalidAmount, err.Error())
	}
	if err := Validate(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// Validate checks the amount's magnitude from its coefficient and exponent
// alone. Scientific notation makes tiny inputs like "1e50000000" denote
// numbers that would take minutes to materialize, so this must pass before
// any operation that rescales the amount (including String).
func Validate(amount decimal.Decimal) error {
	exp := int64(amount.Exponent())
	digits := int64(len(new(big.Int).Abs(amount.Coefficient()).String()))

	if exp+digits > maxIntegerDigits {
		return errors.Wrapf(ErrAmountOverflow, "more than %d integer digits", maxIntegerDigits)
	}
	if exp < -maxFractionDigits {
		return errors.Wrapf(ErrInvalidAmount, "more than %d fractional digits", maxFractionDigits)
	}
	return nil
}

// ToBaseUnits returns round(amount * 10^exponent).
//
// The whole part is scaled on its own so it's always exact. Only the
// fractional part is rounded, half up, to the nearest base unit.
func ToBaseUnits(amount decimal.Decimal, exponent uint8) (*big.Int, error) {
	if exponent > MaxExponent {
		return nil, errors.Wrapf(ErrExponentTooLarge, "%d > %d", exponent, MaxExponent)
	}
	if err := Validate(amount); err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exponent)), nil)

	whole := amount.Truncate(0)
	wholeUnits := new(big.Int).Mul(whole.BigInt(), scale)

	// Round rounds half away from zero, which is half up for non-negative
	// values.
	fraction := amount.Sub(whole)
	fractionUnits := fraction.Shift(int32(exponent)).Round(0).BigInt()

	return wholeUnits.Add(wholeUnits, fractionUnits), nil
}

// ToUint64BaseUnits is ToBaseUnits for amounts embedded in instruction data.
func ToUint64BaseUnits(amount decimal.Decimal, exponent uint8) (uint64, error) {
	units, err := ToBaseUnits(amount, exponent)
	if err != nil {
		return 0, err
	}

	if !units.IsUint64() {
		return 0, errors.Wrapf(ErrAmountOverflow, "%s base units > %d", units.String(), uint64(math.MaxUint64))
	}
	return units.Uint64(), nil
}

// FromBaseUnits converts base units back to a decimal amount.
func FromBaseUnits(units *big.Int, exponent uint8) decimal.Decimal {
	return decimal.NewFromBigInt(units, -int32(exponent))
}

// FromUint64BaseUnits is FromBaseUnits for on-chain u64 values.
func FromUint64BaseUnits(units uint64, exponent uint8) decimal.Decimal {
	return FromBaseUnits(new(big.Int).SetUint64(units), exponent)
}
