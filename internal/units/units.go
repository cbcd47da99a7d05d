// Package units converts between human-entered decimal strings and the integer
// representations the token contracts use: base units for supplies and basis
// points for transfer fees.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultDecimals is the decimals value every factory-created token uses.
const DefaultDecimals = 18

// MaxFeePercentage is the client-side upper bound for a transfer fee. The
// factory and token contracts enforce the same bound on-chain.
var MaxFeePercentage = decimal.NewFromInt(10)

var hundred = decimal.NewFromInt(100)

// Errors.
var (
	ErrEmptyAmount     = errors.New("amount is empty")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrTooPrecise      = errors.New("amount has more fractional digits than the token supports")
	ErrFeeOutOfRange   = errors.New("fee percentage must be between 0 and 10")
	ErrInvalidDecimals = errors.New("decimals must be between 0 and 77")
)

// ParseUnits converts a decimal string such as "1000" or "0.5" into base units
// for a token with the given decimals.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	if decimals < 0 || decimals > 77 {
		return nil, ErrInvalidDecimals
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, ErrNegativeAmount
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q with %d decimals", ErrTooPrecise, s, decimals)
	}
	return shifted.BigInt(), nil
}

// FormatUnits renders base units as a decimal string without trailing zeros.
func FormatUnits(raw *big.Int, decimals int) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, int32(-decimals)).String()
}

// ParsePercentage parses a user-entered fee percentage and checks it against
// [0, MaxFeePercentage].
func ParsePercentage(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	p, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid percentage %q: %w", s, err)
	}
	if p.IsNegative() || p.GreaterThan(MaxFeePercentage) {
		return decimal.Zero, fmt.Errorf("%w (got %s)", ErrFeeOutOfRange, p.String())
	}
	return p, nil
}

// ToBasisPoints converts a percentage to basis points, truncating toward zero:
// 1.5 -> 150, 1.505 -> 150, 1.239 -> 123.
func ToBasisPoints(p decimal.Decimal) *big.Int {
	return p.Mul(hundred).Truncate(0).BigInt()
}

// ToPercentage converts basis points back to a percentage (bp / 100).
func ToPercentage(bp *big.Int) decimal.Decimal {
	if bp == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(bp, -2)
}

// FormatPercentage renders basis points for display, e.g. 150 -> "1.5%".
func FormatPercentage(bp *big.Int) string {
	return ToPercentage(bp).String() + "%"
}
