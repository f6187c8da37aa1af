package chain

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseUnits converts a human-readable decimal amount into the token's
// base-unit integer representation.
func ParseUnits(value string, decimals int) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("amount is required")
	}
	if strings.HasPrefix(value, "-") {
		return nil, fmt.Errorf("amount must not be negative")
	}

	whole, fraction := value, ""
	if i := strings.IndexByte(value, '.'); i >= 0 {
		whole, fraction = value[:i], value[i+1:]
	}
	if whole == "" && fraction == "" {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if len(fraction) > decimals {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", value, decimals)
	}
	if whole == "" {
		whole = "0"
	}
	fraction += strings.Repeat("0", decimals-len(fraction))

	units, ok := new(big.Int).SetString(whole+fraction, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	return units, nil
}

// FormatUnits renders a base-unit amount as a full-precision decimal string.
func FormatUnits(units *big.Int, decimals int) string {
	if decimals == 0 {
		return units.String()
	}
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	q, r := new(big.Int).QuoRem(units, den, new(big.Int))
	fraction := strings.TrimRight(fmt.Sprintf("%0*d", decimals, r), "0")
	if fraction == "" {
		return q.String()
	}
	return fmt.Sprintf("%s.%s", q, fraction)
}

// FormatBalance renders a base-unit amount with exactly two decimal places,
// rounding half up, the shape the balance display expects.
func FormatBalance(units *big.Int, decimals int) string {
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	cents := new(big.Int).Mul(units, big.NewInt(100))
	q, r := new(big.Int).QuoRem(cents, den, new(big.Int))
	if new(big.Int).Mul(r, big.NewInt(2)).Cmp(den) >= 0 {
		q.Add(q, big.NewInt(1))
	}
	whole, frac := new(big.Int).QuoRem(q, big.NewInt(100), new(big.Int))
	return fmt.Sprintf("%s.%02d", whole, frac)
}

// ZeroBalance is the displayed balance when no value is known.
const ZeroBalance = "0.00"
