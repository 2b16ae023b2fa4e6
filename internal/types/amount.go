// internal/types/amount.go
package types

import (
	"fmt"
	"math/big"
	"strings"
)

// LamportDecimals is the number of fractional digits of the native currency.
const LamportDecimals = 9

// MaxDecimals is the largest mint precision accepted by token workflows.
const MaxDecimals = 9

// Amount is an exact non-floating decimal quantity, e.g. "0.1" SOL or a token supply.
type Amount struct {
	r *big.Rat
}

// ParseAmount parses a plain decimal string such as "100", "0.01" or "-3.5".
// Exponents and fractions are rejected.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}

	digits := strings.TrimPrefix(s, "-")
	digits = strings.TrimPrefix(digits, "+")
	if digits == "" || digits == "." {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	dots := 0
	for _, c := range digits {
		switch {
		case c == '.':
			dots++
		case c < '0' || c > '9':
			return Amount{}, fmt.Errorf("invalid amount %q", s)
		}
	}
	if dots > 1 {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}

	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	return Amount{r: r}, nil
}

// MustParseAmount is ParseAmount for constants; it panics on bad input.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) rat() *big.Rat {
	if a.r == nil {
		return new(big.Rat)
	}
	return a.r
}

// Sign returns -1, 0 or +1.
func (a Amount) Sign() int {
	return a.rat().Sign()
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.Sign() == 0
}

// Cmp compares a and b.
func (a Amount) Cmp(b Amount) int {
	return a.rat().Cmp(b.rat())
}

// String renders the amount with up to MaxDecimals fractional digits, trailing zeros trimmed.
func (a Amount) String() string {
	s := a.rat().FloatString(MaxDecimals)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// ToRaw scales the amount by 10^decimals and rounds half-up to an integer
// count of base units. Negative amounts and results that do not fit in
// uint64 are rejected.
func (a Amount) ToRaw(decimals uint8) (uint64, error) {
	if a.Sign() < 0 {
		return 0, fmt.Errorf("amount %s is negative", a)
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	scaled := new(big.Rat).Mul(a.rat(), new(big.Rat).SetInt(scale))

	// floor(x + 1/2) for x >= 0
	scaled.Add(scaled, big.NewRat(1, 2))
	raw := new(big.Int).Quo(scaled.Num(), scaled.Denom())

	if !raw.IsUint64() {
		return 0, fmt.Errorf("amount %s with %d decimals overflows 64 bits", a, decimals)
	}
	return raw.Uint64(), nil
}

// ToLamports converts a native-currency amount to lamports.
func (a Amount) ToLamports() (uint64, error) {
	return a.ToRaw(LamportDecimals)
}

// AmountFromRaw builds an Amount from base units, the inverse of ToRaw without rounding.
func AmountFromRaw(raw uint64, decimals uint8) Amount {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return Amount{r: new(big.Rat).SetFrac(new(big.Int).SetUint64(raw), scale)}
}
