package goalpool

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// WideUint is a non-negative integer up to 2^256-1, the widest unsigned type
// an EVM function can take. It never passes through a floating point type.
type WideUint struct {
	v uint256.Int
}

func (WideUint) isValue() {}

// ParseWideUint parses a non-negative base-10 integer literal. Signs, decimal
// points, exponents, separators and surrounding whitespace are rejected.
// Leading zeros are accepted and normalized away.
func ParseWideUint(external, label string) (WideUint, error) {
	fail := func(reason string) (WideUint, error) {
		return WideUint{}, &InvalidNumberError{Label: label, Value: external, Reason: reason}
	}

	if external == "" {
		return fail("empty")
	}
	for _, c := range external {
		if c < '0' || c > '9' {
			return fail(describeNonDigit(c))
		}
	}

	digits := strings.TrimLeft(external, "0")
	if digits == "" {
		return WideUint{}, nil
	}

	b, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return fail("not a base-10 integer")
	}
	var w WideUint
	if overflow := w.v.SetFromBig(b); overflow {
		return fail("exceeds 2^256-1")
	}
	return w, nil
}

// MustWideUint is like ParseWideUint but panics on error.
// Use only with compile-time constant values.
func MustWideUint(external string) WideUint {
	w, err := ParseWideUint(external, "value")
	if err != nil {
		panic(err)
	}
	return w
}

// NewWideUint creates a WideUint from a uint64.
func NewWideUint(v uint64) WideUint {
	var w WideUint
	w.v.SetUint64(v)
	return w
}

// WideUintFromBig converts a decoded chain value. Negative or oversized values
// indicate the descriptor does not match the contract and are an error.
func WideUintFromBig(b *big.Int) (WideUint, error) {
	if b == nil {
		return WideUint{}, errors.New("nil integer")
	}
	if b.Sign() < 0 {
		return WideUint{}, fmt.Errorf("negative integer %s", b.String())
	}
	var w WideUint
	if overflow := w.v.SetFromBig(b); overflow {
		return WideUint{}, fmt.Errorf("integer %s exceeds 256 bits", b.String())
	}
	return w, nil
}

// Big returns a fresh *big.Int copy for ABI packing.
func (w WideUint) Big() *big.Int {
	return w.v.ToBig()
}

// BitLen returns the number of significant bits.
func (w WideUint) BitLen() int {
	return w.v.BitLen()
}

// String returns the canonical decimal form.
func (w WideUint) String() string {
	return w.v.Dec()
}

// Display renders a value through the single formatting path used for all
// console and log output: decimal for WideUint, lowercase 0x hex for Address.
func Display(v Value) string {
	switch val := v.(type) {
	case WideUint:
		return val.String()
	case Address:
		return val.String()
	case nil:
		return "<nil>"
	default:
		panic(fmt.Sprintf("goalpool: unknown value type %T", v))
	}
}

func describeNonDigit(c rune) string {
	switch c {
	case '-', '+':
		return "sign not allowed"
	case '.':
		return "decimal point not allowed"
	case 'e', 'E':
		return "scientific notation not allowed"
	case ',', '_', '\'':
		return "separators not allowed"
	case ' ', '\t', '\n', '\r':
		return "whitespace not allowed"
	default:
		return fmt.Sprintf("non-digit character %q", c)
	}
}
