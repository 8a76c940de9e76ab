package goalpool

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Value is an argument to or a result of a contract function.
// This is a sealed interface - only Address and WideUint implement it.
type Value interface {
	// isValue is unexported to seal the interface.
	isValue()

	// String returns the canonical display form.
	String() string
}

var (
	_ Value = Address{}
	_ Value = WideUint{}
)

// checkSupportedType reports whether t is one of the ABI types this client
// passes across the wire.
func checkSupportedType(t abi.Type) error {
	switch t.T {
	case abi.AddressTy:
		return nil
	case abi.UintTy:
		if t.Size == 0 || t.Size > 256 || t.Size%8 != 0 {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, t.String())
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t.String())
	}
}

// toABIValue converts a Value into the Go value abi.Pack expects for t,
// rejecting kind mismatches and integers wider than the parameter.
func toABIValue(v Value, t abi.Type) (any, error) {
	if err := checkSupportedType(t); err != nil {
		return nil, err
	}

	switch val := v.(type) {
	case Address:
		if t.T != abi.AddressTy {
			return nil, fmt.Errorf("%w: expected %s, got address", ErrArgumentType, t.String())
		}
		return val.Common(), nil

	case WideUint:
		if t.T != abi.UintTy {
			return nil, fmt.Errorf("%w: expected %s, got uint", ErrArgumentType, t.String())
		}
		if val.BitLen() > t.Size {
			return nil, fmt.Errorf("%w: %s does not fit in %s", ErrArgumentType, val.String(), t.String())
		}
		return packUint(val, t.Size), nil

	default:
		return nil, fmt.Errorf("%w: expected %s, got %T", ErrArgumentType, t.String(), v)
	}
}

// packUint returns the Go type go-ethereum's ABI packer maps to uintN.
func packUint(v WideUint, size int) any {
	b := v.Big()
	switch size {
	case 8:
		return uint8(b.Uint64())
	case 16:
		return uint16(b.Uint64())
	case 32:
		return uint32(b.Uint64())
	case 64:
		return b.Uint64()
	default:
		return b
	}
}

// fromABIValue converts an unpacked ABI output into a Value.
func fromABIValue(raw any, t abi.Type) (Value, error) {
	if err := checkSupportedType(t); err != nil {
		return nil, err
	}

	switch v := raw.(type) {
	case common.Address:
		return Address{addr: v}, nil
	case *big.Int:
		return WideUintFromBig(v)
	case uint8:
		return NewWideUint(uint64(v)), nil
	case uint16:
		return NewWideUint(uint64(v)), nil
	case uint32:
		return NewWideUint(uint64(v)), nil
	case uint64:
		return NewWideUint(v), nil
	default:
		return nil, fmt.Errorf("%w: unexpected decoded %T for %s", ErrUnsupportedType, raw, t.String())
	}
}
