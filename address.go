package goalpool

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// addressHexLen is the number of hex characters after the 0x prefix.
const addressHexLen = 2 * common.AddressLength

// Address is a validated 20-byte account or contract address.
// The zero value is the zero address; any other value comes from
// ValidateAddress or from decoding a contract result.
type Address struct {
	addr common.Address
}

func (Address) isValue() {}

// ValidateAddress checks that candidate is 0x followed by exactly 40 hex
// characters. Mixed-case input must also carry a valid EIP-55 checksum.
// The label names the field in the returned error.
func ValidateAddress(candidate, label string) (Address, error) {
	fail := func(reason string) (Address, error) {
		return Address{}, &InvalidAddressError{Label: label, Value: candidate, Reason: reason}
	}

	if candidate == "" {
		return fail("empty")
	}
	if !strings.HasPrefix(candidate, "0x") {
		return fail("missing 0x prefix")
	}
	digits := candidate[2:]
	if len(digits) != addressHexLen {
		return fail("wrong length")
	}
	for _, c := range digits {
		if !isHexDigit(c) {
			return fail("non-hex character")
		}
	}

	if hasLower(digits) && hasUpper(digits) {
		mixed, err := common.NewMixedcaseAddressFromString(candidate)
		if err != nil {
			return fail(err.Error())
		}
		if !mixed.ValidChecksum() {
			return fail("bad EIP-55 checksum")
		}
	}

	return Address{addr: common.HexToAddress(candidate)}, nil
}

// MustAddress is like ValidateAddress but panics on error.
// Use only with compile-time constant values.
func MustAddress(candidate string) Address {
	a, err := ValidateAddress(candidate, "address")
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the canonical lowercase 0x-prefixed form.
func (a Address) String() string {
	return hexutil.Encode(a.addr[:])
}

// Common returns the go-ethereum representation for ABI packing.
func (a Address) Common() common.Address {
	return a.addr
}

func isHexDigit(c rune) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func hasLower(s string) bool {
	return strings.ContainsAny(s, "abcdef")
}

func hasUpper(s string) bool {
	return strings.ContainsAny(s, "ABCDEF")
}
