package goalpool

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Mutability classifies a contract function by whether it changes chain state.
type Mutability uint8

const (
	// ReadOnly functions are declared view or pure.
	ReadOnly Mutability = iota

	// StateChanging functions are declared nonpayable or payable.
	StateChanging
)

func (m Mutability) String() string {
	if m == ReadOnly {
		return "read-only"
	}
	return "state-changing"
}

// ContractDescriptor binds a validated contract address to its ABI.
// It is immutable once created.
type ContractDescriptor struct {
	address Address
	abi     abi.ABI
}

// NewContractDescriptor creates a descriptor for the contract at address.
func NewContractDescriptor(address Address, contractABI abi.ABI) *ContractDescriptor {
	return &ContractDescriptor{
		address: address,
		abi:     contractABI,
	}
}

// Address returns the contract address.
func (d *ContractDescriptor) Address() Address {
	return d.address
}

// ABI returns the contract ABI.
func (d *ContractDescriptor) ABI() abi.ABI {
	return d.abi
}

// Method returns the ABI method for name.
func (d *ContractDescriptor) Method(name string) (abi.Method, error) {
	method, ok := d.abi.Methods[name]
	if !ok {
		return abi.Method{}, fmt.Errorf("%w: %q", ErrFunctionNotFound, name)
	}
	return method, nil
}

// Mutability returns the declared mutability of the named function.
func (d *ContractDescriptor) Mutability(name string) (Mutability, error) {
	method, err := d.Method(name)
	if err != nil {
		return 0, err
	}
	if method.IsConstant() {
		return ReadOnly, nil
	}
	return StateChanging, nil
}

// HasMethod returns true if the contract has a method with the given name.
func (d *ContractDescriptor) HasMethod(name string) bool {
	_, ok := d.abi.Methods[name]
	return ok
}

// MethodNames returns all method names in the contract ABI, sorted.
func (d *ContractDescriptor) MethodNames() []string {
	names := make([]string, 0, len(d.abi.Methods))
	for name := range d.abi.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseABI parses a JSON ABI string into an abi.ABI.
// Both a bare ABI array and a Hardhat/Foundry artifact object carrying an
// "abi" field are accepted.
func ParseABI(abiJSON string) (abi.ABI, error) {
	return parseABIBytes([]byte(abiJSON))
}

// MustParseABI is like ParseABI but panics on error.
func MustParseABI(abiJSON string) abi.ABI {
	parsed, err := ParseABI(abiJSON)
	if err != nil {
		panic(err)
	}
	return parsed
}

// LoadDescriptor reads the ABI file at path and binds it to address.
// A missing or malformed file is a ConfigurationError.
func LoadDescriptor(path string, address Address) (*ContractDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Key: "ABI_PATH", Err: err}
	}
	parsed, err := parseABIBytes(data)
	if err != nil {
		return nil, &ConfigurationError{Key: "ABI_PATH", Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	if len(parsed.Methods) == 0 {
		return nil, &ConfigurationError{Key: "ABI_PATH", Err: fmt.Errorf("%s declares no functions", path)}
	}
	return NewContractDescriptor(address, parsed), nil
}

type contractArtifact struct {
	ABI json.RawMessage `json:"abi"`
}

func parseABIBytes(data []byte) (abi.ABI, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return abi.ABI{}, errors.New("empty ABI")
	}
	if trimmed[0] == '{' {
		var artifact contractArtifact
		if err := json.Unmarshal(trimmed, &artifact); err != nil {
			return abi.ABI{}, fmt.Errorf("decode artifact: %w", err)
		}
		if len(artifact.ABI) == 0 {
			return abi.ABI{}, errors.New("artifact has no abi field")
		}
		trimmed = artifact.ABI
	}
	return abi.JSON(strings.NewReader(string(trimmed)))
}
