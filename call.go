package goalpool

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// CallRequest is a validated invocation of one contract function.
// CallRequest is immutable and only constructed by NewCallRequest.
type CallRequest struct {
	target     Address
	method     abi.Method
	mutability Mutability
	args       []Value
	packed     []any
}

// NewCallRequest checks fn and args against the descriptor and returns a
// request ready for the gateway. Every failure is a ContractCallError and is
// raised before anything touches the network.
func NewCallRequest(desc *ContractDescriptor, fn string, args ...Value) (*CallRequest, error) {
	method, err := desc.Method(fn)
	if err != nil {
		return nil, &ContractCallError{Function: fn, Err: err}
	}
	if len(args) != len(method.Inputs) {
		return nil, &ContractCallError{
			Function: fn,
			Err:      fmt.Errorf("%w: want %d, got %d", ErrArgumentCount, len(method.Inputs), len(args)),
		}
	}

	packed := make([]any, len(args))
	for i, arg := range args {
		v, err := toABIValue(arg, method.Inputs[i].Type)
		if err != nil {
			return nil, &ContractCallError{
				Function: fn,
				Err:      fmt.Errorf("argument %d: %w", i, err),
			}
		}
		packed[i] = v
	}

	mutability := StateChanging
	if method.IsConstant() {
		mutability = ReadOnly
	}

	stored := make([]Value, len(args))
	copy(stored, args)

	return &CallRequest{
		target:     desc.Address(),
		method:     method,
		mutability: mutability,
		args:       stored,
		packed:     packed,
	}, nil
}

// Target returns the contract address the request is sent to.
func (r *CallRequest) Target() Address {
	return r.target
}

// Function returns the function name.
func (r *CallRequest) Function() string {
	return r.method.Name
}

// Method returns the ABI method for this request.
func (r *CallRequest) Method() abi.Method {
	return r.method
}

// Mutability returns the declared mutability of the function.
func (r *CallRequest) Mutability() Mutability {
	return r.mutability
}

// Args returns a copy of the arguments.
func (r *CallRequest) Args() []Value {
	out := make([]Value, len(r.args))
	copy(out, r.args)
	return out
}

// Selector returns the 4-byte function selector.
func (r *CallRequest) Selector() [4]byte {
	var sel [4]byte
	copy(sel[:], r.method.ID[:4])
	return sel
}

// Calldata returns the ABI-encoded selector and arguments.
func (r *CallRequest) Calldata() ([]byte, error) {
	input, err := r.method.Inputs.Pack(r.packed...)
	if err != nil {
		return nil, err
	}
	return append(r.method.ID[:4:4], input...), nil
}

// String renders the call as name(arg, ...) using Display.
func (r *CallRequest) String() string {
	parts := make([]string, len(r.args))
	for i, a := range r.args {
		parts[i] = Display(a)
	}
	return fmt.Sprintf("%s(%s)", r.method.Name, strings.Join(parts, ", "))
}
