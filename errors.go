package goalpool

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for common failure conditions.
var (
	// ErrFunctionNotFound indicates the descriptor has no function with the requested name.
	ErrFunctionNotFound = errors.New("goalpool: function not found in contract descriptor")

	// ErrArgumentCount indicates the number of arguments differs from the declared inputs.
	ErrArgumentCount = errors.New("goalpool: argument count does not match function signature")

	// ErrArgumentType indicates an argument's kind differs from the declared input type.
	ErrArgumentType = errors.New("goalpool: argument type does not match function signature")

	// ErrUnsupportedType indicates a declared input or output type outside address/uintN.
	ErrUnsupportedType = errors.New("goalpool: unsupported ABI type (only address and uintN)")

	// ErrWrongMutability indicates a read was attempted on a state-changing function or vice versa.
	ErrWrongMutability = errors.New("goalpool: function mutability does not match operation")

	// ErrNoCredential indicates a write was attempted without a signing credential.
	ErrNoCredential = errors.New("goalpool: no signing credential configured")

	// ErrNoCode indicates there is no contract deployed at the target address.
	ErrNoCode = errors.New("goalpool: no contract code at target address")
)

// InvalidAddressError reports an externally supplied address that failed validation.
type InvalidAddressError struct {
	Label  string
	Value  string
	Reason string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("goalpool: %s %q is invalid: %s (expected 0x + 40 hex chars)", e.Label, e.Value, e.Reason)
}

// InvalidNumberError reports an external numeric string that is not a
// non-negative base-10 integer literal.
type InvalidNumberError struct {
	Label  string
	Value  string
	Reason string
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("goalpool: %s %q is invalid: %s", e.Label, e.Value, e.Reason)
}

// ContractCallError wraps a descriptor mismatch or a transport/contract level
// failure for the named function.
type ContractCallError struct {
	Function string
	Err      error
}

func (e *ContractCallError) Error() string {
	return fmt.Sprintf("goalpool: call %s: %v", e.Function, e.Err)
}

func (e *ContractCallError) Unwrap() error {
	return e.Err
}

// SigningError indicates a missing or unusable signing credential.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("goalpool: signing: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// TransactionRejectedError indicates the node refused the signed transaction
// before inclusion (nonce conflict, insufficient funds for gas, ...).
type TransactionRejectedError struct {
	Function string
	TxID     common.Hash
	Err      error
}

func (e *TransactionRejectedError) Error() string {
	return fmt.Sprintf("goalpool: transaction %s for %s rejected: %v", e.TxID.Hex(), e.Function, e.Err)
}

func (e *TransactionRejectedError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates no terminal state was observed for a submitted
// transaction. Its on-chain effect is unknown.
type TimeoutError struct {
	TxID    common.Hash
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("goalpool: transaction %s not confirmed within %s; it may still be included", e.TxID.Hex(), e.Timeout)
}

// TransactionFailedError reports a submitted transaction that the network
// reverted or dropped.
type TransactionFailedError struct {
	Result *WriteResult
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("goalpool: transaction %s for %s failed: %s", e.Result.TxID.Hex(), e.Result.Function, e.Result.Reason)
}

// ConfigurationError indicates missing or malformed startup configuration.
type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("goalpool: configuration %s: %v", e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// UsageError indicates an unknown command or a missing/extra argument.
type UsageError struct {
	Command string
	Reason  string
}

func (e *UsageError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("goalpool: usage: %s", e.Reason)
	}
	return fmt.Sprintf("goalpool: usage: %s: %s", e.Command, e.Reason)
}

// TxIDOf returns the transaction hash carried by err's chain, if any. Errors
// raised after a submission always carry one.
func TxIDOf(err error) (common.Hash, bool) {
	var rejected *TransactionRejectedError
	if errors.As(err, &rejected) && rejected.TxID != (common.Hash{}) {
		return rejected.TxID, true
	}
	var timeout *TimeoutError
	if errors.As(err, &timeout) {
		return timeout.TxID, true
	}
	var failed *TransactionFailedError
	if errors.As(err, &failed) && failed.Result != nil {
		return failed.Result.TxID, true
	}
	var pending *AwaitError
	if errors.As(err, &pending) {
		return pending.TxID, true
	}
	return common.Hash{}, false
}

// AwaitError wraps a failure that interrupted confirmation tracking of a
// transaction that was already submitted.
type AwaitError struct {
	TxID common.Hash
	Err  error
}

func (e *AwaitError) Error() string {
	return fmt.Sprintf("goalpool: awaiting transaction %s: %v (the transaction was submitted and is not cancelled)", e.TxID.Hex(), e.Err)
}

func (e *AwaitError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a local input validation failure
// that never reached the network.
func IsValidationError(err error) bool {
	var addrErr *InvalidAddressError
	var numErr *InvalidNumberError
	var usageErr *UsageError
	return errors.As(err, &addrErr) || errors.As(err, &numErr) || errors.As(err, &usageErr)
}
