package goalpool

import (
	"github.com/ethereum/go-ethereum/common"
)

// TxStatus is the lifecycle state of a submitted transaction.
type TxStatus uint8

const (
	// Pending means the transaction was sent and no terminal state is known.
	Pending TxStatus = iota

	// Confirmed means the transaction was included and executed successfully.
	Confirmed

	// Failed means the transaction reverted or was dropped.
	Failed
)

func (s TxStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// CallResult is the outcome of one gateway operation.
// This is a sealed interface - only ReadResult and WriteResult implement it.
type CallResult interface {
	isCallResult()
}

// ReadResult holds the decoded outputs of a read-only call, in declaration order.
type ReadResult struct {
	Function string
	Values   []Value
}

func (*ReadResult) isCallResult() {}

// WriteResult tracks a state-changing submission.
type WriteResult struct {
	Function       string
	TxID           common.Hash
	Status         TxStatus
	ConfirmedBlock *WideUint
	Reason         string
}

func (*WriteResult) isCallResult() {}
