package goalpool

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ReceiptBackend is the subset of the Ethereum RPC used to follow a
// submitted transaction. *ethclient.Client satisfies it.
type ReceiptBackend interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (tx *types.Transaction, isPending bool, err error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// Awaiter waits for a submitted transaction to reach a terminal state.
type Awaiter interface {
	AwaitConfirmation(ctx context.Context, txID common.Hash, timeout time.Duration) (*WriteResult, error)
}

// Tracker polls the node for the receipt of a submitted transaction.
type Tracker struct {
	backend       ReceiptBackend
	pollInterval  time.Duration
	confirmations uint64
	dropThreshold int
	logger        *slog.Logger
}

var _ Awaiter = (*Tracker)(nil)

// NewTracker creates a tracker polling backend.
func NewTracker(backend ReceiptBackend, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		backend:       backend,
		pollInterval:  DefaultPollInterval,
		confirmations: DefaultConfirmations,
		dropThreshold: DefaultDropThreshold,
		logger:        discardLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AwaitConfirmation polls until txID is confirmed, reverted or dropped.
// It returns a TimeoutError if none of those is observed within timeout.
// The timeout also bounds each RPC call, so a stalled node cannot hold the
// wait open past it. Giving up, by timeout or by cancelling ctx, does not
// cancel the transaction.
func (t *Tracker) AwaitConfirmation(ctx context.Context, txID common.Hash, timeout time.Duration) (*WriteResult, error) {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	unknown := 0
	for {
		result, done := t.poll(pollCtx, txID, &unknown)
		if done {
			return result, nil
		}

		select {
		case <-pollCtx.Done():
			return nil, t.giveUp(ctx, txID, timeout)
		case <-ticker.C:
		}
	}
}

// giveUp reports why the wait ended once the polling context is done.
// Cancellation of the caller's context wins over the timeout.
func (t *Tracker) giveUp(ctx context.Context, txID common.Hash, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return &AwaitError{TxID: txID, Err: err}
	}
	return &TimeoutError{TxID: txID, Timeout: timeout}
}

// poll performs one round of checks. Transient RPC errors are logged and
// treated as "no terminal state yet".
func (t *Tracker) poll(ctx context.Context, txID common.Hash, unknown *int) (*WriteResult, bool) {
	log := t.logger.With("tx", txID.Hex())

	receipt, err := t.backend.TransactionReceipt(ctx, txID)
	switch {
	case err == nil && receipt != nil:
		*unknown = 0
		return t.fromReceipt(ctx, txID, receipt, log)
	case ctx.Err() != nil:
		return nil, false
	case err != nil && !errors.Is(err, ethereum.NotFound):
		log.Warn("receipt lookup failed", "error", err)
		return nil, false
	}

	_, isPending, err := t.backend.TransactionByHash(ctx, txID)
	switch {
	case errors.Is(err, ethereum.NotFound):
		*unknown++
		log.Debug("transaction unknown to node", "polls", *unknown)
		if *unknown >= t.dropThreshold {
			return &WriteResult{TxID: txID, Status: Failed, Reason: "dropped"}, true
		}
	case err != nil:
		log.Warn("transaction lookup failed", "error", err)
	default:
		*unknown = 0
		log.Debug("awaiting inclusion", "pending", isPending)
	}
	return nil, false
}

func (t *Tracker) fromReceipt(ctx context.Context, txID common.Hash, receipt *types.Receipt, log *slog.Logger) (*WriteResult, bool) {
	var block *WideUint
	if receipt.BlockNumber != nil {
		if b, err := WideUintFromBig(receipt.BlockNumber); err == nil {
			block = &b
		}
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return &WriteResult{TxID: txID, Status: Failed, ConfirmedBlock: block, Reason: "reverted"}, true
	}

	if t.confirmations > 1 {
		if receipt.BlockNumber == nil {
			return nil, false
		}
		head, err := t.backend.HeaderByNumber(ctx, nil)
		if err != nil || head == nil || head.Number == nil {
			log.Warn("head lookup failed", "error", err)
			return nil, false
		}
		depth := new(big.Int).Sub(head.Number, receipt.BlockNumber)
		depth.Add(depth, big.NewInt(1))
		if depth.Cmp(new(big.Int).SetUint64(t.confirmations)) < 0 {
			log.Debug("awaiting confirmations", "have", depth.String(), "want", t.confirmations)
			return nil, false
		}
	}

	return &WriteResult{TxID: txID, Status: Confirmed, ConfirmedBlock: block}, true
}
