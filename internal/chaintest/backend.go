// Package chaintest provides an in-memory Ethereum RPC backend for tests.
package chaintest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend answers eth_call by function selector, records sent transactions
// and serves receipts registered with Mine.
type Backend struct {
	mu sync.Mutex

	chainID   *big.Int
	code      []byte
	responses map[[4]byte][]byte
	receipts  map[common.Hash]*types.Receipt
	known     map[common.Hash]bool
	head      *big.Int

	// Injected failures.
	CallErr     error
	ChainIDErr  error
	EstimateErr error
	SendErr     error
	ReceiptErr  error

	// AutoKnow marks sent transactions as known to the node. Defaults to true.
	AutoKnow bool

	// Stalled makes receipt, transaction and header lookups block until
	// their context is done.
	Stalled bool

	calls        []ethereum.CallMsg
	sent         []*types.Transaction
	sendAttempts int
	requests     int
}

// NewBackend returns a backend for chain 31337 with contract code deployed.
func NewBackend() *Backend {
	return &Backend{
		chainID:   big.NewInt(31337),
		code:      []byte{0x60, 0x80, 0x60, 0x40},
		responses: make(map[[4]byte][]byte),
		receipts:  make(map[common.Hash]*types.Receipt),
		known:     make(map[common.Hash]bool),
		head:      big.NewInt(100),
		AutoKnow:  true,
	}
}

// SetCode replaces the code served for every address. Empty means no contract.
func (b *Backend) SetCode(code []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.code = code
}

// SetHead sets the latest block number.
func (b *Backend) SetHead(n uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = new(big.Int).SetUint64(n)
}

// Respond packs outputs for method and serves them for calls to its selector.
func (b *Backend) Respond(method abi.Method, outputs ...any) error {
	data, err := method.Outputs.Pack(outputs...)
	if err != nil {
		return fmt.Errorf("pack %s outputs: %w", method.Name, err)
	}
	b.RespondRaw(method, data)
	return nil
}

// RespondRaw serves data verbatim for calls to method's selector.
func (b *Backend) RespondRaw(method abi.Method, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sel [4]byte
	copy(sel[:], method.ID)
	b.responses[sel] = data
}

// Mine registers a receipt for txHash with the given status at block.
func (b *Backend) Mine(txHash common.Hash, status uint64, block uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receipts[txHash] = &types.Receipt{
		Status:      status,
		TxHash:      txHash,
		BlockNumber: new(big.Int).SetUint64(block),
	}
}

// MarkKnown makes the node report txHash as known (pending).
func (b *Backend) MarkKnown(txHash common.Hash) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.known[txHash] = true
}

// Forget makes the node report txHash as unknown.
func (b *Backend) Forget(txHash common.Hash) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.known, txHash)
}

// Calls returns the eth_call messages received.
func (b *Backend) Calls() []ethereum.CallMsg {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ethereum.CallMsg, len(b.calls))
	copy(out, b.calls)
	return out
}

// Sent returns the transactions accepted by SendTransaction.
func (b *Backend) Sent() []*types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*types.Transaction, len(b.sent))
	copy(out, b.sent)
	return out
}

// SendAttempts returns how many times SendTransaction was invoked.
func (b *Backend) SendAttempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sendAttempts
}

// Requests returns the total number of RPC methods invoked.
func (b *Backend) Requests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}

func (b *Backend) hit() {
	b.mu.Lock()
	b.requests++
	b.mu.Unlock()
}

func (b *Backend) stall(ctx context.Context) error {
	if !b.Stalled {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

// ChainID implements the chain id query.
func (b *Backend) ChainID(ctx context.Context) (*big.Int, error) {
	b.hit()
	if b.ChainIDErr != nil {
		return nil, b.ChainIDErr
	}
	return new(big.Int).Set(b.chainID), nil
}

// CodeAt returns the configured code.
func (b *Backend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	b.hit()
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.code, nil
}

// CallContract serves the response registered for the call's selector.
func (b *Backend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	b.hit()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
	if b.CallErr != nil {
		return nil, b.CallErr
	}
	if len(call.Data) < 4 {
		return nil, errors.New("execution reverted")
	}
	var sel [4]byte
	copy(sel[:], call.Data[:4])
	out, ok := b.responses[sel]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return out, nil
}

// HeaderByNumber returns a header at the current head with a base fee.
func (b *Backend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	b.hit()
	if err := b.stall(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.head
	if number != nil {
		n = number
	}
	return &types.Header{Number: new(big.Int).Set(n), BaseFee: big.NewInt(1_000_000_000)}, nil
}

// PendingCodeAt returns the configured code.
func (b *Backend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return b.CodeAt(ctx, account, nil)
}

// PendingNonceAt returns the number of transactions sent so far.
func (b *Backend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	b.hit()
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint64(len(b.sent)), nil
}

// SuggestGasPrice returns a fixed gas price.
func (b *Backend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	b.hit()
	return big.NewInt(2_000_000_000), nil
}

// SuggestGasTipCap returns a fixed tip.
func (b *Backend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	b.hit()
	return big.NewInt(1_000_000_000), nil
}

// EstimateGas returns a fixed limit unless EstimateErr is set.
func (b *Backend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	b.hit()
	if b.EstimateErr != nil {
		return 0, b.EstimateErr
	}
	return 100_000, nil
}

// SendTransaction records tx unless SendErr is set.
func (b *Backend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	b.hit()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sendAttempts++
	if b.SendErr != nil {
		return b.SendErr
	}
	b.sent = append(b.sent, tx)
	if b.AutoKnow {
		b.known[tx.Hash()] = true
	}
	return nil
}

// TransactionReceipt returns a receipt registered with Mine.
func (b *Backend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.hit()
	if err := b.stall(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ReceiptErr != nil {
		return nil, b.ReceiptErr
	}
	r, ok := b.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

// TransactionByHash reports whether the node knows txHash.
func (b *Backend) TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error) {
	b.hit()
	if err := b.stall(ctx); err != nil {
		return nil, false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.known[txHash] {
		return nil, false, ethereum.NotFound
	}
	for _, tx := range b.sent {
		if tx.Hash() == txHash {
			return tx, true, nil
		}
	}
	return nil, true, nil
}

// Close is a no-op.
func (b *Backend) Close() {}
