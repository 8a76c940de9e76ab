package goalpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is the subset of the Ethereum RPC used by the gateway.
// *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractCaller
	bind.ContractTransactor
	ChainID(ctx context.Context) (*big.Int, error)
}

// Gateway performs reads and writes against the single contract described by
// its ContractDescriptor.
type Gateway struct {
	desc    *ContractDescriptor
	backend Backend
	logger  *slog.Logger
}

// NewGateway creates a gateway for desc using backend as transport.
func NewGateway(desc *ContractDescriptor, backend Backend, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		desc:    desc,
		backend: backend,
		logger:  discardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Descriptor returns the contract descriptor.
func (g *Gateway) Descriptor() *ContractDescriptor {
	return g.desc
}

// Execute dispatches req to Call or Submit based solely on the declared
// mutability of its function.
func (g *Gateway) Execute(ctx context.Context, req *CallRequest, cred *Credential) (CallResult, error) {
	if req.Mutability() == ReadOnly {
		return g.Call(ctx, req)
	}
	return g.Submit(ctx, req, cred)
}

// Call performs a read-only query. It never needs a signing key and never
// changes chain state.
func (g *Gateway) Call(ctx context.Context, req *CallRequest) (*ReadResult, error) {
	fn := req.Function()
	if req.Mutability() != ReadOnly {
		return nil, &ContractCallError{Function: fn, Err: fmt.Errorf("%w: %s is %s", ErrWrongMutability, fn, req.Mutability())}
	}

	input, err := req.Calldata()
	if err != nil {
		return nil, &ContractCallError{Function: fn, Err: fmt.Errorf("pack: %w", err)}
	}

	to := req.Target().Common()
	msg := ethereum.CallMsg{To: &to, Data: input}

	g.logger.Debug("eth_call", "function", fn, "contract", req.Target().String())
	output, err := g.backend.CallContract(ctx, msg, nil)
	if err == nil && len(output) == 0 {
		// Make sure we have a contract to operate on, and bail out otherwise.
		code, codeErr := g.backend.CodeAt(ctx, to, nil)
		if codeErr != nil {
			return nil, &ContractCallError{Function: fn, Err: codeErr}
		}
		if len(code) == 0 {
			return nil, &ContractCallError{Function: fn, Err: ErrNoCode}
		}
	}
	if err != nil {
		return nil, &ContractCallError{Function: fn, Err: err}
	}

	values, err := decodeOutputs(req, output)
	if err != nil {
		return nil, &ContractCallError{Function: fn, Err: err}
	}
	return &ReadResult{Function: fn, Values: values}, nil
}

// Submit signs and sends a state-changing transaction, returning as soon as
// the node accepts it. It makes at most one send attempt and is never retried
// here: resending a non-idempotent write could apply it twice.
func (g *Gateway) Submit(ctx context.Context, req *CallRequest, cred *Credential) (*WriteResult, error) {
	fn := req.Function()
	if cred == nil {
		return nil, &SigningError{Err: ErrNoCredential}
	}
	if req.Mutability() != StateChanging {
		return nil, &ContractCallError{Function: fn, Err: fmt.Errorf("%w: %s is %s", ErrWrongMutability, fn, req.Mutability())}
	}

	chainID, err := g.backend.ChainID(ctx)
	if err != nil {
		return nil, &ContractCallError{Function: fn, Err: fmt.Errorf("chain id: %w", err)}
	}

	opts, err := cred.TransactOpts(ctx, chainID)
	if err != nil {
		return nil, err
	}

	sender := &singleSender{ContractTransactor: g.backend, function: fn}
	contract := bind.NewBoundContract(req.Target().Common(), g.desc.ABI(), g.backend, sender, nil)

	g.logger.Debug("sending transaction", "function", fn, "from", cred.Address().String(), "chain_id", chainID.String())
	tx, err := contract.Transact(opts, fn, req.packed...)
	if err != nil {
		var rejected *TransactionRejectedError
		if errors.As(err, &rejected) {
			return nil, rejected
		}
		return nil, &ContractCallError{Function: fn, Err: err}
	}

	g.logger.Info("transaction submitted", "function", fn, "tx", tx.Hash().Hex())
	return &WriteResult{
		Function: fn,
		TxID:     tx.Hash(),
		Status:   Pending,
	}, nil
}

// singleSender lets exactly one transaction through and tags a send failure
// as a rejection so it can be told apart from pre-send simulation errors.
type singleSender struct {
	bind.ContractTransactor
	function string
	attempts int
}

func (s *singleSender) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if s.attempts > 0 {
		return &TransactionRejectedError{Function: s.function, TxID: tx.Hash(), Err: errors.New("second send attempt refused")}
	}
	s.attempts++
	if err := s.ContractTransactor.SendTransaction(ctx, tx); err != nil {
		return &TransactionRejectedError{Function: s.function, TxID: tx.Hash(), Err: err}
	}
	return nil
}

func decodeOutputs(req *CallRequest, output []byte) ([]Value, error) {
	outputs := req.Method().Outputs
	raw, err := outputs.Unpack(output)
	if err != nil {
		return nil, fmt.Errorf("unpack: %w", err)
	}
	values := make([]Value, len(raw))
	for i, r := range raw {
		v, err := fromABIValue(r, outputs[i].Type)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}
