package goalpool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Command is one entry of the fixed command vocabulary.
type Command uint8

const (
	// ReadPool reads the aggregate pool value.
	ReadPool Command = iota

	// ReadBalances reads the balance components of one address.
	ReadBalances

	// Deposit deposits an amount of credits.
	Deposit

	// CompleteGoal marks a goal completed.
	CompleteGoal

	// MissGoal marks a goal missed.
	MissGoal
)

// Labels used in validation errors for command arguments.
const (
	LabelUser   = "USER_ADDR"
	LabelAmount = "amount"
	LabelGoalID = "goalId"
)

type argKind uint8

const (
	argNone argKind = iota
	argAddress
	argUint
)

type commandSpec struct {
	token string
	kind  argKind
	label string
	write bool
}

var commandSpecs = map[Command]commandSpec{
	ReadPool:     {token: "pool", kind: argNone},
	ReadBalances: {token: "balances", kind: argAddress, label: LabelUser},
	Deposit:      {token: "deposit", kind: argUint, label: LabelAmount, write: true},
	CompleteGoal: {token: "complete", kind: argUint, label: LabelGoalID, write: true},
	MissGoal:     {token: "miss", kind: argUint, label: LabelGoalID, write: true},
}

// String returns the CLI token of the command.
func (c Command) String() string {
	if spec, ok := commandSpecs[c]; ok {
		return spec.token
	}
	return fmt.Sprintf("command(%d)", uint8(c))
}

// IsWrite reports whether the command submits a transaction.
func (c Command) IsWrite() bool {
	return commandSpecs[c].write
}

// ArgLabel returns the name of the command's argument, or "" if it takes none.
func (c Command) ArgLabel() string {
	return commandSpecs[c].label
}

// LookupCommand maps a CLI token to its command.
func LookupCommand(token string) (Command, bool) {
	for cmd, spec := range commandSpecs {
		if spec.token == token {
			return cmd, true
		}
	}
	return 0, false
}

// Invocation is a parsed command with its validated argument.
type Invocation struct {
	Command Command
	Arg     Value
}

// ParseCommand validates a command token and its arguments. Nothing here
// touches the network.
func ParseCommand(token string, args []string) (Invocation, error) {
	cmd, ok := LookupCommand(token)
	if !ok {
		return Invocation{}, &UsageError{Command: token, Reason: "unknown command (use deposit|complete|miss)"}
	}
	spec := commandSpecs[cmd]

	if spec.kind == argNone {
		if len(args) != 0 {
			return Invocation{}, &UsageError{Command: token, Reason: "takes no arguments"}
		}
		return Invocation{Command: cmd}, nil
	}

	if len(args) == 0 || args[0] == "" {
		return Invocation{}, &UsageError{Command: token, Reason: "missing " + spec.label}
	}
	if len(args) > 1 {
		return Invocation{}, &UsageError{Command: token, Reason: "expects exactly one " + spec.label}
	}

	var (
		arg Value
		err error
	)
	switch spec.kind {
	case argAddress:
		arg, err = ValidateAddress(args[0], spec.label)
	case argUint:
		arg, err = ParseWideUint(args[0], spec.label)
	}
	if err != nil {
		return Invocation{}, err
	}
	return Invocation{Command: cmd, Arg: arg}, nil
}

// FunctionNames maps commands to contract function names. Deployments may
// name them differently; confirm against the ABI.
type FunctionNames struct {
	Pool     string `yaml:"pool"`
	Balances string `yaml:"balances"`
	Deposit  string `yaml:"deposit"`
	Complete string `yaml:"complete"`
	Miss     string `yaml:"miss"`
}

// DefaultFunctionNames returns the function names of the reference deployment.
func DefaultFunctionNames() FunctionNames {
	return FunctionNames{
		Pool:     "charityPoolTotal",
		Balances: "balancesOf",
		Deposit:  "depositCredits",
		Complete: "completeGoal",
		Miss:     "missGoal",
	}
}

// For returns the function name bound to cmd.
func (f FunctionNames) For(cmd Command) string {
	switch cmd {
	case ReadPool:
		return f.Pool
	case ReadBalances:
		return f.Balances
	case Deposit:
		return f.Deposit
	case CompleteGoal:
		return f.Complete
	case MissGoal:
		return f.Miss
	default:
		return ""
	}
}

// Executor runs validated requests against the contract.
type Executor interface {
	Descriptor() *ContractDescriptor
	Execute(ctx context.Context, req *CallRequest, cred *Credential) (CallResult, error)
}

var _ Executor = (*Gateway)(nil)

// Dispatcher runs invocations through the gateway and reports the results.
type Dispatcher struct {
	gateway        Executor
	functions      FunctionNames
	credential     *Credential
	tracker        Awaiter
	confirmTimeout time.Duration
	reporter       *Reporter
	logger         *slog.Logger
}

// NewDispatcher creates a dispatcher. Unset function names fall back to
// DefaultFunctionNames.
func NewDispatcher(gateway Executor, functions FunctionNames, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		gateway:   gateway,
		functions: withDefaults(functions),
		reporter:  NewReporter(io.Discard, io.Discard, ""),
		logger:    discardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func withDefaults(f FunctionNames) FunctionNames {
	def := DefaultFunctionNames()
	if f.Pool == "" {
		f.Pool = def.Pool
	}
	if f.Balances == "" {
		f.Balances = def.Balances
	}
	if f.Deposit == "" {
		f.Deposit = def.Deposit
	}
	if f.Complete == "" {
		f.Complete = def.Complete
	}
	if f.Miss == "" {
		f.Miss = def.Miss
	}
	return f
}

// Request builds the CallRequest for inv without executing it.
func (d *Dispatcher) Request(inv Invocation) (*CallRequest, error) {
	fn := d.functions.For(inv.Command)
	if fn == "" {
		return nil, &UsageError{Command: inv.Command.String(), Reason: "unknown command"}
	}
	if inv.Arg == nil {
		return NewCallRequest(d.gateway.Descriptor(), fn)
	}
	return NewCallRequest(d.gateway.Descriptor(), fn, inv.Arg)
}

// Run executes inv. Write commands need a credential, checked before any
// network call; when a tracker is configured they also await confirmation.
// A write confirmed as failed is returned as a TransactionFailedError.
func (d *Dispatcher) Run(ctx context.Context, inv Invocation) (CallResult, error) {
	if inv.Command.IsWrite() && d.credential == nil {
		return nil, &SigningError{Err: ErrNoCredential}
	}

	req, err := d.Request(inv)
	if err != nil {
		return nil, err
	}

	if inv.Command.IsWrite() {
		d.reporter.Calling(req)
	}
	d.logger.Debug("dispatching", "command", inv.Command.String(), "call", req.String())

	result, err := d.gateway.Execute(ctx, req, d.credential)
	if err != nil {
		return nil, err
	}

	switch res := result.(type) {
	case *ReadResult:
		if inv.Command == ReadBalances {
			user, _ := inv.Arg.(Address)
			d.reporter.Balances(user, res)
		} else {
			d.reporter.Read(res)
		}
		return res, nil

	case *WriteResult:
		d.reporter.Submitted(res)
		return d.await(ctx, res)

	default:
		return result, nil
	}
}

func (d *Dispatcher) await(ctx context.Context, submitted *WriteResult) (*WriteResult, error) {
	if d.tracker == nil {
		return submitted, nil
	}

	final, err := d.tracker.AwaitConfirmation(ctx, submitted.TxID, d.confirmTimeout)
	if err != nil {
		d.logger.Info("confirmation not observed", "tx", submitted.TxID.Hex(), "error", err)
		return submitted, err
	}
	final.Function = submitted.Function

	if final.Status == Failed {
		return final, &TransactionFailedError{Result: final}
	}
	d.reporter.Confirmed(final)
	return final, nil
}

// ReadAll implements read mode: the pool value always, plus the balances of
// user when one is configured.
func (d *Dispatcher) ReadAll(ctx context.Context, user *Address) error {
	if _, err := d.Run(ctx, Invocation{Command: ReadPool}); err != nil {
		return err
	}
	if user == nil {
		d.reporter.Tip("set USER_ADDR to read your balances.")
		return nil
	}
	_, err := d.Run(ctx, Invocation{Command: ReadBalances, Arg: *user})
	return err
}
