package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	goalpool "github.com/branched-services/go-goalpool"
	"github.com/branched-services/go-goalpool/internal/config"
	"github.com/branched-services/go-goalpool/internal/logging"
)

type cli struct {
	deps deps

	configPath string
	logLevel   string
	noWait     bool
	args       []string

	cfg *config.Config
}

func newCLI(d deps) *cli {
	return &cli{deps: d}
}

// explorerURL returns the configured explorer once configuration has loaded,
// so failures reported afterwards can link the transaction.
func (c *cli) explorerURL() string {
	if c.cfg == nil {
		return ""
	}
	return c.cfg.ExplorerURL
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "goalpool",
		Short: "Read and write the goal pool contract",
		Long: `Read and write the goal pool contract.

Without a subcommand, prints the aggregate pool value and, when USER_ADDR is
set, that address's balances (available, staked, earned, burned).

Configuration comes from the environment (RPC_URL, CONTRACT, ABI_PATH,
PRIVATE_KEY, KEYSTORE_PATH, USER_ADDR, EXPLORER_URL, CONFIRM_TIMEOUT, ...),
a .env file in the working directory, and an optional YAML file (--config).`,
		Example: `  goalpool
  goalpool deposit 100
  goalpool complete 1
  goalpool miss 1`,
		Args:          rootArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.readMode(cmd.Context())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &goalpool.UsageError{Command: cmd.Name(), Reason: err.Error()}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to a YAML config file (env: "+config.EnvConfig+")")
	flags.StringVar(&c.logLevel, "log-level", "", "debug|info|warn|error (env: "+config.EnvLogLevel+")")

	for _, command := range []goalpool.Command{goalpool.Deposit, goalpool.CompleteGoal, goalpool.MissGoal} {
		root.AddCommand(c.writeCommand(command))
	}
	return root
}

func rootArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return &goalpool.UsageError{Command: args[0], Reason: "unknown command (use deposit|complete|miss)"}
	}
	return nil
}

var writeShort = map[goalpool.Command]string{
	goalpool.Deposit:      "Deposit credits into the pool",
	goalpool.CompleteGoal: "Mark a goal as completed",
	goalpool.MissGoal:     "Mark a goal as missed",
}

func (c *cli) writeCommand(command goalpool.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   command.String() + " <" + command.ArgLabel() + ">",
		Short: writeShort[command],
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := goalpool.ParseCommand(command.String(), args)
			if err != nil {
				return err
			}
			return c.write(cmd.Context(), inv)
		},
	}
	cmd.Flags().BoolVar(&c.noWait, "no-wait", false, "return after submission without awaiting confirmation")

	// "deposit -5" parses as an unknown shorthand flag; report it as the
	// invalid amount it is.
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		for _, arg := range argsAfter(c.args, cmd.Name()) {
			if looksSigned(arg) {
				if _, perr := goalpool.ParseCommand(command.String(), []string{arg}); perr != nil {
					return perr
				}
			}
		}
		return &goalpool.UsageError{Command: cmd.Name(), Reason: err.Error()}
	})
	return cmd
}

// argsAfter returns the arguments following the first name token.
func argsAfter(args []string, name string) []string {
	for i, arg := range args {
		if arg == name {
			return args[i+1:]
		}
	}
	return nil
}

func looksSigned(arg string) bool {
	return len(arg) > 1 && arg[0] == '-' && strings.ContainsAny(arg[1:2], "0123456789.")
}

// session holds everything wired for one invocation.
type session struct {
	cfg        config.Config
	logger     *slog.Logger
	contract   goalpool.Address
	user       *goalpool.Address
	reporter   *goalpool.Reporter
	client     chainClient
	dispatcher *goalpool.Dispatcher
}

func (s *session) close() {
	if s.client != nil {
		s.client.Close()
	}
}

// setup loads configuration and the descriptor, resolves the credential when
// one is required, and only then dials the RPC endpoint.
func (c *cli) setup(ctx context.Context, needCredential bool) (*session, error) {
	if err := config.LoadDotEnv(c.deps.dotenv); err != nil {
		return nil, err
	}

	path := c.configPath
	if path == "" {
		if v, ok := c.deps.lookup(config.EnvConfig); ok {
			path = v
		}
	}
	cfg, err := config.Load(path, c.deps.lookup)
	if err != nil {
		return nil, err
	}
	c.cfg = &cfg

	levelName := cfg.LogLevel
	if c.logLevel != "" {
		levelName = c.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, &goalpool.UsageError{Command: "--log-level", Reason: err.Error()}
	}
	logger := logging.Setup("goalpool", level, c.deps.stderr)

	contract, err := cfg.ContractAddress()
	if err != nil {
		return nil, err
	}
	desc, err := goalpool.LoadDescriptor(cfg.ABIPath, contract)
	if err != nil {
		return nil, err
	}

	var user *goalpool.Address
	if !needCredential {
		user, err = cfg.UserAddress()
		if err != nil {
			return nil, err
		}
	}

	var cred *goalpool.Credential
	if needCredential {
		if !cfg.HasCredential() {
			return nil, &goalpool.SigningError{Err: errors.New("PRIVATE_KEY or KEYSTORE_PATH required for write commands")}
		}
		cred, err = cfg.Credential(nil)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("configuration loaded",
		"rpc", cfg.RPCURL,
		"contract", contract.String(),
		"abi", cfg.ABIPath,
		logging.MaskField("private_key", cfg.PrivateKey),
	)

	client, err := c.deps.dial(ctx, cfg.RPCURL)
	if err != nil {
		return nil, &goalpool.ConfigurationError{Key: config.EnvRPCURL, Err: err}
	}

	reporter := goalpool.NewReporter(c.deps.stdout, c.deps.stderr, cfg.ExplorerURL)
	gateway := goalpool.NewGateway(desc, client, goalpool.WithGatewayLogger(logger))

	opts := []goalpool.DispatcherOption{
		goalpool.WithCredential(cred),
		goalpool.WithReporter(reporter),
		goalpool.WithDispatcherLogger(logger),
	}
	if needCredential && !c.noWait {
		tracker := goalpool.NewTracker(client,
			goalpool.WithPollInterval(cfg.PollInterval.Duration),
			goalpool.WithConfirmations(cfg.Confirmations),
			goalpool.WithTrackerLogger(logger),
		)
		opts = append(opts, goalpool.WithTracker(tracker, cfg.ConfirmTimeout.Duration))
	}

	return &session{
		cfg:        cfg,
		logger:     logger,
		contract:   contract,
		user:       user,
		reporter:   reporter,
		client:     client,
		dispatcher: goalpool.NewDispatcher(gateway, cfg.Functions, opts...),
	}, nil
}

func (c *cli) readMode(ctx context.Context) error {
	s, err := c.setup(ctx, false)
	if err != nil {
		return err
	}
	defer s.close()

	s.reporter.Header(s.contract, s.cfg.RPCURL)
	return s.dispatcher.ReadAll(ctx, s.user)
}

func (c *cli) write(ctx context.Context, inv goalpool.Invocation) error {
	s, err := c.setup(ctx, true)
	if err != nil {
		return err
	}
	defer s.close()

	_, err = s.dispatcher.Run(ctx, inv)
	return err
}
