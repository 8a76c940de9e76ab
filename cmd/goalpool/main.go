// Command goalpool reads and writes the goal pool contract.
//
// With no subcommand it prints the aggregate pool value and, when USER_ADDR is
// set, that address's balances. The deposit, complete and miss subcommands
// submit transactions signed with PRIVATE_KEY (or KEYSTORE_PATH).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/ethclient"

	goalpool "github.com/branched-services/go-goalpool"
	"github.com/branched-services/go-goalpool/internal/config"
)

// chainClient is everything the CLI needs from the RPC connection.
type chainClient interface {
	goalpool.Backend
	goalpool.ReceiptBackend
	Close()
}

type deps struct {
	lookup config.LookupFunc
	dial   func(ctx context.Context, rawURL string) (chainClient, error)
	dotenv string
	stdout io.Writer
	stderr io.Writer
}

func defaultDeps() deps {
	return deps{
		lookup: os.LookupEnv,
		dial: func(ctx context.Context, rawURL string) (chainClient, error) {
			return ethclient.DialContext(ctx, rawURL)
		},
		dotenv: ".env",
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], defaultDeps())
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, d deps) int {
	c := newCLI(d)
	c.args = args
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(d.stdout)
	root.SetErr(d.stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}

	goalpool.NewReporter(d.stdout, d.stderr, c.explorerURL()).ReportError(err)
	var usage *goalpool.UsageError
	if errors.As(err, &usage) {
		if cmd == nil {
			cmd = root
		}
		fmt.Fprint(d.stderr, cmd.UsageString())
	}
	return 1
}
