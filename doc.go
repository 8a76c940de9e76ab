// Package goalpool is a thin client for a single deployed goal-pool contract
// on an EVM-compatible chain.
//
// It reads the aggregate pool value and per-user balances, and submits the
// deposit, complete and miss transactions. Every externally supplied value is
// validated before it can reach the network:
//
//   - Addresses go through ValidateAddress and become Address values.
//   - Amounts and goal ids go through ParseWideUint and become WideUint values.
//   - Arguments are checked against the ABI by NewCallRequest.
//
// # Basic Usage
//
//	desc, err := goalpool.LoadDescriptor("abi.clean.json", contractAddr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := ethclient.Dial(rpcURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	gateway := goalpool.NewGateway(desc, client)
//	tracker := goalpool.NewTracker(client)
//
//	dispatcher := goalpool.NewDispatcher(gateway, goalpool.DefaultFunctionNames(),
//	    goalpool.WithCredential(cred),
//	    goalpool.WithTracker(tracker, 2*time.Minute),
//	    goalpool.WithReporter(goalpool.NewReporter(os.Stdout, os.Stderr, explorerURL)),
//	)
//
//	inv, err := goalpool.ParseCommand("deposit", []string{"100"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_, err = dispatcher.Run(ctx, inv)
//
// # Reads and Writes
//
// The gateway decides between an eth_call and a signed transaction purely from
// the mutability the ABI declares for the function. Writes are sent at most
// once and never retried; a write whose confirmation is not observed is
// reported as a TimeoutError, since it may still be included later.
//
// # Display
//
// All values printed to the console go through Display, which renders WideUint
// as plain decimal and Address as lowercase 0x hex, whatever their magnitude.
package goalpool
