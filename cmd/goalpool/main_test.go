package main

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goalpool "github.com/branched-services/go-goalpool"
	"github.com/branched-services/go-goalpool/internal/chaintest"
	"github.com/branched-services/go-goalpool/internal/config"
)

const (
	testContract   = "0x5fbdb2315678afecb367f032d93f642f64180aa3"
	testUser       = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

const goalPoolABI = `[
	{"type":"function","name":"charityPoolTotal","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balancesOf","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[
		{"name":"","type":"uint256"},{"name":"","type":"uint256"},{"name":"","type":"uint256"},{"name":"","type":"uint256"}
	]},
	{"type":"function","name":"depositCredits","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"completeGoal","stateMutability":"nonpayable","inputs":[{"name":"goalId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"missGoal","stateMutability":"nonpayable","inputs":[{"name":"goalId","type":"uint256"}],"outputs":[]}
]`

type harness struct {
	env     map[string]string
	backend *chaintest.Backend
	dials   int
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	dialErr error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	abiPath := filepath.Join(dir, "abi.json")
	require.NoError(t, os.WriteFile(abiPath, []byte(goalPoolABI), 0o600))

	h := &harness{
		env: map[string]string{
			config.EnvContract:     testContract,
			config.EnvABIPath:      abiPath,
			config.EnvRPCURL:       "http://localhost:8545",
			config.EnvPollInterval: "1ms",
		},
		backend: chaintest.NewBackend(),
	}

	parsed, err := goalpool.ParseABI(goalPoolABI)
	require.NoError(t, err)
	require.NoError(t, h.backend.Respond(parsed.Methods["charityPoolTotal"], mustBig(t, "500000000000000000")))
	require.NoError(t, h.backend.Respond(parsed.Methods["balancesOf"], big.NewInt(100), big.NewInt(20), big.NewInt(3), big.NewInt(0)))
	return h
}

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	b, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return b
}

func (h *harness) wire(t *testing.T) deps {
	return deps{
		lookup: func(key string) (string, bool) {
			v, ok := h.env[key]
			return v, ok
		},
		dial: func(ctx context.Context, rawURL string) (chainClient, error) {
			h.dials++
			if h.dialErr != nil {
				return nil, h.dialErr
			}
			return h.backend, nil
		},
		dotenv: filepath.Join(t.TempDir(), ".env"),
		stdout: &h.stdout,
		stderr: &h.stderr,
	}
}

func (h *harness) run(t *testing.T, args ...string) int {
	t.Helper()
	return run(context.Background(), args, h.wire(t))
}

func TestReadMode(t *testing.T) {
	t.Run("pool only", func(t *testing.T) {
		h := newHarness(t)
		code := h.run(t)

		require.Equal(t, 0, code, h.stderr.String())
		want := "Contract: " + testContract + "\n" +
			"RPC: http://localhost:8545\n" +
			"---\n" +
			"charityPoolTotal = 500000000000000000\n" +
			"Tip: set USER_ADDR to read your balances.\n"
		assert.Equal(t, want, h.stdout.String())
		assert.Empty(t, h.backend.Sent())
	})

	t.Run("with user", func(t *testing.T) {
		h := newHarness(t)
		h.env[config.EnvUserAddr] = testUser
		code := h.run(t)

		require.Equal(t, 0, code, h.stderr.String())
		assert.Contains(t, h.stdout.String(), "balancesOf "+testUser+" available=100 staked=20 earned=3 burned=0\n")
		assert.NotContains(t, h.stdout.String(), "Tip:")
	})

	t.Run("invalid user address fails before dialing", func(t *testing.T) {
		h := newHarness(t)
		h.env[config.EnvUserAddr] = "0x123"
		code := h.run(t)

		assert.Equal(t, 1, code)
		assert.Contains(t, h.stderr.String(), "Error: USER_ADDR \"0x123\" is invalid: wrong length")
		assert.Zero(t, h.dials)
	})

	t.Run("missing contract", func(t *testing.T) {
		h := newHarness(t)
		delete(h.env, config.EnvContract)
		code := h.run(t)

		assert.Equal(t, 1, code)
		assert.Contains(t, h.stderr.String(), "CONTRACT")
		assert.Zero(t, h.dials)
	})

	t.Run("missing abi file", func(t *testing.T) {
		h := newHarness(t)
		h.env[config.EnvABIPath] = filepath.Join(t.TempDir(), "missing.json")
		code := h.run(t)

		assert.Equal(t, 1, code)
		assert.Contains(t, h.stderr.String(), "ABI_PATH")
		assert.Zero(t, h.dials)
	})

	t.Run("dial failure", func(t *testing.T) {
		h := newHarness(t)
		h.dialErr = errors.New("connection refused")
		code := h.run(t)

		assert.Equal(t, 1, code)
		assert.Contains(t, h.stderr.String(), "RPC_URL")
	})

	t.Run("contract call failure", func(t *testing.T) {
		h := newHarness(t)
		h.backend.CallErr = errors.New("execution reverted")
		code := h.run(t)

		assert.Equal(t, 1, code)
		assert.Contains(t, h.stderr.String(), "Error: call charityPoolTotal: execution reverted")
	})
}

func TestUsage(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{"unknown command", []string{"withdraw", "5"}, "unknown command"},
		{"missing amount", []string{"deposit"}, "missing amount"},
		{"extra argument", []string{"complete", "1", "2"}, "expects exactly one goalId"},
		{"unknown flag", []string{"--bogus"}, "unknown flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.env[config.EnvPrivateKey] = testPrivateKey
			code := h.run(t, tt.args...)

			assert.Equal(t, 1, code)
			assert.Contains(t, h.stderr.String(), tt.stderr)
			assert.Contains(t, h.stderr.String(), "Usage:")
			assert.Zero(t, h.dials)
		})
	}

	t.Run("signed value before the command is not the amount", func(t *testing.T) {
		h := newHarness(t)
		h.env[config.EnvPrivateKey] = testPrivateKey
		code := h.run(t, "--log-level", "-1", "deposit", "--bogus")

		assert.Equal(t, 1, code)
		assert.Contains(t, h.stderr.String(), "unknown flag: --bogus")
		assert.NotContains(t, h.stderr.String(), "sign not allowed")
		assert.Zero(t, h.dials)
	})

	t.Run("help", func(t *testing.T) {
		h := newHarness(t)
		assert.Equal(t, 0, h.run(t, "--help"))
		assert.Contains(t, h.stdout.String(), "deposit")
		assert.Zero(t, h.dials)
	})
}

func TestInvalidArguments(t *testing.T) {
	tests := []struct {
		args   []string
		stderr string
	}{
		{[]string{"deposit", "-5"}, `amount "-5" is invalid: sign not allowed`},
		{[]string{"deposit", "3.5"}, `amount "3.5" is invalid: decimal point not allowed`},
		{[]string{"complete", "abc"}, `goalId "abc" is invalid`},
		{[]string{"miss", "1e3"}, "scientific notation not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.args[0]+" "+tt.args[1], func(t *testing.T) {
			h := newHarness(t)
			h.env[config.EnvPrivateKey] = testPrivateKey
			code := h.run(t, tt.args...)

			assert.Equal(t, 1, code)
			assert.Contains(t, h.stderr.String(), tt.stderr)
			assert.Zero(t, h.dials)
			assert.Zero(t, h.backend.Requests())
		})
	}
}

func TestWriteCommands(t *testing.T) {
	t.Run("missing credential fails before dialing", func(t *testing.T) {
		h := newHarness(t)
		code := h.run(t, "deposit", "100")

		assert.Equal(t, 1, code)
		assert.Contains(t, h.stderr.String(), "PRIVATE_KEY or KEYSTORE_PATH required")
		assert.Zero(t, h.dials)
	})

	t.Run("invalid private key", func(t *testing.T) {
		h := newHarness(t)
		h.env[config.EnvPrivateKey] = "nothex"
		code := h.run(t, "deposit", "100")

		assert.Equal(t, 1, code)
		assert.Contains(t, h.stderr.String(), "signing")
		assert.NotContains(t, h.stderr.String(), "nothex")
		assert.Zero(t, h.dials)
	})

	t.Run("deposit without waiting", func(t *testing.T) {
		h := newHarness(t)
		h.env[config.EnvPrivateKey] = testPrivateKey
		code := h.run(t, "deposit", "100", "--no-wait")

		require.Equal(t, 0, code, h.stderr.String())
		sent := h.backend.Sent()
		require.Len(t, sent, 1)
		hash := sent[0].Hash().Hex()

		out := h.stdout.String()
		assert.Contains(t, out, "Calling depositCredits(100)...\n")
		assert.Contains(t, out, "Tx hash: "+hash+"\n")
		assert.Contains(t, out, "View on explorer: "+config.DefaultExplorerURL+"/tx/"+hash+"\n")
		assert.NotContains(t, out, "Confirmed")
	})

	t.Run("dropped transaction reports the hash", func(t *testing.T) {
		h := newHarness(t)
		h.env[config.EnvPrivateKey] = testPrivateKey
		h.env[config.EnvExplorerURL] = "https://explorer.example"
		h.backend.AutoKnow = false
		code := h.run(t, "miss", "7")

		assert.Equal(t, 1, code)
		sent := h.backend.Sent()
		require.Len(t, sent, 1)
		hash := sent[0].Hash().Hex()
		assert.Contains(t, h.stderr.String(), "failed: dropped")
		assert.Contains(t, h.stderr.String(), "Tx hash: "+hash)
		assert.Contains(t, h.stderr.String(), "View on explorer: https://explorer.example/tx/"+hash)
	})

	t.Run("rejected send is attempted once", func(t *testing.T) {
		h := newHarness(t)
		h.env[config.EnvPrivateKey] = testPrivateKey
		h.backend.SendErr = errors.New("insufficient funds for gas * price + value")
		code := h.run(t, "complete", "1")

		assert.Equal(t, 1, code)
		assert.Equal(t, 1, h.backend.SendAttempts())
		assert.Contains(t, h.stderr.String(), "rejected: insufficient funds")
		assert.Contains(t, h.stderr.String(), "Tx hash: 0x")
	})

	t.Run("timeout", func(t *testing.T) {
		h := newHarness(t)
		h.env[config.EnvPrivateKey] = testPrivateKey
		h.env[config.EnvConfirmTimeout] = "20ms"
		code := h.run(t, "deposit", "1")

		assert.Equal(t, 1, code)
		assert.Contains(t, h.stderr.String(), "not confirmed within 20ms")
		assert.Contains(t, h.stderr.String(), "Tx hash: 0x")
	})

	t.Run("function names from yaml", func(t *testing.T) {
		h := newHarness(t)
		h.env[config.EnvPrivateKey] = testPrivateKey
		cfgPath := filepath.Join(t.TempDir(), "goalpool.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("functions:\n  deposit: stake\n"), 0o600))
		code := h.run(t, "--config", cfgPath, "deposit", "1")

		assert.Equal(t, 1, code)
		assert.Contains(t, h.stderr.String(), `function not found in contract descriptor: "stake"`)
		assert.Empty(t, h.backend.Sent())
	})
}
