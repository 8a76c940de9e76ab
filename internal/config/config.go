// Package config loads the CLI configuration from defaults, an optional YAML
// file, a .env file and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	goalpool "github.com/branched-services/go-goalpool"
)

// Defaults for the reference deployment on Arbitrum Sepolia.
const (
	DefaultRPCURL         = "https://sepolia-rollup.arbitrum.io/rpc"
	DefaultABIPath        = "./abi.clean.json"
	DefaultExplorerURL    = "https://sepolia.arbiscan.io"
	DefaultConfirmTimeout = 2 * time.Minute
)

// Environment variable names.
const (
	EnvConfig             = "GOALPOOL_CONFIG"
	EnvRPCURL             = "RPC_URL"
	EnvContract           = "CONTRACT"
	EnvABIPath            = "ABI_PATH"
	EnvPrivateKey         = "PRIVATE_KEY"
	EnvKeystorePath       = "KEYSTORE_PATH"
	EnvKeystorePassphrase = "KEYSTORE_PASSPHRASE"
	EnvUserAddr           = "USER_ADDR"
	EnvExplorerURL        = "EXPLORER_URL"
	EnvConfirmTimeout     = "CONFIRM_TIMEOUT"
	EnvPollInterval       = "POLL_INTERVAL"
	EnvConfirmations      = "CONFIRMATIONS"
	EnvLogLevel           = "LOG_LEVEL"
)

// Duration wraps time.Duration to support YAML unmarshalling.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses human readable duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be string")
	}
	raw := value.Value
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// Config captures the runtime configuration of the CLI.
type Config struct {
	RPCURL         string                 `yaml:"rpc_url"`
	Contract       string                 `yaml:"contract"`
	ABIPath        string                 `yaml:"abi_path"`
	KeystorePath   string                 `yaml:"keystore_path"`
	UserAddr       string                 `yaml:"user_addr"`
	ExplorerURL    string                 `yaml:"explorer_url"`
	ConfirmTimeout Duration               `yaml:"confirm_timeout"`
	PollInterval   Duration               `yaml:"poll_interval"`
	Confirmations  uint64                 `yaml:"confirmations"`
	LogLevel       string                 `yaml:"log_level"`
	Functions      goalpool.FunctionNames `yaml:"functions"`

	// Secrets are only read from the environment.
	PrivateKey         string `yaml:"-"`
	KeystorePassphrase string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RPCURL:         DefaultRPCURL,
		ABIPath:        DefaultABIPath,
		ExplorerURL:    DefaultExplorerURL,
		ConfirmTimeout: Duration{DefaultConfirmTimeout},
		PollInterval:   Duration{goalpool.DefaultPollInterval},
		Confirmations:  goalpool.DefaultConfirmations,
		Functions:      goalpool.DefaultFunctionNames(),
	}
}

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads path into the process environment, overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Overload(path); err != nil {
		return &goalpool.ConfigurationError{Key: path, Err: err}
	}
	return nil
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty) and lookup, in increasing precedence.
func Load(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, &goalpool.ConfigurationError{Key: "config", Err: err}
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, &goalpool.ConfigurationError{Key: "config", Err: fmt.Errorf("parse %s: %w", path, err)}
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *Duration) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return &goalpool.ConfigurationError{Key: key, Err: err}
		}
		dst.Duration = parsed
		return nil
	}

	str(EnvRPCURL, &c.RPCURL)
	str(EnvContract, &c.Contract)
	str(EnvABIPath, &c.ABIPath)
	str(EnvKeystorePath, &c.KeystorePath)
	str(EnvUserAddr, &c.UserAddr)
	str(EnvExplorerURL, &c.ExplorerURL)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvPrivateKey, &c.PrivateKey)
	if v, ok := lookup(EnvKeystorePassphrase); ok {
		c.KeystorePassphrase = v
	}

	if err := dur(EnvConfirmTimeout, &c.ConfirmTimeout); err != nil {
		return err
	}
	if err := dur(EnvPollInterval, &c.PollInterval); err != nil {
		return err
	}
	if v, ok := lookup(EnvConfirmations); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return &goalpool.ConfigurationError{Key: EnvConfirmations, Err: err}
		}
		c.Confirmations = n
	}
	return nil
}

// ContractAddress returns the validated contract address. A missing value is
// a ConfigurationError.
func (c Config) ContractAddress() (goalpool.Address, error) {
	if c.Contract == "" {
		return goalpool.Address{}, &goalpool.ConfigurationError{Key: EnvContract, Err: errors.New("required")}
	}
	return goalpool.ValidateAddress(c.Contract, EnvContract)
}

// UserAddress returns the validated user address, or nil when none is set.
func (c Config) UserAddress() (*goalpool.Address, error) {
	if c.UserAddr == "" {
		return nil, nil
	}
	addr, err := goalpool.ValidateAddress(c.UserAddr, EnvUserAddr)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// HasCredential reports whether a signing credential is configured.
func (c Config) HasCredential() bool {
	return c.PrivateKey != "" || c.KeystorePath != ""
}
