package goalpool

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
)

// Credential is a signing key for state-changing calls.
type Credential struct {
	key     *ecdsa.PrivateKey
	address Address
}

// ParsePrivateKey parses a hex-encoded secp256k1 private key, with or without
// a 0x prefix. Failures are SigningErrors and never echo the key.
func ParsePrivateKey(hexKey string) (*Credential, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if trimmed == "" {
		return nil, &SigningError{Err: ErrNoCredential}
	}
	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, &SigningError{Err: errors.New("private key is not a valid 32-byte hex secp256k1 key")}
	}
	return NewCredential(key), nil
}

// LoadKeystore decrypts a Web3 Secret Storage (keystore v3) file.
func LoadKeystore(path, passphrase string) (*Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SigningError{Err: fmt.Errorf("read keystore: %w", err)}
	}
	k, err := keystore.DecryptKey(data, passphrase)
	if err != nil {
		return nil, &SigningError{Err: fmt.Errorf("decrypt keystore %s: %w", path, err)}
	}
	return NewCredential(k.PrivateKey), nil
}

// NewCredential wraps an existing private key.
func NewCredential(key *ecdsa.PrivateKey) *Credential {
	return &Credential{
		key:     key,
		address: Address{addr: crypto.PubkeyToAddress(key.PublicKey)},
	}
}

// Address returns the account the credential signs for.
func (c *Credential) Address() Address {
	return c.address
}

// TransactOpts builds keyed transaction options bound to ctx for chainID.
func (c *Credential) TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	if c == nil || c.key == nil {
		return nil, &SigningError{Err: ErrNoCredential}
	}
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, chainID)
	if err != nil {
		return nil, &SigningError{Err: err}
	}
	opts.Context = ctx
	return opts, nil
}

// String never reveals key material.
func (c *Credential) String() string {
	if c == nil {
		return "<no credential>"
	}
	return "credential(" + c.address.String() + ")"
}
