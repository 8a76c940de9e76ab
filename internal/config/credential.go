package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	goalpool "github.com/branched-services/go-goalpool"
)

// PassphraseSource lazily resolves a keystore passphrase from the
// configuration or by prompting the operator. The value is cached after the
// first successful retrieval.
type PassphraseSource struct {
	configured string
	hasValue   bool
	prompt     io.Writer
	fd         int
	isTerminal func(fd int) bool
	read       func(fd int) ([]byte, error)

	once  sync.Once
	value string
	err   error
}

// NewPassphraseSource uses cfg.KeystorePassphrase when set and otherwise
// prompts on stderr, reading from stdin.
func NewPassphraseSource(cfg Config) *PassphraseSource {
	return &PassphraseSource{
		configured: cfg.KeystorePassphrase,
		hasValue:   cfg.KeystorePassphrase != "",
		prompt:     os.Stderr,
		fd:         int(os.Stdin.Fd()),
		isTerminal: term.IsTerminal,
		read:       term.ReadPassword,
	}
}

// Get returns the cached passphrase or resolves it on first call.
func (s *PassphraseSource) Get() (string, error) {
	s.once.Do(func() {
		if s.hasValue {
			s.value = s.configured
			return
		}
		if !s.isTerminal(s.fd) {
			s.err = fmt.Errorf("keystore passphrase required; set %s or run interactively", EnvKeystorePassphrase)
			return
		}

		fmt.Fprint(s.prompt, "Enter keystore passphrase: ")
		bytes, err := s.read(s.fd)
		fmt.Fprintln(s.prompt)
		if err != nil {
			s.err = fmt.Errorf("failed to read passphrase: %w", err)
			return
		}
		if strings.TrimSpace(string(bytes)) == "" {
			s.err = errors.New("keystore passphrase cannot be empty")
			return
		}
		s.value = string(bytes)
	})
	return s.value, s.err
}

// Credential resolves the configured signing credential. PRIVATE_KEY takes
// precedence over KEYSTORE_PATH. It returns nil, nil when neither is set so
// read-only commands run without a key.
func (c Config) Credential(passphrase *PassphraseSource) (*goalpool.Credential, error) {
	if c.PrivateKey != "" {
		return goalpool.ParsePrivateKey(c.PrivateKey)
	}
	if c.KeystorePath == "" {
		return nil, nil
	}
	if passphrase == nil {
		passphrase = NewPassphraseSource(c)
	}
	pass, err := passphrase.Get()
	if err != nil {
		return nil, &goalpool.SigningError{Err: err}
	}
	return goalpool.LoadKeystore(c.KeystorePath, pass)
}
