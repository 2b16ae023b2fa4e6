// internal/wallet/ephemeral.go
package wallet

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// ErrIdentityDestroyed is returned by Use after Destroy.
var ErrIdentityDestroyed = errors.New("ephemeral identity destroyed")

// EphemeralIdentity is a one-shot keypair for a new mint account. Only the
// public key leaves this type; the secret is reachable through Use and is
// zeroed by Destroy.
type EphemeralIdentity struct {
	mu     sync.Mutex
	key    solana.PrivateKey
	pub    solana.PublicKey
	closed bool
}

// NewEphemeralIdentity generates a fresh random keypair.
func NewEphemeralIdentity() (*EphemeralIdentity, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate mint keypair: %w", err)
	}
	return &EphemeralIdentity{key: key, pub: key.PublicKey()}, nil
}

// PublicKey returns the mint address.
func (e *EphemeralIdentity) PublicKey() solana.PublicKey {
	return e.pub
}

// Use runs fn with the secret key. fn must not retain the key.
func (e *EphemeralIdentity) Use(fn func(key solana.PrivateKey) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrIdentityDestroyed
	}
	return fn(e.key)
}

// Destroy zeroes the secret key. It is safe to call more than once.
func (e *EphemeralIdentity) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.key {
		e.key[i] = 0
	}
	e.closed = true
}

// Destroyed reports whether Destroy has run.
func (e *EphemeralIdentity) Destroyed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *EphemeralIdentity) String() string {
	return "ephemeral:" + e.pub.String()
}

// MarshalJSON renders only the public key.
func (e *EphemeralIdentity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + e.pub.String() + `"`), nil
}
