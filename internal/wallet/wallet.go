// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ErrNotRequiredSigner means a key tried to sign a message that does not list it as a signer.
var ErrNotRequiredSigner = errors.New("key is not a required signer of this message")

// Signer authorizes transactions on behalf of the fee payer. SignTransaction
// may block for as long as a human needs; it must return when ctx is done.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// RejectedError is returned by a Signer when the user declines to sign or the
// approval could not be obtained. Err holds the underlying failure, if any.
type RejectedError struct {
	Reason string
	Err    error
}

func (e *RejectedError) Error() string {
	msg := "User rejected the request"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

// Wallet is a local keypair signer.
type Wallet struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// NewWallet creates a wallet from a base58-encoded 64-byte private key.
func NewWallet(privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(strings.TrimSpace(privateKeyBase58))
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	return FromBytes(privateKeyBytes)
}

// FromBytes creates a wallet from raw 64-byte ed25519 key material.
func FromBytes(b []byte) (*Wallet, error) {
	if len(b) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(b))
	}
	key := make(solana.PrivateKey, 64)
	copy(key, b)
	return &Wallet{
		privateKey: key,
		publicKey:  key.PublicKey(),
	}, nil
}

// LoadKeypairFile reads a solana-keygen JSON file ([u8; 64] as a number array).
func LoadKeypairFile(path string) (*Wallet, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file: %w", err)
	}
	return parseKeyMaterial(data)
}

// parseKeyMaterial accepts either a JSON byte array or a base58 string.
func parseKeyMaterial(data []byte) (*Wallet, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(trimmed), &ints); err != nil {
			return nil, fmt.Errorf("failed to parse keypair json: %w", err)
		}
		b := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("keypair byte %d out of range", i)
			}
			b[i] = byte(v)
		}
		return FromBytes(b)
	}
	return NewWallet(trimmed)
}

// PublicKey returns the wallet address.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.publicKey
}

// SignTransaction adds the wallet signature to tx.
func (w *Wallet) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return SignInto(tx, w.privateKey)
}

// String returns the wallet address. The private key is never rendered.
func (w *Wallet) String() string {
	return w.publicKey.String()
}

// SignInto signs tx's message with key and stores the signature in the slot of
// key's public key. It fails with ErrNotRequiredSigner when the message does
// not require that key.
func SignInto(tx *solana.Transaction, key solana.PrivateKey) error {
	pub := key.PublicKey()
	n := int(tx.Message.Header.NumRequiredSignatures)

	idx := -1
	for i := 0; i < n && i < len(tx.Message.AccountKeys); i++ {
		if tx.Message.AccountKeys[i].Equals(pub) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%s: %w", pub, ErrNotRequiredSigner)
	}

	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	sig, err := key.Sign(msg)
	if err != nil {
		return fmt.Errorf("failed to sign message: %w", err)
	}

	for len(tx.Signatures) < n {
		tx.Signatures = append(tx.Signatures, solana.Signature{})
	}
	tx.Signatures[idx] = sig
	return nil
}
