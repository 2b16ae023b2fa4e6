// Package blockchaintest provides an in-memory blockchain.Client for tests.
package blockchaintest

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain"
)

// Client records every call and answers from configurable state.
type Client struct {
	mu sync.Mutex

	Genesis  solana.Hash
	Rent     uint64
	Accounts map[solana.PublicKey][]byte

	// SendFunc overrides broadcast behavior. By default the first signature is returned.
	SendFunc func(tx *solana.Transaction) (solana.Signature, error)
	// StatusFunc overrides status lookups. By default every signature is confirmed.
	StatusFunc func(sig solana.Signature, call int) (*rpc.SignatureStatusesResult, error)

	BlockhashCalls int
	StatusCalls    int
	Sent           []*solana.Transaction
	Blockhashes    []solana.Hash
}

// NewClient returns a client with rent set and no accounts.
func NewClient() *Client {
	return &Client{
		Rent:     1461600,
		Accounts: make(map[solana.PublicKey][]byte),
	}
}

// SetAccount stores raw account data.
func (c *Client) SetAccount(pk solana.PublicKey, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[pk] = data
}

func (c *Client) GetLatestBlockhash(_ context.Context) (solana.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.BlockhashCalls++

	var h solana.Hash
	binary.LittleEndian.PutUint64(h[:8], uint64(c.BlockhashCalls))
	h[31] = 0xbb
	c.Blockhashes = append(c.Blockhashes, h)
	return h, nil
}

func (c *Client) GetAccountData(_ context.Context, pubkey solana.PublicKey) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.Accounts[pubkey]
	if !ok {
		return nil, fmt.Errorf("%s: %w", pubkey, blockchain.ErrAccountNotFound)
	}
	return data, nil
}

func (c *Client) GetMinimumBalanceForRentExemption(_ context.Context, _ uint64) (uint64, error) {
	return c.Rent, nil
}

func (c *Client) GetGenesisHash(_ context.Context) (solana.Hash, error) {
	return c.Genesis, nil
}

func (c *Client) SendTransactionWithOpts(_ context.Context, tx *solana.Transaction, _ blockchain.TransactionOptions) (solana.Signature, error) {
	c.mu.Lock()
	c.Sent = append(c.Sent, tx)
	send := c.SendFunc
	c.mu.Unlock()

	if send != nil {
		return send(tx)
	}
	if len(tx.Signatures) == 0 {
		return solana.Signature{}, fmt.Errorf("transaction is not signed")
	}
	return tx.Signatures[0], nil
}

func (c *Client) GetSignatureStatuses(_ context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	c.mu.Lock()
	c.StatusCalls++
	call := c.StatusCalls
	statusFn := c.StatusFunc
	c.mu.Unlock()

	out := &rpc.GetSignatureStatusesResult{}
	for _, sig := range signatures {
		if statusFn != nil {
			st, err := statusFn(sig, call)
			if err != nil {
				return nil, err
			}
			out.Value = append(out.Value, st)
			continue
		}
		out.Value = append(out.Value, &rpc.SignatureStatusesResult{
			Slot:               100,
			ConfirmationStatus: rpc.ConfirmationStatusConfirmed,
		})
	}
	return out, nil
}

// SentCount returns the number of broadcasts.
func (c *Client) SentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Sent)
}

// LastSent returns the most recent broadcast or nil.
func (c *Client) LastSent() *solana.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Sent) == 0 {
		return nil
	}
	return c.Sent[len(c.Sent)-1]
}

// Calls returns blockhash and status call counts.
func (c *Client) Calls() (blockhash, status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.BlockhashCalls, c.StatusCalls
}

var _ blockchain.Client = (*Client)(nil)
