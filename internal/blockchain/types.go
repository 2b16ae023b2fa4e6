// internal/blockchain/types.go
package blockchain

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ErrAccountNotFound is returned when an account has no data on chain.
var ErrAccountNotFound = errors.New("account not found")

// TransactionOptions controls how a transaction is broadcast.
type TransactionOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
}

// Client is the subset of the ledger RPC the launcher relies on.
type Client interface {
	// GetLatestBlockhash returns a recent blockhash for a new transaction.
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	// GetAccountData returns raw account data or ErrAccountNotFound.
	GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error)
	// GetMinimumBalanceForRentExemption returns the lamports needed to keep size bytes alive.
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
	// GetGenesisHash identifies the ledger behind the endpoint.
	GetGenesisHash(ctx context.Context) (solana.Hash, error)
	// SendTransactionWithOpts broadcasts a fully signed transaction.
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts TransactionOptions) (solana.Signature, error)
	// GetSignatureStatuses reports processing status for signatures.
	GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}
