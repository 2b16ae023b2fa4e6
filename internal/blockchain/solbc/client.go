// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain"
	"go.uber.org/zap"
)

const (
	readMaxTries   = 4
	readMaxElapsed = 15 * time.Second
)

// Client is a thin adapter over the solana-go RPC client. Idempotent reads
// are retried with exponential backoff; broadcasts are not.
type Client struct {
	rpc        *rpc.Client
	logger     *zap.Logger
	commitment rpc.CommitmentType
}

// NewClient creates a client for rpcURL.
func NewClient(rpcURL string, logger *zap.Logger) *Client {
	return &Client{
		rpc:        rpc.New(rpcURL),
		logger:     logger.Named("solbc-client"),
		commitment: rpc.CommitmentConfirmed,
	}
}

func retryRead[T any](ctx context.Context, c *Client, method string, op func() (T, error)) (T, error) {
	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := op()
		if err == nil {
			return v, nil
		}
		if errors.Is(err, rpc.ErrNotFound) || errors.Is(err, blockchain.ErrAccountNotFound) || ctx.Err() != nil {
			return v, backoff.Permanent(err)
		}
		c.logger.Debug("RPC read failed, retrying",
			zap.String("method", method),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return v, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(readMaxTries),
		backoff.WithMaxElapsedTime(readMaxElapsed),
	)
}

// GetLatestBlockhash fetches a fresh blockhash. It is never cached.
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := retryRead(ctx, c, "getLatestBlockhash", func() (*rpc.GetLatestBlockhashResult, error) {
		return c.rpc.GetLatestBlockhash(ctx, c.commitment)
	})
	if err != nil {
		c.logger.Error("GetLatestBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

// GetAccountData returns the raw bytes stored in an account.
func (c *Client) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	result, err := retryRead(ctx, c, "getAccountInfo", func() (*rpc.GetAccountInfoResult, error) {
		return c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
			Commitment: c.commitment,
			Encoding:   solana.EncodingBase64,
		})
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", pubkey, blockchain.ErrAccountNotFound)
		}
		c.logger.Debug("GetAccountData error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, err
	}
	if result == nil || result.Value == nil || result.Value.Data == nil {
		return nil, fmt.Errorf("%s: %w", pubkey, blockchain.ErrAccountNotFound)
	}
	return result.Value.Data.GetBinary(), nil
}

// GetMinimumBalanceForRentExemption returns the rent-exempt minimum for size bytes.
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	lamports, err := retryRead(ctx, c, "getMinimumBalanceForRentExemption", func() (uint64, error) {
		return c.rpc.GetMinimumBalanceForRentExemption(ctx, size, c.commitment)
	})
	if err != nil {
		c.logger.Error("GetMinimumBalanceForRentExemption error", zap.Uint64("size", size), zap.Error(err))
		return 0, err
	}
	return lamports, nil
}

// GetGenesisHash returns the genesis hash of the ledger behind the endpoint.
func (c *Client) GetGenesisHash(ctx context.Context) (solana.Hash, error) {
	hash, err := retryRead(ctx, c, "getGenesisHash", func() (solana.Hash, error) {
		return c.rpc.GetGenesisHash(ctx)
	})
	if err != nil {
		c.logger.Error("GetGenesisHash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return hash, nil
}

// SendTransactionWithOpts broadcasts tx once. Retrying is the caller's decision.
func (c *Client) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
	})
	if err != nil {
		c.logger.Error("SendTransactionWithOpts error", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// GetSignatureStatuses fetches statuses, searching history so older signatures resolve too.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	result, err := c.rpc.GetSignatureStatuses(ctx, true, signatures...)
	if err != nil {
		c.logger.Warn("GetSignatureStatuses error", zap.Error(err))
		return nil, err
	}
	return result, nil
}

var _ blockchain.Client = (*Client)(nil)
