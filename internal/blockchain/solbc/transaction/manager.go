// internal/blockchain/solbc/transaction/manager.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/solbc"
	"github.com/rovshanmuradov/token-launcher/internal/types"
	"github.com/rovshanmuradov/token-launcher/internal/wallet"
	"go.uber.org/zap"
)

const opSubmit = "sign_and_submit"

// Manager runs the signing and submission pipeline: local signatures, wallet
// signature, broadcast, confirmation. Steps never run out of order.
type Manager struct {
	client    blockchain.Client
	logger    *zap.Logger
	config    Config
	validator *Validator
	monitor   *Monitor
	metrics   *Metrics
	analyzer  *solbc.ErrorAnalyzer
	progress  ProgressFunc
}

// Stage is a pipeline step reported to a ProgressFunc.
type Stage string

const (
	StageSigning    Stage = "signing"
	StageSending    Stage = "sending"
	StageConfirming Stage = "confirming"
)

// ProgressFunc observes pipeline steps. sig is zero until the transaction is sent.
type ProgressFunc func(stage Stage, sig solana.Signature)

func NewManager(client blockchain.Client, logger *zap.Logger, config Config, metrics *Metrics) *Manager {
	config = config.withDefaults()
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Manager{
		client:    client,
		logger:    logger.Named("tx-manager"),
		config:    config,
		validator: NewValidator(logger),
		monitor:   NewMonitor(client, logger, config),
		metrics:   metrics,
		analyzer:  solbc.NewErrorAnalyzer(logger),
	}
}

// WithProgress registers fn to observe pipeline steps.
func (tm *Manager) WithProgress(fn ProgressFunc) *Manager {
	tm.progress = fn
	return tm
}

func (tm *Manager) report(stage Stage, sig solana.Signature) {
	if tm.progress != nil {
		tm.progress(stage, sig)
	}
}

// Monitor exposes the confirmation monitor for status lookups.
func (tm *Manager) Monitor() *Monitor {
	return tm.monitor
}

// SignAndSubmit signs u with every local key, asks signer for the fee-payer
// signature, broadcasts, then waits for a terminal status.
//
// A returned error always carries a types.Kind. A broadcast whose transport
// failed on every attempt is still polled by signature, so it ends Confirmed,
// Failed or TimedOut rather than SubmissionRejected. Confirmed results return a
// nil error; Failed and TimedOut results are returned together with a
// KindFailed or KindTimedOut error so callers cannot mistake them for success.
func (tm *Manager) SignAndSubmit(ctx context.Context, u *Unsigned, local []solana.PrivateKey, signer wallet.Signer) (*SubmissionResult, error) {
	if err := tm.validator.ValidateUnsigned(u); err != nil {
		return nil, types.NewValidationError(opSubmit, "%v", err)
	}
	if !signer.PublicKey().Equals(u.Payer) {
		return nil, types.NewSigningMismatch(opSubmit, "wallet %s is not fee payer %s", signer.PublicKey(), u.Payer)
	}
	tx := u.Tx

	for _, key := range local {
		if err := wallet.SignInto(tx, key); err != nil {
			tm.logger.Error("Local signing failed", zap.String("signer", key.PublicKey().String()), zap.Error(err))
			return nil, types.NewSigningMismatch(opSubmit, "%v", err)
		}
	}

	before, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to serialize message: %w", opSubmit, err)
	}

	tm.report(StageSigning, solana.Signature{})
	tm.logger.Info("Waiting for wallet signature", zap.String("payer", u.Payer.String()))
	if err := signer.SignTransaction(ctx, tx); err != nil {
		var rejected *wallet.RejectedError
		switch {
		case errors.As(err, &rejected):
			tm.logger.Info("Wallet signature rejected", zap.String("reason", rejected.Reason))
			return nil, types.NewUserCancelled(opSubmit, rejected.Reason, err)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, types.NewUserCancelled(opSubmit, "signing aborted", err)
		case errors.Is(err, wallet.ErrNotRequiredSigner):
			return nil, types.NewSigningMismatch(opSubmit, "%v", err)
		}
		// The wallet returned without a signature; nothing was broadcast.
		tm.logger.Warn("Wallet signing failed", zap.Error(err))
		return nil, types.NewUserCancelled(opSubmit, "wallet did not sign", err)
	}

	if err := tm.validator.ValidateUnchanged(tx, before); err != nil {
		return nil, types.NewSigningMismatch(opSubmit, "%v", err)
	}
	if err := tm.validator.ValidateSignatures(tx); err != nil {
		return nil, types.NewSigningMismatch(opSubmit, "%v", err)
	}

	tm.report(StageSending, solana.Signature{})
	start := time.Now()
	signature, err := tm.send(ctx, tx)
	switch {
	case errors.Is(err, errBroadcastUnknown):
		// fall through to polling; a missing status ends as TimedOut
	case err != nil:
		return nil, err
	default:
		tm.logger.Info("Transaction sent", zap.String("signature", signature.String()))
	}
	tm.report(StageConfirming, signature)

	result, err := tm.monitor.AwaitConfirmation(ctx, signature)
	if err != nil {
		// the caller gave up waiting; the outcome is unknown like a timeout
		tm.metrics.TrackOutcome(OutcomeTimedOut, start)
		return &SubmissionResult{Signature: signature, Outcome: OutcomeTimedOut},
			&types.Error{Kind: types.KindTimedOut, Op: opSubmit, Msg: "confirmation aborted for " + signature.String(), Err: err}
	}
	tm.metrics.TrackOutcome(result.Outcome, start)

	switch result.Outcome {
	case OutcomeFailed:
		return result, types.NewFailed(opSubmit, signature.String(), result.Err)
	case OutcomeTimedOut:
		return result, types.NewTimedOut(opSubmit, signature.String())
	}

	tm.logger.Info("Transaction confirmed",
		zap.String("signature", signature.String()),
		zap.Uint64("slot", result.Slot))
	return result, nil
}

// errBroadcastUnknown marks a broadcast whose transport failed on every
// attempt. The node may still have accepted the transaction.
var errBroadcastUnknown = errors.New("broadcast outcome unknown")

// send broadcasts tx. Transport failures are retried with backoff; a JSON-RPC
// rejection is final. When transport retries run out the fee payer signature
// is returned with errBroadcastUnknown so the caller can poll for it.
func (tm *Manager) send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, types.NewUserCancelled(opSubmit, "submission aborted before broadcast", err)
	}
	opts := blockchain.TransactionOptions{
		SkipPreflight:       tm.config.SkipPreflight,
		PreflightCommitment: tm.config.Commitment,
	}

	attempt := 0
	signature, err := backoff.Retry(ctx, func() (solana.Signature, error) {
		attempt++
		sig, err := tm.client.SendTransactionWithOpts(ctx, tx, opts)
		if err == nil {
			return sig, nil
		}
		if solbc.IsRPCError(err) || ctx.Err() != nil {
			return sig, backoff.Permanent(err)
		}
		tm.logger.Warn("Retrying transaction send", zap.Int("attempt", attempt), zap.Error(err))
		return sig, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(tm.config.SendMaxElapsed),
	)
	switch {
	case err == nil:
		return signature, nil
	case solbc.IsRPCError(err):
		analysis := tm.analyzer.AnalyzeRPCError(err)
		tm.metrics.TrackRejection(analysis.Reason)
		tm.logger.Error("Transaction rejected",
			zap.String("reason", analysis.Reason),
			zap.Strings("logs", analysis.Logs),
			zap.Error(err))
		return solana.Signature{}, types.NewSubmissionRejected(opSubmit, analysis.Reason, err)
	}

	sig := tx.Signatures[0]
	tm.logger.Warn("Broadcast outcome unknown, polling for signature",
		zap.String("signature", sig.String()),
		zap.Int("attempts", attempt),
		zap.Error(err))
	return sig, fmt.Errorf("%w: %w", errBroadcastUnknown, err)
}
