// internal/blockchain/solbc/transaction/monitor.go
package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/solbc"
	"go.uber.org/zap"
)

type Monitor struct {
	client   blockchain.Client
	logger   *zap.Logger
	config   Config
	analyzer *solbc.ErrorAnalyzer
}

func NewMonitor(client blockchain.Client, logger *zap.Logger, config Config) *Monitor {
	return &Monitor{
		client:   client,
		logger:   logger.Named("tx-monitor"),
		config:   config.withDefaults(),
		analyzer: solbc.NewErrorAnalyzer(logger),
	}
}

// GetTransactionStatus returns the current status of a signature without waiting.
func (m *Monitor) GetTransactionStatus(ctx context.Context, signature solana.Signature) (*Status, error) {
	response, err := m.client.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction status: %w", err)
	}

	if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
		return &Status{
			Signature: signature.String(),
			Status:    "pending",
			Timestamp: time.Now(),
		}, nil
	}

	status := response.Value[0]
	txStatus := &Status{
		Signature: signature.String(),
		Timestamp: time.Now(),
		Slot:      status.Slot,
	}
	if status.Confirmations != nil {
		txStatus.Confirmations = *status.Confirmations
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized:
		txStatus.Status = "finalized"
	case rpc.ConfirmationStatusConfirmed:
		txStatus.Status = "confirmed"
	default:
		txStatus.Status = "pending"
	}

	if status.Err != nil {
		txStatus.Error = m.analyzer.AnalyzeExecutionError(status.Err).Message
		txStatus.Status = "failed"
	}
	return txStatus, nil
}

// AwaitConfirmation polls until the signature reaches confirmed or finalized,
// fails on chain, or the confirmation budget runs out. Exhausting the budget
// yields OutcomeTimedOut: the transaction may still land later.
func (m *Monitor) AwaitConfirmation(ctx context.Context, signature solana.Signature) (*SubmissionResult, error) {
	ticker := time.NewTicker(m.config.PollInterval)
	defer ticker.Stop()

	deadline := time.NewTimer(m.config.ConfirmationTimeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			m.logger.Warn("Confirmation budget exhausted",
				zap.String("signature", signature.String()),
				zap.Duration("budget", m.config.ConfirmationTimeout))
			return &SubmissionResult{Signature: signature, Outcome: OutcomeTimedOut}, nil
		case <-ticker.C:
			result, done, err := m.poll(ctx, signature)
			if err != nil {
				m.logger.Warn("Confirmation check failed", zap.Error(err))
				continue
			}
			if done {
				return result, nil
			}
		}
	}
}

func (m *Monitor) poll(ctx context.Context, signature solana.Signature) (*SubmissionResult, bool, error) {
	response, err := m.client.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get signature status: %w", err)
	}
	if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
		return nil, false, nil
	}

	status := response.Value[0]
	if status.Err != nil {
		analysis := m.analyzer.AnalyzeExecutionError(status.Err)
		m.logger.Error("Transaction failed on chain",
			zap.String("signature", signature.String()),
			zap.String("reason", analysis.Reason),
			zap.String("error", analysis.Message))
		return &SubmissionResult{
			Signature: signature,
			Outcome:   OutcomeFailed,
			Slot:      status.Slot,
			Err:       analysis.Raw,
		}, true, nil
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return &SubmissionResult{
			Signature: signature,
			Outcome:   OutcomeConfirmed,
			Slot:      status.Slot,
		}, true, nil
	}
	return nil, false, nil
}
