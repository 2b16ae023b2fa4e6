// internal/blockchain/solbc/transaction/builder.go
package transaction

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain"
	"github.com/rovshanmuradov/token-launcher/internal/types"
	"go.uber.org/zap"
)

// Builder assembles fee and operation instructions into an unsigned transaction.
type Builder struct {
	client blockchain.Client
	logger *zap.Logger
}

func NewBuilder(client blockchain.Client, logger *zap.Logger) *Builder {
	return &Builder{
		client: client,
		logger: logger.Named("tx-builder"),
	}
}

// Build places fee (when non-nil) at index 0 followed by ops in order, with
// payer as fee payer. The blockhash is fetched here, right before signing,
// so every call, including a retry, gets a fresh one.
func (b *Builder) Build(ctx context.Context, payer solana.PublicKey, fee solana.Instruction, ops []solana.Instruction) (*Unsigned, error) {
	if len(ops) == 0 {
		return nil, types.NewValidationError("build_transaction", "no operation instructions")
	}
	if payer.IsZero() {
		return nil, types.NewValidationError("build_transaction", "fee payer is not set")
	}

	instructions := make([]solana.Instruction, 0, len(ops)+1)
	if fee != nil {
		instructions = append(instructions, fee)
	}
	instructions = append(instructions, ops...)

	blockhash, err := b.client.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to assemble transaction: %w", err)
	}

	b.logger.Debug("Transaction assembled",
		zap.Int("instructions", len(instructions)),
		zap.Bool("fee", fee != nil),
		zap.String("payer", payer.String()),
		zap.String("blockhash", blockhash.String()))

	return &Unsigned{
		Tx:           tx,
		Payer:        payer,
		Blockhash:    blockhash,
		Instructions: instructions,
		HasFee:       fee != nil,
	}, nil
}

// RequiredSigners returns the accounts that must sign the message, fee payer first.
func RequiredSigners(tx *solana.Transaction) []solana.PublicKey {
	n := int(tx.Message.Header.NumRequiredSignatures)
	if n > len(tx.Message.AccountKeys) {
		n = len(tx.Message.AccountKeys)
	}
	out := make([]solana.PublicKey, n)
	copy(out, tx.Message.AccountKeys[:n])
	return out
}
