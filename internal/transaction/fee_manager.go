// internal/transaction/fee_manager.go
package transaction

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/rovshanmuradov/token-launcher/internal/config"
	"github.com/rovshanmuradov/token-launcher/internal/types"
)

const opFee = "fee_policy"

// Operation names a fee-bearing action.
type Operation string

const (
	OperationCreateToken     Operation = "create_token"
	OperationRevokeAuthority Operation = "revoke_authority"
	OperationUpdateMetadata  Operation = "update_metadata"
	OperationAddCreator      Operation = "add_creator"
)

// BuildFeeInstruction returns a native transfer of amount from payer to
// treasury. amount is converted to lamports exactly, rounding half-up.
func BuildFeeInstruction(payer solana.PublicKey, amount types.Amount, treasury solana.PublicKey) (solana.Instruction, error) {
	if amount.Sign() < 0 {
		return nil, types.NewValidationError(opFee, "fee amount %s is negative", amount)
	}
	lamports, err := amount.ToLamports()
	if err != nil {
		return nil, types.NewValidationError(opFee, "%v", err)
	}
	return system.NewTransferInstruction(lamports, payer, treasury).Build(), nil
}

// FeePolicy picks the fee for an operation from a profile's schedule.
type FeePolicy struct {
	profile config.NetworkProfile
}

func NewFeePolicy(profile config.NetworkProfile) FeePolicy {
	return FeePolicy{profile: profile}
}

// Amount returns the fee charged for op.
func (p FeePolicy) Amount(op Operation) types.Amount {
	switch op {
	case OperationCreateToken:
		return p.profile.Fees.TokenCreation
	case OperationRevokeAuthority:
		return p.profile.Fees.RevokeAuthority
	default:
		return p.profile.Fees.UpdateMetadata
	}
}

// Instruction returns the fee transfer for op, or nil when the fee is zero
// so the builder omits it.
func (p FeePolicy) Instruction(op Operation, payer solana.PublicKey) (solana.Instruction, error) {
	amount := p.Amount(op)
	if amount.IsZero() {
		return nil, nil
	}
	return BuildFeeInstruction(payer, amount, p.profile.Treasury)
}
