// internal/blockchain/solbc/transaction/validator.go
package transaction

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

type Validator struct {
	logger *zap.Logger
}

func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{
		logger: logger.Named("tx-validator"),
	}
}

// ValidateUnsigned checks the assembled message before any signing starts.
func (v *Validator) ValidateUnsigned(u *Unsigned) error {
	if u == nil || u.Tx == nil {
		return ErrInvalidInstruction
	}
	if err := v.ValidateBlockhash(u.Tx); err != nil {
		return err
	}
	if err := v.ValidateInstructions(u.Tx.Message.Instructions); err != nil {
		return err
	}
	signers := RequiredSigners(u.Tx)
	if len(signers) == 0 || !signers[0].Equals(u.Payer) {
		return fmt.Errorf("%w: fee payer %s is not the first signer", ErrInvalidSignature, u.Payer)
	}
	return nil
}

// ValidateSignatures checks that every required signer has a valid signature
// over the current message.
func (v *Validator) ValidateSignatures(tx *solana.Transaction) error {
	signers := RequiredSigners(tx)
	if len(tx.Signatures) != len(signers) {
		return fmt.Errorf("%w: have %d signatures, need %d", ErrInvalidSignature, len(tx.Signatures), len(signers))
	}

	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	for i, signer := range signers {
		sig := tx.Signatures[i]
		if sig.IsZero() {
			return fmt.Errorf("%w: missing signature for %s", ErrInvalidSignature, signer)
		}
		if !sig.Verify(signer, msg) {
			v.logger.Warn("Signature does not verify", zap.String("signer", signer.String()))
			return fmt.Errorf("%w: signature for %s does not verify", ErrInvalidSignature, signer)
		}
	}
	return nil
}

// ValidateUnchanged compares the message with the bytes captured before
// handing the transaction to an external signer.
func (v *Validator) ValidateUnchanged(tx *solana.Transaction, before []byte) error {
	after, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	if !bytes.Equal(before, after) {
		return ErrMessageAltered
	}
	return nil
}

func (v *Validator) ValidateBlockhash(tx *solana.Transaction) error {
	if tx.Message.RecentBlockhash.IsZero() {
		return ErrInvalidBlockhash
	}
	return nil
}

func (v *Validator) ValidateInstructions(instructions []solana.CompiledInstruction) error {
	if len(instructions) == 0 {
		return ErrInvalidInstruction
	}
	return nil
}
