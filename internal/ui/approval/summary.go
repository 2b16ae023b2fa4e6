package approval

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/programs/tokenmeta"
	"github.com/rovshanmuradov/token-launcher/internal/types"
)

// Summary is what the user sees before signing.
type Summary struct {
	Payer        solana.PublicKey
	Blockhash    solana.Hash
	FeeLamports  uint64
	Signers      int
	Instructions []string
}

// FeeAmount returns the service fee in SOL.
func (s Summary) FeeAmount() types.Amount {
	return types.AmountFromRaw(s.FeeLamports, types.LamportDecimals)
}

var programNames = map[solana.PublicKey]string{
	solana.SystemProgramID:                    "System",
	solana.TokenProgramID:                     "SPL Token",
	solana.SPLAssociatedTokenAccountProgramID: "Associated Token Account",
	tokenmeta.ProgramID:                       "Token Metadata",
}

// Describe summarises tx. A system transfer to treasury is reported as the fee.
func Describe(tx *solana.Transaction, treasury solana.PublicKey) Summary {
	msg := tx.Message
	s := Summary{
		Blockhash: msg.RecentBlockhash,
		Signers:   int(msg.Header.NumRequiredSignatures),
	}
	if len(msg.AccountKeys) > 0 {
		s.Payer = msg.AccountKeys[0]
	}

	for _, ci := range msg.Instructions {
		if int(ci.ProgramIDIndex) >= len(msg.AccountKeys) {
			s.Instructions = append(s.Instructions, "unknown program")
			continue
		}
		program := msg.AccountKeys[ci.ProgramIDIndex]
		name, ok := programNames[program]
		if !ok {
			name = program.String()
		}

		if program.Equals(solana.SystemProgramID) {
			if lamports, ok := transferTo(msg, ci, treasury); ok {
				s.FeeLamports += lamports
				name = "Service fee"
			}
		}
		s.Instructions = append(s.Instructions, name)
	}
	return s
}

func transferTo(msg solana.Message, ci solana.CompiledInstruction, treasury solana.PublicKey) (uint64, bool) {
	accounts := make([]*solana.AccountMeta, 0, len(ci.Accounts))
	for _, idx := range ci.Accounts {
		if int(idx) >= len(msg.AccountKeys) {
			return 0, false
		}
		accounts = append(accounts, solana.Meta(msg.AccountKeys[idx]))
	}

	decoded, err := system.DecodeInstruction(accounts, ci.Data)
	if err != nil {
		return 0, false
	}
	transfer, ok := decoded.Impl.(*system.Transfer)
	if !ok || transfer.Lamports == nil {
		return 0, false
	}
	if !transfer.GetRecipientAccount().PublicKey.Equals(treasury) {
		return 0, false
	}
	return *transfer.Lamports, true
}
