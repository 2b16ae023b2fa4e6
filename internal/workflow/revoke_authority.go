// internal/workflow/revoke_authority.go
package workflow

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/programs/spltoken"
	"github.com/rovshanmuradov/token-launcher/internal/events"
	"github.com/rovshanmuradov/token-launcher/internal/types"
	"go.uber.org/zap"
)

// revokeAuthority checks the current holder before building anything. The
// check is advisory; the token program enforces the authority on chain.
func (s *Service) revokeAuthority(ctx context.Context, ex *execution, c Command) (*Outcome, error) {
	cmd := c.(RevokeAuthorityCommand)
	ex.mint = cmd.Mint

	if err := ex.checkNetwork(ctx); err != nil {
		return nil, err
	}

	ex.step(events.StepCheckingAccount)
	data, err := ex.binding.Client.GetAccountData(ctx, cmd.Mint)
	if err != nil {
		if errors.Is(err, blockchain.ErrAccountNotFound) {
			return nil, types.NewPreconditionError(ex.op, types.ReasonNotFound, "mint %s does not exist", cmd.Mint)
		}
		return nil, err
	}
	state, err := spltoken.DecodeMint(data)
	if err != nil {
		return nil, types.NewPreconditionError(ex.op, types.ReasonNotFound, "account %s is not a mint: %v", cmd.Mint, err)
	}

	current := state.Authority(cmd.Kind)
	if current == nil {
		return nil, types.NewPreconditionError(ex.op, types.ReasonAlreadyRevoked, "%s authority of %s is already revoked", cmd.Kind, cmd.Mint)
	}
	payer := ex.payer()
	if !current.Equals(payer) {
		ex.logger.Warn("Caller does not hold the authority",
			zap.String("kind", string(cmd.Kind)),
			zap.String("authority", current.String()),
			zap.String("caller", payer.String()))
		return nil, types.NewPreconditionError(ex.op, types.ReasonNotAuthorized, "%s authority of %s is held by %s", cmd.Kind, cmd.Mint, current)
	}

	result, err := ex.submit(ctx, []solana.Instruction{spltoken.RevokeAuthority(cmd.Mint, payer, cmd.Kind)}, nil)
	return outcomeFrom(result), err
}
