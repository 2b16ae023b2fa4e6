// internal/workflow/add_creator.go
package workflow

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/programs/tokenmeta"
	"github.com/rovshanmuradov/token-launcher/internal/types"
	"go.uber.org/zap"
)

// addCreator rewrites the creators list as a two-party split between the
// caller and one creator. The other on-chain fields are kept.
func (s *Service) addCreator(ctx context.Context, ex *execution, c Command) (*Outcome, error) {
	cmd := c.(AddCreatorCommand)
	ex.mint = cmd.Mint

	payer := ex.payer()
	if cmd.Creator.Equals(payer) {
		return nil, types.NewValidationError(ex.op, "creator must differ from the calling wallet")
	}

	if err := ex.checkNetwork(ctx); err != nil {
		return nil, err
	}
	current, err := ex.loadMetadata(ctx, cmd.Mint)
	if err != nil {
		return nil, err
	}

	data := current.Data
	data.Creators = []tokenmeta.Creator{
		{Address: payer, Verified: true, Share: cmd.CallerShare()},
		{Address: cmd.Creator, Verified: false, Share: uint8(cmd.Share)},
	}
	ex.metadataURI = data.URI
	ex.logger.Info("Creator split",
		zap.String("creator", cmd.Creator.String()),
		zap.Int("creator_share", cmd.Share),
		zap.Uint8("caller_share", cmd.CallerShare()),
		zap.Int("replaced_creators", len(current.Data.Creators)))

	ix, err := tokenmeta.UpdateMetadata(cmd.Mint, payer, data)
	if err != nil {
		return nil, types.NewValidationError(ex.op, "%v", err)
	}

	result, err := ex.submit(ctx, []solana.Instruction{ix}, nil)
	out := outcomeFrom(result)
	out.MetadataURI = data.URI
	return out, err
}
