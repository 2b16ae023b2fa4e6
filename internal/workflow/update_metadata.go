// internal/workflow/update_metadata.go
package workflow

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/assets"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/programs/tokenmeta"
	"github.com/rovshanmuradov/token-launcher/internal/events"
	"github.com/rovshanmuradov/token-launcher/internal/types"
	"go.uber.org/zap"
)

func (s *Service) updateMetadata(ctx context.Context, ex *execution, c Command) (*Outcome, error) {
	cmd := c.(UpdateMetadataCommand)
	ex.mint = cmd.Mint

	if err := ex.checkNetwork(ctx); err != nil {
		return nil, err
	}
	current, err := ex.loadMetadata(ctx, cmd.Mint)
	if err != nil {
		return nil, err
	}

	data := current.Data
	if cmd.Name != nil {
		data.Name = *cmd.Name
	}
	if cmd.Symbol != nil {
		data.Symbol = *cmd.Symbol
	}

	// The previous document is not read back, so omitted off-chain fields
	// are dropped from the new one.
	if cmd.Description == nil || cmd.Website == nil || cmd.Image == nil {
		ex.logger.Warn("Off-chain fields not supplied will be empty in the new metadata document",
			zap.String("previous_uri", current.Data.URI))
	}
	doc := assets.MetadataDocument{Name: data.Name, Symbol: data.Symbol}
	if cmd.Description != nil {
		doc.Description = *cmd.Description
	}
	if cmd.Website != nil {
		doc.ExternalURL = *cmd.Website
	}

	published, err := ex.assets.Publish(ctx, cmd.Image, doc, nil)
	if err != nil {
		return nil, err
	}
	ex.metadataURI = published.MetadataURI
	data.URI = published.MetadataURI

	ix, err := tokenmeta.UpdateMetadata(cmd.Mint, ex.payer(), data)
	if err != nil {
		return nil, types.NewValidationError(ex.op, "%v", err)
	}

	result, err := ex.submit(ctx, []solana.Instruction{ix}, nil)
	out := outcomeFrom(result)
	out.MetadataURI = published.MetadataURI
	out.ImageURI = published.ImageURI
	return out, err
}

// loadMetadata reads and decodes the mint's metadata account and checks that
// the caller may update it.
func (ex *execution) loadMetadata(ctx context.Context, mint solana.PublicKey) (tokenmeta.Metadata, error) {
	ex.step(events.StepCheckingAccount)
	addr, err := tokenmeta.MetadataAddress(mint)
	if err != nil {
		return tokenmeta.Metadata{}, err
	}
	raw, err := ex.binding.Client.GetAccountData(ctx, addr)
	if err != nil {
		if errors.Is(err, blockchain.ErrAccountNotFound) {
			return tokenmeta.Metadata{}, types.NewPreconditionError(ex.op, types.ReasonNotFound, "mint %s has no metadata account", mint)
		}
		return tokenmeta.Metadata{}, err
	}
	md, err := tokenmeta.Decode(raw)
	if err != nil {
		return tokenmeta.Metadata{}, types.NewPreconditionError(ex.op, types.ReasonNotFound, "cannot decode metadata of %s: %v", mint, err)
	}

	payer := ex.payer()
	if !md.UpdateAuthority.Equals(payer) {
		return tokenmeta.Metadata{}, types.NewPreconditionError(ex.op, types.ReasonNotAuthorized,
			"update authority of %s is %s", mint, md.UpdateAuthority)
	}
	if !md.IsMutable {
		return tokenmeta.Metadata{}, types.NewPreconditionError(ex.op, types.ReasonImmutable, "metadata of %s is immutable", mint)
	}
	return md, nil
}
