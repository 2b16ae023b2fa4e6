// internal/workflow/create_token.go
package workflow

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/assets"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/programs/spltoken"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/programs/tokenmeta"
	soltx "github.com/rovshanmuradov/token-launcher/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/token-launcher/internal/events"
	"github.com/rovshanmuradov/token-launcher/internal/types"
	"github.com/rovshanmuradov/token-launcher/internal/wallet"
	"go.uber.org/zap"
)

func (s *Service) createToken(ctx context.Context, ex *execution, c Command) (*Outcome, error) {
	cmd := c.(CreateTokenCommand)
	raw, err := cmd.RawSupply()
	if err != nil {
		return nil, err
	}

	if err := ex.checkNetwork(ctx); err != nil {
		return nil, err
	}

	published, err := ex.assets.Publish(ctx, &cmd.Image, assets.MetadataDocument{
		Name:        cmd.Name,
		Symbol:      cmd.Symbol,
		Description: cmd.Description,
		ExternalURL: cmd.Website,
	}, nil)
	if err != nil {
		return nil, err
	}
	ex.metadataURI = published.MetadataURI

	identity, err := wallet.NewEphemeralIdentity()
	if err != nil {
		return nil, err
	}
	defer identity.Destroy()
	ex.mint = identity.PublicKey()
	ex.logger.Info("Generated mint identity", zap.String("mint", ex.mint.String()))

	ops, err := ex.createTokenInstructions(ctx, cmd, raw)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Mint:        ex.mint,
		MetadataURI: published.MetadataURI,
		ImageURI:    published.ImageURI,
		RawSupply:   raw,
	}

	for attempt := 0; ; attempt++ {
		var result *soltx.SubmissionResult
		err = identity.Use(func(key solana.PrivateKey) error {
			var submitErr error
			result, submitErr = ex.submit(ctx, ops, []solana.PrivateKey{key})
			return submitErr
		})
		if result != nil {
			out.Signature = result.Signature
			out.Slot = result.Slot
		}
		if err == nil || !errors.Is(err, types.ErrSubmissionRejected) || attempt >= s.opts.MaxRetries {
			return out, err
		}

		if retryErr := ex.checkMintAbsent(ctx); retryErr != nil {
			return out, retryErr
		}
		ex.logger.Warn("Submission rejected, retrying with a fresh blockhash",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", s.opts.MaxRetries),
			zap.Error(err))
	}
}

func (ex *execution) createTokenInstructions(ctx context.Context, cmd CreateTokenCommand, raw uint64) ([]solana.Instruction, error) {
	payer := ex.payer()
	mint := ex.mint

	rent, err := ex.binding.Client.GetMinimumBalanceForRentExemption(ctx, spltoken.MintSize)
	if err != nil {
		return nil, err
	}

	metadata, err := tokenmeta.CreateMetadata(mint, payer, tokenmeta.Data{
		Name:   cmd.Name,
		Symbol: cmd.Symbol,
		URI:    ex.metadataURI,
		Creators: []tokenmeta.Creator{
			{Address: payer, Verified: true, Share: 100},
		},
	})
	if err != nil {
		return nil, types.NewValidationError(ex.op, "%v", err)
	}

	ops := []solana.Instruction{
		spltoken.CreateMintAccount(payer, mint, rent),
		spltoken.InitializeMint(mint, cmd.Decimals, payer),
		metadata,
		spltoken.CreateAssociatedAccount(payer, payer, mint),
	}
	if raw > 0 {
		ata, err := spltoken.AssociatedAddress(payer, mint)
		if err != nil {
			return nil, err
		}
		ops = append(ops, spltoken.MintTo(mint, ata, payer, raw))
	}
	return ops, nil
}

// checkMintAbsent allows a retry only while the first attempt left no mint
// account behind.
func (ex *execution) checkMintAbsent(ctx context.Context) error {
	ex.step(events.StepCheckingAccount)
	_, err := ex.binding.Client.GetAccountData(ctx, ex.mint)
	switch {
	case errors.Is(err, blockchain.ErrAccountNotFound):
		return nil
	case err != nil:
		return err
	}
	return types.NewPreconditionError(ex.op, types.ReasonAccountExists, "mint account %s already exists", ex.mint)
}
