// internal/workflow/commands.go
package workflow

import (
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/assets"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/programs/spltoken"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/programs/tokenmeta"
	"github.com/rovshanmuradov/token-launcher/internal/transaction"
	"github.com/rovshanmuradov/token-launcher/internal/types"
)

// Command is a validated request for one workflow.
type Command interface {
	GetType() string
	Validate() error
}

// CreateTokenCommand mints a new fungible token with metadata.
type CreateTokenCommand struct {
	Name        string
	Symbol      string
	Description string
	Website     string
	Decimals    uint8
	// Supply is a plain decimal string in whole tokens.
	Supply string
	Image  assets.Image
}

func (c CreateTokenCommand) GetType() string {
	return string(transaction.OperationCreateToken)
}

func (c CreateTokenCommand) Validate() error {
	op := c.GetType()
	if err := validateName(op, c.Name); err != nil {
		return err
	}
	if err := validateSymbol(op, c.Symbol); err != nil {
		return err
	}
	if c.Decimals > types.MaxDecimals {
		return types.NewValidationError(op, "decimals must be between 0 and %d, got %d", types.MaxDecimals, c.Decimals)
	}
	if _, err := c.RawSupply(); err != nil {
		return err
	}
	if len(c.Image.Data) == 0 {
		return types.NewValidationError(op, "image is required")
	}
	if c.Image.ContentType == "" {
		return types.NewValidationError(op, "image content type is required")
	}
	return nil
}

// RawSupply converts Supply to base units at Decimals, rounding half up.
func (c CreateTokenCommand) RawSupply() (uint64, error) {
	op := c.GetType()
	amount, err := types.ParseAmount(c.Supply)
	if err != nil {
		return 0, types.NewValidationError(op, "invalid supply: %v", err)
	}
	if amount.Sign() < 0 {
		return 0, types.NewValidationError(op, "supply must not be negative")
	}
	raw, err := amount.ToRaw(c.Decimals)
	if err != nil {
		return 0, types.NewValidationError(op, "invalid supply: %v", err)
	}
	return raw, nil
}

// RevokeAuthorityCommand permanently removes a mint or freeze authority.
type RevokeAuthorityCommand struct {
	Mint solana.PublicKey
	Kind spltoken.AuthorityKind
}

func (c RevokeAuthorityCommand) GetType() string {
	return string(transaction.OperationRevokeAuthority)
}

func (c RevokeAuthorityCommand) Validate() error {
	if c.Mint.IsZero() {
		return types.NewValidationError(c.GetType(), "mint address is required")
	}
	if _, err := spltoken.ParseAuthorityKind(string(c.Kind)); err != nil {
		return types.NewValidationError(c.GetType(), "%v", err)
	}
	return nil
}

// UpdateMetadataCommand changes some of a token's descriptive fields. Nil
// fields keep their on-chain value where one exists.
type UpdateMetadataCommand struct {
	Mint        solana.PublicKey
	Name        *string
	Symbol      *string
	Description *string
	Website     *string
	Image       *assets.Image
}

func (c UpdateMetadataCommand) GetType() string {
	return string(transaction.OperationUpdateMetadata)
}

func (c UpdateMetadataCommand) Validate() error {
	op := c.GetType()
	if c.Mint.IsZero() {
		return types.NewValidationError(op, "mint address is required")
	}
	if c.Name == nil && c.Symbol == nil && c.Description == nil && c.Website == nil && c.Image == nil {
		return types.NewValidationError(op, "at least one field must be updated")
	}
	if c.Name != nil {
		if err := validateName(op, *c.Name); err != nil {
			return err
		}
	}
	if c.Symbol != nil {
		if err := validateSymbol(op, *c.Symbol); err != nil {
			return err
		}
	}
	if c.Image != nil && (len(c.Image.Data) == 0 || c.Image.ContentType == "") {
		return types.NewValidationError(op, "image data and content type are required")
	}
	return nil
}

// AddCreatorCommand splits attribution between the caller and one creator.
type AddCreatorCommand struct {
	Mint    solana.PublicKey
	Creator solana.PublicKey
	// Share is the creator's percentage; the caller keeps 100 - Share.
	Share int
}

func (c AddCreatorCommand) GetType() string {
	return string(transaction.OperationAddCreator)
}

func (c AddCreatorCommand) Validate() error {
	op := c.GetType()
	if c.Mint.IsZero() {
		return types.NewValidationError(op, "mint address is required")
	}
	if c.Creator.IsZero() {
		return types.NewValidationError(op, "creator address is required")
	}
	if c.Share < 0 || c.Share > 100 {
		return types.NewPreconditionError(op, types.ReasonInvalidShare, "share %d is outside 0..100", c.Share)
	}
	return nil
}

// CallerShare is the share left to the caller.
func (c AddCreatorCommand) CallerShare() uint8 {
	return uint8(100 - c.Share)
}

func validateName(op, name string) error {
	if name == "" {
		return types.NewValidationError(op, "name is required")
	}
	if len(name) > tokenmeta.MaxNameLength {
		return types.NewValidationError(op, "name must be at most %d bytes", tokenmeta.MaxNameLength)
	}
	return nil
}

func validateSymbol(op, symbol string) error {
	if symbol == "" {
		return types.NewValidationError(op, "symbol is required")
	}
	if len(symbol) > tokenmeta.MaxSymbolLength {
		return types.NewValidationError(op, "symbol must be at most %d bytes", tokenmeta.MaxSymbolLength)
	}
	return nil
}
