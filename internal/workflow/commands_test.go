package workflow

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/programs/spltoken"
	"github.com/rovshanmuradov/token-launcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTokenCommand_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateTokenCommand)
		want   error
	}{
		{"valid", func(*CreateTokenCommand) {}, nil},
		{"empty name", func(c *CreateTokenCommand) { c.Name = "" }, types.ErrValidation},
		{"name too long", func(c *CreateTokenCommand) { c.Name = "abcdefghijklmnopqrstuvwxyz0123456" }, types.ErrValidation},
		{"name at limit", func(c *CreateTokenCommand) { c.Name = "abcdefghijklmnopqrstuvwxyz012345" }, nil},
		{"symbol too long", func(c *CreateTokenCommand) { c.Symbol = "ABCDEFGHIJK" }, types.ErrValidation},
		{"decimals too high", func(c *CreateTokenCommand) { c.Decimals = 10 }, types.ErrValidation},
		{"negative supply", func(c *CreateTokenCommand) { c.Supply = "-1" }, types.ErrValidation},
		{"garbage supply", func(c *CreateTokenCommand) { c.Supply = "1e5" }, types.ErrValidation},
		{"supply overflows", func(c *CreateTokenCommand) { c.Supply = "18446744073709551616"; c.Decimals = 0 }, types.ErrValidation},
		{"no image", func(c *CreateTokenCommand) { c.Image.Data = nil }, types.ErrValidation},
		{"no content type", func(c *CreateTokenCommand) { c.Image.ContentType = "" }, types.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := createCommand()
			tt.mutate(&cmd)
			err := cmd.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateTokenCommand_RawSupply(t *testing.T) {
	tests := []struct {
		supply   string
		decimals uint8
		want     uint64
	}{
		{"100", 2, 10000},
		{"1.5", 0, 2},
		{"1000000", 9, 1000000000000000},
		{"0", 9, 0},
		{"0.005", 2, 1},
	}
	for _, tt := range tests {
		cmd := CreateTokenCommand{Supply: tt.supply, Decimals: tt.decimals}
		raw, err := cmd.RawSupply()
		require.NoError(t, err, tt.supply)
		assert.Equal(t, tt.want, raw, tt.supply)
	}
}

func TestRevokeAuthorityCommand_Validate(t *testing.T) {
	mint := solana.NewWallet().PublicKey()

	assert.NoError(t, RevokeAuthorityCommand{Mint: mint, Kind: spltoken.AuthorityMint}.Validate())
	assert.ErrorIs(t, RevokeAuthorityCommand{Kind: spltoken.AuthorityMint}.Validate(), types.ErrValidation)
	assert.ErrorIs(t, RevokeAuthorityCommand{Mint: mint, Kind: "owner"}.Validate(), types.ErrValidation)
}

func TestAddCreatorCommand_Shares(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	creator := solana.NewWallet().PublicKey()

	for _, share := range []int{0, 30, 100} {
		cmd := AddCreatorCommand{Mint: mint, Creator: creator, Share: share}
		require.NoError(t, cmd.Validate())
		assert.Equal(t, uint8(100-share), cmd.CallerShare())
	}

	for _, share := range []int{-1, 101} {
		err := AddCreatorCommand{Mint: mint, Creator: creator, Share: share}.Validate()
		assert.ErrorIs(t, err, types.ErrInvalidShare)
	}
}
