package tokenmeta

import (
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_RoundTrip(t *testing.T) {
	authority := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	partner := solana.NewWallet().PublicKey()

	in := Metadata{
		UpdateAuthority: authority,
		Mint:            mint,
		IsMutable:       true,
		Data: Data{
			Name:   "Test",
			Symbol: "TST",
			URI:    "https://example.com/meta.json",
			Creators: []Creator{
				{Address: authority, Verified: true, Share: 70},
				{Address: partner, Share: 30},
			},
		},
	}
	raw, err := Encode(in)
	require.NoError(t, err)
	require.Len(t, raw, AccountSize)

	out, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrInvalidData)

	_, err = Decode([]byte{4, 1, 2})
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestCreateMetadata(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	ix, err := CreateMetadata(mint, authority, Data{Name: "Test", Symbol: "TST", URI: "https://x/y.json"})
	require.NoError(t, err)
	assert.Equal(t, ProgramID, ix.ProgramID())

	pda, err := MetadataAddress(mint)
	require.NoError(t, err)

	accounts := ix.Accounts()
	require.NotEmpty(t, accounts)
	assert.Equal(t, pda, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, mint, accounts[1].PublicKey)

	signers := 0
	for _, a := range accounts {
		if a.IsSigner {
			signers++
			assert.Equal(t, authority, a.PublicKey)
		}
	}
	assert.Positive(t, signers)
}

func TestUpdateMetadata(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	ix, err := UpdateMetadata(mint, authority, Data{Name: "New", Symbol: "NEW", URI: "https://x/z.json"})
	require.NoError(t, err)
	assert.Equal(t, ProgramID, ix.ProgramID())

	pda, _ := MetadataAddress(mint)
	accounts := ix.Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, pda, accounts[0].PublicKey)
	assert.Equal(t, authority, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsSigner)
}

func TestDataValidate(t *testing.T) {
	a := solana.NewWallet().PublicKey()

	tests := []struct {
		name    string
		data    Data
		wantErr bool
	}{
		{"ok", Data{Name: "Test", Symbol: "TST"}, false},
		{"long name", Data{Name: strings.Repeat("n", 33)}, true},
		{"long symbol", Data{Symbol: strings.Repeat("s", 11)}, true},
		{"long uri", Data{URI: strings.Repeat("u", 201)}, true},
		{"shares under 100", Data{Creators: []Creator{{Address: a, Share: 40}}}, true},
		{"shares exact", Data{Creators: []Creator{{Address: a, Share: 100}}}, false},
		{"fee too high", Data{SellerFeeBasisPoints: 10001}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidData)
				return
			}
			assert.NoError(t, err)
		})
	}
}
