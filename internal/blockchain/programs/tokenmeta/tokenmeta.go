// Package tokenmeta builds and decodes Metaplex Token Metadata accounts for
// fungible mints.
package tokenmeta

import (
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/gagliardetto/solana-go"
)

// ProgramID is the Metaplex Token Metadata program.
var ProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

const (
	// MaxNameLength, MaxSymbolLength and MaxURILength are the program's field limits in bytes.
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200
	// MaxCreators is the program's cap on the creators list.
	MaxCreators = 5
)

var ErrInvalidData = errors.New("invalid token metadata")

// Creator is one entry of the on-chain creators list.
type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

// Data is the mutable portion of a metadata account.
type Data struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
}

// Metadata is a decoded metadata account.
type Metadata struct {
	UpdateAuthority     solana.PublicKey
	Mint                solana.PublicKey
	Data                Data
	PrimarySaleHappened bool
	IsMutable           bool
}

// Validate checks d against the program's limits.
func (d Data) Validate() error {
	switch {
	case len(d.Name) > MaxNameLength:
		return fmt.Errorf("%w: name exceeds %d bytes", ErrInvalidData, MaxNameLength)
	case len(d.Symbol) > MaxSymbolLength:
		return fmt.Errorf("%w: symbol exceeds %d bytes", ErrInvalidData, MaxSymbolLength)
	case len(d.URI) > MaxURILength:
		return fmt.Errorf("%w: uri exceeds %d bytes", ErrInvalidData, MaxURILength)
	case len(d.Creators) > MaxCreators:
		return fmt.Errorf("%w: more than %d creators", ErrInvalidData, MaxCreators)
	case d.SellerFeeBasisPoints > 10000:
		return fmt.Errorf("%w: seller fee above 10000 basis points", ErrInvalidData)
	}
	if len(d.Creators) == 0 {
		return nil
	}
	total := 0
	for _, c := range d.Creators {
		total += int(c.Share)
	}
	if total != 100 {
		return fmt.Errorf("%w: creator shares sum to %d, want 100", ErrInvalidData, total)
	}
	return nil
}

// MetadataAddress derives the metadata PDA of mint.
func MetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, err := token_metadata.GetTokenMetaPubkey(common.PublicKey(mint))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive metadata address: %w", err)
	}
	return solana.PublicKey(addr), nil
}

// CreateMetadata creates a mutable metadata account for mint. authority is
// mint authority, update authority and payer.
func CreateMetadata(mint, authority solana.PublicKey, data Data) (solana.Instruction, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	metadata, err := MetadataAddress(mint)
	if err != nil {
		return nil, err
	}
	ix := token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
		Metadata:                common.PublicKey(metadata),
		Mint:                    common.PublicKey(mint),
		MintAuthority:           common.PublicKey(authority),
		Payer:                   common.PublicKey(authority),
		UpdateAuthority:         common.PublicKey(authority),
		UpdateAuthorityIsSigner: true,
		IsMutable:               true,
		Data:                    data.toSDK(),
	})
	return fromSDK(ix), nil
}

// UpdateMetadata replaces the data of mint's metadata account.
func UpdateMetadata(mint, updateAuthority solana.PublicKey, data Data) (solana.Instruction, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	metadata, err := MetadataAddress(mint)
	if err != nil {
		return nil, err
	}
	sdkData := data.toSDK()
	ix := token_metadata.UpdateMetadataAccountV2(token_metadata.UpdateMetadataAccountV2Param{
		MetadataAccount: common.PublicKey(metadata),
		UpdateAuthority: common.PublicKey(updateAuthority),
		Data:            &sdkData,
	})
	return fromSDK(ix), nil
}

// Decode parses raw metadata account data.
func Decode(raw []byte) (Metadata, error) {
	if len(raw) == 0 {
		return Metadata{}, fmt.Errorf("%w: empty account", ErrInvalidData)
	}
	m, err := token_metadata.MetadataDeserialize(raw)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	out := Metadata{
		UpdateAuthority:     solana.PublicKey(m.UpdateAuthority),
		Mint:                solana.PublicKey(m.Mint),
		PrimarySaleHappened: m.PrimarySaleHappened,
		IsMutable:           m.IsMutable,
		Data: Data{
			Name:                 m.Data.Name,
			Symbol:               m.Data.Symbol,
			URI:                  m.Data.Uri,
			SellerFeeBasisPoints: m.Data.SellerFeeBasisPoints,
		},
	}
	if m.Data.Creators != nil {
		for _, c := range *m.Data.Creators {
			out.Data.Creators = append(out.Data.Creators, Creator{
				Address:  solana.PublicKey(c.Address),
				Verified: c.Verified,
				Share:    c.Share,
			})
		}
	}
	return out, nil
}

func (d Data) toSDK() token_metadata.DataV2 {
	out := token_metadata.DataV2{
		Name:                 d.Name,
		Symbol:               d.Symbol,
		Uri:                  d.URI,
		SellerFeeBasisPoints: d.SellerFeeBasisPoints,
	}
	if len(d.Creators) > 0 {
		creators := make([]token_metadata.Creator, 0, len(d.Creators))
		for _, c := range d.Creators {
			creators = append(creators, token_metadata.Creator{
				Address:  common.PublicKey(c.Address),
				Verified: c.Verified,
				Share:    c.Share,
			})
		}
		out.Creators = &creators
	}
	return out
}

func fromSDK(ix sdktypes.Instruction) solana.Instruction {
	accounts := make(solana.AccountMetaSlice, 0, len(ix.Accounts))
	for _, a := range ix.Accounts {
		accounts = append(accounts, solana.NewAccountMeta(solana.PublicKey(a.PubKey), a.IsWritable, a.IsSigner))
	}
	return solana.NewInstruction(solana.PublicKey(ix.ProgramID), accounts, ix.Data)
}
