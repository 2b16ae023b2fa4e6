// internal/blockchain/programs/tokenmeta/encode.go
package tokenmeta

import (
	"fmt"

	"github.com/near/borsh-go"
)

// AccountSize is the allocated size of a metadata account.
const AccountSize = 679

const keyMetadataV1 uint8 = 4

type creatorLayout struct {
	Address  [32]byte
	Verified bool
	Share    uint8
}

type metadataLayout struct {
	Key                  uint8
	UpdateAuthority      [32]byte
	Mint                 [32]byte
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             *[]creatorLayout
	PrimarySaleHappened  bool
	IsMutable            bool
}

// Encode renders m in the on-chain account layout, zero padded to
// AccountSize. Used to seed fake ledgers.
func Encode(m Metadata) ([]byte, error) {
	layout := metadataLayout{
		Key:                  keyMetadataV1,
		UpdateAuthority:      m.UpdateAuthority,
		Mint:                 m.Mint,
		Name:                 m.Data.Name,
		Symbol:               m.Data.Symbol,
		URI:                  m.Data.URI,
		SellerFeeBasisPoints: m.Data.SellerFeeBasisPoints,
		PrimarySaleHappened:  m.PrimarySaleHappened,
		IsMutable:            m.IsMutable,
	}
	if len(m.Data.Creators) > 0 {
		creators := make([]creatorLayout, 0, len(m.Data.Creators))
		for _, c := range m.Data.Creators {
			creators = append(creators, creatorLayout{Address: c.Address, Verified: c.Verified, Share: c.Share})
		}
		layout.Creators = &creators
	}

	raw, err := borsh.Serialize(layout)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	if len(raw) > AccountSize {
		return nil, fmt.Errorf("%w: encoded size %d exceeds account size", ErrInvalidData, len(raw))
	}
	out := make([]byte, AccountSize)
	copy(out, raw)
	return out, nil
}

// MustEncode is Encode for fixtures.
func MustEncode(m Metadata) []byte {
	out, err := Encode(m)
	if err != nil {
		panic(err)
	}
	return out
}
