// internal/blockchain/programs/spltoken/encode.go
package spltoken

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go/programs/token"
)

// EncodeMint renders m in the on-chain mint layout. Used to seed fake ledgers.
func EncodeMint(m MintState) ([]byte, error) {
	var buf bytes.Buffer
	mint := token.Mint{
		MintAuthority:   m.MintAuthority,
		Supply:          m.Supply,
		Decimals:        m.Decimals,
		IsInitialized:   m.IsInitialized,
		FreezeAuthority: m.FreezeAuthority,
	}
	if err := mint.MarshalWithEncoder(bin.NewBinEncoder(&buf)); err != nil {
		return nil, fmt.Errorf("failed to encode mint account: %w", err)
	}
	return buf.Bytes(), nil
}

// MustEncodeMint is EncodeMint for fixtures; it panics on error.
func MustEncodeMint(m MintState) []byte {
	data, err := EncodeMint(m)
	if err != nil {
		panic(err)
	}
	return data
}
