// Package spltoken builds SPL Token and Associated Token Account instructions
// for fungible mints.
package spltoken

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

// MintSize is the byte size of an SPL mint account.
const MintSize = 82

// AuthorityKind selects which mint authority to change.
type AuthorityKind string

const (
	AuthorityMint   AuthorityKind = "mint"
	AuthorityFreeze AuthorityKind = "freeze"
)

// ParseAuthorityKind accepts "mint" or "freeze".
func ParseAuthorityKind(s string) (AuthorityKind, error) {
	switch AuthorityKind(s) {
	case AuthorityMint, AuthorityFreeze:
		return AuthorityKind(s), nil
	}
	return "", fmt.Errorf("unknown authority kind %q", s)
}

func (k AuthorityKind) tokenType() token.AuthorityType {
	if k == AuthorityFreeze {
		return token.AuthorityFreezeAccount
	}
	return token.AuthorityMintTokens
}

// CreateMintAccount allocates a rent-exempt mint account owned by the token program.
func CreateMintAccount(payer, mint solana.PublicKey, rentLamports uint64) solana.Instruction {
	return system.NewCreateAccountInstruction(rentLamports, MintSize, solana.TokenProgramID, payer, mint).Build()
}

// InitializeMint sets decimals and both authorities to authority.
func InitializeMint(mint solana.PublicKey, decimals uint8, authority solana.PublicKey) solana.Instruction {
	return token.NewInitializeMintInstruction(decimals, authority, authority, mint, solana.SysVarRentPubkey).Build()
}

// CreateAssociatedAccount creates owner's token account for mint, paid by payer.
func CreateAssociatedAccount(payer, owner, mint solana.PublicKey) solana.Instruction {
	return associatedtokenaccount.NewCreateInstruction(payer, owner, mint).Build()
}

// AssociatedAddress derives owner's token account address for mint.
func AssociatedAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated token address: %w", err)
	}
	return ata, nil
}

// MintTo mints raw base units into destination.
func MintTo(mint, destination, authority solana.PublicKey, raw uint64) solana.Instruction {
	return token.NewMintToInstruction(raw, mint, destination, authority, nil).Build()
}

// RevokeAuthority sets the selected authority of mint to none.
func RevokeAuthority(mint, current solana.PublicKey, kind AuthorityKind) solana.Instruction {
	return token.NewSetAuthorityInstructionBuilder().
		SetAuthorityType(kind.tokenType()).
		SetSubjectAccount(mint).
		SetAuthorityAccount(current).
		Build()
}

// MintState is the part of a mint account the launcher inspects.
type MintState struct {
	MintAuthority   *solana.PublicKey
	FreezeAuthority *solana.PublicKey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
}

// Authority returns the current holder of kind, nil when revoked.
func (m MintState) Authority(kind AuthorityKind) *solana.PublicKey {
	if kind == AuthorityFreeze {
		return m.FreezeAuthority
	}
	return m.MintAuthority
}

// DecodeMint parses raw mint account data.
func DecodeMint(data []byte) (MintState, error) {
	var mint token.Mint
	if err := mint.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return MintState{}, fmt.Errorf("failed to decode mint account: %w", err)
	}
	return MintState{
		MintAuthority:   mint.MintAuthority,
		FreezeAuthority: mint.FreezeAuthority,
		Supply:          mint.Supply,
		Decimals:        mint.Decimals,
		IsInitialized:   mint.IsInitialized,
	}, nil
}
