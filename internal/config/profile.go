// internal/config/profile.go
package config

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/types"
)

const (
	NetworkDevnet  = "devnet"
	NetworkMainnet = "mainnet"
)

// Genesis fingerprints used to confirm an RPC endpoint serves the expected ledger.
const (
	DevnetGenesisHash  = "EtWTRABZaYq6iMfeYKouRu166VU2xqa1wcaWoxPkr96"
	MainnetGenesisHash = "5eykt4UsFv8P8NJdTREpY1vzqKqZKvdpKuc147dw2N9d"
)

var knownNetworks = map[string]string{
	NetworkDevnet:  DevnetGenesisHash,
	NetworkMainnet: MainnetGenesisHash,
}

// FeeSchedule is the platform fee charged per operation, in native currency.
type FeeSchedule struct {
	TokenCreation   types.Amount
	RevokeAuthority types.Amount
	UpdateMetadata  types.Amount
}

// NetworkProfile is an immutable description of one ledger. Workflows copy it
// at start, so switching the active profile never affects work in flight.
type NetworkProfile struct {
	Name        string
	RPCURL      string
	GenesisHash solana.Hash
	Fees        FeeSchedule
	Treasury    solana.PublicKey
}

// IsMainnet reports whether the profile spends real funds.
func (p NetworkProfile) IsMainnet() bool {
	return p.Name == NetworkMainnet
}

// Profiles builds both named profiles from a validated config.
func (c *Config) Profiles() (map[string]NetworkProfile, error) {
	treasury, err := parseTreasury(c.FeeWalletAddress)
	if err != nil {
		return nil, err
	}

	out := make(map[string]NetworkProfile, len(knownNetworks))
	for name, raw := range map[string]ProfileConfig{NetworkDevnet: c.Devnet, NetworkMainnet: c.Mainnet} {
		fees, err := parseFees(raw.Fees)
		if err != nil {
			return nil, fmt.Errorf("%s.fees: %w", name, err)
		}
		out[name] = NetworkProfile{
			Name:        name,
			RPCURL:      raw.RPCURL,
			GenesisHash: solana.MustHashFromBase58(knownNetworks[name]),
			Fees:        fees,
			Treasury:    treasury,
		}
	}
	return out, nil
}

// Profile returns the named profile.
func (c *Config) Profile(name string) (NetworkProfile, error) {
	profiles, err := c.Profiles()
	if err != nil {
		return NetworkProfile{}, err
	}
	p, ok := profiles[name]
	if !ok {
		return NetworkProfile{}, fmt.Errorf("unknown network %q", name)
	}
	return p, nil
}

// ActiveProfile returns the profile selected by the network key.
func (c *Config) ActiveProfile() (NetworkProfile, error) {
	return c.Profile(c.Network)
}

func parseFees(raw FeeConfig) (FeeSchedule, error) {
	var fs FeeSchedule
	fields := []struct {
		name string
		src  string
		dst  *types.Amount
	}{
		{"token_creation", raw.TokenCreation, &fs.TokenCreation},
		{"revoke_authority", raw.RevokeAuthority, &fs.RevokeAuthority},
		{"update_metadata", raw.UpdateMetadata, &fs.UpdateMetadata},
	}
	for _, f := range fields {
		a, err := types.ParseAmount(f.src)
		if err != nil {
			return FeeSchedule{}, fmt.Errorf("%s: %w", f.name, err)
		}
		if a.Sign() < 0 {
			return FeeSchedule{}, fmt.Errorf("%s: fee must not be negative", f.name)
		}
		*f.dst = a
	}
	return fs, nil
}

func validateFees(raw FeeConfig) error {
	_, err := parseFees(raw)
	return err
}

func parseTreasury(addr string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid fee_wallet_address %q: %w", addr, err)
	}
	return pk, nil
}
