package solbc

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/blockchaintest"
	"github.com/rovshanmuradov/token-launcher/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testProfiles(t *testing.T) map[string]config.NetworkProfile {
	t.Helper()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	profiles, err := cfg.Profiles()
	require.NoError(t, err)
	return profiles
}

func TestCheckNetwork(t *testing.T) {
	profiles := testProfiles(t)
	client := blockchaintest.NewClient()

	client.Genesis = solana.MustHashFromBase58(config.DevnetGenesisHash)
	assert.NoError(t, CheckNetwork(context.Background(), client, profiles[config.NetworkDevnet]))

	err := CheckNetwork(context.Background(), client, profiles[config.NetworkMainnet])
	assert.ErrorIs(t, err, ErrNetworkMismatch)
}

func TestSession_SwitchDoesNotAffectSnapshots(t *testing.T) {
	profiles := testProfiles(t)
	var built []string
	factory := func(rpcURL string) blockchain.Client {
		built = append(built, rpcURL)
		return blockchaintest.NewClient()
	}

	s, err := NewSession(profiles, config.NetworkDevnet, factory, zaptest.NewLogger(t))
	require.NoError(t, err)

	snapshot := s.Current()
	require.NoError(t, s.Switch(config.NetworkMainnet))

	assert.Equal(t, config.NetworkDevnet, snapshot.Profile.Name)
	assert.Equal(t, config.NetworkMainnet, s.Current().Profile.Name)
	assert.NotSame(t, snapshot.Client, s.Current().Client)
	assert.Equal(t, []string{config.DefaultDevnetRPCURL, config.DefaultMainnetRPCURL}, built)

	assert.Error(t, s.Switch("testnet"))
	assert.Equal(t, config.NetworkMainnet, s.Current().Profile.Name)
}
