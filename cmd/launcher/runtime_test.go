package main

import (
	"testing"

	"github.com/rovshanmuradov/token-launcher/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageBackend(t *testing.T) {
	devnet := config.NetworkProfile{Name: config.NetworkDevnet}
	mainnet := config.NetworkProfile{Name: config.NetworkMainnet}

	tests := []struct {
		name       string
		configured string
		profile    config.NetworkProfile
		dryRun     bool
		want       string
		wantErr    string
	}{
		{name: "configured backend", configured: "irys", profile: mainnet, want: "irys"},
		{name: "dry run on devnet", configured: "gcs", profile: devnet, dryRun: true, want: "memory"},
		{name: "memory on devnet", configured: "memory", profile: devnet, want: "memory"},
		{name: "dry run on mainnet", configured: "irys", profile: mainnet, dryRun: true, wantErr: "--dry-run is not allowed on mainnet"},
		{name: "memory on mainnet", configured: "memory", profile: mainnet, wantErr: "not allowed on mainnet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storageBackend(tt.configured, tt.profile, tt.dryRun)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, 1, report(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
