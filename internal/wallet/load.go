// internal/wallet/load.go
package wallet

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/token-launcher/internal/config"
)

// Load picks the first configured key source: keypair file, inline base58 key, then secret.
func Load(ctx context.Context, cfg config.WalletConfig, secrets SecretSource) (*Wallet, error) {
	switch {
	case cfg.KeypairPath != "":
		return LoadKeypairFile(cfg.KeypairPath)
	case cfg.PrivateKey != "":
		return NewWallet(cfg.PrivateKey)
	case cfg.SecretName != "":
		if secrets == nil {
			secrets = GCPSecretSource
		}
		return LoadFromSecret(ctx, secrets, cfg.SecretName)
	}
	return nil, errors.New("no wallet configured: set wallet.keypair_path, wallet.private_key or wallet.secret_name")
}
