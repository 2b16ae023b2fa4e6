// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

const envPrefix = "TOKEN_LAUNCHER"

type Config struct {
	Network          string             `mapstructure:"network"`
	FeeWalletAddress string             `mapstructure:"fee_wallet_address"`
	Devnet           ProfileConfig      `mapstructure:"devnet"`
	Mainnet          ProfileConfig      `mapstructure:"mainnet"`
	Confirmation     ConfirmationConfig `mapstructure:"confirmation"`
	Send             SendConfig         `mapstructure:"send"`
	Workflow         WorkflowConfig     `mapstructure:"workflow"`
	Wallet           WalletConfig       `mapstructure:"wallet"`
	Storage          StorageConfig      `mapstructure:"storage"`
	Journal          JournalConfig      `mapstructure:"journal"`
	Events           EventsConfig       `mapstructure:"events"`
	Metrics          MetricsConfig      `mapstructure:"metrics"`
	Log              LogConfig          `mapstructure:"log"`
}

// ProfileConfig is the raw, string-typed form of a NetworkProfile.
type ProfileConfig struct {
	RPCURL string    `mapstructure:"rpc_url"`
	Fees   FeeConfig `mapstructure:"fees"`
}

// FeeConfig holds native-currency amounts as decimal strings so they are never
// routed through float64.
type FeeConfig struct {
	TokenCreation   string `mapstructure:"token_creation"`
	RevokeAuthority string `mapstructure:"revoke_authority"`
	UpdateMetadata  string `mapstructure:"update_metadata"`
}

type ConfirmationConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type SendConfig struct {
	MaxElapsed time.Duration `mapstructure:"max_elapsed"`
}

type WorkflowConfig struct {
	MaxRetries int `mapstructure:"max_retries"`
}

type WalletConfig struct {
	KeypairPath string `mapstructure:"keypair_path"`
	PrivateKey  string `mapstructure:"private_key"`
	SecretName  string `mapstructure:"secret_name"`
}

type StorageConfig struct {
	Backend    string `mapstructure:"backend"`
	IrysURL    string `mapstructure:"irys_url"`
	IrysAPIKey string `mapstructure:"irys_api_key"`
	GCSBucket  string `mapstructure:"gcs_bucket"`
}

type JournalConfig struct {
	PostgresURL string `mapstructure:"postgres_url"`
}

type EventsConfig struct {
	NATSURL string `mapstructure:"nats_url"`
	Subject string `mapstructure:"subject"`
}

type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

type LogConfig struct {
	File        string `mapstructure:"file"`
	Development bool   `mapstructure:"development"`
}

const (
	DefaultNetwork             = "devnet"
	DefaultDevnetRPCURL        = "https://api.devnet.solana.com"
	DefaultMainnetRPCURL       = "https://api.mainnet-beta.solana.com"
	DefaultFeeWalletAddress    = "AfrTQQTmxYMu3RotbQobTDSenHU61BqpXtGvdBzaCzWf"
	DefaultTokenCreationFee    = "0.1"
	DefaultRevokeAuthorityFee  = "0.01"
	DefaultUpdateMetadataFee   = "0.01"
	DefaultConfirmationTimeout = 60 * time.Second
	DefaultPollInterval        = 500 * time.Millisecond
	DefaultSendMaxElapsed      = 10 * time.Second
	DefaultMaxRetries          = 2
	DefaultStorageBackend      = "irys"
	DefaultIrysURL             = "https://uploader.irys.xyz"
	DefaultEventsSubject       = "token-launcher.workflows"
	DefaultLogFile             = "token-launcher.log"
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"network":                        DefaultNetwork,
		"fee_wallet_address":             DefaultFeeWalletAddress,
		"devnet.rpc_url":                 DefaultDevnetRPCURL,
		"devnet.fees.token_creation":     DefaultTokenCreationFee,
		"devnet.fees.revoke_authority":   DefaultRevokeAuthorityFee,
		"devnet.fees.update_metadata":    DefaultUpdateMetadataFee,
		"mainnet.rpc_url":                DefaultMainnetRPCURL,
		"mainnet.fees.token_creation":    DefaultTokenCreationFee,
		"mainnet.fees.revoke_authority":  DefaultRevokeAuthorityFee,
		"mainnet.fees.update_metadata":   DefaultUpdateMetadataFee,
		"confirmation.timeout":           DefaultConfirmationTimeout,
		"confirmation.poll_interval":     DefaultPollInterval,
		"send.max_elapsed":               DefaultSendMaxElapsed,
		"workflow.max_retries":           DefaultMaxRetries,
		"wallet.keypair_path":            "",
		"wallet.private_key":             "",
		"wallet.secret_name":             "",
		"storage.backend":                DefaultStorageBackend,
		"storage.irys_url":               DefaultIrysURL,
		"storage.irys_api_key":           "",
		"storage.gcs_bucket":             "",
		"journal.postgres_url":           "",
		"events.nats_url":                "",
		"events.subject":                 DefaultEventsSubject,
		"metrics.listen_addr":            "",
		"log.file":                       DefaultLogFile,
		"log.development":                false,
	}
}

// LoadConfig reads the optional config file at path, applies defaults and
// TOKEN_LAUNCHER_* environment overrides, then validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	loadEnvironmentVariables(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvironmentVariables(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func validateConfig(cfg *Config) error {
	var errs error

	if _, ok := knownNetworks[cfg.Network]; !ok {
		errs = multierr.Append(errs, fmt.Errorf("unknown network %q", cfg.Network))
	}
	for name, p := range map[string]ProfileConfig{NetworkDevnet: cfg.Devnet, NetworkMainnet: cfg.Mainnet} {
		if err := validateURLWithCache(p.RPCURL, "http"); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s.rpc_url: %w", name, err))
		}
		if err := validateFees(p.Fees); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s.fees: %w", name, err))
		}
	}
	if cfg.Devnet.RPCURL != "" && cfg.Devnet.RPCURL == cfg.Mainnet.RPCURL {
		errs = multierr.Append(errs, errors.New("devnet and mainnet rpc_url must be different"))
	}
	if _, err := parseTreasury(cfg.FeeWalletAddress); err != nil {
		errs = multierr.Append(errs, err)
	}

	if err := validateNumericParams(cfg); err != nil {
		errs = multierr.Append(errs, err)
	}

	switch cfg.Storage.Backend {
	case "irys":
		if err := validateURLWithCache(cfg.Storage.IrysURL, "http"); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("storage.irys_url: %w", err))
		}
	case "gcs":
		if cfg.Storage.GCSBucket == "" {
			errs = multierr.Append(errs, errors.New("storage.gcs_bucket is required for the gcs backend"))
		}
	case "memory":
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend))
	}

	if cfg.Journal.PostgresURL != "" {
		if err := validateURLWithCache(cfg.Journal.PostgresURL, "postgres"); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("journal.postgres_url: %w", err))
		}
	}
	if cfg.Events.NATSURL != "" {
		if err := validateURLWithCache(cfg.Events.NATSURL, "nats"); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("events.nats_url: %w", err))
		}
	}

	if errs != nil {
		return fmt.Errorf("configuration validation failed: %w", errs)
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.Confirmation.Timeout <= 0 {
		return errors.New("invalid confirmation.timeout")
	}
	if cfg.Confirmation.PollInterval <= 0 || cfg.Confirmation.PollInterval > cfg.Confirmation.Timeout {
		return errors.New("invalid confirmation.poll_interval")
	}
	if cfg.Send.MaxElapsed < 0 {
		return errors.New("invalid send.max_elapsed")
	}
	if cfg.Workflow.MaxRetries < 0 {
		return errors.New("invalid workflow.max_retries")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return fmt.Errorf("invalid URL protocol %q", parsed.Scheme)
	}
	urlCache.Store(rawURL, parsed)
	return nil
}
