// internal/blockchain/solbc/network.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rovshanmuradov/token-launcher/internal/blockchain"
	"github.com/rovshanmuradov/token-launcher/internal/config"
	"go.uber.org/zap"
)

// ErrNetworkMismatch means the endpoint serves a different ledger than the profile names.
var ErrNetworkMismatch = errors.New("rpc endpoint serves a different network")

// CheckNetwork compares the endpoint's genesis hash with the profile fingerprint.
func CheckNetwork(ctx context.Context, client blockchain.Client, profile config.NetworkProfile) error {
	genesis, err := client.GetGenesisHash(ctx)
	if err != nil {
		return fmt.Errorf("failed to get genesis hash: %w", err)
	}
	if !genesis.Equals(profile.GenesisHash) {
		return fmt.Errorf("%w: expected %s (%s), got %s",
			ErrNetworkMismatch, profile.Name, profile.GenesisHash, genesis)
	}
	return nil
}

// ClientFactory builds a client for an RPC URL.
type ClientFactory func(rpcURL string) blockchain.Client

// Binding is a profile paired with the client that talks to it.
type Binding struct {
	Profile config.NetworkProfile
	Client  blockchain.Client
}

// Session owns the active network profile. Switch replaces the profile and
// drops the cached client in one step; callers take a Binding snapshot so a
// switch never reaches a workflow already running.
type Session struct {
	mu       sync.RWMutex
	profiles map[string]config.NetworkProfile
	factory  ClientFactory
	active   Binding
	logger   *zap.Logger
}

// NewSession selects initial as the active profile.
func NewSession(profiles map[string]config.NetworkProfile, initial string, factory ClientFactory, logger *zap.Logger) (*Session, error) {
	s := &Session{
		profiles: profiles,
		factory:  factory,
		logger:   logger.Named("session"),
	}
	if err := s.Switch(initial); err != nil {
		return nil, err
	}
	return s, nil
}

// Switch activates the named profile.
func (s *Session) Switch(name string) error {
	profile, ok := s.profiles[name]
	if !ok {
		return fmt.Errorf("unknown network %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = Binding{Profile: profile, Client: s.factory(profile.RPCURL)}

	s.logger.Info("Network switched",
		zap.String("network", profile.Name),
		zap.String("rpc_url", profile.RPCURL))
	return nil
}

// Current returns a snapshot of the active profile and client.
func (s *Session) Current() Binding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}
