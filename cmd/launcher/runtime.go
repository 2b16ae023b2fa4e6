package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rovshanmuradov/token-launcher/internal/assets"
	"github.com/rovshanmuradov/token-launcher/internal/assets/gcs"
	"github.com/rovshanmuradov/token-launcher/internal/assets/irys"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/solbc"
	soltx "github.com/rovshanmuradov/token-launcher/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/token-launcher/internal/config"
	"github.com/rovshanmuradov/token-launcher/internal/events"
	"github.com/rovshanmuradov/token-launcher/internal/events/natsbridge"
	"github.com/rovshanmuradov/token-launcher/internal/logger"
	"github.com/rovshanmuradov/token-launcher/internal/storage"
	"github.com/rovshanmuradov/token-launcher/internal/storage/memory"
	"github.com/rovshanmuradov/token-launcher/internal/storage/postgres"
	"github.com/rovshanmuradov/token-launcher/internal/ui/approval"
	"github.com/rovshanmuradov/token-launcher/internal/wallet"
	"github.com/rovshanmuradov/token-launcher/internal/workflow"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	eventBufferSize = 256
	shutdownTimeout = 5 * time.Second
)

// runtime holds everything a command needs, built from flags and config.
type runtime struct {
	cfg     *config.Config
	log     *logger.Logger
	session *solbc.Session
	journal storage.Journal
	bus     *events.Bus
	closers []func(ctx context.Context)
}

func newRuntime(c *cli.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("network") {
		cfg.Network = c.String("network")
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.Log.File
	logCfg.Development = cfg.Log.Development
	lg, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rt := &runtime{cfg: cfg, log: lg}
	rt.onClose(func(context.Context) { _ = lg.Sync() })

	profiles, err := cfg.Profiles()
	if err != nil {
		rt.Close()
		return nil, err
	}
	factory := func(rpcURL string) blockchain.Client {
		return solbc.NewClient(rpcURL, lg.Logger)
	}
	rt.session, err = solbc.NewSession(profiles, cfg.Network, factory, lg.Logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if rt.session.Current().Profile.IsMainnet() {
		lg.Warn("Mainnet selected: transactions spend real funds")
	}

	if err := rt.openJournal(c.Context); err != nil {
		rt.Close()
		return nil, err
	}
	if err := rt.openEvents(); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) onClose(fn func(ctx context.Context)) {
	rt.closers = append(rt.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i](ctx)
	}
}

func (rt *runtime) openJournal(ctx context.Context) error {
	if rt.cfg.Journal.PostgresURL == "" {
		rt.log.Debug("No journal database configured, using in-memory journal")
		rt.journal = memory.NewJournal()
		return nil
	}
	store, err := postgres.NewStore(ctx, rt.cfg.Journal.PostgresURL, rt.log.Logger)
	if err != nil {
		return err
	}
	if err := store.RunMigrations(ctx); err != nil {
		store.Close()
		return err
	}
	rt.journal = store
	rt.onClose(func(context.Context) { store.Close() })
	return nil
}

func (rt *runtime) openEvents() error {
	rt.bus = events.NewBus(rt.log.Logger, eventBufferSize)
	rt.onClose(func(ctx context.Context) {
		if err := rt.bus.Shutdown(ctx); err != nil {
			rt.log.Warn("Event bus shutdown incomplete", zap.Error(err))
		}
	})

	if rt.cfg.Events.NATSURL == "" {
		return nil
	}
	nc, err := natsbridge.Connect(rt.cfg.Events.NATSURL, "token-launcher")
	if err != nil {
		return err
	}
	natsbridge.NewForwarder(nc, rt.cfg.Events.Subject, rt.log.Logger).Attach(rt.bus)
	// registered before the bus closer runs, so it drains after the bus
	rt.closers = append([]func(context.Context){func(context.Context) {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}}, rt.closers...)
	return nil
}

// service builds the workflow service with the wallet, the approval prompt
// and the configured asset store.
func (rt *runtime) service(c *cli.Context) (*workflow.Service, error) {
	ctx := c.Context
	store, err := rt.assetStore(ctx, rt.session.Current().Profile, c.Bool("dry-run"))
	if err != nil {
		return nil, err
	}

	w, err := wallet.Load(ctx, rt.cfg.Wallet, wallet.GCPSecretSource)
	if err != nil {
		return nil, err
	}
	rt.log.Info("Wallet loaded", zap.String("address", w.PublicKey().String()))

	var signer wallet.Signer = w
	if !c.Bool("yes") {
		profile := rt.session.Current().Profile
		signer = approval.NewSigner(w, profile.Treasury, rt.log.Logger,
			approval.WithTitle(fmt.Sprintf("Approve transaction on %s", profile.Name)))
	}

	return workflow.NewService(workflow.Options{
		Signer:  signer,
		Assets:  assets.NewOrchestrator(store, rt.log.Logger),
		Session: rt.session,
		Journal: rt.journal,
		Events:  rt.bus,
		Metrics: rt.metrics(),
		Tx: soltx.Config{
			ConfirmationTimeout: rt.cfg.Confirmation.Timeout,
			PollInterval:        rt.cfg.Confirmation.PollInterval,
			SendMaxElapsed:      rt.cfg.Send.MaxElapsed,
		},
		MaxRetries: rt.cfg.Workflow.MaxRetries,
		Logger:     rt.log.Logger,
	})
}

// storageBackend picks the asset backend. The memory store's URIs never
// resolve, so it is refused where fees are real.
func storageBackend(configured string, profile config.NetworkProfile, dryRun bool) (string, error) {
	backend := configured
	if dryRun {
		backend = "memory"
	}
	if backend == "memory" && profile.IsMainnet() {
		if dryRun {
			return "", cli.Exit("--dry-run is not allowed on mainnet: it still pays fees and writes unresolvable metadata URIs", 1)
		}
		return "", cli.Exit("storage.backend \"memory\" is not allowed on mainnet", 1)
	}
	return backend, nil
}

func (rt *runtime) assetStore(ctx context.Context, profile config.NetworkProfile, dryRun bool) (assets.Store, error) {
	backend, err := storageBackend(rt.cfg.Storage.Backend, profile, dryRun)
	if err != nil {
		return nil, err
	}

	switch backend {
	case "memory":
		rt.log.Warn("Assets are kept in memory; metadata URIs will not resolve")
		return assets.NewMemoryStore(), nil
	case "irys":
		return irys.NewUploader(rt.cfg.Storage.IrysURL, rt.cfg.Storage.IrysAPIKey, rt.log.Logger), nil
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		rt.onClose(func(context.Context) { _ = client.Close() })
		return gcs.New(client, rt.cfg.Storage.GCSBucket, rt.log.Logger), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}

// metrics registers transaction metrics and serves them when a listen
// address is configured.
func (rt *runtime) metrics() *soltx.Metrics {
	addr := rt.cfg.Metrics.ListenAddr
	if addr == "" {
		return soltx.NewMetrics(nil)
	}

	reg := prometheus.NewRegistry()
	m := soltx.NewMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.log.Error("Metrics server stopped", zap.Error(err))
		}
	}()
	rt.onClose(func(ctx context.Context) { _ = srv.Shutdown(ctx) })
	rt.log.Info("Serving metrics", zap.String("addr", addr))
	return m
}

func withRuntime(fn func(c *cli.Context, rt *runtime) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt, err := newRuntime(c)
		if err != nil {
			return err
		}
		defer rt.Close()
		return fn(c, rt)
	}
}
