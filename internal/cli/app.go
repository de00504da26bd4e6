package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrz1836/signet/internal/audit"
	"github.com/mrz1836/signet/internal/config"
	"github.com/mrz1836/signet/internal/crypto"
	"github.com/mrz1836/signet/internal/crypto/native"
	"github.com/mrz1836/signet/internal/identity"
	"github.com/mrz1836/signet/internal/ledger"
	"github.com/mrz1836/signet/internal/notary"
	"github.com/mrz1836/signet/internal/store"
)

// services bundles everything a command needs once configuration is loaded.
type services struct {
	cfg     *config.Config
	dataDir string
	backend store.Backend
	notary  *notary.Notary
	logger  zerolog.Logger
}

// openServices loads configuration and wires the store, key manager,
// engine, and notary together.
func openServices(ctx context.Context) (*services, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return newServices(cfg, GetLogger())
}

// loadConfig loads configuration with the CLI logger on the context.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(GetLogger().WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newServices wires services from an already loaded configuration.
func newServices(cfg *config.Config, logger zerolog.Logger) (*services, error) {
	dataDir := ""
	if cfg.Storage.Backend == store.BackendFile {
		dir, err := config.DataDir(cfg)
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}

	backend, err := store.Open(cfg.Storage.Backend, dataDir, cfg.Storage.LockTimeout)
	if err != nil {
		return nil, err
	}

	keys, err := native.NewKeyManager(cfg.Keys.Bits)
	if err != nil {
		return nil, err
	}
	engine := native.NewEngine(crypto.AlgorithmSHA256WithRSA)

	registry := identity.NewRegistry(backend, keys, identity.WithLogger(logger))
	l := ledger.New(backend, engine,
		ledger.WithMaxTextBytes(cfg.Signing.MaxTextBytes),
		ledger.WithLogger(logger),
	)
	a := audit.New(backend, audit.WithLogger(logger))

	return &services{
		cfg:     cfg,
		dataDir: dataDir,
		backend: backend,
		notary: notary.New(registry, l, a, engine,
			notary.WithParallelism(cfg.Verify.Parallelism),
			notary.WithLogger(logger),
		),
		logger: logger,
	}, nil
}
