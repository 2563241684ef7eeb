package app

import (
	"fmt"
	"log/slog"

	"backtest_go/internal/domain"
	"backtest_go/internal/infra"
	"backtest_go/internal/infra/storage"
	"backtest_go/internal/replay"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Logger  *slog.Logger
	Metrics *infra.Metrics

	storage *storage.Storage // Opened on first use.
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{Metrics: infra.GlobalMetrics}
}

// Initialize loads the configuration and installs the logger.
// An empty configPath runs on DefaultConfig.
func (b *Bootstrap) Initialize(configPath string) error {
	// 1. Load Config
	cfg := infra.DefaultConfig()
	if configPath != "" {
		loaded, err := infra.LoadConfig(configPath)
		if err != nil {
			return err // Let main handle the error
		}
		cfg = loaded
	}
	b.Config = cfg

	// 2. Setup Logger
	b.Logger = infra.NewLogger(cfg)
	slog.SetDefault(b.Logger)

	b.Logger.Info("Bootstrapped backtest",
		slog.String("app", cfg.App.Name),
		slog.String("config", configPath),
	)
	return nil
}

// Storage opens the profile database on first call.
func (b *Bootstrap) Storage() (*storage.Storage, error) {
	if b.storage != nil {
		return b.storage, nil
	}
	path := ""
	if b.Config != nil {
		path = b.Config.Storage.Path
	}
	store, err := storage.NewStorage(path)
	if err != nil {
		return nil, err
	}
	b.storage = store
	slog.Debug("Database initialized")
	return store, nil
}

// EngineConfig resolves the engine parameters: the named profile when one is
// given, the config file otherwise.
func (b *Bootstrap) EngineConfig(profile string) (domain.Config, error) {
	if profile == "" {
		return b.Config.EngineConfig(), nil
	}

	store, err := b.Storage()
	if err != nil {
		return domain.Config{}, err
	}
	p, err := store.GetProfile(profile)
	if err != nil {
		return domain.Config{}, err
	}
	if p == nil {
		return domain.Config{}, fmt.Errorf("profile %q: %w", profile, domain.ErrNotFound)
	}
	return p.EngineConfig(), nil
}

// NewReplayer builds a replayer for engCfg wired to the bootstrap's logger,
// metrics and history settings.
func (b *Bootstrap) NewReplayer(engCfg domain.Config, logger *slog.Logger) (*replay.Replayer, error) {
	if logger == nil {
		logger = b.Logger
	}
	return replay.New(&engCfg,
		replay.WithLogger(logger),
		replay.WithMetrics(b.Metrics),
		replay.WithHistory(b.Config.Replay.RecordHistory, b.Config.Replay.HistoryCapacity),
	)
}

// Close releases the database if it was opened.
func (b *Bootstrap) Close() error {
	if b.storage == nil {
		return nil
	}
	err := b.storage.Close()
	b.storage = nil
	return err
}
