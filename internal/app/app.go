package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/five82/larder/internal/config"
	"github.com/five82/larder/internal/export"
	"github.com/five82/larder/internal/foodapi"
	"github.com/five82/larder/internal/inventory"
	"github.com/five82/larder/internal/prefs"
	"github.com/five82/larder/internal/ui"
)

// Options configure the larder application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/larder/prefs.toml
	PollEvery  int    // seconds; zero uses the config refresh_interval
	ExportPath string // when set, export once and exit without the TUI
}

type services struct {
	cfg     config.Config
	logger  *zap.Logger
	client  *foodapi.Client
	store   *inventory.Store
	gateway *inventory.Gateway
}

func setup(opts Options) (*services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	client, err := foodapi.NewClient(cfg.APIURL,
		foodapi.WithTimeout(cfg.RequestTimeout),
		foodapi.WithLogger(logger.Named("api")),
	)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	store := &inventory.Store{}
	gateway := inventory.NewGateway(client, store,
		inventory.WithLogger(logger.Named("gateway")),
		inventory.WithTimeout(cfg.RequestTimeout),
	)

	logger.Info("larder starting",
		zap.String("api_url", client.BaseURL()),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Duration("refresh_interval", cfg.RefreshInterval),
		zap.String("log_level", cfg.LogLevel),
	)

	return &services{cfg: cfg, logger: logger, client: client, store: store, gateway: gateway}, nil
}

// Run boots the larder TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	svc, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = svc.logger.Sync() }()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		svc.logger.Warn("preferences unreadable, using defaults", zap.Error(err))
	}
	restoreSort(svc.store, userPrefs, svc.logger)

	interval := svc.cfg.RefreshInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Populate the store before the first frame; a failure is shown in the UI.
	_ = svc.gateway.FetchAll(ctx)

	StartPoller(ctx, svc.gateway, interval, svc.logger.Named("poller"))

	uiOpts := ui.Options{
		Context:   ctx,
		Gateway:   svc.gateway,
		Catalog:   svc.client,
		Config:    &svc.cfg,
		Logger:    svc.logger.Named("ui"),
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
	}
	if err := ui.Run(uiOpts); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// Export fetches the inventory once and writes it as CSV to path. A
// relative path is resolved against the configured export directory.
func Export(ctx context.Context, opts Options) (string, int, error) {
	svc, err := setup(opts)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = svc.logger.Sync() }()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		svc.logger.Warn("preferences unreadable, using defaults", zap.Error(err))
	}
	restoreSort(svc.store, userPrefs, svc.logger)

	if err := svc.gateway.FetchAll(ctx); err != nil {
		return "", 0, err
	}

	target := opts.ExportPath
	if !filepath.IsAbs(target) {
		target = filepath.Join(svc.cfg.ExportDir, target)
	}
	snap := svc.store.Snapshot()
	path, err := export.WriteFile(filepath.Dir(target), filepath.Base(target), snap.Entries)
	if err != nil {
		return "", 0, fmt.Errorf("export inventory: %w", err)
	}
	svc.logger.Info("inventory exported", zap.String("path", path), zap.Int("items", len(snap.Entries)))
	return path, len(snap.Entries), nil
}

func restoreSort(store *inventory.Store, p prefs.Prefs, logger *zap.Logger) {
	if p.SortKey == "" {
		return
	}
	cfg := inventory.SortConfig{
		Key:       inventory.SortKey(p.SortKey),
		Direction: inventory.ParseDirection(p.SortDirection),
	}
	if err := store.SetSort(cfg); err != nil {
		logger.Warn("ignoring saved sort", zap.String("sort_key", p.SortKey), zap.Error(err))
	}
}
