package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/engine"
	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/reachability"
	"github.com/shelfsync/shelfsync/internal/recordmap"
	"github.com/shelfsync/shelfsync/internal/remote"
	"github.com/shelfsync/shelfsync/internal/service"
	"github.com/shelfsync/shelfsync/internal/store"
	"github.com/shelfsync/shelfsync/internal/tui"
	"github.com/shelfsync/shelfsync/internal/workers"
)

// App owns every long-lived client component and runs them as one process:
// sign in first, then the sync engine and the periodic scheduler in the
// background while the terminal UI has the foreground.
type App struct {
	storages    *store.ClientStorages
	coordinator *engine.Coordinator
	monitor     *reachability.Monitor
	workers     *workers.Workers
	ui          *tui.TUI
	logger      *logger.Logger
}

// NewApp assembles the client from configuration: local SQLite storages,
// the HTTP record service transport, the sync coordinator with its
// reachability monitor, the entity services and the terminal UI.
func NewApp(cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(config.Storage{
		DB: config.DB{DSN: cfg.Storage.DB.DSN},
	}, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	recordService, err := remote.NewHTTPRecordService(config.Adapter{
		HTTPAddress:    cfg.Adapter.HTTPAddress,
		RequestTimeout: cfg.Adapter.RequestTimeout,
	}, config.App{
		HashKey: cfg.App.HashKey,
		Version: cfg.App.Version,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("create record service transport: %w", err)
	}

	mapper, err := recordmap.New()
	if err != nil {
		return nil, fmt.Errorf("create record mapping: %w", err)
	}

	monitor, err := reachability.New(cfg.Adapter.HTTPAddress, cfg.Sync.ProbeInterval, log)
	if err != nil {
		return nil, fmt.Errorf("create reachability monitor: %w", err)
	}

	coordinator := engine.NewCoordinator(engine.Deps{
		Logger:     log,
		Service:    recordService,
		Books:      storages.Books,
		Shelves:    storages.Shelves,
		Txlog:      storages.Transactions,
		SyncState:  storages.SyncState,
		Mapper:     mapper,
		Zone:       cfg.Sync.Zone,
		FetchLimit: cfg.Sync.FetchLimit,
	}, storages, monitor)

	services := service.NewClientServices(storages, coordinator, log)
	ui := tui.New(services, recordService, coordinator, log)

	return &App{
		storages:    storages,
		coordinator: coordinator,
		monitor:     monitor,
		workers:     workers.NewWorkers(workers.NewSyncScheduler(coordinator, cfg.Sync.Interval)),
		ui:          ui,
		logger:      log,
	}, nil
}

// Run drives the client lifecycle: the sign-in flow, then the sync engine
// and background workers behind the main UI loop. It blocks until the user
// exits and tears everything down in reverse start order.
func (a *App) Run() error {
	ctx := context.Background()

	if err := a.ui.LoginFlow(ctx); err != nil {
		if errors.Is(err, tui.ErrUserQuit) {
			return nil
		}
		return fmt.Errorf("login flow: %w", err)
	}

	if err := a.coordinator.Start(ctx); err != nil {
		a.logger.Error().Err(err).Str("func", "App.Run").Msg("sync start failed, continuing offline")
	}
	a.monitor.Start()
	a.workers.Run()

	err := a.ui.MainLoop(ctx)

	a.workers.Stop()
	a.monitor.Stop()
	a.coordinator.Close()
	if closeErr := a.storages.Close(); closeErr != nil {
		a.logger.Error().Err(closeErr).Str("func", "App.Run").Msg("closing local storage")
	}

	if err != nil && !errors.Is(err, tui.ErrUserQuit) {
		return fmt.Errorf("main loop: %w", err)
	}
	return nil
}
