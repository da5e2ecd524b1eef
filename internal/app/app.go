// Package app owns the lifecycle of the engine and its dependencies for one
// process: configuration in, wired service container out. The engine is an
// explicitly constructed object handed to whichever layer needs it; there is
// no lazily initialized global.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mwantia/fabric/pkg/container"

	"github.com/mwantia/tagsync/internal/config"
	"github.com/mwantia/tagsync/internal/engine"
	"github.com/mwantia/tagsync/internal/satellite"
	"github.com/mwantia/tagsync/pkg/db/store"
	"github.com/mwantia/tagsync/pkg/log"
)

type App struct {
	mutex sync.RWMutex

	cfg *config.BaseConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	central *store.SQLiteStore
	engine  *engine.Engine
}

func New(cfg *config.BaseConfig) *App {
	return &App{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("tagsync", cfg.Log),
	}
}

// Open connects the central store and builds the engine. A central store
// that cannot be opened is fatal; everything else in the system degrades
// per-satellite instead.
func (a *App) Open(ctx context.Context) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	centralPath, err := a.cfg.Store.ResolveCentralPath()
	if err != nil {
		return fmt.Errorf("failed to resolve central store location: %w", err)
	}

	central, err := store.Open(ctx, centralPath)
	if err != nil {
		return err
	}
	a.central = central

	locator := satellite.NewLocator(
		a.cfg.Store.SatelliteDirName,
		a.cfg.Store.DatabaseName,
		a.cfg.Store.DuplicateScanLimit,
	)

	delay, err := time.ParseDuration(a.cfg.Store.ReleaseDelay)
	if err != nil {
		delay = 150 * time.Millisecond
	}
	deleter := satellite.NewDeleter(delay, a.cfg.Store.DeleteRetries)

	a.engine = engine.New(central, locator, deleter, a.log.Named("engine"), engine.Options{
		PushPrune: a.cfg.Store.PushPrune,
	})

	return a.setupServices()
}

func (a *App) setupServices() error {
	errs := container.Errors{}

	a.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](a.sc,
		container.With[log.LoggerService](),
		container.WithInstance(a.log)))

	a.log.Debug("Registering 'Engine'...")
	errs.Add(container.Register[engine.Engine](a.sc,
		container.WithInstance(a.engine)))

	return errs.Errors()
}

// Engine returns the wired reconciliation engine.
func (a *App) Engine() *engine.Engine {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.engine
}

// Logger returns the base logger service.
func (a *App) Logger() log.LoggerService {
	return a.log
}

// Close tears down the container and releases the central store.
func (a *App) Close(ctx context.Context) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	timeout, err := time.ParseDuration(a.cfg.ShutdownTimeout)
	if err != nil {
		timeout = 10 * time.Second
	}

	shutdown, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := a.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}

	if a.engine != nil {
		return a.engine.Close()
	}
	if a.central != nil {
		return a.central.Close()
	}
	return nil
}

// Run loads the app around fn for one CLI invocation.
func Run(ctx context.Context, cfg *config.BaseConfig, fn func(ctx context.Context, e *engine.Engine, logger log.LoggerService) error) error {
	a := New(cfg)
	if err := a.Open(ctx); err != nil {
		return err
	}
	defer a.Close(ctx)

	return fn(ctx, a.Engine(), a.Logger())
}
