package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	domrepo "TickerPulse/internal/domain/repository"
	"TickerPulse/internal/handler/api"
	"TickerPulse/internal/usecase"
	"TickerPulse/pkg/cache"
	pkgch "TickerPulse/pkg/clickhouse"
	"TickerPulse/pkg/config"
	xhttp "TickerPulse/pkg/http"
	applogger "TickerPulse/pkg/logger"

	"github.com/robfig/cron/v3"
)

// App encapsulates the entire application lifecycle: the scheduled scan
// pipeline, the HTTP API, and the infrastructure clients to close on the way
// out.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	pipeline  *usecase.Pipeline
	hotstocks *api.HotStocksHandler
	live      *api.LiveHandler

	store     domrepo.SnapshotStore
	publisher domrepo.Publisher
	cache     cache.Service
	chClient  *pkgch.Client

	cron       *cron.Cron
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	pipeline *usecase.Pipeline,
	hotstocks *api.HotStocksHandler,
	live *api.LiveHandler,
	store domrepo.SnapshotStore,
	publisher domrepo.Publisher,
	c cache.Service,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		pipeline:  pipeline,
		hotstocks: hotstocks,
		live:      live,
		store:     store,
		publisher: publisher,
		cache:     c,
		chClient:  chClient,
	}
}

// RunOnce executes a single pipeline run and returns; the mode behind the
// -once flag.
func (a *App) RunOnce(ctx context.Context) error {
	a.pipeline.OnRunComplete(a.live.Broadcast)
	_, err := a.pipeline.Run(ctx)
	a.close()
	return err
}

// Run starts the scheduler and the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.pipeline.OnRunComplete(a.live.Broadcast)

	a.httpServer = xhttp.NewServer(a.hotstocks,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	a.live.RegisterRoutes(a.httpServer.Echo())

	// Overlapping runs are skipped, not queued: a slow scan must not pile up
	// behind itself. The pipeline's own in-flight lock covers overlap with
	// API-triggered runs.
	a.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := a.cron.AddFunc(a.cfg.Scan.Schedule, func() {
		if _, err := a.pipeline.Run(ctx); err != nil {
			if errors.Is(err, usecase.ErrRunInFlight) {
				a.logger.Info("scheduled run skipped, another run is in flight")
				return
			}
			a.logger.Error("scheduled run failed", applogger.Error(err))
		}
	}); err != nil {
		return err
	}
	a.cron.Start()
	a.logger.Info("scheduler started", applogger.String("schedule", a.cfg.Scan.Schedule))

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops the scheduler, the HTTP server, and the clients.
func (a *App) shutdown(ctx context.Context) error {
	if a.cron != nil {
		// Stop scheduling and wait for an in-flight run to finish.
		<-a.cron.Stop().Done()
	}

	if a.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
		}
	}

	a.close()
	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) close() {
	a.live.Close()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("snapshot store close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}
}
