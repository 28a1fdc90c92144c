package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	drepo "stocklens/internal/domain/repository"
	"stocklens/internal/usecase"
	pkgch "stocklens/pkg/clickhouse"
	"stocklens/pkg/config"
	xhttp "stocklens/pkg/http"
	applogger "stocklens/pkg/logger"
	"stocklens/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	refresher   *usecase.Refresher
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler

	collector *usecase.QuoteCollector
	consumer  *queue.RedisQueue
	publisher drepo.Publisher
}

// New creates a new App instance with its required dependencies.
// Optional subsystems are injected via setters.
func New(
	cfg *config.Config,
	lgr *applogger.Logger,
	refresher *usecase.Refresher,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		logger:    lgr,
		refresher: refresher,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetQuoteCollector injects the live quote collector (Finnhub).
func (a *App) SetQuoteCollector(c *usecase.QuoteCollector) { a.collector = c }

// SetQueueConsumer injects the refresh job consumer.
func (a *App) SetQueueConsumer(q *queue.RedisQueue) { a.consumer = q }

// SetPublisher injects the signal event publisher so it can be closed
// on shutdown.
func (a *App) SetPublisher(p drepo.Publisher) { a.publisher = p }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Periodic refresh loop
	go func() {
		if err := a.refresher.Start(ctx); err != nil {
			l.Error("refresher error", applogger.Error(err))
		}
	}()
	l.Info("refresher started",
		applogger.Strings("symbols", a.cfg.Engine.Symbols),
		applogger.Strings("timeframes", a.cfg.Engine.Timeframes))

	// Live quote stream, when enabled
	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				l.Error("quote collector error", applogger.Error(err))
			}
		}()
		l.Info("quote collector started")
	}

	// On-demand refresh queue consumer
	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			l.Error("queue consumer start error", applogger.Error(err))
		} else {
			l.Info("queue consumer started")
		}
	}

	// HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	l.Info("shutting down...")

	// Stop scheduling new refresh runs
	a.refresher.Stop()

	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			l.Warn("quote collector stop error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		stopCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
		if err := a.consumer.Stop(stopCtx); err != nil {
			l.Warn("queue consumer stop error", applogger.Error(err))
		}
		cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			l.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
