package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"LovePulse/internal/handler/api"
	"LovePulse/internal/service/feed"
	pkgch "LovePulse/pkg/clickhouse"
	"LovePulse/pkg/config"
	xhttp "LovePulse/pkg/http"
	pkgkafka "LovePulse/pkg/kafka"
	"LovePulse/pkg/kv"
	applogger "LovePulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	markets    *api.MarketsHandler
	feedWS     *api.FeedHandler
	hub        *feed.Hub
	store      kv.Store
	producer   *pkgkafka.Producer
	chClient   *pkgch.Client
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	markets *api.MarketsHandler,
	feedWS *api.FeedHandler,
	hub *feed.Hub,
	store kv.Store,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:      cfg,
		logger:   l,
		markets:  markets,
		feedWS:   feedWS,
		hub:      hub,
		store:    store,
		producer: producer,
		chClient: chClient,
	}
}

// compositeHandler registers every HTTP surface on the same router.
type compositeHandler struct {
	handlers []xhttp.Handler
}

func (h compositeHandler) RegisterRoutes(e *echo.Echo) {
	for _, sub := range h.handlers {
		sub.RegisterRoutes(e)
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(
		compositeHandler{handlers: []xhttp.Handler{a.markets, a.feedWS}},
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithPathAliases(a.cfg.Server.PathAliases),
		xhttp.WithLogger(a.logger),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops the server and closes infrastructure clients.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	a.hub.Close()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("kv store close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
