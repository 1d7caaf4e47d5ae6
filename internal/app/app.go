// Package app wires the registry, repository, request handler,
// activity monitor and HTTP surfaces together into one runnable unit.
package app

import (
	"context"
	stdhttp "net/http"

	"github.com/rs/zerolog"

	"wireline/internal/config"
	"wireline/internal/core"
	"wireline/internal/handler"
	"wireline/internal/monitor"
	transporthttp "wireline/internal/transport/http"
)

// App holds every long-lived component the server runs.
type App struct {
	server        *stdhttp.Server
	metricsServer *stdhttp.Server
	monitor       *monitor.Monitor
	cfg           config.Config
	log           zerolog.Logger
}

// New constructs the application with the given configuration.
func New(cfg config.Config, log zerolog.Logger) *App {
	registry := core.NewRegistry(cfg.HistoryLimit)
	repository := core.NewRepository(cfg.HistoryLimit)
	h := handler.New(registry, repository, log)

	m := monitor.New(registry, log, cfg.IdleThreshold)
	m.SweepInterval(cfg.SweepInterval)

	return &App{
		server:        transporthttp.NewServer(registry, h, cfg, log),
		metricsServer: transporthttp.NewMetricsServer(cfg),
		monitor:       m,
		cfg:           cfg,
		log:           log,
	}
}

// Run starts the HTTP server, the metrics server and the activity
// monitor, and blocks until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)
	metricsErr := make(chan error, 1)

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	go a.monitor.Run(monitorCtx)

	go func() {
		a.log.Info().Str("addr", a.cfg.Addr).Msg("listening for connections")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	go func() {
		a.log.Info().Str("addr", a.cfg.MetricsAddr).Msg("serving metrics")
		if err := a.metricsServer.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			metricsErr <- err
			return
		}
		metricsErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.shutdown()
		return err
	case err := <-metricsErr:
		a.shutdown()
		return err
	case <-ctx.Done():
		a.shutdown()
		<-serverErr
		<-metricsErr
		return nil
	}
}

func (a *App) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.log.Info().Msg("shutting down")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("error shutting down http server")
	}
	if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("error shutting down metrics server")
	}
}
