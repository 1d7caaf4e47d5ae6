// Package http wires the server's two HTTP surfaces together: the
// WebSocket upgrade route clients actually talk to, and the ambient
// health/metrics routes operators poll.
package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"wireline/internal/config"
	"wireline/internal/core"
	"wireline/internal/handler"
)

// NewServer builds the *http.Server hosting the upgrade route plus
// /healthz. Prometheus metrics are served separately on cfg.MetricsAddr
// (see NewMetricsServer) so a slow scrape can never block the chat path.
func NewServer(registry *core.Registry, h *handler.Handler, cfg config.Config, log zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/", NewWSHandler(registry, h, log))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewMetricsServer builds the standalone Prometheus scrape endpoint.
func NewMetricsServer(cfg config.Config) *stdhttp.Server {
	mux := stdhttp.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &stdhttp.Server{Addr: cfg.MetricsAddr, Handler: mux}
}
