package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Spok95/spa-clinic/internal/infra/metrics"
)

type Server struct {
	srv *http.Server
}

// NewEngine — gin с request id, журналом запросов, /health и (по флагу) /metrics.
// Маршруты API вешает вызывающий.
func NewEngine(log *slog.Logger, m *metrics.Metrics, exposeMetrics bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(log, m))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	if exposeMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	return r
}

func New(addr string, h http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
