package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/lecturebot/core/logger"
)

// Server exposes /metrics for scraping.
type Server struct {
	srv *http.Server
}

// NewServer returns nil when addr is empty.
func NewServer(addr string) *Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start serves in the background.
func (s *Server) Start() {
	if s == nil {
		return
	}
	go func() {
		logger.Info(context.Background(), logger.CompMetrics, "metrics.listen", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), logger.CompMetrics, "metrics.serve", logger.Err(err))
		}
	}()
}

// Shutdown stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
