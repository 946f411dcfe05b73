package metricsrv

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"github.com/HazyCorp/hazyerr/pkg/common/hzlog"
)

type Config struct {
	Port uint64 `json:"port" yaml:"port"`
}

type Server struct {
	srv *http.Server
	l   *slog.Logger
}

// NewRouter serves the process metrics in prometheus text format on /metrics.
func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(hzlog.RequestIDMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	return r
}

func New(l *slog.Logger, conf Config) *Server {
	return &Server{
		l: l.With(slog.String("component", "infra:metrics_server")),
		srv: &http.Server{
			Addr:    fmt.Sprintf("0.0.0.0:%d", conf.Port),
			Handler: NewRouter(),
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return errors.Wrapf(err, "cannot listen on %s", s.srv.Addr)
	}

	s.l.InfoContext(ctx, "metrics server is listening", slog.String("addr", s.srv.Addr+"/metrics"))

	go func() {
		if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Error("metrics server stopped", hzlog.Error(err))
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func NewFX(l *slog.Logger, conf Config, lc fx.Lifecycle) *Server {
	s := New(l, conf)
	lc.Append(fx.StartStopHook(s.Start, s.Stop))

	return s
}
