package fxbuild

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/HazyCorp/hazyerr/internal/configuration"
	"github.com/HazyCorp/hazyerr/internal/grpcutil"
	"github.com/HazyCorp/hazyerr/internal/invokeserver"
	"github.com/HazyCorp/hazyerr/internal/metricsrv"
	"github.com/HazyCorp/hazyerr/internal/reportstore"
	"github.com/HazyCorp/hazyerr/pkg/common/hzlog"
	"github.com/HazyCorp/hazyerr/pkg/invoke"
)

func NewLogger(c hzlog.Config) (*slog.Logger, error) {
	l, err := hzlog.Build(c)
	if err != nil {
		return nil, errors.Wrap(err, "cannot build logger")
	}

	slog.SetDefault(l)
	return l, nil
}

func NewTracerProvider(lc fx.Lifecycle) trace.TracerProvider {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	lc.Append(fx.StopHook(tp.Shutdown))

	return tp
}

func NewGRPCServer(l *slog.Logger, c configuration.Serve, lc fx.Lifecycle) *grpc.Server {
	l = l.With(slog.String("component", "infra:grpc_server"))
	listen := fmt.Sprintf("0.0.0.0:%d", c.Port)

	grpcSrv := grpc.NewServer(grpcutil.UnaryInterceptors(l))

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	lc.Append(fx.StartStopHook(
		func(ctx context.Context) error {
			lis, err := net.Listen("tcp", listen)
			if err != nil {
				return errors.Wrapf(err, "cannot listen on %s", listen)
			}

			l.InfoContext(ctx, "grpc server is listening", slog.String("addr", listen))
			go func() {
				if err := grpcSrv.Serve(lis); err != nil {
					l.Error("grpc server stopped", hzlog.Error(err))
				}
			}()

			return nil
		},
		func() {
			healthSrv.Shutdown()
			grpcSrv.GracefulStop()
		},
	))

	return grpcSrv
}

// NewReportStore returns nil when redis is not configured.
func NewReportStore(r *redis.Client, c reportstore.Config, l *slog.Logger) (*reportstore.Store, error) {
	if r == nil {
		return nil, nil
	}

	return reportstore.New(r, c, l)
}

type invokerIn struct {
	fx.In

	Registry *invoke.Registry
	Config   invoke.Config
	Logger   *slog.Logger
	Tracer   trace.TracerProvider
	Reports  *reportstore.Store
}

func NewInvoker(in invokerIn) *invoke.Invoker {
	opts := []invoke.Option{
		invoke.WithLogger(in.Logger),
		invoke.WithTracerProvider(in.Tracer),
	}
	if in.Reports != nil {
		opts = append(opts, invoke.WithReporter(in.Reports))
	}

	return invoke.New(in.Registry, in.Config, opts...)
}

func NewRegistry() *invoke.Registry {
	return invoke.DefaultRegistry
}

// GetConstructors returns the constructors of the application reading its config
// from configPath.
func GetConstructors(configPath string) []any {
	return []any{
		func() (configuration.Config, error) {
			return configuration.Read(configPath)
		},
		NewLogger,
		NewTracerProvider,
		NewRedisClient,
		NewReportStore,
		NewRegistry,
		NewInvoker,
		NewGRPCServer,
		invokeserver.NewFX,
		metricsrv.NewFX,
	}
}

// WithLogger routes fx events to the application logger, or drops them when verbose
// is false.
func WithLogger(verbose bool) fx.Option {
	if !verbose {
		return fx.WithLogger(func() fxevent.Logger {
			return &fxevent.NopLogger
		})
	}

	return fx.WithLogger(func(l *slog.Logger) fxevent.Logger {
		return &fxevent.SlogLogger{Logger: l.With(slog.String("component", "infra:fx"))}
	})
}
