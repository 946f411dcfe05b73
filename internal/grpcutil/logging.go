package grpcutil

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"

	"github.com/HazyCorp/hazyerr/pkg/common/hzlog"
)

func LoggingUnaryInterceptor(l *slog.Logger) grpc.UnaryServerInterceptor {
	l = l.With(slog.String("component", "infra:grpc"))

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		ctx = hzlog.ContextWith(ctx, slog.String("method", info.FullMethod))

		r, err := handler(ctx, req)
		if err != nil {
			l.ErrorContext(
				ctx,
				"error occurred while trying to handle request",
				hzlog.Error(err),
				slog.Duration("duration", time.Since(start)),
			)

			return r, err
		}

		l.InfoContext(ctx, "successfully handled request", slog.Duration("duration", time.Since(start)))

		return r, nil
	}
}
