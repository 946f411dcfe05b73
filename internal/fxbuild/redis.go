package fxbuild

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/HazyCorp/hazyerr/internal/configuration"
	"github.com/HazyCorp/hazyerr/pkg/common/hzlog"
)

// redisHook logs redis traffic and measures command latency. Commands are logged by
// name only since their arguments carry report payloads.
type redisHook struct {
	l *slog.Logger
}

func commandDuration(name string) *metrics.Histogram {
	return metrics.GetOrCreateHistogram(fmt.Sprintf(`hazyerr_redis_command_duration_seconds{cmd=%q}`, name))
}

func (h *redisHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network string, addr string) (net.Conn, error) {
		l := h.l.With(slog.String("network", network), slog.String("addr", addr))

		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			l.ErrorContext(ctx, "cannot dial redis", hzlog.Error(err))
			return nil, err
		}

		l.InfoContext(ctx, "dialed redis", slog.Duration("elapsed", time.Since(start)))
		return conn, nil
	}
}

func (h *redisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		commandDuration(cmd.Name()).UpdateDuration(start)

		if err != nil && !errors.Is(err, redis.Nil) {
			h.l.ErrorContext(ctx, "redis command failed", slog.String("cmd", cmd.Name()), hzlog.Error(err))
			return err
		}

		h.l.DebugContext(ctx, "redis command finished",
			slog.String("cmd", cmd.Name()),
			slog.Duration("elapsed", time.Since(start)),
		)

		return err
	}
}

func (h *redisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		names := lo.Map(cmds, func(c redis.Cmder, _ int) string { return c.Name() })

		start := time.Now()
		err := next(ctx, cmds)
		commandDuration("pipeline").UpdateDuration(start)

		if err != nil {
			h.l.ErrorContext(ctx, "redis pipeline failed", slog.Any("cmds", names), hzlog.Error(err))
			return err
		}

		h.l.DebugContext(ctx, "redis pipeline finished",
			slog.Any("cmds", names),
			slog.Duration("elapsed", time.Since(start)),
		)

		return nil
	}
}

// NewRedisClient returns nil when redis is not configured.
func NewRedisClient(c configuration.Redis, lc fx.Lifecycle, l *slog.Logger) *redis.Client {
	if !c.Enabled() {
		l.Info("redis is not configured, internal error reports are not stored")
		return nil
	}

	hook := &redisHook{l: l.With(slog.String("component", "infra:redis"))}
	client := redis.NewClient(&redis.Options{
		Addr:     c.Addr(),
		Username: c.Username,
		Password: c.Password,
		DB:       c.DB,
	})
	client.AddHook(hook)

	lc.Append(fx.StartStopHook(
		func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "cannot connect to redis")
			}

			return nil
		},
		func(ctx context.Context) {
			_ = client.Close()
		}))

	return client
}
