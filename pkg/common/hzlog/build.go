package hzlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/go-slog/otelslog"
	"github.com/pkg/errors"
	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const infraPrefix = "infra:"

type hzlogHandler struct {
	c                 Config
	hasInfraComponent bool
	slog.Handler
}

func newHzlogHandler(c Config, h slog.Handler) *hzlogHandler {
	return &hzlogHandler{c: c, Handler: h, hasInfraComponent: false}
}

func getComponent(attrs []slog.Attr) (string, bool) {
	for _, attr := range attrs {
		if attr.Key == "component" {
			if attr.Value.Kind() != slog.KindString {
				return "", true
			}

			return attr.Value.String(), true
		}
	}

	return "", false
}

func isInfraComponentAttr(attr slog.Attr) bool {
	if attr.Value.Kind() != slog.KindString {
		return false
	}

	return attr.Key == "component" && strings.HasPrefix(attr.Value.String(), infraPrefix)
}

// Handle adds context values to the record and filters infra logs.
func (h *hzlogHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := getAttrs(ctx)

	isInfraLog := h.hasInfraComponent
	r.Attrs(func(attr slog.Attr) bool {
		if isInfraComponentAttr(attr) {
			isInfraLog = true
			return false
		}

		return true
	})

	if slices.ContainsFunc(attrs, isInfraComponentAttr) {
		isInfraLog = true
	}

	if isInfraLog {
		if !h.c.Filter.Infra.Enabled {
			return nil
		}

		if r.Level < h.c.Filter.Infra.level {
			return nil
		}
	}

	r.AddAttrs(attrs...)
	return h.Handler.Handle(ctx, r)
}

func (h *hzlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nextHandler := h.Handler.WithAttrs(attrs)

	component, componentFound := getComponent(attrs)
	if !componentFound {
		return &hzlogHandler{Handler: nextHandler, c: h.c, hasInfraComponent: h.hasInfraComponent}
	}

	// new component overrides the old one
	newIsInfra := strings.HasPrefix(component, infraPrefix)
	return &hzlogHandler{Handler: nextHandler, c: h.c, hasInfraComponent: newIsInfra}
}

func (h *hzlogHandler) WithGroup(name string) slog.Handler {
	return &hzlogHandler{Handler: h.Handler.WithGroup(name), c: h.c, hasInfraComponent: h.hasInfraComponent}
}

var nopHandler = slog.NewTextHandler(io.Discard, nil)

func NopLogger() *slog.Logger {
	return slog.New(nopHandler)
}

func MustBuild(c Config) *slog.Logger {
	logger, err := Build(c)
	if err != nil {
		panic("cannot build logger: " + err.Error())
	}

	return logger
}

// Build returns a slog logger writing through zap to stdout.
func Build(c Config) (*slog.Logger, error) {
	return build(c, nil)
}

func build(c Config, out zapcore.WriteSyncer) (*slog.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse level")
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	if c.Mode == "" {
		c.Mode = "json"
	}

	var encoder zapcore.Encoder
	switch c.Mode {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, errors.Errorf("cannot build zap logger, unknown encoding %s, allowed options are only [console, json]", c.Mode)
	}

	if out == nil {
		out = zapcore.Lock(zapcore.AddSync(os.Stdout))
	}
	zapLogger := zap.New(zapcore.NewCore(encoder, out, zap.NewAtomicLevelAt(lvl)))

	slogLvl := zapLevelToSlogLevel(lvl)
	base := slogzap.Option{Level: slogLvl, Logger: zapLogger}.NewZapHandler()

	infraLevel := c.Filter.Infra.Level
	if infraLevel == "" {
		infraLevel = c.Level
	}
	infraLogLevel, err := zapcore.ParseLevel(infraLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse infra.level %s", infraLevel)
	}
	c.Filter.Infra.level = zapLevelToSlogLevel(infraLogLevel)

	ctxHandler := newHzlogHandler(c, base)
	otelHandler := otelslog.NewHandler(ctxHandler)

	return slog.New(otelHandler), nil
}

func zapLevelToSlogLevel(lvl zapcore.Level) slog.Level {
	zapLvlToSlogLvl := reverseMap(slogzap.LogLevels)
	if slogLvl, found := zapLvlToSlogLvl[lvl]; found {
		return slogLvl
	}

	panic(fmt.Sprintf("unknown zap level %s provided, cannot be mapped to slog level", lvl))
}

func reverseMap[TKey comparable, TValue comparable](mp map[TKey]TValue) map[TValue]TKey {
	ret := make(map[TValue]TKey, len(mp))
	for k, v := range mp {
		ret[v] = k
	}

	return ret
}
