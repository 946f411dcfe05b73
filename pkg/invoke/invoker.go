package invoke

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/HazyCorp/hazyerr/pkg/common/hzlog"
	"github.com/HazyCorp/hazyerr/pkg/hazyerr"
)

type Config struct {
	// Concurrency bounds the number of invocations InvokeAll runs at once.
	// Zero or negative means no bound.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
	// Rate throttles all the invocations of the invoker, nil means no throttling.
	Rate *Rate `json:"rate" yaml:"rate"`
}

func DefaultConfig() Config {
	return Config{Concurrency: 8}
}

// Reporter receives the internal errors produced by invocations.
type Reporter interface {
	Report(ctx context.Context, target string, err *hazyerr.InternalError) error
}

type invokerOpts struct {
	l        *slog.Logger
	reporter Reporter
	tracer   trace.Tracer
}

type Option interface {
	apply(o *invokerOpts)
}

type optionFunc func(o *invokerOpts)

func (f optionFunc) apply(o *invokerOpts) {
	f(o)
}

func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(o *invokerOpts) { o.l = l })
}

func WithReporter(r Reporter) Option {
	return optionFunc(func(o *invokerOpts) { o.reporter = r })
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return optionFunc(func(o *invokerOpts) { o.tracer = tp.Tracer("hazyerr/invoke") })
}

// Result describes a single invocation.
type Result struct {
	Target   string        `json:"target"`
	Outputs  []any         `json:"outputs,omitempty"`
	Duration time.Duration `json:"duration"`
	Outcome  Outcome       `json:"outcome"`
}

// Invoker calls registered targets and classifies their failures with
// hazyerr.Classify. It is safe for concurrent use.
type Invoker struct {
	reg      *Registry
	conf     Config
	l        *slog.Logger
	tracer   trace.Tracer
	limiter  *Limiter
	reporter Reporter
}

func New(reg *Registry, conf Config, opts ...Option) *Invoker {
	var o invokerOpts
	for _, opt := range opts {
		opt.apply(&o)
	}

	l := o.l
	if l == nil {
		l = hzlog.NopLogger()
	}

	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("hazyerr/invoke")
	}

	var limiter *Limiter
	if conf.Rate != nil {
		limiter = NewLimiter(*conf.Rate)
	}

	return &Invoker{
		reg:      reg,
		conf:     conf,
		l:        l.With(slog.String("component", "invoker")),
		tracer:   tracer,
		limiter:  limiter,
		reporter: o.reporter,
	}
}

func (i *Invoker) Registry() *Registry {
	return i.reg
}

// Invoke calls the target registered under name. Failures of the target are
// returned classified: fatal and runtime errors unchanged, declared errors wrapped
// into *hazyerr.InternalError attributed to the target's module.
func (i *Invoker) Invoke(ctx context.Context, name string, args ...any) (Result, error) {
	target, err := i.reg.Lookup(name)
	if err != nil {
		return Result{Target: name}, errors.Wrap(err, "cannot invoke")
	}

	if i.limiter != nil {
		if err := i.limiter.Acquire(ctx); err != nil {
			return Result{Target: name}, errors.Wrapf(err, "cannot wait for invocation of %s", name)
		}
	}

	ctx, span := i.tracer.Start(ctx, "invoke.Invoke")
	defer span.End()

	span.SetAttributes(
		attribute.String("target", target.Name),
		attribute.String("module", target.Module),
	)
	ctx = hzlog.ContextWith(ctx, slog.String("target", target.Name))

	start := time.Now()
	outputs, err := Call(ctx, target.Fn, args...)
	duration := time.Since(start)

	err = hazyerr.Reclassify(target.Module, err)
	outcome := OutcomeOf(err)
	observe(target, outcome, start)

	res := Result{
		Target:   target.Name,
		Outputs:  outputs,
		Duration: duration,
		Outcome:  outcome,
	}

	if err == nil {
		i.l.DebugContext(ctx, "target invoked", slog.Duration("duration", duration))
		return res, nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, string(outcome))

	switch outcome {
	case OutcomeInternal:
		i.l.WarnContext(ctx, "internal error occurred while invoking target", hzlog.Error(err))
		i.report(ctx, target.Name, err)
	default:
		i.l.ErrorContext(
			ctx,
			"target failed",
			slog.String("outcome", string(outcome)),
			hzlog.Error(err),
		)
	}

	return res, err
}

func (i *Invoker) report(ctx context.Context, target string, err error) {
	if i.reporter == nil {
		return
	}

	ie, ok := hazyerr.As(err)
	if !ok {
		return
	}

	if rErr := i.reporter.Report(ctx, target, ie); rErr != nil {
		i.l.WarnContext(ctx, "cannot report internal error", hzlog.Error(rErr))
	}
}
