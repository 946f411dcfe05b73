package invoke

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/HazyCorp/hazyerr/pkg/hazyerr"
)

type recordingReporter struct {
	mu      sync.Mutex
	targets []string
	errs    []*hazyerr.InternalError
	fail    bool
}

func (r *recordingReporter) Report(ctx context.Context, target string, err *hazyerr.InternalError) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.targets = append(r.targets, target)
	r.errs = append(r.errs, err)
	if r.fail {
		return errors.New("report storage is down")
	}

	return nil
}

func newTestInvoker(t *testing.T, conf Config, opts ...Option) *Invoker {
	t.Helper()

	r := NewRegistry()
	r.MustRegister("fs.write", func(ctx context.Context, path string) error {
		return errors.New("disk full")
	})
	r.MustRegister("fs.stat", func(path string) (int64, error) {
		return int64(len(path)), nil
	})
	r.MustRegister("math.div", func(a, b int) int {
		return a / b
	})
	r.MustRegister("sys.alloc", func() error {
		return hazyerr.Fatalf("cannot allocate memory")
	})
	r.MustRegister("db.query", func() error {
		return hazyerr.New("db", "connection refused")
	})

	return New(r, conf, opts...)
}

func counterValue(target, module string, outcome Outcome) uint64 {
	return metrics.GetOrCreateCounter(invocationsTotalName(target, module, outcome)).Get()
}

func TestInvoker_DeclaredErrorIsWrapped(t *testing.T) {
	rep := &recordingReporter{}
	inv := newTestInvoker(t, DefaultConfig(), WithReporter(rep))
	before := counterValue("fs.write", "fs", OutcomeInternal)

	res, err := inv.Invoke(context.Background(), "fs.write", "/var/lib/data")
	require.Error(t, err)

	ie, ok := err.(*hazyerr.InternalError)
	require.True(t, ok)
	require.Equal(t, "fs", ie.Module())
	require.Equal(t, "fs", ie.Error())
	require.Equal(t, "disk full", ie.Cause().Error())

	require.Equal(t, OutcomeInternal, res.Outcome)
	require.Equal(t, "fs.write", res.Target)
	require.Equal(t, before+1, counterValue("fs.write", "fs", OutcomeInternal))

	require.Equal(t, []string{"fs.write"}, rep.targets)
	require.Same(t, ie, rep.errs[0])
}

func TestInvoker_Success(t *testing.T) {
	inv := newTestInvoker(t, DefaultConfig())
	before := counterValue("fs.stat", "fs", OutcomeOK)

	res, err := inv.Invoke(context.Background(), "fs.stat", "/etc")
	require.NoError(t, err)
	require.Equal(t, []any{int64(4)}, res.Outputs)
	require.Equal(t, OutcomeOK, res.Outcome)
	require.Equal(t, before+1, counterValue("fs.stat", "fs", OutcomeOK))
}

func TestInvoker_RuntimeErrorIsPropagated(t *testing.T) {
	rep := &recordingReporter{}
	inv := newTestInvoker(t, DefaultConfig(), WithReporter(rep))

	res, err := inv.Invoke(context.Background(), "math.div", 1, 0)
	require.Error(t, err)
	require.False(t, hazyerr.IsInternal(err))
	require.Equal(t, hazyerr.CategoryRuntime, hazyerr.CategoryOf(err))
	require.Equal(t, OutcomeRuntime, res.Outcome)
	require.Empty(t, rep.targets)
}

func TestInvoker_FatalErrorIsPropagated(t *testing.T) {
	inv := newTestInvoker(t, DefaultConfig())

	res, err := inv.Invoke(context.Background(), "sys.alloc")
	require.Error(t, err)
	require.False(t, hazyerr.IsInternal(err))
	require.Equal(t, hazyerr.CategoryFatal, hazyerr.CategoryOf(err))
	require.Equal(t, OutcomeFatal, res.Outcome)
}

func TestInvoker_InternalFromTargetIsKept(t *testing.T) {
	rep := &recordingReporter{fail: true}
	inv := newTestInvoker(t, DefaultConfig(), WithReporter(rep))

	res, err := inv.Invoke(context.Background(), "db.query")
	require.Error(t, err)

	ie, ok := hazyerr.As(err)
	require.True(t, ok)
	require.Equal(t, "db:connection refused", ie.Error())
	require.Equal(t, OutcomeInternal, res.Outcome)
	require.Len(t, rep.targets, 1)
}

func TestInvoker_NotRegistered(t *testing.T) {
	inv := newTestInvoker(t, DefaultConfig())

	_, err := inv.Invoke(context.Background(), "fs.remove")
	require.ErrorIs(t, err, hazyerr.ErrNotFound)
}

func TestInvoker_Misuse(t *testing.T) {
	inv := newTestInvoker(t, DefaultConfig())

	res, err := inv.Invoke(context.Background(), "fs.stat", 42)
	require.Error(t, err)
	require.Equal(t, OutcomeRuntime, res.Outcome)
}

func TestInvoker_RateBlocks(t *testing.T) {
	inv := newTestInvoker(t, Config{Rate: &Rate{Times: 0, Per: time.Second}})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := inv.Invoke(ctx, "fs.stat", "/etc")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOutcomeOf(t *testing.T) {
	require.Equal(t, OutcomeOK, OutcomeOf(nil))
	require.Equal(t, OutcomeFatal, OutcomeOf(hazyerr.Fatalf("oom")))
	require.Equal(t, OutcomeFatal, OutcomeOf(hazyerr.Fatal(hazyerr.NewModule("db"))))
	require.Equal(t, OutcomeInternal, OutcomeOf(hazyerr.NewModule("db")))
	require.Equal(t, OutcomeRuntime, OutcomeOf(hazyerr.Runtimef("bad argument")))
}
