package invoke

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/HazyCorp/hazyerr/pkg/hazyerr"
)

// Outcome is the result class of an invocation.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeFatal    Outcome = "fatal"
	OutcomeRuntime  Outcome = "runtime"
	OutcomeInternal Outcome = "internal"
)

// OutcomeOf returns the outcome of an already classified invocation error.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case hazyerr.CategoryOf(err) == hazyerr.CategoryFatal:
		return OutcomeFatal
	case hazyerr.IsInternal(err):
		return OutcomeInternal
	default:
		return OutcomeRuntime
	}
}

func invocationsTotalName(target, module string, outcome Outcome) string {
	return fmt.Sprintf(
		`hazyerr_invocations_total{target=%q,module=%q,outcome=%q}`,
		target,
		module,
		string(outcome),
	)
}

func invocationDurationName(target, module string, outcome Outcome) string {
	return fmt.Sprintf(
		`hazyerr_invocation_duration_seconds{target=%q,module=%q,outcome=%q}`,
		target,
		module,
		string(outcome),
	)
}

// observe is safe to call concurrently, metrics are created on the first use.
func observe(target Target, outcome Outcome, start time.Time) {
	metrics.GetOrCreateCounter(invocationsTotalName(target.Name, target.Module, outcome)).Inc()
	metrics.GetOrCreateHistogram(invocationDurationName(target.Name, target.Module, outcome)).UpdateDuration(start)
}
