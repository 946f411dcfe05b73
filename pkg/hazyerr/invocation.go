package hazyerr

import (
	"github.com/pkg/errors"
)

const noTargetDetail = "invocation failed without a target error"

// InvocationError is produced when a dynamically invoked target fails. It holds the
// failure raised inside the call.
type InvocationError struct {
	target error
}

// NewInvocationError wraps the failure of an invoked target.
func NewInvocationError(target error) *InvocationError {
	return &InvocationError{target: target}
}

// Target returns the failure raised inside the invoked call.
func (e *InvocationError) Target() error { return e.target }

func (e *InvocationError) Error() string {
	if e.target == nil {
		return noTargetDetail
	}

	return "invocation target failed: " + e.target.Error()
}

func (e *InvocationError) Unwrap() error { return e.target }
func (e *InvocationError) Cause() error  { return e.target }

// Classify returns the error to propagate for a failed invocation attributed to module.
// Fatal and runtime targets are returned unchanged, any other target is wrapped into
// an InternalError. The result is never nil.
func Classify(module string, ie *InvocationError) error {
	if ie == nil || ie.target == nil {
		return New(module, noTargetDetail)
	}

	switch CategoryOf(ie.target) {
	case CategoryFatal, CategoryRuntime:
		return ie.target
	default:
		return Wrap(module, ie.target)
	}
}

// Reclassify runs Classify on the first InvocationError in err's chain.
// Errors without an InvocationError are returned unchanged.
func Reclassify(module string, err error) error {
	if err == nil {
		return nil
	}

	var ie *InvocationError
	if errors.As(err, &ie) {
		return Classify(module, ie)
	}

	return err
}
