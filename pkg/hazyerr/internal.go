package hazyerr

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// InternalError represents an unexpected failure attributable to a named module:
// something low-level broke that the business logic didn't anticipate.
//
// The zero value is a valid InternalError with an empty message. InternalError is
// immutable, so it is safe to share between goroutines.
type InternalError struct {
	module string
	detail string
	cause  error
}

var (
	_ error       = (*InternalError)(nil)
	_ Categorizer = (*InternalError)(nil)
)

// New returns an InternalError of module with a detail message.
func New(module, detail string) *InternalError {
	return &InternalError{module: module, detail: detail}
}

// Newf is New with a formatted detail.
func Newf(module, format string, args ...any) *InternalError {
	return New(module, fmt.Sprintf(format, args...))
}

// NewModule returns an InternalError carrying only the module label.
func NewModule(module string) *InternalError {
	return &InternalError{module: module}
}

// Wrap returns an InternalError of module wrapping cause.
func Wrap(module string, cause error) *InternalError {
	return &InternalError{module: module, cause: cause}
}

// Wrapf is WrapDetail with a formatted detail.
func Wrapf(module string, cause error, format string, args ...any) *InternalError {
	return WrapDetail(module, fmt.Sprintf(format, args...), cause)
}

// WrapDetail returns an InternalError of module with a detail message wrapping cause.
func WrapDetail(module, detail string, cause error) *InternalError {
	return &InternalError{module: module, detail: detail, cause: cause}
}

// FromCause returns an InternalError without a module, its message is the one of cause.
func FromCause(cause error) *InternalError {
	return &InternalError{cause: cause}
}

// Module returns the label of the subsystem which raised the error.
func (e *InternalError) Module() string { return e.module }

// Detail returns the detail message, empty if none was provided.
func (e *InternalError) Detail() string { return e.detail }

// Cause returns the wrapped error, nil if there is none.
func (e *InternalError) Cause() error { return e.cause }

// Unwrap implements errors.Unwrap.
func (e *InternalError) Unwrap() error { return e.cause }

// Category implements Categorizer. An InternalError is already classified, so it is
// never wrapped a second time.
func (e *InternalError) Category() Category { return CategoryRuntime }

// Error composes "module:detail", falling back to whichever of them is set,
// and to the cause's message when both are empty.
func (e *InternalError) Error() string {
	switch {
	case e.module != "" && e.detail != "":
		return e.module + ":" + e.detail
	case e.module != "":
		return e.module
	case e.detail != "":
		return e.detail
	case e.cause != nil:
		return e.cause.Error()
	default:
		return ""
	}
}

// Format prints the cause with %+v, keeping stack traces recorded by pkg/errors.
func (e *InternalError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			switch {
			case e.cause == nil:
				io.WriteString(s, e.Error())
			case e.module == "" && e.detail == "":
				fmt.Fprintf(s, "%+v", e.cause)
			default:
				fmt.Fprintf(s, "%s\ncaused by: %+v", e.Error(), e.cause)
			}
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// As finds the first InternalError in err's chain.
func As(err error) (*InternalError, bool) {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie, true
	}

	return nil, false
}

// IsInternal reports whether err's chain contains an InternalError.
func IsInternal(err error) bool {
	_, ok := As(err)
	return ok
}
