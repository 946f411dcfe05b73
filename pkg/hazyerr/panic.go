package hazyerr

import "github.com/pkg/errors"

// FromPanic converts a recovered panic value to an error, recording the stack of the
// recovery. A panic is never part of a declared contract: values without a category
// become runtime errors, while runtime.Error values and tagged errors are returned
// as is.
func FromPanic(r any) error {
	err, ok := r.(error)
	if !ok {
		return Runtime(errors.Errorf("panic: %v", r))
	}

	if CategoryOf(err) == CategoryDeclared {
		return Runtime(errors.WithStack(err))
	}

	return err
}
