package hazyerr

import (
	"fmt"
	"io"
	"runtime"

	"github.com/pkg/errors"
)

// Category tells how an error must be treated when it crosses an invocation boundary.
type Category int

const (
	// CategoryDeclared errors are reported through the callee's error result.
	// They are unexpected for the caller of a dynamic invocation and get wrapped.
	CategoryDeclared Category = iota
	// CategoryRuntime errors are program-logic failures nobody declared in advance
	// (invalid arguments, nil dereference). They are propagated unchanged.
	CategoryRuntime
	// CategoryFatal errors are conditions the process cannot recover from.
	CategoryFatal
)

func (c Category) String() string {
	switch c {
	case CategoryDeclared:
		return "declared"
	case CategoryRuntime:
		return "runtime"
	case CategoryFatal:
		return "fatal"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Categorizer is implemented by errors which know their own category.
type Categorizer interface {
	Category() Category
}

// CategoryOf returns the category of the first error in err's chain implementing
// Categorizer. Errors implementing runtime.Error are runtime errors, everything
// else is declared.
func CategoryOf(err error) Category {
	if err == nil {
		return CategoryDeclared
	}

	var c Categorizer
	if errors.As(err, &c) {
		return c.Category()
	}

	var re runtime.Error
	if errors.As(err, &re) {
		return CategoryRuntime
	}

	return CategoryDeclared
}

// Fatal tags err as an unrecoverable failure. Returns nil if err is nil.
func Fatal(err error) error {
	return tag(err, CategoryFatal)
}

// Fatalf returns a fatal error with a formatted message and a stack trace.
func Fatalf(format string, args ...any) error {
	return Fatal(errors.Errorf(format, args...))
}

// Runtime tags err as a runtime-expected failure. Returns nil if err is nil.
func Runtime(err error) error {
	return tag(err, CategoryRuntime)
}

// Runtimef returns a runtime error with a formatted message and a stack trace.
func Runtimef(format string, args ...any) error {
	return Runtime(errors.Errorf(format, args...))
}

func tag(err error, c Category) error {
	if err == nil {
		return nil
	}

	return &categorized{err: err, category: c}
}

type categorized struct {
	err      error
	category Category
}

func (c *categorized) Error() string      { return c.err.Error() }
func (c *categorized) Category() Category { return c.category }
func (c *categorized) Unwrap() error      { return c.err }
func (c *categorized) Cause() error       { return c.err }

func (c *categorized) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%+v", c.err)
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, c.Error())
	case 'q':
		fmt.Fprintf(s, "%q", c.Error())
	}
}
