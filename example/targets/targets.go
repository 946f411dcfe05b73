// Package targets registers sample targets in invoke.DefaultRegistry. Import it for
// side effects.
package targets

import (
	"context"
	"io/fs"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/HazyCorp/hazyerr/pkg/hazyerr"
	"github.com/HazyCorp/hazyerr/pkg/invoke"
)

func init() {
	invoke.Register("fs.read", ReadFile)
	invoke.Register("fs.size", FileSize)
	invoke.Register("math.div", Div)
	invoke.Register("sys.halt", Halt)
	invoke.Register("sys.sleep", Sleep)
	invoke.Register("db.query", Query)
}

// ReadFile fails with a declared error when the file can't be read.
func ReadFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "cannot read %s", path)
	}

	return string(data), nil
}

func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, errors.Wrapf(fs.ErrInvalid, "%s is a directory", path)
	}

	return info.Size(), nil
}

// Div panics with a runtime error when b is zero.
func Div(a, b int) int {
	return a / b
}

// Halt always fails with a fatal error.
func Halt(reason string) error {
	return hazyerr.Fatalf("halted: %s", reason)
}

func Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Query reports its own internal error, which is propagated unchanged.
func Query(query string) ([]string, error) {
	if query == "" {
		return nil, hazyerr.New("db", "empty query")
	}

	return nil, hazyerr.WrapDetail("db", "query failed", errors.New("connection refused"))
}
