package util

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// CtxWithShutdown returns a context cancelled on SIGINT or SIGTERM.
func CtxWithShutdown() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
