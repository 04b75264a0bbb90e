package async

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
)

// Dispatch runs handler in a new goroutine so that slow side effects (build
// notifications, build commands) do not hold up the poll loop.
//
// The handler gets a background context carrying the caller's logger, so
// cancelling ctx does not abort it. Panics are recovered, logged with a stack
// trace and reported to Sentry; returned errors are logged.
func Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	go func() {
		logger := ctxlog.From(newCtx).With("task", name)
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger.Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
				sentry.CurrentHub().Recover(fmt.Sprintf("%s: %v", name, r))
			}
		}()

		if err := handler(newCtx); err != nil {
			logger.Error("error in async handler", "error", err)
		}
	}()
}

// newBackgroundContext creates a new background context preserving the ctxlog logger
func newBackgroundContext(ctx context.Context) context.Context {
	newCtx := context.Background()
	newCtx = ctxlog.With(newCtx, ctxlog.From(ctx))
	return newCtx
}
