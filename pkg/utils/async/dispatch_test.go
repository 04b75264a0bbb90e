package async_test

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/ghtrigger/pkg/utils/async"
	"github.com/m-mizutani/gt"
)

// captureHandler forwards every record, with the attributes bound through
// With, to a channel
type captureHandler struct {
	attrs   []slog.Attr
	records chan slog.Record
}

func newCaptureLogger() (*slog.Logger, chan slog.Record) {
	records := make(chan slog.Record, 8)
	return slog.New(&captureHandler{records: records}), records
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	r = r.Clone()
	r.AddAttrs(h.attrs...)
	h.records <- r
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &captureHandler{attrs: append(slices.Clone(h.attrs), attrs...), records: h.records}
}

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func waitRecord(t *testing.T, records chan slog.Record, msg string) slog.Record {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case r := <-records:
			if r.Message == msg {
				return r
			}
		case <-timeout:
			t.Fatalf("no %q log record", msg)
		}
	}
}

func attrOf(r slog.Record, key string) string {
	var v string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			v = a.Value.String()
			return false
		}
		return true
	})
	return v
}

// bindSentry routes events of the current hub to the returned channel
func bindSentry(t *testing.T) chan *sentry.Event {
	t.Helper()
	events := make(chan *sentry.Event, 1)
	client, err := sentry.NewClient(sentry.ClientOptions{
		SampleRate: 1.0,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			events <- event
			return nil
		},
	})
	gt.NoError(t, err)

	hub := sentry.CurrentHub()
	prev := hub.Client()
	hub.BindClient(client)
	t.Cleanup(func() { hub.BindClient(prev) })
	return events
}

func TestDispatch_HandlerErrorLoggedWithTaskName(t *testing.T) {
	logger, records := newCaptureLogger()
	ctx := ctxlog.With(context.Background(), logger)

	async.Dispatch(ctx, "notify-build", func(ctx context.Context) error {
		return errors.New("slack unreachable")
	})

	r := waitRecord(t, records, "error in async handler")
	gt.Value(t, r.Level).Equal(slog.LevelError)
	gt.Value(t, attrOf(r, "task")).Equal("notify-build")
	gt.String(t, attrOf(r, "error")).Contains("slack unreachable")
}

func TestDispatch_PanicIsLoggedAndReported(t *testing.T) {
	events := bindSentry(t)
	logger, records := newCaptureLogger()
	ctx := ctxlog.With(context.Background(), logger)

	async.Dispatch(ctx, "build-command", func(ctx context.Context) error {
		panic("runner crashed")
	})

	r := waitRecord(t, records, "panic in async handler")
	gt.Value(t, attrOf(r, "task")).Equal("build-command")
	gt.String(t, attrOf(r, "recover")).Contains("runner crashed")
	gt.String(t, attrOf(r, "stack")).Contains("dispatch_test.go")

	select {
	case ev := <-events:
		gt.Value(t, ev.Message).Equal("build-command: runner crashed")
		gt.Value(t, ev.Level).Equal(sentry.LevelFatal)
	case <-time.After(time.Second):
		t.Fatal("panic was not reported to sentry")
	}
}

func TestDispatch_HandlerContextIsDetached(t *testing.T) {
	logger, _ := newCaptureLogger()
	ctx, cancel := context.WithCancel(ctxlog.With(context.Background(), logger))

	release := make(chan struct{})
	type result struct {
		err    error
		logger *slog.Logger
	}
	done := make(chan result, 1)

	async.Dispatch(ctx, "build-command", func(taskCtx context.Context) error {
		<-release
		done <- result{err: taskCtx.Err(), logger: ctxlog.From(taskCtx)}
		return nil
	})

	cancel()
	close(release)

	select {
	case got := <-done:
		gt.NoError(t, got.err)
		gt.True(t, got.logger == logger)
	case <-time.After(time.Second):
		t.Fatal("handler did not finish")
	}
}
