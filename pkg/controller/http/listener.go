package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/m-mizutani/ctxlog"
	githubcontroller "github.com/m-mizutani/ghtrigger/pkg/controller/github"
	"github.com/m-mizutani/ghtrigger/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// Listener binds the webhook endpoint and serves it in a background goroutine
type Listener struct {
	secret string

	mu     sync.Mutex
	server *Server
	addr   net.Addr
	done   chan struct{}
}

// NewListener creates a Listener verifying signatures with secret
func NewListener(secret string) *Listener {
	return &Listener{secret: secret}
}

// Serve binds endpoint synchronously so that address errors surface to the
// caller, then accepts requests in the background.
func (l *Listener) Serve(ctx context.Context, endpoint *model.Endpoint, uc interfaces.WebhookUseCase) error {
	logger := ctxlog.From(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.server != nil {
		return goerr.New("listener already serving", goerr.V("addr", l.addr))
	}

	logger.Debug("Configuring webhook server", "endpoint", endpoint.Raw)
	server, err := NewServer(
		ctx,
		githubcontroller.NewEventProcessor(uc),
		WithAddr(endpoint.Addr),
		WithWebhookPath(endpoint.Path),
		WithWebhookSecret(l.secret),
		WithEndpoint(endpoint.Raw),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create HTTP server")
	}

	ln, err := net.Listen("tcp", endpoint.Addr)
	if err != nil {
		return goerr.Wrap(err, "failed to bind webhook endpoint", goerr.V("addr", endpoint.Addr))
	}

	l.server = server
	l.addr = ln.Addr()
	l.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		logger.Info("HTTP server starting", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}(l.done)

	return nil
}

// Addr returns the bound address, or nil before Serve
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addr
}

// Shutdown gracefully stops the server if it was started
func (l *Listener) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	server, done := l.server, l.done
	l.mu.Unlock()

	if server == nil {
		return nil
	}
	if err := server.Shutdown(ctx); err != nil {
		return goerr.Wrap(err, "failed to shutdown server gracefully")
	}
	<-done
	return nil
}
