package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ghtrigger/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	webhookPath   string
	webhookSecret string
	endpoint      string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookPath sets the path prefix under which webhooks are accepted
func WithWebhookPath(path string) Option {
	return func(c *config) {
		c.webhookPath = path
	}
}

// WithWebhookSecret sets the webhook secret
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithEndpoint sets the configured endpoint reported by the health check
func WithEndpoint(endpoint string) Option {
	return func(c *config) {
		c.endpoint = endpoint
	}
}

const healthPath = "/health"

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	processor interfaces.EventProcessor,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr:        ":31574",
		webhookPath: "/",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get(healthPath, handleHealth(cfg.endpoint))

	// Webhook endpoint; any path below the prefix is accepted
	webhookHandler := NewWebhookHandler(cfg.webhookSecret, processor)
	webhook := router.With(BodyDigestMiddleware(cfg.webhookSecret))
	webhook.Post(cfg.webhookPath+"*", webhookHandler.Handle)

	// The health route node would answer POSTs with 405, so hand them to the
	// webhook when the prefix covers it.
	if strings.HasPrefix(healthPath, cfg.webhookPath) {
		webhook.Post(healthPath, webhookHandler.Handle)
	}

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
