package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/ghtrigger/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/ghtrigger/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Webhook request headers
const (
	HeaderEvent     = "X-GitHub-Event"
	HeaderDelivery  = "X-GitHub-Delivery"
	HeaderSignature = "X-Hub-Signature"
)

var requiredHeaders = []string{HeaderEvent, HeaderDelivery}

// WebhookHandler handles GitHub webhooks
type WebhookHandler struct {
	secret    string
	processor interfaces.EventProcessor
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secret string, processor interfaces.EventProcessor) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		processor: processor,
	}
}

// Handle processes webhook requests. It expects BodyDigestMiddleware to have
// run before it.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	event, err := parseHeaders(r.Header)
	if err != nil {
		logger.Warn("Missing required webhook headers", "error", err)
		writeError(w, err, http.StatusUnprocessableEntity)
		return
	}
	event.Digest, event.HasDigest = digestFrom(ctx)

	if err := h.authorize(r, event); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	// Body was buffered by the digest middleware; this reads the same bytes.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	event.RawPayload = body

	logger.Info("Payload received",
		"event", event.Type,
		"delivery_id", event.ID,
		"signature", event.Signature,
	)
	logger.Debug("Payload body", "payload", string(body))

	if err := h.processor.ProcessEvent(ctx, event); err != nil {
		switch {
		case goerr.HasTag(err, types.ErrTagUnsupportedEvent):
			writeError(w, err, http.StatusNotFound)
		default:
			logger.Error("Failed to process webhook event", "error", err, "delivery_id", event.ID)
			reportError(r, err)
			writeError(w, goerr.New("internal server error"), http.StatusInternalServerError)
		}
		return
	}

	// Success response
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
	}); err != nil {
		logger.Error("Failed to encode success response", "error", err)
	}
}

// authorize verifies the signature when the sender supplied one. Unsigned
// requests pass through.
func (h *WebhookHandler) authorize(r *http.Request, event *model.WebhookEvent) error {
	if !event.Signed {
		return nil
	}
	logger := ctxlog.From(r.Context())

	err := VerifySignature(h.secret, event.Signature, event.Digest, event.HasDigest)
	if err == nil {
		return nil
	}

	if goerr.HasTag(err, types.ErrTagDigestMissing) {
		logger.Error("Signed request reached authorization without a body digest",
			"error", err,
			"delivery_id", event.ID,
		)
		reportError(r, err)
	} else {
		logger.Warn("Webhook authorization failed",
			"error", err,
			"delivery_id", event.ID,
			"remote_addr", r.RemoteAddr,
		)
	}
	return err
}

// parseHeaders reads the webhook headers. All missing required headers are
// reported in one error.
func parseHeaders(header http.Header) (*model.WebhookEvent, error) {
	var missing []string
	values := make(map[string]string, len(requiredHeaders))
	for _, key := range requiredHeaders {
		v, _ := lookupHeader(header, key)
		if strings.TrimSpace(v) == "" {
			missing = append(missing, key)
			continue
		}
		values[key] = v
	}

	if len(missing) > 0 {
		return nil, goerr.New("missing required headers: "+strings.Join(missing, ", "),
			goerr.V("missing", missing),
			goerr.T(types.ErrTagMissingParameter),
		)
	}

	signature, signed := lookupHeader(header, HeaderSignature)
	return &model.WebhookEvent{
		ID:         values[HeaderDelivery],
		Type:       model.WebhookEventType(values[HeaderEvent]),
		Signature:  signature,
		Signed:     signed,
		ReceivedAt: time.Now(),
	}, nil
}

// lookupHeader returns the first value of key and whether the header was sent at all
func lookupHeader(header http.Header, key string) (string, bool) {
	values, ok := header[textproto.CanonicalMIMEHeaderKey(key)]
	if !ok {
		return "", false
	}
	if len(values) == 0 {
		return "", true
	}
	return values[0], true
}

// reportError forwards an unexpected error to Sentry. It is a no-op when
// Sentry is not initialized.
func reportError(r *http.Request, err error) {
	hub := sentry.GetHubFromContext(r.Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
