package model

import (
	"strings"
	"time"
)

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePush WebhookEventType = "push"
	EventTypePing WebhookEventType = "ping"
)

// Is compares event types case-insensitively
func (t WebhookEventType) Is(other WebhookEventType) bool {
	return strings.EqualFold(string(t), string(other))
}

// WebhookEvent is the per-request context of a webhook delivery. It lives for
// one request and is never persisted.
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Signature  string           // Raw X-Hub-Signature header value
	Signed     bool             // X-Hub-Signature header was present
	Digest     string           // Body digest computed by middleware
	HasDigest  bool             // Digest was computed
	ReceivedAt time.Time        // Time when the event was received
	RawPayload []byte           // Raw JSON payload
}

// IsSupportedEvent checks if the event is supported
func (e *WebhookEvent) IsSupportedEvent() bool {
	return e.Type.Is(EventTypePush) || e.Type.Is(EventTypePing)
}

// PushInfo is the part of a push payload the trigger needs
type PushInfo struct {
	PushedBy string // pusher.name
	Ref      string // e.g. refs/heads/main
}

// Branch returns the final segment of the ref
func (p *PushInfo) Branch() string {
	if i := strings.LastIndex(p.Ref, "/"); i >= 0 {
		return p.Ref[i+1:]
	}
	return p.Ref
}

// PingInfo is the part of a ping payload the trigger logs
type PingInfo struct {
	Zen string
}
