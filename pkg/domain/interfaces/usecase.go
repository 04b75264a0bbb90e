package interfaces

import (
	"context"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
)

// WebhookUseCase handles decoded webhook events
type WebhookUseCase interface {
	// ProcessPush matches the pushed branch and records a pending build
	ProcessPush(ctx context.Context, push *model.PushInfo) error

	// ProcessPing acknowledges a liveness notification
	ProcessPing(ctx context.Context, ping *model.PingInfo) error
}

// EventProcessor routes a validated and authorized webhook event by type
type EventProcessor interface {
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// Listener binds the webhook endpoint and serves requests in the background
type Listener interface {
	Serve(ctx context.Context, endpoint *model.Endpoint, uc WebhookUseCase) error
}

// BuildNotifier announces build requests picked up by the poll loop
type BuildNotifier interface {
	NotifyBuild(ctx context.Context, req *model.BuildRequest) error
}
