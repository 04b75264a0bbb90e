package github

import (
	"context"
	"encoding/json"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/ghtrigger/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/ghtrigger/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// EventProcessor dispatches GitHub webhook events by type
type EventProcessor struct {
	webhookUC interfaces.WebhookUseCase
}

// NewEventProcessor creates a new GitHub event processor
func NewEventProcessor(webhookUC interfaces.WebhookUseCase) *EventProcessor {
	return &EventProcessor{
		webhookUC: webhookUC,
	}
}

// ProcessEvent processes a GitHub webhook event. The event must already be
// validated and authorized. Errors raised while handling a supported event
// are logged and returned unchanged.
func (p *EventProcessor) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	if !event.IsSupportedEvent() {
		logger.Warn("Event not supported", "event_type", event.Type, "delivery_id", event.ID)
		return goerr.New("event not supported: "+string(event.Type),
			goerr.V("event_type", event.Type),
			goerr.V("delivery_id", event.ID),
			goerr.T(types.ErrTagUnsupportedEvent),
		)
	}

	var err error
	if event.Type.Is(model.EventTypePush) {
		err = p.processPushEvent(ctx, event.RawPayload)
	} else {
		err = p.processPingEvent(ctx, event.RawPayload)
	}

	if err != nil {
		logger.Error("Failed to handle webhook event",
			"error", err,
			"event_type", event.Type,
			"delivery_id", event.ID,
		)
		return err
	}
	return nil
}

// processPushEvent decodes a push payload and hands it to the use case
func (p *EventProcessor) processPushEvent(ctx context.Context, payload []byte) error {
	push, err := decodePush(payload)
	if err != nil {
		return err
	}
	return p.webhookUC.ProcessPush(ctx, push)
}

// processPingEvent decodes a ping payload. The zen field is optional and an
// undecodable body only drops it.
func (p *EventProcessor) processPingEvent(ctx context.Context, payload []byte) error {
	ping := &model.PingInfo{}
	if len(payload) > 0 {
		var ev github.PingEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			ctxlog.From(ctx).Debug("Ignoring undecodable ping payload", "error", err)
		} else {
			ping.Zen = ev.GetZen()
		}
	}
	return p.webhookUC.ProcessPing(ctx, ping)
}

// decodePush extracts pusher name and ref. Both are required.
func decodePush(payload []byte) (*model.PushInfo, error) {
	var ev github.PushEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, goerr.Wrap(err, "failed to decode push payload", goerr.T(types.ErrTagInvalidPayload))
	}

	if ev.GetPusher().GetName() == "" || ev.GetRef() == "" {
		return nil, goerr.New("missing required fields in push payload",
			goerr.V("pusher_name", ev.GetPusher().GetName()),
			goerr.V("ref", ev.GetRef()),
			goerr.T(types.ErrTagInvalidPayload),
		)
	}

	return &model.PushInfo{
		PushedBy: ev.GetPusher().GetName(),
		Ref:      ev.GetRef(),
	}, nil
}
