package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
)

// PendingRecorder accepts the latest qualifying push. It may only replace the
// pending build, never read it back.
type PendingRecorder interface {
	Put(pb model.PendingBuild)
}

type webhookUseCase struct {
	matcher  *model.BranchMatcher
	recorder PendingRecorder
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(matcher *model.BranchMatcher, recorder PendingRecorder) *webhookUseCase {
	return &webhookUseCase{
		matcher:  matcher,
		recorder: recorder,
	}
}

// ProcessPush records a pending build when the pushed branch fully matches a
// configured pattern. Pushes to other branches are logged and ignored.
func (uc *webhookUseCase) ProcessPush(ctx context.Context, push *model.PushInfo) error {
	logger := ctxlog.From(ctx)
	branch := push.Branch()

	logger.Info("Received push event",
		"branch", branch,
		"pusher", push.PushedBy,
		"ref", push.Ref,
	)

	pattern, ok := uc.matcher.Match(branch)
	if !ok {
		logger.Info("Push does not match any branch pattern, ignoring",
			"branch", branch,
		)
		return nil
	}

	uc.recorder.Put(model.PendingBuild{
		PushedBy: push.PushedBy,
		Branch:   branch,
	})

	logger.Info("Recorded pending build",
		"branch", branch,
		"pusher", push.PushedBy,
		"pattern", pattern.String(),
	)
	return nil
}

// ProcessPing logs the acknowledgement of a ping notification
func (uc *webhookUseCase) ProcessPing(ctx context.Context, ping *model.PingInfo) error {
	logger := ctxlog.From(ctx)
	if ping.Zen != "" {
		logger.Info("Ping received! Here's some knowledge: " + ping.Zen)
		return nil
	}
	logger.Info("Ping received!")
	return nil
}
