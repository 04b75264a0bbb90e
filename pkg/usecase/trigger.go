package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/ghtrigger/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// TriggerName identifies build requests produced by this trigger
const TriggerName = "GitHubHookTrigger"

// Trigger owns the listener lifecycle and the pending build slot. The
// orchestrator calls Poll on its own schedule while the listener records
// pushes concurrently.
type Trigger struct {
	cfg      model.TriggerConfig
	state    *model.ListenerState
	listener interfaces.Listener
	slot     model.PendingSlot
	now      func() time.Time
}

// TriggerOption configures a Trigger
type TriggerOption func(*Trigger)

// WithClock overrides the clock used for build request timestamps
func WithClock(now func() time.Time) TriggerOption {
	return func(t *Trigger) {
		t.now = now
	}
}

// NewTrigger validates cfg and creates a Trigger. state is owned by the caller
// so that the start-once guarantee can span trigger instances.
func NewTrigger(cfg model.TriggerConfig, state *model.ListenerState, listener interfaces.Listener, opts ...TriggerOption) (*Trigger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid trigger configuration")
	}
	if state == nil {
		state = &model.ListenerState{}
	}

	t := &Trigger{
		cfg:      cfg,
		state:    state,
		listener: listener,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Start binds the webhook listener on the first call. Later calls, including
// concurrent ones, return immediately. A failed first start is not retried.
func (t *Trigger) Start(ctx context.Context) error {
	if !t.state.TryStart() {
		return nil
	}
	logger := ctxlog.From(ctx)

	effective := t.cfg.WithDefaults()
	endpoint, err := model.ParseEndpoint(effective.Endpoint)
	if err != nil {
		return goerr.Wrap(err, "failed to parse endpoint")
	}
	matcher, err := model.NewBranchMatcher(effective.Branches)
	if err != nil {
		return goerr.Wrap(err, "failed to compile branch patterns")
	}

	logger.Info("Starting webhook listener",
		"endpoint", endpoint.Raw,
		"branches", effective.Branches,
		"build_condition", effective.BuildCondition,
	)

	if err := t.listener.Serve(ctx, endpoint, NewWebhook(matcher, &t.slot)); err != nil {
		return goerr.Wrap(err, "failed to start webhook listener", goerr.V("endpoint", endpoint.Raw))
	}

	logger.Info("Started webhook listener", "addr", endpoint.Addr, "path", endpoint.Path)
	return nil
}

// Poll starts the listener if needed and consumes the pending build. It
// returns nil when no qualifying push arrived since the previous poll.
func (t *Trigger) Poll(ctx context.Context) (*model.BuildRequest, error) {
	if err := t.Start(ctx); err != nil {
		return nil, err
	}

	pb := t.slot.Take()
	if pb == nil {
		return nil, nil
	}

	req := &model.BuildRequest{
		ID:          uuid.NewString(),
		Source:      TriggerName,
		Condition:   t.buildCondition(),
		RequestedBy: pb.PushedBy,
		Values: map[string]string{
			model.BuildValueBranch: pb.Branch,
		},
		RequestedAt: t.now(),
	}

	ctxlog.From(ctx).Info("Issuing build request",
		"id", req.ID,
		"branch", pb.Branch,
		"pushed_by", pb.PushedBy,
		"condition", req.Condition,
	)
	return req, nil
}

func (t *Trigger) buildCondition() model.BuildCondition {
	if t.cfg.BuildCondition == "" {
		return model.BuildConditionIfModificationExists
	}
	c, err := model.ParseBuildCondition(string(t.cfg.BuildCondition))
	if err != nil {
		return model.BuildConditionIfModificationExists
	}
	return c
}
