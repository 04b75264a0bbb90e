package slack

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	slackapi "github.com/slack-go/slack"
)

type notifier struct {
	webhookURL string
	channel    string
	httpClient *http.Client
}

// Option configures the notifier
type Option func(*notifier)

// WithChannel overrides the channel configured on the incoming webhook
func WithChannel(channel string) Option {
	return func(n *notifier) {
		n.channel = channel
	}
}

// WithHTTPClient replaces the HTTP client used to post messages
func WithHTTPClient(client *http.Client) Option {
	return func(n *notifier) {
		n.httpClient = client
	}
}

// NewNotifier creates a notifier posting build requests to a Slack incoming webhook
func NewNotifier(webhookURL string, opts ...Option) *notifier {
	n := &notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifyBuild posts a summary of the build request
func (n *notifier) NotifyBuild(ctx context.Context, req *model.BuildRequest) error {
	msg := &slackapi.WebhookMessage{
		Channel: n.channel,
		Text:    fmt.Sprintf("Build requested for `%s` by %s", req.Branch(), req.RequestedBy),
		Attachments: []slackapi.Attachment{
			{
				Color: "#2eb886",
				Fields: []slackapi.AttachmentField{
					{Title: "Branch", Value: req.Branch(), Short: true},
					{Title: "Pushed by", Value: req.RequestedBy, Short: true},
					{Title: "Condition", Value: string(req.Condition), Short: true},
					{Title: "Request ID", Value: req.ID, Short: true},
				},
			},
		},
	}

	if err := slackapi.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.httpClient, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack notification", goerr.V("request_id", req.ID))
	}
	return nil
}
