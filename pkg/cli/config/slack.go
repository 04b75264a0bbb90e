package config

import (
	"github.com/m-mizutani/ghtrigger/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtrigger/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds build notification configuration
type Slack struct {
	WebhookURL string `masq:"secret"`
	Channel    string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL notified for every build request",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("GHTRIGGER_SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel overriding the webhook default",
			Destination: &c.Channel,
			Sources:     cli.EnvVars("GHTRIGGER_SLACK_CHANNEL"),
		},
	}
}

// Configure returns a notifier, or nil when Slack is not configured
func (c *Slack) Configure() interfaces.BuildNotifier {
	if c.WebhookURL == "" {
		return nil
	}
	return slack.NewNotifier(c.WebhookURL, slack.WithChannel(c.Channel))
}
