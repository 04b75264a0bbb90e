package config

import (
	"time"

	"github.com/m-mizutani/ghtrigger/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Orchestrator holds settings of the bundled poll loop
type Orchestrator struct {
	PollInterval time.Duration
	BuildCommand string
}

// Flags returns CLI flags for the poll loop
func (c *Orchestrator) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "poll-interval",
			Usage:       "Interval between trigger polls",
			Value:       15 * time.Second,
			Destination: &c.PollInterval,
			Sources:     cli.EnvVars("GHTRIGGER_POLL_INTERVAL"),
		},
		&cli.StringFlag{
			Name:        "build-command",
			Usage:       "Shell command run for every build request",
			Destination: &c.BuildCommand,
			Sources:     cli.EnvVars("GHTRIGGER_BUILD_COMMAND"),
		},
	}
}

// Validate rejects a poll interval the ticker cannot run with
func (c *Orchestrator) Validate() error {
	if c.PollInterval <= 0 {
		return goerr.New("poll interval must be positive",
			goerr.V("poll_interval", c.PollInterval.String()),
			goerr.T(types.ErrTagInvalidConfig),
		)
	}
	return nil
}
