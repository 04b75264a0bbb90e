package config

import (
	"os"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/ghtrigger/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Trigger holds webhook trigger configuration
type Trigger struct {
	ConfigFile     string
	Endpoint       string
	Secret         string
	Branches       []string
	BuildCondition string
}

// Flags returns CLI flags for trigger configuration
func (c *Trigger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML file with trigger settings; flags override file values",
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("GHTRIGGER_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "endpoint",
			Usage:       "Endpoint URL prefix to bind (default " + model.DefaultEndpoint + ")",
			Destination: &c.Endpoint,
			Sources:     cli.EnvVars("GHTRIGGER_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:        "secret",
			Usage:       "Webhook secret shared with GitHub",
			Destination: &c.Secret,
			Sources:     cli.EnvVars("GHTRIGGER_SECRET"),
		},
		&cli.StringSliceFlag{
			Name:        "branch",
			Aliases:     []string{"b"},
			Usage:       "Branch pattern that fires the trigger; repeatable (default " + model.DefaultBranch + ")",
			Destination: &c.Branches,
			Sources:     cli.EnvVars("GHTRIGGER_BRANCHES"),
		},
		&cli.StringFlag{
			Name:        "build-condition",
			Usage:       "Build condition handed to the orchestrator (if_modification_exists, force_build, no_build)",
			Destination: &c.BuildCondition,
			Sources:     cli.EnvVars("GHTRIGGER_BUILD_CONDITION"),
		},
	}
}

// Build assembles the trigger configuration. Values from the config file are
// used unless the matching flag was set explicitly. logFile is the logger's
// file sink, recorded for completeness.
func (c *Trigger) Build(cmd *cli.Command, logFile string) (model.TriggerConfig, error) {
	var cfg model.TriggerConfig

	if c.ConfigFile != "" {
		loaded, err := LoadTriggerFile(c.ConfigFile)
		if err != nil {
			return model.TriggerConfig{}, err
		}
		cfg = *loaded
	}

	if cmd.IsSet("endpoint") || cfg.Endpoint == "" {
		cfg.Endpoint = c.Endpoint
	}
	if cmd.IsSet("secret") || cfg.Secret == "" {
		cfg.Secret = c.Secret
	}
	if cmd.IsSet("branch") || len(cfg.Branches) == 0 {
		cfg.Branches = c.Branches
	}
	if cmd.IsSet("build-condition") || cfg.BuildCondition == "" {
		cfg.BuildCondition = model.BuildCondition(c.BuildCondition)
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	if cfg.BuildCondition != "" {
		bc, err := model.ParseBuildCondition(string(cfg.BuildCondition))
		if err != nil {
			return model.TriggerConfig{}, err
		}
		cfg.BuildCondition = bc
	}

	if err := cfg.Validate(); err != nil {
		return model.TriggerConfig{}, err
	}
	return cfg, nil
}

// LoadTriggerFile reads trigger settings from a TOML file
func LoadTriggerFile(path string) (*model.TriggerConfig, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path), goerr.T(types.ErrTagInvalidConfig))
	}

	var cfg model.TriggerConfig
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path), goerr.T(types.ErrTagInvalidConfig))
	}
	return &cfg, nil
}
