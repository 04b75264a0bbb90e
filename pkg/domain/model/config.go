package model

import (
	"strings"

	"github.com/m-mizutani/ghtrigger/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// DefaultEndpoint is the address the listener binds when none is configured
	DefaultEndpoint = "http://*:31574/"

	// DefaultBranch is the only branch pattern used when none is configured
	DefaultBranch = "master"
)

// BuildCondition is the policy handed to the orchestrator with a build request
type BuildCondition string

const (
	BuildConditionNoBuild              BuildCondition = "no_build"
	BuildConditionIfModificationExists BuildCondition = "if_modification_exists"
	BuildConditionForceBuild           BuildCondition = "force_build"
)

// ParseBuildCondition accepts snake_case or CamelCase spellings of a build condition.
// An empty string yields the default policy.
func ParseBuildCondition(s string) (BuildCondition, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	switch normalized {
	case "", "ifmodificationexists":
		return BuildConditionIfModificationExists, nil
	case "forcebuild":
		return BuildConditionForceBuild, nil
	case "nobuild":
		return BuildConditionNoBuild, nil
	default:
		return "", goerr.New("unknown build condition",
			goerr.V("build_condition", s),
			goerr.T(types.ErrTagInvalidConfig),
		)
	}
}

// TriggerConfig holds trigger settings supplied by the host. The trigger
// never mutates it; defaults are applied to a copy when the listener starts.
type TriggerConfig struct {
	Endpoint       string         `toml:"endpoint"`
	LogFile        string         `toml:"log_file"`
	Secret         string         `toml:"secret" masq:"secret"`
	Branches       []string       `toml:"branches"`
	BuildCondition BuildCondition `toml:"build_condition"`
}

// WithDefaults returns a copy with the default endpoint, branch patterns and
// build condition filled in where unset
func (c TriggerConfig) WithDefaults() TriggerConfig {
	out := c
	if strings.TrimSpace(out.Endpoint) == "" {
		out.Endpoint = DefaultEndpoint
	}
	if len(out.Branches) == 0 {
		out.Branches = []string{DefaultBranch}
	} else {
		out.Branches = append([]string(nil), out.Branches...)
	}
	if out.BuildCondition == "" {
		out.BuildCondition = BuildConditionIfModificationExists
	}
	return out
}

// Validate checks endpoint syntax, branch pattern syntax and the build condition.
// Unset fields are valid; they are defaulted at start.
func (c TriggerConfig) Validate() error {
	if c.Endpoint != "" {
		if _, err := ParseEndpoint(c.Endpoint); err != nil {
			return err
		}
	}
	if _, err := NewBranchMatcher(c.Branches); err != nil {
		return err
	}
	if c.BuildCondition != "" {
		if _, err := ParseBuildCondition(string(c.BuildCondition)); err != nil {
			return err
		}
	}
	return nil
}
