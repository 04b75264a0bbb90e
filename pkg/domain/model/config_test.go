package model_test

import (
	"testing"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/ghtrigger/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestTriggerConfig_WithDefaults(t *testing.T) {
	t.Run("fills unset fields", func(t *testing.T) {
		cfg := model.TriggerConfig{}.WithDefaults()
		gt.Value(t, cfg.Endpoint).Equal(model.DefaultEndpoint)
		gt.Value(t, cfg.Branches).Equal([]string{"master"})
		gt.Value(t, cfg.BuildCondition).Equal(model.BuildConditionIfModificationExists)
	})

	t.Run("keeps configured fields and does not alias", func(t *testing.T) {
		orig := model.TriggerConfig{
			Endpoint:       "http://localhost:9000/",
			Branches:       []string{"main"},
			BuildCondition: model.BuildConditionForceBuild,
		}
		cfg := orig.WithDefaults()
		cfg.Branches[0] = "changed"

		gt.Value(t, cfg.Endpoint).Equal("http://localhost:9000/")
		gt.Value(t, cfg.BuildCondition).Equal(model.BuildConditionForceBuild)
		gt.Value(t, orig.Branches[0]).Equal("main")
	})
}

func TestTriggerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     model.TriggerConfig
		wantErr bool
	}{
		{name: "empty config", cfg: model.TriggerConfig{}},
		{name: "full config", cfg: model.TriggerConfig{
			Endpoint:       "http://*:8080/hooks/",
			Secret:         "s3cr3t",
			Branches:       []string{"main", "release-.*"},
			BuildCondition: model.BuildConditionForceBuild,
		}},
		{name: "https endpoint", cfg: model.TriggerConfig{Endpoint: "https://*:443/"}, wantErr: true},
		{name: "broken pattern", cfg: model.TriggerConfig{Branches: []string{"("}}, wantErr: true},
		{name: "unknown build condition", cfg: model.TriggerConfig{BuildCondition: "sometimes"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				gt.Error(t, err)
				gt.True(t, goerr.HasTag(err, types.ErrTagInvalidConfig))
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestParseBuildCondition(t *testing.T) {
	tests := []struct {
		input string
		want  model.BuildCondition
	}{
		{input: "", want: model.BuildConditionIfModificationExists},
		{input: "IfModificationExists", want: model.BuildConditionIfModificationExists},
		{input: "force_build", want: model.BuildConditionForceBuild},
		{input: "ForceBuild", want: model.BuildConditionForceBuild},
		{input: "NoBuild", want: model.BuildConditionNoBuild},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := model.ParseBuildCondition(tt.input)
			gt.NoError(t, err)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		wantAddr string
		wantPath string
	}{
		{raw: "http://*:31574/", wantAddr: ":31574", wantPath: "/"},
		{raw: "http://+:8080/hooks", wantAddr: ":8080", wantPath: "/hooks/"},
		{raw: "http://localhost:9000/github/", wantAddr: "localhost:9000", wantPath: "/github/"},
		{raw: "http://127.0.0.1", wantAddr: "127.0.0.1:80", wantPath: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ep, err := model.ParseEndpoint(tt.raw)
			gt.NoError(t, err)
			gt.Value(t, ep.Addr).Equal(tt.wantAddr)
			gt.Value(t, ep.Path).Equal(tt.wantPath)
			gt.Value(t, ep.Raw).Equal(tt.raw)
		})
	}
}
