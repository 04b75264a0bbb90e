package cli

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/ghtrigger/pkg/cli/config"
	controller "github.com/m-mizutani/ghtrigger/pkg/controller/http"
	"github.com/m-mizutani/ghtrigger/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/ghtrigger/pkg/usecase"
	"github.com/m-mizutani/ghtrigger/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe(loggerCfg *config.Logger) *cli.Command {
	var (
		triggerCfg config.Trigger
		orchCfg    config.Orchestrator
		sentryCfg  config.Sentry
		slackCfg   config.Slack
	)

	var flags []cli.Flag
	flags = append(flags, triggerCfg.Flags()...)
	flags = append(flags, orchCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the webhook listener and poll it for build requests",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := triggerCfg.Build(c, loggerCfg.File)
			if err != nil {
				return goerr.Wrap(err, "failed to load trigger configuration")
			}
			if err := orchCfg.Validate(); err != nil {
				return err
			}

			// A log file given only in the config file still gets its sink.
			if cfg.LogFile != "" && loggerCfg.File == "" {
				loggerCfg.File = cfg.LogFile
				logger, err := loggerCfg.Configure()
				if err != nil {
					return goerr.Wrap(err, "failed to configure logger")
				}
				slog.SetDefault(logger)
				ctx = ctxlog.With(ctx, logger)
			}
			logger := ctxlog.From(ctx)

			flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			logger.Info("Starting ghtrigger", "config", cfg)

			listener := controller.NewListener(cfg.Secret)
			trigger, err := usecase.NewTrigger(cfg, &model.ListenerState{}, listener)
			if err != nil {
				return err
			}
			if err := trigger.Start(ctx); err != nil {
				return err
			}

			runner := &buildRunner{
				notifier: slackCfg.Configure(),
				command:  orchCfg.BuildCommand,
			}

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			ticker := time.NewTicker(orchCfg.PollInterval)
			defer ticker.Stop()

		loop:
			for {
				select {
				case <-ctx.Done():
					logger.Info("Context cancelled, shutting down...")
					break loop
				case sig := <-sigChan:
					logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
					break loop
				case <-ticker.C:
					req, err := trigger.Poll(ctx)
					if err != nil {
						logger.Error("Failed to poll trigger", "error", err)
						continue
					}
					if req != nil {
						runner.dispatch(ctx, req)
					}
				}
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := listener.Shutdown(shutdownCtx); err != nil {
				return err
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

// buildRunner stands in for an external orchestrator: it announces build
// requests and optionally runs a build command for each.
type buildRunner struct {
	notifier interfaces.BuildNotifier
	command  string
}

func (r *buildRunner) dispatch(ctx context.Context, req *model.BuildRequest) {
	ctxlog.From(ctx).Info("Build requested",
		"id", req.ID,
		"branch", req.Branch(),
		"requested_by", req.RequestedBy,
		"condition", req.Condition,
	)

	if r.notifier != nil {
		async.Dispatch(ctx, "notify-build", func(ctx context.Context) error {
			return r.notifier.NotifyBuild(ctx, req)
		})
	}
	if r.command != "" {
		async.Dispatch(ctx, "build-command", func(ctx context.Context) error {
			return runBuildCommand(ctx, r.command, req)
		})
	}
}

// runBuildCommand executes command through the shell with the build request
// exposed as environment variables
func runBuildCommand(ctx context.Context, command string, req *model.BuildRequest) error {
	logger := ctxlog.From(ctx)
	start := time.Now()

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command) // #nosec G204 -- command is operator configured
	cmd.Env = append(os.Environ(),
		"GHTRIGGER_REQUEST_ID="+req.ID,
		"GHTRIGGER_BRANCH="+req.Branch(),
		"GHTRIGGER_PUSHED_BY="+req.RequestedBy,
		"GHTRIGGER_BUILD_CONDITION="+string(req.Condition),
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return goerr.Wrap(err, "build command failed",
			goerr.V("request_id", req.ID),
			goerr.V("output", string(output)),
		)
	}

	logger.Info("Build command finished",
		"request_id", req.ID,
		"duration_ms", time.Since(start).Milliseconds(),
		"output", string(output),
	)
	return nil
}
