package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/getsentry/sentry-go"
	"github.com/secmon-lab/slotwatch/pkg/cli/config"
	"github.com/secmon-lab/slotwatch/pkg/service/worker"
	"github.com/secmon-lab/slotwatch/pkg/usecase"
	"github.com/secmon-lab/slotwatch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdWatch(version string) *cli.Command {
	var fileCfg config.File
	var intraCfg config.Intra
	var sentryCfg config.Sentry

	var flags []cli.Flag
	flags = append(flags, fileCfg.Flags()...)
	flags = append(flags, intraCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "Poll the intra for available evaluation slots and notify",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			logger := logging.Default()
			ctx = logging.With(ctx, logger)
			logger.Info("watching for evaluation slots",
				"config", fileCfg.Path(), "intra", intraCfg, "sentry", sentryCfg.Enabled())

			ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer cancel()

			// The heartbeat is deliberately not joined on shutdown: it must
			// never delay or block process exit.
			worker.NewHeartbeat(worker.DefaultHeartbeatInterval).Start(ctx)

			checker := usecase.New(fileCfg.Path(),
				usecase.WithIntraFactory(intraCfg.Factory()),
			)
			if err := checker.Run(ctx); err != nil {
				if sentryCfg.Enabled() {
					sentry.CaptureException(err)
				}
				return err
			}
			return nil
		},
	}
}
