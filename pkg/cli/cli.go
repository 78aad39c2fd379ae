package cli

import (
	"context"

	"github.com/secmon-lab/slotwatch/pkg/cli/config"
	"github.com/secmon-lab/slotwatch/pkg/utils/errutil"
	"github.com/secmon-lab/slotwatch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Run executes the slotwatch CLI. The returned error carries the tag of the
// originating failure so that main can map it to an exit code.
func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var verbose bool
	var closer func()

	flags := loggerCfg.Flags()
	flags = append(flags, &cli.BoolFlag{
		Name:        "verbose",
		Aliases:     []string{"v"},
		Usage:       "Include debugging logs",
		Sources:     cli.EnvVars("SLOTWATCH_DEBUG"),
		Destination: &verbose,
	})

	app := &cli.Command{
		Name:    "slotwatch",
		Usage:   "42 intra evaluation slot watcher",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if verbose {
				loggerCfg.SetDebug()
			}
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Info("starting slotwatch", "version", version, "logger", loggerCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdWatch(version),
			cmdValidate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		errutil.Fatal(ctx, err)
		return err
	}

	return nil
}
