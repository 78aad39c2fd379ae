package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/slotwatch/pkg/cli/config"
	"github.com/secmon-lab/slotwatch/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var fileCfg config.File

	return &cli.Command{
		Name:    "validate",
		Usage:   "Validate the configuration file and show the resulting settings",
		Flags:   fileCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := model.LoadConfig(fileCfg.Path())
			if err != nil {
				fmt.Printf("%s configuration is not valid: %s\n", color.RedString("✗"), fileCfg.Path())
				return goerr.Wrap(err, "configuration validation failed")
			}

			ok := color.GreenString("✓")
			fmt.Printf("%s configuration is valid: %s\n", ok, fileCfg.Path())
			fmt.Printf("%s login: %s\n", ok, cfg.Login)
			fmt.Printf("%s projects (%d): %v\n", ok, len(cfg.Projects), cfg.Projects)
			fmt.Printf("%s refresh: %s, lookahead: %s to %s\n", ok,
				cfg.Refresh, cfg.Start.Format("2006-01-02"), cfg.End.Format("2006-01-02"))
			fmt.Printf("%s avoid_spam: %v\n", ok, cfg.AvoidSpam)

			if cfg.Window.Enabled() {
				fmt.Printf("%s disponibility window: %s\n", ok, cfg.Window)
			} else {
				fmt.Printf("%s disponibility window is disabled, no slot will ever be notified\n",
					color.YellowString("!"))
			}

			if cfg.Channel != nil {
				fmt.Printf("%s notification channel: %s\n", ok, cfg.Channel.Kind)
			} else {
				fmt.Printf("%s no notification channel configured, slots will only be logged\n",
					color.YellowString("!"))
			}

			return nil
		},
	}
}
