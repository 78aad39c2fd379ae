package main

import (
	"context"
	"os"

	"github.com/secmon-lab/slotwatch/pkg/cli"
	"github.com/secmon-lab/slotwatch/pkg/domain/types"
)

var version = "dev"

func main() {
	if err := cli.Run(context.Background(), os.Args, version); err != nil {
		os.Exit(types.ExitCode(err))
	}
}
