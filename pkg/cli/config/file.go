package config

import (
	"github.com/urfave/cli/v3"
)

// DefaultPath is the configuration file consulted when --config is not given
const DefaultPath = "config.yml"

// File holds the CLI flag for the operator configuration file
type File struct {
	path string
}

// Flags returns the CLI flag for the configuration file path
func (x *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the configuration file",
			Value:       DefaultPath,
			Sources:     cli.EnvVars("SLOTWATCH_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured file path
func (x *File) Path() string {
	return x.path
}
