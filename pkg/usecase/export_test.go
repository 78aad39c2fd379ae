package usecase

import (
	"context"

	"github.com/secmon-lab/slotwatch/pkg/domain/model"
)

// Cycle runs one polling round for tests
func (x *Checker) Cycle(ctx context.Context) error {
	return x.cycle(ctx)
}

// Init loads the initial configuration for tests
func (x *Checker) Init() error {
	cfg, err := model.LoadConfig(x.configPath)
	if err != nil {
		return err
	}
	x.reset(cfg)
	return nil
}

// Config returns the current configuration for tests
func (x *Checker) Config() *model.Config {
	return x.cfg
}
