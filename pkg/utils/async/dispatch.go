package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/slotwatch/pkg/utils/logging"
)

// Dispatch runs a handler in a new goroutine with panic recovery. The logger
// bound to ctx is carried over so background work keeps the caller's logging
// context.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	logger := logging.From(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(ctx); err != nil {
			logger.Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
