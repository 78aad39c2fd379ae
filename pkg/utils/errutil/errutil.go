package errutil

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/slotwatch/pkg/utils/logging"
)

// Fatal logs an unrecoverable error before the process terminates. The stack
// trace is emitted only when debug logging is active, so normal operation
// does not leak internals into the log stream.
func Fatal(ctx context.Context, err error) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		if logging.IsDebug() {
			logger.Error("aborting after an unrecoverable error",
				"error", err.Error(),
				"values", ge.Values(),
				"stack", ge.Stacks(),
			)
			return
		}
		logger.Error("aborting after an unrecoverable error",
			"error", err.Error(),
			"values", ge.Values(),
		)
		logger.Warn("stack trace suppressed, activate debug logs to see it")
		return
	}

	logger.Error("aborting after an unrecoverable error", "error", err.Error())
}
