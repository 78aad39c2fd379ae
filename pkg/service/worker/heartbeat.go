package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/slotwatch/pkg/utils/async"
	"github.com/secmon-lab/slotwatch/pkg/utils/logging"
)

// DefaultHeartbeatInterval is the cadence of the liveness log line
const DefaultHeartbeatInterval = time.Minute

// Heartbeat emits a periodic liveness log line, independent of the polling
// loop. It shares no state with the loop and never blocks it; the process
// must never wait on it to exit.
type Heartbeat struct {
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewHeartbeat creates a heartbeat with the given interval
func NewHeartbeat(interval time.Duration) *Heartbeat {
	return &Heartbeat{
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the heartbeat in the background. It logs once immediately so
// a hang early in the polling loop is still observable.
func (w *Heartbeat) Start(ctx context.Context) {
	async.Dispatch(ctx, func(ctx context.Context) error {
		w.run(ctx)
		return nil
	})
}

// Stop signals the heartbeat to stop and waits for it to finish. Only tests
// need this; the process exits without joining the heartbeat.
func (w *Heartbeat) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *Heartbeat) run(ctx context.Context) {
	defer close(w.doneCh)

	logger := logging.From(ctx)
	logger.Info("health check: slot watcher still alive")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("health check: slot watcher still alive")
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}
