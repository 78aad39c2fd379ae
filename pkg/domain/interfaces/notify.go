package interfaces

import (
	"context"

	"github.com/secmon-lab/slotwatch/pkg/domain/model"
	"github.com/secmon-lab/slotwatch/pkg/domain/types"
)

// Notifier delivers one slot notice to the configured channel. Delivery has
// no retry; the caller decides whether a failure is fatal.
type Notifier interface {
	Notify(ctx context.Context, notice model.SlotNotice) error
	Kind() types.ChannelKind
}
