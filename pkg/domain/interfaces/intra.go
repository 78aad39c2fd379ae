package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/slotwatch/pkg/domain/model"
)

// IntraClient is one authenticated session against the intra. Implementations
// complete the sign-in handshake before answering any slot query.
type IntraClient interface {
	// QuerySlots retrieves the evaluation slots of a project within the date
	// range. Unknown projects and inaccessible corrections are logged and
	// answered with an empty listing; transport failures are retried with a
	// bounded budget before the call fails.
	QuerySlots(ctx context.Context, project string, start, end time.Time) ([]model.Slot, error)

	// Credentials returns the identity the session was established with,
	// used to detect credential changes across config reloads.
	Credentials() (login, password string)

	// Close releases the underlying transport
	Close()
}
