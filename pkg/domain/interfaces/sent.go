package interfaces

import "github.com/secmon-lab/slotwatch/pkg/domain/types"

// SentStore is the duplicate-suppression bookkeeping of the polling loop.
// It grows monotonically between resets; a reset happens on config reload.
type SentStore interface {
	Seen(id types.SlotID) bool
	MarkSent(id types.SlotID)
	Reset()
}
