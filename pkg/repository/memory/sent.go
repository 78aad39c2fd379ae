package memory

import (
	"sync"

	"github.com/secmon-lab/slotwatch/pkg/domain/types"
)

// SentStore keeps already-notified slot identifiers in process memory.
// State is intentionally lost on restart; identifiers are bounded by the
// short lookahead window, so no eviction is needed.
type SentStore struct {
	mu   sync.Mutex
	sent map[types.SlotID]struct{}
}

// NewSentStore creates an empty store
func NewSentStore() *SentStore {
	return &SentStore{
		sent: make(map[types.SlotID]struct{}),
	}
}

// Seen reports whether the slot identifier was already notified on
func (x *SentStore) Seen(id types.SlotID) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.sent[id]
	return ok
}

// MarkSent records a notified slot identifier
func (x *SentStore) MarkSent(id types.SlotID) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.sent[id] = struct{}{}
}

// Reset discards all recorded identifiers
func (x *SentStore) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.sent = make(map[types.SlotID]struct{})
}

// Size returns the number of recorded identifiers
func (x *SentStore) Size() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.sent)
}
