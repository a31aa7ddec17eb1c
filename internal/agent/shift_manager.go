package agent

import (
	"log"
	"time"

	"github.com/shiftdesk/chatdispatch/internal/clock"
)

// ShiftManager refreshes every agent's active/acceptingNewChats flags from
// its shift window.
type ShiftManager struct {
	store   *Store
	clock   clock.Clock
	handoff time.Duration
}

// NewShiftManager builds a ShiftManager bound to store.
func NewShiftManager(store *Store, c clock.Clock, handoff time.Duration) *ShiftManager {
	return &ShiftManager{store: store, clock: c, handoff: handoff}
}

// Refresh recomputes every agent's shift flags against the clock's current
// instant. Safe to call from multiple goroutines; each agent's update is
// independently locked.
func (m *ShiftManager) Refresh() {
	now := m.clock.Now()
	for _, a := range m.store.All() {
		a.UpdateShiftStatus(now, m.handoff)
	}
	log.Printf("[DEBUG] ShiftManager.Refresh: updated %d agents at %s", len(m.store.All()), now.UTC().Format(time.RFC3339))
}
