package session

import (
	"log"
	"sort"
	"sync"
)

// Store holds every session ever created and answers the queue/lookup
// queries the dispatcher, monitor, and public API need.
//
// The two FIFOs (main and overflow) are filtered views over one
// insertion-ordered list.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*ChatSession
	byUser  map[string]string // userId -> most recently created session id
	order   []*ChatSession    // insertion order; queue queries sort by createdAt
}

// NewStore builds an empty session store.
func NewStore() *Store {
	return &Store{
		byID:   make(map[string]*ChatSession),
		byUser: make(map[string]string),
	}
}

// Insert records a new session, placing it in the appropriate FIFO if Queued
//.
func (st *Store) Insert(s *ChatSession) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.byID[s.ID] = s
	st.byUser[s.UserID] = s.ID
	st.order = append(st.order, s)
	log.Printf("[INFO] session.Store.Insert: session=%s user=%s status=%s", s.ID, s.UserID, s.Snapshot().Status)
}

// ByID looks up a session by id.
func (st *Store) ByID(id string) (*ChatSession, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.byID[id]
	return s, ok
}

// ActiveByUser returns the session currently occupying the one-active-per-user
// slot for userId, if any.
func (st *Store) ActiveByUser(userID string) (*ChatSession, bool) {
	st.mu.RLock()
	id, ok := st.byUser[userID]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s, ok := st.ByID(id)
	if !ok {
		return nil, false
	}
	if !IsActiveStatus(s.Snapshot().Status) {
		return nil, false
	}
	return s, true
}

// snapshotOrder returns a stable copy of the insertion-order list.
func (st *Store) snapshotOrder() []*ChatSession {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*ChatSession, len(st.order))
	copy(out, st.order)
	return out
}

// byCreatedAt sorts a slice of sessions by createdAt ascending, stable.
func byCreatedAt(sessions []*ChatSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt().Before(sessions[j].CreatedAt())
	})
}

// QueuedMain returns every Queued, non-overflow session in createdAt order.
func (st *Store) QueuedMain() []*ChatSession {
	return st.filterStatus(func(snap Snapshot) bool {
		return snap.Status == Queued && !snap.IsInOverflow
	})
}

// QueuedOverflow returns every Queued, overflow session in createdAt order.
func (st *Store) QueuedOverflow() []*ChatSession {
	return st.filterStatus(func(snap Snapshot) bool {
		return snap.Status == Queued && snap.IsInOverflow
	})
}

// QueueLength is the main queue's current length.
func (st *Store) QueueLength() int {
	return len(st.QueuedMain())
}

// OverflowQueueLength is the overflow queue's current length.
func (st *Store) OverflowQueueLength() int {
	return len(st.QueuedOverflow())
}

// TimedOut returns every session eligible for inactivation.
func (st *Store) TimedOut() []*ChatSession {
	var out []*ChatSession
	for _, s := range st.snapshotOrder() {
		if s.IsTimedOut() {
			out = append(out, s)
		}
	}
	return out
}

// ActiveForMonitoring returns every session in {Queued, Assigned, Active}
//.
func (st *Store) ActiveForMonitoring() []*ChatSession {
	return st.filterStatus(func(snap Snapshot) bool {
		return IsActiveStatus(snap.Status)
	})
}

func (st *Store) filterStatus(pred func(Snapshot) bool) []*ChatSession {
	all := st.snapshotOrder()
	out := make([]*ChatSession, 0, len(all))
	for _, s := range all {
		if pred(s.Snapshot()) {
			out = append(out, s)
		}
	}
	byCreatedAt(out)
	return out
}

// QueuePosition returns the 1-based index of sessionId in its current queue
// (main or overflow), ordered by createdAt; 0 if not queued.
func (st *Store) QueuePosition(sessionID string) int {
	s, ok := st.ByID(sessionID)
	if !ok {
		return 0
	}
	snap := s.Snapshot()
	if snap.Status != Queued {
		return 0
	}
	var queue []*ChatSession
	if snap.IsInOverflow {
		queue = st.QueuedOverflow()
	} else {
		queue = st.QueuedMain()
	}
	for i, q := range queue {
		if q.ID == sessionID {
			return i + 1
		}
	}
	return 0
}

// All returns every session ever inserted, in createdAt order.
func (st *Store) All() []*ChatSession {
	out := st.snapshotOrder()
	byCreatedAt(out)
	return out
}

// ByStatus returns every session currently in status st2, in createdAt order.
func (st *Store) ByStatus(st2 Status) []*ChatSession {
	return st.filterStatus(func(snap Snapshot) bool { return snap.Status == st2 })
}

// Inactive returns every Inactive session, in createdAt order.
func (st *Store) Inactive() []*ChatSession {
	return st.ByStatus(Inactive)
}
