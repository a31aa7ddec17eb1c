// Package dispatchcore is the in-process public API: CreateSession, Poll,
// CanAccept, QueuePosition, EstimatedWait. HTTP decoding/encoding
// lives in internal/httpserver; this package owns every decision.
package dispatchcore

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/shiftdesk/chatdispatch/internal/agent"
	"github.com/shiftdesk/chatdispatch/internal/capacity"
	"github.com/shiftdesk/chatdispatch/internal/clock"
	"github.com/shiftdesk/chatdispatch/internal/session"
)

// Kind classifies an Error for HTTP status mapping.
type Kind string

const (
	InvalidArgument  Kind = "InvalidArgument"
	NotFound         Kind = "NotFound"
	CapacityConflict Kind = "CapacityConflict"
	Transient        Kind = "Transient"
	Fatal            Kind = "Fatal"
)

// Error is a typed error carrying a Kind for status-code mapping.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// EstimatedWaitPerPosition is the per-queue-slot wait estimate.
const EstimatedWaitPerPosition = 5 * time.Minute

// Facade is the public API surface consumed by internal/httpserver.
type Facade struct {
	sessions *session.Store
	agents   *agent.Store
	cap      *capacity.Calculator
	clock    clock.Clock
}

// New builds a Facade.
func New(sessions *session.Store, agents *agent.Store, cap *capacity.Calculator, c clock.Clock) *Facade {
	return &Facade{sessions: sessions, agents: agents, cap: cap, clock: c}
}

// CreateSession implements CreateSession: idempotent on an existing
// active session, otherwise Refused or Queued depending on admission.
func (f *Facade) CreateSession(userID string) (session.Snapshot, error) {
	if userID == "" {
		return session.Snapshot{}, newError(InvalidArgument, "userId must not be empty")
	}

	if existing, ok := f.sessions.ActiveByUser(userID); ok {
		log.Printf("[INFO] dispatchcore.CreateSession: idempotent return of existing session %s for user %s", existing.ID, userID)
		return existing.Snapshot(), nil
	}

	now := f.clock.Now()
	id := uuid.NewString()

	if !f.cap.CanAccept() {
		s := session.NewRefused(id, userID, now)
		f.sessions.Insert(s)
		log.Printf("[WARN] dispatchcore.CreateSession: refused user %s (session %s)", userID, id)
		return s.Snapshot(), nil
	}

	s := session.New(id, userID, now)
	f.sessions.Insert(s)
	log.Printf("[INFO] dispatchcore.CreateSession: queued user %s (session %s)", userID, id)
	return s.Snapshot(), nil
}

// Poll implements Poll. Returns false if sessionId is unknown.
func (f *Facade) Poll(sessionID string) (session.Snapshot, bool) {
	s, ok := f.sessions.ByID(sessionID)
	if !ok {
		return session.Snapshot{}, false
	}
	s.RecordPoll(f.clock.Now())
	return s.Snapshot(), true
}

// CanAccept reports current admission eligibility.
func (f *Facade) CanAccept() bool {
	return f.cap.CanAccept()
}

// QueuePosition returns the session's 1-based queue position, or 0 if it is
// not currently queued.
func (f *Facade) QueuePosition(sessionID string) int {
	return f.sessions.QueuePosition(sessionID)
}

// EstimatedWait returns the estimated wait for a queued session, or nil if
// the session is not queued or there are no available agents in its pool
//.
func (f *Facade) EstimatedWait(sessionID string) *time.Duration {
	s, ok := f.sessions.ByID(sessionID)
	if !ok {
		return nil
	}
	snap := s.Snapshot()
	if snap.Status != session.Queued {
		return nil
	}
	position := f.sessions.QueuePosition(sessionID)
	if position == 0 {
		return nil
	}

	var pool []*agent.Agent
	if snap.IsInOverflow {
		pool = f.agents.ByTeam(agent.TeamOverflow)
	} else {
		pool = append(append(append([]*agent.Agent{}, f.agents.ByTeam(agent.TeamA)...), f.agents.ByTeam(agent.TeamB)...), f.agents.ByTeam(agent.TeamC)...)
	}
	available := 0
	for _, a := range pool {
		if a.Snapshot().Available > 0 {
			available++
		}
	}
	if available == 0 {
		return nil
	}

	wait := time.Duration(position) * EstimatedWaitPerPosition / time.Duration(available)
	return &wait
}
