// Package assign commits a (session, agent) pair produced by the selector,
// with retry-with-backoff around the agent commit step.
package assign

import (
	"log"
	"time"

	"github.com/shiftdesk/chatdispatch/internal/agent"
	"github.com/shiftdesk/chatdispatch/internal/capacity"
	"github.com/shiftdesk/chatdispatch/internal/clock"
	"github.com/shiftdesk/chatdispatch/internal/session"
)

// MaxAttempts and the backoff unit match Constants: "assignment retries 3
// with 100·attempt ms backoff".
const (
	MaxAttempts  = 3
	backoffUnit  = 100 * time.Millisecond
)

// Assigner commits reservations into confirmed assignments.
type Assigner struct {
	sessions *session.Store
	capacity *capacity.Calculator
	clock    clock.Clock
	sleep    func(time.Duration)
}

// New builds an Assigner. sleep defaults to time.Sleep; tests may override
// it via WithSleep to avoid real delays.
func New(sessions *session.Store, cap *capacity.Calculator, c clock.Clock) *Assigner {
	return &Assigner{sessions: sessions, capacity: cap, clock: c, sleep: time.Sleep}
}

// WithSleep overrides the backoff delay function, for deterministic tests.
func (a *Assigner) WithSleep(sleep func(time.Duration)) *Assigner {
	a.sleep = sleep
	return a
}

// TryAssign commits sess to ag, already holding a reservation on ag.
// On a transient persistence failure it retries up to MaxAttempts times with
// 100·attempt ms backoff, releasing and re-noting the reservation state on
// every failed attempt. It returns false (not an error) on exhaustion, per
// Transient handling: the session remains Queued for the next tick.
func (a *Assigner) TryAssign(sess *session.ChatSession, ag *agent.Agent) bool {
	if !ag.StillEligible() {
		ag.ReleaseReservation()
		log.Printf("[WARN] assign.TryAssign: agent %s no longer eligible before commit, session %s stays queued", ag.ID, sess.ID)
		return false
	}

	if !sess.AssignToAgent(ag.ID, a.clock.Now()) {
		ag.ReleaseReservation()
		log.Printf("[WARN] assign.TryAssign: session %s was no longer Queued", sess.ID)
		return false
	}

	var committed bool
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if ag.ConfirmReservation() {
			committed = true
			break
		}
		if ag.AssignDirect() {
			committed = true
			break
		}
		log.Printf("[WARN] assign.TryAssign: attempt %d/%d failed to commit agent %s for session %s", attempt, MaxAttempts, ag.ID, sess.ID)
		ag.ReleaseReservation()
		if attempt < MaxAttempts {
			a.sleep(time.Duration(attempt) * backoffUnit)
		}
	}

	if !committed {
		log.Printf("[ERROR] assign.TryAssign: exhausted %d attempts for session %s, agent %s", MaxAttempts, sess.ID, ag.ID)
		return false
	}

	if !sess.AssignToAgent(ag.ID, a.clock.Now()) {
		ag.CompleteChat()
		log.Printf("[WARN] assign.TryAssign: session %s was no longer Queued", sess.ID)
		return false
	}

	a.capacity.InvalidateTeam(ag.Team)
	log.Printf("[INFO] assign.TryAssign: session %s assigned to agent %s (team=%s)", sess.ID, ag.ID, ag.Team)
	return true
}
