// Package timeout inactivates sessions whose client has stopped polling and
// releases the capacity they held.
package timeout

import (
	"log"
	"time"

	"github.com/shiftdesk/chatdispatch/internal/agent"
	"github.com/shiftdesk/chatdispatch/internal/clock"
	"github.com/shiftdesk/chatdispatch/internal/metrics"
	"github.com/shiftdesk/chatdispatch/internal/session"
)

// ExpectedPollInterval is the staleness threshold used by
// incrementMissedForStale.
const ExpectedPollInterval = time.Second

// Service implements processTimeouts().
type Service struct {
	sessions   *session.Store
	agents     *agent.Store
	clock      clock.Clock
	metrics    *metrics.Registry
	staleAfter time.Duration
}

// New builds a Service. staleAfter overrides the default 1s threshold when
// positive.
func New(sessions *session.Store, agents *agent.Store, c clock.Clock, reg *metrics.Registry, staleAfter time.Duration) *Service {
	if staleAfter <= 0 {
		staleAfter = ExpectedPollInterval
	}
	return &Service{sessions: sessions, agents: agents, clock: c, metrics: reg, staleAfter: staleAfter}
}

// ProcessTimeouts runs one monitor tick: increment missed-poll counts for
// every stale monitored session, then inactivate whichever sessions crossed
// the threshold, releasing their agent's capacity.
func (s *Service) ProcessTimeouts() {
	s.incrementMissedForStale()

	timedOut := s.sessions.TimedOut()
	for _, sess := range timedOut {
		agentID, hadAgent := sess.MarkInactive()
		snap := sess.Snapshot()
		log.Printf("[INFO] timeout.ProcessTimeouts: session %s -> Inactive (missedPollCount=%d)", sess.ID, snap.MissedPollCount)
		s.metrics.RecordTimeout()
		if !hadAgent {
			continue
		}
		ag, ok := s.agents.ByID(agentID)
		if !ok {
			log.Printf("[WARN] timeout.ProcessTimeouts: session %s referenced unknown agent %s", sess.ID, agentID)
			continue
		}
		ag.CompleteChat()
	}
}

func (s *Service) incrementMissedForStale() {
	now := s.clock.Now()
	for _, sess := range s.sessions.ActiveForMonitoring() {
		sess.MaybeIncrementMissed(now, s.staleAfter)
	}
}
