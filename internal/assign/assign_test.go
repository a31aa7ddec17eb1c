package assign

import (
	"testing"
	"time"

	"github.com/shiftdesk/chatdispatch/internal/agent"
	"github.com/shiftdesk/chatdispatch/internal/bizhours"
	"github.com/shiftdesk/chatdispatch/internal/capacity"
	"github.com/shiftdesk/chatdispatch/internal/clock"
	"github.com/shiftdesk/chatdispatch/internal/session"
)

func noopSleep(time.Duration) {}

func activeAgent(id string, seniority agent.Seniority) *agent.Agent {
	a := agent.New(id, id, seniority, agent.TeamA, agent.ShiftWindow{StartMinute: 0, EndMinute: 24 * 60})
	a.UpdateShiftStatus(time.Now(), 0)
	return a
}

func newAssigner() (*Assigner, *session.Store) {
	agents := agent.NewStore(nil)
	sessions := session.NewStore()
	hours := bizhours.New(clock.RealClock{})
	cap := capacity.New(agents, sessions, hours, 1.5)
	a := New(sessions, cap, clock.RealClock{}).WithSleep(noopSleep)
	return a, sessions
}

func TestTryAssignCommitsReservation(t *testing.T) {
	a, sessions := newAssigner()
	ag := activeAgent("agent-1", agent.Junior)
	sess := session.New("sess-1", "user-1", time.Now())
	sessions.Insert(sess)
	ag.TryReserve()

	if !a.TryAssign(sess, ag) {
		t.Fatal("TryAssign should succeed for a reserved, eligible agent and a Queued session")
	}
	if sess.Snapshot().Status != session.Assigned {
		t.Fatalf("status = %s, want Assigned", sess.Snapshot().Status)
	}
	if ag.Snapshot().Current != 1 || ag.Snapshot().Reserved != 0 {
		t.Fatalf("agent snapshot = %+v, want current=1 reserved=0", ag.Snapshot())
	}
}

func TestTryAssignReleasesWhenAgentNoLongerEligible(t *testing.T) {
	a, sessions := newAssigner()
	ag := activeAgent("agent-1", agent.Junior)
	sess := session.New("sess-1", "user-1", time.Now())
	sessions.Insert(sess)
	ag.TryReserve()
	ag.UpdateShiftStatus(time.Now(), 0)
	// Force the agent to go off-shift between reservation and commit.
	offShift := agent.New("agent-1", "agent-1", agent.Junior, agent.TeamA, agent.ShiftWindow{StartMinute: 0, EndMinute: 1})
	offShift.UpdateShiftStatus(time.Now().Add(2*time.Hour), 0)
	offShift.TryReserve() // no-op, not eligible

	if a.TryAssign(sess, offShift) {
		t.Fatal("TryAssign must fail once the agent is no longer active/accepting")
	}
	if sess.Snapshot().Status != session.Queued {
		t.Fatal("session must remain Queued when the agent became ineligible before commit")
	}
	if offShift.Snapshot().Reserved != 0 {
		t.Fatal("the reservation must be released on the ineligible-agent path")
	}
}

func TestTryAssignFailsWhenSessionNoLongerQueued(t *testing.T) {
	a, sessions := newAssigner()
	ag := activeAgent("agent-1", agent.Junior)
	sess := session.New("sess-1", "user-1", time.Now())
	sessions.Insert(sess)
	sess.AssignToAgent("other-agent", time.Now()) // already assigned elsewhere
	ag.TryReserve()

	if a.TryAssign(sess, ag) {
		t.Fatal("TryAssign must fail when the session is no longer Queued")
	}
	if ag.Snapshot().Reserved != 0 {
		t.Fatal("the reservation must be released when the session can't be committed")
	}
}
