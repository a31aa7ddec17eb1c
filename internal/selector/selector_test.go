package selector

import (
	"testing"
	"time"

	"github.com/shiftdesk/chatdispatch/internal/agent"
	"github.com/shiftdesk/chatdispatch/internal/roundrobin"
	"github.com/shiftdesk/chatdispatch/internal/session"
)

func activeAgent(id string, seniority agent.Seniority, team agent.Team) *agent.Agent {
	a := agent.New(id, id, seniority, team, agent.ShiftWindow{StartMinute: 0, EndMinute: 24 * 60})
	a.UpdateShiftStatus(time.Now(), 0)
	return a
}

func TestSeniorityWalkPrefersJuniors(t *testing.T) {
	junior := activeAgent("junior", agent.Junior, agent.TeamA)
	senior := activeAgent("senior", agent.Senior, agent.TeamA)
	store := agent.NewStore([]*agent.Agent{junior, senior})
	sel := New(store, roundrobin.New())

	picked, ok := sel.SelectNext(false)
	if !ok {
		t.Fatal("expected a pick when both agents can accept")
	}
	if picked.Seniority != agent.Junior {
		t.Fatalf("picked seniority = %s, want Junior (junior-first walk)", picked.Seniority)
	}
}

func TestSeniorityWalkFallsBackWhenJuniorsFull(t *testing.T) {
	junior := activeAgent("junior", agent.Junior, agent.TeamA)
	for junior.CanAccept() {
		junior.AssignDirect()
	}
	midlevel := activeAgent("midlevel", agent.MidLevel, agent.TeamA)
	store := agent.NewStore([]*agent.Agent{junior, midlevel})
	sel := New(store, roundrobin.New())

	picked, ok := sel.SelectNext(false)
	if !ok {
		t.Fatal("expected a pick from the next seniority tier")
	}
	if picked.ID != "midlevel" {
		t.Fatalf("picked = %s, want midlevel once juniors are saturated", picked.ID)
	}
}

func TestSelectNextOverflowRestrictsToOverflowTeam(t *testing.T) {
	core := activeAgent("core", agent.Junior, agent.TeamA)
	overflow := activeAgent("overflow", agent.Junior, agent.TeamOverflow)
	store := agent.NewStore([]*agent.Agent{core, overflow})
	sel := New(store, roundrobin.New())

	picked, ok := sel.SelectNext(true)
	if !ok {
		t.Fatal("expected an overflow pick")
	}
	if picked.Team != agent.TeamOverflow {
		t.Fatalf("picked team = %s, want Overflow", picked.Team)
	}
}

func TestCreateOptimalAssignmentsHoldsReservations(t *testing.T) {
	a1 := activeAgent("a1", agent.Junior, agent.TeamA)
	sessions := []*session.ChatSession{
		session.New("sess-1", "user-1", time.Now()),
	}
	assignments := CreateOptimalAssignments(sessions, []*agent.Agent{a1}, agent.Teams, roundrobin.New())
	if len(assignments) != 1 {
		t.Fatalf("len(assignments) = %d, want 1", len(assignments))
	}
	if assignments[0].Agent.Snapshot().Reserved != 1 {
		t.Fatal("CreateOptimalAssignments must leave a live reservation for the caller to commit or release")
	}
}

func TestCreateOptimalAssignmentsSkipsSessionWhenNoCapacity(t *testing.T) {
	sessions := []*session.ChatSession{
		session.New("sess-1", "user-1", time.Now()),
	}
	assignments := CreateOptimalAssignments(sessions, nil, agent.Teams, roundrobin.New())
	if len(assignments) != 0 {
		t.Fatalf("len(assignments) = %d, want 0 with no candidate agents", len(assignments))
	}
}

func TestCreateOptimalAssignmentsDispatchesOverflowOnlyCandidates(t *testing.T) {
	overflow1 := activeAgent("overflow-1", agent.Junior, agent.TeamOverflow)
	overflow2 := activeAgent("overflow-2", agent.Senior, agent.TeamOverflow)
	sessions := []*session.ChatSession{
		session.New("sess-1", "user-1", time.Now()),
		session.New("sess-2", "user-2", time.Now()),
	}

	assignments := CreateOptimalAssignments(
		sessions,
		[]*agent.Agent{overflow1, overflow2},
		[]agent.Team{agent.TeamOverflow},
		roundrobin.New(),
	)

	if len(assignments) != 2 {
		t.Fatalf("len(assignments) = %d, want 2 (both sessions assigned to Overflow agents)", len(assignments))
	}
	for _, a := range assignments {
		if a.Agent.Team != agent.TeamOverflow {
			t.Fatalf("assignment agent team = %s, want Overflow", a.Agent.Team)
		}
	}
}
