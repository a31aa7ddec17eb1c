package session

import (
	"testing"
	"time"
)

func TestNewSessionIsQueued(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New("sess-1", "user-1", now)
	snap := s.Snapshot()
	if snap.Status != Queued {
		t.Fatalf("status = %s, want Queued", snap.Status)
	}
	if snap.IsInOverflow {
		t.Fatal("new session should not start in overflow")
	}
}

func TestAssignToAgentOnlyFromQueued(t *testing.T) {
	now := time.Now()
	s := New("sess-1", "user-1", now)
	if !s.AssignToAgent("agent-1", now.Add(time.Second)) {
		t.Fatal("assigning a Queued session should succeed")
	}
	if s.AssignToAgent("agent-2", now.Add(2*time.Second)) {
		t.Fatal("assigning an already-Assigned session should fail")
	}
	snap := s.Snapshot()
	if snap.AssignedAgentID != "agent-1" {
		t.Fatalf("assignedAgentID = %s, want agent-1", snap.AssignedAgentID)
	}
}

func TestRecordPollIncrementsCountAndResetsMissed(t *testing.T) {
	now := time.Now()
	s := New("sess-1", "user-1", now)
	s.AssignToAgent("agent-1", now)
	s.MaybeIncrementMissed(now.Add(2*time.Second), time.Second)
	if s.Snapshot().MissedPollCount == 0 {
		t.Fatal("missed poll count should have incremented after a stale gap")
	}
	s.RecordPoll(now.Add(3 * time.Second))
	snap := s.Snapshot()
	if snap.PollCount != 1 {
		t.Fatalf("pollCount = %d, want 1", snap.PollCount)
	}
	if snap.MissedPollCount != 0 {
		t.Fatalf("missedPollCount = %d, want 0 after a poll", snap.MissedPollCount)
	}
}

func TestMaybeIncrementMissedReachesThreshold(t *testing.T) {
	now := time.Now()
	s := New("sess-1", "user-1", now)
	s.AssignToAgent("agent-1", now)
	for i := 1; i <= MissedPollThreshold; i++ {
		s.MaybeIncrementMissed(now.Add(time.Duration(i)*2*time.Second), time.Second)
	}
	if !s.IsTimedOut() {
		t.Fatal("session should be timed out once missed count reaches the threshold")
	}
}

func TestMarkInactiveReturnsAssignedAgent(t *testing.T) {
	now := time.Now()
	s := New("sess-1", "user-1", now)
	s.AssignToAgent("agent-1", now)
	agentID, hadAgent := s.MarkInactive()
	if !hadAgent || agentID != "agent-1" {
		t.Fatalf("MarkInactive() = (%s, %v), want (agent-1, true)", agentID, hadAgent)
	}
	if s.Snapshot().Status != Inactive {
		t.Fatalf("status = %s, want Inactive", s.Snapshot().Status)
	}
}

func TestMarkInactiveWithoutAgent(t *testing.T) {
	now := time.Now()
	s := New("sess-1", "user-1", now) // still Queued, never assigned
	_, hadAgent := s.MarkInactive()
	if hadAgent {
		t.Fatal("a queued session has no agent to release")
	}
}

func TestPromoteToOverflowOnlyFromMainQueue(t *testing.T) {
	now := time.Now()
	s := New("sess-1", "user-1", now)
	if !s.PromoteToOverflow() {
		t.Fatal("a queued main-pool session should promote to overflow")
	}
	if s.PromoteToOverflow() {
		t.Fatal("a session already in overflow should not promote again")
	}
	if !s.Snapshot().IsInOverflow {
		t.Fatal("session should be marked isInOverflow after promotion")
	}
}

func TestRefusedSessionIsTerminal(t *testing.T) {
	now := time.Now()
	s := NewRefused("sess-1", "user-1", now)
	if s.Snapshot().Status != Refused {
		t.Fatalf("status = %s, want Refused", s.Snapshot().Status)
	}
	if s.AssignToAgent("agent-1", now) {
		t.Fatal("a Refused session must never be assignable")
	}
}
