package agent

import (
	"testing"
	"time"
)

func newTestAgent(seniority Seniority) *Agent {
	a := New("agent-test", "Test Agent", seniority, TeamA, ShiftWindow{StartMinute: 0, EndMinute: 24 * 60})
	a.active = true
	a.acceptingNewChats = true
	return a
}

func TestMaxConcurrentDerivation(t *testing.T) {
	cases := map[Seniority]int{
		Junior:   4,
		MidLevel: 6,
		Senior:   8,
		TeamLead: 5,
	}
	for seniority, want := range cases {
		a := newTestAgent(seniority)
		if got := a.MaxConcurrent(); got != want {
			t.Errorf("MaxConcurrent(%s) = %d, want %d", seniority, got, want)
		}
	}
}

func TestTryReserveRespectsCeiling(t *testing.T) {
	a := newTestAgent(Junior) // max 4
	for i := 0; i < 4; i++ {
		if !a.TryReserve() {
			t.Fatalf("reservation %d should have succeeded", i)
		}
	}
	if a.TryReserve() {
		t.Fatal("5th reservation should have failed at the ceiling")
	}
}

func TestReleaseReservationIsSafeNoOp(t *testing.T) {
	a := newTestAgent(Junior)
	a.ReleaseReservation() // no reservation held, must not panic or go negative
	if a.Snapshot().Reserved != 0 {
		t.Fatalf("reserved = %d, want 0", a.Snapshot().Reserved)
	}
}

func TestConfirmReservationRequiresReservation(t *testing.T) {
	a := newTestAgent(MidLevel)
	if a.ConfirmReservation() {
		t.Fatal("confirm should fail with no reservation held")
	}
	a.TryReserve()
	if !a.ConfirmReservation() {
		t.Fatal("confirm should succeed once reserved")
	}
	snap := a.Snapshot()
	if snap.Current != 1 || snap.Reserved != 0 {
		t.Fatalf("snapshot = %+v, want current=1 reserved=0", snap)
	}
}

func TestCompleteChatReleasesCommittedSlot(t *testing.T) {
	a := newTestAgent(Senior)
	a.AssignDirect()
	a.AssignDirect()
	a.CompleteChat()
	if got := a.Snapshot().Current; got != 1 {
		t.Fatalf("current = %d, want 1", got)
	}
	a.CompleteChat()
	a.CompleteChat() // extra complete on empty must be a no-op, not go negative
	if got := a.Snapshot().Current; got != 0 {
		t.Fatalf("current = %d, want 0", got)
	}
}

func TestStillEligibleIgnoresCapacity(t *testing.T) {
	a := newTestAgent(Junior)
	for i := 0; i < 4; i++ {
		a.AssignDirect()
	}
	if a.CanAccept() {
		t.Fatal("agent at ceiling should not CanAccept")
	}
	if !a.StillEligible() {
		t.Fatal("agent at ceiling is still eligible: active and accepting, capacity is not StillEligible's concern")
	}
	a.active = false
	if a.StillEligible() {
		t.Fatal("inactive agent must not be StillEligible")
	}
}

func TestShiftWindowNormalizeWraparound(t *testing.T) {
	w := ShiftWindow{StartMinute: 15*60 + 55, EndMinute: 24*60 + 5}
	start, end, wraps := w.Normalize()
	if !wraps {
		t.Fatal("window crossing midnight should report wraps=true")
	}
	if start != 15*60+55 || end != 5 {
		t.Fatalf("start=%d end=%d, want 955,5", start, end)
	}
}

func TestUpdateShiftStatusHandoffWindow(t *testing.T) {
	a := New("agent-x", "X", Junior, TeamA, ShiftWindow{StartMinute: 0, EndMinute: 60})
	now := time.Date(2026, 1, 1, 0, 55, 0, 0, time.UTC) // 5 minutes before shift end
	a.UpdateShiftStatus(now, 5*time.Minute)
	if !a.Snapshot().Active {
		t.Fatal("agent should still be active 5 minutes before shift end")
	}
	if a.Snapshot().AcceptingNewChats {
		t.Fatal("agent within the handoff window of shift end should not accept new chats")
	}
}
