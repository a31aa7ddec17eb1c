package session

import (
	"testing"
	"time"
)

func TestActiveByUserIsIdempotentSlot(t *testing.T) {
	st := NewStore()
	now := time.Now()
	s := New("sess-1", "user-1", now)
	st.Insert(s)

	got, ok := st.ActiveByUser("user-1")
	if !ok || got.ID != "sess-1" {
		t.Fatalf("ActiveByUser = (%v, %v), want (sess-1, true)", got, ok)
	}

	s.MarkInactive()
	if _, ok := st.ActiveByUser("user-1"); ok {
		t.Fatal("an Inactive session must not occupy the active-per-user slot")
	}
}

func TestQueuedMainExcludesOverflow(t *testing.T) {
	st := NewStore()
	now := time.Now()
	main := New("sess-main", "user-1", now)
	overflow := New("sess-overflow", "user-2", now.Add(time.Millisecond))
	overflow.PromoteToOverflow()
	st.Insert(main)
	st.Insert(overflow)

	if got := st.QueuedMain(); len(got) != 1 || got[0].ID != "sess-main" {
		t.Fatalf("QueuedMain = %v, want [sess-main]", got)
	}
	if got := st.QueuedOverflow(); len(got) != 1 || got[0].ID != "sess-overflow" {
		t.Fatalf("QueuedOverflow = %v, want [sess-overflow]", got)
	}
}

func TestQueuePositionOrdersByCreatedAt(t *testing.T) {
	st := NewStore()
	base := time.Now()
	first := New("sess-1", "user-1", base)
	second := New("sess-2", "user-2", base.Add(time.Second))
	st.Insert(second) // inserted out of createdAt order
	st.Insert(first)

	if pos := st.QueuePosition("sess-1"); pos != 1 {
		t.Fatalf("QueuePosition(sess-1) = %d, want 1", pos)
	}
	if pos := st.QueuePosition("sess-2"); pos != 2 {
		t.Fatalf("QueuePosition(sess-2) = %d, want 2", pos)
	}
}

func TestQueuePositionZeroWhenNotQueued(t *testing.T) {
	st := NewStore()
	s := New("sess-1", "user-1", time.Now())
	s.AssignToAgent("agent-1", time.Now())
	st.Insert(s)
	if pos := st.QueuePosition("sess-1"); pos != 0 {
		t.Fatalf("QueuePosition on an Assigned session = %d, want 0", pos)
	}
	if pos := st.QueuePosition("does-not-exist"); pos != 0 {
		t.Fatalf("QueuePosition on unknown id = %d, want 0", pos)
	}
}

func TestTimedOutAndActiveForMonitoring(t *testing.T) {
	st := NewStore()
	now := time.Now()
	stale := New("sess-stale", "user-1", now)
	stale.AssignToAgent("agent-1", now)
	for i := 0; i < MissedPollThreshold; i++ {
		stale.MaybeIncrementMissed(now.Add(time.Duration(i+1)*2*time.Second), time.Second)
	}
	fresh := New("sess-fresh", "user-2", now.Add(time.Millisecond))
	st.Insert(stale)
	st.Insert(fresh)

	timedOut := st.TimedOut()
	if len(timedOut) != 1 || timedOut[0].ID != "sess-stale" {
		t.Fatalf("TimedOut = %v, want [sess-stale]", timedOut)
	}

	monitoring := st.ActiveForMonitoring()
	if len(monitoring) != 2 {
		t.Fatalf("ActiveForMonitoring = %d sessions, want 2", len(monitoring))
	}
}
