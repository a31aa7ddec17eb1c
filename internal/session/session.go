// Package session models chat sessions, their state machine, and the two
// FIFO queues (main and overflow) sessions wait in before assignment.
package session

import (
	"sync"
	"time"
)

// Status is a ChatSession's lifecycle state.
type Status string

const (
	Queued    Status = "Queued"
	Assigned  Status = "Assigned"
	Active    Status = "Active"
	Inactive  Status = "Inactive"
	Completed Status = "Completed"
	Refused   Status = "Refused"
)

// MissedPollThreshold is the missed-poll count at which a session is
// declared Inactive by the timeout service.
const MissedPollThreshold = 3

// ChatSession is a single user's chat request and its progress through the
// queue/assignment pipeline. All mutation happens under mu.
type ChatSession struct {
	mu sync.Mutex

	ID     string
	UserID string

	status Status

	createdAt    time.Time
	assignedAt   time.Time
	lastPolledAt time.Time

	assignedAgentID string
	pollCount       int
	missedPollCount int
	isInOverflow    bool
}

// New creates a Queued session for userId at now.
func New(id, userID string, now time.Time) *ChatSession {
	return &ChatSession{
		ID:           id,
		UserID:       userID,
		status:       Queued,
		createdAt:    now,
		lastPolledAt: now,
	}
}

// NewRefused creates a terminal Refused session (admission denied).
func NewRefused(id, userID string, now time.Time) *ChatSession {
	return &ChatSession{
		ID:           id,
		UserID:       userID,
		status:       Refused,
		createdAt:    now,
		lastPolledAt: now,
	}
}

// Snapshot is an immutable copy of a session's state.
type Snapshot struct {
	ID              string
	UserID          string
	Status          Status
	CreatedAt       time.Time
	AssignedAt      time.Time
	LastPolledAt    time.Time
	AssignedAgentID string
	PollCount       int
	MissedPollCount int
	IsInOverflow    bool
}

// Snapshot copies the session's current state.
func (s *ChatSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ChatSession) snapshotLocked() Snapshot {
	return Snapshot{
		ID:              s.ID,
		UserID:          s.UserID,
		Status:          s.status,
		CreatedAt:       s.createdAt,
		AssignedAt:      s.assignedAt,
		LastPolledAt:    s.lastPolledAt,
		AssignedAgentID: s.assignedAgentID,
		PollCount:       s.pollCount,
		MissedPollCount: s.missedPollCount,
		IsInOverflow:    s.isInOverflow,
	}
}

// IsActiveStatus reports whether status counts as "has an active session"
// for the one-active-session-per-userId invariant.
func IsActiveStatus(st Status) bool {
	switch st {
	case Queued, Assigned, Active:
		return true
	default:
		return false
	}
}

// AssignToAgent transitions Queued -> Assigned, recording agentID and now.
// Fails (returns false) unless the session is currently Queued.
func (s *ChatSession) AssignToAgent(agentID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != Queued {
		return false
	}
	s.status = Assigned
	s.assignedAgentID = agentID
	s.assignedAt = now
	s.isInOverflow = false
	return true
}

// RecordPoll applies Poll's session-side effects: refresh
// lastPolledAt, increment pollCount, clear missedPollCount, and promote
// Assigned -> Active on first poll after assignment.
func (s *ChatSession) RecordPoll(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPolledAt = now
	s.pollCount++
	s.missedPollCount = 0
	if s.status == Assigned {
		s.status = Active
	}
}

// MaybeIncrementMissed increments missedPollCount if now-lastPolledAt >= staleAfter
// and the session is still in a monitored status, as one atomic check+increment
//. Returns the new missedPollCount.
func (s *ChatSession) MaybeIncrementMissed(now time.Time, staleAfter time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !isMonitoredLocked(s.status) {
		return s.missedPollCount
	}
	if now.Sub(s.lastPolledAt) >= staleAfter {
		s.missedPollCount++
	}
	return s.missedPollCount
}

func isMonitoredLocked(st Status) bool {
	switch st {
	case Queued, Assigned, Active:
		return true
	default:
		return false
	}
}

// IsTimedOut reports whether the session is Assigned or Active with
// missedPollCount at or past the threshold.
func (s *ChatSession) IsTimedOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != Assigned && s.status != Active {
		return false
	}
	return s.missedPollCount >= MissedPollThreshold
}

// MarkInactive transitions the session to Inactive and returns the agent id
// that had been assigned, if any, so the caller can release its capacity.
func (s *ChatSession) MarkInactive() (agentID string, hadAgent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Inactive
	if s.assignedAgentID == "" {
		return "", false
	}
	return s.assignedAgentID, true
}

// PromoteToOverflow flips isInOverflow=true, preserving createdAt, for a
// still-Queued main-queue session. Fails if no longer Queued or already in
// overflow.
func (s *ChatSession) PromoteToOverflow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != Queued || s.isInOverflow {
		return false
	}
	s.isInOverflow = true
	return true
}

// CreatedAt returns the immutable creation instant, used for FIFO ordering.
func (s *ChatSession) CreatedAt() time.Time {
	return s.createdAt
}
