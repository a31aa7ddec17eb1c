// Package agent models support agents, their per-agent capacity accounting,
// and the shift windows that drive availability.
package agent

import (
	"log"
	"sync"
	"time"
)

// Seniority ranks an agent's experience tier; it also drives the capacity
// multiplier and the junior-first selection walk.
type Seniority string

const (
	Junior    Seniority = "Junior"
	MidLevel  Seniority = "MidLevel"
	Senior    Seniority = "Senior"
	TeamLead  Seniority = "TeamLead"
)

// SeniorityWalkOrder is the fixed junior-first iteration order used by the
// selector's seniority walk.
var SeniorityWalkOrder = []Seniority{Junior, MidLevel, Senior, TeamLead}

// multiplier returns the seniority capacity coefficient.
func multiplier(s Seniority) float64 {
	switch s {
	case Junior:
		return 0.4
	case MidLevel:
		return 0.6
	case Senior:
		return 0.8
	case TeamLead:
		return 0.5
	default:
		return 0
	}
}

// Team is the roster team an agent belongs to.
type Team string

const (
	TeamA        Team = "TeamA"
	TeamB        Team = "TeamB"
	TeamC        Team = "TeamC"
	TeamOverflow Team = "Overflow"
)

// Teams is the fixed non-overflow team rotation order used by the selector.
var Teams = []Team{TeamA, TeamB, TeamC}

const baseCapacity = 10

// maxConcurrent derives an agent's concurrency ceiling: floor(10 * multiplier(seniority)).
func maxConcurrent(s Seniority) int {
	return int(float64(baseCapacity) * multiplier(s))
}

// ShiftWindow is a daily recurring window expressed in minutes since
// midnight in Location (nil means UTC). End may exceed 24*60 (e.g. Team C's
// 15:55-24:05) to express a window that crosses midnight; callers normalize
// with Normalize().
type ShiftWindow struct {
	StartMinute int
	EndMinute   int
	Location    *time.Location
}

// Normalize returns the window's [start, end) reduced to 0-1439, plus
// whether the window wraps past midnight.
func (w ShiftWindow) Normalize() (start, end int, wraps bool) {
	start = ((w.StartMinute % 1440) + 1440) % 1440
	end = w.EndMinute % 1440
	if end == 0 && w.EndMinute != 0 {
		end = 1440
	}
	wraps = w.EndMinute >= 1440 || end <= start
	return start, end, wraps
}

// Agent is a single support worker. All mutation happens under mu, so every
// operation on one agent is mutually exclusive with every other operation on
// that same agent.
type Agent struct {
	mu sync.Mutex

	ID        string
	Name      string
	Seniority Seniority
	Team      Team

	Shift ShiftWindow

	active            bool
	acceptingNewChats bool
	current           int
	reserved          int
}

// New constructs an agent with a shift window. Shift flags start false and
// are populated by the first ShiftManager.UpdateStatus call.
func New(id, name string, seniority Seniority, team Team, shift ShiftWindow) *Agent {
	return &Agent{
		ID:        id,
		Name:      name,
		Seniority: seniority,
		Team:      team,
		Shift:     shift,
	}
}

// MaxConcurrent is the derived per-agent concurrency ceiling.
func (a *Agent) MaxConcurrent() int {
	return maxConcurrent(a.Seniority)
}

// Snapshot is an immutable copy of an agent's mutable state, safe to read
// without holding the agent's lock.
type Snapshot struct {
	ID                string
	Name              string
	Seniority         Seniority
	Team              Team
	Active            bool
	AcceptingNewChats bool
	Current           int
	Reserved          int
	MaxConcurrent     int
	Available         int
}

// Snapshot copies the agent's current state.
func (a *Agent) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Agent) snapshotLocked() Snapshot {
	max := a.MaxConcurrent()
	avail := max - a.current - a.reserved
	if avail < 0 {
		avail = 0
	}
	return Snapshot{
		ID:                a.ID,
		Name:              a.Name,
		Seniority:         a.Seniority,
		Team:              a.Team,
		Active:            a.active,
		AcceptingNewChats: a.acceptingNewChats,
		Current:           a.current,
		Reserved:          a.reserved,
		MaxConcurrent:     max,
		Available:         avail,
	}
}

// canAcceptLocked is the acceptance predicate: active, accepting,
// and strictly under the concurrency ceiling. Caller must hold a.mu.
func (a *Agent) canAcceptLocked() bool {
	return a.active && a.acceptingNewChats && a.current+a.reserved < a.MaxConcurrent()
}

// CanAccept reports whether the agent could currently accept a new chat.
func (a *Agent) CanAccept() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.canAcceptLocked()
}

// StillEligible reports whether the agent is still active and accepting new
// chats, without re-checking the capacity ceiling. The Assigner calls this
// right before committing a reservation made earlier in the same tick: by
// that point the reservation has already consumed the capacity it needs, so
// re-running the full canAccept predicate here would spuriously fail every
// assignment that fills an agent to its last slot.
func (a *Agent) StillEligible() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active && a.acceptingNewChats
}

// TryReserve holds one unit of capacity if the acceptance predicate holds.
func (a *Agent) TryReserve() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.canAcceptLocked() {
		return false
	}
	a.reserved++
	log.Printf("[DEBUG] Agent.TryReserve: %s reserved (current=%d reserved=%d max=%d)", a.ID, a.current, a.reserved, a.MaxConcurrent())
	return true
}

// ReleaseReservation gives back one reserved unit, a safe no-op if none held.
func (a *Agent) ReleaseReservation() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.reserved > 0 {
		a.reserved--
		log.Printf("[DEBUG] Agent.ReleaseReservation: %s released (current=%d reserved=%d)", a.ID, a.current, a.reserved)
	}
}

// ConfirmReservation converts one reserved unit into a committed chat.
func (a *Agent) ConfirmReservation() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.reserved <= 0 {
		return false
	}
	a.reserved--
	a.current++
	log.Printf("[INFO] Agent.ConfirmReservation: %s committed (current=%d reserved=%d)", a.ID, a.current, a.reserved)
	return true
}

// AssignDirect commits a chat without a prior reservation, if capacity allows.
func (a *Agent) AssignDirect() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.canAcceptLocked() {
		return false
	}
	a.current++
	log.Printf("[INFO] Agent.AssignDirect: %s committed directly (current=%d)", a.ID, a.current)
	return true
}

// CompleteChat releases one committed chat slot.
func (a *Agent) CompleteChat() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current > 0 {
		a.current--
		log.Printf("[INFO] Agent.CompleteChat: %s released (current=%d)", a.ID, a.current)
	}
}

// UpdateShiftStatus recomputes active/acceptingNewChats from the shift window
// relative to now. now is interpreted in the shift's Location (UTC when nil).
func (a *Agent) UpdateShiftStatus(now time.Time, handoff time.Duration) {
	if a.Shift.Location != nil {
		now = now.In(a.Shift.Location)
	} else {
		now = now.UTC()
	}
	nowMin := now.Hour()*60 + now.Minute()

	start, end, wraps := a.Shift.Normalize()

	var active bool
	var minutesToEnd int
	if wraps {
		active = nowMin >= start || nowMin < end
		if nowMin >= start {
			minutesToEnd = (1440 - nowMin) + end
		} else {
			minutesToEnd = end - nowMin
		}
	} else {
		active = nowMin >= start && nowMin < end
		minutesToEnd = end - nowMin
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = active
	a.acceptingNewChats = active && time.Duration(minutesToEnd)*time.Minute > handoff
}
