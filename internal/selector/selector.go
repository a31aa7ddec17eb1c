// Package selector picks which agent should receive the next chat, using
// round-robin rotation across teams and a junior-first seniority walk within
// a team.
package selector

import (
	"log"

	"github.com/shiftdesk/chatdispatch/internal/agent"
	"github.com/shiftdesk/chatdispatch/internal/roundrobin"
	"github.com/shiftdesk/chatdispatch/internal/session"
)

// Selector picks agents for queued sessions using the teacher's round-robin
// coordinator plus a seniority-ordered tie-break walk.
type Selector struct {
	store *agent.Store
	rr    *roundrobin.Coordinator
}

// New builds a Selector bound to store and a shared round-robin coordinator.
func New(store *agent.Store, rr *roundrobin.Coordinator) *Selector {
	return &Selector{store: store, rr: rr}
}

// SelectNext picks a single candidate agent. If useOverflow
// is true, the pick is restricted to the Overflow team and rotates over every
// accepting Overflow agent on the team_Overflow key; otherwise a core team
// is chosen by round robin and the seniority walk runs inside it.
func (s *Selector) SelectNext(useOverflow bool) (*agent.Agent, bool) {
	if useOverflow {
		candidates := s.acceptingIn(agent.TeamOverflow)
		if len(candidates) == 0 {
			return nil, false
		}
		idx, err := s.rr.Next(roundrobin.TeamKey(string(agent.TeamOverflow)), len(candidates))
		if err != nil {
			log.Printf("[ERROR] selector.SelectNext: overflow rotation failed: %v", err)
			return nil, false
		}
		return candidates[idx], true
	}

	idx, err := s.rr.Next(roundrobin.TeamRotationKey, len(agent.Teams))
	if err != nil {
		log.Printf("[ERROR] selector.SelectNext: team rotation failed: %v", err)
		return nil, false
	}
	team := agent.Teams[idx]
	return s.pickFromTeam(team)
}

// pickFromTeam runs the seniority walk against a specific team's candidates.
func (s *Selector) pickFromTeam(team agent.Team) (*agent.Agent, bool) {
	candidates := s.acceptingIn(team)
	return s.seniorityWalk(team, candidates)
}

// acceptingIn returns every agent in team currently able to accept a chat.
func (s *Selector) acceptingIn(team agent.Team) []*agent.Agent {
	var out []*agent.Agent
	for _, a := range s.store.ByTeam(team) {
		if a.CanAccept() {
			out = append(out, a)
		}
	}
	return out
}

// seniorityWalk implements the junior-first tie-break walk.
func (s *Selector) seniorityWalk(team agent.Team, candidates []*agent.Agent) (*agent.Agent, bool) {
	for _, sen := range agent.SeniorityWalkOrder {
		var cohort []*agent.Agent
		for _, a := range candidates {
			if a.Seniority == sen {
				cohort = append(cohort, a)
			}
		}
		if len(cohort) == 0 {
			continue
		}

		maxAvail := -1
		for _, a := range cohort {
			if avail := a.Snapshot().Available; avail > maxAvail {
				maxAvail = avail
			}
		}
		if maxAvail <= 0 {
			continue
		}

		var top []*agent.Agent
		for _, a := range cohort {
			if a.Snapshot().Available == maxAvail {
				top = append(top, a)
			}
		}

		key := roundrobin.TeamSeniorityKey(string(team), string(sen))
		idx, err := s.rr.Next(key, len(top))
		if err != nil {
			log.Printf("[ERROR] selector.seniorityWalk: round robin failed for %s: %v", key, err)
			return nil, false
		}
		return top[idx], true
	}
	return nil, false
}

// Assignment pairs a session with the agent chosen for it, with a reservation
// already held on that agent.
type Assignment struct {
	Session *session.ChatSession
	Agent   *agent.Agent
}

// CreateOptimalAssignments implements the dispatcher's batch optimizer.
// Agents are filtered to those currently able to accept, bucketed by team,
// and offered to sessions in order using a local team-rotation index that
// advances past whichever team was just used. teams is the rotation order
// to walk for each session; callers pass agent.Teams for the main queue and
// a single-element Overflow slice for the overflow queue, so the rotation
// only ever visits buckets that candidateAgents could actually populate.
// Every returned Assignment holds a live reservation on its Agent; the
// caller must commit or release each one.
func CreateOptimalAssignments(sessions []*session.ChatSession, candidateAgents []*agent.Agent, teams []agent.Team, rr *roundrobin.Coordinator) []Assignment {
	buckets := make(map[agent.Team][]*agent.Agent)
	for _, a := range candidateAgents {
		if a.CanAccept() {
			buckets[a.Team] = append(buckets[a.Team], a)
		}
	}

	localSel := &Selector{rr: rr}
	teamIndex := 0
	var out []Assignment

	for _, sess := range sessions {
		assigned := false
		for i := 0; i < len(teams); i++ {
			team := teams[(teamIndex+i)%len(teams)]
			a, ok := localSel.seniorityWalk(team, buckets[team])
			if !ok {
				continue
			}
			if !a.TryReserve() {
				// Agent lost capacity between the walk and the reserve; abandon
				// this session for the rest of this tick rather than retrying
				// it against another team.
				break
			}
			out = append(out, Assignment{Session: sess, Agent: a})
			pickedOffset := i
			teamIndex = (teamIndex + pickedOffset + 1) % len(teams)
			assigned = true
			break
		}
		if !assigned {
			log.Printf("[DEBUG] selector.CreateOptimalAssignments: no capacity found for session %s this tick", sess.ID)
		}
	}
	return out
}
