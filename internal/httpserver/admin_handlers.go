package httpserver

import (
	"net/http"

	"github.com/shiftdesk/chatdispatch/internal/agent"
)

type agentView struct {
	AgentID           string `json:"agentId"`
	Name              string `json:"name"`
	Team              string `json:"team"`
	Seniority         string `json:"seniority"`
	Active            bool   `json:"active"`
	AcceptingNewChats bool   `json:"acceptingNewChats"`
	Current           int    `json:"current"`
	Reserved          int    `json:"reserved"`
	MaxConcurrent     int    `json:"maxConcurrent"`
}

func toAgentView(snap agent.Snapshot) agentView {
	return agentView{
		AgentID:           snap.ID,
		Name:              snap.Name,
		Team:              string(snap.Team),
		Seniority:         string(snap.Seniority),
		Active:            snap.Active,
		AcceptingNewChats: snap.AcceptingNewChats,
		Current:           snap.Current,
		Reserved:          snap.Reserved,
		MaxConcurrent:     snap.MaxConcurrent,
	}
}

// handleAdminSessions implements GET /api/Chat/admin/sessions: every session
// ever created, in createdAt order.
func (s *Server) handleAdminSessions(w http.ResponseWriter, r *http.Request) {
	all := s.sessions.All()
	out := make([]sessionResponse, 0, len(all))
	for _, sess := range all {
		out = append(out, s.toResponse(sess.Snapshot()))
	}
	s.respondJSON(w, http.StatusOK, out)
}

// handleAdminQueueStatus implements GET /api/Chat/admin/queue-status: queue
// depths and per-agent utilization.
func (s *Server) handleAdminQueueStatus(w http.ResponseWriter, r *http.Request) {
	agents := s.agents.All()
	views := make([]agentView, 0, len(agents))
	for _, a := range agents {
		views = append(views, toAgentView(a.Snapshot()))
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"mainQueueLength":     s.sessions.QueueLength(),
		"overflowQueueLength": s.sessions.OverflowQueueLength(),
		"canAccept":           s.facade.CanAccept(),
		"agents":              views,
	})
}

// handleAdminSessionsActive implements GET /api/Chat/admin/sessions/active:
// every session in {Queued, Assigned, Active}.
func (s *Server) handleAdminSessionsActive(w http.ResponseWriter, r *http.Request) {
	active := s.sessions.ActiveForMonitoring()
	out := make([]sessionResponse, 0, len(active))
	for _, sess := range active {
		out = append(out, s.toResponse(sess.Snapshot()))
	}
	s.respondJSON(w, http.StatusOK, out)
}

// handleAdminSessionsInactive implements GET /api/Chat/admin/sessions/inactive.
func (s *Server) handleAdminSessionsInactive(w http.ResponseWriter, r *http.Request) {
	inactive := s.sessions.Inactive()
	out := make([]sessionResponse, 0, len(inactive))
	for _, sess := range inactive {
		out = append(out, s.toResponse(sess.Snapshot()))
	}
	s.respondJSON(w, http.StatusOK, out)
}
