package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shiftdesk/chatdispatch/internal/dispatchcore"
	"github.com/shiftdesk/chatdispatch/internal/session"
)

type createRequest struct {
	UserID string `json:"userId"`
}

type sessionResponse struct {
	SessionID       string  `json:"sessionId"`
	UserID          string  `json:"userId"`
	Status          string  `json:"status"`
	AssignedAgentID string  `json:"assignedAgentId,omitempty"`
	QueuePosition   int     `json:"queuePosition,omitempty"`
	EstimatedWaitS  float64 `json:"estimatedWaitSeconds,omitempty"`
	PollCount       int     `json:"pollCount"`
	MissedPollCount int     `json:"missedPollCount"`
}

func (s *Server) toResponse(snap session.Snapshot) sessionResponse {
	resp := sessionResponse{
		SessionID:       snap.ID,
		UserID:          snap.UserID,
		Status:          string(snap.Status),
		AssignedAgentID: snap.AssignedAgentID,
		PollCount:       snap.PollCount,
		MissedPollCount: snap.MissedPollCount,
	}
	if snap.Status == session.Queued {
		resp.QueuePosition = s.facade.QueuePosition(snap.ID)
		if wait := s.facade.EstimatedWait(snap.ID); wait != nil {
			resp.EstimatedWaitS = wait.Seconds()
		}
	}
	return resp
}

// handleCreate implements POST /api/Chat/create.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	snap, err := s.facade.CreateSession(req.UserID)
	if err != nil {
		if derr, ok := err.(*dispatchcore.Error); ok {
			s.respondError(w, statusForKind(derr.Kind), derr)
			return
		}
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}

	switch snap.Status {
	case session.Refused:
		s.metrics.RecordSessionRefused()
	default:
		s.metrics.RecordSessionCreated()
	}

	status := http.StatusCreated
	if snap.Status == session.Refused {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, s.toResponse(snap))
}

// handlePoll implements POST /api/Chat/{sessionId}/poll.
func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	snap, ok := s.facade.Poll(sessionID)
	if !ok {
		s.respondError(w, http.StatusNotFound, &dispatchcore.Error{
			Kind:    dispatchcore.NotFound,
			Message: fmt.Sprintf("session %s not found", sessionID),
		})
		return
	}
	s.metrics.RecordPoll()
	s.respondJSON(w, http.StatusOK, s.toResponse(snap))
}

// handleHealth implements GET /api/Chat/health: liveness plus whether new
// chats are currently admitted.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"isHealthy":         true,
		"canAcceptNewChats": s.facade.CanAccept(),
		"timestamp":         nowISO(),
	})
}
