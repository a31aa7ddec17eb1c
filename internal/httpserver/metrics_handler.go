package httpserver

import (
	"net/http"

	"github.com/shiftdesk/chatdispatch/internal/metrics"
)

// handleMetrics implements GET /metrics: Prometheus text exposition over the
// live registry, with agent utilization computed fresh from the roster
//.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	agents := s.agents.All()
	util := make([]metrics.AgentUtilization, 0, len(agents))
	for _, a := range agents {
		snap := a.Snapshot()
		util = append(util, metrics.AgentUtilization{
			AgentID: snap.ID,
			Team:    string(snap.Team),
			Current: snap.Current + snap.Reserved,
			Max:     snap.MaxConcurrent,
		})
	}

	s.metrics.SetQueueDepths(s.sessions.QueueLength(), s.sessions.OverflowQueueLength())
	snap := s.metrics.GetSnapshot(util)
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(metrics.FormatPrometheus(snap)))
}
