// Package metrics tracks dispatch-domain counters and gauges and exposes
// them as Prometheus text. Hand-rolled, no client library, the same
// footing the teacher's own metrics package operates on.
package metrics

import (
	"sync"
	"time"
)

// Registry collects dispatch counters and gauges.
type Registry struct {
	mu sync.RWMutex

	sessionsCreated  int64
	sessionsRefused  int64
	sessionsQueued   int64 // gauge, set by SetQueueDepths
	overflowQueued   int64 // gauge
	assignmentsTotal map[string]int64 // keyed "team/seniority"
	timeoutsTotal    int64
	pollsTotal       int64

	startTime time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		assignmentsTotal: make(map[string]int64),
		startTime:        time.Now(),
	}
}

// RecordSessionCreated counts a successful (Queued) CreateSession call.
func (r *Registry) RecordSessionCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionsCreated++
}

// RecordSessionRefused counts a Refused CreateSession call.
func (r *Registry) RecordSessionRefused() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionsRefused++
}

// RecordAssignment counts an assignment to an agent of the given team and
// seniority.
func (r *Registry) RecordAssignment(team, seniority string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignmentsTotal[team+"/"+seniority]++
}

// RecordTimeout counts a session transitioning to Inactive.
func (r *Registry) RecordTimeout() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeoutsTotal++
}

// RecordPoll counts a successful Poll call.
func (r *Registry) RecordPoll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pollsTotal++
}

// SetQueueDepths sets the current main/overflow queue gauges.
func (r *Registry) SetQueueDepths(main, overflow int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionsQueued = int64(main)
	r.overflowQueued = int64(overflow)
}

// AgentUtilization is one agent's point-in-time load, for the utilization
// gauge family.
type AgentUtilization struct {
	AgentID string
	Team    string
	Current int
	Max     int
}

// Snapshot is a point-in-time copy of every tracked metric, plus the
// caller-supplied agent utilization set (computed from the live agent store,
// not cached here).
type Snapshot struct {
	Uptime           int64
	SessionsCreated  int64
	SessionsRefused  int64
	QueueDepthMain   int64
	QueueDepthOver   int64
	AssignmentsTotal map[string]int64
	TimeoutsTotal    int64
	PollsTotal       int64
	AgentUtilization []AgentUtilization
}

// GetSnapshot returns a snapshot of current metrics, attaching util (computed
// by the caller from the live agent store).
func (r *Registry) GetSnapshot(util []AgentUtilization) Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{
		Uptime:           int64(time.Since(r.startTime).Seconds()),
		SessionsCreated:  r.sessionsCreated,
		SessionsRefused:  r.sessionsRefused,
		QueueDepthMain:   r.sessionsQueued,
		QueueDepthOver:   r.overflowQueued,
		AssignmentsTotal: copyMap(r.assignmentsTotal),
		TimeoutsTotal:    r.timeoutsTotal,
		PollsTotal:       r.pollsTotal,
		AgentUtilization: util,
	}
}

func copyMap(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
