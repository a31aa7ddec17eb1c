// Package dispatch runs the periodic dispatcher and monitor loops that drive
// sessions from Queued through Assigned and eventually Inactive.
package dispatch

import (
	"context"
	"log"
	"time"

	"github.com/shiftdesk/chatdispatch/internal/agent"
	"github.com/shiftdesk/chatdispatch/internal/assign"
	"github.com/shiftdesk/chatdispatch/internal/bizhours"
	"github.com/shiftdesk/chatdispatch/internal/metrics"
	"github.com/shiftdesk/chatdispatch/internal/roundrobin"
	"github.com/shiftdesk/chatdispatch/internal/selector"
	"github.com/shiftdesk/chatdispatch/internal/session"
	"github.com/shiftdesk/chatdispatch/internal/timeout"
)

// Main-queue and overflow-promotion batch sizes.
const (
	mainBatchSize        = 10
	overflowBatchSize    = 10
	overflowPromoteBatch = 5
)

// Dispatcher runs processMainQueue, moveUnassignedToOverflow, and
// processOverflowQueue on every tick.
type Dispatcher struct {
	agents   *agent.Store
	sessions *session.Store
	selector *selector.Selector
	assigner *assign.Assigner
	hours    *bizhours.Checker
	rr       *roundrobin.Coordinator
	metrics  *metrics.Registry
	interval time.Duration
}

// New builds a Dispatcher.
func New(
	agents *agent.Store,
	sessions *session.Store,
	sel *selector.Selector,
	assigner *assign.Assigner,
	hours *bizhours.Checker,
	rr *roundrobin.Coordinator,
	reg *metrics.Registry,
	interval time.Duration,
) *Dispatcher {
	return &Dispatcher{
		agents: agents, sessions: sessions, selector: sel, assigner: assigner,
		hours: hours, rr: rr, metrics: reg, interval: interval,
	}
}

// Run ticks every d.interval until ctx is cancelled, exiting at the next
// tick boundary.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	log.Printf("[INFO] dispatch.Dispatcher.Run: starting, interval=%s", d.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[INFO] dispatch.Dispatcher.Run: shutting down")
			return nil
		case <-ticker.C:
			d.Tick()
		}
	}
}

// Tick runs one dispatcher pass; exported so callers/tests can drive it
// synchronously instead of waiting on the ticker.
func (d *Dispatcher) Tick() {
	d.processMainQueue()
	if d.hours.IsOfficeHours() {
		d.moveUnassignedToOverflow()
		d.processOverflowQueue()
	}
}

// processMainQueue implements step 1.
func (d *Dispatcher) processMainQueue() {
	available := d.agents.AcceptingNow()
	if len(available) == 0 {
		return
	}
	queued := d.sessions.QueuedMain()
	n := mainBatchSize
	if len(available) < n {
		n = len(available)
	}
	if n > len(queued) {
		n = len(queued)
	}
	if n == 0 {
		return
	}
	batch := queued[:n]

	assignments := selector.CreateOptimalAssignments(batch, available, agent.Teams, d.rr)
	for _, a := range assignments {
		// TryAssign always matches this reservation with a release or a
		// commit before returning.
		if d.assigner.TryAssign(a.Session, a.Agent) {
			d.metrics.RecordAssignment(string(a.Agent.Team), string(a.Agent.Seniority))
		}
	}
}

// moveUnassignedToOverflow implements step 2.
func (d *Dispatcher) moveUnassignedToOverflow() {
	queued := d.sessions.QueuedMain()
	n := overflowPromoteBatch
	if n > len(queued) {
		n = len(queued)
	}
	for i := 0; i < n; i++ {
		if queued[i].PromoteToOverflow() {
			log.Printf("[DEBUG] dispatch.moveUnassignedToOverflow: session %s -> overflow queue", queued[i].ID)
		}
	}
}

// processOverflowQueue implements step 3.
func (d *Dispatcher) processOverflowQueue() {
	available := d.agents.ByTeam(agent.TeamOverflow)
	var accepting []*agent.Agent
	for _, a := range available {
		if a.CanAccept() {
			accepting = append(accepting, a)
		}
	}
	if len(accepting) == 0 {
		return
	}
	queued := d.sessions.QueuedOverflow()
	n := overflowBatchSize
	if n > len(queued) {
		n = len(queued)
	}
	if n == 0 {
		return
	}
	batch := queued[:n]

	assignments := selector.CreateOptimalAssignments(batch, accepting, []agent.Team{agent.TeamOverflow}, d.rr)
	for _, a := range assignments {
		if d.assigner.TryAssign(a.Session, a.Agent) {
			d.metrics.RecordAssignment(string(a.Agent.Team), string(a.Agent.Seniority))
		}
	}
}

// Monitor runs processTimeouts on every tick.
type Monitor struct {
	timeouts *timeout.Service
	interval time.Duration
}

// NewMonitor builds a Monitor.
func NewMonitor(timeouts *timeout.Service, interval time.Duration) *Monitor {
	return &Monitor{timeouts: timeouts, interval: interval}
}

// Run ticks every m.interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	log.Printf("[INFO] dispatch.Monitor.Run: starting, interval=%s", m.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[INFO] dispatch.Monitor.Run: shutting down")
			return nil
		case <-ticker.C:
			m.timeouts.ProcessTimeouts()
		}
	}
}
