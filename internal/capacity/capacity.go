// Package capacity computes team and total agent capacity, cached briefly,
// and implements the queue admission predicate.
package capacity

import (
	"log"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/shiftdesk/chatdispatch/internal/agent"
	"github.com/shiftdesk/chatdispatch/internal/bizhours"
	"github.com/shiftdesk/chatdispatch/internal/session"
)

// defaultQueueMultiplier scales capacity into a queue length ceiling.
const defaultQueueMultiplier = 1.5

const cacheTTL = 5 * time.Second

// cache key constants for the expirable.LRU.
const (
	keyTotal    = "total"
	keyOverflow = "overflow"
)

// Calculator caches per-team/total capacity for ~5s and implements the
// three-step admission predicate.
type Calculator struct {
	agents    *agent.Store
	sessions  *session.Store
	hours     *bizhours.Checker
	queueMult float64

	cache *expirable.LRU[string, int]
}

// New builds a Calculator. queueMultiplier overrides the default 1.5 when
// positive.
func New(agents *agent.Store, sessions *session.Store, hours *bizhours.Checker, queueMultiplier float64) *Calculator {
	mult := queueMultiplier
	if mult <= 0 {
		mult = defaultQueueMultiplier
	}
	return &Calculator{
		agents:    agents,
		sessions:  sessions,
		hours:     hours,
		queueMult: mult,
		cache:     expirable.NewLRU[string, int](0, nil, cacheTTL),
	}
}

func teamKey(t agent.Team) string {
	return "team_" + string(t)
}

// teamCapacity returns team t's cached capacity, recomputing on a cache miss.
func (c *Calculator) teamCapacity(t agent.Team) int {
	key := teamKey(t)
	if v, ok := c.cache.Get(key); ok {
		return v
	}
	v := c.agents.TeamCapacity(t)
	c.cache.Add(key, v)
	return v
}

// TotalCoreCapacity sums TeamA+TeamB+TeamC capacity, cached.
func (c *Calculator) TotalCoreCapacity() int {
	if v, ok := c.cache.Get(keyTotal); ok {
		return v
	}
	total := c.teamCapacity(agent.TeamA) + c.teamCapacity(agent.TeamB) + c.teamCapacity(agent.TeamC)
	c.cache.Add(keyTotal, total)
	return total
}

// OverflowCapacity returns the Overflow team's cached capacity.
func (c *Calculator) OverflowCapacity() int {
	if v, ok := c.cache.Get(keyOverflow); ok {
		return v
	}
	v := c.agents.TeamCapacity(agent.TeamOverflow)
	c.cache.Add(keyOverflow, v)
	return v
}

// InvalidateTeam drops the cached entry for team and the total, so the next
// read recomputes.
func (c *Calculator) InvalidateTeam(t agent.Team) {
	c.cache.Remove(teamKey(t))
	c.cache.Remove(keyTotal)
	if t == agent.TeamOverflow {
		c.cache.Remove(keyOverflow)
	}
}

// queueLimit floors capacity*queueMultiplier.
func (c *Calculator) queueLimit(capacity int) int {
	return int(float64(capacity) * c.queueMult)
}

// CanAccept implements the three-step admission predicate.
func (c *Calculator) CanAccept() bool {
	mainLimit := c.queueLimit(c.TotalCoreCapacity())
	if c.sessions.QueueLength() < mainLimit {
		log.Printf("[DEBUG] capacity.CanAccept: accepted into main queue (len=%d limit=%d)", c.sessions.QueueLength(), mainLimit)
		return true
	}
	if c.hours.IsOfficeHours() {
		overflowLimit := c.queueLimit(c.OverflowCapacity())
		if c.sessions.OverflowQueueLength() < overflowLimit {
			log.Printf("[DEBUG] capacity.CanAccept: accepted via overflow headroom (len=%d limit=%d)", c.sessions.OverflowQueueLength(), overflowLimit)
			return true
		}
	}
	log.Printf("[WARN] capacity.CanAccept: refused, both main and overflow queues saturated")
	return false
}
