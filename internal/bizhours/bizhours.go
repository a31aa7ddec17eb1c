// Package bizhours answers whether the current instant falls inside
// standard business hours, used to gate overflow-queue promotion.
package bizhours

import (
	"log"
	"time"

	"github.com/shiftdesk/chatdispatch/internal/clock"
)

const (
	officeStartHour = 9
	officeEndHour   = 17

	fallbackStartHour = 14 // UTC fallback window, approximating 09:00 Eastern
	fallbackEndHour   = 22
)

// Checker answers isOfficeHours() against a Clock.
type Checker struct {
	clock    clock.Clock
	eastern  *time.Location
	fellBack bool
}

// New builds a Checker. If America/New_York cannot be resolved, it falls
// back to a fixed UTC 14:00-22:00 approximation for every subsequent call.
func New(c clock.Clock) *Checker {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Printf("[WARN] bizhours.New: failed to load America/New_York (%v); falling back to UTC 14:00-22:00", err)
		return &Checker{clock: c, fellBack: true}
	}
	return &Checker{clock: c, eastern: loc}
}

// IsOfficeHours reports whether the clock's current instant is Mon-Fri,
// 09:00-17:00 US-Eastern (or the UTC fallback window if Eastern failed to
// resolve). The business-day check ignores clock time.
func (c *Checker) IsOfficeHours() bool {
	now := c.clock.Now()
	if c.fellBack {
		u := now.UTC()
		return isBusinessDay(u.Weekday()) && u.Hour() >= fallbackStartHour && u.Hour() < fallbackEndHour
	}
	e := now.In(c.eastern)
	return isBusinessDay(e.Weekday()) && e.Hour() >= officeStartHour && e.Hour() < officeEndHour
}

func isBusinessDay(d time.Weekday) bool {
	return d >= time.Monday && d <= time.Friday
}
