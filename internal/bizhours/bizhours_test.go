package bizhours

import (
	"testing"
	"time"

	"github.com/shiftdesk/chatdispatch/internal/clock"
)

func mustEastern(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("America/New_York tzdata unavailable in this environment: %v", err)
	}
	return loc
}

func TestIsOfficeHoursDuringBusinessDay(t *testing.T) {
	loc := mustEastern(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, loc) // Monday, 10:00 ET
	c := New(clock.NewManual(now))
	if !c.IsOfficeHours() {
		t.Fatal("Monday 10:00 ET should be office hours")
	}
}

func TestIsOfficeHoursOutsideWindow(t *testing.T) {
	loc := mustEastern(t)
	now := time.Date(2026, 3, 2, 20, 0, 0, 0, loc) // Monday, 20:00 ET
	c := New(clock.NewManual(now))
	if c.IsOfficeHours() {
		t.Fatal("Monday 20:00 ET should be outside office hours")
	}
}

func TestIsOfficeHoursWeekend(t *testing.T) {
	loc := mustEastern(t)
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, loc) // Saturday, 10:00 ET
	c := New(clock.NewManual(now))
	if c.IsOfficeHours() {
		t.Fatal("Saturday should never be office hours")
	}
}

func TestIsBusinessDayBoundaries(t *testing.T) {
	if !isBusinessDay(time.Monday) || !isBusinessDay(time.Friday) {
		t.Fatal("Monday and Friday must be business days")
	}
	if isBusinessDay(time.Saturday) || isBusinessDay(time.Sunday) {
		t.Fatal("Saturday and Sunday must not be business days")
	}
}
