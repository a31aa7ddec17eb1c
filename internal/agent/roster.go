package agent

import (
	"fmt"
	"log"
	"time"
)

// easternLocation resolves America/New_York, the zone the Overflow shift and
// BusinessHours are both defined against.
func easternLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Printf("[WARN] agent.easternLocation: failed to load America/New_York (%v); Overflow shift falls back to UTC", err)
		return nil
	}
	return loc
}

// DefaultRoster builds the fixed startup roster.
// overrides lets an operator relocate a team's UTC window;
// Overflow's window always stays in Eastern time regardless of overrides,
// since its authoritative definition is the business-hours zone.
func DefaultRoster(overrides map[string]ShiftOverride) []*Agent {
	teamA := resolveWindow("A", overrides, ShiftWindow{StartMinute: 0, EndMinute: 8*60 + 5})
	teamB := resolveWindow("B", overrides, ShiftWindow{StartMinute: 7*60 + 55, EndMinute: 16*60 + 5})
	teamC := resolveWindow("C", overrides, ShiftWindow{StartMinute: 15*60 + 55, EndMinute: 24*60 + 5})
	overflow := ShiftWindow{StartMinute: 9 * 60, EndMinute: 17 * 60, Location: easternLocation()}

	roster := []*Agent{
		New("agent-alice-thompson", "Alice Thompson", TeamLead, TeamA, teamA),
		New("agent-bob-wilson", "Bob Wilson", MidLevel, TeamA, teamA),
		New("agent-carol-davis", "Carol Davis", MidLevel, TeamA, teamA),
		New("agent-david-brown", "David Brown", Junior, TeamA, teamA),

		New("agent-emma-johnson", "Emma Johnson", Senior, TeamB, teamB),
		New("agent-frank-miller", "Frank Miller", MidLevel, TeamB, teamB),
		New("agent-grace-lee", "Grace Lee", Junior, TeamB, teamB),
		New("agent-henry-chen", "Henry Chen", Junior, TeamB, teamB),

		New("agent-isabel-rodriguez", "Isabel Rodriguez", MidLevel, TeamC, teamC),
		New("agent-jack-anderson", "Jack Anderson", MidLevel, TeamC, teamC),
	}
	for i := 1; i <= 6; i++ {
		roster = append(roster, New(
			fmt.Sprintf("agent-overflow-%d", i),
			fmt.Sprintf("Overflow Agent %d", i),
			Junior, TeamOverflow, overflow,
		))
	}
	return roster
}

// ShiftOverride mirrors config.ShiftOverride ("HH:MM"-"HH:MM") without
// importing the config package, to keep agent dependency-free of config.
type ShiftOverride struct {
	Start string
	End   string
}

func resolveWindow(team string, overrides map[string]ShiftOverride, fallback ShiftWindow) ShiftWindow {
	o, ok := overrides[team]
	if !ok {
		return fallback
	}
	start, err1 := parseClock(o.Start)
	end, err2 := parseClock(o.End)
	if err1 != nil || err2 != nil {
		log.Printf("[WARN] agent.resolveWindow: invalid override for team %s (%q-%q); using default window", team, o.Start, o.End)
		return fallback
	}
	if end <= start {
		end += 24 * 60
	}
	return ShiftWindow{StartMinute: start, EndMinute: end}
}

func parseClock(hhmm string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0, err
	}
	if h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, fmt.Errorf("out of range: %s", hhmm)
	}
	return h*60 + m, nil
}
