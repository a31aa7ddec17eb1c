package metrics

import (
	"fmt"
	"sort"
	"strings"
)

// FormatPrometheus formats a Snapshot in Prometheus text exposition format.
// See: https://prometheus.io/docs/instrumenting/exposition_formats/
func FormatPrometheus(snap Snapshot) string {
	var sb strings.Builder

	sb.WriteString("# HELP dispatch_uptime_seconds Time since the dispatcher started\n")
	sb.WriteString("# TYPE dispatch_uptime_seconds gauge\n")
	fmt.Fprintf(&sb, "dispatch_uptime_seconds %d\n\n", snap.Uptime)

	sb.WriteString("# HELP dispatch_sessions_created_total Sessions admitted into the main queue\n")
	sb.WriteString("# TYPE dispatch_sessions_created_total counter\n")
	fmt.Fprintf(&sb, "dispatch_sessions_created_total %d\n\n", snap.SessionsCreated)

	sb.WriteString("# HELP dispatch_sessions_refused_total Sessions refused at admission\n")
	sb.WriteString("# TYPE dispatch_sessions_refused_total counter\n")
	fmt.Fprintf(&sb, "dispatch_sessions_refused_total %d\n\n", snap.SessionsRefused)

	sb.WriteString("# HELP dispatch_queue_depth Current queue depth\n")
	sb.WriteString("# TYPE dispatch_queue_depth gauge\n")
	fmt.Fprintf(&sb, "dispatch_queue_depth{queue=\"main\"} %d\n", snap.QueueDepthMain)
	fmt.Fprintf(&sb, "dispatch_queue_depth{queue=\"overflow\"} %d\n\n", snap.QueueDepthOver)

	sb.WriteString("# HELP dispatch_assignments_total Assignments by team and seniority\n")
	sb.WriteString("# TYPE dispatch_assignments_total counter\n")
	for _, key := range sortedKeys(snap.AssignmentsTotal) {
		team, seniority, _ := strings.Cut(key, "/")
		fmt.Fprintf(&sb, "dispatch_assignments_total{team=\"%s\",seniority=\"%s\"} %d\n", team, seniority, snap.AssignmentsTotal[key])
	}
	sb.WriteString("\n")

	sb.WriteString("# HELP dispatch_timeouts_total Sessions inactivated for missed polls\n")
	sb.WriteString("# TYPE dispatch_timeouts_total counter\n")
	fmt.Fprintf(&sb, "dispatch_timeouts_total %d\n\n", snap.TimeoutsTotal)

	sb.WriteString("# HELP dispatch_polls_total Successful Poll calls\n")
	sb.WriteString("# TYPE dispatch_polls_total counter\n")
	fmt.Fprintf(&sb, "dispatch_polls_total %d\n\n", snap.PollsTotal)

	sb.WriteString("# HELP dispatch_agent_utilization Current concurrent chats over max concurrent, per agent\n")
	sb.WriteString("# TYPE dispatch_agent_utilization gauge\n")
	for _, u := range snap.AgentUtilization {
		ratio := 0.0
		if u.Max > 0 {
			ratio = float64(u.Current) / float64(u.Max)
		}
		fmt.Fprintf(&sb, "dispatch_agent_utilization{agent=\"%s\",team=\"%s\"} %.4f\n", u.AgentID, u.Team, ratio)
	}

	return sb.String()
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
