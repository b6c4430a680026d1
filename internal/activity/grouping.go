package activity

import (
	"sort"
	"time"
)

// GroupWindow is the proximity threshold for folding pipeline records into an
// existing group. Distances are compared at whole-minute granularity, so two
// records 5m59s apart still count as within the window.
const GroupWindow = 5 * time.Minute

// GroupLogs collapses bursts of related pipeline events into expandable
// groups. Input must be sorted by CreatedAt descending (newest first), which
// is how stores return records.
//
// Rules:
//   - A record that is not a pipeline resource, or has no resource ID, always
//     forms its own singleton group.
//   - A pipeline record joins the first group with the same resource ID that
//     has at least one member (main or sub) within GroupWindow of it. The
//     window is chained: each addition only needs to be near SOME existing
//     member, so a group's total span can exceed the window.
//   - Within a group, view events never hold the main slot when a non-view is
//     present: a non-view record displaces a view main, which is demoted to a
//     sub. Otherwise the incoming (older) record is appended as a sub.
//   - Subs end up sorted newest-first.
func GroupLogs(logs []Log) []Group {
	groups := make([]Group, 0, len(logs))

	for _, log := range logs {
		if log.ResourceType != ResourcePipeline || log.ResourceID == "" {
			groups = append(groups, Group{Main: log})
			continue
		}

		idx := matchingGroup(groups, log)
		if idx < 0 {
			groups = append(groups, Group{Main: log})
			continue
		}

		g := &groups[idx]
		if g.Main.IsView() && !log.IsView() {
			g.Subs = append(g.Subs, g.Main)
			g.Main = log
		} else {
			g.Subs = append(g.Subs, log)
		}
	}

	for i := range groups {
		subs := groups[i].Subs
		sort.SliceStable(subs, func(a, b int) bool {
			return subs[a].CreatedAt.After(subs[b].CreatedAt)
		})
	}
	return groups
}

// matchingGroup finds the first group for the record's pipeline that has any
// member within the window, or -1.
func matchingGroup(groups []Group, log Log) int {
	for i, g := range groups {
		if g.Main.ResourceType != ResourcePipeline || g.Main.ResourceID != log.ResourceID {
			continue
		}
		if withinWindow(g.Main.CreatedAt, log.CreatedAt) {
			return i
		}
		for _, sub := range g.Subs {
			if withinWindow(sub.CreatedAt, log.CreatedAt) {
				return i
			}
		}
	}
	return -1
}

// withinWindow compares two timestamps at whole-minute granularity.
func withinWindow(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d.Truncate(time.Minute) <= GroupWindow
}
