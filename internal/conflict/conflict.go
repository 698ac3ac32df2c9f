// Package conflict decides whether time ranges collide, optionally
// scoped by a resource such as a location. The detector is stateless
// and identity-unaware: to exclude an event from its own conflict
// check (editing flows), callers filter the pool before invocation.
package conflict

import (
	"calsched/internal/interval"
	"calsched/internal/model"
)

// HasConflict reports whether existing and candidate collide. When both
// scopes are non-empty and differ, the ranges never conflict regardless
// of time: conflicts are per-resource, not global. When either scope is
// empty the check is purely temporal, which is the right behavior for a
// single user's personal calendar.
func HasConflict(existing, candidate model.TimeRange, existingScope, candidateScope string) bool {
	if existingScope != "" && candidateScope != "" && existingScope != candidateScope {
		return false
	}
	return interval.Overlaps(existing, candidate)
}

// FindConflicts returns every member of pool that overlaps candidate,
// in pool order.
func FindConflicts(candidate model.TimeRange, pool []model.TimeRange) []model.TimeRange {
	out := make([]model.TimeRange, 0)
	for _, r := range pool {
		if interval.Overlaps(r, candidate) {
			out = append(out, r)
		}
	}
	return out
}

// FindEventConflicts returns every event in pool whose span conflicts
// with candidate, scoping each pairwise check by the events' locations.
func FindEventConflicts(candidate model.Event, pool []model.Event) []model.Event {
	out := make([]model.Event, 0)
	for _, ev := range pool {
		if HasConflict(ev.Range(), candidate.Range(), ev.Location, candidate.Location) {
			out = append(out, ev)
		}
	}
	return out
}
