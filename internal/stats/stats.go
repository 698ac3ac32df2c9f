// Package stats filters events into view windows, buckets them by day,
// and aggregates categorical counts for calendar views.
package stats

import (
	"time"

	"calsched/internal/interval"
	"calsched/internal/model"
)

// FilterByRange returns the events whose start time falls inside
// [start, end], inclusive on both ends. Membership is decided on the
// start time only: an event that begins before the window but ends
// inside it is excluded. That is the historical behavior calendar views
// depend on; callers that need long-spanning events should use
// FilterOverlapping instead.
func FilterByRange(events []model.Event, start, end time.Time) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Start.Before(start) || ev.Start.After(end) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// FilterOverlapping returns the events whose span overlaps
// [start, end] under the engine's strict open-interval test. Offered
// alongside FilterByRange for callers that must not lose events
// straddling the window edges; it never replaces the start-time filter.
func FilterOverlapping(events []model.Event, start, end time.Time) []model.Event {
	window := model.TimeRange{Start: start, End: end}
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if interval.Overlaps(ev.Range(), window) {
			out = append(out, ev)
		}
	}
	return out
}

// DayKey returns the canonical, sortable day bucket for t.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// GroupByDay buckets events by the calendar day of their start time.
// Within a bucket, input order is preserved.
func GroupByDay(events []model.Event) map[string][]model.Event {
	out := make(map[string][]model.Event)
	for _, ev := range events {
		key := DayKey(ev.Start)
		out[key] = append(out[key], ev)
	}
	return out
}

// Compute aggregates counts by type, category and status, plus the
// completion rate as a percentage. An empty input yields a zero rate,
// never a division fault.
func Compute(events []model.Event) model.Stats {
	s := model.Stats{
		Total:      len(events),
		ByType:     make(map[string]int),
		ByCategory: make(map[string]int),
		ByStatus:   make(map[model.Status]int),
	}
	for _, ev := range events {
		if ev.Type != "" {
			s.ByType[ev.Type]++
		}
		if ev.Category != "" {
			s.ByCategory[ev.Category]++
		}
		s.ByStatus[ev.Status]++
	}
	if s.Total > 0 {
		s.CompletionRate = float64(s.ByStatus[model.StatusCompleted]) / float64(s.Total) * 100
	}
	return s
}
