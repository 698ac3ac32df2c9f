// Package availability computes bookable free slots within a working
// day. All arithmetic is on minutes-since-midnight integers; callers
// convert to and from absolute timestamps at the boundary.
package availability

import (
	"fmt"
	"time"

	"calsched/internal/interval"
	"calsched/internal/model"
)

// Compute returns the free slots of the given granularity inside wh,
// ascending by start. A candidate slot [t, t+granularity) is rejected
// when it overlaps a break, overlaps a busy range, or would extend past
// the end of day; no partial trailing slot is ever emitted. Adjacent
// free slots are not merged: downstream consumers reason in discrete
// bookable units, not arbitrary-length windows.
func Compute(wh model.WorkingHours, busy []model.MinuteRange, granularity int) ([]model.AvailabilitySlot, error) {
	if granularity <= 0 {
		return nil, fmt.Errorf("granularity %d: %w", granularity, model.ErrInvalidRange)
	}
	if err := wh.Validate(); err != nil {
		return nil, err
	}
	for _, b := range busy {
		if b.End < b.Start {
			return nil, fmt.Errorf("busy range [%d, %d]: %w", b.Start, b.End, model.ErrInvalidRange)
		}
	}

	slots := make([]model.AvailabilitySlot, 0)
	for t := wh.StartOfDay; t+granularity <= wh.EndOfDay; t += granularity {
		slot := model.MinuteRange{Start: t, End: t + granularity}
		if overlapsAny(slot, wh.Breaks) || overlapsAny(slot, busy) {
			continue
		}
		slots = append(slots, model.AvailabilitySlot{
			Start:     slot.Start,
			End:       slot.End,
			Available: true,
		})
	}
	return slots, nil
}

func overlapsAny(slot model.MinuteRange, ranges []model.MinuteRange) bool {
	for _, r := range ranges {
		if interval.OverlapsMinutes(slot, r) {
			return true
		}
	}
	return false
}

// BusyMinutes converts absolute busy ranges to minute-of-day ranges for
// the calendar day containing date, clipping ranges that extend past
// either midnight. Ranges not touching that day are dropped. This is
// the boundary conversion Compute's contract leaves to the caller.
func BusyMinutes(date time.Time, busy []model.TimeRange) []model.MinuteRange {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	out := make([]model.MinuteRange, 0, len(busy))
	for _, r := range busy {
		if !r.End.After(dayStart) || !r.Start.Before(dayEnd) {
			continue
		}
		start := r.Start
		if start.Before(dayStart) {
			start = dayStart
		}
		end := r.End
		if end.After(dayEnd) {
			end = dayEnd
		}
		out = append(out, model.MinuteRange{
			Start: int(start.Sub(dayStart) / time.Minute),
			End:   int(end.Sub(dayStart) / time.Minute),
		})
	}
	return out
}
