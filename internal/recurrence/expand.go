// Package recurrence expands recurring event definitions into concrete,
// dated occurrences.
package recurrence

import (
	"fmt"
	"time"

	"calsched/internal/model"
)

// SafetyCap bounds expansion when a pattern carries neither a count nor
// an until cutoff. It is a termination guard, not a business rule:
// callers that need to distinguish "capped" from "naturally bounded"
// should check Result.Truncated rather than counting occurrences.
const SafetyCap = 366

// Result wraps an expanded series.
type Result struct {
	// Occurrences is strictly increasing by start time. Each occurrence
	// is a clone of the base event with shifted times, the base event's
	// duration, and a derived "<baseID>#<n>" ID, so expanding the same
	// event twice yields identical output.
	Occurrences []model.Event

	// Truncated is true when SafetyCap stopped emission before the
	// pattern's own bounds did.
	Truncated bool
}

// Expand materializes the occurrence series for a recurring event.
// Emission stops when the pattern's count is reached, when the next
// anchor would exceed the until cutoff, or at SafetyCap, whichever
// comes first. The series is produced eagerly; all call sites need a
// finite, countable result and the cap already bounds memory.
func Expand(ev model.Event) (Result, error) {
	var res Result

	p := ev.Recurrence
	if err := p.Validate(ev.Start); err != nil {
		return res, fmt.Errorf("expand event %q: %w", ev.ID, err)
	}
	if !ev.End.After(ev.Start) {
		return res, fmt.Errorf("expand event %q: %w", ev.ID, model.ErrInvalidRange)
	}

	dur := ev.Duration()
	anchor := ev.Start

	for {
		if p.Count > 0 && len(res.Occurrences) == p.Count {
			break
		}
		if !p.Until.IsZero() && anchor.After(p.Until) {
			break
		}
		if len(res.Occurrences) == SafetyCap {
			res.Truncated = true
			break
		}

		occ := ev
		occ.ID = fmt.Sprintf("%s#%d", ev.ID, len(res.Occurrences))
		occ.Start = anchor
		occ.End = anchor.Add(dur)
		occ.IsRecurring = false
		occ.Recurrence = nil
		res.Occurrences = append(res.Occurrences, occ)

		anchor = step(anchor, p.Frequency, p.Interval)
	}

	return res, nil
}

// step advances the anchor by one recurrence step. Frequency has been
// validated by the caller.
func step(anchor time.Time, freq model.Frequency, interval int) time.Time {
	switch freq {
	case model.FreqDaily:
		return anchor.AddDate(0, 0, interval)
	case model.FreqWeekly:
		return anchor.AddDate(0, 0, 7*interval)
	case model.FreqMonthly:
		return clampedAddMonths(anchor, interval)
	case model.FreqYearly:
		return clampedAddMonths(anchor, 12*interval)
	}
	return anchor
}

// clampedAddMonths adds months to t, clamping to the last valid day of
// the target month when the source day does not exist there (Jan 31 +1
// month lands on Feb 29/28, never overflows into March). This is the
// single place the clamping policy lives; swap it here to change the
// engine-wide rule.
func clampedAddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	// Normalize the target year/month via a day-1 date, which cannot
	// overflow, then clamp the day.
	first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	first = first.AddDate(0, months, 0)
	ty, tm, _ := first.Date()

	if last := daysInMonth(ty, tm); d > last {
		d = last
	}
	return time.Date(ty, tm, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
