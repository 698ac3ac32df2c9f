// Package model defines the domain value types shared by all scheduling
// packages: events, recurrence patterns, time ranges, working hours and
// computed results. Everything here is a plain value object; the engine
// never mutates or retains caller data.
package model

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel validation errors. All of them indicate bad input detected
// synchronously; none are retryable.
var (
	// ErrInvalidRange reports a time range whose end precedes its start,
	// or a non-positive duration where one is required.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrInvalidRecurrence reports a malformed recurrence pattern: a
	// non-positive interval, a missing pattern on a recurring event, or an
	// until cutoff before the event start.
	ErrInvalidRecurrence = errors.New("invalid recurrence pattern")

	// ErrUnsupportedFrequency reports a recurrence frequency outside the
	// four supported values.
	ErrUnsupportedFrequency = errors.New("unsupported recurrence frequency")
)

// Frequency is the unit a recurrence pattern steps by.
type Frequency string

const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
	FreqYearly  Frequency = "yearly"
)

// Status is the lifecycle tag of an event.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Reminder configures a single notification offset relative to the
// event start. Disabled reminders are carried but never fire.
type Reminder struct {
	Kind          string `json:"kind"`
	MinutesBefore int    `json:"minutes_before"`
	Enabled       bool   `json:"enabled"`
}

// RecurrencePattern describes how an event repeats.
//
// A zero Count means "no count bound"; a zero Until means "no cutoff".
// When both bounds are set, expansion stops at whichever is reached
// first. When neither is set, expansion is bounded by an engine-wide
// safety cap (see the recurrence package). The cap is a termination
// guard, not a business rule.
type RecurrencePattern struct {
	Frequency Frequency `json:"frequency"`
	Interval  int       `json:"interval"`
	Count     int       `json:"count,omitempty"`
	Until     time.Time `json:"until,omitzero"`
}

// Validate checks the pattern against the event start it applies to.
func (p *RecurrencePattern) Validate(start time.Time) error {
	if p == nil {
		return fmt.Errorf("pattern missing: %w", ErrInvalidRecurrence)
	}
	switch p.Frequency {
	case FreqDaily, FreqWeekly, FreqMonthly, FreqYearly:
	default:
		return fmt.Errorf("frequency %q: %w", p.Frequency, ErrUnsupportedFrequency)
	}
	if p.Interval <= 0 {
		return fmt.Errorf("interval %d: %w", p.Interval, ErrInvalidRecurrence)
	}
	if !p.Until.IsZero() && p.Until.Before(start) {
		return fmt.Errorf("until %s precedes start %s: %w",
			p.Until.Format(time.RFC3339), start.Format(time.RFC3339), ErrInvalidRecurrence)
	}
	return nil
}

// Event is a single occurrence or the definition of a recurring series.
// All timestamps are assumed to be normalized to a single reference
// offset by the caller.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// Location doubles as the resource scope for conflict checks.
	Location string `json:"location,omitempty"`

	Type     string `json:"type,omitempty"`
	Category string `json:"category,omitempty"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	IsRecurring bool               `json:"is_recurring,omitempty"`
	Recurrence  *RecurrencePattern `json:"recurrence,omitempty"`

	Status    Status     `json:"status"`
	Reminders []Reminder `json:"reminders,omitempty"`

	// Carried through unchanged; no algorithm reads these.
	Visibility string   `json:"visibility,omitempty"`
	Capacity   int      `json:"capacity,omitempty"`
	Attendees  []string `json:"attendees,omitempty"`
}

// NewEvent validates e and returns it. Invalid date ranges are rejected
// here, at construction time, so algorithm code can assume well-formed
// events. Zero-length events are invalid.
func NewEvent(e Event) (Event, error) {
	if !e.End.After(e.Start) {
		return Event{}, fmt.Errorf("event %q: end %s not after start %s: %w",
			e.ID, e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339), ErrInvalidRange)
	}
	if e.IsRecurring {
		if err := e.Recurrence.Validate(e.Start); err != nil {
			return Event{}, fmt.Errorf("event %q: %w", e.ID, err)
		}
	}
	if e.Status == "" {
		e.Status = StatusScheduled
	}
	return e, nil
}

// Range returns the event's time span as a TimeRange.
func (e Event) Range() TimeRange {
	return TimeRange{Start: e.Start, End: e.End}
}

// Duration returns the event's length.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// TimeRange is an ephemeral [Start, End] span. End >= Start; a
// zero-length range is permitted for instantaneous checks, unlike
// events.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange rejects ranges whose end precedes their start.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if end.Before(start) {
		return TimeRange{}, fmt.Errorf("end %s before start %s: %w",
			end.Format(time.RFC3339), start.Format(time.RFC3339), ErrInvalidRange)
	}
	return TimeRange{Start: start, End: end}, nil
}

// MinuteRange is a span expressed in minutes since midnight. The
// availability calculator works exclusively in this unit to avoid
// floating point drift; callers convert at the boundary.
type MinuteRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

const minutesPerDay = 24 * 60

// WorkingHours describes one working day in minutes since midnight.
// All breaks must lie within [StartOfDay, EndOfDay] and must not
// overlap each other.
type WorkingHours struct {
	StartOfDay int           `json:"start_of_day"`
	EndOfDay   int           `json:"end_of_day"`
	Breaks     []MinuteRange `json:"breaks,omitempty"`
}

// Validate checks the day bounds and break invariants.
func (w WorkingHours) Validate() error {
	if w.StartOfDay < 0 || w.EndOfDay > minutesPerDay || w.EndOfDay < w.StartOfDay {
		return fmt.Errorf("working hours [%d, %d]: %w", w.StartOfDay, w.EndOfDay, ErrInvalidRange)
	}
	for i, b := range w.Breaks {
		if b.End < b.Start {
			return fmt.Errorf("break %d [%d, %d]: %w", i, b.Start, b.End, ErrInvalidRange)
		}
		if b.Start < w.StartOfDay || b.End > w.EndOfDay {
			return fmt.Errorf("break %d [%d, %d] outside working hours: %w", i, b.Start, b.End, ErrInvalidRange)
		}
		for _, prev := range w.Breaks[:i] {
			if b.Start < prev.End && b.End > prev.Start {
				return fmt.Errorf("break %d [%d, %d] overlaps another break: %w", i, b.Start, b.End, ErrInvalidRange)
			}
		}
	}
	return nil
}

// AvailabilitySlot is one bookable unit within working hours.
// Available is always true for emitted slots; unavailable spans are
// simply omitted from results.
type AvailabilitySlot struct {
	Start     int  `json:"start"`
	End       int  `json:"end"`
	Available bool `json:"available"`
}

// Stats aggregates categorical counts over a set of events.
type Stats struct {
	Total          int            `json:"total"`
	ByType         map[string]int `json:"by_type"`
	ByCategory     map[string]int `json:"by_category"`
	ByStatus       map[Status]int `json:"by_status"`
	CompletionRate float64        `json:"completion_rate"`
}
