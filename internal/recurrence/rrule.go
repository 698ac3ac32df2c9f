package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"calsched/internal/model"
)

// The RRULE bridge converts between the engine's RecurrencePattern and
// RFC 5545 recurrence rules so callers syncing with iCal-backed systems
// can round-trip patterns. Note that RFC 5545 evaluation skips
// nonexistent dates (Jan 31 monthly simply has no February instance)
// while this engine clamps; the bridge converts the rule, it does not
// change either evaluator's semantics.

// ToRRule converts a pattern anchored at start into an rrule.RRule.
func ToRRule(p model.RecurrencePattern, start time.Time) (*rrule.RRule, error) {
	if err := p.Validate(start); err != nil {
		return nil, err
	}

	var freq rrule.Frequency
	switch p.Frequency {
	case model.FreqDaily:
		freq = rrule.DAILY
	case model.FreqWeekly:
		freq = rrule.WEEKLY
	case model.FreqMonthly:
		freq = rrule.MONTHLY
	case model.FreqYearly:
		freq = rrule.YEARLY
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     freq,
		Interval: p.Interval,
		Count:    p.Count,
		Until:    p.Until,
		Dtstart:  start,
	})
	if err != nil {
		return nil, fmt.Errorf("build rrule: %w", err)
	}
	return r, nil
}

// FromRRule parses an RFC 5545 RRULE string (e.g.
// "FREQ=WEEKLY;INTERVAL=2;COUNT=10") into a RecurrencePattern.
// Frequencies finer than daily are rejected with
// model.ErrUnsupportedFrequency.
func FromRRule(s string) (model.RecurrencePattern, error) {
	opt, err := rrule.StrToROption(s)
	if err != nil {
		return model.RecurrencePattern{}, fmt.Errorf("parse rrule %q: %w", s, err)
	}

	var p model.RecurrencePattern
	switch opt.Freq {
	case rrule.DAILY:
		p.Frequency = model.FreqDaily
	case rrule.WEEKLY:
		p.Frequency = model.FreqWeekly
	case rrule.MONTHLY:
		p.Frequency = model.FreqMonthly
	case rrule.YEARLY:
		p.Frequency = model.FreqYearly
	default:
		return model.RecurrencePattern{}, fmt.Errorf("rrule freq %v: %w", opt.Freq, model.ErrUnsupportedFrequency)
	}

	p.Interval = opt.Interval
	if p.Interval == 0 {
		p.Interval = 1
	}
	p.Count = opt.Count
	p.Until = opt.Until
	return p, nil
}
