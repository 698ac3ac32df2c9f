// Package reminder computes absolute fire times for an event's
// configured reminders. Delivering them is a separate concern; see
// internal/dispatch.
package reminder

import (
	"time"

	"calsched/internal/model"
)

// Fire is one reminder due at an absolute time.
type Fire struct {
	Kind string    `json:"kind"`
	At   time.Time `json:"at"`
}

// FireTimes returns one Fire per enabled reminder, in the event's
// reminder order. Disabled reminders are excluded from the output
// entirely, not flagged. No dedup is performed: two reminders that
// coincide in time still produce two entries.
func FireTimes(ev model.Event) []Fire {
	out := make([]Fire, 0, len(ev.Reminders))
	for _, r := range ev.Reminders {
		if !r.Enabled {
			continue
		}
		out = append(out, Fire{
			Kind: r.Kind,
			At:   ev.Start.Add(-time.Duration(r.MinutesBefore) * time.Minute),
		})
	}
	return out
}
