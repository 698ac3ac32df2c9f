// Package interval provides the primitive time-range comparisons the
// rest of the engine is built on.
package interval

import (
	"fmt"
	"time"

	"calsched/internal/model"
)

// Overlaps reports whether a and b share any interior point. The test
// is strictly open: two ranges that merely touch at a boundary
// (a.End == b.Start) do NOT overlap. This is the tie-break policy used
// throughout the engine; it is what keeps back-to-back events from
// being flagged as conflicting.
func Overlaps(a, b model.TimeRange) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// OverlapsMinutes is Overlaps for minute-of-day ranges, with the same
// strict open semantics.
func OverlapsMinutes(a, b model.MinuteRange) bool {
	return a.Start < b.End && a.End > b.Start
}

// DurationMinutes returns the length of a in whole minutes. It fails
// with model.ErrInvalidRange when the range end precedes its start.
func DurationMinutes(a model.TimeRange) (int, error) {
	if a.End.Before(a.Start) {
		return 0, fmt.Errorf("duration of [%s, %s]: %w",
			a.Start.Format(time.RFC3339), a.End.Format(time.RFC3339), model.ErrInvalidRange)
	}
	return int(a.End.Sub(a.Start) / time.Minute), nil
}
