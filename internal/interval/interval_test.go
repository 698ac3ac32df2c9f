package interval

import (
	"errors"
	"testing"
	"time"

	"calsched/internal/model"
)

func rangeAt(t *testing.T, start, end string) model.TimeRange {
	t.Helper()
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		t.Fatalf("parse end: %v", err)
	}
	return model.TimeRange{Start: s, End: e}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b model.TimeRange
		want bool
	}{
		{
			name: "partial overlap",
			a:    rangeAt(t, "2024-06-01T09:00:00Z", "2024-06-01T11:00:00Z"),
			b:    rangeAt(t, "2024-06-01T10:00:00Z", "2024-06-01T12:00:00Z"),
			want: true,
		},
		{
			name: "containment",
			a:    rangeAt(t, "2024-06-01T09:00:00Z", "2024-06-01T17:00:00Z"),
			b:    rangeAt(t, "2024-06-01T10:00:00Z", "2024-06-01T11:00:00Z"),
			want: true,
		},
		{
			name: "touching boundaries do not overlap",
			a:    rangeAt(t, "2024-06-01T09:00:00Z", "2024-06-01T10:00:00Z"),
			b:    rangeAt(t, "2024-06-01T10:00:00Z", "2024-06-01T11:00:00Z"),
			want: false,
		},
		{
			name: "disjoint",
			a:    rangeAt(t, "2024-06-01T09:00:00Z", "2024-06-01T10:00:00Z"),
			b:    rangeAt(t, "2024-06-01T14:00:00Z", "2024-06-01T15:00:00Z"),
			want: false,
		},
		{
			name: "zero-length range inside",
			a:    rangeAt(t, "2024-06-01T09:30:00Z", "2024-06-01T09:30:00Z"),
			b:    rangeAt(t, "2024-06-01T09:00:00Z", "2024-06-01T10:00:00Z"),
			want: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.a, tc.b); got != tc.want {
				t.Errorf("Overlaps(a, b) = %v, want %v", got, tc.want)
			}
			// Symmetry must hold for every pair.
			if got := Overlaps(tc.b, tc.a); got != tc.want {
				t.Errorf("Overlaps(b, a) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOverlapsMinutes(t *testing.T) {
	a := model.MinuteRange{Start: 540, End: 600}
	if OverlapsMinutes(a, model.MinuteRange{Start: 600, End: 660}) {
		t.Error("touching minute ranges must not overlap")
	}
	if !OverlapsMinutes(a, model.MinuteRange{Start: 599, End: 660}) {
		t.Error("expected one-minute overlap to be detected")
	}
}

func TestDurationMinutes(t *testing.T) {
	got, err := DurationMinutes(rangeAt(t, "2024-06-01T09:00:00Z", "2024-06-01T09:30:00Z"))
	if err != nil {
		t.Fatalf("DurationMinutes: %v", err)
	}
	if got != 30 {
		t.Errorf("duration = %d, want 30", got)
	}

	zero, err := DurationMinutes(rangeAt(t, "2024-06-01T09:00:00Z", "2024-06-01T09:00:00Z"))
	if err != nil {
		t.Fatalf("DurationMinutes zero-length: %v", err)
	}
	if zero != 0 {
		t.Errorf("zero-length duration = %d, want 0", zero)
	}
}

func TestDurationMinutesInvalid(t *testing.T) {
	bad := model.TimeRange{
		Start: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	if _, err := DurationMinutes(bad); !errors.Is(err, model.ErrInvalidRange) {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
}
