package model

import (
	"testing"
	"time"
)

func tr(startHour, startMin, endHour, endMin int) TimeRange {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return TimeRange{
		Start: day.Add(time.Duration(startHour)*time.Hour + time.Duration(startMin)*time.Minute),
		End:   day.Add(time.Duration(endHour)*time.Hour + time.Duration(endMin)*time.Minute),
	}
}

func TestTimeRangeValidate(t *testing.T) {
	if err := tr(9, 0, 10, 0).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := tr(10, 0, 9, 0).Validate(); err == nil {
		t.Error("expected error for inverted range")
	}
	if err := tr(9, 0, 9, 0).Validate(); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestTimeRangeOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b TimeRange
		want bool
	}{
		{"disjoint", tr(9, 0, 10, 0), tr(11, 0, 12, 0), false},
		{"touching edges do not overlap", tr(9, 0, 10, 0), tr(10, 0, 11, 0), false},
		{"partial overlap", tr(9, 0, 10, 30), tr(10, 0, 11, 0), true},
		{"contained", tr(9, 0, 12, 0), tr(10, 0, 11, 0), true},
		{"identical", tr(9, 0, 10, 0), tr(9, 0, 10, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps (reversed) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRangeContains(t *testing.T) {
	r := tr(9, 0, 10, 0)

	if !r.Contains(r.Start) {
		t.Error("start is inside a half-open range")
	}
	if r.Contains(r.End) {
		t.Error("end is outside a half-open range")
	}
	if !r.Contains(r.Start.Add(30 * time.Minute)) {
		t.Error("midpoint should be inside")
	}
}

func TestTimeRangeSubtract(t *testing.T) {
	tests := []struct {
		name  string
		r     TimeRange
		other TimeRange
		want  []TimeRange
	}{
		{"no overlap returns original", tr(9, 0, 12, 0), tr(13, 0, 14, 0), []TimeRange{tr(9, 0, 12, 0)}},
		{"middle splits in two", tr(9, 0, 12, 0), tr(10, 0, 11, 0), []TimeRange{tr(9, 0, 10, 0), tr(11, 0, 12, 0)}},
		{"leading edge truncates", tr(9, 0, 12, 0), tr(8, 0, 10, 0), []TimeRange{tr(10, 0, 12, 0)}},
		{"trailing edge truncates", tr(9, 0, 12, 0), tr(11, 0, 13, 0), []TimeRange{tr(9, 0, 11, 0)}},
		{"full cover leaves nothing", tr(9, 0, 12, 0), tr(8, 0, 13, 0), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.r.Subtract(tt.other)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d intervals, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range got {
				if !got[i].Start.Equal(tt.want[i].Start) || !got[i].End.Equal(tt.want[i].End) {
					t.Errorf("interval %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingCompleted, false},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingPending, false},
		{BookingCancelled, BookingConfirmed, false},
		{BookingCompleted, BookingCancelled, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestBookingStatusOccupiesSlot(t *testing.T) {
	if !BookingConfirmed.OccupiesSlot() || !BookingCompleted.OccupiesSlot() {
		t.Error("confirmed and completed bookings occupy their slot")
	}
	if BookingCancelled.OccupiesSlot() || BookingPending.OccupiesSlot() {
		t.Error("cancelled and pending bookings do not occupy a slot")
	}
}
