package model

import (
	"fmt"
	"time"
)

// TimeRange is a half-open interval [Start, End). Both instants are
// timezone-aware time.Time values.
type TimeRange struct {
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

func NewTimeRange(start, end time.Time) (TimeRange, error) {
	r := TimeRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

func (r TimeRange) Validate() error {
	if !r.Start.Before(r.End) {
		return fmt.Errorf("time range start (%s) must be before end (%s)",
			r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
	}
	return nil
}

func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps reports whether the two half-open intervals share any instant.
// Ranges that merely touch (one ends exactly where the other starts) do not
// overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Subtract removes other from r and returns the remaining sub-intervals,
// ordered by start. A subtrahend spanning past either edge truncates instead
// of splitting.
func (r TimeRange) Subtract(other TimeRange) []TimeRange {
	if !r.Overlaps(other) {
		return []TimeRange{r}
	}
	var out []TimeRange
	if r.Start.Before(other.Start) {
		out = append(out, TimeRange{Start: r.Start, End: other.Start})
	}
	if other.End.Before(r.End) {
		out = append(out, TimeRange{Start: other.End, End: r.End})
	}
	return out
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s - %s", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}
