// Package availability computes bookable slots from staff working hours and
// existing bookings. The calculator is a pure function of its inputs: no
// clock, no storage, identical output for identical input.
package availability

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"aurabook/pkg/model"
)

type Calculator struct {
	granularity time.Duration
}

func NewCalculator(granularityMin int) *Calculator {
	return &Calculator{granularity: time.Duration(granularityMin) * time.Minute}
}

// SlotsForStaff returns the ordered slots one staff member can take for a
// service on the given day. day is any instant within the target calendar
// day; loc is the tenant's timezone and decides where that day begins and
// which weekday it is. Bookings that do not occupy their slot (cancelled
// ones) are ignored.
func (c *Calculator) SlotsForStaff(staff *model.Staff, svc *model.Service, day time.Time, loc *time.Location, existing []*model.Booking) ([]model.Slot, error) {
	if !staff.Active {
		return nil, nil
	}

	open, err := openRanges(staff, day, loc)
	if err != nil {
		return nil, err
	}

	booked := make([]model.TimeRange, 0, len(existing))
	for _, b := range existing {
		if b.StaffID == staff.ID && b.Status.OccupiesSlot() {
			booked = append(booked, b.Range())
		}
	}

	free := subtractAll(open, booked)

	duration := svc.Duration()
	var slots []model.Slot
	for _, interval := range free {
		// Emit candidate starts every granularity step from the interval
		// start; keep a slot only when it ends on or before the interval
		// end. A slot ending exactly at the boundary is valid.
		for start := interval.Start; ; start = start.Add(c.granularity) {
			end := start.Add(duration)
			if end.After(interval.End) {
				break
			}
			slots = append(slots, model.Slot{
				TimeRange: model.TimeRange{Start: start, End: end},
				StaffID:   staff.ID,
				ServiceID: svc.ID,
			})
		}
	}
	return slots, nil
}

// SlotsForAny unions the slot sets of every staff member qualified for the
// service. Slots at the same time from different staff are kept distinct; the
// caller picks one. Output is ordered by start time, then staff ID, so the
// result is deterministic.
func (c *Calculator) SlotsForAny(roster []*model.Staff, svc *model.Service, day time.Time, loc *time.Location, existingByStaff map[string][]*model.Booking) ([]model.Slot, error) {
	var all []model.Slot
	for _, staff := range roster {
		if !staff.Qualified(svc.Category) {
			continue
		}
		slots, err := c.SlotsForStaff(staff, svc, day, loc, existingByStaff[staff.ID])
		if err != nil {
			return nil, err
		}
		all = append(all, slots...)
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].Start.Equal(all[j].Start) {
			return all[i].Start.Before(all[j].Start)
		}
		return all[i].StaffID < all[j].StaffID
	})
	return all, nil
}

// HasSlot reports whether the computed slot set contains the exact range for
// the given staff member.
func HasSlot(slots []model.Slot, staffID string, r model.TimeRange) bool {
	for _, s := range slots {
		if s.StaffID == staffID && s.Start.Equal(r.Start) && s.End.Equal(r.End) {
			return true
		}
	}
	return false
}

// openRanges materializes the staff member's working windows for the day's
// weekday into concrete time ranges in loc. Zero-length windows are dropped.
func openRanges(staff *model.Staff, day time.Time, loc *time.Location) ([]model.TimeRange, error) {
	local := day.In(loc)
	windows := staff.WindowsFor(local.Weekday())

	var out []model.TimeRange
	for _, w := range windows {
		start, err := atClock(local, w.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("staff %s: invalid window start %q: %w", staff.ID, w.Start, err)
		}
		end, err := atClock(local, w.End, loc)
		if err != nil {
			return nil, fmt.Errorf("staff %s: invalid window end %q: %w", staff.ID, w.End, err)
		}
		if !start.Before(end) {
			continue
		}
		out = append(out, model.TimeRange{Start: start, End: end})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// subtractAll removes every booked range from the open ranges. A booking
// spanning past an interval edge truncates it rather than splitting it.
func subtractAll(open []model.TimeRange, booked []model.TimeRange) []model.TimeRange {
	free := open
	for _, b := range booked {
		var next []model.TimeRange
		for _, f := range free {
			next = append(next, f.Subtract(b)...)
		}
		free = next
	}
	return free
}

// atClock returns the instant at "HH:MM" on the calendar day of local,
// interpreted in loc.
func atClock(local time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	h, m, err := ParseHHMM(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(local.Year(), local.Month(), local.Day(), h, m, 0, 0, loc), nil
}

// ParseHHMM parses a 24h "HH:MM" clock string.
func ParseHHMM(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
