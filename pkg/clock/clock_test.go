package clock

import (
	"testing"
	"time"
)

func TestFixedClock(t *testing.T) {
	instant := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	c := Fixed(instant)

	if !c.Now().Equal(instant) {
		t.Errorf("expected %v, got %v", instant, c.Now())
	}
	if !c.Now().Equal(c.Now()) {
		t.Error("fixed clock must not advance")
	}
}

func TestDayBounds(t *testing.T) {
	day := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

	start, end := DayBounds(day, time.UTC)
	if !start.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected day start: %v", start)
	}
	if !end.Equal(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected day end: %v", end)
	}
}

func TestDayBounds_TimezoneShiftsDay(t *testing.T) {
	lisbon, err := time.LoadLocation("Europe/Lisbon")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 23:30 UTC on March 2nd is already March 2nd in Lisbon (UTC+0 in
	// winter), but 23:30 UTC in summer time lands on the next local day.
	summer := time.Date(2026, 7, 1, 23, 30, 0, 0, time.UTC)
	start, _ := DayBounds(summer, lisbon)
	if start.In(lisbon).Day() != 2 {
		t.Errorf("expected local day 2, got %v", start.In(lisbon))
	}
}

func TestMonthBounds(t *testing.T) {
	day := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	start, end := MonthBounds(day, time.UTC)
	if !start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected month start: %v", start)
	}
	if !end.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected month end: %v", end)
	}
}

func TestMonthBounds_DecemberRollsOver(t *testing.T) {
	day := time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)

	_, end := MonthBounds(day, time.UTC)
	if !end.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected rollover into January 2027, got %v", end)
	}
}
