package repository

import (
	"testing"
	"time"

	"aurabook/pkg/model"
)

func lockRange(t *testing.T, startHour, startMin, endHour, endMin int) model.TimeRange {
	t.Helper()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return model.TimeRange{
		Start: day.Add(time.Duration(startHour)*time.Hour + time.Duration(startMin)*time.Minute),
		End:   day.Add(time.Duration(endHour)*time.Hour + time.Duration(endMin)*time.Minute),
	}
}

func TestLockIDs_CoversWholeRange(t *testing.T) {
	tests := []struct {
		name    string
		rng     model.TimeRange
		buckets int
	}{
		{"single bucket", lockRange(t, 9, 0, 9, 30), 1},
		{"exact two buckets", lockRange(t, 9, 0, 10, 0), 2},
		{"range ending mid-bucket", lockRange(t, 9, 30, 10, 15), 2},
		{"start floored to grid", lockRange(t, 9, 10, 9, 40), 2},
		{"long range", lockRange(t, 9, 0, 12, 0), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := LockIDs("tenant-1", "staff-1", tt.rng, 30*time.Minute)
			if len(ids) != tt.buckets {
				t.Errorf("expected %d bucket keys, got %d: %v", tt.buckets, len(ids), ids)
			}
		})
	}
}

func TestLockIDs_OverlappingRangesShareAKey(t *testing.T) {
	// A 60-minute range at 09:00 and a 45-minute range at 09:30 overlap
	// without sharing a start time; their key sets must intersect.
	a := LockIDs("tenant-1", "staff-1", lockRange(t, 9, 0, 10, 0), 30*time.Minute)
	b := LockIDs("tenant-1", "staff-1", lockRange(t, 9, 30, 10, 15), 30*time.Minute)

	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	shared := 0
	for _, id := range b {
		if set[id] {
			shared++
		}
	}
	if shared == 0 {
		t.Errorf("overlapping ranges must contend on a shared key, got %v vs %v", a, b)
	}
}

func TestLockIDs_DisjointRangesDoNotContend(t *testing.T) {
	a := LockIDs("tenant-1", "staff-1", lockRange(t, 9, 0, 10, 0), 30*time.Minute)
	b := LockIDs("tenant-1", "staff-1", lockRange(t, 10, 0, 11, 0), 30*time.Minute)

	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if set[id] {
			t.Errorf("back-to-back ranges must not share key %s", id)
		}
	}
}

func TestLockIDs_ScopedByTenantAndStaff(t *testing.T) {
	rng := lockRange(t, 9, 0, 10, 0)

	a := LockIDs("tenant-1", "staff-1", rng, 30*time.Minute)
	b := LockIDs("tenant-1", "staff-2", rng, 30*time.Minute)
	c := LockIDs("tenant-2", "staff-1", rng, 30*time.Minute)

	for i := range a {
		if a[i] == b[i] || a[i] == c[i] {
			t.Errorf("keys must be scoped per tenant and staff: %s %s %s", a[i], b[i], c[i])
		}
	}
}
