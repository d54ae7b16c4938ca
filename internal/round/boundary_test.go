package round

import (
	"testing"
	"time"
)

func losAngeles(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	return loc
}

func TestNextBoundaryBeforeCutoff(t *testing.T) {
	loc := losAngeles(t)
	cutoff := Cutoff{Hour: 16, Minute: 0, Location: loc}

	now := time.Date(2025, time.March, 3, 15, 59, 0, 0, loc)
	got := NextBoundary(now, cutoff)
	want := time.Date(2025, time.March, 3, 16, 0, 0, 0, loc).UTC()
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNextBoundaryAfterCutoff(t *testing.T) {
	loc := losAngeles(t)
	cutoff := Cutoff{Hour: 16, Minute: 0, Location: loc}

	now := time.Date(2025, time.March, 3, 16, 1, 0, 0, loc)
	got := NextBoundary(now, cutoff)
	want := time.Date(2025, time.March, 4, 16, 0, 0, 0, loc).UTC()
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNextBoundaryExactlyAtCutoff(t *testing.T) {
	loc := losAngeles(t)
	cutoff := Cutoff{Hour: 16, Minute: 0, Location: loc}

	now := time.Date(2025, time.March, 3, 16, 0, 0, 0, loc)
	got := NextBoundary(now, cutoff)
	want := now.UTC()
	if !got.Equal(want) {
		t.Errorf("expected today's cutoff %v, got %v", want, got)
	}
}

// The boundary must track the zone's civil offset across the DST
// change, not a fixed UTC offset.
func TestNextBoundaryAcrossDSTChange(t *testing.T) {
	loc := losAngeles(t)
	cutoff := Cutoff{Hour: 16, Minute: 0, Location: loc}

	// 2025-03-08 is PST (UTC-8); the next day springs forward to PDT (UTC-7).
	before := time.Date(2025, time.March, 8, 17, 0, 0, 0, loc)
	got := NextBoundary(before, cutoff)
	want := time.Date(2025, time.March, 9, 16, 0, 0, 0, loc).UTC()
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got.Hour() != 23 { // 16:00 PDT == 23:00 UTC
		t.Errorf("expected 23:00 UTC after spring forward, got %d:00", got.Hour())
	}
}

func TestNextBoundaryEvaluatesInZone(t *testing.T) {
	loc := losAngeles(t)
	cutoff := Cutoff{Hour: 16, Minute: 0, Location: loc}

	// 01:00 UTC on March 4 is 17:00 PST on March 3: past the cutoff, so
	// the boundary is March 4 in civil time.
	now := time.Date(2025, time.March, 4, 1, 0, 0, 0, time.UTC)
	got := NextBoundary(now, cutoff)
	want := time.Date(2025, time.March, 4, 16, 0, 0, 0, loc).UTC()
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
