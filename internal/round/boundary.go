// internal/round/boundary.go
package round

import "time"

// Cutoff is a recurring daily wall-clock boundary in a named civil
// timezone, e.g. 16:00 America/Los_Angeles.
type Cutoff struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// NextBoundary returns the next UTC instant at which the cutoff occurs:
// today's cutoff if the civil time in the cutoff zone has not passed it
// yet, otherwise tomorrow's. The civil offset (including DST) is taken
// from the zone at the evaluated date, not from a fixed UTC offset.
// At exactly the cutoff instant, today's boundary is returned.
func NextBoundary(now time.Time, c Cutoff) time.Time {
	local := now.In(c.Location)
	boundary := time.Date(local.Year(), local.Month(), local.Day(),
		c.Hour, c.Minute, 0, 0, c.Location)
	if local.After(boundary) {
		boundary = boundary.AddDate(0, 0, 1)
	}
	return boundary.UTC()
}
