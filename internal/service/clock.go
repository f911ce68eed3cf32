package service

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const DefaultPlanTimezone = "America/New_York"

type Clock interface {
	Now() time.Time
}

// ReferenceClock reports the wall-clock time of a fixed zone, labelled as
// UTC. Plan windows hold calendar instants stored in UTC, so comparing them
// against this value compares dates as seen in the reference zone.
type ReferenceClock struct {
	loc *time.Location
	now func() time.Time
}

func NewReferenceClock(zone string) (*ReferenceClock, error) {
	if zone == "" {
		zone = DefaultPlanTimezone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("loading plan timezone %q: %w", zone, err)
	}
	return &ReferenceClock{loc: loc, now: time.Now}, nil
}

func (c *ReferenceClock) Now() time.Time {
	return WallClock(c.now(), c.loc)
}

// WallClock re-labels the wall-clock reading of t in loc as UTC.
func WallClock(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)
}
