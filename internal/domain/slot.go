package domain

import "time"

// BusySource tags where a busy interval came from
type BusySource string

const (
	BusySourceExternalCalendar BusySource = "external_calendar"
	BusySourceExistingBooking  BusySource = "existing_booking"
)

// BusyInterval is one occupied interval in UTC. Busy intervals are
// recomputed per query and never persisted.
type BusyInterval struct {
	Start  time.Time
	End    time.Time
	Source BusySource
}

// Overlaps returns true if the interval strictly overlaps [start, end)
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && b.End.After(start)
}

// Slot is one bookable unit derived for a service and day.
// Slots are never persisted; the list returned to a client is advisory
// and re-validated at commit time.
type Slot struct {
	StartTime         time.Time
	EndTime           time.Time
	RemainingCapacity int
	TotalCapacity     int
}

// IsFull returns true if the slot has no remaining capacity
func (s *Slot) IsFull() bool {
	return s.RemainingCapacity <= 0
}

// IsPartiallyTaken returns true if some but not all capacity is used
func (s *Slot) IsPartiallyTaken() bool {
	return s.RemainingCapacity > 0 && s.RemainingCapacity < s.TotalCapacity
}
