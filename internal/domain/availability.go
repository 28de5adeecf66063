package domain

import "time"

// WeeklyAvailabilityRule is one recurring open window in the host's week.
// Times are minutes of the host-local day. Multiple rules per weekday are
// allowed and may overlap; overlapping rules are merged with union semantics.
type WeeklyAvailabilityRule struct {
	ID          int64
	HostID      int64
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window returns the rule's open interval
func (r *WeeklyAvailabilityRule) Window() TimeWindow {
	return TimeWindow{StartMinute: r.StartMinute, EndMinute: r.EndMinute}
}

// DateException overrides all weekly rules for one calendar date.
// Either the whole day is unavailable, or a replacement window applies.
type DateException struct {
	ID          int64
	HostID      int64
	Date        time.Time // date only, host-local calendar day
	Unavailable bool
	StartMinute *int
	EndMinute   *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window returns the replacement window for a non-unavailable exception
func (e *DateException) Window() (TimeWindow, bool) {
	if e.Unavailable || e.StartMinute == nil || e.EndMinute == nil {
		return TimeWindow{}, false
	}
	return TimeWindow{StartMinute: *e.StartMinute, EndMinute: *e.EndMinute}, true
}

// TimeWindow is a half-open interval [StartMinute, EndMinute) within one
// host-local day. All interval arithmetic is whole-minute integer math.
type TimeWindow struct {
	StartMinute int
	EndMinute   int
}

// Length returns the window length in minutes
func (w TimeWindow) Length() int {
	return w.EndMinute - w.StartMinute
}

// Overlaps returns true if two windows strictly overlap; touching
// boundaries do not count
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.StartMinute < other.EndMinute && w.EndMinute > other.StartMinute
}

// Contains returns true if other lies entirely inside w
func (w TimeWindow) Contains(other TimeWindow) bool {
	return other.StartMinute >= w.StartMinute && other.EndMinute <= w.EndMinute
}
