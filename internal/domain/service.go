package domain

import "time"

// Service represents a bookable service published by a host.
// Capacity and MaxConcurrency are independent knobs: capacity bounds how
// many distinct clients may occupy the same slot when concurrency is
// enabled; with concurrency disabled the effective capacity is always 1.
type Service struct {
	ID     int64
	HostID int64
	Name   string

	DurationMinutes     int
	BufferBeforeMinutes int
	BufferAfterMinutes  int
	MinNoticeMinutes    int

	Capacity           int
	ConcurrencyEnabled bool
	MaxConcurrency     int

	RecurrenceEnabled  bool
	MaxRecurrenceCount int

	RequiresPayment bool

	// AdvanceBookingDays limits how far ahead slots are offered; 0 = unlimited
	AdvanceBookingDays int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotCapacity returns how many confirmed bookings one slot admits
func (s *Service) SlotCapacity() int {
	if !s.ConcurrencyEnabled {
		return 1
	}
	if s.MaxConcurrency < s.Capacity {
		return s.MaxConcurrency
	}
	return s.Capacity
}

// TotalSlotMinutes returns the space one booking consumes inside an
// open window, buffers included
func (s *Service) TotalSlotMinutes() int {
	return s.BufferBeforeMinutes + s.DurationMinutes + s.BufferAfterMinutes
}

// HasAdvanceBookingLimit returns true if bookings are limited in how far
// ahead they may be placed
func (s *Service) HasAdvanceBookingLimit() bool {
	return s.AdvanceBookingDays > 0
}

// HostSettings holds per-host scheduling settings.
// Services inherit the host's timezone; CalendarID identifies the host's
// external calendar for busy-time sync (nil = sync disabled).
type HostSettings struct {
	HostID     int64
	Timezone   string
	CalendarID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasExternalCalendar returns true if the host has busy-time sync configured
func (h *HostSettings) HasExternalCalendar() bool {
	return h.CalendarID != nil && *h.CalendarID != ""
}
