package scheduling

import (
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
)

// GenerateSlots derives the full candidate slot list for a service on one
// host-local calendar day, before conflict resolution.
//
// Candidates start at window.start + bufferBefore and step by the service
// duration - buffers consume space at the edges of the open window, they
// are not reserved as dead time between adjacent slots. A candidate is
// emitted when its buffer-extended span fits entirely inside the window
// and its start clears now + minNotice. Partial slots are never emitted.
//
// date carries the calendar day and the host's timezone in its Location;
// emitted slot times are UTC. now may be any location.
func GenerateSlots(
	service *domain.Service,
	date time.Time,
	windows []domain.TimeWindow,
	now time.Time,
) []domain.Slot {
	if service.DurationMinutes <= 0 {
		return nil
	}

	capacity := service.SlotCapacity()
	notBefore := now.Add(time.Duration(service.MinNoticeMinutes) * time.Minute)
	year, month, day := date.Date()
	loc := date.Location()

	slots := make([]domain.Slot, 0)

	for _, window := range windows {
		if window.Length() < service.TotalSlotMinutes() {
			continue
		}

		first := window.StartMinute + service.BufferBeforeMinutes
		for startMin := first; startMin+service.DurationMinutes+service.BufferAfterMinutes <= window.EndMinute; startMin += service.DurationMinutes {
			// time.Date normalizes minute overflow against the host
			// location, which keeps DST days on wall-clock semantics
			start := time.Date(year, month, day, 0, startMin, 0, 0, loc).UTC()
			end := time.Date(year, month, day, 0, startMin+service.DurationMinutes, 0, 0, loc).UTC()

			if start.Before(notBefore) {
				continue
			}

			slots = append(slots, domain.Slot{
				StartTime:         start,
				EndTime:           end,
				RemainingCapacity: capacity,
				TotalCapacity:     capacity,
			})
		}
	}

	return slots
}

// AlignedSlot reports whether [start, end) is one of the candidates the
// generator would emit for the given day, ignoring the minimum-notice
// cutoff. The commit path uses it to reject off-grid requests before
// touching capacity.
func AlignedSlot(
	service *domain.Service,
	date time.Time,
	windows []domain.TimeWindow,
	start, end time.Time,
) bool {
	candidates := GenerateSlots(service, date, windows, time.Time{})
	for _, slot := range candidates {
		if slot.StartTime.Equal(start) && slot.EndTime.Equal(end) {
			return true
		}
	}
	return false
}
