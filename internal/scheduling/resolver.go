package scheduling

import (
	"errors"
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
)

var (
	// ErrSlotConflict is returned when a slot overlaps busy time or has
	// no remaining capacity
	ErrSlotConflict = errors.New("scheduling: slot conflicts with existing busy time")

	// ErrCapacityExhausted is returned when the exact slot has reached
	// its confirmed-booking limit
	ErrCapacityExhausted = errors.New("scheduling: slot capacity exhausted")
)

// ResolveBookable filters candidate slots against busy time and the
// service's own confirmed bookings, producing the final bookable list.
//
// Concurrency disabled: a slot overlapping anything - other services'
// bookings, external calendar time or this service's own bookings - is
// dropped. Concurrency enabled: confirmed bookings occupying exactly the
// same interval decrement the slot's remaining capacity and the slot is
// dropped at zero; any other overlap still drops the slot, because the
// host cannot be in two meetings at once.
func ResolveBookable(
	service *domain.Service,
	slots []domain.Slot,
	busy *BusySet,
	serviceBookings []*domain.Booking,
) []domain.Slot {
	bookable := make([]domain.Slot, 0, len(slots))

	for _, slot := range slots {
		if busy.AnyOverlap(slot.StartTime, slot.EndTime) {
			continue
		}

		taken, offGrid := countServiceLoad(serviceBookings, slot.StartTime, slot.EndTime)
		if offGrid {
			continue
		}

		if !service.ConcurrencyEnabled {
			if taken > 0 {
				continue
			}
			bookable = append(bookable, slot)
			continue
		}

		slot.RemainingCapacity -= taken
		if slot.RemainingCapacity <= 0 {
			continue
		}
		bookable = append(bookable, slot)
	}

	return bookable
}

// ValidateSlot is the authoritative commit-time check for one slot. The
// advisory slot list may be stale by the time the client submits, so the
// committer runs this against current store state inside the transaction.
func ValidateSlot(
	service *domain.Service,
	start, end time.Time,
	busy *BusySet,
	serviceBookings []*domain.Booking,
) error {
	if busy.AnyOverlap(start, end) {
		return ErrSlotConflict
	}

	taken, offGrid := countServiceLoad(serviceBookings, start, end)
	if offGrid {
		return ErrSlotConflict
	}

	if !service.ConcurrencyEnabled {
		if taken > 0 {
			return ErrCapacityExhausted
		}
		return nil
	}

	if taken >= service.SlotCapacity() {
		return ErrCapacityExhausted
	}
	return nil
}

// countServiceLoad counts confirmed bookings of the target service that
// occupy exactly [start, end). A confirmed booking that overlaps the
// interval without matching it exactly (possible after the service's
// duration was reconfigured) is reported as offGrid and treated as a full
// conflict by the callers.
func countServiceLoad(bookings []*domain.Booking, start, end time.Time) (taken int, offGrid bool) {
	for _, booking := range bookings {
		if !booking.IsConfirmed() {
			continue
		}
		if booking.SameSlot(start, end) {
			taken++
			continue
		}
		if booking.Overlaps(start, end) {
			return 0, true
		}
	}
	return taken, false
}
