package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
)

func confirmedBooking(serviceID int64, start, end time.Time) *domain.Booking {
	return &domain.Booking{
		ServiceID: serviceID,
		HostID:    10,
		ClientID:  100,
		StartTime: start,
		EndTime:   end,
		Status:    domain.StatusConfirmed,
	}
}

func slotAt(start, end time.Time, capacity int) domain.Slot {
	return domain.Slot{
		StartTime:         start,
		EndTime:           end,
		RemainingCapacity: capacity,
		TotalCapacity:     capacity,
	}
}

func TestResolveBookable(t *testing.T) {
	tenOClock := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	tenThirty := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	emptyBusy := &BusySet{}

	t.Run("same slot bookings reduce remaining capacity", func(t *testing.T) {
		svc := testService()
		svc.ConcurrencyEnabled = true
		svc.Capacity = 3
		svc.MaxConcurrency = 3

		existing := []*domain.Booking{
			confirmedBooking(svc.ID, tenOClock, tenThirty),
			confirmedBooking(svc.ID, tenOClock, tenThirty),
		}

		bookable := ResolveBookable(svc, []domain.Slot{slotAt(tenOClock, tenThirty, 3)}, emptyBusy, existing)
		require.Len(t, bookable, 1)
		assert.Equal(t, 1, bookable[0].RemainingCapacity)
		assert.Equal(t, 3, bookable[0].TotalCapacity)
	})

	t.Run("slot dropped when capacity exhausted", func(t *testing.T) {
		svc := testService()
		svc.ConcurrencyEnabled = true
		svc.Capacity = 2
		svc.MaxConcurrency = 2

		existing := []*domain.Booking{
			confirmedBooking(svc.ID, tenOClock, tenThirty),
			confirmedBooking(svc.ID, tenOClock, tenThirty),
		}

		bookable := ResolveBookable(svc, []domain.Slot{slotAt(tenOClock, tenThirty, 2)}, emptyBusy, existing)
		assert.Empty(t, bookable)
	})

	t.Run("concurrency disabled drops any taken slot", func(t *testing.T) {
		svc := testService()
		existing := []*domain.Booking{confirmedBooking(svc.ID, tenOClock, tenThirty)}

		bookable := ResolveBookable(svc, []domain.Slot{slotAt(tenOClock, tenThirty, 1)}, emptyBusy, existing)
		assert.Empty(t, bookable)
	})

	t.Run("cancelled bookings do not occupy capacity", func(t *testing.T) {
		svc := testService()
		cancelled := confirmedBooking(svc.ID, tenOClock, tenThirty)
		cancelled.Status = domain.StatusCancelled

		bookable := ResolveBookable(svc, []domain.Slot{slotAt(tenOClock, tenThirty, 1)}, emptyBusy, []*domain.Booking{cancelled})
		require.Len(t, bookable, 1)
		assert.Equal(t, 1, bookable[0].RemainingCapacity)
	})

	t.Run("busy overlap drops the slot", func(t *testing.T) {
		svc := testService()
		busy := &BusySet{Intervals: []domain.BusyInterval{{
			Start:  time.Date(2026, 3, 2, 10, 15, 0, 0, time.UTC),
			End:    time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
			Source: domain.BusySourceExternalCalendar,
		}}}

		bookable := ResolveBookable(svc, []domain.Slot{slotAt(tenOClock, tenThirty, 1)}, busy, nil)
		assert.Empty(t, bookable)
	})

	t.Run("off grid same service overlap drops slot even with capacity", func(t *testing.T) {
		svc := testService()
		svc.ConcurrencyEnabled = true
		svc.Capacity = 5
		svc.MaxConcurrency = 5

		// A leftover booking on the old grid after the duration was
		// reconfigured: overlaps the slot without matching it exactly.
		stale := confirmedBooking(svc.ID,
			time.Date(2026, 3, 2, 10, 15, 0, 0, time.UTC),
			time.Date(2026, 3, 2, 10, 45, 0, 0, time.UTC),
		)

		bookable := ResolveBookable(svc, []domain.Slot{slotAt(tenOClock, tenThirty, 5)}, emptyBusy, []*domain.Booking{stale})
		assert.Empty(t, bookable)
	})
}

func TestValidateSlot(t *testing.T) {
	tenOClock := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	tenThirty := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	emptyBusy := &BusySet{}

	t.Run("free slot passes", func(t *testing.T) {
		svc := testService()
		assert.NoError(t, ValidateSlot(svc, tenOClock, tenThirty, emptyBusy, nil))
	})

	t.Run("busy overlap conflicts", func(t *testing.T) {
		svc := testService()
		busy := &BusySet{Intervals: []domain.BusyInterval{{
			Start: time.Date(2026, 3, 2, 9, 45, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 2, 10, 15, 0, 0, time.UTC),
		}}}

		err := ValidateSlot(svc, tenOClock, tenThirty, busy, nil)
		assert.ErrorIs(t, err, ErrSlotConflict)
	})

	t.Run("touching busy interval does not conflict", func(t *testing.T) {
		svc := testService()
		busy := &BusySet{Intervals: []domain.BusyInterval{{
			Start: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
			End:   tenOClock,
		}}}

		assert.NoError(t, ValidateSlot(svc, tenOClock, tenThirty, busy, nil))
	})

	t.Run("concurrency disabled rejects second booking", func(t *testing.T) {
		svc := testService()
		existing := []*domain.Booking{confirmedBooking(svc.ID, tenOClock, tenThirty)}

		err := ValidateSlot(svc, tenOClock, tenThirty, emptyBusy, existing)
		assert.ErrorIs(t, err, ErrCapacityExhausted)
	})

	t.Run("capacity admits bookings up to the limit", func(t *testing.T) {
		svc := testService()
		svc.ConcurrencyEnabled = true
		svc.Capacity = 3
		svc.MaxConcurrency = 3

		existing := []*domain.Booking{
			confirmedBooking(svc.ID, tenOClock, tenThirty),
			confirmedBooking(svc.ID, tenOClock, tenThirty),
		}
		require.NoError(t, ValidateSlot(svc, tenOClock, tenThirty, emptyBusy, existing))

		existing = append(existing, confirmedBooking(svc.ID, tenOClock, tenThirty))
		err := ValidateSlot(svc, tenOClock, tenThirty, emptyBusy, existing)
		assert.ErrorIs(t, err, ErrCapacityExhausted)
	})

	t.Run("max concurrency caps capacity", func(t *testing.T) {
		svc := testService()
		svc.ConcurrencyEnabled = true
		svc.Capacity = 10
		svc.MaxConcurrency = 1

		existing := []*domain.Booking{confirmedBooking(svc.ID, tenOClock, tenThirty)}
		err := ValidateSlot(svc, tenOClock, tenThirty, emptyBusy, existing)
		assert.ErrorIs(t, err, ErrCapacityExhausted)
	})

	t.Run("off grid overlap conflicts regardless of capacity", func(t *testing.T) {
		svc := testService()
		svc.ConcurrencyEnabled = true
		svc.Capacity = 5
		svc.MaxConcurrency = 5

		stale := confirmedBooking(svc.ID,
			time.Date(2026, 3, 2, 10, 15, 0, 0, time.UTC),
			time.Date(2026, 3, 2, 10, 45, 0, 0, time.UTC),
		)

		err := ValidateSlot(svc, tenOClock, tenThirty, emptyBusy, []*domain.Booking{stale})
		assert.ErrorIs(t, err, ErrSlotConflict)
	})
}
