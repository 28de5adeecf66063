package scheduling

import (
	"sort"
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
)

// BusySet is the normalized busy time used to filter candidate slots.
// Partial marks that the external calendar could not be reached and the
// set contains internally known busy time only; a partial set still
// produces a usable (if optimistic) slot list.
type BusySet struct {
	Intervals []domain.BusyInterval
	Partial   bool
}

// AnyOverlap returns true if [start, end) overlaps any busy interval.
// Intervals are sorted, so the scan stops at the first interval starting
// at or after end.
func (s *BusySet) AnyOverlap(start, end time.Time) bool {
	for _, interval := range s.Intervals {
		if !interval.Start.Before(end) {
			break
		}
		if interval.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// CollectBusy builds a BusySet from confirmed bookings and externally
// reported busy windows, clipped to [rangeStart, rangeEnd). Bookings of
// the target service are excluded when its concurrency accounting is
// handled separately by the resolver; pass targetServiceID = 0 to keep
// every booking in the set.
func CollectBusy(
	bookings []*domain.Booking,
	external []domain.BusyInterval,
	rangeStart, rangeEnd time.Time,
	targetServiceID int64,
) []domain.BusyInterval {
	intervals := make([]domain.BusyInterval, 0, len(bookings)+len(external))

	for _, booking := range bookings {
		if !booking.IsConfirmed() {
			continue
		}
		if targetServiceID != 0 && booking.ServiceID == targetServiceID {
			continue
		}
		if !booking.Overlaps(rangeStart, rangeEnd) {
			continue
		}
		intervals = append(intervals, domain.BusyInterval{
			Start:  booking.StartTime,
			End:    booking.EndTime,
			Source: domain.BusySourceExistingBooking,
		})
	}

	for _, interval := range external {
		if !interval.Overlaps(rangeStart, rangeEnd) {
			continue
		}
		interval.Source = domain.BusySourceExternalCalendar
		intervals = append(intervals, interval)
	}

	return MergeBusy(intervals)
}

// MergeBusy sorts intervals by start and merges overlapping and touching
// ones. The source of a merged interval is the source of its earliest part.
func MergeBusy(intervals []domain.BusyInterval) []domain.BusyInterval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]domain.BusyInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].End.Before(sorted[j].End)
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []domain.BusyInterval{sorted[0]}
	for _, interval := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !interval.Start.After(last.End) {
			if interval.End.After(last.End) {
				last.End = interval.End
			}
			continue
		}
		merged = append(merged, interval)
	}
	return merged
}
