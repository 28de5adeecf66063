package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking represents a confirmed reservation of a time slot.
// Start and end times are stored in UTC; the host's timezone only
// affects which calendar day the slot belongs to.
type Booking struct {
	ID        int64
	ServiceID int64
	HostID    int64
	ClientID  int64
	StartTime time.Time
	EndTime   time.Time
	Status    BookingStatus

	// RecurrenceGroupID links bookings created as one recurring series.
	// Grouping is for display and audit only: cancelling one occurrence
	// never touches its siblings.
	RecurrenceGroupID *uuid.UUID

	// Denormalized data for history
	ClientName  string
	ServiceName string

	// Answers to the service's custom form fields
	Answers FieldAnswerList

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsConfirmed returns true if the booking occupies capacity
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusConfirmed
}

// IsRecurring returns true if the booking belongs to a recurring series
func (b *Booking) IsRecurring() bool {
	return b.RecurrenceGroupID != nil
}

// Overlaps returns true if [b.StartTime, b.EndTime) strictly overlaps
// [start, end). Touching boundaries do not count as overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// SameSlot returns true if the booking occupies exactly [start, end)
func (b *Booking) SameSlot(start, end time.Time) bool {
	return b.StartTime.Equal(start) && b.EndTime.Equal(end)
}

// FieldAnswer is one answer to a service's custom form field.
// An ordered tagged list replaces an open-ended dynamic map so the
// per-service form stays flexible without losing type safety.
type FieldAnswer struct {
	FieldID string `json:"fieldId"`
	Value   string `json:"value"`
}

// FieldAnswerList is stored as a single JSONB column
type FieldAnswerList []FieldAnswer

// Value implements driver.Valuer
func (l FieldAnswerList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("field answers: marshal: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (l *FieldAnswerList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("field answers: unsupported scan type %T", src)
	}
	return json.Unmarshal(data, l)
}

// HostBookingsFilter фильтр для получения бронирований хоста
type HostBookingsFilter struct {
	HostID           int64
	ServiceID        *int64     // nil - все услуги хоста
	RangeStart       *time.Time // начало периода (UTC); выбираются пересекающие бронирования
	RangeEnd         *time.Time // конец периода (UTC)
	Status           *BookingStatus
	IncludeCancelled bool
}
