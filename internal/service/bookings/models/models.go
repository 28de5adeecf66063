package models

import (
	"errors"
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// GetUserBookingsRequest запрос на получение бронирований клиента
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// GetHostBookingsRequest запрос на получение бронирований хоста
type GetHostBookingsRequest struct {
	UserID           int64      `json:"userId"`
	HostID           int64      `json:"hostId"`
	ServiceID        *int64     `json:"serviceId,omitempty"`  // Фильтр по услуге (опционально)
	RangeStart       *time.Time `json:"rangeStart,omitempty"` // Начало периода (опционально)
	RangeEnd         *time.Time `json:"rangeEnd,omitempty"`   // Конец периода (опционально)
	Status           *string    `json:"status,omitempty"`     // Фильтр по статусу (опционально)
	IncludeCancelled bool       `json:"includeCancelled,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetHostBookingsRequest) ToDomainFilter() (domain.HostBookingsFilter, error) {
	filter := domain.HostBookingsFilter{
		HostID:           r.HostID,
		ServiceID:        r.ServiceID,
		RangeStart:       r.RangeStart,
		RangeEnd:         r.RangeEnd,
		IncludeCancelled: r.IncludeCancelled,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID        int64  `json:"id"`
	ServiceID int64  `json:"serviceId"`
	HostID    int64  `json:"hostId"`
	ClientID  int64  `json:"clientId"`
	StartTime string `json:"startTime"` // UTC ISO 8601
	EndTime   string `json:"endTime"`   // UTC ISO 8601
	Status    string `json:"status"`

	RecurrenceGroupID *string `json:"recurrenceGroupId,omitempty"`

	// Денормализованные данные
	ClientName  string               `json:"clientName"`
	ServiceName string               `json:"serviceName"`
	Answers     []FieldAnswer        `json:"answers,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // UTC ISO 8601

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FieldAnswer ответ на кастомное поле услуги
type FieldAnswer struct {
	FieldID string `json:"fieldId"`
	Value   string `json:"value"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:          b.ID,
		ServiceID:   b.ServiceID,
		HostID:      b.HostID,
		ClientID:    b.ClientID,
		StartTime:   b.StartTime.UTC().Format(time.RFC3339),
		EndTime:     b.EndTime.UTC().Format(time.RFC3339),
		Status:      string(b.Status),
		ClientName:  b.ClientName,
		ServiceName: b.ServiceName,
	}

	if b.RecurrenceGroupID != nil {
		groupID := b.RecurrenceGroupID.String()
		resp.RecurrenceGroupID = &groupID
	}

	if len(b.Answers) > 0 {
		resp.Answers = make([]FieldAnswer, 0, len(b.Answers))
		for _, a := range b.Answers {
			resp.Answers = append(resp.Answers, FieldAnswer{FieldID: a.FieldID, Value: a.Value})
		}
	}

	resp.CancellationReason = b.CancellationReason
	if b.CancelledAt != nil {
		cancelledAt := b.CancelledAt.UTC().Format(time.RFC3339)
		resp.CancelledAt = &cancelledAt
	}

	resp.CreatedAt = b.CreatedAt
	resp.UpdatedAt = b.UpdatedAt

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	result := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}
	for _, b := range bookings {
		if resp := FromDomainBooking(b); resp != nil {
			result.Bookings = append(result.Bookings, *resp)
		}
	}
	return result
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	switch domain.BookingStatus(status) {
	case domain.StatusConfirmed:
		return domain.StatusConfirmed, nil
	case domain.StatusCancelled:
		return domain.StatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}
