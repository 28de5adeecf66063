package create_booking

import (
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
	createBooking "github.com/avlko/HBP-SchedulingService/internal/usecase/create_booking"
)

// FieldAnswerRequest ответ на кастомное поле услуги
type FieldAnswerRequest struct {
	FieldID string `json:"fieldId"`
	Value   string `json:"value"`
}

// CreateBookingRequest HTTP request model.
// StartTime - UTC ISO 8601; таймзона хоста влияет только на то, к какому
// календарному дню относится слот.
type CreateBookingRequest struct {
	ServiceID  int64                `json:"serviceId"`
	StartTime  string               `json:"startTime"`
	ClientName string               `json:"clientName"`
	Answers    []FieldAnswerRequest `json:"answers,omitempty"`

	// RecurrenceCount общее число вхождений еженедельной серии, включая
	// первое; 0 или 1 - одиночное бронирование
	RecurrenceCount int `json:"recurrenceCount,omitempty"`
}

// BookingResponse HTTP модель одного бронирования
type BookingResponse struct {
	ID                int64   `json:"id"`
	ServiceID         int64   `json:"serviceId"`
	HostID            int64   `json:"hostId"`
	ClientID          int64   `json:"clientId"`
	StartTime         string  `json:"startTime"`
	EndTime           string  `json:"endTime"`
	Status            string  `json:"status"`
	RecurrenceGroupID *string `json:"recurrenceGroupId,omitempty"`
	ServiceName       string  `json:"serviceName"`
	CreatedAt         string  `json:"createdAt"`
}

// CreateBookingResponse HTTP модель ответа.
// Для одиночного бронирования список содержит один элемент.
type CreateBookingResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	startTime, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}

	var answers domain.FieldAnswerList
	for _, a := range r.Answers {
		answers = append(answers, domain.FieldAnswer{FieldID: a.FieldID, Value: a.Value})
	}

	return &createBooking.Request{
		ServiceID:       r.ServiceID,
		ClientID:        userID,
		StartTime:       startTime.UTC(),
		ClientName:      r.ClientName,
		Answers:         answers,
		RecurrenceCount: r.RecurrenceCount,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	result := &CreateBookingResponse{
		Bookings: make([]BookingResponse, 0, len(resp.Bookings)),
	}

	for _, b := range resp.Bookings {
		item := BookingResponse{
			ID:          b.ID,
			ServiceID:   b.ServiceID,
			HostID:      b.HostID,
			ClientID:    b.ClientID,
			StartTime:   b.StartTime.UTC().Format(time.RFC3339),
			EndTime:     b.EndTime.UTC().Format(time.RFC3339),
			Status:      string(b.Status),
			ServiceName: b.ServiceName,
			CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if b.RecurrenceGroupID != nil {
			groupID := b.RecurrenceGroupID.String()
			item.RecurrenceGroupID = &groupID
		}
		result.Bookings = append(result.Bookings, item)
	}

	return result
}
