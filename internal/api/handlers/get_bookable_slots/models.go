package get_bookable_slots

import (
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
	getBookableSlots "github.com/avlko/HBP-SchedulingService/internal/usecase/get_bookable_slots"
)

// SlotResponse HTTP модель одного слота
type SlotResponse struct {
	StartTime         string `json:"startTime"` // UTC ISO 8601
	EndTime           string `json:"endTime"`   // UTC ISO 8601
	RemainingCapacity int    `json:"remainingCapacity"`
	TotalCapacity     int    `json:"totalCapacity"`
}

// BookableSlotsResponse HTTP модель ответа со списком слотов
type BookableSlotsResponse struct {
	ServiceID int64          `json:"serviceId"`
	HostID    int64          `json:"hostId"`
	Date      string         `json:"date"`
	Timezone  string         `json:"timezone"`
	Slots     []SlotResponse `json:"slots"`
	Partial   bool           `json:"partial"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getBookableSlots.Response) *BookableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, slot := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartTime:         slot.StartTime.UTC().Format(time.RFC3339),
			EndTime:           slot.EndTime.UTC().Format(time.RFC3339),
			RemainingCapacity: slot.RemainingCapacity,
			TotalCapacity:     slot.TotalCapacity,
		})
	}

	return &BookableSlotsResponse{
		ServiceID: resp.ServiceID,
		HostID:    resp.HostID,
		Date:      resp.Date.Format(domain.DateFormat),
		Timezone:  resp.Timezone,
		Slots:     slots,
		Partial:   resp.Partial,
	}
}
