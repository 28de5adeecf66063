package upsert_exception

import "github.com/avlko/HBP-SchedulingService/internal/service/availability/models"

// UpsertExceptionRequest HTTP request model.
// Либо unavailable = true, либо замещающее окно startTime-endTime.
type UpsertExceptionRequest struct {
	Date        string  `json:"date"` // "2006-01-02"
	Unavailable bool    `json:"unavailable"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpsertExceptionRequest) ToServiceRequest(hostID, userID int64) *models.UpsertExceptionRequest {
	return &models.UpsertExceptionRequest{
		UserID:      userID,
		HostID:      hostID,
		Date:        r.Date,
		Unavailable: r.Unavailable,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
	}
}
