package update_availability

import "github.com/avlko/HBP-SchedulingService/internal/service/availability/models"

// UpdateRulesRequest HTTP request model - полная замена набора правил
type UpdateRulesRequest struct {
	Rules []models.WeeklyRuleRequest `json:"rules"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateRulesRequest) ToServiceRequest(hostID, userID int64) *models.UpdateRulesRequest {
	return &models.UpdateRulesRequest{
		UserID: userID,
		HostID: hostID,
		Rules:  r.Rules,
	}
}
