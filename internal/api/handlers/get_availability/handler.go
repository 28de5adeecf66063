package get_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avlko/HBP-SchedulingService/internal/api/handlers"
	"github.com/avlko/HBP-SchedulingService/internal/api/middleware"
	"github.com/avlko/HBP-SchedulingService/internal/service/availability"
	"github.com/avlko/HBP-SchedulingService/internal/service/availability/models"
)

const (
	msgInvalidHostID = "некорректный ID хоста"
	msgInvalidRange  = "некорректный период дат"
	msgMissingUserID = "отсутствует ID пользователя"
	msgHostNotFound  = "хост не найден"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/hosts/{hostId}/availability?dateFrom=...&dateTo=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	hostID, err := strconv.ParseInt(vars["hostId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /hosts/{id}/availability - Invalid host ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidHostID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /hosts/{id}/availability - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req := &models.GetAvailabilityRequest{
		UserID:   userID,
		HostID:   hostID,
		DateFrom: r.URL.Query().Get("dateFrom"),
		DateTo:   r.URL.Query().Get("dateTo"),
	}

	result, err := h.service.GetAvailability(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrHostNotFound):
			h.logger.Warn("GET /hosts/{id}/availability - Host not found: host_id=%d", hostID)
			handlers.RespondNotFound(w, msgHostNotFound)

		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("GET /hosts/{id}/availability - Invalid date range: host_id=%d", hostID)
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("GET /hosts/{id}/availability - Failed: host_id=%d, error=%v", hostID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
