package delete_exception

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avlko/HBP-SchedulingService/internal/api/handlers"
	"github.com/avlko/HBP-SchedulingService/internal/api/middleware"
	"github.com/avlko/HBP-SchedulingService/internal/service/availability"
)

const (
	msgInvalidHostID    = "некорректный ID хоста"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgForbidden        = "доступ запрещен"
	msgExceptionMissing = "исключение на дату не найдено"
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

// Handle DELETE /api/v1/hosts/{hostId}/availability/exceptions/{date}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	hostID, err := strconv.ParseInt(vars["hostId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /hosts/{id}/availability/exceptions/{date} - Invalid host ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidHostID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /hosts/{id}/availability/exceptions/{date} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	date := vars["date"]

	err = h.service.DeleteException(r.Context(), hostID, userID, date)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrAccessDenied):
			h.logger.Warn("DELETE /hosts/{id}/availability/exceptions/{date} - Access denied: host_id=%d, user_id=%d",
				hostID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, availability.ErrExceptionNotFound):
			h.logger.Warn("DELETE /hosts/{id}/availability/exceptions/{date} - Not found: host_id=%d, date=%s",
				hostID, date)
			handlers.RespondNotFound(w, msgExceptionMissing)

		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("DELETE /hosts/{id}/availability/exceptions/{date} - Invalid date: host_id=%d, date=%s",
				hostID, date)
			handlers.RespondBadRequest(w, msgInvalidDate)

		default:
			h.logger.Error("DELETE /hosts/{id}/availability/exceptions/{date} - Failed: host_id=%d, error=%v",
				hostID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /hosts/{id}/availability/exceptions/{date} - Deleted: host_id=%d, date=%s",
		hostID, date)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
