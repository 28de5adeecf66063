package get_bookable_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/avlko/HBP-SchedulingService/internal/api/handlers"
	"github.com/avlko/HBP-SchedulingService/internal/domain"
	getBookableSlots "github.com/avlko/HBP-SchedulingService/internal/usecase/get_bookable_slots"
)

const (
	msgInvalidServiceID = "некорректный ID услуги"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgServiceNotFound  = "услуга не найдена"
	msgHostNotFound     = "хост не найден"
	msgDateInPast       = "дата не может быть в прошлом"
	msgDateTooFar       = "дата слишком далеко в будущем"
)

type Handler struct {
	useCase GetBookableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetBookableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/services/{serviceId}/bookable-slots?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	serviceID, err := strconv.ParseInt(vars["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /services/{id}/bookable-slots - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /services/{id}/bookable-slots - Invalid date %q: %v", dateStr, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getBookableSlots.Request{
		ServiceID: serviceID,
		Date:      date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getBookableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /services/{id}/bookable-slots - Service not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getBookableSlots.ErrHostNotFound):
			h.logger.Warn("GET /services/{id}/bookable-slots - Host not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgHostNotFound)

		case errors.Is(err, getBookableSlots.ErrInvalidDate):
			h.logger.Warn("GET /services/{id}/bookable-slots - Date in the past: service_id=%d, date=%s", serviceID, dateStr)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, getBookableSlots.ErrDateTooFarInFuture):
			h.logger.Warn("GET /services/{id}/bookable-slots - Date too far: service_id=%d, date=%s", serviceID, dateStr)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getBookableSlots.ErrInvalidInput):
			h.logger.Warn("GET /services/{id}/bookable-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidServiceID)

		default:
			h.logger.Error("GET /services/{id}/bookable-slots - Failed: service_id=%d, error=%v", serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /services/{id}/bookable-slots - Returned %d slots: service_id=%d, date=%s, partial=%t",
		len(result.Slots), serviceID, dateStr, result.Partial)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
