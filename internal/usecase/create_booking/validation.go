package create_booking

import (
	"fmt"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
)

// validateRequest проверяет корректность запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: service id must be positive", ErrInvalidInput)
	}
	if req.ClientID <= 0 {
		return fmt.Errorf("%w: client id must be positive", ErrInvalidInput)
	}
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrInvalidInput)
	}

	// Слоты лежат на минутной сетке - секунды и наносекунды отсекаются
	// на валидации, а не молча округляются
	if req.StartTime.Second() != 0 || req.StartTime.Nanosecond() != 0 {
		return fmt.Errorf("%w: start time must be aligned to a whole minute", ErrInvalidInput)
	}

	if req.RecurrenceCount < 0 {
		return fmt.Errorf("%w: recurrence count must not be negative", ErrInvalidInput)
	}
	if req.RecurrenceCount > domain.MaxRecurrenceLimit {
		return fmt.Errorf("%w: recurrence count exceeds limit of %d", ErrInvalidInput, domain.MaxRecurrenceLimit)
	}

	return nil
}
