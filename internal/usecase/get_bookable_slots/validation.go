package get_bookable_slots

import (
	"fmt"
	"time"
)

// validateRequest проверяет корректность запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: service id must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidDate)
	}
	return nil
}

// validateDate проверяет, что дата не в прошлом (по календарю хоста)
// и не превышает горизонт бронирования услуги.
func validateDate(localDay, nowLocal time.Time, advanceDays int) error {
	today := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, nowLocal.Location())

	if localDay.Before(today) {
		return fmt.Errorf("%w: date is in the past", ErrInvalidDate)
	}

	if advanceDays > 0 {
		horizon := today.AddDate(0, 0, advanceDays)
		if localDay.After(horizon) {
			return fmt.Errorf("%w: date exceeds booking horizon of %d days", ErrDateTooFarInFuture, advanceDays)
		}
	}

	return nil
}
