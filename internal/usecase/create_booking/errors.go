package create_booking

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrHostNotFound возвращается, когда настройки хоста не найдены
	ErrHostNotFound = errors.New("create_booking: host not found")

	// ErrSlotNotAvailable возвращается, когда запрошенный слот больше не
	// доступен на момент коммита. Ожидаемая ошибка: клиент выбирает другое
	// время и повторяет запрос.
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrRecurrenceConflict возвращается, когда хотя бы одно вхождение
	// повторяющейся серии не проходит проверку - серия отклоняется целиком
	ErrRecurrenceConflict = errors.New("create_booking: recurrence series has a conflicting occurrence")

	// ErrRecurrenceNotAllowed возвращается, когда повторение запрошено для
	// услуги с выключенным recurrence
	ErrRecurrenceNotAllowed = errors.New("create_booking: recurrence is not enabled for this service")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
