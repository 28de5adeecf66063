package availability

import "errors"

var (
	// ErrHostNotFound возвращается, когда настройки хоста не найдены
	ErrHostNotFound = errors.New("host not found")

	// ErrExceptionNotFound возвращается, когда исключение на дату не найдено
	ErrExceptionNotFound = errors.New("availability exception not found")

	// ErrInvalidRule возвращается при некорректном правиле доступности.
	// Правила отклоняются при записи - путь чтения считает хранимые
	// правила корректными.
	ErrInvalidRule = errors.New("invalid availability rule")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
