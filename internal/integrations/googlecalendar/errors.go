package googlecalendar

import "errors"

var (
	// ErrNotConfigured возвращается, когда интеграция с календарем выключена
	ErrNotConfigured = errors.New("googlecalendar: integration is not configured")

	// ErrUnavailable возвращается, когда внешний календарь недоступен или
	// не ответил за отведенный таймаут. Читающий слой деградирует до
	// внутренней занятости и помечает результат как partial.
	ErrUnavailable = errors.New("googlecalendar: upstream calendar unavailable")
)
