package create_booking

import (
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	ServiceID int64     // ID услуги
	ClientID  int64     // ID клиента (из аутентификации, не из тела запроса)
	StartTime time.Time // Начало слота (UTC)

	ClientName string                 // Имя клиента для отображения хосту
	Answers    domain.FieldAnswerList // Ответы на кастомные поля услуги

	// RecurrenceCount общее число вхождений серии, включая первое.
	// 0 или 1 - одиночное бронирование. Значение выше лимита услуги
	// обрезается до service.MaxRecurrenceCount.
	RecurrenceCount int
}

// Response модель ответа с созданными бронированиями.
// Для одиночного бронирования список содержит один элемент.
type Response struct {
	Bookings []*domain.Booking
}

// IsRecurring возвращает true, если запрошена повторяющаяся серия
func (r *Request) IsRecurring() bool {
	return r.RecurrenceCount > 1
}
