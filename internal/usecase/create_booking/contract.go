package create_booking

import (
	"context"
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// Create создает одно бронирование
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	// CreateSeries создает все бронирования повторяющейся серии
	CreateSeries(ctx context.Context, bookings []*domain.Booking) ([]*domain.Booking, error)
	// GetByHostWithFilter получает бронирования хоста за период
	GetByHostWithFilter(ctx context.Context, filter domain.HostBookingsFilter) ([]*domain.Booking, error)
	// GetConfirmedByServiceAndRange получает подтвержденные бронирования
	// услуги, пересекающие период
	GetConfirmedByServiceAndRange(ctx context.Context, serviceID int64, rangeStart, rangeEnd time.Time) ([]*domain.Booking, error)
}

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// HostRepository интерфейс репозитория настроек хоста
type HostRepository interface {
	GetByID(ctx context.Context, hostID int64) (*domain.HostSettings, error)
}

// AvailabilityRepository интерфейс репозитория доступности
type AvailabilityRepository interface {
	GetRulesByHost(ctx context.Context, hostID int64) ([]*domain.WeeklyAvailabilityRule, error)
	GetExceptionsByHost(ctx context.Context, hostID int64, dateFrom, dateTo time.Time) ([]*domain.DateException, error)
}

// TxManager интерфейс менеджера транзакций.
// Коммит бронирования выполняется целиком в сериализуемой транзакции:
// перечитка занятости, проверка слота и вставка - одна атомарная единица.
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics интерфейс счетчиков бизнес-метрик
type Metrics interface {
	BookingCreated(recurring bool)
	BookingRejected(reason string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
