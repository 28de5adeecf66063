package get_bookable_slots

import (
	"context"
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// GetByHostWithFilter получает подтвержденные бронирования хоста за период
	GetByHostWithFilter(ctx context.Context, filter domain.HostBookingsFilter) ([]*domain.Booking, error)
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

// BusySource интерфейс внешнего источника занятости (календарь хоста)
type BusySource interface {
	FetchBusyIntervals(ctx context.Context, calendarID string, rangeStart, rangeEnd time.Time) ([]domain.BusyInterval, error)
}

// Metrics интерфейс счетчиков бизнес-метрик
type Metrics interface {
	SlotQueryPartial(source string)
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
