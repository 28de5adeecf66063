package availability

import (
	"context"
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
)

// AvailabilityRepository интерфейс репозитория доступности
type AvailabilityRepository interface {
	GetRulesByHost(ctx context.Context, hostID int64) ([]*domain.WeeklyAvailabilityRule, error)
	ReplaceRules(ctx context.Context, hostID int64, rules []*domain.WeeklyAvailabilityRule) error
	GetExceptionsByHost(ctx context.Context, hostID int64, dateFrom, dateTo time.Time) ([]*domain.DateException, error)
	UpsertException(ctx context.Context, exc *domain.DateException) (*domain.DateException, error)
	DeleteException(ctx context.Context, hostID int64, date time.Time) error
}

// HostRepository интерфейс репозитория настроек хоста
type HostRepository interface {
	GetByID(ctx context.Context, hostID int64) (*domain.HostSettings, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
