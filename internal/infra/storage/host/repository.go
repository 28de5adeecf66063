package host

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
	"github.com/avlko/HBP-SchedulingService/pkg/dbmetrics"
	"github.com/avlko/HBP-SchedulingService/pkg/psqlbuilder"
)

// Repository репозиторий настроек хоста (таймзона, внешний календарь)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек хоста
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает настройки хоста
func (r *Repository) GetByID(ctx context.Context, hostID int64) (*domain.HostSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"host_id",
		"timezone",
		"calendar_id",
		"created_at",
		"updated_at",
	).
		From("host_settings").
		Where(squirrel.Eq{"host_id": hostID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var settings domain.HostSettings
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&settings.HostID,
		&settings.Timezone,
		&settings.CalendarID,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrHostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan host settings: %v", ErrScanRow, err)
	}

	if settings.Timezone == "" {
		settings.Timezone = domain.DefaultTimezone
	}
	settings.CreatedAt = createdAt.Time
	settings.UpdatedAt = updatedAt.Time

	return &settings, nil
}
