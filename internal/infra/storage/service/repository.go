package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
	"github.com/avlko/HBP-SchedulingService/pkg/dbmetrics"
	"github.com/avlko/HBP-SchedulingService/pkg/psqlbuilder"
)

var serviceColumns = []string{
	"id",
	"host_id",
	"name",
	"duration_minutes",
	"buffer_before_minutes",
	"buffer_after_minutes",
	"min_notice_minutes",
	"capacity",
	"concurrency_enabled",
	"max_concurrency",
	"recurrence_enabled",
	"max_recurrence_count",
	"requires_payment",
	"advance_booking_days",
	"created_at",
	"updated_at",
}

// Repository репозиторий бронируемых услуг хоста
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория услуг
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает услугу по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	svc, err := scanService(executor.QueryRowContext(ctx, query, args...).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan service: %v", ErrScanRow, err)
	}

	return svc, nil
}

// GetByHost получает все услуги хоста
func (r *Repository) GetByHost(ctx context.Context, hostID int64) ([]*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where(squirrel.Eq{"host_id": hostID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByHost - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByHost - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]*domain.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByHost - scan row: %v", ErrScanRow, err)
		}
		services = append(services, svc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByHost - rows error: %v", ErrScanRow, err)
	}

	return services, nil
}

func scanService(scan func(dest ...interface{}) error) (*domain.Service, error) {
	var svc domain.Service
	var createdAt, updatedAt sql.NullTime

	err := scan(
		&svc.ID,
		&svc.HostID,
		&svc.Name,
		&svc.DurationMinutes,
		&svc.BufferBeforeMinutes,
		&svc.BufferAfterMinutes,
		&svc.MinNoticeMinutes,
		&svc.Capacity,
		&svc.ConcurrencyEnabled,
		&svc.MaxConcurrency,
		&svc.RecurrenceEnabled,
		&svc.MaxRecurrenceCount,
		&svc.RequiresPayment,
		&svc.AdvanceBookingDays,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	svc.CreatedAt = createdAt.Time
	svc.UpdatedAt = updatedAt.Time
	return &svc, nil
}
