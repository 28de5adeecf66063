package availability

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
	"github.com/avlko/HBP-SchedulingService/pkg/dbmetrics"
	"github.com/avlko/HBP-SchedulingService/pkg/psqlbuilder"
)

// Repository репозиторий правил доступности и исключений по датам
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория доступности
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetRulesByHost получает все еженедельные правила хоста
func (r *Repository) GetRulesByHost(ctx context.Context, hostID int64) ([]*domain.WeeklyAvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"host_id",
		"weekday",
		"start_minute",
		"end_minute",
		"created_at",
		"updated_at",
	).
		From("availability_rules").
		Where(squirrel.Eq{"host_id": hostID}).
		OrderBy("weekday ASC, start_minute ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetRulesByHost - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetRulesByHost - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]*domain.WeeklyAvailabilityRule, 0)
	for rows.Next() {
		var rule domain.WeeklyAvailabilityRule
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(
			&rule.ID,
			&rule.HostID,
			&rule.Weekday,
			&rule.StartMinute,
			&rule.EndMinute,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetRulesByHost - scan row: %w", ErrScanRow, err)
		}
		rule.CreatedAt = createdAt.Time
		rule.UpdatedAt = updatedAt.Time
		rules = append(rules, &rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetRulesByHost - rows error: %w", ErrScanRow, err)
	}

	return rules, nil
}

// ReplaceRules заменяет весь набор еженедельных правил хоста.
// Настройки доступности редактируются целиком из кабинета хоста,
// поэтому замена набора атомарна: удаление и вставка в одном вызове.
func (r *Repository) ReplaceRules(ctx context.Context, hostID int64, rules []*domain.WeeklyAvailabilityRule) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteQuery, deleteArgs, err := psqlbuilder.Delete("availability_rules").
		Where(squirrel.Eq{"host_id": hostID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceRules - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: ReplaceRules - execute delete: %w", ErrExecQuery, err)
	}

	if len(rules) == 0 {
		return nil
	}

	insertBuilder := psqlbuilder.Insert("availability_rules").
		Columns("host_id", "weekday", "start_minute", "end_minute")
	for _, rule := range rules {
		insertBuilder = insertBuilder.Values(hostID, rule.Weekday, rule.StartMinute, rule.EndMinute)
	}

	insertQuery, insertArgs, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceRules - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("%w: ReplaceRules - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// dateArg приводит момент к календарной дате в его собственной таймзоне.
// Колонки DATE параметризуются строками: timestamptz-параметр Postgres
// кастует к дате в таймзоне сессии, и для хостов вне UTC локальная
// полночь уезжает на соседний день.
func dateArg(t time.Time) string {
	return t.Format(domain.DateFormat)
}

// GetExceptionsByHost получает исключения хоста, попадающие в период дат.
// Границы периода - локальные полуночи хоста, сравнение идет по
// календарной дате.
func (r *Repository) GetExceptionsByHost(ctx context.Context, hostID int64, dateFrom, dateTo time.Time) ([]*domain.DateException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"host_id",
		"exception_date",
		"unavailable",
		"start_minute",
		"end_minute",
		"created_at",
		"updated_at",
	).
		From("availability_exceptions").
		Where(squirrel.Eq{"host_id": hostID}).
		Where(squirrel.GtOrEq{"exception_date": dateArg(dateFrom)}).
		Where(squirrel.LtOrEq{"exception_date": dateArg(dateTo)}).
		OrderBy("exception_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetExceptionsByHost - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetExceptionsByHost - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	exceptions := make([]*domain.DateException, 0)
	for rows.Next() {
		var exc domain.DateException
		var createdAt, updatedAt sql.NullTime
		var startMinute, endMinute sql.NullInt64
		if err := rows.Scan(
			&exc.ID,
			&exc.HostID,
			&exc.Date,
			&exc.Unavailable,
			&startMinute,
			&endMinute,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetExceptionsByHost - scan row: %w", ErrScanRow, err)
		}
		if startMinute.Valid {
			v := int(startMinute.Int64)
			exc.StartMinute = &v
		}
		if endMinute.Valid {
			v := int(endMinute.Int64)
			exc.EndMinute = &v
		}
		exc.CreatedAt = createdAt.Time
		exc.UpdatedAt = updatedAt.Time
		exceptions = append(exceptions, &exc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetExceptionsByHost - rows error: %w", ErrScanRow, err)
	}

	return exceptions, nil
}

// UpsertException создает или обновляет исключение на дату
func (r *Repository) UpsertException(ctx context.Context, exc *domain.DateException) (*domain.DateException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("availability_exceptions").
		Columns("host_id", "exception_date", "unavailable", "start_minute", "end_minute").
		Values(exc.HostID, dateArg(exc.Date), exc.Unavailable, exc.StartMinute, exc.EndMinute).
		Suffix(`ON CONFLICT (host_id, exception_date) DO UPDATE SET
			unavailable = EXCLUDED.unavailable,
			start_minute = EXCLUDED.start_minute,
			end_minute = EXCLUDED.end_minute,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertException - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exc.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: UpsertException - execute insert: %w", ErrExecQuery, err)
	}

	exc.CreatedAt = createdAt.Time
	exc.UpdatedAt = updatedAt.Time
	return exc, nil
}

// DeleteException удаляет исключение на дату
func (r *Repository) DeleteException(ctx context.Context, hostID int64, date time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("availability_exceptions").
		Where(squirrel.Eq{"host_id": hostID}).
		Where(squirrel.Eq{"exception_date": dateArg(date)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteException - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteException - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteException - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrExceptionNotFound
	}

	return nil
}
