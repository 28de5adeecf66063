package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/avlko/HBP-SchedulingService/pkg/dbmetrics"
)

const (
	// pgSerializationFailure SQLSTATE 40001 - конфликт сериализуемых транзакций
	pgSerializationFailure = "40001"
	// pgUniqueViolation SQLSTATE 23505 - нарушение уникального ограничения
	pgUniqueViolation = "23505"
)

var (
	// ErrSerializationConflict возвращается, когда транзакция не прошла
	// даже после одного повтора
	ErrSerializationConflict = errors.New("txmanager: serialization conflict")

	// ErrBeginTx возвращается при ошибке открытия транзакции
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx возвращается при ошибке фиксации транзакции
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")
)

// TxBeginner интерфейс для открытия транзакций
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager выполняет функции внутри транзакций БД.
// Executor транзакции прокидывается в контекст, репозитории
// достают его через dbmetrics.GetExecutor.
type TransactionManager struct {
	db TxBeginner
}

// NewTransactionManager создает новый transaction manager
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{}, fn)
}

// DoSerializable выполняет fn в сериализуемой транзакции.
// При конфликте сериализации (40001) или гонке на уникальном ограничении (23505)
// повторяет ровно один раз; второй конфликт отдается наверх как
// ErrSerializationConflict - вызывающий слой решает, как его показать клиенту.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	err := m.run(ctx, opts, fn)
	if !isRetryableConflict(err) {
		return err
	}

	err = m.run(ctx, opts, fn)
	if isRetryableConflict(err) {
		return fmt.Errorf("%w: %v", ErrSerializationConflict, err)
	}
	return err
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginTx, err)
	}

	txCtx := dbmetrics.WithExecutor(ctx, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	// Конфликт сериализации Postgres отдает на COMMIT - причина
	// сохраняется в цепочке, чтобы isRetryableConflict увидела SQLSTATE
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitTx, err)
	}
	return nil
}

// isRetryableConflict возвращает true для ошибок, которые имеет смысл
// повторить один раз в новой транзакции
func isRetryableConflict(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgSerializationFailure || pqErr.Code == pgUniqueViolation
	}
	return false
}
