package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const tableSequences = "booking_sequences"

// Repository дневной счётчик номеров бронирований в PostgreSQL
//
// Счётчик хранится строкой (day, last_seq). Первая выдача за день засевается
// максимальным уже выданным номером из bookings, дальше работает атомарный upsert.
// Внутри транзакции бронирования откат возвращает и счётчик.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр счётчика
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Next атомарно выдаёт следующий порядковый номер за день (day в формате YYYYMMDD)
func (r *Repository) Next(ctx context.Context, day string) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	seed := squirrel.Expr(
		"COALESCE((SELECT MAX(CAST(SUBSTRING(id FROM 9) AS INTEGER)) FROM bookings WHERE id LIKE ?), 0) + 1",
		day+"%",
	)

	query, args, err := psqlbuilder.Insert(tableSequences).
		Columns("day", "last_seq").
		Values(day, seed).
		Suffix("ON CONFLICT (day) DO UPDATE SET last_seq = booking_sequences.last_seq + 1, updated_at = NOW() RETURNING last_seq").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: Next - build upsert query: %v", ErrBuildQuery, err)
	}

	var seq int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&seq); err != nil {
		return 0, fmt.Errorf("%w: Next - execute upsert: %v", ErrExecQuery, err)
	}

	return seq, nil
}

// DeleteBefore удаляет счётчики дней раньше указанной даты
// Номера прошлых дней больше не выдаются, поэтому строки можно чистить
func (r *Repository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableSequences).
		Where(squirrel.Lt{"day": domain.DayKey(before)}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: DeleteBefore - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteBefore - execute delete: %v", ErrExecQuery, err)
	}

	return result.RowsAffected()
}
