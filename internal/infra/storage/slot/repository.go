package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/pgerrors"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	tableSlots = "slots"

	// constraintDoctorStart уникальность начала слота у врача в дату (см. migrations)
	constraintDoctorStart = "uq_slots_doctor_date_start"

	// constraintBookingSlot внешний ключ bookings.slot_id
	constraintBookingSlot = "fk_bookings_slot"
)

var slotColumns = []string{
	"id",
	"doctor_id",
	"work_date",
	"start_time",
	"end_time",
	"max_capacity",
	"booked_count",
	"version",
	"created_at",
	"updated_at",
}

// Repository репозиторий слотов и единственный владелец счётчика мест (booked_count, version)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новый слот с нулевым счётчиком бронирований
func (r *Repository) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableSlots).
		Columns(
			"doctor_id",
			"work_date",
			"start_time",
			"end_time",
			"max_capacity",
		).
		Values(
			slot.DoctorID,
			slot.WorkDate,
			slot.StartTime,
			slot.EndTime,
			slot.MaxCapacity,
		).
		Suffix("RETURNING id, booked_count, version, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.ID,
		&slot.BookedCount,
		&slot.Version,
		&createdAt,
		&updatedAt,
	)

	switch {
	case pgerrors.IsUniqueViolation(err, constraintDoctorStart):
		return nil, ErrDuplicateSlot
	case pgerrors.IsCheckViolation(err, ""):
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	case err != nil:
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return slot, nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From(tableSlots).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %v", ErrScanRow, err)
	}

	return slot, nil
}

// ListByDoctor получает слоты врача, отсортированные по дате и времени начала
func (r *Repository) ListByDoctor(ctx context.Context, filter domain.SlotFilter) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From(tableSlots).
		Where(squirrel.Eq{"doctor_id": filter.DoctorID})

	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"work_date": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"work_date": *filter.To})
	}
	if filter.OnlyAvailable {
		selectBuilder = selectBuilder.Where("booked_count < max_capacity")
	}

	query, args, err := selectBuilder.OrderBy("work_date ASC", "start_time ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDoctor - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDoctor - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByDoctor - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByDoctor - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

// ExistsAt проверяет, есть ли у врача слот с указанным началом в дату
func (r *Repository) ExistsAt(ctx context.Context, doctorID string, workDate time.Time, start types.TimeString) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		Prefix("SELECT EXISTS (").
		From(tableSlots).
		Where(squirrel.Eq{
			"doctor_id":  doctorID,
			"work_date":  workDate,
			"start_time": start,
		}).
		Suffix(")").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: ExistsAt - build select query: %v", ErrBuildQuery, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: ExistsAt - scan result: %v", ErrScanRow, err)
	}

	return exists, nil
}

// Reserve занимает одно место в слоте (оптимистичная блокировка по version)
//
// Читает (booked_count, version, max_capacity), затем выполняет одну условную запись:
//
//	UPDATE slots SET booked_count = booked_count + 1, version = version + 1
//	WHERE id = $1 AND version = $2 AND booked_count < max_capacity
//
// Если запись не затронула строк, состояние перечитывается, чтобы отличить
// ErrSlotFull (мест нет) от ErrVersionConflict (другой писатель успел раньше).
// Повторов внутри нет: конфликт возвращается вызывающему.
func (r *Repository) Reserve(ctx context.Context, id int64) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsFull() {
		return nil, ErrSlotFull
	}

	query, args, err := psqlbuilder.Update(tableSlots).
		Set("booked_count", squirrel.Expr("booked_count + 1")).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"version": current.Version}).
		Where("booked_count < max_capacity").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Reserve - build update query: %v", ErrBuildQuery, err)
	}

	affected, err := execAffected(ctx, executor, query, args)
	if err != nil {
		return nil, fmt.Errorf("%w: Reserve - execute update: %v", ErrExecQuery, err)
	}

	if affected == 0 {
		return nil, r.classifyFailedReserve(ctx, id)
	}

	current.BookedCount++
	current.Version++
	return current, nil
}

// Release освобождает одно место в слоте
// Версия не сверяется, но увеличивается, поэтому параллельный Reserve со старой версией получит конфликт.
func (r *Repository) Release(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableSlots).
		Set("booked_count", squirrel.Expr("booked_count - 1")).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("booked_count > 0").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	affected, err := execAffected(ctx, executor, query, args)
	if err != nil {
		return fmt.Errorf("%w: Release - execute update: %v", ErrExecQuery, err)
	}

	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrNothingToRelease
	}

	return nil
}

// UpdateCapacity меняет вместимость слота, пока в нём нет бронирований
func (r *Repository) UpdateCapacity(ctx context.Context, id int64, maxCapacity int) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableSlots).
		Set("max_capacity", maxCapacity).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "booked_count": 0}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpdateCapacity - build update query: %v", ErrBuildQuery, err)
	}

	affected, err := execAffected(ctx, executor, query, args)
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateCapacity - execute update: %v", ErrExecQuery, err)
	}

	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrSlotHasBookings
	}

	return r.GetByID(ctx, id)
}

// Delete удаляет слот, пока в нём нет бронирований
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableSlots).
		Where(squirrel.Eq{"id": id, "booked_count": 0}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	affected, err := execAffected(ctx, executor, query, args)
	if pgerrors.IsForeignKeyViolation(err, constraintBookingSlot) {
		// На слот ссылаются отменённые или завершённые бронирования
		return ErrSlotHasBookings
	}
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrSlotHasBookings
	}

	return nil
}

// classifyFailedReserve перечитывает слот после неудачной условной записи
func (r *Repository) classifyFailedReserve(ctx context.Context, id int64) error {
	latest, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if latest.IsFull() {
		return ErrSlotFull
	}
	return ErrVersionConflict
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var slot domain.Slot
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&slot.ID,
		&slot.DoctorID,
		&slot.WorkDate,
		&slot.StartTime,
		&slot.EndTime,
		&slot.MaxCapacity,
		&slot.BookedCount,
		&slot.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return &slot, nil
}

func execAffected(ctx context.Context, executor DBExecutor, query string, args []interface{}) (int64, error) {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
