package booking

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
)

const (
	tableBookings = "bookings"

	constraintPrimaryKey        = "bookings_pkey"
	constraintPatientSlotActive = "uq_bookings_patient_slot_active"
)

var bookingColumns = []string{
	"id",
	"patient_id",
	"doctor_id",
	"slot_id",
	"scheduled_at",
	"status",
	"cancel_reason",
	"cancelled_at",
	"completed_at",
	"patient_name",
	"doctor_name",
	"department_name",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
// Записи никогда не удаляются физически: история сохраняется через статусы
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новое бронирование с уже выделенным номером
// Если в контексте передана активная транзакция, использует её.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableBookings).
		Columns(
			"id",
			"patient_id",
			"doctor_id",
			"slot_id",
			"scheduled_at",
			"status",
			"patient_name",
			"doctor_name",
			"department_name",
		).
		Values(
			booking.ID,
			booking.PatientID,
			booking.DoctorID,
			booking.SlotID,
			booking.ScheduledAt,
			booking.Status,
			booking.PatientName,
			booking.DoctorName,
			booking.DepartmentName,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)

	switch {
	case pgerrors.IsUniqueViolation(err, constraintPatientSlotActive):
		return nil, ErrDuplicateBooking
	case pgerrors.IsUniqueViolation(err, constraintPrimaryKey):
		return nil, fmt.Errorf("%w: %s", ErrBookingIDTaken, booking.ID)
	case err != nil:
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по номеру
// Внутри транзакции строка блокируется (FOR UPDATE) до конца транзакции
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// ExistsBooked проверяет, есть ли у пациента активное бронирование на слот
func (r *Repository) ExistsBooked(ctx context.Context, patientID string, slotID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		Prefix("SELECT EXISTS (").
		From(tableBookings).
		Where(squirrel.Eq{
			"patient_id": patientID,
			"slot_id":    slotID,
			"status":     domain.StatusBooked,
		}).
		Suffix(")").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: ExistsBooked - build select query: %v", ErrBuildQuery, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: ExistsBooked - scan result: %v", ErrScanRow, err)
	}

	return exists, nil
}

// GetByPatientID получает список бронирований пациента
// Опционально фильтрует по статусу
func (r *Repository) GetByPatientID(ctx context.Context, patientID string, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"patient_id": patientID}).
		OrderBy("scheduled_at DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByPatientID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByPatientID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByDoctorWithFilter получает бронирования врача с фильтрацией по периоду и статусу
//
// Примеры использования:
//
// 1. Расписание врача на день:
//
//	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
//	filter := domain.DoctorBookingsFilter{DoctorID: "d-1", StartDate: &day, EndDate: &day}
//
// 2. Только завершённые приёмы:
//
//	status := domain.StatusCompleted
//	filter := domain.DoctorBookingsFilter{DoctorID: "d-1", Status: &status}
func (r *Repository) GetByDoctorWithFilter(ctx context.Context, filter domain.DoctorBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"doctor_id": filter.DoctorID})

	// EndDate включительно: берём начало следующего дня как открытую границу
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"scheduled_at": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"scheduled_at": filter.EndDate.AddDate(0, 0, 1)})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err := selectBuilder.OrderBy("scheduled_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDoctorWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDoctorWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// CountBookedBySlot считает активные бронирования слота
// Вне операций бронирования результат равен slots.booked_count
func (r *Repository) CountBookedBySlot(ctx context.Context, slotID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From(tableBookings).
		Where(squirrel.Eq{"slot_id": slotID, "status": domain.StatusBooked}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountBookedBySlot - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountBookedBySlot - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// MaxSequence возвращает наибольший выданный порядковый номер за день (day в формате YYYYMMDD)
func (r *Repository) MaxSequence(ctx context.Context, day string) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COALESCE(MAX(CAST(SUBSTRING(id FROM 9) AS INTEGER)), 0)").
		From(tableBookings).
		Where(squirrel.Like{"id": day + "%"}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: MaxSequence - build select query: %v", ErrBuildQuery, err)
	}

	var seq int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&seq); err != nil {
		return 0, fmt.Errorf("%w: MaxSequence - scan result: %v", ErrScanRow, err)
	}

	return seq, nil
}

// Cancel переводит бронирование booked -> cancelled
// Пустая причина сохраняется как NULL
func (r *Repository) Cancel(ctx context.Context, id string, reason string, at time.Time) error {
	var cancelReason *string
	if reason != "" {
		cancelReason = &reason
	}

	return r.transition(ctx, "Cancel", id, domain.StatusBooked, map[string]interface{}{
		"status":        domain.StatusCancelled,
		"cancel_reason": cancelReason,
		"cancelled_at":  at,
	})
}

// Reopen возвращает отменённое бронирование в статус booked
// Используется только для компенсации неудавшейся отмены
func (r *Repository) Reopen(ctx context.Context, id string) error {
	return r.transition(ctx, "Reopen", id, domain.StatusCancelled, map[string]interface{}{
		"status":        domain.StatusBooked,
		"cancel_reason": nil,
		"cancelled_at":  nil,
	})
}

// Complete переводит бронирование booked -> completed
func (r *Repository) Complete(ctx context.Context, id string, at time.Time) error {
	return r.transition(ctx, "Complete", id, domain.StatusBooked, map[string]interface{}{
		"status":       domain.StatusCompleted,
		"completed_at": at,
	})
}

// transition условно обновляет бронирование, только если оно в статусе from
// 0 затронутых строк: ErrBookingNotFound, если записи нет, иначе ErrStatusConflict
func (r *Repository) transition(ctx context.Context, op, id string, from domain.BookingStatus, set map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableBookings).
		SetMap(set).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrStatusConflict
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var cancelReason sql.NullString
	var cancelledAt, completedAt, createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.PatientID,
		&booking.DoctorID,
		&booking.SlotID,
		&booking.ScheduledAt,
		&booking.Status,
		&cancelReason,
		&cancelledAt,
		&completedAt,
		&booking.PatientName,
		&booking.DoctorName,
		&booking.DepartmentName,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cancelReason.Valid {
		booking.CancelReason = &cancelReason.String
	}
	if cancelledAt.Valid {
		booking.CancelledAt = &cancelledAt.Time
	}
	if completedAt.Valid {
		booking.CompletedAt = &completedAt.Time
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
