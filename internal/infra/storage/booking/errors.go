package booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("booking.repository: booking not found: %w", domain.ErrNotFound)

	// ErrStatusConflict возвращается, когда бронирование есть, но не в ожидаемом статусе
	ErrStatusConflict = fmt.Errorf("booking.repository: booking is not in expected status: %w", domain.ErrState)

	// ErrDuplicateBooking возвращается при нарушении уникальности активной записи пациента на слот
	ErrDuplicateBooking = fmt.Errorf("booking.repository: patient already holds this slot: %w", domain.ErrState)

	// ErrBookingIDTaken возвращается, когда номер бронирования уже занят
	ErrBookingIDTaken = errors.New("booking.repository: booking id already taken")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
