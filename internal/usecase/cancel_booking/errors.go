package cancel_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("cancel_booking: invalid input data: %w", domain.ErrValidation)

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("cancel_booking: booking not found: %w", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда пациент отменяет чужое бронирование
	ErrAccessDenied = errors.New("cancel_booking: access denied")

	// ErrInvalidState возвращается, когда бронирование уже отменено или завершено
	ErrInvalidState = fmt.Errorf("cancel_booking: booking cannot be cancelled in current status: %w", domain.ErrState)

	// ErrTooLate возвращается, когда до приёма осталось меньше окна отмены
	ErrTooLate = fmt.Errorf("cancel_booking: too late to cancel: %w", domain.ErrState)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_booking: internal error")
)
