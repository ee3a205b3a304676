package create_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("create_booking: invalid input data: %w", domain.ErrValidation)

	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = fmt.Errorf("create_booking: slot not found: %w", domain.ErrNotFound)

	// ErrSlotExpired возвращается, когда дата слота уже прошла
	ErrSlotExpired = fmt.Errorf("create_booking: slot has expired: %w", domain.ErrState)

	// ErrDuplicateBooking возвращается, когда пациент уже записан в этот слот
	ErrDuplicateBooking = fmt.Errorf("create_booking: patient already booked this slot: %w", domain.ErrState)

	// ErrSlotFull возвращается, когда в слоте не осталось мест
	ErrSlotFull = fmt.Errorf("create_booking: slot is full: %w", domain.ErrCapacity)

	// ErrConflict возвращается, когда параллельное бронирование успело изменить слот
	ErrConflict = fmt.Errorf("create_booking: slot changed concurrently: %w", domain.ErrConflict)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
