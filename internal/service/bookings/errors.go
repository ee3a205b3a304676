package bookings

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("service: booking not found: %w", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда пациент запрашивает чужое бронирование
	ErrAccessDenied = errors.New("service: access denied")

	// ErrInvalidState возвращается, когда бронирование нельзя перевести в нужный статус
	ErrInvalidState = fmt.Errorf("service: booking cannot be changed in current status: %w", domain.ErrState)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("service: invalid input data: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
